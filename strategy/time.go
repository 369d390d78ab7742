/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package strategy

import (
	"dirpx.dev/fieldgraph/field"
	"dirpx.dev/fieldgraph/location"
)

const TypeTimeValue = "time_value"

type timeValue struct{ base }

// NewTimeValue returns a one component field whose value is the time of the
// location it is evaluated at.
func NewTimeValue(name string) (*field.Field, error) {
	return newField(name, timeValue{}, nil, nil, field.WithComponents(1))
}

func (timeValue) Type() string { return TypeTimeValue }

func (timeValue) Evaluate(_ *field.Field, loc location.Location, _ bool, values, derivatives []float64) (bool, error) {
	values[0] = loc.Time()
	clear(derivatives)
	return true, nil
}

func (timeValue) IsDefined(*field.Field, location.Location) bool { return true }

func (timeValue) HasMultipleTimes(*field.Field) bool { return true }

func (timeValue) Compare(other field.Core) bool {
	_, ok := other.(timeValue)
	return ok
}

func (timeValue) Copy() field.Core { return timeValue{} }
