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
	"fmt"
	"strconv"

	"dirpx.dev/fieldgraph/field"
	"dirpx.dev/fieldgraph/location"
)

const (
	TypeConstant       = "constant"
	TypeStringConstant = "string_constant"
)

type constant struct{ base }

// NewConstant returns a field whose values are the given constants at every
// location. Writing values replaces the constants.
func NewConstant(name string, values []float64) (*field.Field, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: constant %q needs at least one value", field.ErrInvalidArgument, name)
	}
	return newField(name, constant{}, nil, values, field.WithComponents(len(values)))
}

func (constant) Type() string { return TypeConstant }

func (constant) Evaluate(f *field.Field, _ location.Location, _ bool, values, derivatives []float64) (bool, error) {
	for i := range values {
		values[i] = f.SourceValue(i)
	}
	clear(derivatives)
	return true, nil
}

func (constant) IsDefined(*field.Field, location.Location) bool { return true }

func (constant) SetValues(f *field.Field, _ location.Location, values []float64) error {
	return f.UpdateSourceValues(values)
}

func (constant) Compare(other field.Core) bool {
	_, ok := other.(constant)
	return ok
}

func (constant) Copy() field.Core { return constant{} }

type stringConstant struct {
	base
	value string
}

// NewStringConstant returns a non-numeric field with a single component.
func NewStringConstant(name, value string) (*field.Field, error) {
	return newField(name, stringConstant{value: value}, nil, nil, field.WithComponents(1))
}

func (stringConstant) Type() string { return TypeStringConstant }

func (stringConstant) Evaluate(f *field.Field, _ location.Location, _ bool, _, _ []float64) (bool, error) {
	return false, fmt.Errorf("%w: %s field %q is not numeric", field.ErrEvaluationFailed, TypeStringConstant, f.Name())
}

func (c stringConstant) EvaluateString(*field.Field, location.Location, int) (string, error) {
	return c.value, nil
}

func (stringConstant) IsDefined(*field.Field, location.Location) bool { return true }

func (c stringConstant) Compare(other field.Core) bool {
	o, ok := other.(stringConstant)
	return ok && o.value == c.value
}

func (c stringConstant) Describe(*field.Field) string {
	return TypeStringConstant + " " + strconv.Quote(c.value)
}

func (c stringConstant) Copy() field.Core { return stringConstant{value: c.value} }
