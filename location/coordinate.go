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

package location

import "fmt"

// FieldCoordinate locates a point by the values a reference field takes
// there. Evaluating the reference field itself at such a location yields the
// input values.
type FieldCoordinate struct {
	reference Reference
	inputs    []float64
	time      float64
}

// NewFieldCoordinate returns a field coordinate location. inputs is copied.
func NewFieldCoordinate(reference Reference, inputs []float64, time float64) FieldCoordinate {
	return FieldCoordinate{
		reference: reference,
		inputs:    append([]float64(nil), inputs...),
		time:      time,
	}
}

func (FieldCoordinate) sealed() {}

// Kind returns KindFieldCoordinate.
func (FieldCoordinate) Kind() Kind { return KindFieldCoordinate }

// Time returns the evaluation time.
func (l FieldCoordinate) Time() float64 { return l.time }

// Reference returns the reference field.
func (l FieldCoordinate) Reference() Reference { return l.reference }

// Inputs returns a copy of the reference field values.
func (l FieldCoordinate) Inputs() []float64 { return append([]float64(nil), l.inputs...) }

// Equal compares reference identity, time and inputs.
func (l FieldCoordinate) Equal(o Location, tolerance float64) bool {
	other, ok := o.(FieldCoordinate)
	if !ok || l.time != other.time {
		return false
	}
	if (l.reference == nil) != (other.reference == nil) {
		return false
	}
	if l.reference != nil && l.reference.EntityID() != other.reference.EntityID() {
		return false
	}
	return within(l.inputs, other.inputs, tolerance)
}

// String renders the location, e.g. "field_coordinate 1f0c... [1,2,3] time 0".
func (l FieldCoordinate) String() string {
	id := "<nil>"
	if l.reference != nil {
		id = l.reference.EntityID()
	}
	return fmt.Sprintf("field_coordinate %s [%s] time %g", id, formatReals(l.inputs), l.time)
}
