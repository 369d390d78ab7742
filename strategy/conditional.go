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

const TypeIf = "if"

type conditional struct{ base }

// NewIf returns then where cond is true and otherwise else. cond is true
// where any of its components exceeds field.ZeroTolerance in magnitude.
func NewIf(name string, cond, then, otherwise *field.Field) (*field.Field, error) {
	if err := requireSources(TypeIf, cond, then, otherwise); err != nil {
		return nil, err
	}
	if err := requireSameShape(TypeIf, then, otherwise); err != nil {
		return nil, err
	}
	return newField(name, conditional{}, []*field.Field{cond, then, otherwise}, nil,
		field.WithComponents(then.NumberOfComponents()),
		field.WithCoordinateSystem(then.CoordinateSystem()))
}

func (conditional) Type() string { return TypeIf }

func branch(f *field.Field, loc location.Location) (*field.Field, error) {
	res, err := f.Source(0).Evaluate(loc)
	if err != nil {
		return nil, err
	}
	if field.IsTrue(res.Values) {
		return f.Source(1), nil
	}
	return f.Source(2), nil
}

func (conditional) Evaluate(f *field.Field, loc location.Location, want bool, values, derivatives []float64) (bool, error) {
	src, err := branch(f, loc)
	if err != nil {
		return false, err
	}
	res, err := src.Evaluate(loc)
	if err != nil {
		return false, err
	}
	copy(values, res.Values)
	if !want {
		return false, nil
	}
	copy(derivatives, res.Derivatives)
	return true, nil
}

func (conditional) IsDefined(f *field.Field, loc location.Location) bool {
	if !f.Source(0).IsDefinedAt(loc) {
		return false
	}
	src, err := branch(f, loc)
	return err == nil && src.IsDefinedAt(loc)
}

func (conditional) Compare(other field.Core) bool {
	_, ok := other.(conditional)
	return ok
}

func (conditional) Copy() field.Core { return conditional{} }
