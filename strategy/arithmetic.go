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

	"dirpx.dev/fieldgraph/field"
	"dirpx.dev/fieldgraph/location"
)

const (
	TypeAdd      = "add"
	TypeMultiply = "multiply"
	TypeScale    = "scale"
)

type add struct{ base }

// NewAdd returns w0*a + w1*b. Weights default to 1, 1.
func NewAdd(name string, a, b *field.Field, weights ...float64) (*field.Field, error) {
	if err := requireSources(TypeAdd, a, b); err != nil {
		return nil, err
	}
	if err := requireSameShape(TypeAdd, a, b); err != nil {
		return nil, err
	}
	switch len(weights) {
	case 0:
		weights = []float64{1, 1}
	case 2:
	default:
		return nil, fmt.Errorf("%w: add %q needs two weights, got %d", field.ErrInvalidArgument, name, len(weights))
	}
	return newField(name, add{}, []*field.Field{a, b}, weights)
}

func (add) Type() string { return TypeAdd }

func (add) Evaluate(f *field.Field, loc location.Location, want bool, values, derivatives []float64) (bool, error) {
	src, err := evaluateSources(f, loc)
	if err != nil {
		return false, err
	}
	w0, w1 := f.SourceValue(0), f.SourceValue(1)
	for i := range values {
		values[i] = w0*src[0].Values[i] + w1*src[1].Values[i]
	}
	if !want {
		return false, nil
	}
	for i := range derivatives {
		derivatives[i] = w0*src[0].Derivatives[i] + w1*src[1].Derivatives[i]
	}
	return true, nil
}

func (add) Compare(other field.Core) bool {
	_, ok := other.(add)
	return ok
}

func (add) Copy() field.Core { return add{} }

type multiply struct{ base }

// NewMultiply returns the component-wise product of a and b.
func NewMultiply(name string, a, b *field.Field) (*field.Field, error) {
	if err := requireSources(TypeMultiply, a, b); err != nil {
		return nil, err
	}
	if err := requireSameShape(TypeMultiply, a, b); err != nil {
		return nil, err
	}
	return newField(name, multiply{}, []*field.Field{a, b}, nil)
}

func (multiply) Type() string { return TypeMultiply }

func (multiply) Evaluate(f *field.Field, loc location.Location, want bool, values, derivatives []float64) (bool, error) {
	src, err := evaluateSources(f, loc)
	if err != nil {
		return false, err
	}
	a, b := src[0], src[1]
	for i := range values {
		values[i] = a.Values[i] * b.Values[i]
	}
	if !want {
		return false, nil
	}
	dim := a.Dimension
	for i := range values {
		for k := 0; k < dim; k++ {
			derivatives[i*dim+k] = a.Derivative(i, k)*b.Values[i] + a.Values[i]*b.Derivative(i, k)
		}
	}
	return true, nil
}

func (multiply) Compare(other field.Core) bool {
	_, ok := other.(multiply)
	return ok
}

func (multiply) Copy() field.Core { return multiply{} }

type scale struct{ base }

// NewScale multiplies each component of source by the matching factor.
// Writing values divides them by the factors and writes them to source.
func NewScale(name string, source *field.Field, factors []float64) (*field.Field, error) {
	if err := requireSources(TypeScale, source); err != nil {
		return nil, err
	}
	if len(factors) != source.NumberOfComponents() {
		return nil, fmt.Errorf("%w: scale %q needs %d factors, got %d", field.ErrInvalidArgument,
			name, source.NumberOfComponents(), len(factors))
	}
	return newField(name, scale{}, []*field.Field{source}, factors)
}

func (scale) Type() string { return TypeScale }

func (scale) Evaluate(f *field.Field, loc location.Location, want bool, values, derivatives []float64) (bool, error) {
	res, err := f.Source(0).Evaluate(loc)
	if err != nil {
		return false, err
	}
	for i := range values {
		values[i] = f.SourceValue(i) * res.Values[i]
	}
	if !want {
		return false, nil
	}
	for i := range derivatives {
		derivatives[i] = f.SourceValue(i/res.Dimension) * res.Derivatives[i]
	}
	return true, nil
}

func (scale) SetValues(f *field.Field, loc location.Location, values []float64) error {
	unscaled := make([]float64, len(values))
	for i, v := range values {
		factor := f.SourceValue(i)
		if factor == 0 {
			return fmt.Errorf("%w: scale %q has a zero factor for component %d", field.ErrInvalidArgument, f.Name(), i+1)
		}
		unscaled[i] = v / factor
	}
	return f.Source(0).SetValuesAt(loc, unscaled)
}

func (scale) Compare(other field.Core) bool {
	_, ok := other.(scale)
	return ok
}

func (scale) Copy() field.Core { return scale{} }
