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

	"dirpx.dev/fieldgraph/apis"
	"dirpx.dev/fieldgraph/field"
	"dirpx.dev/fieldgraph/location"
)

const TypeDerivative = "derivative"

type derivative struct {
	base
	xi    int
	store apis.Store
}

// NewDerivative returns d(source)/d(xi_index), with xiIndex counted from
// zero. The derivative is taken on the top-level element the store maps the
// evaluation element onto; a nil store differentiates in the element itself.
func NewDerivative(name string, source *field.Field, xiIndex int, store apis.Store) (*field.Field, error) {
	if err := requireSources(TypeDerivative, source); err != nil {
		return nil, err
	}
	if xiIndex < 0 {
		return nil, fmt.Errorf("%w: derivative xi index %d", field.ErrInvalidArgument, xiIndex)
	}
	return newField(name, derivative{xi: xiIndex, store: store}, []*field.Field{source}, nil)
}

func (derivative) Type() string { return TypeDerivative }

// topLevel maps loc onto the element the source is differentiated in.
func (c derivative) topLevel(loc location.ElementXi) (location.ElementXi, error) {
	if c.store == nil {
		return loc.WithOrder(1), nil
	}
	var hint []apis.ElementID
	if id, ok := loc.TopLevel(); ok {
		hint = append(hint, id)
	}
	top, xi, err := c.store.TopLevel(loc.Element(), loc.Xi(), hint...)
	if err != nil {
		return location.ElementXi{}, err
	}
	return location.NewElementXi(top, xi, loc.Time(), location.WithDerivatives(1)), nil
}

func (c derivative) Evaluate(f *field.Field, loc location.Location, _ bool, values, _ []float64) (bool, error) {
	el, ok := loc.(location.ElementXi)
	if !ok {
		return false, fmt.Errorf("%w: %s field %q needs an element location, got %s", field.ErrEvaluationFailed,
			TypeDerivative, f.Name(), loc.Kind())
	}
	top, err := c.topLevel(el)
	if err != nil {
		return false, fmt.Errorf("%w: field %q: %w", field.ErrEvaluationFailed, f.Name(), err)
	}
	if c.xi >= top.Dimension() {
		return false, fmt.Errorf("%w: field %q differentiates xi %d of a %d dimensional element", field.ErrEvaluationFailed,
			f.Name(), c.xi+1, top.Dimension())
	}
	res, err := f.Source(0).Evaluate(top)
	if err != nil {
		return false, err
	}
	for i := range values {
		values[i] = res.Derivative(i, c.xi)
	}
	return false, nil
}

func (c derivative) IsDefined(f *field.Field, loc location.Location) bool {
	el, ok := loc.(location.ElementXi)
	if !ok {
		return false
	}
	top, err := c.topLevel(el)
	if err != nil || c.xi >= top.Dimension() {
		return false
	}
	return f.Source(0).IsDefinedAt(top)
}

func (c derivative) Compare(other field.Core) bool {
	o, ok := other.(derivative)
	return ok && o.xi == c.xi && o.store == c.store
}

func (c derivative) Describe(f *field.Field) string {
	return fmt.Sprintf("%s %s xi %d", TypeDerivative, f.Source(0).Name(), c.xi+1)
}

// Copy shares the store.
func (c derivative) Copy() field.Core { return derivative{xi: c.xi, store: c.store} }
