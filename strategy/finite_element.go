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

const TypeFiniteElement = "finite_element"

type finiteElement struct {
	base
	store apis.Store
	name  string
}

// NewFiniteElement returns a read-only field that interpolates the stored
// field storeField. The component count comes from the store.
func NewFiniteElement(name string, store apis.Store, storeField string) (*field.Field, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: %s field %q without a store", field.ErrInvalidArgument, TypeFiniteElement, name)
	}
	n, ok := store.NumberOfComponents(storeField)
	if !ok {
		return nil, fmt.Errorf("%w: stored field %q", field.ErrNotFound, storeField)
	}
	f, err := newField(name, finiteElement{store: store, name: storeField}, nil, nil, field.WithComponents(n))
	if err != nil {
		return nil, err
	}
	f.SetReadOnly(true)
	return f, nil
}

func (finiteElement) Type() string { return TypeFiniteElement }

// StoreField returns the name of the stored field.
func (c finiteElement) StoreField() string { return c.name }

func (c finiteElement) Evaluate(f *field.Field, loc location.Location, want bool, values, derivatives []float64) (bool, error) {
	switch l := loc.(type) {
	case location.Node:
		v, err := c.store.NodeValues(c.name, l.Node(), l.Time())
		if err != nil {
			return false, fmt.Errorf("%w: field %q: %w", field.ErrEvaluationFailed, f.Name(), err)
		}
		copy(values, v)
		return false, nil
	case location.ElementXi:
		v, d, err := c.store.ElementValues(c.name, l.Element(), l.Xi(), l.Time(), want)
		if err != nil {
			return false, fmt.Errorf("%w: field %q: %w", field.ErrEvaluationFailed, f.Name(), err)
		}
		copy(values, v)
		if want {
			copy(derivatives, d)
		}
		return want, nil
	default:
		return false, fmt.Errorf("%w: %s field %q cannot be evaluated at %s", field.ErrEvaluationFailed,
			TypeFiniteElement, f.Name(), loc.Kind())
	}
}

func (c finiteElement) IsDefined(_ *field.Field, loc location.Location) bool {
	switch l := loc.(type) {
	case location.Node:
		return c.store.IsDefinedAtNode(c.name, l.Node())
	case location.ElementXi:
		return c.store.IsDefinedInElement(c.name, l.Element())
	default:
		return false
	}
}

// SetValues writes nodal values to the store. Element locations are not
// writable.
func (c finiteElement) SetValues(f *field.Field, loc location.Location, values []float64) error {
	l, ok := loc.(location.Node)
	if !ok {
		return fmt.Errorf("%w: %s field %q accepts values at nodes only", field.ErrUnsupported, TypeFiniteElement, f.Name())
	}
	return c.store.SetNodeValues(c.name, l.Node(), l.Time(), values)
}

func (c finiteElement) HasMultipleTimes(*field.Field) bool { return c.store.HasMultipleTimes(c.name) }

func (c finiteElement) NativeDiscretization(_ *field.Field, element apis.ElementID) ([]int, bool) {
	return c.store.ElementDiscretization(c.name, element)
}

// NotInUse holds while the store no longer defines the field.
func (c finiteElement) NotInUse(*field.Field) bool {
	_, ok := c.store.NumberOfComponents(c.name)
	return !ok
}

func (c finiteElement) Compare(other field.Core) bool {
	o, ok := other.(finiteElement)
	return ok && o.name == c.name && o.store == c.store
}

func (c finiteElement) Describe(*field.Field) string {
	return TypeFiniteElement + " " + c.name
}

func (c finiteElement) Copy() field.Core { return finiteElement{store: c.store, name: c.name} }
