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

// Package strategy implements the field types of the computed field graph
// and a registry of constructors keyed by type tag.
package strategy

import (
	"fmt"

	"dirpx.dev/fieldgraph/apis"
	"dirpx.dev/fieldgraph/field"
	"dirpx.dev/fieldgraph/location"
)

// base supplies the default behaviour shared by most cores.
type base struct{}

func (base) IsDefined(f *field.Field, loc location.Location) bool {
	return field.DefaultIsDefined(f, loc)
}

func (base) SetValues(f *field.Field, loc location.Location, values []float64) error {
	return field.DefaultSetValues(f, loc, values)
}

func (base) HasMultipleTimes(f *field.Field) bool { return field.DefaultHasMultipleTimes(f) }

func (base) NativeDiscretization(f *field.Field, element apis.ElementID) ([]int, bool) {
	return field.DefaultNativeDiscretization(f, element)
}

func (base) NativeResolution(f *field.Field) ([]int, bool) { return field.DefaultNativeResolution(f) }

func (base) Describe(f *field.Field) string { return field.DefaultDescribe(f) }

func (base) NotInUse(*field.Field) bool { return true }

// evaluateSources evaluates every source of f at loc.
func evaluateSources(f *field.Field, loc location.Location) ([]field.Result, error) {
	results := make([]field.Result, f.NumberOfSources())
	for i := range results {
		res, err := f.Source(i).Evaluate(loc)
		if err != nil {
			return nil, err
		}
		results[i] = res
	}
	return results, nil
}

// newField builds an unmanaged field of the given core.
func newField(name string, core field.Core, sources []*field.Field, values []float64, opts ...field.TypeOption) (*field.Field, error) {
	f := field.New(name)
	if err := f.SetType(core, sources, values, opts...); err != nil {
		return nil, err
	}
	return f, nil
}

func requireSources(tag string, sources ...*field.Field) error {
	for i, s := range sources {
		if s == nil {
			return fmt.Errorf("%w: %s source %d is nil", field.ErrInvalidArgument, tag, i)
		}
	}
	return nil
}

func requireSameShape(tag string, a, b *field.Field) error {
	if a.NumberOfComponents() != b.NumberOfComponents() {
		return fmt.Errorf("%w: %s sources %q and %q have %d and %d components", field.ErrInvalidArgument,
			tag, a.Name(), b.Name(), a.NumberOfComponents(), b.NumberOfComponents())
	}
	return nil
}
