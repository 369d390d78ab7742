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
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"

	"dirpx.dev/fieldgraph/field"
	"dirpx.dev/fieldgraph/location"
)

const TypeComposite = "composite"

// ConstantSource marks a Selector that yields Value instead of a source
// component.
const ConstantSource = -1

// Selector picks one output component of a composite field: component
// Component of source Source, or Value when Source is ConstantSource.
type Selector struct {
	Source    int     `mapstructure:"source" yaml:"source" toml:"source"`
	Component int     `mapstructure:"component" yaml:"component" toml:"component"`
	Value     float64 `mapstructure:"value" yaml:"value,omitempty" toml:"value,omitempty"`
}

type composite struct {
	base
	selectors []Selector
}

// NewComposite returns a field whose components are picked from sources by
// selectors, in order.
func NewComposite(name string, sources []*field.Field, selectors []Selector) (*field.Field, error) {
	if err := requireSources(TypeComposite, sources...); err != nil {
		return nil, err
	}
	if len(selectors) == 0 {
		return nil, fmt.Errorf("%w: composite %q has no components", field.ErrInvalidArgument, name)
	}
	for i, s := range selectors {
		if s.Source == ConstantSource {
			continue
		}
		if s.Source < 0 || s.Source >= len(sources) {
			return nil, fmt.Errorf("%w: composite %q component %d selects source %d of %d", field.ErrInvalidArgument,
				name, i+1, s.Source, len(sources))
		}
		if n := sources[s.Source].NumberOfComponents(); s.Component < 0 || s.Component >= n {
			return nil, fmt.Errorf("%w: composite %q component %d selects component %d of %q with %d", field.ErrInvalidArgument,
				name, i+1, s.Component, sources[s.Source].Name(), n)
		}
	}
	return newField(name, composite{selectors: slices.Clone(selectors)}, sources, nil, field.WithComponents(len(selectors)))
}

// NewConcatenate joins all components of sources in order.
func NewConcatenate(name string, sources ...*field.Field) (*field.Field, error) {
	if err := requireSources(TypeComposite, sources...); err != nil {
		return nil, err
	}
	var selectors []Selector
	for i, s := range sources {
		for c := 0; c < s.NumberOfComponents(); c++ {
			selectors = append(selectors, Selector{Source: i, Component: c})
		}
	}
	return NewComposite(name, sources, selectors)
}

// NewComponent extracts a single component of source.
func NewComponent(name string, source *field.Field, component int) (*field.Field, error) {
	if err := requireSources(TypeComposite, source); err != nil {
		return nil, err
	}
	return NewComposite(name, []*field.Field{source}, []Selector{{Source: 0, Component: component}})
}

func (composite) Type() string { return TypeComposite }

// Selectors returns the component selectors of a composite field.
func Selectors(f *field.Field) ([]Selector, error) {
	c, err := field.CoreAs[composite](f)
	if err != nil {
		return nil, err
	}
	return slices.Clone(c.selectors), nil
}

func (c composite) Evaluate(f *field.Field, loc location.Location, want bool, values, derivatives []float64) (bool, error) {
	src, err := evaluateSources(f, loc)
	if err != nil {
		return false, err
	}
	dim := 0
	if want && len(values) > 0 {
		dim = len(derivatives) / len(values)
	}
	for i, s := range c.selectors {
		if s.Source == ConstantSource {
			values[i] = s.Value
			continue
		}
		values[i] = src[s.Source].Values[s.Component]
		for k := 0; k < dim; k++ {
			derivatives[i*dim+k] = src[s.Source].Derivative(s.Component, k)
		}
	}
	return want, nil
}

func (c composite) IsDefined(f *field.Field, loc location.Location) bool {
	return field.DefaultIsDefined(f, loc)
}

// SetValues scatters values into the selected source components. Constant
// components are not writable and are skipped. When a source rejects its
// values, the sources written before it are restored.
func (c composite) SetValues(f *field.Field, loc location.Location, values []float64) error {
	before := make(map[int][]float64)
	pending := make(map[int][]float64)
	for i, s := range c.selectors {
		if s.Source == ConstantSource {
			continue
		}
		cur, ok := pending[s.Source]
		if !ok {
			res, err := f.Source(s.Source).Evaluate(loc)
			if err != nil {
				return err
			}
			before[s.Source] = slices.Clone(res.Values)
			cur = slices.Clone(res.Values)
			pending[s.Source] = cur
		}
		cur[s.Component] = values[i]
	}
	var written []int
	for i := 0; i < f.NumberOfSources(); i++ {
		vals, ok := pending[i]
		if !ok {
			continue
		}
		if err := f.Source(i).SetValuesAt(loc, vals); err != nil {
			return restore(f, loc, written, before, err)
		}
		written = append(written, i)
	}
	return nil
}

func restore(f *field.Field, loc location.Location, written []int, before map[int][]float64, err error) error {
	for _, i := range slices.Backward(written) {
		if rerr := f.Source(i).SetValuesAt(loc, before[i]); rerr != nil {
			err = multierror.Append(err, fmt.Errorf("restore %q: %w", f.Source(i).Name(), rerr))
		}
	}
	return err
}

func (c composite) Compare(other field.Core) bool {
	o, ok := other.(composite)
	return ok && slices.Equal(o.selectors, c.selectors)
}

func (c composite) Describe(f *field.Field) string {
	parts := make([]string, len(c.selectors))
	for i, s := range c.selectors {
		if s.Source == ConstantSource {
			parts[i] = fmt.Sprintf("%g", s.Value)
			continue
		}
		src := f.Source(s.Source)
		parts[i] = src.Name() + "." + src.ComponentName(s.Component)
	}
	return TypeComposite + " " + strings.Join(parts, " ")
}

func (c composite) Copy() field.Core {
	return composite{selectors: slices.Clone(c.selectors)}
}
