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

package field

import (
	"fmt"
	"maps"

	"dirpx.dev/fieldgraph/coordsys"
)

type typeSettings struct {
	components int
	hasComps   bool
	coords     *coordsys.System
	names      []string
}

// TypeOption adjusts a SetType call.
type TypeOption func(*typeSettings)

// WithComponents sets the number of components. Without it a field takes
// the component count of its first source, or the number of source values
// when it has no sources.
func WithComponents(n int) TypeOption {
	return func(s *typeSettings) {
		s.components = n
		s.hasComps = true
	}
}

// WithCoordinateSystem sets the coordinate system. Without it a field
// inherits the system of its first source and otherwise keeps its own.
func WithCoordinateSystem(cs coordsys.System) TypeOption {
	return func(s *typeSettings) {
		s.coords = &cs
	}
}

// WithComponentNames names the components in order.
func WithComponentNames(names ...string) TypeOption {
	return func(s *typeSettings) {
		s.names = names
	}
}

// SetType gives an unmanaged field a new core, sources and source values.
// Managed fields are redefined with Redefine through their manager.
func (f *Field) SetType(core Core, sources []*Field, values []float64, opts ...TypeOption) error {
	if core == nil {
		return fmt.Errorf("%w: nil core for field %q", ErrInvalidArgument, f.name)
	}
	if f.owner != nil {
		return fmt.Errorf("%w: field %q is managed; modify it through its manager", ErrInvalidArgument, f.name)
	}
	if f.readOnly {
		return fmt.Errorf("%w: field %q", ErrReadOnly, f.name)
	}
	for i, s := range sources {
		if s == nil {
			return fmt.Errorf("%w: source %d of field %q is nil", ErrInvalidArgument, i, f.name)
		}
		if DependsOn(s, f) {
			return fmt.Errorf("%w: field %q through source %q", ErrSelfDependency, f.name, s.name)
		}
	}

	var st typeSettings
	for _, opt := range opts {
		opt(&st)
	}
	switch {
	case st.hasComps:
	case len(sources) > 0:
		st.components = sources[0].components
	default:
		st.components = len(values)
	}
	if st.components < 0 {
		return fmt.Errorf("%w: %d components", ErrInvalidArgument, st.components)
	}
	if len(st.names) > st.components {
		return fmt.Errorf("%w: %d component names for %d components", ErrInvalidArgument, len(st.names), st.components)
	}

	f.Invalidate()
	f.core = core
	f.sources = append([]*Field(nil), sources...)
	f.values = append([]float64(nil), values...)
	f.components = st.components
	switch {
	case st.coords != nil:
		f.coords = *st.coords
	case len(sources) > 0:
		f.coords = sources[0].coords
	}
	f.compNames = nil
	for i, n := range st.names {
		if n == "" {
			continue
		}
		if f.compNames == nil {
			f.compNames = make(map[int]string, len(st.names))
		}
		f.compNames[i] = n
	}
	return nil
}

// UpdateSourceValues replaces the source values without changing their
// number. Cores whose set-values rewrite parameters use it.
func (f *Field) UpdateSourceValues(values []float64) error {
	if len(values) != len(f.values) {
		return fmt.Errorf("%w: %d source values for field %q with %d", ErrInvalidArgument, len(values), f.name, len(f.values))
	}
	f.Invalidate()
	copy(f.values, values)
	f.changed(ChangeDefinition)
	return nil
}

// CanRedefine checks whether Redefine(source, allowShapeChange) would
// succeed, without changing anything.
func (f *Field) CanRedefine(source *Field, allowShapeChange bool) error {
	if source == nil || source == f {
		return fmt.Errorf("%w: field %q cannot be redefined from itself or nil", ErrInvalidArgument, f.name)
	}
	if DependsOn(source, f) {
		return fmt.Errorf("%w: field %q", ErrSelfDependency, f.name)
	}
	if f.owner != nil {
		if source.owner != nil && source.owner != f.owner {
			return fmt.Errorf("%w: definition of %q comes from another manager", ErrCrossManagerDependency, f.name)
		}
		for _, s := range source.sources {
			if s.owner != nil && s.owner != f.owner {
				return fmt.Errorf("%w: source %q of %q", ErrCrossManagerDependency, s.name, f.name)
			}
		}
	}
	if source.components != f.components && !allowShapeChange && !f.notInUse() {
		return fmt.Errorf("%w: field %q has %d components, new definition has %d", ErrShapeChangeWhileInUse, f.name, f.components, source.components)
	}
	if !f.core.NotInUse(f) && !f.core.Compare(source.core) {
		return fmt.Errorf("%w: %s field %q cannot change type", ErrInUse, f.core.Type(), f.name)
	}
	return nil
}

// Redefine copies the type, sources, source values, shape and component
// names of source into f. f keeps its name, id, read-only flag and owner.
// The old sources stay referenced until the new definition is installed.
// When f is managed every source of source must already be managed by the
// same owner.
func (f *Field) Redefine(source *Field, allowShapeChange bool) error {
	if err := f.CanRedefine(source, allowShapeChange); err != nil {
		return err
	}
	if f.owner != nil {
		for _, s := range source.sources {
			if s.owner != f.owner {
				return fmt.Errorf("%w: source %q of %q is not managed", ErrCrossManagerDependency, s.name, f.name)
			}
		}
		f.owner.BeginChange()
		defer f.owner.EndChange()
	}

	f.Invalidate()
	old := f.sources
	f.core = source.core.Copy()
	f.components = source.components
	f.coords = source.coords
	f.compNames = maps.Clone(source.compNames)
	f.sources = append([]*Field(nil), source.sources...)
	f.values = append([]float64(nil), source.values...)
	if f.owner == nil {
		return nil
	}
	for _, s := range f.sources {
		s.managedRefs++
	}
	f.owner.FieldChanged(f, ChangeDefinition)
	for _, s := range old {
		s.unref()
	}
	return nil
}

func (f *Field) unref() {
	f.managedRefs--
	if f.owner != nil {
		f.owner.FieldUnreferenced(f)
	}
}

// Binding is the owner's handle on a field it manages. Only the owner that
// attached the field holds it.
type Binding struct {
	f *Field
}

// Attach lists f in owner o with the given status. Every source of f must
// already be managed by o.
func (f *Field) Attach(o Owner, status ManagedStatus) (*Binding, error) {
	if o == nil {
		return nil, fmt.Errorf("%w: nil owner", ErrInvalidArgument)
	}
	if f.owner != nil {
		if f.owner == o {
			return nil, fmt.Errorf("%w: field %q is already managed", ErrInvalidArgument, f.name)
		}
		return nil, fmt.Errorf("%w: field %q", ErrCrossManagerDependency, f.name)
	}
	for _, s := range f.sources {
		if s.owner != o {
			return nil, fmt.Errorf("%w: source %q of %q", ErrCrossManagerDependency, s.name, f.name)
		}
	}
	f.owner = o
	f.status = status
	for _, s := range f.sources {
		s.managedRefs++
	}
	return &Binding{f: f}, nil
}

// Field returns the bound field, nil after Detach.
func (b *Binding) Field() *Field { return b.f }

// SetName renames the bound field. The owner keeps names unique.
func (b *Binding) SetName(name string) {
	if b.f != nil {
		b.f.name = name
	}
}

func (b *Binding) SetStatus(s ManagedStatus) {
	if b.f != nil {
		b.f.status = s
	}
}

// Detach unlists the field: it becomes unmanaged and its sources lose one
// managed reference each. The binding is unusable afterwards.
func (b *Binding) Detach() {
	f := b.f
	if f == nil {
		return
	}
	b.f = nil
	f.owner = nil
	f.status = Public
	for _, s := range f.sources {
		s.unref()
	}
}
