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

package manager

import (
	"fmt"

	"go.uber.org/zap"

	"dirpx.dev/fieldgraph/field"
)

// Remove unlists f. It fails with field.ErrInUse while a managed field
// references f or f is held externally.
func (m *Manager) Remove(f *field.Field) error {
	e, ok := m.byField[f]
	if !ok {
		return fmt.Errorf("%w: field is not in this manager", field.ErrNotFound)
	}
	if f.ManagedReferences() > 0 || f.ExternalHolds() > 0 {
		return fmt.Errorf("%w: field %q has %d managed references and %d holds", field.ErrInUse,
			f.Name(), f.ManagedReferences(), f.ExternalHolds())
	}
	m.BeginChange()
	defer m.EndChange()
	m.detach(e)
	m.log.Debug("field removed", zap.String("field", f.Name()))
	return nil
}

// Rename gives the managed field f a new unique name.
func (m *Manager) Rename(f *field.Field, name string) error {
	e, ok := m.byField[f]
	if !ok {
		return fmt.Errorf("%w: field is not in this manager", field.ErrNotFound)
	}
	if name == "" {
		return fmt.Errorf("%w: field name is empty", field.ErrInvalidArgument)
	}
	old := f.Name()
	if name == old {
		return nil
	}
	if _, taken := m.byName[name]; taken {
		return fmt.Errorf("%w: %q", field.ErrDuplicateName, name)
	}
	m.BeginChange()
	defer m.EndChange()
	m.rename(e, name)
	m.log.Debug("field renamed", zap.String("from", old), zap.String("to", name))
	return nil
}

func (m *Manager) rename(e *entry, name string) {
	delete(m.byName, e.f.Name())
	e.b.SetName(name)
	m.byName[name] = e
	m.record(e.f, field.ChangeIdentifier)
}

type modifySettings struct {
	identifier       bool
	allowShapeChange bool
	overrideReadOnly bool
}

// ModifyOption adjusts Modify.
type ModifyOption func(*modifySettings)

// WithIdentifier also takes the replacement's name.
func WithIdentifier() ModifyOption {
	return func(s *modifySettings) { s.identifier = true }
}

// AllowShapeChange permits a new component count while the target is in use.
func AllowShapeChange() ModifyOption {
	return func(s *modifySettings) { s.allowShapeChange = true }
}

// OverrideReadOnly permits redefining a read-only target.
func OverrideReadOnly() ModifyOption {
	return func(s *modifySettings) { s.overrideReadOnly = true }
}

// Modify gives the managed field target the definition of replacement,
// usually an unmanaged field built for the purpose. target keeps its
// identity, so everything referencing it sees the new definition.
//
// Unmanaged fields replacement depends on are absorbed as in Add: they join
// m as private volatile fields, and those whose name is empty or taken are
// renamed to a generated one. Callers keep their pointers to these fields
// but no longer own them. Nothing changes when Modify fails.
func (m *Manager) Modify(target, replacement *field.Field, opts ...ModifyOption) error {
	e, ok := m.byField[target]
	if !ok {
		return fmt.Errorf("%w: field is not in this manager", field.ErrNotFound)
	}
	if replacement == nil {
		return fmt.Errorf("%w: nil replacement", field.ErrInvalidArgument)
	}
	var st modifySettings
	for _, opt := range opts {
		opt(&st)
	}
	if target.IsReadOnly() && !st.overrideReadOnly {
		return fmt.Errorf("%w: field %q", field.ErrReadOnly, target.Name())
	}
	if err := target.CanRedefine(replacement, st.allowShapeChange); err != nil {
		return err
	}
	name := target.Name()
	if st.identifier {
		name = replacement.Name()
		if name == "" {
			return fmt.Errorf("%w: replacement name is empty", field.ErrInvalidArgument)
		}
		if other, taken := m.byName[name]; taken && other != e {
			return fmt.Errorf("%w: %q", field.ErrDuplicateName, name)
		}
	}

	var sources []*field.Field
	for _, s := range replacement.Sources() {
		closure, err := m.unmanaged(s)
		if err != nil {
			return err
		}
		for _, g := range closure {
			if !containsField(sources, g) {
				sources = append(sources, g)
			}
		}
	}
	names := m.planNames(sources, name)

	m.BeginChange()
	defer m.EndChange()
	if err := m.absorb(sources, names); err != nil {
		m.release(sources)
		return err
	}
	if err := target.Redefine(replacement, st.allowShapeChange); err != nil {
		m.release(sources)
		return err
	}
	if name != target.Name() {
		m.rename(e, name)
	}
	m.log.Debug("field modified",
		zap.String("field", target.Name()),
		zap.String("type", target.Type()),
		zap.Int("absorbed", len(sources)))
	return nil
}

// release unlists absorbed fields that ended up unreferenced.
func (m *Manager) release(fields []*field.Field) {
	for i := len(fields) - 1; i >= 0; i-- {
		if e, ok := m.byField[fields[i]]; ok && fields[i].ManagedReferences() == 0 {
			m.detach(e)
		}
	}
}

func containsField(list []*field.Field, f *field.Field) bool {
	for _, g := range list {
		if g == f {
			return true
		}
	}
	return false
}
