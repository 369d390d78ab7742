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

// CheckManager walks f and everything it depends on and reports whether
// the managed fields among them share one manager. When *candidate is nil
// it is set to the manager found.
func CheckManager(f *field.Field, candidate **Manager) bool {
	ok := true
	field.ForEachAncestor(f, func(a *field.Field) bool {
		o := a.Owner()
		if o == nil {
			return true
		}
		m, isManager := o.(*Manager)
		switch {
		case !isManager:
			ok = false
		case *candidate == nil:
			*candidate = m
		case *candidate != m:
			ok = false
		}
		return ok
	})
	return ok
}

// Add lists f with the given status. Unmanaged fields f depends on are
// added as private volatile fields first; those without a usable name are
// renamed to a generated one. Nothing changes when Add fails.
func (m *Manager) Add(f *field.Field, status field.ManagedStatus) error {
	if f == nil {
		return fmt.Errorf("%w: nil field", field.ErrInvalidArgument)
	}
	if m.Contains(f) {
		return fmt.Errorf("%w: field %q is already managed", field.ErrInvalidArgument, f.Name())
	}
	return m.manage(f, status)
}

// ManageRecursive adds f and its unmanaged ancestors like Add. Subtrees
// already in m are left alone, so it is a no-op for managed fields.
func (m *Manager) ManageRecursive(f *field.Field, status field.ManagedStatus) error {
	if f == nil {
		return fmt.Errorf("%w: nil field", field.ErrInvalidArgument)
	}
	if m.Contains(f) {
		return nil
	}
	return m.manage(f, status)
}

func (m *Manager) manage(f *field.Field, status field.ManagedStatus) error {
	if f.Name() == "" {
		return fmt.Errorf("%w: field name is empty", field.ErrInvalidArgument)
	}
	if e, ok := m.byName[f.Name()]; ok && e.f != f {
		return fmt.Errorf("%w: %q", field.ErrDuplicateName, f.Name())
	}
	closure, err := m.unmanaged(f)
	if err != nil {
		return err
	}
	sources := closure[:len(closure)-1]
	names := m.planNames(sources, f.Name())

	m.BeginChange()
	defer m.EndChange()
	if err := m.absorb(sources, names); err != nil {
		return err
	}
	if err := m.attach(f, status); err != nil {
		return err
	}
	m.log.Debug("field added",
		zap.String("entity", f.EntityName()),
		zap.String("id", f.EntityID()),
		zap.String("field", f.Name()),
		zap.String("type", f.Type()),
		zap.Stringer("status", status),
		zap.Int("absorbed", len(sources)))
	return nil
}

// unmanaged returns the unmanaged fields reachable from f, f included, with
// every field after its sources. It fails when a field of another manager
// is reachable.
func (m *Manager) unmanaged(f *field.Field) ([]*field.Field, error) {
	var out []*field.Field
	seen := make(map[*field.Field]bool)
	var walk func(g *field.Field) error
	walk = func(g *field.Field) error {
		if seen[g] {
			return nil
		}
		seen[g] = true
		switch o := g.Owner(); {
		case o == nil:
		case o == field.Owner(m):
			return nil
		default:
			return fmt.Errorf("%w: field %q belongs to another manager", field.ErrCrossManagerDependency, g.Name())
		}
		for _, s := range g.Sources() {
			if err := walk(s); err != nil {
				return err
			}
		}
		out = append(out, g)
		return nil
	}
	if err := walk(f); err != nil {
		return nil, err
	}
	return out, nil
}

// planNames picks a free name for every field in fields, keeping names that
// are set and unused.
func (m *Manager) planNames(fields []*field.Field, reserved ...string) []string {
	taken := make(map[string]bool, len(fields)+len(reserved))
	for _, r := range reserved {
		taken[r] = true
	}
	names := make([]string, len(fields))
	for i, g := range fields {
		name := g.Name()
		if _, used := m.byName[name]; name == "" || used || taken[name] {
			name = m.nextName(taken)
		}
		taken[name] = true
		names[i] = name
	}
	return names
}

// absorb lists fields as private volatile under the planned names. Callers
// hold a change scope.
func (m *Manager) absorb(fields []*field.Field, names []string) error {
	for i, g := range fields {
		if g.Name() != names[i] {
			if err := g.SetName(names[i]); err != nil {
				return err
			}
		}
		if err := m.attach(g, field.PrivateVolatile); err != nil {
			return err
		}
	}
	return nil
}
