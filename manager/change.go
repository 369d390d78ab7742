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
	"go.uber.org/zap"

	"dirpx.dev/fieldgraph/field"
)

// Event reports one changed field. Name is the field's name when the event
// was delivered.
type Event struct {
	Field  *field.Field
	Name   string
	Change field.Change
}

// Listener receives the events of one completed change scope.
type Listener func(events []Event)

type listener struct {
	id int
	fn Listener
}

// RegisterChangeListener adds fn to the listeners. Listeners are called in
// registration order.
func (m *Manager) RegisterChangeListener(fn Listener) (cancel func()) {
	m.lastID++
	id := m.lastID
	m.listens = append(m.listens, listener{id: id, fn: fn})
	return func() {
		for i, l := range m.listens {
			if l.id == id {
				m.listens = append(m.listens[:i:i], m.listens[i+1:]...)
				return
			}
		}
	}
}

// BeginChange opens a change scope. Scopes nest; notifications are
// delivered when the outermost scope ends.
func (m *Manager) BeginChange() { m.depth++ }

// EndChange closes a change scope.
func (m *Manager) EndChange() {
	if m.depth == 0 {
		m.log.Warn("EndChange without matching BeginChange")
		return
	}
	m.depth--
	if m.depth == 0 {
		m.flush()
	}
}

// Scope is a change scope that ends once, however often Close is called.
type Scope struct {
	m      *Manager
	closed bool
}

// Scope opens a change scope and returns its guard.
func (m *Manager) Scope() *Scope {
	m.BeginChange()
	return &Scope{m: m}
}

// Close ends the scope.
func (s *Scope) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.m.EndChange()
}

// Change runs fn inside one change scope.
func (m *Manager) Change(fn func() error) error {
	m.BeginChange()
	defer m.EndChange()
	return fn()
}

// FieldChanged implements field.Owner.
func (m *Manager) FieldChanged(f *field.Field, c field.Change) {
	m.record(f, c)
}

// record merges c into the pending changes of f. Changes that alter values
// invalidate the caches of managed dependents right away.
func (m *Manager) record(f *field.Field, c field.Change) {
	if _, ok := m.flags[f]; !ok {
		m.order = append(m.order, f)
	}
	m.flags[f] |= c
	if c&(field.ChangeDefinition|field.ChangeResult) == 0 {
		return
	}
	for _, e := range m.byField {
		if e.f != f && field.DependsOn(e.f, f) {
			e.f.ClearCache()
		}
	}
}

func propagates(c field.Change) bool {
	return c&(field.ChangeAdd|field.ChangeDefinition|field.ChangeResult) != 0
}

func (m *Manager) flush() {
	if len(m.order) == 0 {
		return
	}
	order, flags := m.order, m.flags
	m.order, m.flags = nil, make(map[*field.Field]field.Change)

	events := make([]Event, 0, len(order))
	changed := make(map[*field.Field]bool, len(order))
	for _, f := range order {
		events = append(events, Event{Field: f, Name: f.Name(), Change: flags[f]})
		if propagates(flags[f]) {
			changed[f] = true
		}
	}
	for _, f := range m.Fields() {
		if _, self := flags[f]; self {
			continue
		}
		if field.OrAncestorSatisfies(f, func(a *field.Field) bool { return changed[a] }) {
			events = append(events, Event{Field: f, Name: f.Name(), Change: field.ChangeDependency})
		}
	}

	m.log.Debug("field changes", zap.Int("changed", len(order)), zap.Int("events", len(events)))
	for _, l := range append([]listener(nil), m.listens...) {
		l.fn(events)
	}
}
