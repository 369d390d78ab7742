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

// Package manager owns a namespace of fields: it keeps names unique, applies
// structural edits atomically and batches change notifications.
package manager

import (
	"maps"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"dirpx.dev/fieldgraph/apis"
	"dirpx.dev/fieldgraph/config"
	"dirpx.dev/fieldgraph/field"
)

// Manager is a set of uniquely named fields closed under source references.
// It is not safe for concurrent use; callers serialize access.
type Manager struct {
	cfg apis.Config
	log *zap.Logger

	byName  map[string]*entry
	byField map[*field.Field]*entry
	// autoName is the last suffix handed out for generated names.
	autoName int

	depth   int
	order   []*field.Field
	flags   map[*field.Field]field.Change
	lastID  int
	listens []listener
}

type entry struct {
	f *field.Field
	b *field.Binding
}

var _ field.Owner = (*Manager)(nil)

// Option configures a Manager.
type Option func(*Manager)

// WithConfig sets the manager configuration.
func WithConfig(cfg apis.Config) Option {
	return func(m *Manager) {
		m.cfg = cfg
	}
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l == nil {
			l = zap.NewNop()
		}
		m.log = l
	}
}

// New returns an empty manager.
func New(opts ...Option) *Manager {
	m := &Manager{
		cfg:     config.DefaultConfig(),
		log:     zap.NewNop(),
		byName:  make(map[string]*entry),
		byField: make(map[*field.Field]*entry),
		flags:   make(map[*field.Field]field.Change),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Config returns the manager configuration.
func (m *Manager) Config() apis.Config { return m.cfg }

// Create returns a new unmanaged, uninitialized field. It is not added.
func (m *Manager) Create(name string) *field.Field { return field.New(name) }

// FindByName returns the managed field called name.
func (m *Manager) FindByName(name string) (*field.Field, bool) {
	e, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return e.f, true
}

// Contains reports whether f is listed in m.
func (m *Manager) Contains(f *field.Field) bool {
	_, ok := m.byField[f]
	return ok
}

// Fields returns the managed fields sorted by name.
func (m *Manager) Fields() []*field.Field {
	names := slices.Sorted(maps.Keys(m.byName))
	out := make([]*field.Field, len(names))
	for i, n := range names {
		out[i] = m.byName[n].f
	}
	return out
}

// Count returns the number of managed fields.
func (m *Manager) Count() int { return len(m.byName) }

// IsNotInUse reports whether no managed field references f and f carries at
// most Config().NotInUseThreshold external holds.
func (m *Manager) IsNotInUse(f *field.Field) bool {
	return f.ManagedReferences() == 0 && f.ExternalHolds() <= m.cfg.NotInUseThreshold
}

// FieldNotInUse implements field.Owner.
func (m *Manager) FieldNotInUse(f *field.Field) bool { return m.IsNotInUse(f) }

// FieldUnreferenced implements field.Owner. Private volatile fields that
// nothing references any more are dropped.
func (m *Manager) FieldUnreferenced(f *field.Field) {
	e, ok := m.byField[f]
	if !ok || f.Status() != field.PrivateVolatile || f.ManagedReferences() > 0 || f.ExternalHolds() > 0 {
		return
	}
	m.log.Debug("dropping unreferenced private field", zap.String("field", f.Name()))
	m.BeginChange()
	m.detach(e)
	m.EndChange()
}

func (m *Manager) attach(f *field.Field, status field.ManagedStatus) error {
	b, err := f.Attach(m, status)
	if err != nil {
		return err
	}
	e := &entry{f: f, b: b}
	m.byName[f.Name()] = e
	m.byField[f] = e
	m.record(f, field.ChangeAdd)
	return nil
}

func (m *Manager) detach(e *entry) {
	f := e.f
	delete(m.byName, f.Name())
	delete(m.byField, f)
	m.record(f, field.ChangeRemove)
	e.b.Detach()
}

// nextName returns an unused generated name, skipping names in reserved.
func (m *Manager) nextName(reserved map[string]bool) string {
	for {
		m.autoName++
		name := m.cfg.AutoNamePrefix + strconv.Itoa(m.autoName)
		if _, taken := m.byName[name]; !taken && !reserved[name] {
			return name
		}
	}
}
