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

// Package builder defines fields in a manager from definition documents.
package builder

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"dirpx.dev/fieldgraph/apis"
	"dirpx.dev/fieldgraph/field"
	"dirpx.dev/fieldgraph/manager"
	"dirpx.dev/fieldgraph/resolver"
	"dirpx.dev/fieldgraph/strategy"
)

var (
	// ErrInvalidDefinition is returned for malformed definitions.
	ErrInvalidDefinition = errors.New("fieldgraph(builder): invalid definition")
	// ErrCycle is returned for definitions that wait on each other.
	ErrCycle = errors.New("fieldgraph(builder): definitions form a cycle")
)

// maxSuggestDistance bounds the edit distance of "did you mean" hints.
const maxSuggestDistance = 2

// Builder turns definitions into managed fields.
type Builder struct {
	types *strategy.Registry
	store apis.Store
	log   *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithTypes sets the field type registry. The default is strategy.Builtins().
func WithTypes(r *strategy.Registry) Option {
	return func(b *Builder) {
		if r != nil {
			b.types = r
		}
	}
}

// WithStore sets the store handed to finite element and derivative fields.
func WithStore(s apis.Store) Option {
	return func(b *Builder) { b.store = s }
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) {
		if l == nil {
			l = zap.NewNop()
		}
		b.log = l
	}
}

// New creates a Builder.
func New(opts ...Option) *Builder {
	b := &Builder{log: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	if b.types == nil {
		b.types = strategy.Builtins()
	}
	return b
}

// Build defines every field of defs in m and returns them in definition
// order. Definitions may reference each other in any order. Either all
// fields are added or, when any definition fails, none is and the error
// lists every failure.
func (b *Builder) Build(m *manager.Manager, defs []Definition) ([]*field.Field, error) {
	var errs *multierror.Error
	pending := make(map[string]*Definition, len(defs))
	failed := make(map[string]bool)
	for i := range defs {
		d := &defs[i]
		if err := b.check(m, d, pending); err != nil {
			errs = multierror.Append(errs, err)
			if pending[d.Name] == nil {
				failed[d.Name] = true
			}
			continue
		}
		pending[d.Name] = d
	}

	built := resolver.Fields{}
	named := resolver.New(resolver.Named(m), resolver.Named(built))
	refs := resolver.New(resolver.Named(m), resolver.Named(built), resolver.Literal(), resolver.Component(named))
	var order []*field.Field
	for progress := true; progress; {
		progress = false
		for i := range defs {
			d := &defs[i]
			if pending[d.Name] != d || waiting(d, pending) {
				continue
			}
			delete(pending, d.Name)
			progress = true
			f, err := b.define(m, refs, d, failed, defs)
			if err != nil {
				failed[d.Name] = true
				errs = multierror.Append(errs, err)
				continue
			}
			built[d.Name] = f
			order = append(order, f)
		}
	}
	for i := range defs {
		if d := &defs[i]; pending[d.Name] == d {
			errs = multierror.Append(errs, fmt.Errorf("%w: field %q waits on %s", ErrCycle, d.Name,
				strings.Join(waitingOn(d, pending), ", ")))
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	if err := manage(m, order); err != nil {
		return nil, err
	}
	b.log.Debug("definitions applied", zap.Int("fields", len(order)), zap.Int("managed", m.Count()))
	return order, nil
}

func (b *Builder) check(m *manager.Manager, d *Definition, pending map[string]*Definition) error {
	if d.Name == "" {
		return fmt.Errorf("%w: field of type %q has no name", ErrInvalidDefinition, d.Type)
	}
	if _, dup := pending[d.Name]; dup {
		return fmt.Errorf("%w: %q is defined twice", field.ErrDuplicateName, d.Name)
	}
	if _, taken := m.FindByName(d.Name); taken {
		return fmt.Errorf("%w: %q is already managed", field.ErrDuplicateName, d.Name)
	}
	if _, ok := b.types.Lookup(d.Type); !ok {
		return fmt.Errorf("field %q: %w: %q%s", d.Name, strategy.ErrUnknownType, d.Type, suggest(d.Type, b.types.Types()))
	}
	return nil
}

func (b *Builder) define(m *manager.Manager, refs resolver.Resolver, d *Definition, failed map[string]bool, defs []Definition) (*field.Field, error) {
	sources := make([]*field.Field, len(d.Sources))
	for i, ref := range d.Sources {
		for _, dep := range candidates(ref) {
			if failed[dep] {
				return nil, fmt.Errorf("%w: field %q: source %q failed", ErrInvalidDefinition, d.Name, dep)
			}
		}
		s, err := refs.Resolve(ref)
		if errors.Is(err, resolver.ErrUnresolved) {
			return nil, fmt.Errorf("field %q: %w%s", d.Name, err, suggest(ref, known(m, defs)))
		}
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", d.Name, err)
		}
		sources[i] = s
	}

	f, err := b.types.Build(d.Type, strategy.Args{
		Name:    d.Name,
		Sources: sources,
		Values:  d.Values,
		Params:  d.Params,
		Store:   b.store,
	})
	if err != nil {
		return nil, err
	}
	for i, n := range d.ComponentNames {
		if err := f.SetComponentName(i, n); err != nil {
			return nil, fmt.Errorf("field %q: %w", d.Name, err)
		}
	}
	if d.ReadOnly {
		f.SetReadOnly(true)
	}
	b.log.Debug("field defined",
		zap.String("field", d.Name),
		zap.String("type", d.Type),
		zap.Strings("sources", d.Sources))
	return f, nil
}

// manage adds fields in order, removing them again on failure.
func manage(m *manager.Manager, fields []*field.Field) error {
	m.BeginChange()
	defer m.EndChange()
	for i, f := range fields {
		if err := m.ManageRecursive(f, field.Public); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = m.Remove(fields[j])
			}
			return err
		}
	}
	return nil
}

// candidates returns the field names ref may refer to.
func candidates(ref string) []string {
	if i := strings.LastIndexByte(ref, '.'); i > 0 {
		return []string{ref, ref[:i]}
	}
	return []string{ref}
}

func waiting(d *Definition, pending map[string]*Definition) bool {
	return len(waitingOn(d, pending)) > 0
}

// waitingOn lists the pending definitions the sources of d refer to.
func waitingOn(d *Definition, pending map[string]*Definition) []string {
	var out []string
	for _, ref := range d.Sources {
		for _, dep := range candidates(ref) {
			if pending[dep] != nil && !slices.Contains(out, dep) {
				out = append(out, dep)
			}
		}
	}
	return out
}

func known(m *manager.Manager, defs []Definition) []string {
	var out []string
	for _, f := range m.Fields() {
		out = append(out, f.Name())
	}
	for _, d := range defs {
		out = append(out, d.Name)
	}
	return out
}

// suggest returns a "did you mean" hint for the closest of names, or "".
func suggest(s string, names []string) string {
	best, bestDist := "", maxSuggestDistance+1
	for _, n := range names {
		if n == "" || n == s {
			continue
		}
		if d := levenshtein.Distance(s, n, nil); d < bestDist {
			best, bestDist = n, d
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", best)
}
