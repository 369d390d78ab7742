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

package fieldgraph

import (
	"slices"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"dirpx.dev/fieldgraph/apis"
	"dirpx.dev/fieldgraph/builder"
	"dirpx.dev/fieldgraph/config"
	"dirpx.dev/fieldgraph/field"
	"dirpx.dev/fieldgraph/location"
	"dirpx.dev/fieldgraph/manager"
	"dirpx.dev/fieldgraph/strategy"
)

// init publishes the default snapshot.
func init() {
	st.Store(&state{
		cfg:   config.DefaultConfig(),
		types: strategy.Builtins(),
		log:   zap.NewNop(),
	})
}

// Config returns the process-wide default configuration.
func Config() apis.Config {
	return st.Load().cfg
}

// SetConfig replaces the default configuration. Managers created before the
// call keep their configuration.
func SetConfig(cfg apis.Config) {
	SetAll(&cfg, nil, nil)
}

// Types returns the process-wide field type registry.
func Types() *strategy.Registry {
	return st.Load().types
}

// SetTypes replaces the field type registry. A nil registry restores the
// built-in types.
func SetTypes(r *strategy.Registry) {
	if r == nil {
		r = strategy.Builtins()
	}
	SetAll(nil, r, nil)
}

// RegisterType adds a field type to the process-wide registry.
func RegisterType(tag string, ctor strategy.Constructor) error {
	return st.Load().types.Register(tag, ctor)
}

// Logger returns the process-wide logger.
func Logger() *zap.Logger {
	return st.Load().log
}

// SetLogger replaces the process-wide logger. A nil logger disables logging.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	SetAll(nil, nil, l)
}

// SetAll replaces several parts of the snapshot at once. Nil arguments
// leave the corresponding part unchanged.
func SetAll(cfg *apis.Config, types *strategy.Registry, log *zap.Logger) {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	next := *old
	if cfg != nil {
		next.cfg = *cfg
	}
	if types != nil {
		next.types = types
	}
	if log != nil {
		next.log = log
	}
	st.Store(&next)
}

// NewManager returns a manager using the default configuration and logger.
// opts are applied after the defaults.
func NewManager(opts ...manager.Option) *manager.Manager {
	s := st.Load()
	return manager.New(append([]manager.Option{
		manager.WithConfig(s.cfg),
		manager.WithLogger(s.log),
	}, opts...)...)
}

// NewBuilder returns a definitions builder over store using the default
// type registry and logger.
func NewBuilder(store apis.Store, opts ...builder.Option) *builder.Builder {
	s := st.Load()
	return builder.New(append([]builder.Option{
		builder.WithTypes(s.types),
		builder.WithStore(store),
		builder.WithLogger(s.log),
	}, opts...)...)
}

// EvaluateInElement evaluates f at element:xi and time. With
// wantDerivatives the second result holds the first derivatives with respect
// to xi, components x dimension, row-major by component. opts may name a
// top-level element with location.WithTopLevel.
func EvaluateInElement(f *field.Field, element apis.ElementID, xi []float64, time float64,
	wantDerivatives bool, opts ...location.ElementOption) (values, derivatives []float64, err error) {
	if wantDerivatives {
		opts = append(slices.Clone(opts), location.WithDerivatives(1))
	}
	res, err := f.Evaluate(location.NewElementXi(element, xi, time, opts...))
	if err != nil {
		return nil, nil, err
	}
	return slices.Clone(res.Values), slices.Clone(res.Derivatives), nil
}

// EvaluateAtNode evaluates f at node and time.
func EvaluateAtNode(f *field.Field, node apis.NodeID, time float64) ([]float64, error) {
	res, err := f.Evaluate(location.NewNode(node, time))
	if err != nil {
		return nil, err
	}
	return slices.Clone(res.Values), nil
}

// EvaluateAsString formats component of f at loc, or every component when
// component is field.AllComponents.
func EvaluateAsString(f *field.Field, component int, loc location.Location) (string, error) {
	return f.EvaluateAsString(component, loc)
}

// SetValuesAt writes values of f at loc.
func SetValuesAt(f *field.Field, loc location.Location, values []float64) error {
	return f.SetValuesAt(loc, values)
}

// IsDefinedAt reports whether f can be evaluated at loc.
func IsDefinedAt(f *field.Field, loc location.Location) bool {
	return f.IsDefinedAt(loc)
}

// buildMu serializes writers so we never publish partially-built snapshots.
var buildMu sync.Mutex

// st is the process-wide snapshot.
var st atomic.Pointer[state]

// state is an immutable snapshot published atomically via st.Store. Writers
// copy it, change the copy and swap it in.
type state struct {
	// cfg configures managers created by NewManager.
	cfg apis.Config
	// types is the field type registry used by NewBuilder.
	types *strategy.Registry
	// log is handed to managers and builders.
	log *zap.Logger
}
