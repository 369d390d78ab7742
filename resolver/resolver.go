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

// Package resolver turns the textual field references of definition
// documents into fields by trying a chain of strategies.
package resolver

import (
	"errors"
	"fmt"

	"dirpx.dev/fieldgraph/field"
)

// ErrUnresolved is returned when no strategy handles a reference.
var ErrUnresolved = errors.New("fieldgraph(resolver): unresolved reference")

// Strategy resolves one kind of reference. ok reports whether the strategy
// handled ref; a handled reference that cannot be served returns an error.
type Strategy interface {
	TryResolve(ref string) (f *field.Field, ok bool, err error)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(ref string) (*field.Field, bool, error)

// TryResolve calls fn.
func (fn StrategyFunc) TryResolve(ref string) (*field.Field, bool, error) { return fn(ref) }

// Resolver resolves field references.
type Resolver interface {
	Resolve(ref string) (*field.Field, error)
}

// New constructs a Resolver that tries the given strategies in order.
// Nil strategies are ignored.
func New(strategies ...Strategy) Resolver {
	out := make([]Strategy, 0, len(strategies))
	for _, s := range strategies {
		if s != nil {
			out = append(out, s)
		}
	}
	return chain{strats: out}
}

// chain is an immutable, order-preserving resolver over a set of strategies.
type chain struct {
	strats []Strategy
}

// Resolve runs strategies in order until one handles ref.
func (r chain) Resolve(ref string) (*field.Field, error) {
	for _, s := range r.strats {
		f, ok, err := s.TryResolve(ref)
		if err != nil {
			return nil, err
		}
		if ok {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnresolved, ref)
}
