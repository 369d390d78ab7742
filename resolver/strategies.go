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

package resolver

import (
	"fmt"
	"strconv"
	"strings"

	"dirpx.dev/fieldgraph/field"
	"dirpx.dev/fieldgraph/strategy"
)

// Finder looks fields up by name; *manager.Manager satisfies it.
type Finder interface {
	FindByName(name string) (*field.Field, bool)
}

// Named resolves references that are the name of a field known to f.
func Named(f Finder) Strategy {
	return StrategyFunc(func(ref string) (*field.Field, bool, error) {
		got, ok := f.FindByName(ref)
		return got, ok, nil
	})
}

// Fields is a Finder over a name to field map. The map is read on every
// lookup, so later additions are visible.
type Fields map[string]*field.Field

// FindByName implements Finder.
func (fs Fields) FindByName(name string) (*field.Field, bool) {
	f, ok := fs[name]
	return f, ok
}

// Literal resolves numeric references such as "2.5" or "1,0,0" to new
// unnamed constant fields.
func Literal() Strategy {
	return StrategyFunc(func(ref string) (*field.Field, bool, error) {
		parts := strings.Split(ref, ",")
		values := make([]float64, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, false, nil
			}
			values[i] = v
		}
		f, err := strategy.NewConstant("", values)
		if err != nil {
			return nil, true, err
		}
		return f, true, nil
	})
}

// Component resolves "name.component" by resolving name through base and
// selecting one component, given as a component name or a 1-based index.
// The result is a new unnamed composite field.
func Component(base Resolver) Strategy {
	return StrategyFunc(func(ref string) (*field.Field, bool, error) {
		i := strings.LastIndexByte(ref, '.')
		if i <= 0 || i == len(ref)-1 {
			return nil, false, nil
		}
		src, err := base.Resolve(ref[:i])
		if err != nil {
			return nil, false, nil
		}
		c, ok := componentIndex(src, ref[i+1:])
		if !ok {
			return nil, true, fmt.Errorf("%w: field %q has no component %q", field.ErrInvalidArgument, src.Name(), ref[i+1:])
		}
		f, err := strategy.NewComponent("", src, c)
		if err != nil {
			return nil, true, err
		}
		return f, true, nil
	})
}

func componentIndex(f *field.Field, name string) (int, bool) {
	for i := range f.NumberOfComponents() {
		if f.ComponentName(i) == name {
			return i, true
		}
	}
	n, err := strconv.Atoi(name)
	if err != nil || n < 1 || n > f.NumberOfComponents() {
		return 0, false
	}
	return n - 1, true
}
