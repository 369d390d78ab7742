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
	"strconv"
	"strings"
	"sync/atomic"

	"dirpx.dev/fieldgraph/location"
)

// AllComponents asks EvaluateAsString for every component.
const AllComponents = -1

// Result is the outcome of one evaluation. The slices belong to the field's
// cache and must not be modified; the root package hands out copies.
type Result struct {
	Values []float64
	// Derivatives holds components x Dimension xi derivatives, row-major by
	// component. It is nil unless derivatives were requested.
	Derivatives []float64
	Dimension   int
}

// Derivative returns d(component)/d(xi_k).
func (r Result) Derivative(component, k int) float64 {
	return r.Derivatives[component*r.Dimension+k]
}

// revisions stamps definition and result changes of every field.
var revisions atomic.Uint64

// cache holds the last successful evaluation of a field.
type cache struct {
	// rev is the newest revision of the field and its ancestors when the
	// cache was filled.
	rev uint64

	loc              location.Location
	values           []float64
	derivatives      []float64
	dimension        int
	derivativesValid bool

	// strings memoizes EvaluateAsString per component for loc, or for
	// stringLoc when the core is non-numeric.
	stringLoc location.Location
	strings   map[int]string
}

func (c *cache) reset() {
	*c = cache{}
}

func (c *cache) result() Result {
	r := Result{Values: c.values, Dimension: c.dimension}
	if c.derivativesValid {
		r.Derivatives = c.derivatives
	}
	return r
}

// ClearCache discards the cached evaluation of f and of every field it
// depends on.
func (f *Field) ClearCache() {
	f.cache.reset()
	for _, s := range f.sources {
		s.ClearCache()
	}
}

// Invalidate marks the definition or values of f as changed. Its cache is
// cleared, and every field depending on it, managed or not, recomputes on
// its next evaluation.
func (f *Field) Invalidate() {
	f.rev = revisions.Add(1)
	f.ClearCache()
}

// latest returns the newest revision of f and its ancestors.
func (f *Field) latest() uint64 {
	if len(f.sources) == 0 {
		return f.rev
	}
	seen := make(map[*Field]bool)
	var walk func(*Field) uint64
	walk = func(a *Field) uint64 {
		seen[a] = true
		r := a.rev
		for _, s := range a.sources {
			if seen[s] {
				continue
			}
			if sr := walk(s); sr > r {
				r = sr
			}
		}
		return r
	}
	return walk(f)
}

// fresh drops the cache when f or one of its ancestors changed since it
// was filled.
func (f *Field) fresh() {
	if r := f.latest(); r != f.cache.rev {
		f.cache.reset()
		f.cache.rev = r
	}
}

// HasCachedLocation reports whether the cache currently holds loc.
func (f *Field) HasCachedLocation(loc location.Location) bool {
	f.fresh()
	return f.cached(loc)
}

func (f *Field) cached(loc location.Location) bool {
	return f.cache.loc != nil && loc != nil && f.cache.loc.Equal(loc, f.Config().XiTolerance)
}

func (f *Field) derivativeRequest(loc location.Location) (bool, int, error) {
	el, ok := loc.(location.ElementXi)
	if !ok {
		return false, 0, nil
	}
	dim := el.Dimension()
	if dim == 0 || dim > f.Config().MaxElementDimension {
		return false, 0, fmt.Errorf("%w: element xi dimension %d", ErrInvalidArgument, dim)
	}
	switch order := el.DerivativeOrder(); {
	case order == 0:
		return false, dim, nil
	case order == 1:
		return true, dim, nil
	default:
		return false, 0, fmt.Errorf("%w: derivative order %d for field %q", ErrDerivativesUnavailable, order, f.name)
	}
}

// Evaluate returns the values of f at loc, and the first xi derivatives when
// loc is an element location asking for them. Repeated evaluation at the
// same location is served from the cache. On failure the previous cache is
// kept.
func (f *Field) Evaluate(loc location.Location) (Result, error) {
	if loc == nil {
		return Result{}, fmt.Errorf("%w: nil location", ErrInvalidArgument)
	}
	want, dim, err := f.derivativeRequest(loc)
	if err != nil {
		return Result{}, err
	}
	f.fresh()
	if f.cache.loc != nil && f.cache.loc.Kind() != loc.Kind() {
		f.ClearCache()
	}
	if f.cached(loc) && (!want || f.cache.derivativesValid) {
		return f.cache.result(), nil
	}

	values := make([]float64, f.components)
	var derivatives []float64
	if want {
		derivatives = make([]float64, f.components*dim)
	}
	var valid bool
	if fc, ok := loc.(location.FieldCoordinate); ok && fc.Reference() != nil && fc.Reference().EntityID() == f.id {
		inputs := fc.Inputs()
		if len(inputs) != f.components {
			return Result{}, fmt.Errorf("%w: %d coordinates for field %q with %d components", ErrEvaluationFailed, len(inputs), f.name, f.components)
		}
		copy(values, inputs)
	} else {
		valid, err = f.core.Evaluate(f, loc, want, values, derivatives)
		if err != nil {
			return Result{}, err
		}
	}
	if want && !valid {
		return Result{}, fmt.Errorf("%w: %s field %q", ErrDerivativesUnavailable, f.core.Type(), f.name)
	}

	f.cache.rev = f.latest()
	f.cache.loc = loc
	f.cache.values = values
	f.cache.derivatives = derivatives
	f.cache.dimension = dim
	f.cache.derivativesValid = want && valid
	f.cache.strings = nil
	return f.cache.result(), nil
}

// EvaluateAsString renders component (or AllComponents) of f at loc.
// Numeric values are formatted like %g and joined by ", ".
func (f *Field) EvaluateAsString(component int, loc location.Location) (string, error) {
	if loc == nil {
		return "", fmt.Errorf("%w: nil location", ErrInvalidArgument)
	}
	if component < AllComponents || component >= f.components {
		return "", fmt.Errorf("%w: component %d of field %q", ErrInvalidArgument, component, f.name)
	}
	f.fresh()
	if se, ok := f.core.(StringEvaluator); ok {
		if f.cache.stringLoc == nil || !f.cache.stringLoc.Equal(loc, f.Config().XiTolerance) {
			f.cache.stringLoc = loc
			f.cache.strings = nil
		} else if s, ok := f.cache.strings[component]; ok {
			return s, nil
		}
		s, err := se.EvaluateString(f, loc, component)
		if err != nil {
			return "", err
		}
		f.remember(component, s)
		return s, nil
	}

	res, err := f.Evaluate(loc)
	if err != nil {
		return "", err
	}
	if s, ok := f.cache.strings[component]; ok {
		return s, nil
	}
	var s string
	if component == AllComponents {
		s = formatValues(res.Values, ", ")
	} else {
		s = formatValue(res.Values[component])
	}
	f.remember(component, s)
	return s, nil
}

func (f *Field) remember(component int, s string) {
	if f.cache.strings == nil {
		f.cache.strings = make(map[int]string)
	}
	f.cache.strings[component] = s
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatValues(v []float64, sep string) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = formatValue(x)
	}
	return strings.Join(parts, sep)
}
