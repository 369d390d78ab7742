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
	"math"
	"slices"

	"dirpx.dev/fieldgraph/apis"
	"dirpx.dev/fieldgraph/location"
)

// ZeroTolerance is the magnitude at or below which a component counts as
// zero for IsTrueAt.
const ZeroTolerance = 1e-6

// IsDefinedAt reports whether f can be evaluated at loc.
func (f *Field) IsDefinedAt(loc location.Location) bool {
	if loc == nil {
		return false
	}
	if fc, ok := loc.(location.FieldCoordinate); ok && fc.Reference() != nil && fc.Reference().EntityID() == f.id {
		return len(fc.Inputs()) == f.components
	}
	return f.core.IsDefined(f, loc)
}

// SetValuesAt writes values at loc through the field's core. Only some
// field types accept writes; the rest return ErrUnsupported.
func (f *Field) SetValuesAt(loc location.Location, values []float64) error {
	if loc == nil {
		return fmt.Errorf("%w: nil location", ErrInvalidArgument)
	}
	if len(values) != f.components {
		return fmt.Errorf("%w: %d values for field %q with %d components", ErrInvalidArgument, len(values), f.name, f.components)
	}
	if f.owner != nil {
		f.owner.BeginChange()
		defer f.owner.EndChange()
	}
	if err := f.core.SetValues(f, loc, values); err != nil {
		return err
	}
	f.Invalidate()
	f.changed(ChangeResult)
	return nil
}

// IsTrueAt reports whether f evaluates at loc to a value with any component
// larger than ZeroTolerance in magnitude. Undefined locations and
// non-numeric fields are false.
func (f *Field) IsTrueAt(loc location.Location) bool {
	if _, ok := f.core.(StringEvaluator); ok {
		return false
	}
	res, err := f.Evaluate(loc)
	if err != nil {
		return false
	}
	return IsTrue(res.Values)
}

// IsTrue reports whether any value is larger than ZeroTolerance in magnitude.
func IsTrue(values []float64) bool {
	for _, v := range values {
		if math.Abs(v) > ZeroTolerance {
			return true
		}
	}
	return false
}

// HasMultipleTimes reports whether f varies with time.
func (f *Field) HasMultipleTimes() bool { return f.core.HasMultipleTimes(f) }

// NativeDiscretization returns the basis intervals per xi direction f uses
// in element.
func (f *Field) NativeDiscretization(element apis.ElementID) ([]int, bool) {
	return f.core.NativeDiscretization(f, element)
}

// NativeResolution returns the resolution f prefers for sampling.
func (f *Field) NativeResolution() ([]int, bool) { return f.core.NativeResolution(f) }

// Describe returns the type, sources and parameters of f in text.
func (f *Field) Describe() string { return f.core.Describe(f) }

// ContentsMatch reports whether a and b have the same definition: shape,
// coordinate system, sources, source values and core parameters. Names,
// ids and caches are not compared.
func ContentsMatch(a, b *Field) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.components == b.components &&
		a.coords.Equal(b.coords) &&
		slices.Equal(a.sources, b.sources) &&
		slices.Equal(a.values, b.values) &&
		a.core.Compare(b.core)
}

// CoreAs returns the core of f as T.
func CoreAs[T Core](f *Field) (T, error) {
	c, ok := f.core.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: field %q is of type %s", ErrTypeMismatch, f.name, f.core.Type())
	}
	return c, nil
}
