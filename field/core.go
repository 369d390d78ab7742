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

	"dirpx.dev/fieldgraph/apis"
	"dirpx.dev/fieldgraph/location"
)

// Core is the type-specific behaviour of a field. A core never owns the
// field's sources or cache; it reads them through the *Field it is handed.
//
// Evaluate writes NumberOfComponents values into values and, when want is
// true, components x dimension xi derivatives into derivatives (row-major by
// component). It reports whether the derivatives it wrote are valid. The
// buffers are scratch space: the field installs them only on success.
type Core interface {
	// Type returns the registry tag of the core, e.g. "add".
	Type() string
	Evaluate(f *Field, loc location.Location, want bool, values, derivatives []float64) (bool, error)
	IsDefined(f *Field, loc location.Location) bool
	SetValues(f *Field, loc location.Location, values []float64) error
	HasMultipleTimes(f *Field) bool
	NativeDiscretization(f *Field, element apis.ElementID) ([]int, bool)
	NativeResolution(f *Field) ([]int, bool)
	// Compare reports whether other is the same type with equal parameters.
	Compare(other Core) bool
	Describe(f *Field) string
	// Copy returns an independent core with the same parameters.
	Copy() Core
	// NotInUse reports whether the core allows its field to be redefined.
	NotInUse(f *Field) bool
}

// StringEvaluator is implemented by non-numeric cores.
type StringEvaluator interface {
	EvaluateString(f *Field, loc location.Location, component int) (string, error)
}

// StoreBacked is implemented by cores whose values live in an apis.Store.
type StoreBacked interface {
	// StoreField returns the name of the stored field the core reads.
	StoreField() string
}

// DefaultIsDefined reports whether every source of f is defined at loc.
func DefaultIsDefined(f *Field, loc location.Location) bool {
	for _, s := range f.sources {
		if !s.IsDefinedAt(loc) {
			return false
		}
	}
	return true
}

// DefaultHasMultipleTimes reports whether any source varies with time.
func DefaultHasMultipleTimes(f *Field) bool {
	for _, s := range f.sources {
		if s.HasMultipleTimes() {
			return true
		}
	}
	return false
}

// DefaultNativeDiscretization returns the discretization of the first source
// that has one.
func DefaultNativeDiscretization(f *Field, element apis.ElementID) ([]int, bool) {
	for _, s := range f.sources {
		if d, ok := s.NativeDiscretization(element); ok {
			return d, true
		}
	}
	return nil, false
}

// DefaultNativeResolution returns the resolution of the first source that
// has one.
func DefaultNativeResolution(f *Field) ([]int, bool) {
	for _, s := range f.sources {
		if r, ok := s.NativeResolution(); ok {
			return r, true
		}
	}
	return nil, false
}

// DefaultSetValues refuses to write values.
func DefaultSetValues(f *Field, _ location.Location, _ []float64) error {
	return fmt.Errorf("%w: set values on %s field %q", ErrUnsupported, f.core.Type(), f.name)
}

// DefaultDescribe lists the type, sources and source values of f.
func DefaultDescribe(f *Field) string {
	s := f.core.Type()
	for i, src := range f.sources {
		if i == 0 {
			s += " "
		} else {
			s += ","
		}
		s += src.name
	}
	if len(f.values) > 0 {
		s += " values " + formatValues(f.values, " ")
	}
	return s
}

// uninitialized is the core of a field that has not been given a type.
type uninitialized struct{}

func (uninitialized) Type() string { return "uninitialized" }

func (uninitialized) Evaluate(f *Field, loc location.Location, _ bool, _, _ []float64) (bool, error) {
	return false, fmt.Errorf("%w: field %q has no type at %s", ErrEvaluationFailed, f.name, loc)
}

func (uninitialized) IsDefined(*Field, location.Location) bool { return false }

func (uninitialized) SetValues(f *Field, loc location.Location, values []float64) error {
	return DefaultSetValues(f, loc, values)
}

func (uninitialized) HasMultipleTimes(*Field) bool { return false }

func (uninitialized) NativeDiscretization(*Field, apis.ElementID) ([]int, bool) { return nil, false }

func (uninitialized) NativeResolution(*Field) ([]int, bool) { return nil, false }

func (uninitialized) Compare(other Core) bool {
	_, ok := other.(uninitialized)
	return ok
}

func (uninitialized) Describe(*Field) string { return "uninitialized" }

func (uninitialized) Copy() Core { return uninitialized{} }

func (uninitialized) NotInUse(*Field) bool { return true }

// Uninitialized returns the core every new field starts with.
func Uninitialized() Core { return uninitialized{} }
