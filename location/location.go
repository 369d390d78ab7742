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

// Package location defines the immutable evaluation contexts of computed
// fields: an element xi point, a node, or a field coordinate. A Location is
// only ever a key and a context; nothing in this package touches a field.
package location

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"dirpx.dev/fieldgraph/apis"
)

// Kind discriminates the Location variants.
type Kind int

const (
	// KindElementXi is an element:xi location.
	KindElementXi Kind = iota + 1
	// KindNode is a node location.
	KindNode
	// KindFieldCoordinate is a location given by values of a reference field.
	KindFieldCoordinate
)

// String returns a short, stable name for k.
func (k Kind) String() string {
	switch k {
	case KindElementXi:
		return "element_xi"
	case KindNode:
		return "node"
	case KindFieldCoordinate:
		return "field_coordinate"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Location is an evaluation context. Implementations are the three value
// types of this package; the interface is sealed.
type Location interface {
	// Kind returns the variant of the location.
	Kind() Kind
	// Time returns the time the location is evaluated at.
	Time() float64
	// Equal reports whether o identifies the same evaluation point. Real
	// coordinates (xi, field coordinate inputs) match when they differ by at
	// most tolerance; ids and time match exactly.
	Equal(o Location, tolerance float64) bool
	// String renders the location for diagnostics.
	String() string

	sealed()
}

// Reference is the field a FieldCoordinate location is expressed in. It is
// keyed by its EntityID so the location outlives renames.
type Reference = apis.Identifier

func within(a, b []float64, tolerance float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] == b[i] {
			continue
		}
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) || math.Abs(a[i]-b[i]) > tolerance {
			return false
		}
	}
	return true
}

func formatReals(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
