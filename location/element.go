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

package location

import (
	"fmt"

	"dirpx.dev/fieldgraph/apis"
)

// ElementXi locates a point by its element and the element's chart (xi)
// coordinates. It optionally names the top-level element that fields needing
// derivatives with respect to a parent element should use, and carries the
// derivative order requested by the caller.
type ElementXi struct {
	element     apis.ElementID
	xi          []float64
	time        float64
	topLevel    apis.ElementID
	hasTopLevel bool
	order       int
}

// ElementOption customizes an ElementXi location.
type ElementOption func(*ElementXi)

// WithTopLevel names the top-level element to use when a field needs to be
// evaluated on an ancestor of the element.
func WithTopLevel(id apis.ElementID) ElementOption {
	return func(l *ElementXi) {
		l.topLevel = id
		l.hasTopLevel = true
	}
}

// WithDerivatives requests derivatives of the given order with respect to xi.
// Order 0 requests values only.
func WithDerivatives(order int) ElementOption {
	return func(l *ElementXi) {
		if order < 0 {
			order = 0
		}
		l.order = order
	}
}

// NewElementXi returns an element location. xi is copied; its length is the
// element dimension.
func NewElementXi(element apis.ElementID, xi []float64, time float64, opts ...ElementOption) ElementXi {
	l := ElementXi{
		element: element,
		xi:      append([]float64(nil), xi...),
		time:    time,
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

func (ElementXi) sealed() {}

// Kind returns KindElementXi.
func (ElementXi) Kind() Kind { return KindElementXi }

// Time returns the evaluation time.
func (l ElementXi) Time() float64 { return l.time }

// Element returns the element id.
func (l ElementXi) Element() apis.ElementID { return l.element }

// Dimension returns the number of xi coordinates.
func (l ElementXi) Dimension() int { return len(l.xi) }

// Xi returns a copy of the xi coordinates.
func (l ElementXi) Xi() []float64 { return append([]float64(nil), l.xi...) }

// XiAt returns xi coordinate i.
func (l ElementXi) XiAt(i int) float64 { return l.xi[i] }

// TopLevel returns the top-level element, if one was supplied.
func (l ElementXi) TopLevel() (apis.ElementID, bool) { return l.topLevel, l.hasTopLevel }

// DerivativeOrder returns the requested derivative order.
func (l ElementXi) DerivativeOrder() int { return l.order }

// WithOrder returns a copy of l requesting derivatives of the given order.
func (l ElementXi) WithOrder(order int) ElementXi {
	c := l
	c.order = order
	if c.order < 0 {
		c.order = 0
	}
	return c
}

// Equal compares element, time, top-level element and xi. The derivative
// order does not take part; caches track derivative validity themselves.
func (l ElementXi) Equal(o Location, tolerance float64) bool {
	other, ok := o.(ElementXi)
	if !ok {
		return false
	}
	return l.element == other.element &&
		l.time == other.time &&
		l.hasTopLevel == other.hasTopLevel &&
		(!l.hasTopLevel || l.topLevel == other.topLevel) &&
		within(l.xi, other.xi, tolerance)
}

// String renders the location, e.g. "element 3 xi [0.5,0.5] time 0".
func (l ElementXi) String() string {
	s := fmt.Sprintf("element %d xi [%s] time %g", l.element, formatReals(l.xi), l.time)
	if l.hasTopLevel {
		s += fmt.Sprintf(" top_level %d", l.topLevel)
	}
	return s
}
