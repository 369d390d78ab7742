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

package coordsys

import (
	"fmt"
	"strings"
)

// Type selects how the components of a coordinate field are interpreted.
//
// # Overview
//
// Type is a small enumerated value attached to every field. It never changes
// how a field evaluates; it tells consumers (and the coordinate
// transformation field) what the numbers mean. A field created from sources
// inherits the coordinate system of its first source.
//
// # Values
//
//   - RectangularCartesian: x, y, z.
//   - CylindricalPolar: r, theta, z.
//   - SphericalPolar: r, theta (azimuth), phi (elevation).
//   - ProlateSpheroidal: lambda, mu, theta; requires Focus.
//   - OblateSpheroidal: lambda, mu, theta; requires Focus.
//   - Fibre: fibre, imbrication, sheet angles; not convertible.
//   - NotApplicable: non-numeric fields.
//
// # Contract
//
//   - The textual tokens returned by String are stable; they are written to
//     definition documents and parsed back by Parse.
//   - Adding new values is allowed; existing values MUST NOT change meaning.
type Type int

const (
	// RectangularCartesian is the default coordinate system.
	RectangularCartesian Type = iota

	// CylindricalPolar interprets components as (r, theta, z).
	CylindricalPolar

	// SphericalPolar interprets components as (r, theta, phi), with phi the
	// elevation above the x-y plane.
	SphericalPolar

	// ProlateSpheroidal interprets components as (lambda, mu, theta) about
	// foci on the x axis at +/- Focus.
	ProlateSpheroidal

	// OblateSpheroidal interprets components as (lambda, mu, theta) about a
	// focal ring of radius Focus in the x-z plane.
	OblateSpheroidal

	// Fibre holds fibre orientation angles. It has no cartesian equivalent.
	Fibre

	// NotApplicable marks fields whose components are not coordinates.
	NotApplicable
)

var typeTokens = [...]string{
	RectangularCartesian: "rectangular_cartesian",
	CylindricalPolar:     "cylindrical_polar",
	SphericalPolar:       "spherical_polar",
	ProlateSpheroidal:    "prolate_spheroidal",
	OblateSpheroidal:     "oblate_spheroidal",
	Fibre:                "fibre",
	NotApplicable:        "not_applicable",
}

// String returns the stable token for t, or "Unknown(<n>)" for values
// outside the enumeration. It never panics.
func (t Type) String() string {
	if t >= 0 && int(t) < len(typeTokens) {
		return typeTokens[t]
	}
	return fmt.Sprintf("Unknown(%d)", int(t))
}

// Valid reports whether t is one of the defined values.
func (t Type) Valid() bool {
	return t >= 0 && int(t) < len(typeTokens)
}

// NeedsFocus reports whether the system uses System.Focus.
func (t Type) NeedsFocus() bool {
	return t == ProlateSpheroidal || t == OblateSpheroidal
}

// Parse converts a token into a Type. Matching is case-insensitive,
// surrounding whitespace is ignored and '-' or ' ' may stand for '_'.
//
// On failure Parse returns RectangularCartesian and a non-nil error; callers
// MUST NOT rely on the returned value in that case.
func Parse(s string) (Type, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return RectangularCartesian, fmt.Errorf("coordsys: empty coordinate system type")
	}
	norm := strings.ToLower(strings.NewReplacer("-", "_", " ", "_").Replace(trimmed))
	for i, tok := range typeTokens {
		if tok == norm {
			return Type(i), nil
		}
	}
	return RectangularCartesian, fmt.Errorf("coordsys: unknown coordinate system type %q", s)
}

// MustParse is like Parse but panics on invalid input. Use it only for
// hard-coded values.
func MustParse(s string) Type {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// MarshalText implements encoding.TextMarshaler. Unknown values are an error
// rather than an "Unknown(...)" token so invalid state is never persisted.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("coordsys: cannot marshal unknown coordinate system type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. On failure *t is left
// unchanged.
func (t *Type) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// System is a coordinate system type plus its focus.
type System struct {
	// Type selects the interpretation of the components.
	Type Type `yaml:"type" toml:"type" mapstructure:"type"`
	// Focus is the focal length of spheroidal systems; ignored otherwise.
	Focus float64 `yaml:"focus,omitempty" toml:"focus,omitempty" mapstructure:"focus"`
}

// Default is the rectangular cartesian system.
func Default() System {
	return System{Type: RectangularCartesian, Focus: 1}
}

// String renders the system the way definitions spell it, e.g.
// "prolate_spheroidal focus 35".
func (s System) String() string {
	if s.Type.NeedsFocus() {
		return fmt.Sprintf("%s focus %g", s.Type, s.Focus)
	}
	return s.Type.String()
}

// Equal reports whether two systems interpret coordinates identically.
func (s System) Equal(o System) bool {
	if s.Type != o.Type {
		return false
	}
	return !s.Type.NeedsFocus() || s.Focus == o.Focus
}
