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
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNotConvertible is returned for systems without a cartesian equivalent.
	ErrNotConvertible = errors.New("fieldgraph(coordsys): coordinate system is not convertible")
	// ErrSingular is returned when a Jacobian cannot be inverted at a point.
	ErrSingular = errors.New("fieldgraph(coordsys): singular coordinate transformation")
)

// Matrix is a 3x3 Jacobian; Matrix[i][j] = d out_i / d in_j.
type Matrix [3][3]float64

// Identity returns the 3x3 identity matrix.
func Identity() Matrix {
	return Matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Mul returns m*o.
func (m Matrix) Mul(o Matrix) Matrix {
	var r Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				r[i][j] += m[i][k] * o[k][j]
			}
		}
	}
	return r
}

// Inverse returns the inverse of m, or ErrSingular.
func (m Matrix) Inverse() (Matrix, error) {
	det := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
	if math.Abs(det) < 1e-12 {
		return Matrix{}, ErrSingular
	}
	inv := 1 / det
	return Matrix{
		{
			(m[1][1]*m[2][2] - m[1][2]*m[2][1]) * inv,
			(m[0][2]*m[2][1] - m[0][1]*m[2][2]) * inv,
			(m[0][1]*m[1][2] - m[0][2]*m[1][1]) * inv,
		},
		{
			(m[1][2]*m[2][0] - m[1][0]*m[2][2]) * inv,
			(m[0][0]*m[2][2] - m[0][2]*m[2][0]) * inv,
			(m[0][2]*m[1][0] - m[0][0]*m[1][2]) * inv,
		},
		{
			(m[1][0]*m[2][1] - m[1][1]*m[2][0]) * inv,
			(m[0][1]*m[2][0] - m[0][0]*m[2][1]) * inv,
			(m[0][0]*m[1][1] - m[0][1]*m[1][0]) * inv,
		},
	}, nil
}

// pad3 copies up to three coordinates, zero filling the rest.
func pad3(x []float64) [3]float64 {
	var p [3]float64
	copy(p[:], x)
	return p
}

// ToRectangularCartesian converts x (up to three components in system s)
// into rectangular cartesian coordinates and returns d(X)/d(x).
func ToRectangularCartesian(s System, x []float64) ([3]float64, Matrix, error) {
	q := pad3(x)
	f := s.Focus
	switch s.Type {
	case RectangularCartesian:
		return q, Identity(), nil
	case CylindricalPolar:
		r, th, z := q[0], q[1], q[2]
		c, sn := math.Cos(th), math.Sin(th)
		return [3]float64{r * c, r * sn, z}, Matrix{
			{c, -r * sn, 0},
			{sn, r * c, 0},
			{0, 0, 1},
		}, nil
	case SphericalPolar:
		r, th, ph := q[0], q[1], q[2]
		ct, st := math.Cos(th), math.Sin(th)
		cp, sp := math.Cos(ph), math.Sin(ph)
		return [3]float64{r * ct * cp, r * st * cp, r * sp}, Matrix{
			{ct * cp, -r * st * cp, -r * ct * sp},
			{st * cp, r * ct * cp, -r * st * sp},
			{sp, 0, r * cp},
		}, nil
	case ProlateSpheroidal:
		l, mu, th := q[0], q[1], q[2]
		ch, sh := math.Cosh(l), math.Sinh(l)
		cm, sm := math.Cos(mu), math.Sin(mu)
		ct, st := math.Cos(th), math.Sin(th)
		return [3]float64{f * ch * cm, f * sh * sm * ct, f * sh * sm * st}, Matrix{
			{f * sh * cm, -f * ch * sm, 0},
			{f * ch * sm * ct, f * sh * cm * ct, -f * sh * sm * st},
			{f * ch * sm * st, f * sh * cm * st, f * sh * sm * ct},
		}, nil
	case OblateSpheroidal:
		l, mu, th := q[0], q[1], q[2]
		ch, sh := math.Cosh(l), math.Sinh(l)
		cm, sm := math.Cos(mu), math.Sin(mu)
		ct, st := math.Cos(th), math.Sin(th)
		return [3]float64{f * ch * cm * ct, f * sh * sm, f * ch * cm * st}, Matrix{
			{f * sh * cm * ct, -f * ch * sm * ct, -f * ch * cm * st},
			{f * ch * sm, f * sh * cm, 0},
			{f * sh * cm * st, -f * ch * sm * st, f * ch * cm * ct},
		}, nil
	default:
		return [3]float64{}, Matrix{}, fmt.Errorf("%w: %s", ErrNotConvertible, s.Type)
	}
}

// FromRectangularCartesian converts cartesian X into system s and returns
// d(q)/d(X). The Jacobian error is ErrSingular at points where the system
// degenerates (for example the polar axis); the coordinates are still valid.
func FromRectangularCartesian(s System, X []float64) ([3]float64, Matrix, error) {
	p := pad3(X)
	f := s.Focus
	var q [3]float64
	switch s.Type {
	case RectangularCartesian:
		return p, Identity(), nil
	case CylindricalPolar:
		q = [3]float64{math.Hypot(p[0], p[1]), math.Atan2(p[1], p[0]), p[2]}
	case SphericalPolar:
		r := math.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])
		ph := 0.0
		if r > 0 {
			ph = math.Asin(clamp(p[2] / r))
		}
		q = [3]float64{r, math.Atan2(p[1], p[0]), ph}
	case ProlateSpheroidal:
		if f <= 0 {
			return q, Matrix{}, fmt.Errorf("%w: focus must be positive", ErrNotConvertible)
		}
		d1 := math.Sqrt((p[0]-f)*(p[0]-f) + p[1]*p[1] + p[2]*p[2])
		d2 := math.Sqrt((p[0]+f)*(p[0]+f) + p[1]*p[1] + p[2]*p[2])
		q = [3]float64{
			math.Acosh(math.Max(1, (d1+d2)/(2*f))),
			math.Acos(clamp((d2 - d1) / (2 * f))),
			math.Atan2(p[2], p[1]),
		}
	case OblateSpheroidal:
		if f <= 0 {
			return q, Matrix{}, fmt.Errorf("%w: focus must be positive", ErrNotConvertible)
		}
		rho := math.Hypot(p[0], p[2])
		d1 := math.Hypot(rho-f, p[1])
		d2 := math.Hypot(rho+f, p[1])
		mu := math.Acos(clamp((d2 - d1) / (2 * f)))
		if p[1] < 0 {
			mu = -mu
		}
		q = [3]float64{math.Acosh(math.Max(1, (d1+d2)/(2*f))), mu, math.Atan2(p[2], p[0])}
	default:
		return q, Matrix{}, fmt.Errorf("%w: %s", ErrNotConvertible, s.Type)
	}
	_, fwd, err := ToRectangularCartesian(s, q[:])
	if err != nil {
		return q, Matrix{}, err
	}
	inv, err := fwd.Inverse()
	return q, inv, err
}

// Convert maps x from system from into system to and returns d(y)/d(x).
func Convert(from, to System, x []float64) ([3]float64, Matrix, error) {
	if from.Equal(to) {
		return pad3(x), Identity(), nil
	}
	X, jFrom, err := ToRectangularCartesian(from, x)
	if err != nil {
		return [3]float64{}, Matrix{}, err
	}
	y, jTo, err := FromRectangularCartesian(to, X[:])
	if err != nil {
		return y, Matrix{}, err
	}
	return y, jTo.Mul(jFrom), nil
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
