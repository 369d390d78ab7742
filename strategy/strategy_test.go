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

package strategy_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/fieldgraph/apis"
	"dirpx.dev/fieldgraph/coordsys"
	"dirpx.dev/fieldgraph/field"
	"dirpx.dev/fieldgraph/location"
	"dirpx.dev/fieldgraph/store/memstore"
	"dirpx.dev/fieldgraph/strategy"
)

// square is a unit square element 1 with corners 1..4 and a face element 2
// along xi2 = 0. "coordinates" is (2*xi1, 3*xi2).
func square(t *testing.T) *memstore.Store {
	t.Helper()
	s, err := memstore.FromData(memstore.Data{
		Elements: []memstore.ElementData{
			{ID: 1, Dimension: 2, Nodes: []apis.NodeID{1, 2, 3, 4}},
			{ID: 2, Dimension: 1, Parent: 1, Origin: []float64{0, 0}, Axes: [][]float64{{1}, {0}}},
		},
		Fields: []memstore.FieldData{
			{Name: "coordinates", Components: 2, Nodes: []memstore.NodeValues{
				{Node: 1, Values: [][]float64{{0, 0}}},
				{Node: 2, Values: [][]float64{{2, 0}}},
				{Node: 3, Values: [][]float64{{0, 3}}},
				{Node: 4, Values: [][]float64{{2, 3}}},
			}},
		},
	})
	require.NoError(t, err)
	return s
}

func coordinates(t *testing.T, s apis.Store) *field.Field {
	t.Helper()
	f, err := strategy.NewFiniteElement("coordinates", s, "coordinates")
	require.NoError(t, err)
	return f
}

func constant(t *testing.T, name string, values ...float64) *field.Field {
	t.Helper()
	f, err := strategy.NewConstant(name, values)
	require.NoError(t, err)
	return f
}

func eval(t *testing.T, f *field.Field, loc location.Location) field.Result {
	t.Helper()
	res, err := f.Evaluate(loc)
	require.NoError(t, err)
	return res
}

var (
	node = location.NewNode(1, 0)
	mid  = location.NewElementXi(1, []float64{0.25, 0.5}, 0, location.WithDerivatives(1))
)

func TestConstant(t *testing.T) {
	c := constant(t, "c", 1, 2)

	assert.Equal(t, []float64{1, 2}, eval(t, c, node).Values)
	res := eval(t, c, mid)
	assert.Equal(t, []float64{0, 0, 0, 0}, res.Derivatives)
	assert.True(t, c.IsDefinedAt(node))
	assert.Equal(t, "constant values 1 2", c.Describe())

	require.NoError(t, c.SetValuesAt(node, []float64{5, 6}))
	assert.Equal(t, []float64{5, 6}, c.SourceValues())
	assert.Equal(t, []float64{5, 6}, eval(t, c, location.NewNode(9, 3)).Values)

	_, err := strategy.NewConstant("empty", nil)
	require.ErrorIs(t, err, field.ErrInvalidArgument)
}

func TestStringConstant(t *testing.T) {
	s, err := strategy.NewStringConstant("s", "hello")
	require.NoError(t, err)

	got, err := s.EvaluateAsString(0, node)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	got, err = s.EvaluateAsString(field.AllComponents, node)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	_, err = s.Evaluate(node)
	require.ErrorIs(t, err, field.ErrEvaluationFailed)
	assert.False(t, s.IsTrueAt(node))
	assert.Equal(t, `string_constant "hello"`, s.Describe())
}

func TestAddWithDerivatives(t *testing.T) {
	x := coordinates(t, square(t))
	sum, err := strategy.NewAdd("sum", x, x, 2, -1)
	require.NoError(t, err)

	res := eval(t, sum, mid)
	assert.InDeltaSlice(t, []float64{0.5, 1.5}, res.Values, 1e-12)
	assert.InDeltaSlice(t, []float64{2, 0, 0, 3}, res.Derivatives, 1e-12)

	plain, err := strategy.NewAdd("plain", constant(t, "a", 1), constant(t, "b", 2))
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, eval(t, plain, node).Values)
	assert.Equal(t, []float64{1, 1}, plain.SourceValues())

	_, err = strategy.NewAdd("bad", x, constant(t, "one", 1))
	require.ErrorIs(t, err, field.ErrInvalidArgument)
	_, err = strategy.NewAdd("bad", x, x, 1)
	require.ErrorIs(t, err, field.ErrInvalidArgument)
}

func TestMultiplyProductRule(t *testing.T) {
	x := coordinates(t, square(t))
	sq, err := strategy.NewMultiply("sq", x, x)
	require.NoError(t, err)

	res := eval(t, sq, mid)
	assert.InDeltaSlice(t, []float64{0.25, 2.25}, res.Values, 1e-12)
	assert.InDeltaSlice(t, []float64{2, 0, 0, 9}, res.Derivatives, 1e-12)
}

func TestScaleAndInverseWrite(t *testing.T) {
	c := constant(t, "c", 1, 2)
	s, err := strategy.NewScale("s", c, []float64{2, 4})
	require.NoError(t, err)

	assert.Equal(t, []float64{2, 8}, eval(t, s, node).Values)
	require.NoError(t, s.SetValuesAt(node, []float64{4, 4}))
	assert.Equal(t, []float64{2, 1}, c.SourceValues())
	assert.Equal(t, []float64{4, 4}, eval(t, s, node).Values)

	zero, err := strategy.NewScale("z", c, []float64{0, 1})
	require.NoError(t, err)
	require.ErrorIs(t, zero.SetValuesAt(node, []float64{1, 1}), field.ErrInvalidArgument)

	_, err = strategy.NewScale("bad", c, []float64{1})
	require.ErrorIs(t, err, field.ErrInvalidArgument)
}

func TestComposite(t *testing.T) {
	a := constant(t, "a", 1, 2)
	b := constant(t, "b", 3)

	cat, err := strategy.NewConcatenate("cat", a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, eval(t, cat, node).Values)
	assert.Equal(t, "composite a.1 a.2 b.1", cat.Describe())

	second, err := strategy.NewComponent("second", a, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, eval(t, second, node).Values)

	mixed, err := strategy.NewComposite("mixed", []*field.Field{a}, []strategy.Selector{
		{Source: strategy.ConstantSource, Value: 0.5},
		{Source: 0, Component: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1}, eval(t, mixed, node).Values)

	swap, err := strategy.NewComposite("swap", []*field.Field{a}, []strategy.Selector{
		{Source: 0, Component: 1},
		{Source: 0, Component: 0},
	})
	require.NoError(t, err)
	require.NoError(t, swap.SetValuesAt(node, []float64{5, 6}))
	assert.Equal(t, []float64{6, 5}, a.SourceValues())

	_, err = strategy.NewComponent("bad", a, 2)
	require.ErrorIs(t, err, field.ErrInvalidArgument)
	_, err = strategy.NewComposite("bad", []*field.Field{a}, []strategy.Selector{{Source: 1}})
	require.ErrorIs(t, err, field.ErrInvalidArgument)

	sel, err := strategy.Selectors(swap)
	require.NoError(t, err)
	sel[0].Component = 0
	again, err := strategy.Selectors(swap)
	require.NoError(t, err)
	assert.Equal(t, 1, again[0].Component, "selectors are returned by copy")

	_, err = strategy.Selectors(a)
	require.ErrorIs(t, err, field.ErrTypeMismatch)
}

func TestCompositeWriteIsAllOrNothing(t *testing.T) {
	a := constant(t, "a", 1, 2)
	k := constant(t, "k", 3)
	sum, err := strategy.NewAdd("sum", k, k)
	require.NoError(t, err)
	mixed, err := strategy.NewComposite("mixed", []*field.Field{a, sum}, []strategy.Selector{
		{Source: 0, Component: 1},
		{Source: 1, Component: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 6}, eval(t, mixed, node).Values)

	err = mixed.SetValuesAt(node, []float64{9, 7})
	require.ErrorIs(t, err, field.ErrUnsupported)
	assert.Equal(t, []float64{1, 2}, a.SourceValues())
	assert.Equal(t, []float64{2, 6}, eval(t, mixed, node).Values)
}

func TestCompositeDerivatives(t *testing.T) {
	x := coordinates(t, square(t))
	y, err := strategy.NewComponent("y", x, 1)
	require.NoError(t, err)

	res := eval(t, y, mid)
	assert.InDeltaSlice(t, []float64{1.5}, res.Values, 1e-12)
	assert.InDeltaSlice(t, []float64{0, 3}, res.Derivatives, 1e-12)
}

func TestMagnitude(t *testing.T) {
	m, err := strategy.NewMagnitude("m", constant(t, "v", 3, 4))
	require.NoError(t, err)
	assert.Equal(t, []float64{5}, eval(t, m, node).Values)

	x := coordinates(t, square(t))
	mx, err := strategy.NewMagnitude("mx", x)
	require.NoError(t, err)
	res := eval(t, mx, mid)
	mag := math.Sqrt(0.5*0.5 + 1.5*1.5)
	assert.InDelta(t, mag, res.Values[0], 1e-12)
	assert.InDeltaSlice(t, []float64{0.5 * 2 / mag, 1.5 * 3 / mag}, res.Derivatives, 1e-12)
}

func TestIf(t *testing.T) {
	cond := constant(t, "cond", 0)
	then := constant(t, "then", 1, 1)
	otherwise := constant(t, "else", 2, 2)
	f, err := strategy.NewIf("if", cond, then, otherwise)
	require.NoError(t, err)

	assert.Equal(t, []float64{2, 2}, eval(t, f, node).Values)

	require.NoError(t, cond.SetValuesAt(node, []float64{1}))
	f.ClearCache()
	assert.Equal(t, []float64{1, 1}, eval(t, f, node).Values)
	assert.True(t, f.IsDefinedAt(node))

	require.NoError(t, cond.SetValuesAt(node, []float64{field.ZeroTolerance / 10}))
	f.ClearCache()
	assert.Equal(t, []float64{2, 2}, eval(t, f, node).Values)

	_, err = strategy.NewIf("bad", cond, then, cond)
	require.ErrorIs(t, err, field.ErrInvalidArgument)
}

func TestCoordinateTransformation(t *testing.T) {
	polar := constant(t, "polar", 2, math.Pi/2, 5)
	polar.SetCoordinateSystem(coordsys.System{Type: coordsys.CylindricalPolar})

	rc, err := strategy.NewCoordinateTransformation("rc", polar, coordsys.Default())
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 2, 5}, eval(t, rc, node).Values, 1e-12)
	assert.Equal(t, coordsys.RectangularCartesian, rc.CoordinateSystem().Type)

	x := coordinates(t, square(t))
	same, err := strategy.NewCoordinateTransformation("same", x, coordsys.Default())
	require.NoError(t, err)
	res := eval(t, same, mid)
	assert.InDeltaSlice(t, []float64{0.5, 1.5, 0}, res.Values, 1e-12)
	assert.InDeltaSlice(t, []float64{2, 0, 0, 3, 0, 0}, res.Derivatives, 1e-12)

	_, err = strategy.NewCoordinateTransformation("bad", x, coordsys.System{Type: coordsys.Fibre})
	require.ErrorIs(t, err, field.ErrInvalidArgument)
}

func TestTimeValue(t *testing.T) {
	tv, err := strategy.NewTimeValue("time")
	require.NoError(t, err)
	assert.Equal(t, []float64{2.5}, eval(t, tv, location.NewNode(1, 2.5)).Values)
	assert.True(t, tv.HasMultipleTimes())

	sum, err := strategy.NewAdd("later", tv, constant(t, "one", 1))
	require.NoError(t, err)
	assert.True(t, sum.HasMultipleTimes())
}

func TestDerivativeOnTopLevelElement(t *testing.T) {
	s := square(t)
	x := coordinates(t, s)

	dx1, err := strategy.NewDerivative("dx1", x, 0, s)
	require.NoError(t, err)
	dx2, err := strategy.NewDerivative("dx2", x, 1, s)
	require.NoError(t, err)

	face := location.NewElementXi(2, []float64{0.5}, 0)
	assert.InDeltaSlice(t, []float64{2, 0}, eval(t, dx1, face).Values, 1e-12)
	assert.InDeltaSlice(t, []float64{0, 3}, eval(t, dx2, face).Values, 1e-12)
	assert.True(t, dx2.IsDefinedAt(face))

	_, err = dx1.Evaluate(node)
	require.ErrorIs(t, err, field.ErrEvaluationFailed)

	dx3, err := strategy.NewDerivative("dx3", x, 2, s)
	require.NoError(t, err)
	_, err = dx3.Evaluate(face)
	require.ErrorIs(t, err, field.ErrEvaluationFailed)
	assert.False(t, dx3.IsDefinedAt(face))

	_, err = dx1.Evaluate(face.WithOrder(1))
	require.ErrorIs(t, err, field.ErrDerivativesUnavailable)
}

func TestFiniteElement(t *testing.T) {
	s := square(t)
	x := coordinates(t, s)

	assert.True(t, x.IsReadOnly())
	assert.Equal(t, 2, x.NumberOfComponents())
	assert.Equal(t, []float64{2, 3}, eval(t, x, location.NewNode(4, 0)).Values)
	assert.Equal(t, "finite_element coordinates", x.Describe())

	backed, ok := x.Core().(field.StoreBacked)
	require.True(t, ok)
	assert.Equal(t, "coordinates", backed.StoreField())

	d, ok := x.NativeDiscretization(1)
	require.True(t, ok)
	assert.Equal(t, []int{1, 1}, d)
	assert.False(t, x.HasMultipleTimes())

	require.NoError(t, x.SetValuesAt(location.NewNode(4, 0), []float64{4, 6}))
	stored, err := s.NodeValues("coordinates", 4, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 6}, stored)
	assert.Equal(t, []float64{4, 6}, eval(t, x, location.NewNode(4, 0)).Values)

	require.ErrorIs(t, x.SetValuesAt(mid, []float64{0, 0}), field.ErrUnsupported)

	_, err = x.Evaluate(location.NewFieldCoordinate(constant(t, "ref", 1), []float64{1}, 0))
	require.ErrorIs(t, err, field.ErrEvaluationFailed)
	_, err = x.Evaluate(location.NewElementXi(1, []float64{2, 0}, 0))
	require.ErrorIs(t, err, field.ErrEvaluationFailed)
	assert.False(t, x.IsDefinedAt(location.NewNode(99, 0)))

	_, err = strategy.NewFiniteElement("missing", s, "missing")
	require.ErrorIs(t, err, field.ErrNotFound)
	_, err = strategy.NewFiniteElement("nostore", nil, "coordinates")
	require.ErrorIs(t, err, field.ErrInvalidArgument)
}

func TestCopyAndCompare(t *testing.T) {
	a := constant(t, "a", 1, 2)
	one, err := strategy.NewComponent("one", a, 0)
	require.NoError(t, err)
	two, err := strategy.NewComponent("two", a, 0)
	require.NoError(t, err)
	other, err := strategy.NewComponent("other", a, 1)
	require.NoError(t, err)

	assert.True(t, field.ContentsMatch(one, two))
	assert.False(t, field.ContentsMatch(one, other))
	assert.True(t, one.Core().Compare(one.Core().Copy()))
}

func TestBuildFromParams(t *testing.T) {
	s := square(t)
	reg := strategy.Builtins()
	x := coordinates(t, s)
	polar := constant(t, "polar", 1, 0, 0)

	ct, err := reg.Build(strategy.TypeCoordinateTransformation, strategy.Args{
		Name:    "ps",
		Sources: []*field.Field{polar},
		Params: map[string]any{
			"coordinate_system": map[string]any{"type": "prolate_spheroidal", "focus": "35"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, coordsys.System{Type: coordsys.ProlateSpheroidal, Focus: 35}, ct.CoordinateSystem())

	d, err := reg.Build(strategy.TypeDerivative, strategy.Args{
		Name: "d", Sources: []*field.Field{x}, Store: s,
		Params: map[string]any{"xi_index": "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "derivative coordinates xi 2", d.Describe())

	comp, err := reg.Build(strategy.TypeComposite, strategy.Args{
		Name: "c", Sources: []*field.Field{x},
		Params: map[string]any{"selectors": []any{
			map[string]any{"source": 0, "component": 1},
			map[string]any{"source": -1, "value": 7},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 7}, eval(t, comp, location.NewNode(4, 0)).Values)

	fe, err := reg.Build(strategy.TypeFiniteElement, strategy.Args{Name: "coordinates", Store: s})
	require.NoError(t, err)
	assert.Equal(t, 2, fe.NumberOfComponents())

	str, err := reg.Build(strategy.TypeStringConstant, strategy.Args{Name: "s", Params: map[string]any{"value": "hi"}})
	require.NoError(t, err)
	assert.Equal(t, strategy.TypeStringConstant, str.Type())

	_, err = reg.Build(strategy.TypeConstant, strategy.Args{Name: "c", Values: []float64{1}, Params: map[string]any{"bogus": 1}})
	require.ErrorIs(t, err, field.ErrInvalidArgument)
	_, err = reg.Build(strategy.TypeAdd, strategy.Args{Name: "a", Sources: []*field.Field{x}})
	require.ErrorIs(t, err, field.ErrInvalidArgument)
}
