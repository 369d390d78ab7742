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

package field_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/fieldgraph/field"
	"dirpx.dev/fieldgraph/location"
)

func attach(t *testing.T, o field.Owner, f *field.Field) *field.Binding {
	t.Helper()
	b, err := f.Attach(o, field.Public)
	require.NoError(t, err)
	return b
}

func TestAttachCountsManagedReferences(t *testing.T) {
	o := newOwner()
	a, _ := newCounting("a", []float64{1})
	b, _ := newCounting("b", []float64{1}, a, a)

	_, err := b.Attach(o, field.Public)
	require.ErrorIs(t, err, field.ErrCrossManagerDependency, "sources must be managed first")

	attach(t, o, a)
	bb := attach(t, o, b)
	assert.Equal(t, 2, a.ManagedReferences(), "duplicate sources count twice")
	assert.Equal(t, 3, a.AccessCount())
	assert.Equal(t, field.Owner(o), b.Owner())

	_, err = b.Attach(o, field.Public)
	require.ErrorIs(t, err, field.ErrInvalidArgument)
	_, err = b.Attach(newOwner(), field.Public)
	require.ErrorIs(t, err, field.ErrCrossManagerDependency)

	require.ErrorIs(t, b.SetName("x"), field.ErrInvalidArgument)
	bb.SetName("x")
	assert.Equal(t, "x", b.Name())

	bb.Detach()
	assert.False(t, b.IsManaged())
	assert.Equal(t, 0, a.ManagedReferences())
	assert.Equal(t, []string{"a", "a"}, o.unreferenced)
	assert.Nil(t, bb.Field())
}

func TestRedefineManagedField(t *testing.T) {
	o := newOwner()
	a, _ := newCounting("a", []float64{1})
	b, _ := newCounting("b", []float64{2}, a)
	attach(t, o, a)
	attach(t, o, b)
	loc := location.NewNode(1, 0)
	_, err := b.Evaluate(loc)
	require.NoError(t, err)
	id := b.ID()

	replacement, _ := newCounting("replacement", []float64{10})
	require.NoError(t, b.Redefine(replacement, false))

	assert.Equal(t, "b", b.Name())
	assert.Equal(t, id, b.ID())
	assert.Equal(t, 0, b.NumberOfSources())
	assert.Equal(t, 0, a.ManagedReferences())
	assert.Equal(t, []string{"a"}, o.unreferenced)
	assert.Equal(t, field.ChangeDefinition, o.changes["b"])
	assert.Equal(t, 0, o.depth)
	assert.False(t, b.HasCachedLocation(loc))

	res, err := b.Evaluate(loc)
	require.NoError(t, err)
	assert.Equal(t, []float64{10}, res.Values)
}

func TestRedefineFailuresLeaveFieldUnchanged(t *testing.T) {
	o := newOwner()
	a, _ := newCounting("a", []float64{1})
	b, core := newCounting("b", []float64{2}, a)
	user, _ := newCounting("user", []float64{0}, b)
	attach(t, o, a)
	attach(t, o, b)
	attach(t, o, user)

	loose, _ := newCounting("loose", []float64{1})
	withLoose, _ := newCounting("r1", []float64{1}, loose)
	require.ErrorIs(t, b.Redefine(withLoose, false), field.ErrCrossManagerDependency)

	wide, _ := newCounting("r2", []float64{1, 2})
	require.ErrorIs(t, b.Redefine(wide, false), field.ErrShapeChangeWhileInUse)

	cycle, _ := newCounting("r3", []float64{1}, user)
	require.ErrorIs(t, b.Redefine(cycle, false), field.ErrSelfDependency)

	require.ErrorIs(t, b.Redefine(b, false), field.ErrInvalidArgument)

	core.locked = true
	other := field.New("r4")
	require.NoError(t, other.SetType(&countingCore{derivatives: true}, nil, []float64{1}))
	require.ErrorIs(t, b.Redefine(other, false), field.ErrInUse)

	assert.Same(t, a, b.Source(0))
	assert.Equal(t, []float64{2}, b.SourceValues())
	assert.Equal(t, 1, a.ManagedReferences())
	assert.Empty(t, o.changes)

	core.locked = false
	require.NoError(t, b.Redefine(wide, true))
	assert.Equal(t, 2, b.NumberOfComponents())
}

func TestManagedSetTypeIsRejected(t *testing.T) {
	o := newOwner()
	f, _ := newCounting("f", []float64{1})
	attach(t, o, f)

	require.ErrorIs(t, f.SetType(&countingCore{}, nil, []float64{1}), field.ErrInvalidArgument)

	g, _ := newCounting("g", []float64{1})
	g.SetReadOnly(true)
	require.ErrorIs(t, g.SetType(&countingCore{}, nil, []float64{1}), field.ErrReadOnly)
}

func TestManagedChangesAreReported(t *testing.T) {
	o := newOwner()
	f, _ := newCounting("f", []float64{1})
	attach(t, o, f)

	require.NoError(t, f.SetComponentName(0, "x"))
	require.NoError(t, f.SetValuesAt(location.NewNode(1, 0), []float64{4}))

	assert.Equal(t, field.ChangeDefinition|field.ChangeResult, o.changes["f"])
	assert.Equal(t, 0, o.depth)

	f.Access()
	f.Release()
	assert.Equal(t, []string{"f"}, o.unreferenced)
}
