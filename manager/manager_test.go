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

package manager_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/fieldgraph/config"
	"dirpx.dev/fieldgraph/field"
	"dirpx.dev/fieldgraph/location"
	"dirpx.dev/fieldgraph/manager"
)

func TestAddAndLookup(t *testing.T) {
	m := manager.New()
	b := constant(t, "b", 1)
	a := constant(t, "a", 2)
	require.NoError(t, m.Add(b, field.Public))
	require.NoError(t, m.Add(a, field.Public))

	got, ok := m.FindByName("a")
	require.True(t, ok)
	assert.Same(t, a, got)
	_, ok = m.FindByName("c")
	assert.False(t, ok)
	assert.Equal(t, 2, m.Count())
	assert.Equal(t, []string{"a", "b"}, names(m.Fields()))
	assert.True(t, m.Contains(a))
	assert.Equal(t, field.Owner(m), a.Owner())
	assert.Equal(t, 1, a.AccessCount())
}

func TestAddRejects(t *testing.T) {
	m := manager.New()
	a := constant(t, "a", 1)
	require.NoError(t, m.Add(a, field.Public))

	tests := []struct {
		name string
		f    *field.Field
		want error
	}{
		{"nil", nil, field.ErrInvalidArgument},
		{"twice", a, field.ErrInvalidArgument},
		{"duplicate name", constant(t, "a", 2), field.ErrDuplicateName},
		{"empty name", constant(t, "", 2), field.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, m.Add(tt.f, field.Public), tt.want)
			assert.Equal(t, 1, m.Count())
		})
	}
}

func TestAddAbsorbsUnmanagedSources(t *testing.T) {
	m := manager.New()
	var rec batches
	m.RegisterChangeListener(rec.listen)

	a := constant(t, "a", 1)
	anon := constant(t, "", 2)
	s := sum(t, "s", a, anon)
	require.NoError(t, m.Add(s, field.Public))

	if diff := cmp.Diff([]string{"a", "s", "temp1"}, names(m.Fields())); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "temp1", anon.Name())
	assert.Equal(t, field.PrivateVolatile, a.Status())
	assert.Equal(t, field.PrivateVolatile, anon.Status())
	assert.Equal(t, field.Public, s.Status())
	assert.Equal(t, 1, a.ManagedReferences())
	require.Len(t, rec.got, 1)
	assert.Equal(t, []string{"a:add", "temp1:add", "s:add"}, summary(rec.got[0]))
}

func TestAddRenamesCollidingSources(t *testing.T) {
	m := manager.New(manager.WithConfig(config.NewConfig(config.WithAutoNamePrefix("tmp_"))))
	require.NoError(t, m.Add(constant(t, "x", 1), field.Public))

	clash := constant(t, "x", 2)
	twin := constant(t, "s", 3)
	s := sum(t, "s", clash, twin)
	require.NoError(t, m.Add(s, field.Public))

	assert.Equal(t, "tmp_1", clash.Name())
	assert.Equal(t, "tmp_2", twin.Name())
	assert.Equal(t, []string{"s", "tmp_1", "tmp_2", "x"}, names(m.Fields()))
}

func TestCrossManagerDependency(t *testing.T) {
	m1, m2 := manager.New(), manager.New()
	x := constant(t, "x", 1)
	require.NoError(t, m2.Add(x, field.Public))

	y := constant(t, "y", 2)
	s := sum(t, "s", x, y)
	require.ErrorIs(t, m1.Add(s, field.Public), field.ErrCrossManagerDependency)
	require.ErrorIs(t, m1.ManageRecursive(s, field.Public), field.ErrCrossManagerDependency)
	assert.Zero(t, m1.Count())
	assert.False(t, y.IsManaged())
	assert.False(t, s.IsManaged())
}

func TestCheckManager(t *testing.T) {
	m1, m2 := manager.New(), manager.New()
	x := constant(t, "x", 1)
	require.NoError(t, m1.Add(x, field.Public))
	w := constant(t, "w", 1)
	require.NoError(t, m2.Add(w, field.Public))

	var candidate *manager.Manager
	assert.True(t, manager.CheckManager(sum(t, "s", x, constant(t, "u", 1)), &candidate))
	assert.Same(t, m1, candidate)

	candidate = nil
	assert.False(t, manager.CheckManager(sum(t, "mixed", x, w), &candidate))

	candidate = m2
	assert.False(t, manager.CheckManager(x, &candidate))

	candidate = nil
	assert.True(t, manager.CheckManager(constant(t, "free", 1), &candidate))
	assert.Nil(t, candidate)
}

func TestManageRecursive(t *testing.T) {
	m := manager.New()
	a := constant(t, "a", 1)
	s := sum(t, "s", a, a)
	require.NoError(t, m.ManageRecursive(s, field.Public))
	require.NoError(t, m.ManageRecursive(s, field.Public))

	assert.Equal(t, 2, m.Count())
	assert.Equal(t, 2, a.ManagedReferences())
	require.ErrorIs(t, m.ManageRecursive(nil, field.Public), field.ErrInvalidArgument)
}

func TestRemove(t *testing.T) {
	m := manager.New()
	a := constant(t, "a", 1)
	require.NoError(t, m.Add(a, field.Public))
	s := sum(t, "s", a, a)
	require.NoError(t, m.Add(s, field.Public))

	require.ErrorIs(t, m.Remove(a), field.ErrInUse)
	require.ErrorIs(t, m.Remove(constant(t, "z", 1)), field.ErrNotFound)

	s.Access()
	require.ErrorIs(t, m.Remove(s), field.ErrInUse)
	s.Release()

	require.NoError(t, m.Remove(s))
	assert.False(t, s.IsManaged())
	assert.Zero(t, a.ManagedReferences())
	assert.Equal(t, []string{"a"}, names(m.Fields()))
	require.NoError(t, m.Remove(a))
	assert.Zero(t, m.Count())
}

func TestRemoveDropsPrivateVolatileSources(t *testing.T) {
	m := manager.New()
	var rec batches
	a := constant(t, "a", 1)
	b := constant(t, "b", 2)
	s := sum(t, "s", a, b)
	require.NoError(t, m.Add(s, field.Public))
	m.RegisterChangeListener(rec.listen)

	b.Access()
	require.NoError(t, m.Remove(s))
	assert.Equal(t, []string{"b"}, names(m.Fields()))
	require.Len(t, rec.got, 1)
	assert.Equal(t, []string{"s:remove", "a:remove"}, summary(rec.got[0]))

	b.Release()
	assert.Zero(t, m.Count())
	assert.False(t, b.IsManaged())
	require.Len(t, rec.got, 2)
	assert.Equal(t, []string{"b:remove"}, summary(rec.got[1]))
}

func TestRename(t *testing.T) {
	m := manager.New()
	a := constant(t, "a", 1)
	require.NoError(t, m.Add(a, field.Public))
	require.NoError(t, m.Add(constant(t, "b", 1), field.Public))
	var rec batches
	m.RegisterChangeListener(rec.listen)

	require.ErrorIs(t, m.Rename(a, "b"), field.ErrDuplicateName)
	require.ErrorIs(t, m.Rename(a, ""), field.ErrInvalidArgument)
	require.ErrorIs(t, m.Rename(constant(t, "x", 1), "y"), field.ErrNotFound)
	require.ErrorIs(t, a.SetName("c"), field.ErrInvalidArgument)
	require.NoError(t, m.Rename(a, "a"))
	assert.Empty(t, rec.got)

	require.NoError(t, m.Rename(a, "c"))
	assert.Equal(t, "c", a.Name())
	_, ok := m.FindByName("a")
	assert.False(t, ok)
	got, ok := m.FindByName("c")
	require.True(t, ok)
	assert.Same(t, a, got)
	require.Len(t, rec.got, 1)
	assert.Equal(t, []string{"c:identifier"}, summary(rec.got[0]))
}

func TestIsNotInUse(t *testing.T) {
	m := manager.New(manager.WithConfig(config.NewConfig(config.WithNotInUseThreshold(0))))
	a := constant(t, "a", 1)
	require.NoError(t, m.Add(a, field.Public))
	assert.True(t, m.IsNotInUse(a))

	a.Access()
	assert.False(t, m.IsNotInUse(a))
	a.Release()

	require.NoError(t, m.Add(sum(t, "s", a, a), field.Public))
	assert.False(t, m.IsNotInUse(a))
}

func TestEndToEndModifyPropagates(t *testing.T) {
	m := manager.New()
	a := constant(t, "A", 2)
	require.NoError(t, m.Add(a, field.Public))
	b := sum(t, "B", a, a)
	require.NoError(t, m.Add(b, field.Public))
	at := location.NewNode(7, 0)

	res, err := b.Evaluate(at)
	require.NoError(t, err)
	assert.Equal(t, []float64{4}, res.Values)

	var rec batches
	m.RegisterChangeListener(rec.listen)
	m.BeginChange()
	require.NoError(t, m.Modify(a, constant(t, "five", 5)))
	assert.Empty(t, rec.got)
	m.EndChange()

	res, err = b.Evaluate(at)
	require.NoError(t, err)
	assert.Equal(t, []float64{10}, res.Values)
	require.Len(t, rec.got, 1)
	assert.Equal(t, []string{"A:definition", "B:dependency"}, summary(rec.got[0]))
	assert.Same(t, a, rec.got[0][0].Field)
	assert.Same(t, b, rec.got[0][1].Field)
}

func TestModifyReachesUnmanagedDependents(t *testing.T) {
	m := manager.New()
	a := constant(t, "A", 2)
	require.NoError(t, m.Add(a, field.Public))
	b := sum(t, "B", a, a)
	at := location.NewNode(7, 0)

	res, err := b.Evaluate(at)
	require.NoError(t, err)
	assert.Equal(t, []float64{4}, res.Values)

	require.NoError(t, m.Modify(a, constant(t, "five", 5)))
	assert.False(t, m.Contains(b))
	res, err = b.Evaluate(at)
	require.NoError(t, err)
	assert.Equal(t, []float64{10}, res.Values)
}
