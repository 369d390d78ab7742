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

package location_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dirpx.dev/fieldgraph/location"
)

type ref string

func (r ref) EntityName() string { return "test.ref" }
func (r ref) EntityID() string   { return string(r) }

func TestElementXiEqual(t *testing.T) {
	base := location.NewElementXi(3, []float64{0.25, 0.5}, 1)

	tests := []struct {
		name      string
		other     location.Location
		tolerance float64
		want      bool
	}{
		{"identical", location.NewElementXi(3, []float64{0.25, 0.5}, 1), 0, true},
		{"derivative order ignored", location.NewElementXi(3, []float64{0.25, 0.5}, 1, location.WithDerivatives(1)), 0, true},
		{"different element", location.NewElementXi(4, []float64{0.25, 0.5}, 1), 0, false},
		{"different time", location.NewElementXi(3, []float64{0.25, 0.5}, 2), 0, false},
		{"different dimension", location.NewElementXi(3, []float64{0.25}, 1), 0, false},
		{"xi outside exact", location.NewElementXi(3, []float64{0.25, 0.5 + 1e-9}, 1), 0, false},
		{"xi within tolerance", location.NewElementXi(3, []float64{0.25, 0.5 + 1e-9}, 1), 1e-8, true},
		{"top level differs", location.NewElementXi(3, []float64{0.25, 0.5}, 1, location.WithTopLevel(9)), 0, false},
		{"node kind", location.NewNode(3, 1), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Equal(tt.other, tt.tolerance))
		})
	}
}

func TestElementXiCopiesXi(t *testing.T) {
	xi := []float64{0.1, 0.2}
	l := location.NewElementXi(1, xi, 0)
	xi[0] = 0.9
	assert.Equal(t, 0.1, l.XiAt(0))

	got := l.Xi()
	got[1] = 0.7
	assert.Equal(t, 0.2, l.XiAt(1))
}

func TestNodeEqual(t *testing.T) {
	n := location.NewNode(7, 0)
	assert.True(t, n.Equal(location.NewNode(7, 0), 0))
	assert.False(t, n.Equal(location.NewNode(7, 0.5), 0))
	assert.False(t, n.Equal(location.NewNode(8, 0), 0))
	assert.Equal(t, "node 7 time 0", n.String())
}

func TestFieldCoordinateEqual(t *testing.T) {
	l := location.NewFieldCoordinate(ref("a"), []float64{1, 2}, 0)
	assert.True(t, l.Equal(location.NewFieldCoordinate(ref("a"), []float64{1, 2}, 0), 0))
	assert.False(t, l.Equal(location.NewFieldCoordinate(ref("b"), []float64{1, 2}, 0), 0))
	assert.False(t, l.Equal(location.NewFieldCoordinate(ref("a"), []float64{1, 3}, 0), 0))
	assert.Equal(t, location.KindFieldCoordinate, l.Kind())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "element_xi", location.KindElementXi.String())
	assert.Equal(t, "node", location.KindNode.String())
	assert.Equal(t, "field_coordinate", location.KindFieldCoordinate.String())
	assert.Equal(t, "Unknown(0)", location.Kind(0).String())
}
