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

package memstore

import (
	"fmt"

	"github.com/mitchellh/copystructure"

	"dirpx.dev/fieldgraph/apis"
)

// Data is the serializable content of a Store.
type Data struct {
	Elements []ElementData `yaml:"elements" toml:"elements"`
	Fields   []FieldData   `yaml:"fields" toml:"fields"`
}

// ElementData describes one element. A top-level element lists its 2^dim
// corner nodes with xi1 varying fastest. A face (or any sub-element) names
// its Parent and the affine map parent_xi = Origin + Axes * xi; it may omit
// nodes, in which case fields are interpolated on the parent.
type ElementData struct {
	ID        apis.ElementID `yaml:"id" toml:"id"`
	Dimension int            `yaml:"dimension" toml:"dimension"`
	Nodes     []apis.NodeID  `yaml:"nodes,omitempty" toml:"nodes,omitempty"`
	Parent    apis.ElementID `yaml:"parent,omitempty" toml:"parent,omitempty"`
	Origin    []float64      `yaml:"origin,omitempty" toml:"origin,omitempty"`
	// Axes has one row per parent xi and one column per element xi.
	Axes [][]float64 `yaml:"axes,omitempty" toml:"axes,omitempty"`
}

// FieldData describes one stored field. Without Times the field has a single
// time and every node carries one row of values; with Times every node
// carries one row per time.
type FieldData struct {
	Name       string       `yaml:"name" toml:"name"`
	Components int          `yaml:"components" toml:"components"`
	Times      []float64    `yaml:"times,omitempty" toml:"times,omitempty"`
	Nodes      []NodeValues `yaml:"nodes" toml:"nodes"`
}

// NodeValues holds the values of one node.
type NodeValues struct {
	Node   apis.NodeID `yaml:"node" toml:"node"`
	Values [][]float64 `yaml:"values" toml:"values"`
}

// Clone returns a deep copy of d that shares no slices with it.
func (d Data) Clone() (Data, error) {
	cp, err := copystructure.Copy(d)
	if err != nil {
		return Data{}, fmt.Errorf("%w: copy: %v", ErrInvalidData, err)
	}
	return cp.(Data), nil
}

// mustClone is Clone for data the store built itself.
func (d Data) mustClone() Data {
	return copystructure.Must(copystructure.Copy(d)).(Data)
}
