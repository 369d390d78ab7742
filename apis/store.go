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

package apis

// ElementID is the stable identity of a mesh element in a Store.
type ElementID int64

// NodeID is the stable identity of a mesh node in a Store.
type NodeID int64

// Store is the finite element storage collaborator. It owns elements, nodes
// and the raw values of stored fields; computed fields only read and write
// through it.
//
// Implementations are not required to be safe for concurrent use; the field
// graph calls them from a single goroutine.
type Store interface {
	// ElementDimension returns the number of xi coordinates of element.
	ElementDimension(element ElementID) (int, bool)

	// TopLevel maps element:xi onto a top-level ancestor element. An optional
	// hint names the preferred ancestor; it is used when it is an ancestor.
	// A top-level element maps onto itself.
	TopLevel(element ElementID, xi []float64, hint ...ElementID) (ElementID, []float64, error)

	// NumberOfComponents returns the component count of a stored field.
	NumberOfComponents(field string) (int, bool)

	// IsDefinedAtNode reports whether field has values at node.
	IsDefinedAtNode(field string, node NodeID) bool

	// IsDefinedInElement reports whether field can be interpolated over element.
	IsDefinedInElement(field string, element ElementID) bool

	// NodeValues returns the values of field at node and time.
	NodeValues(field string, node NodeID, time float64) ([]float64, error)

	// ElementValues interpolates field at element:xi and time. When
	// derivatives is true the second result holds components x dimension
	// first derivatives with respect to xi, row-major by component.
	ElementValues(field string, element ElementID, xi []float64, time float64, derivatives bool) ([]float64, []float64, error)

	// SetNodeValues overwrites the values of field at node and time.
	SetNodeValues(field string, node NodeID, time float64, values []float64) error

	// HasMultipleTimes reports whether field varies with time.
	HasMultipleTimes(field string) bool

	// ElementDiscretization returns the number of basis intervals per xi
	// direction of field in element.
	ElementDiscretization(field string, element ElementID) ([]int, bool)

	// Subscribe registers fn to be called after stored data changes.
	// The returned function cancels the subscription.
	Subscribe(fn func(StoreChange)) (cancel func())
}

// StoreChange describes an external change to stored data.
type StoreChange struct {
	// Fields lists the stored field names whose values or definitions changed.
	// An empty list means every field may have changed.
	Fields []string
}

// Affects reports whether the change touches the stored field name.
func (c StoreChange) Affects(name string) bool {
	if len(c.Fields) == 0 {
		return true
	}
	for _, f := range c.Fields {
		if f == name {
			return true
		}
	}
	return false
}
