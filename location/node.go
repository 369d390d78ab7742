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

// Node locates a point by mesh node.
type Node struct {
	node apis.NodeID
	time float64
}

// NewNode returns a node location.
func NewNode(node apis.NodeID, time float64) Node {
	return Node{node: node, time: time}
}

func (Node) sealed() {}

// Kind returns KindNode.
func (Node) Kind() Kind { return KindNode }

// Time returns the evaluation time.
func (l Node) Time() float64 { return l.time }

// Node returns the node id.
func (l Node) Node() apis.NodeID { return l.node }

// Equal compares node and time.
func (l Node) Equal(o Location, _ float64) bool {
	other, ok := o.(Node)
	return ok && l.node == other.node && l.time == other.time
}

// String renders the location, e.g. "node 7 time 0".
func (l Node) String() string {
	return fmt.Sprintf("node %d time %g", l.node, l.time)
}
