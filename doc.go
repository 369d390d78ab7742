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

// Package fieldgraph provides computed fields over finite element meshes.
//
// A field is a named, typed node that maps a location (an element and its
// xi coordinates, a mesh node, or a point in the space of another field)
// plus a time to a fixed number of real components. Most fields compute
// their values from other fields, their sources, so the fields of a
// program form a directed acyclic graph:
//
//	coordinates (finite element, read from the store)
//	     |
//	 magnitude ----> scaled = 2 * magnitude
//
// # Packages
//
//   - field: the Field node, its evaluation cache and reference counts.
//   - strategy: the field types (constant, add, composite, finite element,
//     derivative, ...) and a registry of constructors keyed by type tag.
//   - manager: a namespace of uniquely named fields. Structural edits (add,
//     remove, modify, rename) are all-or-nothing, and change notifications
//     are batched per outermost change scope.
//   - location, coordsys: where fields are evaluated and in which
//     coordinate system their values are expressed.
//   - store/memstore: an in-memory finite element store with linear
//     Lagrange elements.
//   - resolver, builder: definitions documents (YAML or TOML) turned into
//     managed fields.
//
// # Evaluation
//
// Evaluation is demand driven and memoised per field: a field remembers its
// last location and result, and evaluating it again at an equal location
// returns the cached values without calling its type. Any edit that may
// change values clears the caches of the edited field and of every managed
// field depending on it.
//
//	m := fieldgraph.NewManager()
//	a, _ := strategy.NewConstant("A", []float64{2})
//	_ = m.Add(a, field.Public)
//	b, _ := strategy.NewAdd("B", a, a)
//	_ = m.Add(b, field.Public)
//	v, _ := fieldgraph.EvaluateAtNode(b, 7, 0) // [4]
//
// # Process-wide defaults
//
// The package keeps a read-mostly snapshot of the default configuration,
// field type registry and logger. Readers load it atomically; writers
// (SetConfig, SetTypes, SetLogger, SetAll) take a short build mutex, copy
// the snapshot and publish the copy. NewManager and NewBuilder start from
// that snapshot.
//
// # Concurrency model
//
// Managers, fields and their caches are not safe for concurrent use; a
// program serializes access to one graph, typically from one goroutine.
// The snapshot accessors and the type registry are safe for concurrent use.
package fieldgraph
