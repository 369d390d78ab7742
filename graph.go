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

package fieldgraph

import (
	"dirpx.dev/fieldgraph/builder"
	"dirpx.dev/fieldgraph/field"
	"dirpx.dev/fieldgraph/manager"
	"dirpx.dev/fieldgraph/store/memstore"
)

// Graph is a manager together with the in-memory store its finite element
// fields read. The manager watches the store until Close.
type Graph struct {
	Manager *manager.Manager
	Store   *memstore.Store
	// Fields are the defined fields in definition order.
	Fields []*field.Field

	unwatch func()
}

// Open loads the mesh of doc into a new store and defines its fields in a
// new manager.
func Open(doc builder.Document, opts ...manager.Option) (*Graph, error) {
	store, err := memstore.FromData(doc.Mesh)
	if err != nil {
		return nil, err
	}
	m := NewManager(opts...)
	fields, err := NewBuilder(store).Build(m, doc.Fields)
	if err != nil {
		return nil, err
	}
	return &Graph{
		Manager: m,
		Store:   store,
		Fields:  fields,
		unwatch: m.WatchStore(store),
	}, nil
}

// OpenFile reads a YAML or TOML definitions document and opens it.
func OpenFile(path string, opts ...manager.Option) (*Graph, error) {
	doc, err := builder.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Open(doc, opts...)
}

// ReloadMesh replaces the stored mesh data. Fields reading the store see
// the new data; the field definitions are unchanged.
func (g *Graph) ReloadMesh(doc builder.Document) error {
	return g.Store.Load(doc.Mesh)
}

// Close stops watching the store.
func (g *Graph) Close() {
	if g.unwatch != nil {
		g.unwatch()
		g.unwatch = nil
	}
}
