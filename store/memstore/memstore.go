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

// Package memstore is an in-memory finite element store: linear Lagrange
// elements of dimension one to three, sub-elements mapped affinely onto a
// parent, and nodal fields sampled at one or more times.
package memstore

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"

	"dirpx.dev/fieldgraph/apis"
)

var (
	// ErrUnknownElement is returned for elements the store does not hold.
	ErrUnknownElement = errors.New("fieldgraph(memstore): unknown element")
	// ErrUnknownField is returned for fields the store does not hold.
	ErrUnknownField = errors.New("fieldgraph(memstore): unknown field")
	// ErrUnknownNode is returned for nodes without values.
	ErrUnknownNode = errors.New("fieldgraph(memstore): node has no values")
	// ErrUnknownTime is returned when writing at a time the field is not sampled at.
	ErrUnknownTime = errors.New("fieldgraph(memstore): field is not sampled at time")
	// ErrOutsideElement is returned for xi outside the unit element.
	ErrOutsideElement = errors.New("fieldgraph(memstore): xi outside element")
	// ErrInvalidData is returned for inconsistent store content.
	ErrInvalidData = errors.New("fieldgraph(memstore): invalid data")
)

// xiSlack is how far xi may stray outside [0, 1] and still be inside.
const xiSlack = 1e-12

// MaxDimension is the largest supported element dimension.
const MaxDimension = 3

type element struct {
	id     apis.ElementID
	dim    int
	nodes  []apis.NodeID
	parent apis.ElementID
	origin []float64
	axes   [][]float64
}

type storedField struct {
	components int
	times      []float64
	nodes      map[apis.NodeID][][]float64
}

// Store implements apis.Store. It is safe for concurrent use; subscribers
// are called without the store lock held.
type Store struct {
	mu       sync.RWMutex
	elements map[apis.ElementID]*element
	fields   map[string]*storedField

	subMu   sync.Mutex
	subs    map[int]func(apis.StoreChange)
	nextSub int
}

var _ apis.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		elements: make(map[apis.ElementID]*element),
		fields:   make(map[string]*storedField),
		subs:     make(map[int]func(apis.StoreChange)),
	}
}

// FromData returns a store holding d.
func FromData(d Data) (*Store, error) {
	s := New()
	if err := s.Load(d); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the content of the store with d and notifies subscribers
// that every field changed. On error the store is unchanged.
func (s *Store) Load(d Data) error {
	d, err := d.Clone()
	if err != nil {
		return err
	}
	elements, fields, err := compile(d)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.elements = elements
	s.fields = fields
	s.mu.Unlock()
	s.notify(apis.StoreChange{})
	return nil
}

// Snapshot returns a copy of the content of the store.
func (s *Store) Snapshot() Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var d Data
	for _, id := range slices.Sorted(maps.Keys(s.elements)) {
		e := s.elements[id]
		d.Elements = append(d.Elements, ElementData{
			ID: e.id, Dimension: e.dim, Nodes: e.nodes,
			Parent: e.parent, Origin: e.origin, Axes: e.axes,
		})
	}
	for _, name := range slices.Sorted(maps.Keys(s.fields)) {
		f := s.fields[name]
		fd := FieldData{Name: name, Components: f.components, Times: f.times}
		for _, n := range slices.Sorted(maps.Keys(f.nodes)) {
			fd.Nodes = append(fd.Nodes, NodeValues{Node: n, Values: f.nodes[n]})
		}
		d.Fields = append(d.Fields, fd)
	}
	return d.mustClone()
}

// compile builds the store content from d, which it takes ownership of.
func compile(d Data) (map[apis.ElementID]*element, map[string]*storedField, error) {
	elements := make(map[apis.ElementID]*element, len(d.Elements))
	for _, ed := range d.Elements {
		if ed.ID == 0 {
			return nil, nil, fmt.Errorf("%w: element id 0 is reserved", ErrInvalidData)
		}
		if _, dup := elements[ed.ID]; dup {
			return nil, nil, fmt.Errorf("%w: duplicate element %d", ErrInvalidData, ed.ID)
		}
		if ed.Dimension < 1 || ed.Dimension > MaxDimension {
			return nil, nil, fmt.Errorf("%w: element %d has dimension %d", ErrInvalidData, ed.ID, ed.Dimension)
		}
		if len(ed.Nodes) != 0 && len(ed.Nodes) != 1<<ed.Dimension {
			return nil, nil, fmt.Errorf("%w: element %d has %d nodes, want %d", ErrInvalidData, ed.ID, len(ed.Nodes), 1<<ed.Dimension)
		}
		if ed.Parent == 0 && len(ed.Nodes) == 0 {
			return nil, nil, fmt.Errorf("%w: top-level element %d has no nodes", ErrInvalidData, ed.ID)
		}
		elements[ed.ID] = &element{
			id: ed.ID, dim: ed.Dimension, nodes: ed.Nodes,
			parent: ed.Parent, origin: ed.Origin, axes: ed.Axes,
		}
	}
	for _, e := range elements {
		if e.parent == 0 {
			continue
		}
		p, ok := elements[e.parent]
		if !ok {
			return nil, nil, fmt.Errorf("%w: element %d has unknown parent %d", ErrInvalidData, e.id, e.parent)
		}
		if len(e.origin) != p.dim || len(e.axes) != p.dim {
			return nil, nil, fmt.Errorf("%w: element %d needs a %d dimensional map onto parent %d", ErrInvalidData, e.id, p.dim, p.id)
		}
		for _, row := range e.axes {
			if len(row) != e.dim {
				return nil, nil, fmt.Errorf("%w: element %d axes rows need %d columns", ErrInvalidData, e.id, e.dim)
			}
		}
		// Parent chains must end at a top-level element.
		seen := map[apis.ElementID]bool{e.id: true}
		for q := p; q.parent != 0; q = elements[q.parent] {
			if seen[q.id] || elements[q.parent] == nil {
				return nil, nil, fmt.Errorf("%w: element %d has a broken parent chain", ErrInvalidData, e.id)
			}
			seen[q.id] = true
		}
	}

	fields := make(map[string]*storedField, len(d.Fields))
	for _, fd := range d.Fields {
		if fd.Name == "" {
			return nil, nil, fmt.Errorf("%w: unnamed field", ErrInvalidData)
		}
		if _, dup := fields[fd.Name]; dup {
			return nil, nil, fmt.Errorf("%w: duplicate field %q", ErrInvalidData, fd.Name)
		}
		if fd.Components < 1 {
			return nil, nil, fmt.Errorf("%w: field %q has %d components", ErrInvalidData, fd.Name, fd.Components)
		}
		if !sort.Float64sAreSorted(fd.Times) {
			return nil, nil, fmt.Errorf("%w: field %q times are not ascending", ErrInvalidData, fd.Name)
		}
		rows := max(1, len(fd.Times))
		sf := &storedField{components: fd.Components, times: fd.Times, nodes: make(map[apis.NodeID][][]float64)}
		for _, nv := range fd.Nodes {
			if len(nv.Values) != rows {
				return nil, nil, fmt.Errorf("%w: field %q node %d has %d rows, want %d", ErrInvalidData, fd.Name, nv.Node, len(nv.Values), rows)
			}
			for _, row := range nv.Values {
				if len(row) != fd.Components {
					return nil, nil, fmt.Errorf("%w: field %q node %d has a row of %d values", ErrInvalidData, fd.Name, nv.Node, len(row))
				}
			}
			sf.nodes[nv.Node] = nv.Values
		}
		fields[fd.Name] = sf
	}
	return elements, fields, nil
}

// Subscribe registers fn for change notifications.
func (s *Store) Subscribe(fn func(apis.StoreChange)) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify(c apis.StoreChange) {
	s.subMu.Lock()
	ids := slices.Sorted(maps.Keys(s.subs))
	fns := make([]func(apis.StoreChange), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(c)
	}
}

func (s *Store) ElementDimension(id apis.ElementID) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.elements[id]
	if !ok {
		return 0, false
	}
	return e.dim, true
}

// TopLevel follows the parent chain of id. The walk stops early at the
// first hint found on the chain.
func (s *Store) TopLevel(id apis.ElementID, xi []float64, hint ...apis.ElementID) (apis.ElementID, []float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.elements[id]
	if !ok {
		return 0, nil, fmt.Errorf("%w: %d", ErrUnknownElement, id)
	}
	if len(xi) != e.dim {
		return 0, nil, fmt.Errorf("%w: %d xi for element %d of dimension %d", ErrOutsideElement, len(xi), id, e.dim)
	}
	cur := slices.Clone(xi)
	for e.parent != 0 && !slices.Contains(hint, e.id) {
		cur = e.toParent(cur)
		e = s.elements[e.parent]
	}
	return e.id, cur, nil
}

func (e *element) toParent(xi []float64) []float64 {
	out := make([]float64, len(e.origin))
	for p := range out {
		out[p] = e.origin[p]
		for j, x := range xi {
			out[p] += e.axes[p][j] * x
		}
	}
	return out
}

func (s *Store) NumberOfComponents(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fields[name]
	if !ok {
		return 0, false
	}
	return f.components, true
}

func (s *Store) IsDefinedAtNode(name string, node apis.NodeID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fields[name]
	if !ok {
		return false
	}
	_, ok = f.nodes[node]
	return ok
}

func (s *Store) IsDefinedInElement(name string, id apis.ElementID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fields[name]
	if !ok {
		return false
	}
	e, _, ok := s.interpolationElement(id)
	if !ok {
		return false
	}
	for _, n := range e.nodes {
		if _, ok := f.nodes[n]; !ok {
			return false
		}
	}
	return true
}

// interpolationElement returns the nearest element on the parent chain of
// id that has nodes, and the chain of elements walked to reach it.
func (s *Store) interpolationElement(id apis.ElementID) (*element, []*element, bool) {
	e, ok := s.elements[id]
	if !ok {
		return nil, nil, false
	}
	var chain []*element
	for len(e.nodes) == 0 {
		chain = append(chain, e)
		e = s.elements[e.parent]
	}
	return e, chain, true
}

func (s *Store) NodeValues(name string, node apis.NodeID, time float64) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f.at(node, time)
}

// at returns node values at time, interpolating linearly between samples
// and clamping outside the sampled range.
func (f *storedField) at(node apis.NodeID, time float64) ([]float64, error) {
	rows, ok := f.nodes[node]
	if !ok {
		return nil, fmt.Errorf("%w: node %d", ErrUnknownNode, node)
	}
	if len(f.times) <= 1 {
		return slices.Clone(rows[0]), nil
	}
	i := sort.SearchFloat64s(f.times, time)
	switch {
	case i == 0:
		return slices.Clone(rows[0]), nil
	case i == len(f.times):
		return slices.Clone(rows[len(rows)-1]), nil
	case f.times[i] == time:
		return slices.Clone(rows[i]), nil
	}
	t0, t1 := f.times[i-1], f.times[i]
	w := (time - t0) / (t1 - t0)
	out := make([]float64, f.components)
	for c := range out {
		out[c] = (1-w)*rows[i-1][c] + w*rows[i][c]
	}
	return out, nil
}

func (s *Store) ElementValues(name string, id apis.ElementID, xi []float64, time float64, derivatives bool) ([]float64, []float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fields[name]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	e, ok := s.elements[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnknownElement, id)
	}
	if len(xi) != e.dim {
		return nil, nil, fmt.Errorf("%w: %d xi for element %d of dimension %d", ErrOutsideElement, len(xi), id, e.dim)
	}
	for _, x := range xi {
		if x < -xiSlack || x > 1+xiSlack {
			return nil, nil, fmt.Errorf("%w: xi %v in element %d", ErrOutsideElement, xi, id)
		}
	}

	host, chain, _ := s.interpolationElement(id)
	hostXi := slices.Clone(xi)
	for _, c := range chain {
		hostXi = c.toParent(hostXi)
	}

	values := make([]float64, f.components)
	hostDerivs := make([]float64, f.components*host.dim)
	for n, node := range host.nodes {
		nv, err := f.at(node, time)
		if err != nil {
			return nil, nil, err
		}
		phi, dphi := basis(n, hostXi)
		for c := range values {
			values[c] += phi * nv[c]
			for k := 0; k < host.dim; k++ {
				hostDerivs[c*host.dim+k] += dphi[k] * nv[c]
			}
		}
	}
	if !derivatives {
		return values, nil, nil
	}

	// Chain rule back down to the requested element: d/dxi = d/dhost * J,
	// where J is the product of the affine axes along the chain.
	jac := identity(e.dim)
	for _, c := range chain {
		jac = mul(c.axes, jac)
	}
	out := make([]float64, f.components*e.dim)
	for c := 0; c < f.components; c++ {
		for j := 0; j < e.dim; j++ {
			var d float64
			for p := 0; p < host.dim; p++ {
				d += hostDerivs[c*host.dim+p] * jac[p][j]
			}
			out[c*e.dim+j] = d
		}
	}
	return values, out, nil
}

// basis returns the linear Lagrange basis function of corner n at xi and its
// gradient. Bit k of n selects the xi_k = 1 side.
func basis(n int, xi []float64) (float64, []float64) {
	phi := 1.0
	grad := make([]float64, len(xi))
	for k := range grad {
		grad[k] = 1
	}
	for k, x := range xi {
		f, df := 1-x, -1.0
		if n>>k&1 == 1 {
			f, df = x, 1.0
		}
		phi *= f
		for j := range grad {
			if j == k {
				grad[j] *= df
			} else {
				grad[j] *= f
			}
		}
	}
	return phi, grad
}

func identity(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		m[i][i] = 1
	}
	return m
}

// mul returns a*b for a rows x inner and b inner x cols.
func mul(a, b [][]float64) [][]float64 {
	cols := 0
	if len(b) > 0 {
		cols = len(b[0])
	}
	out := make([][]float64, len(a))
	for i := range a {
		out[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			for k := range b {
				out[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return out
}

// SetNodeValues overwrites the values of name at node. Fields sampled at
// several times accept writes at a sampled time only.
func (s *Store) SetNodeValues(name string, node apis.NodeID, time float64, values []float64) error {
	s.mu.Lock()
	f, ok := s.fields[name]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if len(values) != f.components {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d values for field %q with %d components", ErrInvalidData, len(values), name, f.components)
	}
	row := 0
	if len(f.times) > 1 {
		i := sort.SearchFloat64s(f.times, time)
		if i == len(f.times) || f.times[i] != time {
			s.mu.Unlock()
			return fmt.Errorf("%w: %q at %g", ErrUnknownTime, name, time)
		}
		row = i
	}
	rows, ok := f.nodes[node]
	if !ok {
		rows = make([][]float64, max(1, len(f.times)))
		for i := range rows {
			rows[i] = make([]float64, f.components)
		}
		f.nodes[node] = rows
	}
	rows[row] = slices.Clone(values)
	s.mu.Unlock()
	s.notify(apis.StoreChange{Fields: []string{name}})
	return nil
}

func (s *Store) HasMultipleTimes(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fields[name]
	return ok && len(f.times) > 1
}

// ElementDiscretization reports one linear interval per xi direction.
func (s *Store) ElementDiscretization(name string, id apis.ElementID) ([]int, bool) {
	if !s.IsDefinedInElement(name, id) {
		return nil, false
	}
	dim, _ := s.ElementDimension(id)
	d := make([]int, dim)
	for i := range d {
		d[i] = 1
	}
	return d, true
}
