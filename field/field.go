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

package field

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"dirpx.dev/fieldgraph/apis"
	"dirpx.dev/fieldgraph/config"
	"dirpx.dev/fieldgraph/coordsys"
)

// EntityName is the entity name reported by every field.
const EntityName = "fieldgraph.field"

var (
	_ apis.Identifier = (*Field)(nil)
	_ apis.Describer  = (*Field)(nil)
)

// Owner is the manager a field is listed in. Fields report their changes and
// lost references to it; the owner decides what to broadcast and what to drop.
type Owner interface {
	Config() apis.Config
	BeginChange()
	EndChange()
	// FieldChanged records a change of f inside the current change scope.
	FieldChanged(f *Field, change Change)
	// FieldUnreferenced is called when f loses a managed reference or an
	// external hold.
	FieldUnreferenced(f *Field)
	// FieldNotInUse reports whether f may change shape.
	FieldNotInUse(f *Field) bool
}

// Field is a node of the computed field graph: a named, typed quantity with
// a fixed number of real components, defined by a core over ordered source
// fields and source values, with a single-location evaluation cache.
//
// Fields are not safe for concurrent use.
type Field struct {
	id         string
	name       string
	components int
	coords     coordsys.System
	compNames  map[int]string
	readOnly   bool
	status     ManagedStatus

	sources []*Field
	values  []float64
	core    Core

	rev   uint64
	cache cache

	// external counts Access holds, managedRefs counts source entries of
	// managed fields pointing here.
	external    int
	managedRefs int
	owner       Owner
}

// New returns an unmanaged field of uninitialized type with no components.
func New(name string) *Field {
	return &Field{
		id:     uuid.NewString(),
		name:   name,
		coords: coordsys.Default(),
		core:   uninitialized{},
	}
}

func (f *Field) EntityName() string { return EntityName }

// EntityID returns the instance id; it survives renames and redefinitions.
func (f *Field) EntityID() string { return f.id }

// ID is an alias of EntityID.
func (f *Field) ID() string { return f.id }

func (f *Field) Name() string { return f.name }

// SetName renames an unmanaged field. Managed fields are renamed through
// their manager so that names stay unique.
func (f *Field) SetName(name string) error {
	if f.owner != nil {
		return fmt.Errorf("%w: field %q is managed; rename it through its manager", ErrInvalidArgument, f.name)
	}
	f.name = name
	return nil
}

func (f *Field) NumberOfComponents() int { return f.components }

func (f *Field) CoordinateSystem() coordsys.System { return f.coords }

// SetCoordinateSystem changes how the field's values are interpreted.
func (f *Field) SetCoordinateSystem(s coordsys.System) {
	if f.coords.Equal(s) {
		return
	}
	f.Invalidate()
	f.coords = s
	f.changed(ChangeDefinition)
}

// ComponentName returns the name of component i, "1", "2", ... by default.
func (f *Field) ComponentName(i int) string {
	if i < 0 || i >= f.components {
		return ""
	}
	if n, ok := f.compNames[i]; ok {
		return n
	}
	return strconv.Itoa(i + 1)
}

func (f *Field) SetComponentName(i int, name string) error {
	if i < 0 || i >= f.components {
		return fmt.Errorf("%w: component %d of field %q with %d components", ErrInvalidArgument, i, f.name, f.components)
	}
	if name == "" {
		return fmt.Errorf("%w: empty component name", ErrInvalidArgument)
	}
	if f.compNames == nil {
		f.compNames = make(map[int]string)
	}
	f.compNames[i] = name
	f.changed(ChangeDefinition)
	return nil
}

func (f *Field) IsReadOnly() bool { return f.readOnly }

// SetReadOnly protects the field's definition from Modify.
func (f *Field) SetReadOnly(readOnly bool) { f.readOnly = readOnly }

func (f *Field) Status() ManagedStatus { return f.status }

// Source returns source i, or nil when out of range.
func (f *Field) Source(i int) *Field {
	if i < 0 || i >= len(f.sources) {
		return nil
	}
	return f.sources[i]
}

func (f *Field) NumberOfSources() int { return len(f.sources) }

// Sources returns a copy of the ordered source list.
func (f *Field) Sources() []*Field { return append([]*Field(nil), f.sources...) }

// SourceValue returns source value i, or 0 when out of range.
func (f *Field) SourceValue(i int) float64 {
	if i < 0 || i >= len(f.values) {
		return 0
	}
	return f.values[i]
}

// SourceValues returns a copy of the ordered source values.
func (f *Field) SourceValues() []float64 { return append([]float64(nil), f.values...) }

func (f *Field) Core() Core { return f.core }

// Type returns the type tag of the field's core.
func (f *Field) Type() string { return f.core.Type() }

// Owner returns the managing owner, nil for unmanaged fields.
func (f *Field) Owner() Owner { return f.owner }

func (f *Field) IsManaged() bool { return f.owner != nil }

// Access takes an external hold on f and returns it.
func (f *Field) Access() *Field {
	f.external++
	return f
}

// Release drops an external hold taken by Access.
func (f *Field) Release() {
	if f.external == 0 {
		return
	}
	f.external--
	if f.owner != nil {
		f.owner.FieldUnreferenced(f)
	}
}

// ExternalHolds returns the number of outstanding Access holds.
func (f *Field) ExternalHolds() int { return f.external }

// ManagedReferences returns how many source entries of managed fields
// reference f.
func (f *Field) ManagedReferences() int { return f.managedRefs }

// AccessCount returns external holds, plus one when listed by a manager, plus
// the managed references.
func (f *Field) AccessCount() int {
	n := f.external + f.managedRefs
	if f.owner != nil {
		n++
	}
	return n
}

// Config returns the owner's configuration, or the defaults when unmanaged.
func (f *Field) Config() apis.Config {
	if f.owner != nil {
		return f.owner.Config()
	}
	return config.DefaultConfig()
}

func (f *Field) changed(c Change) {
	if f.owner == nil {
		return
	}
	f.owner.BeginChange()
	f.owner.FieldChanged(f, c)
	f.owner.EndChange()
}

func (f *Field) notInUse() bool {
	if f.owner != nil {
		return f.owner.FieldNotInUse(f)
	}
	return f.managedRefs == 0 && f.external <= config.DefaultNotInUseThreshold
}

func (f *Field) String() string {
	return fmt.Sprintf("%s(%s, %d components)", f.name, f.core.Type(), f.components)
}
