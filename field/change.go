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
	"strings"
)

// Change is a set of flags describing how a managed field changed.
type Change uint8

const (
	// ChangeAdd marks a field added to its manager.
	ChangeAdd Change = 1 << iota
	// ChangeRemove marks a field removed from its manager.
	ChangeRemove
	// ChangeIdentifier marks a rename.
	ChangeIdentifier
	// ChangeDefinition marks a new type, sources, source values or shape.
	ChangeDefinition
	// ChangeResult marks changed values with an unchanged definition, e.g.
	// stored data written through a finite element field.
	ChangeResult
	// ChangeDependency marks a field whose own definition is unchanged but
	// which depends on a changed field.
	ChangeDependency
)

var changeNames = []struct {
	c    Change
	name string
}{
	{ChangeAdd, "add"},
	{ChangeRemove, "remove"},
	{ChangeIdentifier, "identifier"},
	{ChangeDefinition, "definition"},
	{ChangeResult, "result"},
	{ChangeDependency, "dependency"},
}

// Has reports whether all flags of o are set in c.
func (c Change) Has(o Change) bool {
	return o != 0 && c&o == o
}

// String joins the flag names with '|', e.g. "identifier|definition".
func (c Change) String() string {
	if c == 0 {
		return "none"
	}
	var parts []string
	for _, n := range changeNames {
		if c&n.c != 0 {
			parts = append(parts, n.name)
			c &^= n.c
		}
	}
	if c != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint8(c)))
	}
	return strings.Join(parts, "|")
}

// ManagedStatus controls the lifetime of a field inside its manager.
type ManagedStatus int

const (
	// Public fields stay in the manager until removed explicitly.
	Public ManagedStatus = iota
	// PrivateVolatile fields exist only to support other fields and are
	// dropped from the manager once nothing references them.
	PrivateVolatile
)

// String returns "public" or "private_volatile".
func (s ManagedStatus) String() string {
	switch s {
	case Public:
		return "public"
	case PrivateVolatile:
		return "private_volatile"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}
