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

// Namer identifies a kind of entity by a stable, canonical name.
//
// EntityName is type-level: every instance of a kind returns the same value
// (for example "fieldgraph.field"). It is used as the "entity" field of
// structured log entries.
type Namer interface {
	// EntityName returns the canonical, type-level name for this entity.
	EntityName() string
}

// Identifier extends Namer with a per-instance identifier.
//
// # Contract
//
//   - EntityID MUST be deterministic for a given instance over its lifetime
//     and MUST NOT change when the instance is renamed.
//   - EntityID SHOULD be unique within the scope of EntityName.
//   - EntityID MUST be cheap; implementations return a precomputed value.
//
// Field coordinate locations key their reference field by EntityID, so two
// locations referring to the same field compare equal even after a rename.
type Identifier interface {
	Namer

	// EntityID returns a stable identifier for this entity instance.
	EntityID() string
}

// Describer produces a human-readable, round-trippable definition of an
// entity, in the form used by diagnostics and the command line "list" output.
type Describer interface {
	// Describe returns the definition text. It MUST NOT evaluate anything.
	Describe() string
}
