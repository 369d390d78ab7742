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

// DependsOn reports whether f is other or reaches other through its sources.
func DependsOn(f, other *Field) bool {
	if f == nil || other == nil {
		return false
	}
	if f == other {
		return true
	}
	for _, s := range f.sources {
		if DependsOn(s, other) {
			return true
		}
	}
	return false
}

// DependsOn reports whether f depends on other.
func (f *Field) DependsOn(other *Field) bool { return DependsOn(f, other) }

// ForEachAncestor calls visit for f and then, depth first in source order,
// for every field f depends on. A field reachable along several paths is
// visited once per path. It stops and returns false as soon as visit does.
func ForEachAncestor(f *Field, visit func(*Field) bool) bool {
	if f == nil {
		return true
	}
	if !visit(f) {
		return false
	}
	for _, s := range f.sources {
		if !ForEachAncestor(s, visit) {
			return false
		}
	}
	return true
}

// OrAncestorSatisfies reports whether pred holds for f or any field it
// depends on.
func OrAncestorSatisfies(f *Field, pred func(*Field) bool) bool {
	return !ForEachAncestor(f, func(a *Field) bool { return !pred(a) })
}
