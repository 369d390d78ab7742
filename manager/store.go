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

package manager

import (
	"go.uber.org/zap"

	"dirpx.dev/fieldgraph/apis"
	"dirpx.dev/fieldgraph/field"
)

// WatchStore forwards change notifications of s to ExternalChange.
func (m *Manager) WatchStore(s apis.Store) (cancel func()) {
	return s.Subscribe(func(c apis.StoreChange) {
		m.ExternalChange(c.Fields...)
	})
}

// ExternalChange reports that stored data changed outside the graph. Fields
// reading one of the named stored fields, or any stored field when names is
// empty, are invalidated and report a result change in one batch.
func (m *Manager) ExternalChange(names ...string) {
	c := apis.StoreChange{Fields: names}
	m.BeginChange()
	defer m.EndChange()
	n := 0
	for _, f := range m.Fields() {
		sb, ok := f.Core().(field.StoreBacked)
		if !ok || !c.Affects(sb.StoreField()) {
			continue
		}
		f.Invalidate()
		m.record(f, field.ChangeResult)
		n++
	}
	m.log.Debug("external change", zap.Strings("stored", names), zap.Int("fields", n))
}
