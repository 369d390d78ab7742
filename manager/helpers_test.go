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

package manager_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"dirpx.dev/fieldgraph/field"
	"dirpx.dev/fieldgraph/manager"
	"dirpx.dev/fieldgraph/strategy"
)

func constant(t *testing.T, name string, values ...float64) *field.Field {
	t.Helper()
	f, err := strategy.NewConstant(name, values)
	require.NoError(t, err)
	return f
}

func sum(t *testing.T, name string, a, b *field.Field) *field.Field {
	t.Helper()
	f, err := strategy.NewAdd(name, a, b)
	require.NoError(t, err)
	return f
}

// batches collects the event batches delivered to a listener.
type batches struct {
	got [][]manager.Event
}

func (b *batches) listen(events []manager.Event) {
	b.got = append(b.got, events)
}

// summary reduces a batch to "name:change" strings.
func summary(events []manager.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Name + ":" + e.Change.String()
	}
	return out
}

func names(fields []*field.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name()
	}
	return out
}
