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

package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"dirpx.dev/fieldgraph"
)

// replace swaps in new content with a rename, as editors do.
func replace(t *testing.T, path, content string) {
	t.Helper()
	tmp := filepath.Join(filepath.Dir(path), ".next")
	require.NoError(t, os.WriteFile(tmp, []byte(content), 0o600))
	require.NoError(t, os.Rename(tmp, path))
}

func TestWatchReloadsMesh(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "line.yaml", lineDoc(4))
	g, err := fieldgraph.OpenFile(path)
	require.NoError(t, err)
	defer g.Close()
	twice, ok := g.Manager.FindByName("twice")
	require.True(t, ok)
	v, err := fieldgraph.EvaluateAtNode(twice, 2, 0)
	require.NoError(t, err)
	require.Equal(t, []float64{8}, v)

	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- watch(ctx, g, path, out, zaptest.NewLogger(t)) }()
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "watching") },
		5*time.Second, 10*time.Millisecond)

	replace(t, path, "not: [valid")
	replace(t, path, lineDoc(10))
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "twice\tdependency") },
		5*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Contains(t, out.String(), "x\tresult")
	v, err = fieldgraph.EvaluateAtNode(twice, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{20}, v)
}

func TestWatchMissingDirectory(t *testing.T) {
	g, err := fieldgraph.OpenFile(writeFile(t, t.TempDir(), "line.yaml", lineDoc(1)))
	require.NoError(t, err)
	defer g.Close()

	err = watch(context.Background(), g, filepath.Join(t.TempDir(), "gone", "line.yaml"), &syncBuffer{}, zaptest.NewLogger(t))
	require.Error(t, err)
}
