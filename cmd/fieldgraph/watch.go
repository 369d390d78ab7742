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
	"fmt"
	"io"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dirpx.dev/fieldgraph"
	"dirpx.dev/fieldgraph/builder"
	"dirpx.dev/fieldgraph/manager"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <document>",
		Short: "Reload the mesh of a document when it changes and report changed fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := fieldgraph.OpenFile(args[0])
			if err != nil {
				return err
			}
			defer g.Close()
			return watch(cmd.Context(), g, args[0], cmd.OutOrStdout(), a.log)
		},
	}
}

// watch reloads the mesh of path into g on every write until ctx is done,
// printing the fields each reload changed.
func watch(ctx context.Context, g *fieldgraph.Graph, path string, out io.Writer, log *zap.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	// Editors replace files, so watch the directory.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}
	target := filepath.Clean(path)

	cancel := g.Manager.RegisterChangeListener(func(events []manager.Event) {
		for _, e := range events {
			fmt.Fprintf(out, "%s\t%s\n", e.Name, e.Change)
		}
	})
	defer cancel()
	fmt.Fprintf(out, "watching %s\n", path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", zap.Error(err))
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			doc, err := builder.LoadFile(path)
			if err != nil {
				log.Warn("reload failed", zap.String("path", path), zap.Error(err))
				continue
			}
			if len(doc.Mesh.Elements) == 0 {
				// Truncated mid-write; the next event carries the content.
				continue
			}
			if err := g.ReloadMesh(doc); err != nil {
				log.Warn("reload failed", zap.String("path", path), zap.Error(err))
				continue
			}
			log.Debug("mesh reloaded", zap.String("path", path))
		}
	}
}
