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
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dirpx.dev/fieldgraph"
	"dirpx.dev/fieldgraph/field"
)

func newListCmd(_ *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list <document>",
		Short: "List the fields defined by a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := fieldgraph.OpenFile(args[0])
			if err != nil {
				return err
			}
			defer g.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCOMPONENTS\tSTATUS\tDEFINITION")
			for _, f := range g.Manager.Fields() {
				if !all && f.Status() != field.Public {
					continue
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", f.Name(), f.NumberOfComponents(), f.Status(), f.Describe())
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include private helper fields")
	return cmd
}
