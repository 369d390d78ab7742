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
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dirpx.dev/fieldgraph"
	"dirpx.dev/fieldgraph/apis"
	"dirpx.dev/fieldgraph/field"
	"dirpx.dev/fieldgraph/location"
)

var errNoLocation = errors.New("fieldgraph: pass --node or --element")

type evalOptions struct {
	node        int64
	element     int64
	xi          []float64
	time        float64
	topLevel    int64
	derivatives bool
}

func newEvalCmd(a *app) *cobra.Command {
	var o evalOptions
	cmd := &cobra.Command{
		Use:   "eval <document> <field>",
		Short: "Evaluate a field at a node or an element location",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := fieldgraph.OpenFile(args[0])
			if err != nil {
				return err
			}
			defer g.Close()
			f, ok := g.Manager.FindByName(args[1])
			if !ok {
				return fmt.Errorf("%w: %q", field.ErrNotFound, args[1])
			}
			a.log.Debug("evaluating", zap.String("field", f.Name()), zap.String("type", f.Type()))

			switch {
			case cmd.Flags().Changed("node"):
				return evalAtNode(cmd.OutOrStdout(), f, o)
			case cmd.Flags().Changed("element"):
				return evalInElement(cmd, f, o)
			default:
				return errNoLocation
			}
		},
	}
	fl := cmd.Flags()
	fl.Int64Var(&o.node, "node", 0, "node id")
	fl.Int64Var(&o.element, "element", 0, "element id")
	fl.Float64SliceVar(&o.xi, "xi", nil, "element xi coordinates")
	fl.Float64Var(&o.time, "time", 0, "time")
	fl.Int64Var(&o.topLevel, "top-level", 0, "top-level element for fields evaluated on an ancestor")
	fl.BoolVarP(&o.derivatives, "derivatives", "d", false, "also print derivatives with respect to xi")
	cmd.MarkFlagsMutuallyExclusive("node", "element")
	return cmd
}

func evalAtNode(w io.Writer, f *field.Field, o evalOptions) error {
	s, err := fieldgraph.EvaluateAsString(f, field.AllComponents, location.NewNode(apis.NodeID(o.node), o.time))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, s)
	return err
}

func evalInElement(cmd *cobra.Command, f *field.Field, o evalOptions) error {
	var opts []location.ElementOption
	if cmd.Flags().Changed("top-level") {
		opts = append(opts, location.WithTopLevel(apis.ElementID(o.topLevel)))
	}
	w := cmd.OutOrStdout()
	if !o.derivatives {
		loc := location.NewElementXi(apis.ElementID(o.element), o.xi, o.time, opts...)
		s, err := fieldgraph.EvaluateAsString(f, field.AllComponents, loc)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, s)
		return err
	}

	values, derivs, err := fieldgraph.EvaluateInElement(f, apis.ElementID(o.element), o.xi, o.time, true, opts...)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, join(values))
	dim := len(o.xi)
	for c := range values {
		fmt.Fprintf(w, "d%s/dxi: %s\n", f.ComponentName(c), join(derivs[c*dim:(c+1)*dim]))
	}
	return nil
}

func join(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return strings.Join(parts, ", ")
}
