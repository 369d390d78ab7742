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

package strategy

import (
	"fmt"

	"dirpx.dev/fieldgraph/coordsys"
	"dirpx.dev/fieldgraph/field"
	"dirpx.dev/fieldgraph/location"
)

const TypeCoordinateTransformation = "coordinate_transformation"

type coordinateTransformation struct{ base }

// NewCoordinateTransformation returns the positions of source, read in the
// source's coordinate system, expressed in system to. The result has three
// components; sources with fewer are padded with zeros.
func NewCoordinateTransformation(name string, source *field.Field, to coordsys.System) (*field.Field, error) {
	if err := requireSources(TypeCoordinateTransformation, source); err != nil {
		return nil, err
	}
	if n := source.NumberOfComponents(); n < 1 || n > 3 {
		return nil, fmt.Errorf("%w: %s source %q has %d components", field.ErrInvalidArgument,
			TypeCoordinateTransformation, source.Name(), n)
	}
	if !to.Type.Valid() || to.Type == coordsys.Fibre || to.Type == coordsys.NotApplicable {
		return nil, fmt.Errorf("%w: cannot transform into %s", field.ErrInvalidArgument, to)
	}
	return newField(name, coordinateTransformation{}, []*field.Field{source}, nil,
		field.WithComponents(3), field.WithCoordinateSystem(to))
}

func (coordinateTransformation) Type() string { return TypeCoordinateTransformation }

func (coordinateTransformation) Evaluate(f *field.Field, loc location.Location, want bool, values, derivatives []float64) (bool, error) {
	src := f.Source(0)
	res, err := src.Evaluate(loc)
	if err != nil {
		return false, err
	}
	y, jac, err := coordsys.Convert(src.CoordinateSystem(), f.CoordinateSystem(), res.Values)
	if err != nil {
		return false, fmt.Errorf("%w: field %q: %w", field.ErrEvaluationFailed, f.Name(), err)
	}
	copy(values, y[:])
	if !want {
		return false, nil
	}
	dim := res.Dimension
	n := src.NumberOfComponents()
	for i := 0; i < 3; i++ {
		for k := 0; k < dim; k++ {
			var d float64
			for j := 0; j < n; j++ {
				d += jac[i][j] * res.Derivative(j, k)
			}
			derivatives[i*dim+k] = d
		}
	}
	return true, nil
}

func (coordinateTransformation) Compare(other field.Core) bool {
	_, ok := other.(coordinateTransformation)
	return ok
}

func (coordinateTransformation) Describe(f *field.Field) string {
	return fmt.Sprintf("%s %s to %s", TypeCoordinateTransformation, f.Source(0).Name(), f.CoordinateSystem())
}

func (coordinateTransformation) Copy() field.Core { return coordinateTransformation{} }
