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
	"math"

	"dirpx.dev/fieldgraph/field"
	"dirpx.dev/fieldgraph/location"
)

const TypeMagnitude = "magnitude"

type magnitude struct{ base }

// NewMagnitude returns the Euclidean norm of source.
func NewMagnitude(name string, source *field.Field) (*field.Field, error) {
	if err := requireSources(TypeMagnitude, source); err != nil {
		return nil, err
	}
	return newField(name, magnitude{}, []*field.Field{source}, nil, field.WithComponents(1))
}

func (magnitude) Type() string { return TypeMagnitude }

func (magnitude) Evaluate(f *field.Field, loc location.Location, want bool, values, derivatives []float64) (bool, error) {
	res, err := f.Source(0).Evaluate(loc)
	if err != nil {
		return false, err
	}
	var sum float64
	for _, v := range res.Values {
		sum += v * v
	}
	mag := math.Sqrt(sum)
	values[0] = mag
	if !want {
		return false, nil
	}
	for k := range derivatives {
		derivatives[k] = 0
		if mag == 0 {
			continue
		}
		for i, v := range res.Values {
			derivatives[k] += v * res.Derivative(i, k)
		}
		derivatives[k] /= mag
	}
	return true, nil
}

func (magnitude) Compare(other field.Core) bool {
	_, ok := other.(magnitude)
	return ok
}

func (magnitude) Copy() field.Core { return magnitude{} }
