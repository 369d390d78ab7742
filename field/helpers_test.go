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

package field_test

import (
	"fmt"

	"dirpx.dev/fieldgraph/apis"
	"dirpx.dev/fieldgraph/config"
	"dirpx.dev/fieldgraph/field"
	"dirpx.dev/fieldgraph/location"
)

// countingCore evaluates to source value i plus the location time plus the
// first component of every source, and counts its evaluations.
type countingCore struct {
	calls       int
	fail        bool
	derivatives bool
	locked      bool
}

func (c *countingCore) Type() string { return "counting" }

func (c *countingCore) Evaluate(f *field.Field, loc location.Location, want bool, values, derivatives []float64) (bool, error) {
	c.calls++
	if c.fail {
		return false, fmt.Errorf("%w: forced", field.ErrEvaluationFailed)
	}
	var sum float64
	for _, s := range f.Sources() {
		res, err := s.Evaluate(loc)
		if err != nil {
			return false, err
		}
		sum += res.Values[0]
	}
	for i := range values {
		values[i] = f.SourceValue(i) + loc.Time() + sum
	}
	if want && c.derivatives {
		for i := range derivatives {
			derivatives[i] = float64(i)
		}
	}
	return c.derivatives, nil
}

func (c *countingCore) IsDefined(f *field.Field, loc location.Location) bool {
	return field.DefaultIsDefined(f, loc)
}

func (c *countingCore) SetValues(f *field.Field, _ location.Location, values []float64) error {
	return f.UpdateSourceValues(values)
}

func (c *countingCore) HasMultipleTimes(f *field.Field) bool { return true }

func (c *countingCore) NativeDiscretization(f *field.Field, e apis.ElementID) ([]int, bool) {
	return field.DefaultNativeDiscretization(f, e)
}

func (c *countingCore) NativeResolution(f *field.Field) ([]int, bool) {
	return field.DefaultNativeResolution(f)
}

func (c *countingCore) Compare(other field.Core) bool {
	o, ok := other.(*countingCore)
	return ok && o.derivatives == c.derivatives
}

func (c *countingCore) Describe(f *field.Field) string { return field.DefaultDescribe(f) }

func (c *countingCore) Copy() field.Core {
	return &countingCore{derivatives: c.derivatives, locked: c.locked}
}

func (c *countingCore) NotInUse(*field.Field) bool { return !c.locked }

// newCounting returns an unmanaged counting field over sources.
func newCounting(name string, values []float64, sources ...*field.Field) (*field.Field, *countingCore) {
	core := &countingCore{}
	f := field.New(name)
	if err := f.SetType(core, sources, values, field.WithComponents(len(values))); err != nil {
		panic(err)
	}
	return f, core
}

// recordingOwner is a minimal field.Owner that records notifications.
type recordingOwner struct {
	depth        int
	changes      map[string]field.Change
	unreferenced []string
}

func newOwner() *recordingOwner {
	return &recordingOwner{changes: make(map[string]field.Change)}
}

func (o *recordingOwner) Config() apis.Config { return config.DefaultConfig() }
func (o *recordingOwner) BeginChange()        { o.depth++ }
func (o *recordingOwner) EndChange()          { o.depth-- }

func (o *recordingOwner) FieldChanged(f *field.Field, c field.Change) {
	o.changes[f.Name()] |= c
}

func (o *recordingOwner) FieldUnreferenced(f *field.Field) {
	o.unreferenced = append(o.unreferenced, f.Name())
}

func (o *recordingOwner) FieldNotInUse(f *field.Field) bool {
	return f.ManagedReferences() == 0 && f.ExternalHolds() <= 1
}
