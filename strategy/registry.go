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
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/go-viper/mapstructure/v2"

	"dirpx.dev/fieldgraph/apis"
	"dirpx.dev/fieldgraph/coordsys"
	"dirpx.dev/fieldgraph/field"
)

var (
	// ErrEmptyType is returned when an empty type tag is provided.
	ErrEmptyType = errors.New("fieldgraph(strategy): empty type tag provided")
	// ErrNilConstructor is returned when a nil constructor is provided.
	ErrNilConstructor = errors.New("fieldgraph(strategy): nil constructor provided")
	// ErrConflictingRegistration indicates an attempt to register a
	// different constructor under a tag already taken.
	ErrConflictingRegistration = errors.New("fieldgraph(strategy): conflicting type registration")
	// ErrUnknownType is returned by Build for tags nobody registered.
	ErrUnknownType = errors.New("fieldgraph(strategy): unknown field type")
)

// Args carries everything a constructor may need. Params holds type
// specific settings as decoded from a definition document.
type Args struct {
	Name    string
	Sources []*field.Field
	Values  []float64
	Params  map[string]any
	Store   apis.Store
}

// Constructor builds an unmanaged field from Args.
type Constructor func(Args) (*field.Field, error)

// Registry maps type tags to constructors. It is safe for concurrent use.
type Registry struct {
	// mu guards write-side consistency and counter
	mu sync.Mutex
	// m maps type tag to Constructor.
	m sync.Map
	// count tracks the number of registered entries.
	count int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register associates tag with ctor. It is idempotent for the same
// (tag, ctor) pair.
func (r *Registry) Register(tag string, ctor Constructor) error {
	if tag == "" {
		return ErrEmptyType
	}
	if ctor == nil {
		return ErrNilConstructor
	}

	// Fast read path: idempotency / conflict check without locking.
	if old, ok := r.m.Load(tag); ok {
		return sameConstructor(old.(Constructor), ctor)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under lock in case another goroutine stored meanwhile.
	if old, ok := r.m.Load(tag); ok {
		return sameConstructor(old.(Constructor), ctor)
	}

	r.m.Store(tag, ctor)
	r.count++
	return nil
}

func sameConstructor(a, b Constructor) error {
	if reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer() {
		return nil
	}
	return ErrConflictingRegistration
}

// Lookup returns the constructor registered for tag.
func (r *Registry) Lookup(tag string) (Constructor, bool) {
	if v, ok := r.m.Load(tag); ok {
		return v.(Constructor), true
	}
	return nil, false
}

// Build constructs a field of type tag.
func (r *Registry) Build(tag string, args Args) (*field.Field, error) {
	ctor, ok := r.Lookup(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, tag)
	}
	f, err := ctor(args)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", tag, args.Name, err)
	}
	return f, nil
}

// Types returns the registered tags in sorted order.
func (r *Registry) Types() []string {
	tags := make([]string, 0, r.Count())
	r.m.Range(func(key, _ any) bool {
		tags = append(tags, key.(string))
		return true
	})
	slices.Sort(tags)
	return tags
}

// Count returns the number of registered entries.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Reset clears all registered entries.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m.Clear()
	r.count = 0
}

// Builtins returns a registry holding every field type of this package.
func Builtins() *Registry {
	r := NewRegistry()
	for tag, ctor := range builtins {
		_ = r.Register(tag, ctor)
	}
	return r
}

var builtins = map[string]Constructor{
	TypeConstant:                 buildConstant,
	TypeStringConstant:           buildStringConstant,
	TypeAdd:                      buildAdd,
	TypeMultiply:                 buildMultiply,
	TypeScale:                    buildScale,
	TypeComposite:                buildComposite,
	TypeMagnitude:                buildMagnitude,
	TypeIf:                       buildIf,
	TypeCoordinateTransformation: buildCoordinateTransformation,
	TypeTimeValue:                buildTimeValue,
	TypeDerivative:               buildDerivative,
	TypeFiniteElement:            buildFiniteElement,
}

// DecodeParams decodes params into out, which must be a pointer to a struct
// with mapstructure tags. Unknown keys are errors; scalars are converted
// weakly and text values go through encoding.TextUnmarshaler.
func DecodeParams(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("%w: %w", field.ErrInvalidArgument, err)
	}
	return nil
}

func sourceCount(args Args, n int) error {
	if len(args.Sources) != n {
		return fmt.Errorf("%w: want %d sources, got %d", field.ErrInvalidArgument, n, len(args.Sources))
	}
	return nil
}

func noParams(args Args) error {
	return DecodeParams(args.Params, &struct{}{})
}

func buildConstant(args Args) (*field.Field, error) {
	if err := sourceCount(args, 0); err != nil {
		return nil, err
	}
	if err := noParams(args); err != nil {
		return nil, err
	}
	return NewConstant(args.Name, args.Values)
}

func buildStringConstant(args Args) (*field.Field, error) {
	var p struct {
		Value string `mapstructure:"value"`
	}
	if err := sourceCount(args, 0); err != nil {
		return nil, err
	}
	if err := DecodeParams(args.Params, &p); err != nil {
		return nil, err
	}
	return NewStringConstant(args.Name, p.Value)
}

func buildAdd(args Args) (*field.Field, error) {
	if err := sourceCount(args, 2); err != nil {
		return nil, err
	}
	if err := noParams(args); err != nil {
		return nil, err
	}
	return NewAdd(args.Name, args.Sources[0], args.Sources[1], args.Values...)
}

func buildMultiply(args Args) (*field.Field, error) {
	if err := sourceCount(args, 2); err != nil {
		return nil, err
	}
	if err := noParams(args); err != nil {
		return nil, err
	}
	return NewMultiply(args.Name, args.Sources[0], args.Sources[1])
}

func buildScale(args Args) (*field.Field, error) {
	if err := sourceCount(args, 1); err != nil {
		return nil, err
	}
	if err := noParams(args); err != nil {
		return nil, err
	}
	return NewScale(args.Name, args.Sources[0], args.Values)
}

func buildComposite(args Args) (*field.Field, error) {
	var p struct {
		Selectors []Selector `mapstructure:"selectors"`
	}
	if err := DecodeParams(args.Params, &p); err != nil {
		return nil, err
	}
	if len(p.Selectors) == 0 {
		return NewConcatenate(args.Name, args.Sources...)
	}
	return NewComposite(args.Name, args.Sources, p.Selectors)
}

func buildMagnitude(args Args) (*field.Field, error) {
	if err := sourceCount(args, 1); err != nil {
		return nil, err
	}
	if err := noParams(args); err != nil {
		return nil, err
	}
	return NewMagnitude(args.Name, args.Sources[0])
}

func buildIf(args Args) (*field.Field, error) {
	if err := sourceCount(args, 3); err != nil {
		return nil, err
	}
	if err := noParams(args); err != nil {
		return nil, err
	}
	return NewIf(args.Name, args.Sources[0], args.Sources[1], args.Sources[2])
}

func buildCoordinateTransformation(args Args) (*field.Field, error) {
	p := struct {
		CoordinateSystem coordsys.System `mapstructure:"coordinate_system"`
	}{CoordinateSystem: coordsys.Default()}
	if err := sourceCount(args, 1); err != nil {
		return nil, err
	}
	if err := DecodeParams(args.Params, &p); err != nil {
		return nil, err
	}
	return NewCoordinateTransformation(args.Name, args.Sources[0], p.CoordinateSystem)
}

func buildTimeValue(args Args) (*field.Field, error) {
	if err := sourceCount(args, 0); err != nil {
		return nil, err
	}
	if err := noParams(args); err != nil {
		return nil, err
	}
	return NewTimeValue(args.Name)
}

func buildDerivative(args Args) (*field.Field, error) {
	var p struct {
		XiIndex int `mapstructure:"xi_index"`
	}
	if err := sourceCount(args, 1); err != nil {
		return nil, err
	}
	if err := DecodeParams(args.Params, &p); err != nil {
		return nil, err
	}
	return NewDerivative(args.Name, args.Sources[0], p.XiIndex, args.Store)
}

func buildFiniteElement(args Args) (*field.Field, error) {
	p := struct {
		StoreField string `mapstructure:"store_field"`
	}{StoreField: args.Name}
	if err := sourceCount(args, 0); err != nil {
		return nil, err
	}
	if err := DecodeParams(args.Params, &p); err != nil {
		return nil, err
	}
	return NewFiniteElement(args.Name, args.Store, p.StoreField)
}
