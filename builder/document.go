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

package builder

import (
	"fmt"
	"os"

	"dirpx.dev/fieldgraph/config"
	"dirpx.dev/fieldgraph/store/memstore"
)

// Document is a definitions file: the mesh data for an in-memory store and
// the fields defined over it.
type Document struct {
	Mesh   memstore.Data `yaml:"mesh" toml:"mesh"`
	Fields []Definition  `yaml:"fields" toml:"fields"`
}

// Definition describes one field. Sources are references: names of managed
// or earlier defined fields, numeric literals ("2", "1,0,0") or component
// selectors ("name.component"). Params holds type specific settings.
type Definition struct {
	Name           string         `yaml:"name" toml:"name"`
	Type           string         `yaml:"type" toml:"type"`
	Sources        []string       `yaml:"sources,omitempty" toml:"sources,omitempty"`
	Values         []float64      `yaml:"values,omitempty" toml:"values,omitempty"`
	Params         map[string]any `yaml:"params,omitempty" toml:"params,omitempty"`
	ComponentNames []string       `yaml:"component_names,omitempty" toml:"component_names,omitempty"`
	ReadOnly       bool           `yaml:"read_only,omitempty" toml:"read_only,omitempty"`
}

// Decode parses a definitions document.
func Decode(data []byte, format config.Format) (Document, error) {
	var doc Document
	if err := config.Unmarshal(data, format, &doc); err != nil {
		return Document{}, fmt.Errorf("fieldgraph(builder): decode %s: %w", format, err)
	}
	return doc, nil
}

// LoadFile reads a YAML or TOML definitions document.
func LoadFile(path string) (Document, error) {
	format, err := config.FormatOf(path)
	if err != nil {
		return Document{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("fieldgraph(builder): %w", err)
	}
	return Decode(data, format)
}
