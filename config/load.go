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

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"dirpx.dev/fieldgraph/apis"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither YAML nor TOML.
	ErrUnsupportedFormat = errors.New("fieldgraph(config): unsupported config format")
	// ErrInvalidLogLevel is returned when LogLevel is not a zap level name.
	ErrInvalidLogLevel = errors.New("fieldgraph(config): invalid log level")
)

// Format names a document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf picks the encoding from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// Unmarshal decodes data into v using format.
func Unmarshal(data []byte, format Format, v any) error {
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(v)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Decode parses a configuration document. Keys absent from data keep their
// defaults; opts are applied after decoding.
func Decode(data []byte, format Format, opts ...Option) (apis.Config, error) {
	cfg := DefaultConfig()
	if err := Unmarshal(data, format, &cfg); err != nil {
		return apis.Config{}, fmt.Errorf("fieldgraph(config): decode %s: %w", format, err)
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = normalize(cfg)
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return apis.Config{}, fmt.Errorf("%w: %q", ErrInvalidLogLevel, cfg.LogLevel)
	}
	return cfg, nil
}

// LoadFile reads a YAML or TOML configuration file.
func LoadFile(path string, opts ...Option) (apis.Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return apis.Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return apis.Config{}, fmt.Errorf("fieldgraph(config): %w", err)
	}
	return Decode(data, format, opts...)
}
