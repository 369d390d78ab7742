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

package apis

// Config carries read-only knobs that influence evaluation and management.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// XiTolerance is the largest per-coordinate difference under which two
	// element xi locations (or two field coordinate inputs) are considered the
	// same cache key. Zero means exact comparison.
	XiTolerance float64 `yaml:"xi_tolerance" toml:"xi_tolerance"`

	// MaxElementDimension bounds the number of xi coordinates accepted for an
	// element location and sizes derivative buffers.
	MaxElementDimension int `yaml:"max_element_dimension" toml:"max_element_dimension"`

	// NotInUseThreshold is the number of external holds a field may carry
	// and still be considered not in use by its manager.
	NotInUseThreshold int `yaml:"not_in_use_threshold" toml:"not_in_use_threshold"`

	// AutoNamePrefix prefixes names generated for absorbed source fields
	// whose own names are empty or already taken.
	AutoNamePrefix string `yaml:"auto_name_prefix" toml:"auto_name_prefix"`

	// LogLevel is the zap level name used by binaries ("debug", "info", ...).
	LogLevel string `yaml:"log_level" toml:"log_level"`
}
