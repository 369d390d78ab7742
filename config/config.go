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
	"dirpx.dev/fieldgraph/apis"
)

const (
	// DefaultXiTolerance represents the default for XiTolerance.
	// Zero compares element locations exactly.
	DefaultXiTolerance = 0.0
	// DefaultMaxElementDimension represents the default for MaxElementDimension.
	DefaultMaxElementDimension = 3
	// DefaultNotInUseThreshold represents the default for NotInUseThreshold.
	// One external hold is the caller asking the question.
	DefaultNotInUseThreshold = 1
	// DefaultAutoNamePrefix represents the default for AutoNamePrefix.
	DefaultAutoNamePrefix = "temp"
	// DefaultLogLevel represents the default for LogLevel.
	DefaultLogLevel = "info"
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return normalize(cfg)
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		XiTolerance:         DefaultXiTolerance,
		MaxElementDimension: DefaultMaxElementDimension,
		NotInUseThreshold:   DefaultNotInUseThreshold,
		AutoNamePrefix:      DefaultAutoNamePrefix,
		LogLevel:            DefaultLogLevel,
	}
}

// normalize resets out-of-range values to their defaults.
func normalize(cfg apis.Config) apis.Config {
	if cfg.XiTolerance < 0 {
		cfg.XiTolerance = DefaultXiTolerance
	}
	if cfg.MaxElementDimension <= 0 {
		cfg.MaxElementDimension = DefaultMaxElementDimension
	}
	if cfg.NotInUseThreshold < 0 {
		cfg.NotInUseThreshold = DefaultNotInUseThreshold
	}
	if cfg.AutoNamePrefix == "" {
		cfg.AutoNamePrefix = DefaultAutoNamePrefix
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	return cfg
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithXiTolerance sets the XiTolerance option.
// A negative value resets to the default.
func WithXiTolerance(tol float64) Option {
	return func(c *apis.Config) {
		c.XiTolerance = tol
	}
}

// WithMaxElementDimension sets the MaxElementDimension option.
// A value below one resets to the default.
func WithMaxElementDimension(dim int) Option {
	return func(c *apis.Config) {
		c.MaxElementDimension = dim
	}
}

// WithNotInUseThreshold sets the NotInUseThreshold option.
func WithNotInUseThreshold(n int) Option {
	return func(c *apis.Config) {
		c.NotInUseThreshold = n
	}
}

// WithAutoNamePrefix sets the AutoNamePrefix option.
func WithAutoNamePrefix(prefix string) Option {
	return func(c *apis.Config) {
		c.AutoNamePrefix = prefix
	}
}

// WithLogLevel sets the LogLevel option.
func WithLogLevel(level string) Option {
	return func(c *apis.Config) {
		c.LogLevel = level
	}
}
