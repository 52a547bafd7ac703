// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package loader

import (
	"fmt"
	"runtime"
	"time"

	"github.com/poiesic/bulkload/core"
)

// Mode selects how batches are executed.
type Mode string

const (
	// ModeSequential executes one batch at a time; batches span file boundaries.
	ModeSequential Mode = "sequential"
	// ModeConcurrent executes up to Parallelism batches at once; each file is batched separately.
	ModeConcurrent Mode = "concurrent"
)

// DrainPolicy selects when a concurrent run waits for in-flight batches.
type DrainPolicy string

const (
	// DrainEachFile waits for every batch of a file before reading the next file.
	DrainEachFile DrainPolicy = "file"
	// DrainEachRun waits only once, after the last file.
	DrainEachRun DrainPolicy = "run"
)

// Config holds configuration for a load run.
type Config struct {
	// Database is the name of the database statements are loaded into.
	Database string

	// BatchSize is the number of statements committed per transaction.
	// Default: 100
	BatchSize int

	// Parallelism is the maximum number of transactions in flight in
	// concurrent mode. Ignored in sequential mode.
	// Default: runtime.NumCPU()
	Parallelism int

	// Mode selects sequential or concurrent execution.
	// Default: ModeConcurrent
	Mode Mode

	// DrainEach selects when the concurrent loader drains its pool.
	// Default: DrainEachFile
	DrainEach DrainPolicy

	// ContinueOnError keeps submitting batches after a batch fails.
	// Failures are still reported when the run ends.
	ContinueOnError bool

	// MaxAttempts is the number of times a failed batch is tried,
	// each time in a fresh transaction.
	// Default: 1 (no retry)
	MaxAttempts int

	// RetryDelay is the base delay between attempts; it doubles per retry.
	// Default: 500ms
	RetryDelay time.Duration

	// ReportInterval is how many statements pass between progress reports.
	// Default: 1000
	ReportInterval int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithDatabase sets the target database name.
func WithDatabase(name string) ConfigOption {
	return func(c *Config) {
		c.Database = name
	}
}

// WithBatchSize sets the number of statements per transaction.
func WithBatchSize(size int) ConfigOption {
	return func(c *Config) {
		c.BatchSize = size
	}
}

// WithParallelism sets the maximum number of concurrent transactions.
func WithParallelism(n int) ConfigOption {
	return func(c *Config) {
		c.Parallelism = n
	}
}

// WithMode sets the execution mode.
func WithMode(mode Mode) ConfigOption {
	return func(c *Config) {
		c.Mode = mode
	}
}

// WithDrain sets the drain policy for concurrent runs.
func WithDrain(policy DrainPolicy) ConfigOption {
	return func(c *Config) {
		c.DrainEach = policy
	}
}

// WithContinueOnError makes the loader keep going after a failed batch.
func WithContinueOnError(enabled bool) ConfigOption {
	return func(c *Config) {
		c.ContinueOnError = enabled
	}
}

// WithRetry sets the number of attempts per batch and the base delay between them.
func WithRetry(maxAttempts int, delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.MaxAttempts = maxAttempts
		c.RetryDelay = delay
	}
}

// WithReportInterval sets the progress reporting interval.
func WithReportInterval(n int) ConfigOption {
	return func(c *Config) {
		c.ReportInterval = n
	}
}

// DefaultConfig returns a Config with the defaults used by the CLI.
func DefaultConfig() *Config {
	return &Config{
		Database:       "default",
		BatchSize:      100,
		Parallelism:    runtime.NumCPU(),
		Mode:           ModeConcurrent,
		DrainEach:      DrainEachFile,
		MaxAttempts:    1,
		RetryDelay:     500 * time.Millisecond,
		ReportInterval: 1000,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithDatabase("bookstore"),
//	    WithBatchSize(500),
//	    WithParallelism(4),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := core.ValidateDatabaseName(c.Database); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := core.ValidateBatchSize(c.BatchSize); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Parallelism <= 0 {
		return fmt.Errorf("%w: parallelism must be greater than 0, got %d", ErrInvalidConfig, c.Parallelism)
	}
	switch c.Mode {
	case ModeSequential, ModeConcurrent:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}
	switch c.DrainEach {
	case DrainEachFile, DrainEachRun:
	default:
		return fmt.Errorf("%w: unknown drain policy %q", ErrInvalidConfig, c.DrainEach)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrInvalidMaxAttempts)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry delay must not be negative", ErrInvalidConfig)
	}
	if c.ReportInterval < 0 {
		return fmt.Errorf("%w: report interval must not be negative", ErrInvalidConfig)
	}
	return nil
}
