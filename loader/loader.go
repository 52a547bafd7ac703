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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/bulkload/core"
	"github.com/poiesic/bulkload/pool"
	"github.com/poiesic/bulkload/source"
	"github.com/poiesic/bulkload/storage"
)

// Summary describes a finished load run.
type Summary struct {
	Files      int           // input files in the run
	Batches    int           // batches committed
	Statements int           // statements in committed batches
	Failed     int           // batches that did not commit
	Elapsed    time.Duration // wall time of the run
	Failures   []error       // one entry per failed batch, in the order observed
}

// Err joins the recorded batch failures, or returns nil if there were none.
func (s *Summary) Err() error {
	return errors.Join(s.Failures...)
}

// Loader drives batches from statement files through an Executor.
type Loader struct {
	driver   storage.Driver
	config   *Config
	executor *Executor
	logger   *slog.Logger
	progress io.Writer
	metrics  *Metrics
}

// Option configures a Loader.
type Option func(*Loader) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// WithProgress writes progress reports to w.
func WithProgress(w io.Writer) Option {
	return func(l *Loader) error {
		l.progress = w
		return nil
	}
}

// WithMetrics records batch metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(l *Loader) error {
		l.metrics = m
		return nil
	}
}

// WithExecutor replaces the executor built from the config.
func WithExecutor(e *Executor) Option {
	return func(l *Loader) error {
		if e == nil {
			return errors.New("executor cannot be nil")
		}
		l.executor = e
		return nil
	}
}

// NewLoader creates a loader writing through driver.
// A nil cfg uses DefaultConfig().
func NewLoader(driver storage.Driver, cfg *Config, opts ...Option) (*Loader, error) {
	if driver == nil {
		return nil, ErrDriverRequired
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l := &Loader{
		driver: driver,
		config: cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	if l.executor == nil {
		l.executor = NewExecutor(
			WithExecutorLogger(l.logger),
			WithExecutorMetrics(l.metrics),
			WithAttempts(cfg.MaxAttempts, cfg.RetryDelay),
		)
	}
	return l, nil
}

// Config returns the loader's configuration.
func (l *Loader) Config() Config {
	return *l.config
}

// unit is a statement source drained as a whole.
type unit struct {
	name string
	src  source.StatementSource
}

// Load loads the statements of files into the configured database.
//
// A nil error means every batch committed. Otherwise the error joins
// every batch failure observed together with any source or context error
// that stopped the run; the returned Summary is always non-nil.
func (l *Loader) Load(ctx context.Context, files ...string) (*Summary, error) {
	var units []unit
	switch {
	case len(files) == 0:
	case l.config.Mode == ModeSequential:
		// Batches span file boundaries.
		units = []unit{{src: source.NewFileSource(files)}}
	default:
		for _, f := range files {
			units = append(units, unit{name: f, src: source.NewFileSource([]string{f})})
		}
	}
	summary, err := l.run(ctx, units)
	summary.Files = len(files)
	return summary, err
}

// LoadSource loads the statements of a single source.
func (l *Loader) LoadSource(ctx context.Context, src source.StatementSource) (*Summary, error) {
	return l.run(ctx, []unit{{src: src}})
}

func (l *Loader) run(ctx context.Context, units []unit) (*Summary, error) {
	st := &runState{
		summary:         &Summary{},
		continueOnError: l.config.ContinueOnError,
		logger:          l.logger,
	}
	if l.progress != nil {
		st.progress = NewProgressTracker(l.progress, 0, l.config.ReportInterval)
		st.progress.Start()
		defer st.progress.Finish()
	}
	start := time.Now()
	defer func() {
		st.summary.Elapsed = time.Since(start)
	}()

	if len(units) == 0 {
		l.logger.Info("nothing to load", "database", l.config.Database)
		return st.summary, nil
	}

	session, err := l.driver.Session(ctx, l.config.Database, core.SessionTypeData)
	if err != nil {
		return st.summary, fmt.Errorf("failed to open session on %s: %w", l.config.Database, err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			l.logger.Warn("failed to close session", "database", l.config.Database, "error", err)
		}
	}()

	l.logger.Info("load started",
		"database", l.config.Database,
		"mode", l.config.Mode,
		"batchSize", l.config.BatchSize,
		"parallelism", l.config.Parallelism)

	var runErr error
	if l.config.Mode == ModeSequential {
		runErr = l.runSequential(ctx, session, units, st)
	} else {
		runErr = l.runConcurrent(ctx, session, units, st)
	}

	l.logger.Info("load finished",
		"database", l.config.Database,
		"batches", st.summary.Batches,
		"statements", st.summary.Statements,
		"failed", st.summary.Failed,
		"duration", time.Since(start))

	return st.summary, errors.Join(runErr, st.summary.Err())
}

// runSequential executes one batch at a time.
func (l *Loader) runSequential(ctx context.Context, session storage.Session, units []unit, st *runState) error {
	for _, u := range units {
		batcher, err := source.NewBatcher(u.src, l.config.BatchSize)
		if err != nil {
			return err
		}
		for batch, err := range batcher.Batches(ctx) {
			if err != nil {
				return err
			}
			result, err := l.executor.Execute(ctx, session, batch)
			st.collect(result, labelSource(err, u.name))
			if st.stopped {
				return nil
			}
		}
	}
	return nil
}

// runConcurrent keeps up to Parallelism batches in flight.
func (l *Loader) runConcurrent(ctx context.Context, session storage.Session, units []unit, st *runState) error {
	limiter, err := pool.New[core.BatchResult](l.config.Parallelism)
	if err != nil {
		return err
	}
	defer limiter.Release()

	// Batches already started run to completion (see Executor.Execute), so
	// their results are collected even after ctx is done.
	drainCtx := context.WithoutCancel(ctx)

	for i, u := range units {
		submitErr := l.submitAll(ctx, session, limiter, u, st)

		last := i == len(units)-1
		if submitErr != nil || st.stopped || last || l.config.DrainEach == DrainEachFile {
			results, err := limiter.Drain(drainCtx)
			for _, r := range results {
				st.collect(r.Value, r.Err)
			}
			if err != nil {
				return errors.Join(submitErr, err)
			}
			if u.name != "" {
				l.logger.Debug("drained", "file", u.name, "batches", len(results))
			}
		}
		if submitErr != nil {
			return submitErr
		}
		if st.stopped {
			return nil
		}
	}
	return nil
}

// submitAll submits every batch of u, collecting results harvested on the way.
// It returns early with a source or context error, or when the run is stopped.
func (l *Loader) submitAll(ctx context.Context, session storage.Session, limiter *pool.Limiter[core.BatchResult], u unit, st *runState) error {
	batcher, err := source.NewBatcher(u.src, l.config.BatchSize)
	if err != nil {
		return err
	}
	for batch, err := range batcher.Batches(ctx) {
		if err != nil {
			return err
		}
		harvested, err := limiter.Submit(ctx, func(ctx context.Context) (core.BatchResult, error) {
			result, err := l.executor.Execute(ctx, session, batch)
			return result, labelSource(err, u.name)
		})
		if harvested != nil {
			st.collect(harvested.Value, harvested.Err)
		}
		if err != nil {
			return err
		}
		if st.stopped {
			return nil
		}
	}
	return nil
}

// labelSource records the originating file on a batch failure.
func labelSource(err error, name string) error {
	var batchErr *BatchError
	if name != "" && errors.As(err, &batchErr) && batchErr.Source == "" {
		batchErr.Source = name
	}
	return err
}

// runState accumulates harvested results. It is only touched by the
// goroutine calling Load.
type runState struct {
	summary         *Summary
	progress        *ProgressTracker
	logger          *slog.Logger
	continueOnError bool
	stopped         bool
}

func (s *runState) collect(result core.BatchResult, err error) {
	if err != nil {
		s.summary.Failed++
		s.summary.Failures = append(s.summary.Failures, err)
		if s.progress != nil {
			s.progress.Fail()
		}
		s.logger.Error("batch failed", "batch", result.Batch, "statements", result.Statements, "error", err)
		if !s.continueOnError {
			s.stopped = true
		}
		return
	}
	s.summary.Batches++
	s.summary.Statements += result.Statements
	if s.progress != nil {
		s.progress.Increment(result.Statements)
	}
}
