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
	"log/slog"
	"time"

	"github.com/poiesic/bulkload/core"
	"github.com/poiesic/bulkload/storage"
)

// Executor runs one batch in one write transaction.
// An Executor is safe for concurrent use; every call opens its own transaction.
type Executor struct {
	logger      *slog.Logger
	metrics     *Metrics
	maxAttempts int
	retryDelay  time.Duration
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithExecutorLogger sets the logger for batch execution.
func WithExecutorLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithExecutorMetrics sets the metrics updated per batch.
func WithExecutorMetrics(m *Metrics) ExecutorOption {
	return func(e *Executor) {
		e.metrics = m
	}
}

// WithAttempts sets how many times a failed batch is tried and the base
// delay between attempts. Values below 1 are treated as 1.
func WithAttempts(maxAttempts int, delay time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.maxAttempts = max(maxAttempts, 1)
		e.retryDelay = delay
	}
}

// NewExecutor creates an executor that tries each batch once.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		logger:      slog.Default(),
		maxAttempts: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute opens a write transaction on session, submits the batch's statements
// in order and commits. On any error the transaction is closed without commit
// and a *BatchError is returned. With retries enabled every attempt uses a
// fresh transaction. An attempt that has begun runs to completion even if ctx
// ends; ctx only stops further attempts.
func (e *Executor) Execute(ctx context.Context, session storage.Session, batch core.Batch) (core.BatchResult, error) {
	start := time.Now()
	var txID string
	attemptCtx := context.WithoutCancel(ctx)
	attempts, err := RetryWithBackoff(ctx, func() error {
		id, err := e.executeOnce(attemptCtx, session, batch)
		txID = id
		if err != nil && e.maxAttempts > 1 {
			e.logger.Warn("batch attempt failed", "batch", batch.Index, "transaction", id, "error", err)
		}
		return err
	}, e.maxAttempts, e.retryDelay)

	result := core.BatchResult{
		Batch:         batch.Index,
		Statements:    batch.Len(),
		TransactionId: txID,
		Attempts:      attempts,
		Duration:      time.Since(start),
	}
	e.metrics.observeBatch(batch.Len(), result.Duration, err)
	if err != nil {
		var batchErr *BatchError
		if !errors.As(err, &batchErr) {
			// Context ended before or between attempts.
			err = &BatchError{Batch: batch.Index, Stage: StageOpen, Statement: -1, TransactionId: txID, Err: err}
		}
		return result, err
	}

	e.logger.Debug("batch committed",
		"batch", batch.Index,
		"statements", batch.Len(),
		"transaction", txID,
		"attempts", attempts,
		"duration", result.Duration)
	return result, nil
}

// executeOnce runs a single attempt and returns the transaction ID.
func (e *Executor) executeOnce(ctx context.Context, session storage.Session, batch core.Batch) (txID string, err error) {
	tx, err := session.Transaction(ctx, core.TransactionTypeWrite)
	if err != nil {
		return "", &BatchError{Batch: batch.Index, Stage: StageOpen, Statement: -1, Err: err}
	}
	e.metrics.transactionOpened()
	defer func() {
		if closeErr := tx.Close(); closeErr != nil {
			e.logger.Warn("failed to close transaction", "transaction", tx.ID(), "error", closeErr)
		}
		e.metrics.transactionClosed()
	}()

	txID = tx.ID()
	for i, stmt := range batch.Statements {
		if err := tx.Insert(ctx, stmt); err != nil {
			return txID, &BatchError{Batch: batch.Index, Stage: StageSubmit, Statement: i, TransactionId: txID, Err: err}
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return txID, &BatchError{Batch: batch.Index, Stage: StageCommit, Statement: -1, TransactionId: txID, Err: err}
	}
	return txID, nil
}
