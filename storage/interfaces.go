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


package storage

import (
	"context"
	"iter"

	"github.com/poiesic/bulkload/core"
)

// Driver opens sessions against named databases.
// Implementations must be thread-safe and support concurrent access.
type Driver interface {
	// Session opens a session on database with the given session type.
	Session(ctx context.Context, database string, sessionType core.SessionType) (Session, error)

	// Close closes the driver and releases resources.
	// Sessions opened from the driver must be closed first.
	Close() error
}

// Session is a handle on one database. A session may be shared by
// concurrent callers; each caller opens its own transactions from it.
type Session interface {
	// Database returns the name of the database the session is bound to.
	Database() string

	// Type returns the session type.
	Type() core.SessionType

	// Transaction opens a new transaction of the given type.
	// Returns ErrSessionClosed if the session has been closed.
	Transaction(ctx context.Context, txType core.TransactionType) (Transaction, error)

	// Close closes the session. Closing an already closed session is a no-op.
	Close() error
}

// Transaction is a unit of work against a session. A transaction handle
// belongs to a single caller and must not be shared between goroutines.
type Transaction interface {
	// ID returns a unique identifier for the transaction.
	ID() string

	// Type returns the transaction type.
	Type() core.TransactionType

	// IsOpen reports whether the transaction can still accept operations.
	IsOpen() bool

	// Insert submits a statement to a write transaction.
	// Effects become durable only once Commit succeeds.
	// Returns ErrReadOnlyTransaction for read transactions and
	// ErrSessionTypeMismatch when the session does not accept data.
	Insert(ctx context.Context, statement string) error

	// Statements returns committed statements of the session's database
	// in insertion order. Iteration stops at the first error.
	Statements(ctx context.Context) iter.Seq2[*core.StatementRecord, error]

	// Count returns the number of committed statements in the database.
	Count(ctx context.Context) (int, error)

	// Commit makes all submitted statements durable and closes the transaction.
	// If commit fails no statement of the transaction is durable.
	Commit(ctx context.Context) error

	// Close closes the transaction, discarding uncommitted effects.
	// Closing an already closed transaction is a no-op.
	Close() error
}
