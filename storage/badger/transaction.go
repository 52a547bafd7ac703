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


package badger

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/bulkload/core"
	"github.com/poiesic/bulkload/storage"
)

// Transaction implements storage.Transaction over a single badger.Txn.
type Transaction struct {
	session *Session
	id      string
	txType  core.TransactionType
	txn     *badger.Txn
	seq     *badger.Sequence // nil unless the transaction may insert

	mu   sync.Mutex
	open bool
}

var _ storage.Transaction = (*Transaction)(nil)

// ID returns the transaction's UUID.
func (t *Transaction) ID() string {
	return t.id
}

// Type returns the transaction type.
func (t *Transaction) Type() core.TransactionType {
	return t.txType
}

// IsOpen reports whether the transaction has not been committed or closed.
func (t *Transaction) IsOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}

// Insert stores statement as a new record in the transaction's pending writes.
func (t *Transaction) Insert(ctx context.Context, statement string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.open {
		return storage.ErrTransactionClosed
	}
	if t.txType != core.TransactionTypeWrite {
		return storage.ErrReadOnlyTransaction
	}
	if t.session.sessionType != core.SessionTypeData {
		return fmt.Errorf("%w: insert in %s session", storage.ErrSessionTypeMismatch, t.session.sessionType)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := core.ValidateStatement(statement); err != nil {
		return err
	}

	nextID, err := t.seq.Next()
	if err != nil {
		return err
	}
	// BadgerDB sequences can return 0 on first call, so we skip it
	if nextID == 0 {
		nextID, err = t.seq.Next()
		if err != nil {
			return err
		}
	}

	record := &core.StatementRecord{
		Id:            core.ID(nextID),
		Database:      t.session.database,
		Text:          statement,
		Digest:        core.IDFromContent(statement),
		TransactionId: t.id,
		InsertedAt:    time.Now().UTC(),
	}
	key := makeStatementKey(t.session.database, record.Id)
	if err := t.txn.Set(key, storage.MarshalStatementRecord(record)); err != nil {
		if errors.Is(err, badger.ErrTxnTooBig) {
			return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
		}
		return err
	}
	return nil
}

// Statements iterates the statements visible to the transaction in ID order.
func (t *Transaction) Statements(ctx context.Context) iter.Seq2[*core.StatementRecord, error] {
	return func(yield func(*core.StatementRecord, error) bool) {
		if !t.IsOpen() {
			yield(nil, storage.ErrTransactionClosed)
			return
		}

		prefix := makeStatementPrefix(t.session.database)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := t.txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			var record *core.StatementRecord
			err := it.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalStatementRecord(val)
				return err
			})
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(record, nil) {
				return
			}
		}
	}
}

// Count returns the number of statements visible to the transaction.
func (t *Transaction) Count(ctx context.Context) (int, error) {
	if !t.IsOpen() {
		return 0, storage.ErrTransactionClosed
	}

	prefix := makeStatementPrefix(t.session.database)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	it := t.txn.NewIterator(opts)
	defer it.Close()

	count := 0
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

// Commit commits the underlying badger transaction. The transaction is
// closed afterwards whether or not the commit succeeded.
func (t *Transaction) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.open {
		return storage.ErrTransactionClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	t.open = false
	if err := t.txn.Commit(); err != nil {
		t.txn.Discard()
		return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
	}
	return nil
}

// Close discards the transaction's pending writes.
func (t *Transaction) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.open {
		return nil
	}
	t.open = false
	t.txn.Discard()
	return nil
}
