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


package mock

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/bulkload/core"
	"github.com/poiesic/bulkload/storage"
)

// Stats is a snapshot of how a Driver has been used.
type Stats struct {
	SessionsOpened     int
	SessionsClosed     int
	TransactionsOpened int
	TransactionsClosed int
	Commits            int
	FailedCommits      int
	OpenWrites         int // write transactions currently open
	MaxOpenWrites      int // high-water mark of OpenWrites
}

// Driver is a test double for storage.Driver.
// Hooks must be set before the driver is used and are called concurrently.
type Driver struct {
	// InsertFunc is called for every Insert if set.
	// Returning an error rejects the statement.
	InsertFunc func(txID string, statement string) error

	// CommitFunc is called on Commit with the transaction's statements if set.
	// Returning an error fails the commit and discards the statements.
	CommitFunc func(txID string, statements []string) error

	// OpenFunc is called when a transaction is opened if set.
	// Returning an error fails the open.
	OpenFunc func(txType core.TransactionType) error

	// CommitDelay is slept on every commit, before CommitFunc runs.
	CommitDelay time.Duration

	mu        sync.Mutex
	databases map[string][]*core.StatementRecord
	nextID    core.ID
	stats     Stats
	closed    bool
}

var _ storage.Driver = (*Driver)(nil)

// NewDriver creates an empty mock driver.
func NewDriver() *Driver {
	return &Driver{
		databases: make(map[string][]*core.StatementRecord),
	}
}

// Session opens a mock session.
func (d *Driver) Session(ctx context.Context, database string, sessionType core.SessionType) (storage.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := core.ValidateDatabaseName(database); err != nil {
		return nil, err
	}
	if err := core.ValidateSessionType(sessionType); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, storage.ErrStorageClosed
	}
	d.stats.SessionsOpened++
	return &session{driver: d, database: database, sessionType: sessionType}, nil
}

// Close marks the driver closed.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Stats returns a snapshot of the usage counters.
func (d *Driver) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Committed returns the committed statement texts of database in commit order.
func (d *Driver) Committed(database string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	records := d.databases[database]
	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Text
	}
	return texts
}

// CommittedTransactions returns, for database, the statements of each
// committed transaction in commit order.
func (d *Driver) CommittedTransactions(database string) [][]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var (
		groups [][]string
		lastTx string
	)
	for _, r := range d.databases[database] {
		if len(groups) == 0 || r.TransactionId != lastTx {
			groups = append(groups, nil)
			lastTx = r.TransactionId
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], r.Text)
	}
	return groups
}

type session struct {
	driver      *Driver
	database    string
	sessionType core.SessionType
	closed      bool
}

func (s *session) Database() string {
	return s.database
}

func (s *session) Type() core.SessionType {
	return s.sessionType
}

func (s *session) Transaction(ctx context.Context, txType core.TransactionType) (storage.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := core.ValidateTransactionType(txType); err != nil {
		return nil, err
	}

	d := s.driver
	d.mu.Lock()
	closed := s.closed || d.closed
	d.mu.Unlock()
	if closed {
		return nil, storage.ErrSessionClosed
	}
	if d.OpenFunc != nil {
		if err := d.OpenFunc(txType); err != nil {
			return nil, err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.TransactionsOpened++
	if txType == core.TransactionTypeWrite {
		d.stats.OpenWrites++
		if d.stats.OpenWrites > d.stats.MaxOpenWrites {
			d.stats.MaxOpenWrites = d.stats.OpenWrites
		}
	}
	return &transaction{session: s, id: uuid.NewString(), txType: txType, open: true}, nil
}

func (s *session) Close() error {
	s.driver.mu.Lock()
	defer s.driver.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.driver.stats.SessionsClosed++
	}
	return nil
}

type transaction struct {
	session *session
	id      string
	txType  core.TransactionType
	pending []string

	mu   sync.Mutex
	open bool
}

func (t *transaction) ID() string {
	return t.id
}

func (t *transaction) Type() core.TransactionType {
	return t.txType
}

func (t *transaction) IsOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}

func (t *transaction) Insert(ctx context.Context, statement string) error {
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
	if fn := t.session.driver.InsertFunc; fn != nil {
		if err := fn(t.id, statement); err != nil {
			return err
		}
	}
	t.pending = append(t.pending, statement)
	return nil
}

func (t *transaction) Statements(ctx context.Context) iter.Seq2[*core.StatementRecord, error] {
	return func(yield func(*core.StatementRecord, error) bool) {
		if !t.IsOpen() {
			yield(nil, storage.ErrTransactionClosed)
			return
		}
		d := t.session.driver
		d.mu.Lock()
		records := append([]*core.StatementRecord(nil), d.databases[t.session.database]...)
		d.mu.Unlock()

		for _, r := range records {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			copied := *r
			if !yield(&copied, nil) {
				return
			}
		}
	}
}

func (t *transaction) Count(ctx context.Context) (int, error) {
	if !t.IsOpen() {
		return 0, storage.ErrTransactionClosed
	}
	d := t.session.driver
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.databases[t.session.database]), nil
}

func (t *transaction) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.open {
		return storage.ErrTransactionClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	d := t.session.driver
	if d.CommitDelay > 0 {
		time.Sleep(d.CommitDelay)
	}

	var commitErr error
	if d.CommitFunc != nil {
		commitErr = d.CommitFunc(t.id, append([]string(nil), t.pending...))
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	t.finish()
	if commitErr != nil {
		d.stats.FailedCommits++
		return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, commitErr)
	}
	now := time.Now().UTC()
	for _, text := range t.pending {
		d.nextID++
		d.databases[t.session.database] = append(d.databases[t.session.database], &core.StatementRecord{
			Id:            d.nextID,
			Database:      t.session.database,
			Text:          text,
			Digest:        core.IDFromContent(text),
			TransactionId: t.id,
			InsertedAt:    now,
		})
	}
	d.stats.Commits++
	t.pending = nil
	return nil
}

func (t *transaction) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.open {
		return nil
	}
	d := t.session.driver
	d.mu.Lock()
	defer d.mu.Unlock()
	t.finish()
	t.pending = nil
	return nil
}

// finish closes the transaction. Must be called with both locks held.
func (t *transaction) finish() {
	t.open = false
	d := t.session.driver
	d.stats.TransactionsClosed++
	if t.txType == core.TransactionTypeWrite {
		d.stats.OpenWrites--
	}
}
