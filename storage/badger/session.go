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
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/poiesic/bulkload/core"
	"github.com/poiesic/bulkload/storage"
)

// Session implements storage.Session for one database.
// It holds no per-transaction state and may be shared across goroutines.
type Session struct {
	driver      *Driver
	database    string
	sessionType core.SessionType
	closed      atomic.Bool
}

var _ storage.Session = (*Session)(nil)

// Database returns the session's database name.
func (s *Session) Database() string {
	return s.database
}

// Type returns the session type.
func (s *Session) Type() core.SessionType {
	return s.sessionType
}

// Transaction opens a new BadgerDB-backed transaction.
func (s *Session) Transaction(ctx context.Context, txType core.TransactionType) (storage.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.closed.Load() {
		return nil, storage.ErrSessionClosed
	}
	if err := core.ValidateTransactionType(txType); err != nil {
		return nil, err
	}
	if s.driver.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	tx := &Transaction{
		session: s,
		id:      uuid.NewString(),
		txType:  txType,
		open:    true,
	}
	if txType == core.TransactionTypeWrite && s.sessionType == core.SessionTypeData {
		seq, err := s.driver.sequence(s.database)
		if err != nil {
			return nil, err
		}
		tx.seq = seq
	}
	tx.txn = s.driver.backend.NewTxn(txType == core.TransactionTypeWrite)
	return tx, nil
}

// Close marks the session closed. Open transactions are unaffected.
func (s *Session) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.driver.logger.Debug("session closed", "database", s.database)
	}
	return nil
}
