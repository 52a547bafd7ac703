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
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/bulkload/core"
	"github.com/poiesic/bulkload/storage"
)

// Driver implements storage.Driver on top of a BadgerDB backend.
// Each database is a key namespace with its own ID sequence.
type Driver struct {
	backend *Backend
	logger  *slog.Logger

	mu        sync.Mutex
	sequences map[string]*badger.Sequence
	closed    bool
}

var _ storage.Driver = (*Driver)(nil)

// NewDriver creates a new Driver on an open backend.
// The backend is not owned by the driver and must be closed separately.
func NewDriver(backend *Backend) (*Driver, error) {
	if backend == nil || backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	return &Driver{
		backend:   backend,
		logger:    backend.logger,
		sequences: make(map[string]*badger.Sequence),
	}, nil
}

// Session opens a session on database.
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
	closed := d.closed
	d.mu.Unlock()
	if closed || d.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	d.logger.Debug("session opened", "database", database, "type", sessionType)
	return &Session{
		driver:      d,
		database:    database,
		sessionType: sessionType,
	}, nil
}

// sequence returns the ID sequence of database, leasing it on first use.
func (d *Driver) sequence(database string) (*badger.Sequence, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, storage.ErrStorageClosed
	}
	if seq, ok := d.sequences[database]; ok {
		return seq, nil
	}
	seq, err := d.backend.GetSequence(makeSequenceKey(database))
	if err != nil {
		return nil, err
	}
	d.sequences[database] = seq
	return seq, nil
}

// Close releases all leased ID sequences.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	var errs []error
	for database, seq := range d.sequences {
		if err := seq.Release(); err != nil {
			d.logger.Error("error releasing sequence", "database", database, "err", err)
			errs = append(errs, err)
		}
	}
	d.sequences = nil
	return errors.Join(errs...)
}
