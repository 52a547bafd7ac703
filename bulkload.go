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


package bulkload

import (
	"context"
	"log/slog"

	"github.com/poiesic/bulkload/core"
	"github.com/poiesic/bulkload/loader"
	"github.com/poiesic/bulkload/storage"
	"github.com/poiesic/bulkload/storage/badger"
)

// Database is an embedded statement store ready to be bulk loaded.
type Database struct {
	backend *badger.Backend
	driver  *badger.Driver
	logger  *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	logger *slog.Logger
}

// WithLogger sets the logger used by the database and the loaders it creates.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// Open opens (creating if needed) a store in the directory at filePath.
func Open(filePath string, opts ...DatabaseOption) (*Database, error) {
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}
	return newDatabase(backend, opts...)
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory(opts ...DatabaseOption) (*Database, error) {
	backend, err := badger.OpenBackend("", true)
	if err != nil {
		return nil, err
	}
	return newDatabase(backend, opts...)
}

func newDatabase(backend *badger.Backend, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	driver, err := badger.NewDriver(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Database{
		backend: backend,
		driver:  driver,
		logger:  options.logger,
	}, nil
}

func (db *Database) Close() error {
	// Close the driver first so its sequences are returned
	if err := db.driver.Close(); err != nil {
		db.logger.Error("error closing driver", "err", err)
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Driver returns the store's driver.
func (db *Database) Driver() storage.Driver {
	return db.driver
}

// NewLoader creates a loader writing into this store.
// The database's logger is used unless opts set another.
func (db *Database) NewLoader(cfg *loader.Config, opts ...loader.Option) (*loader.Loader, error) {
	opts = append([]loader.Option{loader.WithLogger(db.logger)}, opts...)
	return loader.NewLoader(db.driver, cfg, opts...)
}

// Count returns the number of committed statements in database.
func (db *Database) Count(ctx context.Context, database string) (int, error) {
	var count int
	err := db.read(ctx, database, func(tx storage.Transaction) error {
		var err error
		count, err = tx.Count(ctx)
		return err
	})
	return count, err
}

// Statements calls fn with each committed statement of database in insertion
// order until fn returns false.
func (db *Database) Statements(ctx context.Context, database string, fn func(*core.StatementRecord) bool) error {
	return db.read(ctx, database, func(tx storage.Transaction) error {
		for record, err := range tx.Statements(ctx) {
			if err != nil {
				return err
			}
			if !fn(record) {
				break
			}
		}
		return nil
	})
}

// read runs fn in a read transaction on a data session of database.
func (db *Database) read(ctx context.Context, database string, fn func(storage.Transaction) error) error {
	session, err := db.driver.Session(ctx, database, core.SessionTypeData)
	if err != nil {
		return err
	}
	defer session.Close()

	tx, err := session.Transaction(ctx, core.TransactionTypeRead)
	if err != nil {
		return err
	}
	defer tx.Close()

	return fn(tx)
}
