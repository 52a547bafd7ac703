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


// Package storage defines the store abstraction the loader writes through.
//
// The loader only needs a minimal capability set from a transactional
// store: open a session on a database, open read or write transactions
// from that session, submit statements, commit, and close. Those
// capabilities are expressed by the Driver, Session, and Transaction
// interfaces so that different stores (BadgerDB, in-memory test doubles)
// can be used interchangeably.
//
// # Architecture
//
//   - Driver: opens sessions on named databases
//   - Session: a shared handle on one database; opens transactions
//   - Transaction: a single-owner unit of work; Insert, Commit, Close
//
// # Usage
//
// Open the embedded store and load a batch:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	driver, err := badger.NewDriver(backend)
//	...
//	session, err := driver.Session(ctx, "bookstore", core.SessionTypeData)
//	...
//	tx, err := session.Transaction(ctx, core.TransactionTypeWrite)
//	...
//	defer tx.Close()
//	for _, stmt := range batch.Statements {
//	    if err := tx.Insert(ctx, stmt); err != nil {
//	        return err
//	    }
//	}
//	return tx.Commit(ctx)
//
// # Thread Safety
//
// Drivers and sessions must be safe for concurrent use. Transactions are
// owned by exactly one caller; two concurrent writers on one transaction
// handle would interleave statement order.
//
// # Context Support
//
// Blocking operations accept context.Context for cancellation.
package storage
