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


package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored statements.
// It is generated from database sequences or content hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical statements produce identical digests.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SessionType identifies what kind of work a session accepts.
type SessionType int

const (
	// SessionTypeData sessions accept data (insert) statements.
	SessionTypeData SessionType = iota + 1
	// SessionTypeSchema sessions are reserved for schema changes.
	SessionTypeSchema
)

func (t SessionType) String() string {
	switch t {
	case SessionTypeData:
		return "data"
	case SessionTypeSchema:
		return "schema"
	default:
		return "unknown"
	}
}

// TransactionType identifies whether a transaction may write.
type TransactionType int

const (
	// TransactionTypeRead transactions only observe committed state.
	TransactionTypeRead TransactionType = iota + 1
	// TransactionTypeWrite transactions accumulate statements until commit.
	TransactionTypeWrite
)

func (t TransactionType) String() string {
	switch t {
	case TransactionTypeRead:
		return "read"
	case TransactionTypeWrite:
		return "write"
	default:
		return "unknown"
	}
}

// Batch is an ordered group of statements executed within one transaction.
// Index is the 0-based position of the batch within its sequence.
type Batch struct {
	Index      int
	Statements []string
}

// Len returns the number of statements in the batch.
func (b Batch) Len() int {
	return len(b.Statements)
}

// BatchResult describes a batch whose transaction committed.
type BatchResult struct {
	Batch         int
	Statements    int
	TransactionId string
	Attempts      int
	Duration      time.Duration
}

// StatementRecord is a statement accepted and persisted by a store.
type StatementRecord struct {
	Id            ID
	Database      string
	Text          string
	Digest        ID        // IDFromContent(Text)
	TransactionId string    // Transaction that committed the statement
	InsertedAt    time.Time // When the statement was submitted
}
