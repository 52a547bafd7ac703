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
	"encoding/binary"

	"github.com/poiesic/bulkload/core"
)

// Key prefixes for different data types
const (
	statementPrefix      = "stmt"
	statementIDSeqPrefix = "stmtseq"
)

// makeStatementPrefix generates the key prefix shared by all statements of a database.
// Format: prefix:database:
func makeStatementPrefix(database string) []byte {
	return []byte(statementPrefix + ":" + database + ":")
}

// makeStatementKey generates a key for a statement record.
// Format: prefix:database:id
func makeStatementKey(database string, id core.ID) []byte {
	prefixBytes := makeStatementPrefix(database)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort matches insertion order
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeSequenceKey generates the name of a database's statement ID sequence.
func makeSequenceKey(database string) string {
	return statementIDSeqPrefix + ":" + database
}
