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
	"fmt"
	"time"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/bulkload/core"
)

// StatementRecordMUS is the MUS serializer for core.StatementRecord.
// Field order: Id, Database, Text, Digest, TransactionId, InsertedAt (unix micros).
var StatementRecordMUS = statementRecordMUS{}

var _ mus.Serializer[core.StatementRecord] = statementRecordMUS{}

type statementRecordMUS struct{}

func (statementRecordMUS) Marshal(v core.StatementRecord, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(v.Id), bs)
	n += ord.String.Marshal(v.Database, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += varint.Uint64.Marshal(uint64(v.Digest), bs[n:])
	n += ord.String.Marshal(v.TransactionId, bs[n:])
	return n + varint.Int64.Marshal(v.InsertedAt.UnixMicro(), bs[n:])
}

func (statementRecordMUS) Unmarshal(bs []byte) (v core.StatementRecord, n int, err error) {
	var (
		n1     int
		id     uint64
		digest uint64
		micros int64
	)
	id, n, err = varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Id = core.ID(id)
	v.Database, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	digest, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Digest = core.ID(digest)
	v.TransactionId, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt = time.UnixMicro(micros).UTC()
	return
}

func (statementRecordMUS) Size(v core.StatementRecord) (size int) {
	size = varint.Uint64.Size(uint64(v.Id))
	size += ord.String.Size(v.Database)
	size += ord.String.Size(v.Text)
	size += varint.Uint64.Size(uint64(v.Digest))
	size += ord.String.Size(v.TransactionId)
	return size + varint.Int64.Size(v.InsertedAt.UnixMicro())
}

func (statementRecordMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = varint.Uint64.Skip(bs); err != nil {
		return
	}
	for _, skip := range []func([]byte) (int, error){
		ord.String.Skip, ord.String.Skip, varint.Uint64.Skip, ord.String.Skip, varint.Int64.Skip,
	} {
		n1, err = skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

// MarshalStatementRecord serializes a StatementRecord to bytes.
func MarshalStatementRecord(record *core.StatementRecord) []byte {
	buf := make([]byte, StatementRecordMUS.Size(*record))
	StatementRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalStatementRecord deserializes a StatementRecord from bytes.
func UnmarshalStatementRecord(data []byte) (*core.StatementRecord, error) {
	record, n, err := StatementRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(data)-n)
	}
	return &record, nil
}
