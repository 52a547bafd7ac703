package storage

import (
	"testing"
	"time"

	"github.com/poiesic/bulkload/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalStatementRecord(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name   string
		record *core.StatementRecord
	}{
		{
			name: "full record",
			record: &core.StatementRecord{
				Id:            42,
				Database:      "bookstore",
				Text:          `insert $p isa publisher; $p has name "Harper Collins";`,
				Digest:        core.IDFromContent(`insert $p isa publisher; $p has name "Harper Collins";`),
				TransactionId: "0b6f2c1e-6f0a-4f5e-9d4e-3c1a2b3c4d5e",
				InsertedAt:    now,
			},
		},
		{
			name: "max id and unicode text",
			record: &core.StatementRecord{
				Id:         core.ID(18446744073709551615),
				Database:   "db",
				Text:       "insert $x has name \"Ærøskøbing\";",
				InsertedAt: now,
			},
		},
		{
			name:   "zero values",
			record: &core.StatementRecord{InsertedAt: time.UnixMicro(0).UTC()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalStatementRecord(tt.record)
			require.NotEmpty(t, data)
			assert.Equal(t, StatementRecordMUS.Size(*tt.record), len(data))

			decoded, err := UnmarshalStatementRecord(data)
			require.NoError(t, err)
			assert.Equal(t, tt.record, decoded)

			n, err := StatementRecordMUS.Skip(data)
			require.NoError(t, err)
			assert.Equal(t, len(data), n)
		})
	}
}

func TestUnmarshalStatementRecord_Invalid(t *testing.T) {
	valid := MarshalStatementRecord(&core.StatementRecord{
		Id:         7,
		Database:   "bookstore",
		Text:       "insert $x isa thing;",
		InsertedAt: time.Now().UTC(),
	})

	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"truncated", valid[:len(valid)/2]},
		{"trailing bytes", append(append([]byte{}, valid...), 0x01)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalStatementRecord(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}
}
