package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "insert $x isa person;",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "long content",
			content:  `insert $book isa ebook; $book has isbn-13 "9780008627843"; $book has title "The Hobbit";`,
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("statement 1")
	id2 := IDFromContent("statement 2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestBatchLen(t *testing.T) {
	b := Batch{Index: 3, Statements: []string{"a", "b"}}
	if b.Len() != 2 {
		t.Errorf("Len() = %d, want 2", b.Len())
	}
	if (Batch{}).Len() != 0 {
		t.Errorf("empty batch Len() should be 0")
	}
}

func TestTypeStrings(t *testing.T) {
	if SessionTypeData.String() != "data" || SessionTypeSchema.String() != "schema" {
		t.Errorf("unexpected session type strings")
	}
	if TransactionTypeRead.String() != "read" || TransactionTypeWrite.String() != "write" {
		t.Errorf("unexpected transaction type strings")
	}
	if SessionType(99).String() != "unknown" || TransactionType(0).String() != "unknown" {
		t.Errorf("invalid values should stringify as unknown")
	}
}
