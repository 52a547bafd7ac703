package core

import (
	"errors"
	"testing"
)

func TestValidateBatchSize(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr error
	}{
		{"one", 1, nil},
		{"hundred", 100, nil},
		{"zero", 0, ErrInvalidBatchSize},
		{"negative", -4, ErrInvalidBatchSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBatchSize(tt.size)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateBatchSize(%d) = %v, want nil", tt.size, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateBatchSize(%d) = %v, want %v", tt.size, err, tt.wantErr)
			}
		})
	}
}

func TestValidateStatement(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{"insert statement", "insert $p isa person;", nil},
		{"opaque text", "anything at all", nil},
		{"leading whitespace", "   insert $p isa person;", nil},
		{"empty", "", ErrEmptyStatement},
		{"whitespace only", " \t ", ErrEmptyStatement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStatement(tt.text)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateStatement(%q) = %v, want %v", tt.text, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDatabaseName(t *testing.T) {
	tests := []struct {
		name    string
		db      string
		wantErr bool
	}{
		{"simple", "bookstore", false},
		{"dashes", "phone-calls", false},
		{"empty", "", true},
		{"separator", "book:store", true},
		{"space", "book store", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseName(tt.db)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDatabaseName) {
					t.Errorf("ValidateDatabaseName(%q) = %v, want ErrInvalidDatabaseName", tt.db, err)
				}
			} else if err != nil {
				t.Errorf("ValidateDatabaseName(%q) = %v, want nil", tt.db, err)
			}
		})
	}
}

func TestValidateSessionAndTransactionType(t *testing.T) {
	if err := ValidateSessionType(SessionTypeData); err != nil {
		t.Errorf("data session should be valid: %v", err)
	}
	if err := ValidateSessionType(SessionType(0)); !errors.Is(err, ErrInvalidSessionType) {
		t.Errorf("zero session type should be invalid, got %v", err)
	}
	if err := ValidateTransactionType(TransactionTypeWrite); err != nil {
		t.Errorf("write transaction should be valid: %v", err)
	}
	if err := ValidateTransactionType(TransactionType(7)); !errors.Is(err, ErrInvalidTransactionType) {
		t.Errorf("unknown transaction type should be invalid, got %v", err)
	}
}
