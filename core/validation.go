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
	"fmt"
	"strings"
)

// ValidateBatchSize checks that a batch size can be used to group statements.
func ValidateBatchSize(size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidBatchSize, size)
	}
	return nil
}

// ValidateStatement validates a statement before a store accepts it.
//
// Validation rules:
//   - Text must contain at least one non-whitespace character
//
// The statement body is otherwise opaque and is not parsed.
func ValidateStatement(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyStatement
	}
	return nil
}

// ValidateDatabaseName checks that a database name is non-empty and
// free of the ':' key separator and whitespace.
func ValidateDatabaseName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidDatabaseName)
	}
	if strings.ContainsAny(name, ": \t\r\n") {
		return fmt.Errorf("%w: %q contains ':' or whitespace", ErrInvalidDatabaseName, name)
	}
	return nil
}

// ValidateSessionType validates that a SessionType has a valid value.
func ValidateSessionType(t SessionType) error {
	if t != SessionTypeData && t != SessionTypeSchema {
		return fmt.Errorf("%w: value %d", ErrInvalidSessionType, t)
	}
	return nil
}

// ValidateTransactionType validates that a TransactionType has a valid value.
func ValidateTransactionType(t TransactionType) error {
	if t != TransactionTypeRead && t != TransactionTypeWrite {
		return fmt.Errorf("%w: value %d", ErrInvalidTransactionType, t)
	}
	return nil
}
