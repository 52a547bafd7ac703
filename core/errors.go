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

import "errors"

// Domain validation errors
var (
	// ErrInvalidBatchSize indicates a batch size that is zero or negative.
	ErrInvalidBatchSize = errors.New("batch size must be greater than 0")

	// ErrEmptyStatement indicates a statement with no content.
	ErrEmptyStatement = errors.New("statement cannot be empty")

	// ErrInvalidDatabaseName indicates a database name that cannot be used as a key namespace.
	ErrInvalidDatabaseName = errors.New("invalid database name")

	// ErrInvalidSessionType indicates an unknown SessionType value.
	ErrInvalidSessionType = errors.New("invalid session type")

	// ErrInvalidTransactionType indicates an unknown TransactionType value.
	ErrInvalidTransactionType = errors.New("invalid transaction type")
)
