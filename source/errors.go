package source

import "errors"

var (
	// ErrSourceRead is returned when a statement file cannot be opened or read.
	ErrSourceRead = errors.New("statement source read failed")

	// ErrStatementTooLong is returned when a line exceeds the maximum statement size.
	ErrStatementTooLong = errors.New("statement exceeds maximum size")
)
