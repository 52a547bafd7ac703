package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrDriverRequired is returned when a storage driver is not provided.
	ErrDriverRequired = errors.New("storage driver required")

	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("invalid loader config")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrInvalidManifest is returned when a manifest file cannot be used.
	ErrInvalidManifest = errors.New("invalid manifest")
)

// Stage identifies the step of batch execution that failed.
type Stage string

const (
	StageOpen   Stage = "open"
	StageSubmit Stage = "submit"
	StageCommit Stage = "commit"
)

// BatchError reports a batch whose transaction did not commit.
// None of the batch's statements are durable.
type BatchError struct {
	Batch         int    // batch index within its source
	Source        string // file the batch came from, if known
	Stage         Stage
	Statement     int // index within the batch of the rejected statement, -1 if none
	TransactionId string
	Err           error
}

func (e *BatchError) Error() string {
	where := fmt.Sprintf("batch %d", e.Batch)
	if e.Source != "" {
		where = fmt.Sprintf("%s batch %d", e.Source, e.Batch)
	}
	if e.Stage == StageSubmit && e.Statement >= 0 {
		return fmt.Sprintf("%s: %s statement %d: %v", where, e.Stage, e.Statement, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", where, e.Stage, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
