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


package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
)

const (
	// DefaultMaxStatementSize is the default upper bound on one line, in bytes.
	DefaultMaxStatementSize = 16 * 1024 * 1024

	initialBufferSize = 64 * 1024
)

// StatementSource produces a finite sequence of statements.
// Each call to Statements starts a new pass over the underlying data.
type StatementSource interface {
	Statements(ctx context.Context) iter.Seq2[string, error]
}

// FileSource reads statements from files, one statement per line.
type FileSource struct {
	paths   []string
	maxSize int
}

// SourceOption configures a FileSource.
type SourceOption func(*FileSource)

// WithMaxStatementSize sets the maximum length of a single line in bytes.
// Values <= 0 are ignored.
func WithMaxStatementSize(size int) SourceOption {
	return func(s *FileSource) {
		if size > 0 {
			s.maxSize = size
		}
	}
}

// NewFileSource creates a source over paths, read in the given order.
func NewFileSource(paths []string, opts ...SourceOption) *FileSource {
	s := &FileSource{
		paths:   append([]string(nil), paths...),
		maxSize: DefaultMaxStatementSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Paths returns the files the source reads, in order.
func (s *FileSource) Paths() []string {
	return append([]string(nil), s.paths...)
}

// Statements yields every line of every file, in file order.
// Line terminators are stripped; lines are not otherwise transformed.
// An open or read failure is yielded as an error wrapping ErrSourceRead
// and ends the sequence.
func (s *FileSource) Statements(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, path := range s.paths {
			if !s.readFile(ctx, path, yield) {
				return
			}
		}
	}
}

// readFile yields the lines of one file. Returns false if iteration must stop.
func (s *FileSource) readFile(ctx context.Context, path string, yield func(string, error) bool) bool {
	if err := ctx.Err(); err != nil {
		yield("", err)
		return false
	}

	f, err := os.Open(path)
	if err != nil {
		yield("", fmt.Errorf("%w: %s: %w", ErrSourceRead, path, err))
		return false
	}
	defer f.Close()

	// The scanner's token limit includes the terminator, up to "\r\n".
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, min(initialBufferSize, s.maxSize+2)), s.maxSize+2)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			yield("", err)
			return false
		}
		if len(scanner.Bytes()) > s.maxSize {
			yield("", fmt.Errorf("%w: %s: %w: limit %d bytes", ErrSourceRead, path, ErrStatementTooLong, s.maxSize))
			return false
		}
		if !yield(scanner.Text(), nil) {
			return false
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			err = fmt.Errorf("%w: limit %d bytes", ErrStatementTooLong, s.maxSize)
		}
		yield("", fmt.Errorf("%w: %s: %w", ErrSourceRead, path, err))
		return false
	}
	return true
}

// SliceSource is an in-memory StatementSource.
type SliceSource []string

// FromSlice creates a source that yields statements in order.
func FromSlice(statements ...string) SliceSource {
	return SliceSource(statements)
}

// Statements yields the slice contents.
func (s SliceSource) Statements(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, statement := range s {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if !yield(statement, nil) {
				return
			}
		}
	}
}
