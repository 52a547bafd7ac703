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
	"context"
	"iter"

	"github.com/poiesic/bulkload/core"
)

const maxPrealloc = 1024

// Batcher groups statements from a StatementSource into fixed-size batches.
type Batcher struct {
	source StatementSource
	size   int
}

// NewBatcher creates a batcher producing batches of size statements.
// Returns core.ErrInvalidBatchSize if size <= 0.
func NewBatcher(src StatementSource, size int) (*Batcher, error) {
	if err := core.ValidateBatchSize(size); err != nil {
		return nil, err
	}
	return &Batcher{
		source: src,
		size:   size,
	}, nil
}

// Size returns the configured batch size.
func (b *Batcher) Size() int {
	return b.size
}

// initialCap bounds the preallocation for a batch; very large sizes grow on demand.
func (b *Batcher) initialCap() int {
	return min(b.size, maxPrealloc)
}

// Batches yields full batches in source order followed by a final
// shorter batch holding the remainder, if any. An empty source yields
// nothing. A source error is yielded after the complete batches that
// preceded it; statements of an incomplete batch at that point are dropped.
func (b *Batcher) Batches(ctx context.Context) iter.Seq2[core.Batch, error] {
	return func(yield func(core.Batch, error) bool) {
		index := 0
		next := make([]string, 0, b.initialCap())

		for statement, err := range b.source.Statements(ctx) {
			if err != nil {
				yield(core.Batch{}, err)
				return
			}
			next = append(next, statement)

			if len(next) >= b.size {
				if !yield(core.Batch{Index: index, Statements: next}, nil) {
					return
				}
				index++
				next = make([]string, 0, b.initialCap())
			}
		}

		if len(next) > 0 {
			yield(core.Batch{Index: index, Statements: next}, nil)
		}
	}
}
