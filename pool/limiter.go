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


package pool

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
)

// Task is a unit of work run in a limiter slot.
type Task[T any] func(ctx context.Context) (T, error)

// Result is the outcome of one task.
type Result[T any] struct {
	Slot  int   // slot the task occupied
	Seq   int   // 0-based submission ordinal
	Value T     // task value; zero if Err is set
	Err   error // task error, if any
}

// completion is sent by a task when it finishes.
type completion[T any] struct {
	slot   int
	result Result[T]
}

// Limiter bounds the number of concurrently running tasks.
// Submit and Drain may be called from multiple goroutines but are serialized.
type Limiter[T any] struct {
	size    int
	workers *ants.Pool
	done    chan completion[T]

	mu       sync.Mutex
	slots    int          // slots ever assigned since the last Drain
	free     []int        // slots whose result was harvested but not reassigned
	running  atomic.Int64 // written with mu held; read without it by Outstanding
	seq      int
	released bool
}

// New creates a limiter with size slots.
func New[T any](size int) (*Limiter[T], error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPoolSize, size)
	}
	workers, err := ants.NewPool(size)
	if err != nil {
		return nil, err
	}
	return &Limiter[T]{
		size:    size,
		workers: workers,
		// Never more than size tasks are outstanding, so sends never block.
		done: make(chan completion[T], size),
	}, nil
}

// Size returns the number of slots.
func (l *Limiter[T]) Size() int {
	return l.size
}

// Outstanding returns the number of tasks submitted but not yet harvested.
// It does not wait for a blocked Submit or Drain.
func (l *Limiter[T]) Outstanding() int {
	return int(l.running.Load())
}

// Submit starts task in a free slot and returns (nil, nil) if fewer than
// Size tasks are outstanding. Otherwise it blocks until the first
// outstanding task completes, starts task in that task's slot, and returns
// the completed task's result. If ctx is done while waiting, task is not
// started and ctx.Err() is returned, along with the harvested result if
// ctx ended as a slot came free.
func (l *Limiter[T]) Submit(ctx context.Context, task Task[T]) (*Result[T], error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.released {
		return nil, ErrLimiterReleased
	}

	if l.running.Load() < int64(l.size) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		slot := l.nextFreeSlot()
		if err := l.start(ctx, slot, task); err != nil {
			l.free = append(l.free, slot)
			return nil, err
		}
		return nil, nil
	}

	var c completion[T]
	select {
	case c = <-l.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	l.running.Add(-1)
	harvested := c.result

	if err := ctx.Err(); err != nil {
		l.free = append(l.free, c.slot)
		return &harvested, err
	}
	if err := l.start(ctx, c.slot, task); err != nil {
		l.free = append(l.free, c.slot)
		return &harvested, err
	}
	return &harvested, nil
}

// Drain waits for every outstanding task and returns their results ordered
// by slot. The limiter is empty and reusable afterwards. If ctx is done
// first, the results collected so far are returned with ctx.Err(); tasks
// still running remain outstanding.
func (l *Limiter[T]) Drain(ctx context.Context) ([]Result[T], error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	results := make([]Result[T], 0, l.running.Load())
	for l.running.Load() > 0 {
		select {
		case c := <-l.done:
			l.running.Add(-1)
			l.free = append(l.free, c.slot)
			results = append(results, c.result)
		case <-ctx.Done():
			sortBySlot(results)
			return results, ctx.Err()
		}
	}
	l.slots = 0
	l.free = l.free[:0]

	sortBySlot(results)
	return results, nil
}

// Release waits for outstanding tasks to finish, discarding their results,
// and releases the worker pool. The limiter cannot be used afterwards.
func (l *Limiter[T]) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.released {
		return
	}
	for ; l.running.Load() > 0; l.running.Add(-1) {
		<-l.done
	}
	l.released = true
	l.workers.Release()
}

// nextFreeSlot returns the lowest slot to reuse, or a new slot index.
// Must be called with lock held.
func (l *Limiter[T]) nextFreeSlot() int {
	if len(l.free) > 0 {
		sort.Ints(l.free)
		slot := l.free[0]
		l.free = l.free[1:]
		return slot
	}
	slot := l.slots
	l.slots++
	return slot
}

// start runs task in slot on the worker pool. Must be called with lock held.
func (l *Limiter[T]) start(ctx context.Context, slot int, task Task[T]) error {
	seq := l.seq
	err := l.workers.Submit(func() {
		result := Result[T]{Slot: slot, Seq: seq}
		func() {
			defer func() {
				if r := recover(); r != nil {
					result.Err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
				}
			}()
			result.Value, result.Err = task(ctx)
		}()
		l.done <- completion[T]{slot: slot, result: result}
	})
	if err != nil {
		return err
	}
	l.seq++
	l.running.Add(1)
	return nil
}

func sortBySlot[T any](results []Result[T]) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].Slot < results[j].Slot
	})
}
