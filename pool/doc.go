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


// Package pool provides a fixed-capacity task limiter with per-slot results.
//
// A Limiter runs at most N tasks at once. Each running task occupies one of
// N slots. When every slot is busy, Submit waits for whichever task finishes
// first, hands back that task's result, and starts the new task in the slot
// it freed. Slots are therefore replaced in completion order, not in
// submission order, which keeps all N slots busy when task latencies vary.
//
//	limiter, err := pool.New[int](4)
//	if err != nil {
//	    return err
//	}
//	defer limiter.Release()
//
//	for _, job := range jobs {
//	    harvested, err := limiter.Submit(ctx, job)
//	    if err != nil {
//	        return err // context canceled while waiting for a slot
//	    }
//	    if harvested != nil && harvested.Err != nil {
//	        log.Println("job failed:", harvested.Err)
//	    }
//	}
//	results, err := limiter.Drain(ctx)
//
// Tasks run on an ants goroutine pool sized to the limiter's capacity.
// Only the limiter touches its slot table; tasks report completion over a
// channel. A task's result (value or error, including a recovered panic) is
// returned exactly once, by the Submit that reused its slot or by Drain.
package pool
