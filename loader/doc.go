// Package loader loads line-delimited statement files into a transactional store.
//
// Each batch of statements is written in its own write transaction: the
// Executor opens the transaction, submits every statement in order and
// commits once. A batch is therefore durable as a whole or not at all.
//
// The Loader drives batches either sequentially, one transaction at a time,
// or concurrently through a pool.Limiter that keeps at most Parallelism
// transactions in flight. In concurrent mode each file is batched on its own
// and, by default, the limiter is drained after every file before the next
// one starts. Batches in different slots may commit in any order.
//
// The loader never retries on its own unless Config.MaxAttempts is raised.
// A failed batch is reported when its result is harvested; Config.ContinueOnError
// chooses between stopping the run and carrying on.
package loader
