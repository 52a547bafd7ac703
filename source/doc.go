// Package source turns statement files into batches.
//
// A FileSource reads one or more files line by line and yields each line
// as a statement. Each call to Statements starts a fresh pass from the
// first file. A Batcher groups any StatementSource into fixed-size
// core.Batch values; only the last batch may be shorter.
package source
