// Package mock provides an in-memory test double for the storage interfaces.
//
// The Driver in this package implements storage.Driver, storage.Session and
// storage.Transaction without any persistence. It records how it was used so
// tests can assert on transactional behavior: how many transactions were
// opened, committed and closed, and the largest number of write transactions
// that were open at the same time.
//
// # Usage in Tests
//
//	driver := mock.NewDriver()
//	driver.CommitFunc = func(txID string, statements []string) error {
//	    if len(statements) == 3 {
//	        return errors.New("simulated commit failure")
//	    }
//	    return nil
//	}
//
//	// ... run the loader against driver ...
//
//	stats := driver.Stats()
//	assert.Equal(t, stats.TransactionsOpened, stats.TransactionsClosed)
//	assert.LessOrEqual(t, stats.MaxOpenWrites, 2)
//
// # Default Behavior
//
// Without hooks every statement is accepted (blank statements are rejected
// like the embedded store does) and every commit succeeds.
package mock
