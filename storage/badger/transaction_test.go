package badger

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/poiesic/bulkload/core"
	"github.com/poiesic/bulkload/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDriver(t *testing.T) *Driver {
	t.Helper()
	driver, backend, err := NewMemoryDriver()
	require.NoError(t, err)
	t.Cleanup(func() {
		driver.Close()
		backend.Close()
	})
	return driver
}

func openSession(t *testing.T, driver *Driver, database string) storage.Session {
	t.Helper()
	session, err := driver.Session(context.Background(), database, core.SessionTypeData)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func readAll(t *testing.T, session storage.Session) []*core.StatementRecord {
	t.Helper()
	ctx := context.Background()
	tx, err := session.Transaction(ctx, core.TransactionTypeRead)
	require.NoError(t, err)
	defer tx.Close()

	var records []*core.StatementRecord
	for record, err := range tx.Statements(ctx) {
		require.NoError(t, err)
		records = append(records, record)
	}
	return records
}

func TestTransaction_CommitMakesStatementsDurable(t *testing.T) {
	driver := setupDriver(t)
	session := openSession(t, driver, "bookstore")
	ctx := context.Background()

	tx, err := session.Transaction(ctx, core.TransactionTypeWrite)
	require.NoError(t, err)
	assert.True(t, tx.IsOpen())
	assert.NotEmpty(t, tx.ID())
	assert.Equal(t, core.TransactionTypeWrite, tx.Type())

	statements := []string{
		`insert $c isa contributor, has name "J.R.R. Tolkien";`,
		`insert $p isa publisher, has name "Harper Collins";`,
		`insert $b isa ebook, has title "The Hobbit";`,
	}
	for _, s := range statements {
		require.NoError(t, tx.Insert(ctx, s))
	}
	require.NoError(t, tx.Commit(ctx))
	assert.False(t, tx.IsOpen())

	records := readAll(t, session)
	require.Len(t, records, 3)
	for i, record := range records {
		assert.Equal(t, statements[i], record.Text, "insertion order preserved")
		assert.Equal(t, "bookstore", record.Database)
		assert.Equal(t, tx.ID(), record.TransactionId)
		assert.Equal(t, core.IDFromContent(statements[i]), record.Digest)
		assert.NotZero(t, record.Id)
		if i > 0 {
			assert.Greater(t, record.Id, records[i-1].Id)
		}
	}
}

func TestTransaction_CloseDiscardsUncommitted(t *testing.T) {
	driver := setupDriver(t)
	session := openSession(t, driver, "bookstore")
	ctx := context.Background()

	tx, err := session.Transaction(ctx, core.TransactionTypeWrite)
	require.NoError(t, err)
	require.NoError(t, tx.Insert(ctx, "insert $x isa thing;"))
	require.NoError(t, tx.Close())
	require.NoError(t, tx.Close(), "close is idempotent")

	assert.Empty(t, readAll(t, session))

	assert.ErrorIs(t, tx.Insert(ctx, "insert $y isa thing;"), storage.ErrTransactionClosed)
	assert.ErrorIs(t, tx.Commit(ctx), storage.ErrTransactionClosed)
}

func TestTransaction_RejectsEmptyStatement(t *testing.T) {
	driver := setupDriver(t)
	session := openSession(t, driver, "bookstore")
	ctx := context.Background()

	tx, err := session.Transaction(ctx, core.TransactionTypeWrite)
	require.NoError(t, err)
	defer tx.Close()

	assert.ErrorIs(t, tx.Insert(ctx, "   "), core.ErrEmptyStatement)
}

func TestTransaction_ReadOnly(t *testing.T) {
	driver := setupDriver(t)
	session := openSession(t, driver, "bookstore")
	ctx := context.Background()

	tx, err := session.Transaction(ctx, core.TransactionTypeRead)
	require.NoError(t, err)
	defer tx.Close()

	assert.ErrorIs(t, tx.Insert(ctx, "insert $x isa thing;"), storage.ErrReadOnlyTransaction)

	count, err := tx.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTransaction_SchemaSessionRejectsInsert(t *testing.T) {
	driver := setupDriver(t)
	ctx := context.Background()

	session, err := driver.Session(ctx, "bookstore", core.SessionTypeSchema)
	require.NoError(t, err)
	defer session.Close()

	tx, err := session.Transaction(ctx, core.TransactionTypeWrite)
	require.NoError(t, err)
	defer tx.Close()

	assert.ErrorIs(t, tx.Insert(ctx, "insert $x isa thing;"), storage.ErrSessionTypeMismatch)
}

func TestTransaction_DatabasesAreIsolated(t *testing.T) {
	driver := setupDriver(t)
	ctx := context.Background()
	books := openSession(t, driver, "books")
	calls := openSession(t, driver, "books-calls")

	for _, session := range []storage.Session{books, calls} {
		tx, err := session.Transaction(ctx, core.TransactionTypeWrite)
		require.NoError(t, err)
		require.NoError(t, tx.Insert(ctx, "insert into "+session.Database()))
		require.NoError(t, tx.Commit(ctx))
	}

	bookRecords := readAll(t, books)
	require.Len(t, bookRecords, 1)
	assert.Equal(t, "insert into books", bookRecords[0].Text)

	callRecords := readAll(t, calls)
	require.Len(t, callRecords, 1)
	assert.Equal(t, "insert into books-calls", callRecords[0].Text)
}

func TestTransaction_ConcurrentWriters(t *testing.T) {
	driver := setupDriver(t)
	session := openSession(t, driver, "bookstore")
	ctx := context.Background()

	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			tx, err := session.Transaction(ctx, core.TransactionTypeWrite)
			if err != nil {
				errs <- err
				return
			}
			defer tx.Close()
			for i := 0; i < perWriter; i++ {
				if err := tx.Insert(ctx, fmt.Sprintf("insert writer %d statement %d", w, i)); err != nil {
					errs <- err
					return
				}
			}
			errs <- tx.Commit(ctx)
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	tx, err := session.Transaction(ctx, core.TransactionTypeRead)
	require.NoError(t, err)
	defer tx.Close()
	count, err := tx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, writers*perWriter, count)
}

func TestSession_Closed(t *testing.T) {
	driver := setupDriver(t)
	ctx := context.Background()

	session, err := driver.Session(ctx, "bookstore", core.SessionTypeData)
	require.NoError(t, err)
	require.NoError(t, session.Close())
	require.NoError(t, session.Close())

	_, err = session.Transaction(ctx, core.TransactionTypeWrite)
	assert.ErrorIs(t, err, storage.ErrSessionClosed)
}

func TestDriver_SessionValidation(t *testing.T) {
	driver := setupDriver(t)
	ctx := context.Background()

	_, err := driver.Session(ctx, "", core.SessionTypeData)
	assert.ErrorIs(t, err, core.ErrInvalidDatabaseName)

	_, err = driver.Session(ctx, "bookstore", core.SessionType(0))
	assert.ErrorIs(t, err, core.ErrInvalidSessionType)

	require.NoError(t, driver.Close())
	_, err = driver.Session(ctx, "bookstore", core.SessionTypeData)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestDriver_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	driver, err := NewDriver(backend)
	require.NoError(t, err)

	session, err := driver.Session(ctx, "bookstore", core.SessionTypeData)
	require.NoError(t, err)
	tx, err := session.Transaction(ctx, core.TransactionTypeWrite)
	require.NoError(t, err)
	require.NoError(t, tx.Insert(ctx, "insert $x isa thing;"))
	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, session.Close())
	require.NoError(t, driver.Close())
	require.NoError(t, backend.Close())

	backend, err = OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()
	driver, err = NewDriver(backend)
	require.NoError(t, err)
	defer driver.Close()

	session, err = driver.Session(ctx, "bookstore", core.SessionTypeData)
	require.NoError(t, err)
	records := readAll(t, session)
	require.Len(t, records, 1)
	assert.Equal(t, "insert $x isa thing;", records[0].Text)
}
