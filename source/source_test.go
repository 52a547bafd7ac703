package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func collect(t *testing.T, src StatementSource) ([]string, error) {
	t.Helper()
	var out []string
	for statement, err := range src.Statements(context.Background()) {
		if err != nil {
			return out, err
		}
		out = append(out, statement)
	}
	return out, nil
}

func TestFileSource_ConcatenatesFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "contributors.tql", "c1\nc2\n"),
		writeFile(t, dir, "publishers.tql", "p1\np2\np3\n"),
		writeFile(t, dir, "books.tql", "b1"), // no trailing newline
	}

	got, err := collect(t, NewFileSource(paths))
	require.NoError(t, err)

	want := []string{"c1", "c2", "p1", "p2", "p3", "b1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("statements mismatch (-want +got):\n%s", diff)
	}
}

func TestFileSource_LinesNotTransformed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.tql", "  padded  \n\ninsert $x;\r\nlast\n")

	got, err := collect(t, NewFileSource([]string{path}))
	require.NoError(t, err)

	assert.Equal(t, []string{"  padded  ", "", "insert $x;", "last"}, got)
}

func TestFileSource_RestartsEachCall(t *testing.T) {
	dir := t.TempDir()
	src := NewFileSource([]string{
		writeFile(t, dir, "a.tql", "a1\na2\n"),
		writeFile(t, dir, "b.tql", "b1\n"),
	})

	first, err := collect(t, src)
	require.NoError(t, err)

	// Stop the second pass early; a third pass must start from the beginning.
	for range src.Statements(context.Background()) {
		break
	}

	third, err := collect(t, src)
	require.NoError(t, err)
	assert.Equal(t, first, third)
	assert.Equal(t, []string{"a1", "a2", "b1"}, third)
}

func TestFileSource_EmptyFiles(t *testing.T) {
	dir := t.TempDir()
	src := NewFileSource([]string{
		writeFile(t, dir, "empty1.tql", ""),
		writeFile(t, dir, "one.tql", "x\n"),
		writeFile(t, dir, "empty2.tql", ""),
	})

	got, err := collect(t, src)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got)

	got, err = collect(t, NewFileSource(nil))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileSource_MissingFileAbortsAtFailurePoint(t *testing.T) {
	dir := t.TempDir()
	src := NewFileSource([]string{
		writeFile(t, dir, "a.tql", "a1\na2\n"),
		filepath.Join(dir, "missing.tql"),
		writeFile(t, dir, "c.tql", "c1\n"),
	})

	got, err := collect(t, src)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceRead)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "missing.tql")
	assert.Equal(t, []string{"a1", "a2"}, got, "statements before the failure remain valid")
}

func TestFileSource_StatementTooLong(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "long.tql", "short\n"+strings.Repeat("x", 100)+"\n")

	got, err := collect(t, NewFileSource([]string{path}, WithMaxStatementSize(32)))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceRead)
	assert.ErrorIs(t, err, ErrStatementTooLong)
	assert.Equal(t, []string{"short"}, got)
}

func TestFileSource_StatementAtSizeLimit(t *testing.T) {
	dir := t.TempDir()
	exact := strings.Repeat("x", 16)
	path := writeFile(t, dir, "exact.tql", exact+"\n"+exact+"\r\n"+exact)

	got, err := collect(t, NewFileSource([]string{path}, WithMaxStatementSize(16)))
	require.NoError(t, err)
	assert.Equal(t, []string{exact, exact, exact}, got)

	for _, content := range []string{exact + "y\n", exact + "yy\n", exact + "y"} {
		path := writeFile(t, dir, "over.tql", content)
		_, err := collect(t, NewFileSource([]string{path}, WithMaxStatementSize(16)))
		assert.ErrorIs(t, err, ErrStatementTooLong, "%q", content)
	}
}

func TestFileSource_ContextCanceled(t *testing.T) {
	dir := t.TempDir()
	src := NewFileSource([]string{writeFile(t, dir, "a.tql", "a1\na2\na3\n")})

	ctx, cancel := context.WithCancel(context.Background())
	var got []string
	var gotErr error
	for statement, err := range src.Statements(ctx) {
		if err != nil {
			gotErr = err
			break
		}
		got = append(got, statement)
		cancel()
	}

	assert.ErrorIs(t, gotErr, context.Canceled)
	assert.Equal(t, []string{"a1"}, got)
}

func TestFileSource_PathsCopied(t *testing.T) {
	paths := []string{"a", "b"}
	src := NewFileSource(paths)
	paths[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, src.Paths())
}

func TestSliceSource(t *testing.T) {
	got, err := collect(t, FromSlice("x", "y", "z"))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, got)

	got, err = collect(t, FromSlice())
	require.NoError(t, err)
	assert.Empty(t, got)
}
