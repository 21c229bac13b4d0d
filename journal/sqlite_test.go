package journal

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	_, path := newTestSQLite(t)

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='assessments'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "assessments", name)
}

func TestSQLiteRecordAndGet(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	ctx := context.Background()
	created := time.Date(2025, 4, 23, 10, 0, 0, 0, time.UTC)
	want := sampleAssessment("01J0000000000000000000000A", created)

	require.NoError(t, j.Record(ctx, want))

	got, err := j.Get(ctx, want.ID)
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.True(t, got.CreatedAt.Equal(created))
	assert.True(t, got.WindowStart.Equal(want.WindowStart))
	assert.Equal(t, want.Source, got.Source)
	assert.Equal(t, want.Request, got.Request)
	assert.Equal(t, want.Result, got.Result)
}

func TestSQLiteDuplicateID(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	a := sampleAssessment("dup", time.Now())
	require.NoError(t, j.Record(context.Background(), a))
	assert.Error(t, j.Record(context.Background(), a))
}

func TestSQLiteGetNotFound(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	_, err := j.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteListNewestFirst(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	ctx := context.Background()
	base := time.Date(2025, 4, 23, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"01A", "01B", "01C"} {
		require.NoError(t, j.Record(ctx, sampleAssessment(id, base.Add(time.Duration(i)*time.Minute))))
	}

	all, err := j.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "01C", all[0].ID)
	assert.Equal(t, "01A", all[2].ID)

	two, err := j.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, two, 2)
	assert.Equal(t, "01B", two[1].ID)
}

func TestSQLiteListEmpty(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	all, err := j.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, all)
}
