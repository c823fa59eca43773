package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/notestore/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndRecent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	require.NoError(t, db.Record(ctx, models.Activity{Op: models.OpCreate, Name: "a", Size: 3, Checksum: "abc"}))
	require.NoError(t, db.Record(ctx, models.Activity{Op: models.OpUpdate, Name: "a", Size: 5}))
	require.NoError(t, db.Record(ctx, models.Activity{Op: models.OpDelete, Name: "a"}))

	got, err := db.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, models.OpDelete, got[0].Op)
	assert.Equal(t, models.OpUpdate, got[1].Op)
	assert.Equal(t, models.OpCreate, got[2].Op)
	assert.Equal(t, "abc", got[2].Checksum)
	assert.Equal(t, 3, got[2].Size)
	for _, a := range got {
		assert.NotEmpty(t, a.ID)
		assert.False(t, a.At.IsZero())
	}
}

func TestRecentLimit(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	for range 5 {
		require.NoError(t, db.Record(ctx, models.Activity{Op: models.OpCreate, Name: "n"}))
	}

	got, err := db.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRecentEmpty(t *testing.T) {
	db := testDB(t)
	got, err := db.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRecordKeepsGivenFields(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.Record(ctx, models.Activity{ID: "fixed-id", Op: models.OpCreate, Name: "x", At: at}))

	got, err := db.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fixed-id", got[0].ID)
	assert.True(t, at.Equal(got[0].At), "at = %v", got[0].At)
}
