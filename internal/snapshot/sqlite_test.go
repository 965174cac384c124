package snapshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VorpalBlade/smartmirror/internal/document"
	"github.com/VorpalBlade/smartmirror/internal/typeid"
)

func openMemory(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteLatestMissing(t *testing.T) {
	repo := openMemory(t)

	_, err := repo.Latest(context.Background(), "sketch_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteVersionsIncrease(t *testing.T) {
	repo := openMemory(t)
	ctx := context.Background()
	sk := document.NewSampleSketch()

	v1, err := repo.Save(ctx, sk.ID, sk)
	require.NoError(t, err)
	assert.Equal(t, 1, v1)

	sk.Name = "renamed"
	v2, err := repo.Save(ctx, sk.ID, sk)
	require.NoError(t, err)
	assert.Equal(t, 2, v2)

	other, err := repo.Save(ctx, "sketch_other", document.NewEmptySketch("sketch_other", "other"))
	require.NoError(t, err)
	assert.Equal(t, 1, other)

	snap, err := repo.Latest(ctx, sk.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Version)
	assert.Equal(t, sk.ID, snap.SketchID)
	assert.NoError(t, typeid.Validate(snap.ID, typeid.PrefixSnapshot))
	assert.False(t, snap.CreatedAt.IsZero())

	assert.Equal(t, "renamed", snap.Sketch.Name)
	assert.Equal(t, sk.Geometry, snap.Sketch.Geometry)
	assert.Equal(t, sk.Constraints, snap.Sketch.Constraints)
	assert.Equal(t, sk.Expressions, snap.Sketch.Expressions)
}
