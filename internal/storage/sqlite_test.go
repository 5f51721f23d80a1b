package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapper/internal/classifier"
	"mapper/internal/graph"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun() *Run {
	return &Run{
		OldRoot: "v1",
		NewRoot: "v2",
		Stats: graph.Stats{
			Classes: graph.Count{Matched: 2, Total: 3},
			Methods: graph.Count{Matched: 1, Total: 1},
		},
		Pairs: []graph.Pair{
			{Kind: graph.EntityClass, Src: "shop.Cart", Dst: "shop.Basket", SrcID: "shop.Cart", DstID: "shop.Basket", Score: 0.91, Level: classifier.LevelInitial},
			{Kind: graph.EntityMethod, Src: "shop.Cart.Total", Dst: "shop.Basket.Total", Score: 1, Level: classifier.LevelInitial, Cascaded: true},
			{Kind: graph.EntityField, Src: "shop.Cart.items", Dst: "shop.Basket.entries", Score: 0.7, Level: classifier.LevelIntermediate},
		},
	}
}

func TestSQLiteStore_SaveAndLoadRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := sampleRun()
	require.NoError(t, s.SaveRun(ctx, run))
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())

	got, err := s.LoadRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "v1", got.OldRoot)
	assert.Equal(t, "v2", got.NewRoot)
	assert.Equal(t, run.Stats, got.Stats)
	assert.True(t, run.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, run.Pairs, got.Pairs)
}

func TestSQLiteStore_SaveRunReplacesPairs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := sampleRun()
	require.NoError(t, s.SaveRun(ctx, run))

	run.Pairs = run.Pairs[:1]
	require.NoError(t, s.SaveRun(ctx, run))

	got, err := s.LoadRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, got.Pairs, 1)

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestSQLiteStore_LoadRunByPrefix(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := &Run{ID: "abc-1", OldRoot: "a"}
	b := &Run{ID: "abd-2", OldRoot: "b"}
	require.NoError(t, s.SaveRun(ctx, a))
	require.NoError(t, s.SaveRun(ctx, b))

	got, err := s.LoadRun(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc-1", got.ID)
	assert.Empty(t, got.Pairs)

	_, err = s.LoadRun(ctx, "ab")
	assert.ErrorIs(t, err, ErrAmbiguousRun)

	_, err = s.LoadRun(ctx, "zzz")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSQLiteStore_LoadRunPrefixIsLiteral(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRun(ctx, &Run{ID: "a_1"}))
	require.NoError(t, s.SaveRun(ctx, &Run{ID: "ab1"}))

	got, err := s.LoadRun(ctx, "a_")
	require.NoError(t, err)
	assert.Equal(t, "a_1", got.ID)

	_, err = s.LoadRun(ctx, "%")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSQLiteStore_ListRunsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveRun(ctx, &Run{ID: "old", CreatedAt: base}))
	require.NoError(t, s.SaveRun(ctx, &Run{ID: "new", CreatedAt: base.Add(time.Hour)}))

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "old", runs[1].ID)
	assert.Nil(t, runs[0].Pairs)
}

func TestSQLiteStore_DeleteRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := sampleRun()
	require.NoError(t, s.SaveRun(ctx, run))
	require.NoError(t, s.DeleteRun(ctx, run.ID))

	_, err := s.LoadRun(ctx, run.ID)
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, s.DeleteRun(ctx, run.ID), ErrRunNotFound)
}
