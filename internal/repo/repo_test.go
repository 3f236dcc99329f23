package repo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGetUser(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	id, err := s.CreateUser(ctx, "ana", "ana@example.com", "hash")
	require.NoError(t, err)
	assert.NotZero(t, id)

	gotID, hash, err := s.GetByLogin(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, "hash", hash)

	_, err = s.CreateUser(ctx, "ana", "other@example.com", "hash2")
	assert.ErrorIs(t, err, ErrUserExists)

	_, _, err = s.GetByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAnalysesAreScopedAndOrdered(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	ana, err := s.CreateUser(ctx, "ana", "ana@example.com", "x")
	require.NoError(t, err)
	ben, err := s.CreateUser(ctx, "ben", "ben@example.com", "x")
	require.NoError(t, err)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	first := &Analysis{UserID: ana, Kind: "slope", Input: `{"a":1}`, Result: `{"fs":2.1}`, CreatedAt: base}
	second := &Analysis{UserID: ana, Kind: "bearing", Input: `{}`, Result: `{}`, CreatedAt: base.Add(time.Minute)}
	other := &Analysis{UserID: ben, Kind: "slope", Input: `{}`, Result: `{}`, CreatedAt: base}
	for _, a := range []*Analysis{first, second, other} {
		require.NoError(t, s.SaveAnalysis(ctx, a))
		assert.NotEmpty(t, a.ID)
	}

	list, err := s.ListAnalyses(ctx, ana, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	got, err := s.GetAnalysis(ctx, ana, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "slope", got.Kind)
	assert.JSONEq(t, `{"fs":2.1}`, got.Result)
	assert.True(t, got.CreatedAt.Equal(base))

	_, err = s.GetAnalysis(ctx, ana, other.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAnalysesEmpty(t *testing.T) {
	s := tempStore(t)
	list, err := s.ListAnalyses(context.Background(), 42, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}
