package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFratRatingStore_GetSchoolStats(t *testing.T) {
	s := NewFratRatingStore(testLogger(), nil, nil)
	ctx := context.Background()

	_, err := s.Create(ctx, "alice", "Alice", 1, "Sigma Chi", 4, "")
	require.NoError(t, err)
	_, err = s.Create(ctx, "bob", "Bob", 1, "Sigma Chi", 5, "")
	require.NoError(t, err)
	_, err = s.Create(ctx, "alice", "Alice", 1, "Delta Tau", 2, "")
	require.NoError(t, err)
	_, err = s.Create(ctx, "alice", "Alice", 2, "Sigma Chi", 1, "")
	require.NoError(t, err)

	stats := s.GetSchoolStats(1)
	require.Len(t, stats, 2)
	require.Equal(t, FratStats{AvgRating: 4.5, Count: 2}, stats["Sigma Chi"])
	require.Equal(t, FratStats{AvgRating: 2, Count: 1}, stats["Delta Tau"])

	require.Empty(t, s.GetSchoolStats(99))
}

func TestFratRatingStore_ChapterUniqueness(t *testing.T) {
	s := NewFratRatingStore(testLogger(), nil, nil)
	ctx := context.Background()

	_, err := s.Create(ctx, "alice", "Alice", 1, "Sigma Chi", 4, "")
	require.NoError(t, err)

	// Same chapter, same author: rejected.
	_, err = s.Create(ctx, "alice", "Alice", 1, "Sigma Chi", 5, "")
	require.ErrorIs(t, err, ErrAlreadyExists)

	// Same fraternity at another school is a different chapter.
	_, err = s.Create(ctx, "alice", "Alice", 2, "Sigma Chi", 5, "")
	require.NoError(t, err)
}

func TestFratRatingStore_Validation(t *testing.T) {
	s := NewFratRatingStore(testLogger(), nil, nil)
	ctx := context.Background()

	_, err := s.Create(ctx, "", "Nobody", 1, "Sigma Chi", 4, "")
	require.ErrorIs(t, err, ErrUnauthenticated)

	_, err = s.Create(ctx, "alice", "Alice", 1, "   ", 4, "")
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = s.Create(ctx, "alice", "Alice", 0, "Sigma Chi", 4, "")
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = s.Create(ctx, "alice", "Alice", 1, "Sigma Chi", 6, "")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFratRatingStore_DailyQuota(t *testing.T) {
	s := NewFratRatingStore(testLogger(), nil, nil)
	s.now = fixedDay(1)
	ctx := context.Background()

	for i := 0; i < DailyRatingCap; i++ {
		_, err := s.Create(ctx, "alice", "Alice", 1, string(rune('A'+i))+" House", 4, "")
		require.NoError(t, err)
	}

	_, err := s.Create(ctx, "alice", "Alice", 1, "One More", 4, "")
	require.ErrorIs(t, err, ErrQuotaExceeded)

	s.now = fixedDay(2)
	_, err = s.Create(ctx, "alice", "Alice", 1, "One More", 4, "")
	require.NoError(t, err)
}

func TestFratRatingStore_Vote(t *testing.T) {
	s := NewFratRatingStore(testLogger(), nil, nil)
	ctx := context.Background()

	r, err := s.Create(ctx, "alice", "Alice", 1, "Sigma Chi", 4, "decent")
	require.NoError(t, err)

	up, down, err := s.Vote(ctx, "bob", r.ID, VoteDown)
	require.NoError(t, err)
	require.Equal(t, 0, up)
	require.Equal(t, 1, down)

	up, down, err = s.Vote(ctx, "bob", r.ID, VoteDown)
	require.NoError(t, err)
	require.Equal(t, 0, down, "toggle off")
	require.Equal(t, 0, up)

	_, _, err = s.Vote(ctx, "alice", r.ID, VoteUp)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFratRatingStore_ChapterCounts(t *testing.T) {
	s := NewFratRatingStore(testLogger(), nil, nil)
	ctx := context.Background()

	_, err := s.Create(ctx, "alice", "Alice", 1, "Sigma Chi", 4, "")
	require.NoError(t, err)
	_, err = s.Create(ctx, "bob", "Bob", 1, "Sigma Chi", 3, "")
	require.NoError(t, err)
	_, err = s.Create(ctx, "alice", "Alice", 1, "Delta Tau", 2, "")
	require.NoError(t, err)
	_, err = s.Create(ctx, "alice", "Alice", 2, "Kappa Sig", 5, "")
	require.NoError(t, err)

	require.Equal(t, 2, s.ChapterCount(1))
	require.Equal(t, 1, s.ChapterCount(2))
	require.Zero(t, s.ChapterCount(3))

	counts := s.CountBySchool()
	require.Equal(t, map[int64]int{1: 2, 2: 1}, counts)

	require.Len(t, s.ListBySchool(1), 3)
}
