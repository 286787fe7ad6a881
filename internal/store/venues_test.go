package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestVenueStore(t *testing.T) *VenueStore {
	t.Helper()
	s, err := NewVenueStore(testLogger(), nil, nil)
	require.NoError(t, err)
	return s
}

func testVenue(schoolID int64, name string) *Venue {
	return &Venue{
		Name:     name,
		Category: CategoryBar,
		SchoolID: schoolID,
	}
}

func TestVenueStore_Create_Validation(t *testing.T) {
	s := newTestVenueStore(t)
	ctx := context.Background()

	err := s.Create(ctx, "", "user", testVenue(1, "The Cellar"))
	require.ErrorIs(t, err, ErrUnauthenticated)

	v := testVenue(1, "The Cellar")
	v.Category = "arena"
	err = s.Create(ctx, "alice", "user", v)
	require.ErrorIs(t, err, ErrInvalidArgument)

	err = s.Create(ctx, "alice", "user", testVenue(1, "   "))
	require.ErrorIs(t, err, ErrInvalidArgument)

	err = s.Create(ctx, "alice", "user", testVenue(0, "The Cellar"))
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestVenueStore_Create_ApprovalByRole(t *testing.T) {
	s := newTestVenueStore(t)
	ctx := context.Background()

	community := testVenue(1, "The Cellar")
	require.NoError(t, s.Create(ctx, "alice", "user", community))
	require.False(t, community.Approved, "community submissions wait in the queue")

	trusted := testVenue(1, "Rooftop")
	require.NoError(t, s.Create(ctx, "mod", RoleAdmin, trusted))
	require.True(t, trusted.Approved, "admin submissions skip the queue")

	require.NotEmpty(t, community.Code)
	require.NotEqual(t, community.Code, trusted.Code)
}

func TestVenueStore_ApproveAndReject(t *testing.T) {
	s := newTestVenueStore(t)
	ctx := context.Background()

	v := testVenue(1, "The Cellar")
	require.NoError(t, s.Create(ctx, "alice", "user", v))

	require.ErrorIs(t, s.ApproveVenue(ctx, 999), ErrNotFound)
	require.NoError(t, s.ApproveVenue(ctx, v.ID))
	require.NoError(t, s.ApproveVenue(ctx, v.ID), "re-approval is a no-op")

	// Approval is a one-way door.
	err := s.RejectVenue(ctx, v.ID)
	require.ErrorIs(t, err, ErrInvalidState)

	got, err := s.GetByID(v.ID)
	require.NoError(t, err)
	require.True(t, got.Approved)
}

func TestVenueStore_RejectPendingRemoves(t *testing.T) {
	s := newTestVenueStore(t)
	ctx := context.Background()

	v := testVenue(1, "Basement Bash")
	require.NoError(t, s.Create(ctx, "alice", "user", v))

	require.NoError(t, s.RejectVenue(ctx, v.ID))

	_, err := s.GetByID(v.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.Empty(t, s.ListPending())

	require.ErrorIs(t, s.RejectVenue(ctx, v.ID), ErrNotFound)
}

func TestVenueStore_ListBySchool(t *testing.T) {
	s := newTestVenueStore(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		v := testVenue(1, "Bar "+string(rune('A'+i)))
		require.NoError(t, s.Create(ctx, "mod", RoleAdmin, v))
	}
	pending := testVenue(1, "Hidden Spot")
	require.NoError(t, s.Create(ctx, "alice", "user", pending))
	other := testVenue(2, "Elsewhere")
	require.NoError(t, s.Create(ctx, "mod", RoleAdmin, other))

	venues, total := s.ListBySchool(1, 1, 3)
	require.Equal(t, 4, total, "pending venues are invisible to the public listing")
	require.Len(t, venues, 3)
	require.Equal(t, "Bar A", venues[0].Name)

	venues, _ = s.ListBySchool(1, 2, 3)
	require.Len(t, venues, 1)
	require.Equal(t, "Bar D", venues[0].Name)

	venues, total = s.ListBySchool(1, 5, 3)
	require.Empty(t, venues)
	require.Equal(t, 4, total)

	require.Len(t, s.ListPending(), 1)
}

func TestVenueStore_UpdateSingleVenueStats(t *testing.T) {
	s := newTestVenueStore(t)
	ctx := context.Background()

	v := testVenue(7, "The Cellar")
	require.NoError(t, s.Create(ctx, "mod", RoleAdmin, v))

	schoolID := s.UpdateSingleVenueStats(ctx, v.ID, 4.5, 2, 2, 0)
	require.Equal(t, int64(7), schoolID, "the hinge returns the school for the next hop")

	got, err := s.GetByID(v.ID)
	require.NoError(t, err)
	require.Equal(t, 4.5, got.AvgRating)
	require.Equal(t, 2, got.RatingCount)
	require.Equal(t, 2, got.ThumbsUp)
	require.Zero(t, got.ThumbsDown)

	require.Zero(t, s.UpdateSingleVenueStats(ctx, 999, 1, 1, 1, 0), "unknown venue yields no school")
}

func TestVenueStore_GetSchoolAvgRating_IgnoresUnrated(t *testing.T) {
	s := newTestVenueStore(t)
	ctx := context.Background()

	rated1 := testVenue(1, "A")
	rated2 := testVenue(1, "B")
	unrated := testVenue(1, "C")
	for _, v := range []*Venue{rated1, rated2, unrated} {
		require.NoError(t, s.Create(ctx, "mod", RoleAdmin, v))
	}

	s.UpdateSingleVenueStats(ctx, rated1.ID, 4.0, 3, 2, 0)
	s.UpdateSingleVenueStats(ctx, rated2.ID, 5.0, 1, 1, 0)

	require.Equal(t, 4.5, s.GetSchoolAvgRating(1), "zero-rating venues are excluded, not averaged as 0")
	require.Zero(t, s.GetSchoolAvgRating(2))
}

func TestVenueStore_CountBySchool(t *testing.T) {
	s := newTestVenueStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, "mod", RoleAdmin, testVenue(1, "A")))
	require.NoError(t, s.Create(ctx, "mod", RoleAdmin, testVenue(1, "B")))
	require.NoError(t, s.Create(ctx, "alice", "user", testVenue(1, "C")))
	require.NoError(t, s.Create(ctx, "mod", RoleAdmin, testVenue(2, "D")))

	counts := s.CountBySchool()
	require.Equal(t, map[int64]int{1: 2, 2: 1}, counts, "only approved venues count")
}

func TestVenueStore_SeedAssignsCodes(t *testing.T) {
	s := newTestVenueStore(t)
	s.Seed([]Venue{
		{ID: 5, Name: "Seeded", Category: CategoryFrat, SchoolID: 1, Approved: true},
	})

	got, err := s.GetByID(5)
	require.NoError(t, err)
	require.NotEmpty(t, got.Code)

	// New ids continue past the seeded maximum.
	v := testVenue(1, "Next")
	require.NoError(t, s.Create(context.Background(), "mod", RoleAdmin, v))
	require.Equal(t, int64(6), v.ID)
}
