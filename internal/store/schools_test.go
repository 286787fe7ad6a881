package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func seededSchoolStore() *SchoolStore {
	s := NewSchoolStore(testLogger(), nil)
	s.Seed([]School{
		{ID: 1, Name: "State University", City: "Springfield", Control: "public", Level: "four-year"},
		{ID: 2, Name: "Tech Institute", City: "Rivertown", Control: "private", Level: "four-year"},
		{ID: 3, Name: "Community College", City: "Springfield", Control: "public", Level: "two-year"},
	})
	return s
}

func TestSchoolStore_GetByID(t *testing.T) {
	s := seededSchoolStore()

	school, err := s.GetByID(2)
	require.NoError(t, err)
	require.Equal(t, "Tech Institute", school.Name)

	_, err = s.GetByID(99)
	require.ErrorIs(t, err, ErrNotFound)

	// The returned struct is a copy, not a window into the store.
	school.Name = "Mutated"
	again, err := s.GetByID(2)
	require.NoError(t, err)
	require.Equal(t, "Tech Institute", again.Name)
}

func TestSchoolStore_Search(t *testing.T) {
	s := seededSchoolStore()

	require.Len(t, s.Search(""), 3, "empty query lists everything")
	require.Len(t, s.Search("springfield"), 2, "city matches, case-insensitive")

	results := s.Search("TECH")
	require.Len(t, results, 1)
	require.Equal(t, int64(2), results[0].ID)

	require.Empty(t, s.Search("nowhere"))
}

func TestSchoolStore_UpdateSingleSchoolRating(t *testing.T) {
	s := seededSchoolStore()
	ctx := context.Background()

	s.UpdateSingleSchoolRating(ctx, 1, 4.2)
	school, err := s.GetByID(1)
	require.NoError(t, err)
	require.Equal(t, 4.2, school.AvgRating)

	// Unknown ids are ignored, not created.
	s.UpdateSingleSchoolRating(ctx, 99, 3)
	require.Len(t, s.List(), 3)
}

func TestSchoolStore_BulkCounts(t *testing.T) {
	s := seededSchoolStore()

	s.UpdateVenueCounts(map[int64]int{1: 5, 2: 2})
	s.UpdateFratCounts(map[int64]int{1: 3})

	one, _ := s.GetByID(1)
	require.Equal(t, 5, one.VenueCount)
	require.Equal(t, 3, one.FratCount)

	// Schools absent from the map are reset to zero: the bulk setter
	// re-derives the whole column.
	three, _ := s.GetByID(3)
	require.Zero(t, three.VenueCount)
	require.Zero(t, three.FratCount)
}

func TestSchoolStore_SingleCountUpdates(t *testing.T) {
	s := seededSchoolStore()

	s.UpdateSingleVenueCount(2, 4)
	s.UpdateSingleFratCount(2, 7)

	two, _ := s.GetByID(2)
	require.Equal(t, 4, two.VenueCount)
	require.Equal(t, 7, two.FratCount)
}
