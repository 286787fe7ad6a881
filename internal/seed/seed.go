package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"fratmap/internal/store"
)

// Fixture is the bulk-seed payload loaded once at startup so the
// stores build their indexes in one pass instead of replaying writes.
type Fixture struct {
	Schools     []store.School     `json:"schools"`
	Venues      []store.Venue      `json:"venues"`
	Ratings     []store.Rating     `json:"ratings"`
	FratRatings []store.FratRating `json:"frat_ratings"`
}

func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	return &f, nil
}

// Apply loads the fixture into the stores and then derives every
// cached statistic: venue aggregates from ratings, school means from
// venues, and the bulk venue/frat counts.
func Apply(ctx context.Context, f *Fixture, st store.Storage) {
	st.Schools.Seed(f.Schools)
	st.Venues.Seed(f.Venues)
	st.Ratings.Seed(f.Ratings)
	st.FratRatings.Seed(f.FratRatings)

	seen := make(map[int64]struct{})
	schools := make(map[int64]struct{})
	for _, r := range f.Ratings {
		if _, ok := seen[r.VenueID]; ok {
			continue
		}
		seen[r.VenueID] = struct{}{}

		avg, count := st.Ratings.Aggregate(r.VenueID)
		up, down := st.Ratings.Thumbs(r.VenueID)
		if schoolID := st.Venues.UpdateSingleVenueStats(ctx, r.VenueID, avg, count, up, down); schoolID != 0 {
			schools[schoolID] = struct{}{}
		}
	}
	for schoolID := range schools {
		st.Schools.UpdateSingleSchoolRating(ctx, schoolID, st.Venues.GetSchoolAvgRating(schoolID))
	}

	st.Schools.UpdateVenueCounts(st.Venues.CountBySchool())
	st.Schools.UpdateFratCounts(st.FratRatings.CountBySchool())
}
