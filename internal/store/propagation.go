package store

import "context"

// AggregateProvider is the slice of RatingStore the propagation chain
// reads from.
type AggregateProvider interface {
	Aggregate(venueID int64) (float64, int)
	Thumbs(venueID int64) (int, int)
}

// VenueStatsSink receives pushed venue aggregates and answers the
// school-wide mean for the next hop.
type VenueStatsSink interface {
	UpdateSingleVenueStats(ctx context.Context, venueID int64, avg float64, count, up, down int) int64
	GetSchoolAvgRating(schoolID int64) float64
}

// SchoolRatingSink is the terminal hop.
type SchoolRatingSink interface {
	UpdateSingleSchoolRating(ctx context.Context, schoolID int64, avg float64)
}

// Propagator runs the three-hop aggregate update after a rating write:
// recompute one venue's aggregates, push them onto the venue, then
// recompute and push that one school's mean. Each hop takes and
// releases its own store's lock, so a reader between hops may see the
// venue aggregate before the school aggregate catches up. That window
// is bounded by one write and is accepted.
type Propagator struct {
	ratings AggregateProvider
	venues  VenueStatsSink
	schools SchoolRatingSink
}

func NewPropagator(ratings AggregateProvider, venues VenueStatsSink, schools SchoolRatingSink) *Propagator {
	return &Propagator{ratings: ratings, venues: venues, schools: schools}
}

// RatingWritten recomputes aggregates for exactly one venue and its
// school. Cost is O(ratings on the venue + venues at the school), never
// a full-dataset recompute.
func (p *Propagator) RatingWritten(ctx context.Context, venueID int64) {
	avg, count := p.ratings.Aggregate(venueID)
	up, down := p.ratings.Thumbs(venueID)

	schoolID := p.venues.UpdateSingleVenueStats(ctx, venueID, avg, count, up, down)
	if schoolID == 0 {
		return
	}

	p.schools.UpdateSingleSchoolRating(ctx, schoolID, p.venues.GetSchoolAvgRating(schoolID))
}
