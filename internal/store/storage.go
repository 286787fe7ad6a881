package store

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

var (
	ErrNotFound        = errors.New("resource not found")
	ErrAlreadyExists   = errors.New("resource already exists")
	ErrUnauthenticated = errors.New("missing author identity")
	ErrQuotaExceeded   = errors.New("daily write quota reached")
	ErrInvalidState    = errors.New("operation not allowed in current state")
	ErrInvalidArgument = errors.New("invalid argument")
)

// DailyRatingCap is the number of ratings a single author may create per
// calendar day. RatingStore and FratRatingStore each count against their
// own collection.
const DailyRatingCap = 20

// Sanitizer cleans user-submitted free text before it is stored.
type Sanitizer interface {
	Clean(text string) string
}

// Persister is the optional durable-storage side channel. Every call is
// best effort: the calling store logs a failure and moves on, the
// in-memory state stays authoritative.
type Persister interface {
	InsertRating(ctx context.Context, r *Rating) error
	InsertFratRating(ctx context.Context, r *FratRating) error
	InsertVenue(ctx context.Context, v *Venue) error
	UpdateVenueApproval(ctx context.Context, venueID int64, approved bool) error
	DeleteVenue(ctx context.Context, venueID int64) error
	UpdateVenueStats(ctx context.Context, venueID int64, avg float64, count, up, down int) error
	UpdateSchoolRating(ctx context.Context, schoolID int64, avg float64) error

	// Per-voter vote state, kept durable so vote toggling survives a
	// process restart. Scope is VoteScopeVenue or VoteScopeFrat.
	GetVote(ctx context.Context, scope string, ratingID int64, voterID string) (int, error)
	SetVote(ctx context.Context, scope string, ratingID int64, voterID string, direction int) error
	UpdateVoteTally(ctx context.Context, scope string, ratingID int64, up, down int) error
}

const (
	VoteScopeVenue = "venue"
	VoteScopeFrat  = "frat"
)

type Storage struct {
	Schools interface {
		Seed(schools []School)
		GetByID(schoolID int64) (*School, error)
		List() []School
		Search(query string) []School
		UpdateSingleSchoolRating(ctx context.Context, schoolID int64, avg float64)
		UpdateSingleVenueCount(schoolID int64, count int)
		UpdateSingleFratCount(schoolID int64, count int)
		UpdateVenueCounts(counts map[int64]int)
		UpdateFratCounts(counts map[int64]int)
	}
	Venues interface {
		Seed(venues []Venue)
		Create(ctx context.Context, authorID, role string, v *Venue) error
		GetByID(venueID int64) (*Venue, error)
		ApproveVenue(ctx context.Context, venueID int64) error
		RejectVenue(ctx context.Context, venueID int64) error
		ListBySchool(schoolID int64, page, limit int) ([]Venue, int)
		ListPending() []Venue
		UpdateSingleVenueStats(ctx context.Context, venueID int64, avg float64, count, up, down int) int64
		GetSchoolAvgRating(schoolID int64) float64
		CountBySchool() map[int64]int
	}
	Ratings interface {
		Seed(ratings []Rating)
		Create(ctx context.Context, authorID, authorName string, venueID int64, score float64, review string) (*Rating, error)
		Vote(ctx context.Context, raterID string, ratingID int64, direction VoteDirection) (int, int, error)
		Aggregate(venueID int64) (float64, int)
		Thumbs(venueID int64) (int, int)
		ListByVenue(venueID int64) []Rating
		ListByVenues(venueIDs []int64) map[int64][]Rating
		ListRecent(n int) []Rating
	}
	FratRatings interface {
		Seed(ratings []FratRating)
		Create(ctx context.Context, authorID, authorName string, schoolID int64, fratName string, score float64, review string) (*FratRating, error)
		Vote(ctx context.Context, raterID string, ratingID int64, direction VoteDirection) (int, int, error)
		GetSchoolStats(schoolID int64) map[string]FratStats
		ListBySchool(schoolID int64) []FratRating
		ChapterCount(schoolID int64) int
		CountBySchool() map[int64]int
	}
}

func NewStorage(logger *zap.SugaredLogger, sanitizer Sanitizer, persist Persister) (Storage, error) {
	venues, err := NewVenueStore(logger, sanitizer, persist)
	if err != nil {
		return Storage{}, err
	}
	return Storage{
		Schools:     NewSchoolStore(logger, persist),
		Venues:      venues,
		Ratings:     NewRatingStore(logger, sanitizer, persist),
		FratRatings: NewFratRatingStore(logger, sanitizer, persist),
	}, nil
}
