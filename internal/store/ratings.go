package store

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Rating struct {
	ID         int64     `json:"id"`
	VenueID    int64     `json:"venue_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Score      float64   `json:"score"` // 1-5, half-point steps
	Review     string    `json:"review,omitempty"`
	Upvotes    int       `json:"upvotes"`
	Downvotes  int       `json:"downvotes"`
	CreatedAt  time.Time `json:"created_at"`
}

type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

const dayFormat = "2006-01-02"

type dailyCount struct {
	day string
	n   int
}

type voteKey struct {
	ratingID int64
	voterID  string
}

// RatingStore owns the venue-rating collection and the per-author daily
// write counters. All reads and writes go through its lock; the
// check-then-act sequence in Create runs under a single exclusive
// section so concurrent duplicates cannot slip through.
type RatingStore struct {
	mu       sync.RWMutex
	byID     map[int64]*Rating
	all      []*Rating // creation order
	byVenue  map[int64][]*Rating
	byAuthor map[string]map[int64]struct{} // authorID -> venueIDs rated
	votes    map[voteKey]int
	daily    map[string]dailyCount
	nextID   int64

	sanitizer Sanitizer
	persist   Persister
	logger    *zap.SugaredLogger
	now       func() time.Time
}

func NewRatingStore(logger *zap.SugaredLogger, sanitizer Sanitizer, persist Persister) *RatingStore {
	return &RatingStore{
		byID:      make(map[int64]*Rating),
		byVenue:   make(map[int64][]*Rating),
		byAuthor:  make(map[string]map[int64]struct{}),
		votes:     make(map[voteKey]int),
		daily:     make(map[string]dailyCount),
		sanitizer: sanitizer,
		persist:   persist,
		logger:    logger,
		now:       time.Now,
	}
}

// Seed bulk-loads an initial collection and rebuilds every index in one
// pass. Daily counters are not seeded; they are per-process state.
func (s *RatingStore) Seed(ratings []Rating) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range ratings {
		r := ratings[i]
		if _, ok := s.byID[r.ID]; ok {
			continue
		}
		s.insertLocked(&r)
	}
}

func (s *RatingStore) insertLocked(r *Rating) {
	s.byID[r.ID] = r
	s.all = append(s.all, r)
	s.byVenue[r.VenueID] = append(s.byVenue[r.VenueID], r)
	venues, ok := s.byAuthor[r.AuthorID]
	if !ok {
		venues = make(map[int64]struct{})
		s.byAuthor[r.AuthorID] = venues
	}
	venues[r.VenueID] = struct{}{}
	if r.ID > s.nextID {
		s.nextID = r.ID
	}
}

func validScore(score float64) bool {
	if score < 1 || score > 5 {
		return false
	}
	// half-point or whole-point steps only
	return score*2 == math.Trunc(score*2)
}

func (s *RatingStore) Create(ctx context.Context, authorID, authorName string, venueID int64, score float64, review string) (*Rating, error) {
	if authorID == "" {
		return nil, ErrUnauthenticated
	}
	if !validScore(score) {
		return nil, fmt.Errorf("%w: score must be between 1 and 5 in half-point steps", ErrInvalidArgument)
	}
	if venueID == 0 {
		return nil, fmt.Errorf("%w: venue id is required", ErrInvalidArgument)
	}
	if s.sanitizer != nil {
		review = s.sanitizer.Clean(review)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Uniqueness first: a duplicate must not burn quota.
	if _, ok := s.byAuthor[authorID][venueID]; ok {
		return nil, fmt.Errorf("%w: author already rated this venue", ErrAlreadyExists)
	}

	today := s.now().Format(dayFormat)
	dc := s.daily[authorID]
	if dc.day == today && dc.n >= DailyRatingCap {
		return nil, ErrQuotaExceeded
	}

	s.nextID++
	r := &Rating{
		ID:         s.nextID,
		VenueID:    venueID,
		AuthorID:   authorID,
		AuthorName: authorName,
		Score:      score,
		Review:     review,
		CreatedAt:  s.now(),
	}
	s.insertLocked(r)

	if dc.day != today {
		dc = dailyCount{day: today}
	}
	dc.n++
	s.daily[authorID] = dc

	if s.persist != nil {
		if err := s.persist.InsertRating(ctx, r); err != nil {
			s.logger.Errorw("persisting rating failed, in-memory state kept", "rating_id", r.ID, "error", err)
		}
	}

	out := *r
	return &out, nil
}

// Vote applies toggle semantics: the same direction twice removes the
// vote, the opposite direction switches it, a first vote increments.
func (s *RatingStore) Vote(ctx context.Context, raterID string, ratingID int64, direction VoteDirection) (int, int, error) {
	if raterID == "" {
		return 0, 0, ErrUnauthenticated
	}
	if direction != VoteUp && direction != VoteDown {
		return 0, 0, fmt.Errorf("%w: vote direction must be up or down", ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[ratingID]
	if !ok {
		return 0, 0, ErrNotFound
	}
	if r.AuthorID == raterID {
		return 0, 0, fmt.Errorf("%w: cannot vote on your own rating", ErrInvalidArgument)
	}

	key := voteKey{ratingID: ratingID, voterID: raterID}
	prior := s.votes[key]
	if s.persist != nil {
		// The persisted per-voter state wins so toggling keeps working
		// after a restart.
		if d, err := s.persist.GetVote(ctx, VoteScopeVenue, ratingID, raterID); err != nil {
			s.logger.Errorw("reading persisted vote failed, using in-memory state", "rating_id", ratingID, "error", err)
		} else {
			prior = d
		}
	}

	next := applyVote(prior, direction)
	adjustTally(&r.Upvotes, &r.Downvotes, prior, next)
	if next == 0 {
		delete(s.votes, key)
	} else {
		s.votes[key] = next
	}

	if s.persist != nil {
		if err := s.persist.SetVote(ctx, VoteScopeVenue, ratingID, raterID, next); err != nil {
			s.logger.Errorw("persisting vote failed, in-memory state kept", "rating_id", ratingID, "error", err)
		}
		if err := s.persist.UpdateVoteTally(ctx, VoteScopeVenue, ratingID, r.Upvotes, r.Downvotes); err != nil {
			s.logger.Errorw("persisting vote tally failed, in-memory state kept", "rating_id", ratingID, "error", err)
		}
	}

	return r.Upvotes, r.Downvotes, nil
}

func applyVote(prior int, direction VoteDirection) int {
	cast := 1
	if direction == VoteDown {
		cast = -1
	}
	if prior == cast {
		return 0 // toggle off
	}
	return cast
}

func adjustTally(up, down *int, prior, next int) {
	switch prior {
	case 1:
		*up--
	case -1:
		*down--
	}
	switch next {
	case 1:
		*up++
	case -1:
		*down++
	}
}

// Aggregate returns the mean score and count over all ratings for one
// venue, (0, 0) when none exist.
func (s *RatingStore) Aggregate(venueID int64) (float64, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ratings := s.byVenue[venueID]
	if len(ratings) == 0 {
		return 0, 0
	}
	var sum float64
	for _, r := range ratings {
		sum += r.Score
	}
	return sum / float64(len(ratings)), len(ratings)
}

// Thumbs classifies ratings by score: >= 4 counts up, <= 2 counts down,
// a 3 counts as neither. Independent of the explicit review-vote
// tallies, which track reactions to reviews rather than the venue.
func (s *RatingStore) Thumbs(venueID int64) (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var up, down int
	for _, r := range s.byVenue[venueID] {
		switch {
		case r.Score >= 4:
			up++
		case r.Score <= 2:
			down++
		}
	}
	return up, down
}

func (s *RatingStore) ListByVenue(venueID int64) []Rating {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Rating, 0, len(s.byVenue[venueID]))
	for _, r := range s.byVenue[venueID] {
		out = append(out, *r)
	}
	return out
}

func (s *RatingStore) ListByVenues(venueIDs []int64) map[int64][]Rating {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64][]Rating, len(venueIDs))
	for _, id := range venueIDs {
		ratings := s.byVenue[id]
		if len(ratings) == 0 {
			continue
		}
		copies := make([]Rating, 0, len(ratings))
		for _, r := range ratings {
			copies = append(copies, *r)
		}
		out[id] = copies
	}
	return out
}

// ListRecent returns up to n ratings, newest first.
func (s *RatingStore) ListRecent(n int) []Rating {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Rating, 0, n)
	for i := len(s.all) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, *s.all[i])
	}
	return out
}
