package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FratRating scores a fraternity chapter, the (school, fraternity-name)
// pair, rather than a venue.
type FratRating struct {
	ID         int64     `json:"id"`
	SchoolID   int64     `json:"school_id"`
	FratName   string    `json:"frat_name"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Score      float64   `json:"score"`
	Review     string    `json:"review,omitempty"`
	Upvotes    int       `json:"upvotes"`
	Downvotes  int       `json:"downvotes"`
	CreatedAt  time.Time `json:"created_at"`
}

// FratStats is the aggregate for one chapter.
type FratStats struct {
	AvgRating float64 `json:"avg_rating"`
	Count     int     `json:"count"`
}

type chapterKey struct {
	schoolID int64
	fratName string
}

// FratRatingStore mirrors RatingStore with the chapter pair replacing
// the venue id, including the one-per-author rule and the daily cap.
type FratRatingStore struct {
	mu       sync.RWMutex
	byID     map[int64]*FratRating
	bySchool map[int64][]*FratRating
	authored map[chapterKey]map[string]struct{} // chapter -> authorIDs
	votes    map[voteKey]int
	daily    map[string]dailyCount
	nextID   int64

	sanitizer Sanitizer
	persist   Persister
	logger    *zap.SugaredLogger
	now       func() time.Time
}

func NewFratRatingStore(logger *zap.SugaredLogger, sanitizer Sanitizer, persist Persister) *FratRatingStore {
	return &FratRatingStore{
		byID:      make(map[int64]*FratRating),
		bySchool:  make(map[int64][]*FratRating),
		authored:  make(map[chapterKey]map[string]struct{}),
		votes:     make(map[voteKey]int),
		daily:     make(map[string]dailyCount),
		sanitizer: sanitizer,
		persist:   persist,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *FratRatingStore) Seed(ratings []FratRating) {
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

func (s *FratRatingStore) insertLocked(r *FratRating) {
	s.byID[r.ID] = r
	s.bySchool[r.SchoolID] = append(s.bySchool[r.SchoolID], r)
	key := chapterKey{schoolID: r.SchoolID, fratName: r.FratName}
	authors, ok := s.authored[key]
	if !ok {
		authors = make(map[string]struct{})
		s.authored[key] = authors
	}
	authors[r.AuthorID] = struct{}{}
	if r.ID > s.nextID {
		s.nextID = r.ID
	}
}

func (s *FratRatingStore) Create(ctx context.Context, authorID, authorName string, schoolID int64, fratName string, score float64, review string) (*FratRating, error) {
	if authorID == "" {
		return nil, ErrUnauthenticated
	}
	if !validScore(score) {
		return nil, fmt.Errorf("%w: score must be between 1 and 5 in half-point steps", ErrInvalidArgument)
	}
	fratName = strings.TrimSpace(fratName)
	if schoolID == 0 || fratName == "" {
		return nil, fmt.Errorf("%w: school id and fraternity name are required", ErrInvalidArgument)
	}
	if s.sanitizer != nil {
		review = s.sanitizer.Clean(review)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := chapterKey{schoolID: schoolID, fratName: fratName}
	if _, ok := s.authored[key][authorID]; ok {
		return nil, fmt.Errorf("%w: author already rated this chapter", ErrAlreadyExists)
	}

	today := s.now().Format(dayFormat)
	dc := s.daily[authorID]
	if dc.day == today && dc.n >= DailyRatingCap {
		return nil, ErrQuotaExceeded
	}

	s.nextID++
	r := &FratRating{
		ID:         s.nextID,
		SchoolID:   schoolID,
		FratName:   fratName,
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
		if err := s.persist.InsertFratRating(ctx, r); err != nil {
			s.logger.Errorw("persisting frat rating failed, in-memory state kept", "rating_id", r.ID, "error", err)
		}
	}

	out := *r
	return &out, nil
}

func (s *FratRatingStore) Vote(ctx context.Context, raterID string, ratingID int64, direction VoteDirection) (int, int, error) {
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
		if d, err := s.persist.GetVote(ctx, VoteScopeFrat, ratingID, raterID); err != nil {
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
		if err := s.persist.SetVote(ctx, VoteScopeFrat, ratingID, raterID, next); err != nil {
			s.logger.Errorw("persisting vote failed, in-memory state kept", "rating_id", ratingID, "error", err)
		}
		if err := s.persist.UpdateVoteTally(ctx, VoteScopeFrat, ratingID, r.Upvotes, r.Downvotes); err != nil {
			s.logger.Errorw("persisting vote tally failed, in-memory state kept", "rating_id", ratingID, "error", err)
		}
	}

	return r.Upvotes, r.Downvotes, nil
}

// GetSchoolStats builds every chapter's aggregate for one school in a
// single pass. Fraternity pages show all chapters together, so one bulk
// query beats a per-chapter lookup.
func (s *FratRatingStore) GetSchoolStats(schoolID int64) map[string]FratStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range s.bySchool[schoolID] {
		sums[r.FratName] += r.Score
		counts[r.FratName]++
	}

	out := make(map[string]FratStats, len(counts))
	for name, n := range counts {
		out[name] = FratStats{AvgRating: sums[name] / float64(n), Count: n}
	}
	return out
}

func (s *FratRatingStore) ListBySchool(schoolID int64) []FratRating {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]FratRating, 0, len(s.bySchool[schoolID]))
	for _, r := range s.bySchool[schoolID] {
		out = append(out, *r)
	}
	return out
}

// ChapterCount reports how many distinct chapters have at least one
// rating at the school.
func (s *FratRatingStore) ChapterCount(schoolID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, r := range s.bySchool[schoolID] {
		seen[r.FratName] = struct{}{}
	}
	return len(seen)
}

// CountBySchool returns the distinct-chapter count for every school,
// used to seed school frat counts in one pass at startup.
func (s *FratRatingStore) CountBySchool() map[int64]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]int, len(s.bySchool))
	for schoolID, ratings := range s.bySchool {
		seen := make(map[string]struct{})
		for _, r := range ratings {
			seen[r.FratName] = struct{}{}
		}
		out[schoolID] = len(seen)
	}
	return out
}
