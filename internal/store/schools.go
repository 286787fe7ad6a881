package store

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// School is a static reference entity imported at startup, never
// user-created. Only its derived fields change at runtime.
type School struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Address string `json:"address,omitempty"`
	Control string `json:"control,omitempty"` // public, private
	Level   string `json:"level,omitempty"`   // four-year, two-year

	// Derived fields, written only through the update calls below.
	VenueCount int     `json:"venue_count"`
	AvgRating  float64 `json:"avg_rating"`
	FratCount  int     `json:"frat_count"`
}

type SchoolStore struct {
	mu    sync.RWMutex
	byID  map[int64]*School
	order []*School

	persist Persister
	logger  *zap.SugaredLogger
}

func NewSchoolStore(logger *zap.SugaredLogger, persist Persister) *SchoolStore {
	return &SchoolStore{
		byID:    make(map[int64]*School),
		persist: persist,
		logger:  logger,
	}
}

func (s *SchoolStore) Seed(schools []School) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range schools {
		sc := schools[i]
		if _, ok := s.byID[sc.ID]; ok {
			continue
		}
		s.byID[sc.ID] = &sc
		s.order = append(s.order, &sc)
	}
}

func (s *SchoolStore) GetByID(schoolID int64) (*School, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.byID[schoolID]
	if !ok {
		return nil, ErrNotFound
	}
	out := *sc
	return &out, nil
}

func (s *SchoolStore) List() []School {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]School, 0, len(s.order))
	for _, sc := range s.order {
		out = append(out, *sc)
	}
	return out
}

// Search is a linear substring filter over name and city; the school
// set is small and static, an index buys nothing here.
func (s *SchoolStore) Search(query string) []School {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return s.List()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []School
	for _, sc := range s.order {
		if strings.Contains(strings.ToLower(sc.Name), query) ||
			strings.Contains(strings.ToLower(sc.City), query) {
			out = append(out, *sc)
		}
	}
	return out
}

// UpdateSingleSchoolRating is the terminal hop of the propagation
// chain. Unknown school ids are ignored.
func (s *SchoolStore) UpdateSingleSchoolRating(ctx context.Context, schoolID int64, avg float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.byID[schoolID]
	if !ok {
		return
	}
	sc.AvgRating = avg

	if s.persist != nil {
		if err := s.persist.UpdateSchoolRating(ctx, schoolID, avg); err != nil {
			s.logger.Errorw("persisting school rating failed, in-memory state kept", "school_id", schoolID, "error", err)
		}
	}
}

func (s *SchoolStore) UpdateSingleVenueCount(schoolID int64, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sc, ok := s.byID[schoolID]; ok {
		sc.VenueCount = count
	}
}

func (s *SchoolStore) UpdateSingleFratCount(schoolID int64, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sc, ok := s.byID[schoolID]; ok {
		sc.FratCount = count
	}
}

// UpdateVenueCounts seeds venue counts for every school in one pass,
// avoiding a per-request recount across the whole venue set.
func (s *SchoolStore) UpdateVenueCounts(counts map[int64]int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sc := range s.order {
		sc.VenueCount = counts[sc.ID]
	}
}

func (s *SchoolStore) UpdateFratCounts(counts map[int64]int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sc := range s.order {
		sc.FratCount = counts[sc.ID]
	}
}
