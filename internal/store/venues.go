package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/speps/go-hashids/v2"
	"go.uber.org/zap"
)

type Category string

const (
	CategoryBar       Category = "bar"
	CategoryNightclub Category = "nightclub"
	CategoryFrat      Category = "frat"
	CategoryPartyHost Category = "party_host"
	CategoryOther     Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryBar, CategoryNightclub, CategoryFrat, CategoryPartyHost, CategoryOther:
		return true
	}
	return false
}

// RoleAdmin marks a trusted actor whose venue submissions skip the
// moderation queue.
const RoleAdmin = "admin"

type Venue struct {
	ID          int64    `json:"id"`
	Code        string   `json:"code"` // hashids share code for public links
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Description string   `json:"description,omitempty"`
	Address     string   `json:"address,omitempty"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	SchoolID    int64    `json:"school_id"`
	CreatedBy   string   `json:"created_by"`
	Approved    bool     `json:"approved"`

	// Derived from the rating set; written only through
	// UpdateSingleVenueStats, never computed here.
	AvgRating   float64 `json:"avg_rating"`
	RatingCount int     `json:"rating_count"`
	ThumbsUp    int     `json:"thumbs_up"`
	ThumbsDown  int     `json:"thumbs_down"`

	CreatedAt time.Time `json:"created_at"`
}

const venueCodeSalt = "fratmap-venues"

// VenueStore owns the venue collection and its approval lifecycle.
// Rating aggregates live on venues as pushed copies; this store never
// reaches into the rating collection itself.
type VenueStore struct {
	mu     sync.RWMutex
	byID   map[int64]*Venue
	order  []*Venue // creation order, backbone for listings
	nextID int64

	codec     *hashids.HashID
	sanitizer Sanitizer
	persist   Persister
	logger    *zap.SugaredLogger
}

func NewVenueStore(logger *zap.SugaredLogger, sanitizer Sanitizer, persist Persister) (*VenueStore, error) {
	hd := hashids.NewData()
	hd.Salt = venueCodeSalt
	hd.MinLength = 8
	codec, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("building venue code codec: %w", err)
	}
	return &VenueStore{
		byID:      make(map[int64]*Venue),
		codec:     codec,
		sanitizer: sanitizer,
		persist:   persist,
		logger:    logger,
	}, nil
}

func (s *VenueStore) code(id int64) string {
	c, err := s.codec.EncodeInt64([]int64{id})
	if err != nil {
		// Cannot happen with the default alphabet; an empty code only
		// degrades share links.
		s.logger.Errorw("encoding venue code failed", "venue_id", id, "error", err)
		return ""
	}
	return c
}

func (s *VenueStore) Seed(venues []Venue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range venues {
		v := venues[i]
		if _, ok := s.byID[v.ID]; ok {
			continue
		}
		if v.Code == "" {
			v.Code = s.code(v.ID)
		}
		s.insertLocked(&v)
	}
}

func (s *VenueStore) insertLocked(v *Venue) {
	s.byID[v.ID] = v
	s.order = append(s.order, v)
	if v.ID > s.nextID {
		s.nextID = v.ID
	}
}

// Create validates and stores a new venue. Submissions from admins are
// approved immediately; everything else waits in the moderation queue.
func (s *VenueStore) Create(ctx context.Context, authorID, role string, v *Venue) error {
	if authorID == "" {
		return ErrUnauthenticated
	}
	if !v.Category.Valid() {
		return fmt.Errorf("%w: unknown venue category %q", ErrInvalidArgument, v.Category)
	}
	v.Name = strings.TrimSpace(v.Name)
	if v.Name == "" {
		return fmt.Errorf("%w: venue name is required", ErrInvalidArgument)
	}
	if v.SchoolID == 0 {
		return fmt.Errorf("%w: school id is required", ErrInvalidArgument)
	}
	if s.sanitizer != nil {
		v.Description = s.sanitizer.Clean(v.Description)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	v.ID = s.nextID
	v.Code = s.code(v.ID)
	v.CreatedBy = authorID
	v.Approved = role == RoleAdmin
	v.AvgRating = 0
	v.RatingCount = 0
	v.ThumbsUp = 0
	v.ThumbsDown = 0
	v.CreatedAt = time.Now()
	s.insertLocked(v)

	if s.persist != nil {
		if err := s.persist.InsertVenue(ctx, v); err != nil {
			s.logger.Errorw("persisting venue failed, in-memory state kept", "venue_id", v.ID, "error", err)
		}
	}
	return nil
}

func (s *VenueStore) GetByID(venueID int64) (*Venue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.byID[venueID]
	if !ok {
		return nil, ErrNotFound
	}
	out := *v
	return &out, nil
}

// ApproveVenue is the one-way transition out of the moderation queue.
// Approving an already-approved venue is a no-op.
func (s *VenueStore) ApproveVenue(ctx context.Context, venueID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.byID[venueID]
	if !ok {
		return ErrNotFound
	}
	if v.Approved {
		return nil
	}
	v.Approved = true

	if s.persist != nil {
		if err := s.persist.UpdateVenueApproval(ctx, venueID, true); err != nil {
			s.logger.Errorw("persisting venue approval failed, in-memory state kept", "venue_id", venueID, "error", err)
		}
	}
	return nil
}

// RejectVenue removes a venue still waiting in the queue. Approval is a
// one-way door: an approved venue cannot be rejected.
func (s *VenueStore) RejectVenue(ctx context.Context, venueID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.byID[venueID]
	if !ok {
		return ErrNotFound
	}
	if v.Approved {
		return fmt.Errorf("%w: cannot reject an approved venue", ErrInvalidState)
	}

	delete(s.byID, venueID)
	for i, o := range s.order {
		if o.ID == venueID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	if s.persist != nil {
		if err := s.persist.DeleteVenue(ctx, venueID); err != nil {
			s.logger.Errorw("persisting venue rejection failed, in-memory state kept", "venue_id", venueID, "error", err)
		}
	}
	return nil
}

// ListBySchool pages through the approved venues of one school in
// creation order. Pending venues stay invisible here; moderation
// tooling uses ListPending.
func (s *VenueStore) ListBySchool(schoolID int64, page, limit int) ([]Venue, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 15
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*Venue
	for _, v := range s.order {
		if v.Approved && v.SchoolID == schoolID {
			matched = append(matched, v)
		}
	}
	total := len(matched)

	start := (page - 1) * limit
	if start >= total {
		return []Venue{}, total
	}
	end := start + limit
	if end > total {
		end = total
	}
	out := make([]Venue, 0, end-start)
	for _, v := range matched[start:end] {
		out = append(out, *v)
	}
	return out, total
}

func (s *VenueStore) ListPending() []Venue {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Venue
	for _, v := range s.order {
		if !v.Approved {
			out = append(out, *v)
		}
	}
	return out
}

// UpdateSingleVenueStats writes freshly computed rating aggregates onto
// one venue and returns its school id so the caller can continue the
// propagation chain, or 0 when the venue is unknown.
func (s *VenueStore) UpdateSingleVenueStats(ctx context.Context, venueID int64, avg float64, count, up, down int) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.byID[venueID]
	if !ok {
		return 0
	}
	v.AvgRating = avg
	v.RatingCount = count
	v.ThumbsUp = up
	v.ThumbsDown = down

	if s.persist != nil {
		if err := s.persist.UpdateVenueStats(ctx, venueID, avg, count, up, down); err != nil {
			s.logger.Errorw("persisting venue stats failed, in-memory state kept", "venue_id", venueID, "error", err)
		}
	}
	return v.SchoolID
}

// GetSchoolAvgRating averages avg_rating over the school's venues that
// have at least one rating, so unrated venues do not drag the school
// toward zero.
func (s *VenueStore) GetSchoolAvgRating(schoolID int64) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum float64
	var n int
	for _, v := range s.order {
		if v.SchoolID == schoolID && v.RatingCount > 0 {
			sum += v.AvgRating
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// CountBySchool counts approved venues per school, used to seed school
// venue counts in one pass at startup.
func (s *VenueStore) CountBySchool() map[int64]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]int)
	for _, v := range s.order {
		if v.Approved {
			out[v.SchoolID]++
		}
	}
	return out
}
