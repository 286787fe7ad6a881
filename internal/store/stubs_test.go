package store

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

type upperSanitizer struct{}

func (upperSanitizer) Clean(text string) string {
	return strings.ToUpper(strings.TrimSpace(text))
}

// failingPersister errors on every call; stores must swallow that.
type failingPersister struct{}

var errPersist = errors.New("persistence down")

func (failingPersister) InsertRating(context.Context, *Rating) error         { return errPersist }
func (failingPersister) InsertFratRating(context.Context, *FratRating) error { return errPersist }
func (failingPersister) InsertVenue(context.Context, *Venue) error           { return errPersist }
func (failingPersister) UpdateVenueApproval(context.Context, int64, bool) error {
	return errPersist
}
func (failingPersister) DeleteVenue(context.Context, int64) error { return errPersist }
func (failingPersister) UpdateVenueStats(context.Context, int64, float64, int, int, int) error {
	return errPersist
}
func (failingPersister) UpdateSchoolRating(context.Context, int64, float64) error {
	return errPersist
}
func (failingPersister) GetVote(context.Context, string, int64, string) (int, error) {
	return 0, errPersist
}
func (failingPersister) SetVote(context.Context, string, int64, string, int) error {
	return errPersist
}
func (failingPersister) UpdateVoteTally(context.Context, string, int64, int, int) error {
	return errPersist
}

type persistedVoteKey struct {
	scope    string
	ratingID int64
	voterID  string
}

// memPersister records vote state like the real Postgres side channel.
type memPersister struct {
	failingPersister
	mu    sync.Mutex
	votes map[persistedVoteKey]int
}

func newMemPersister() *memPersister {
	return &memPersister{votes: make(map[persistedVoteKey]int)}
}

func (p *memPersister) InsertRating(context.Context, *Rating) error { return nil }

func (p *memPersister) GetVote(_ context.Context, scope string, ratingID int64, voterID string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.votes[persistedVoteKey{scope, ratingID, voterID}], nil
}

func (p *memPersister) SetVote(_ context.Context, scope string, ratingID int64, voterID string, direction int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if direction == 0 {
		delete(p.votes, persistedVoteKey{scope, ratingID, voterID})
		return nil
	}
	p.votes[persistedVoteKey{scope, ratingID, voterID}] = direction
	return nil
}

func (p *memPersister) UpdateVoteTally(context.Context, string, int64, int, int) error {
	return nil
}
