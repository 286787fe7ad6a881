package persist

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fratmap/internal/store"
)

// Postgres mirrors the stores' write paths into Postgres. The stores
// call it best effort; nothing here is load-bearing for reads.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) InsertRating(ctx context.Context, r *store.Rating) error {
	query := `
        INSERT INTO ratings (id, venue_id, author_id, author_name, score, review, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (id) DO NOTHING
    `
	_, err := p.db.Exec(ctx, query,
		r.ID, r.VenueID, r.AuthorID, r.AuthorName, r.Score, r.Review, r.CreatedAt)
	return err
}

func (p *Postgres) InsertFratRating(ctx context.Context, r *store.FratRating) error {
	query := `
        INSERT INTO frat_ratings (id, school_id, frat_name, author_id, author_name, score, review, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (id) DO NOTHING
    `
	_, err := p.db.Exec(ctx, query,
		r.ID, r.SchoolID, r.FratName, r.AuthorID, r.AuthorName, r.Score, r.Review, r.CreatedAt)
	return err
}

func (p *Postgres) InsertVenue(ctx context.Context, v *store.Venue) error {
	query := `
        INSERT INTO venues (id, code, name, category, description, address, latitude, longitude,
                            school_id, created_by, approved, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        ON CONFLICT (id) DO NOTHING
    `
	_, err := p.db.Exec(ctx, query,
		v.ID, v.Code, v.Name, string(v.Category), v.Description, v.Address,
		v.Latitude, v.Longitude, v.SchoolID, v.CreatedBy, v.Approved, v.CreatedAt)
	return err
}

func (p *Postgres) UpdateVenueApproval(ctx context.Context, venueID int64, approved bool) error {
	_, err := p.db.Exec(ctx, `UPDATE venues SET approved = $1 WHERE id = $2`, approved, venueID)
	return err
}

func (p *Postgres) DeleteVenue(ctx context.Context, venueID int64) error {
	_, err := p.db.Exec(ctx, `DELETE FROM venues WHERE id = $1`, venueID)
	return err
}

func (p *Postgres) UpdateVenueStats(ctx context.Context, venueID int64, avg float64, count, up, down int) error {
	query := `
        UPDATE venues
        SET avg_rating = $1, rating_count = $2, thumbs_up = $3, thumbs_down = $4
        WHERE id = $5
    `
	_, err := p.db.Exec(ctx, query, avg, count, up, down, venueID)
	return err
}

func (p *Postgres) UpdateSchoolRating(ctx context.Context, schoolID int64, avg float64) error {
	_, err := p.db.Exec(ctx, `UPDATE schools SET avg_rating = $1 WHERE id = $2`, avg, schoolID)
	return err
}

// GetVote returns the voter's direction on a rating: 1, -1, or 0 when
// no vote is recorded.
func (p *Postgres) GetVote(ctx context.Context, scope string, ratingID int64, voterID string) (int, error) {
	var direction int
	query := `
        SELECT direction FROM rating_votes
        WHERE scope = $1 AND rating_id = $2 AND voter_id = $3
    `
	err := p.db.QueryRow(ctx, query, scope, ratingID, voterID).Scan(&direction)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return direction, nil
}

func (p *Postgres) SetVote(ctx context.Context, scope string, ratingID int64, voterID string, direction int) error {
	if direction == 0 {
		_, err := p.db.Exec(ctx,
			`DELETE FROM rating_votes WHERE scope = $1 AND rating_id = $2 AND voter_id = $3`,
			scope, ratingID, voterID)
		return err
	}
	query := `
        INSERT INTO rating_votes (scope, rating_id, voter_id, direction)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (scope, rating_id, voter_id) DO UPDATE SET direction = EXCLUDED.direction
    `
	_, err := p.db.Exec(ctx, query, scope, ratingID, voterID, direction)
	return err
}

func (p *Postgres) UpdateVoteTally(ctx context.Context, scope string, ratingID int64, up, down int) error {
	table := "ratings"
	if scope == store.VoteScopeFrat {
		table = "frat_ratings"
	}
	_, err := p.db.Exec(ctx,
		`UPDATE `+table+` SET upvotes = $1, downvotes = $2 WHERE id = $3`,
		up, down, ratingID)
	return err
}
