package repository // repository holds data access logic for domain entities

import (
	"context"      // context is used to manage deadlines and cancellation
	"database/sql" // sql provides DB primitives
	"errors"
	"fmt"

	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/model"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/schedule"
)

// CourtRepo reads courts from the courts table.  Court CRUD is owned by
// the facility management side of the system; this service only reads.
type CourtRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewCourtRepo constructs a CourtRepo with the given DB handle.
func NewCourtRepo(db *sql.DB) *CourtRepo {
	return &CourtRepo{db: db}
}

const courtColumns = `id, venue_id, name, sport, price_per_hour_cents, open_minute, close_minute`

// GetCourt retrieves a court by its ID.  It returns ErrCourtNotFound when
// no row is found.
func (r *CourtRepo) GetCourt(ctx context.Context, id uint64) (*model.Court, error) {
	q := `SELECT ` + courtColumns + ` FROM courts WHERE id = ?`
	c, err := scanCourt(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourtNotFound
		}
		return nil, err
	}
	return c, nil
}

// ListByVenue returns the courts of a venue ordered by name.  An unknown
// venue yields an empty slice.
func (r *CourtRepo) ListByVenue(ctx context.Context, venueID uint64) ([]model.Court, error) {
	q := `SELECT ` + courtColumns + ` FROM courts WHERE venue_id = ? ORDER BY name, id`
	rows, err := r.db.QueryContext(ctx, q, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Court{}
	for rows.Next() {
		c, err := scanCourt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourt(row rowScanner) (*model.Court, error) {
	var (
		c                 model.Court
		openMin, closeMin int
	)
	if err := row.Scan(&c.ID, &c.VenueID, &c.Name, &c.Sport, &c.PricePerHourCents, &openMin, &closeMin); err != nil {
		return nil, err
	}
	w, err := schedule.RangeFromMinutes(openMin, closeMin)
	if err != nil {
		return nil, fmt.Errorf("court %d has invalid operating hours: %w", c.ID, err)
	}
	c.Window = w
	return &c, nil
}
