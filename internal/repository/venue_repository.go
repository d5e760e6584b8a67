package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/JasminRadadiya29/QuickCourt-sub000/internal/model"
)

// VenueRepo reads venues.  Only existence and display data are needed by
// the booking flow.
type VenueRepo struct {
    db *sql.DB
}

// NewVenueRepo returns a new VenueRepo bound to the given database.
func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{db: db} }

// GetVenue returns the venue with the given ID or ErrVenueNotFound.
func (r *VenueRepo) GetVenue(ctx context.Context, id uint64) (*model.Venue, error) {
    const q = `SELECT id, owner_id, name, is_active, created_at FROM venues WHERE id = ?`
    var v model.Venue
    err := r.db.QueryRowContext(ctx, q, id).Scan(&v.ID, &v.OwnerID, &v.Name, &v.IsActive, &v.CreatedAt)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrVenueNotFound
        }
        return nil, err
    }
    return &v, nil
}
