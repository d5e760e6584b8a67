package model

import "github.com/JasminRadadiya29/QuickCourt-sub000/internal/schedule"

// Court is a bookable playing surface inside a venue.  Its operating
// window bounds every reservation made on it; the window is stored in
// the courts table as minute offsets (open_minute, close_minute).
//
// Fields:
//  ID                 – primary key identifier.
//  VenueID            – venue that owns the court.
//  Name               – display name, unique per venue.
//  Sport              – sport played on the court (badminton, tennis, ...).
//  PricePerHourCents  – hourly price in cents.
//  Window             – daily operating hours.
type Court struct {
    ID                uint64             // courts.id
    VenueID           uint64             // courts.venue_id
    Name              string             // courts.name
    Sport             string             // courts.sport
    PricePerHourCents uint32             // courts.price_per_hour_cents
    Window            schedule.TimeRange // courts.open_minute, courts.close_minute
}

// PriceFor returns the price in cents of booking r on the court.  Partial
// hours are charged pro rata and rounded down to the cent.
func (c Court) PriceFor(r schedule.TimeRange) uint32 {
    minutes := uint64(r.Duration().Minutes())
    return uint32(uint64(c.PricePerHourCents) * minutes / 60)
}
