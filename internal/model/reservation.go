package model

import (
    "time"

    "github.com/JasminRadadiya29/QuickCourt-sub000/internal/schedule"
)

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
    StatusPending   ReservationStatus = "pending"
    StatusConfirmed ReservationStatus = "confirmed"
    StatusCancelled ReservationStatus = "cancelled"
    StatusCompleted ReservationStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s ReservationStatus) Valid() bool {
    switch s {
    case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
        return true
    }
    return false
}

// Reservation records a user's booking of a court for a time range on a
// calendar day.  Court, date and range never change after creation;
// rescheduling is a cancel followed by a new reservation.  Only
// reservations in StatusConfirmed block other bookings.
//
// Fields:
//  ID         – primary key identifier.
//  CourtID    – court being reserved.
//  VenueID    – venue of the court, denormalised for listings and events.
//  UserID     – user the reservation belongs to.
//  Date       – calendar day of the booking.
//  Range      – booked time of day.
//  Status     – lifecycle state.
//  PriceCents – price charged in cents.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Reservation struct {
    ID         uint64             // reservations.id
    CourtID    uint64             // reservations.court_id
    VenueID    uint64             // reservations.venue_id
    UserID     uint64             // reservations.user_id
    Date       schedule.Date      // reservations.booking_date
    Range      schedule.TimeRange // reservations.start_minute, reservations.end_minute
    Status     ReservationStatus  // reservations.status
    PriceCents uint32             // reservations.price_cents
    CreatedAt  time.Time          // reservations.created_at
    UpdatedAt  time.Time          // reservations.updated_at
}
