// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

// Event types published on the reservations queue.
const (
    EventReservationConfirmed = "reservation.confirmed"
    EventReservationCancelled = "reservation.cancelled"
)

// ReservationEvent is published when a reservation is admitted or
// cancelled.  It carries enough detail for downstream consumers to log,
// notify, or feed analytics without querying the primary database.
type ReservationEvent struct {
    EventID       string `json:"event_id"`
    Type          string `json:"type"`
    ReservationID uint64 `json:"reservation_id"`
    CourtID       uint64 `json:"court_id"`
    VenueID       uint64 `json:"venue_id"`
    UserID        uint64 `json:"user_id"`
    Date          string `json:"date"`
    StartTime     string `json:"start_time"`
    EndTime       string `json:"end_time"`
    PriceCents    uint32 `json:"price_cents"`
    OccurredAt    string `json:"occurred_at"`
}
