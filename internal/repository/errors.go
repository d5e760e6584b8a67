// Package repository defines data access for venues, courts and
// reservations, with a MySQL implementation and an in-memory store used
// for development and tests.  The sentinel errors below let higher layers
// tell failure scenarios apart without inspecting driver errors.
package repository

import "errors"

// ErrConflict is returned when a write cannot be performed because of
// conflicting state: an overlapping confirmed reservation for the same
// court and date, or a status transition that is no longer possible.
var ErrConflict = errors.New("conflict")

// ErrCourtNotFound is returned when a court lookup fails.
var ErrCourtNotFound = errors.New("court not found")

// ErrVenueNotFound is returned when a venue lookup fails.
var ErrVenueNotFound = errors.New("venue not found")

// ErrReservationNotFound is returned when a reservation lookup fails.
var ErrReservationNotFound = errors.New("reservation not found")
