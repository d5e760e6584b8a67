package model

import "time"

// Venue represents a sports facility that owns one or more courts.
// Venue CRUD and approval live outside this service; only existence and
// the display name are read here.
//
// Fields:
//  ID        – primary key identifier.
//  OwnerID   – user ID of the facility owner.
//  Name      – display name of the venue.
//  IsActive  – approved and visible to customers.
//  CreatedAt – timestamp when the venue was created.
type Venue struct {
    ID        uint64    // venues.id
    OwnerID   uint64    // venues.owner_id
    Name      string    // venues.name
    IsActive  bool      // venues.is_active
    CreatedAt time.Time // venues.created_at
}
