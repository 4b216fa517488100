package model

import "time"

// Venue represents a snooker house: the business entity that owns
// tables, products, game sessions and sales.  Every resource in the
// system hangs off a venue and every venue belongs to exactly one
// owner account.
//
// Fields:
//  ID        – primary key identifier.
//  OwnerID   – user ID of the venue owner.
//  Name      – display name of the snooker house.
//  Address   – optional street address.
//  Phone     – optional contact phone number.
//  IsActive  – whether the venue is operating.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Venue struct {
    ID        uint64    // venues.id
    OwnerID   uint64    // venues.owner_id
    Name      string    // venues.name
    Address   *string   // venues.address (nullable)
    Phone     *string   // venues.phone (nullable)
    IsActive  bool      // venues.is_active
    CreatedAt time.Time // venues.created_at
    UpdatedAt time.Time // venues.updated_at
}
