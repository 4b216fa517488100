package model

import "time"

// Table statuses.  Only an active table may start a new session;
// maintenance and inactive tables are visible to owners but cannot be
// occupied.
const (
    TableStatusActive      = "active"
    TableStatusMaintenance = "maintenance"
    TableStatusInactive    = "inactive"
)

// Pricing methods supported by a table.  The chosen method and its
// rates are snapshotted onto each session when it starts so that later
// rate edits never change the price of a game already in progress.
const (
    PricingPerMinute  = "per_minute"  // billed by elapsed active minutes
    PricingFrameKitti = "frame_kitti" // billed per frame plus per kitti
)

// Table represents a physical playing surface inside a venue.  The
// table number is unique within its venue.  While a game is running
// the table is flagged occupied and points at the open session; the
// application guarantees at most one non-terminal session references
// a table at any time.
//
// Fields:
//  ID               – primary key identifier.
//  VenueID          – venue that owns the table.
//  Number           – table number, unique per venue.
//  Name             – display name (e.g. "VIP Table 1").
//  Status           – active, maintenance or inactive.
//  PricingMethod    – per_minute or frame_kitti.
//  MinuteRate       – price per active minute (per_minute pricing).
//  FrameRate        – price per frame (frame_kitti pricing).
//  KittiRate        – price per kitti (frame_kitti pricing).
//  IsOccupied       – whether a session currently holds the table.
//  CurrentSessionID – open session holding the table (nil when free).
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Table struct {
    ID               uint64    // tables.id
    VenueID          uint64    // tables.venue_id
    Number           uint32    // tables.number
    Name             string    // tables.name
    Status           string    // tables.status
    PricingMethod    string    // tables.pricing_method
    MinuteRate       float64   // tables.minute_rate
    FrameRate        float64   // tables.frame_rate
    KittiRate        float64   // tables.kitti_rate
    IsOccupied       bool      // tables.is_occupied
    CurrentSessionID *uint64   // tables.current_session_id (nullable)
    CreatedAt        time.Time // tables.created_at
    UpdatedAt        time.Time // tables.updated_at
}
