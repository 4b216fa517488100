package model

import "time"

// User roles.  Owners manage venues; staff operate tables and the
// sales counter for venues they are attached to.
const (
    RoleOwner = "OWNER"
    RoleStaff = "STAFF"
)

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column in the database.  The
// json tags are omitted here because these structs are primarily used
// internally by the repository layer; handlers define separate
// response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  FullName     – display name.
//  Role         – name of the role (OWNER or STAFF).
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    FullName     string    // users.full_name
    Role         string    // users.role
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table: one
// device login session for a user.  This is the "auth session",
// unrelated to the table billing Session in session.go.  The plain
// token is never stored; only its SHA-256 hash.  DeviceInfo carries a
// fingerprint of the client (user agent) so users can review and
// revoke individual devices.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – owner of the token.
//  TokenHash  – SHA-256 hex digest of the token value.
//  DeviceInfo – client fingerprint captured at login.
//  ExpiresAt  – expiration timestamp of the token.
//  RevokedAt  – when the token was revoked (null if still active).
//  LastUsedAt – last time the token was exchanged for an access token.
//  CreatedAt  – timestamp of creation.
type RefreshToken struct {
    ID         uint64     // refresh_tokens.id
    UserID     uint64     // refresh_tokens.user_id
    TokenHash  string     // refresh_tokens.token_hash
    DeviceInfo string     // refresh_tokens.device_info
    ExpiresAt  time.Time  // refresh_tokens.expires_at
    RevokedAt  *time.Time // refresh_tokens.revoked_at (nullable)
    LastUsedAt *time.Time // refresh_tokens.last_used_at (nullable)
    CreatedAt  time.Time  // refresh_tokens.created_at
}
