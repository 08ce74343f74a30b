package model

import "time"

// User represents an application user record as stored in the
// `users` table.  Admin users have no hostel; staff and guest users
// are scoped to the hostel referenced by HostelID.
//
// Fields:
//  ID           – primary key identifier of the user.
//  HostelID     – hostel the user works in (nil for admins).
//  FullName     – display name.
//  Email        – unique email address used to log in.
//  Phone        – contact phone (nullable).
//  PasswordHash – bcrypt hashed password.
//  Role         – admin, staff or guest.
//  IsActive     – whether the account may log in.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    `json:"id"`         // users.id
    HostelID     *uint64   `json:"hostel_id"`  // users.hostel_id (nullable)
    FullName     string    `json:"full_name"`  // users.full_name
    Email        string    `json:"email"`      // users.email
    Phone        *string   `json:"phone"`      // users.phone (nullable)
    PasswordHash string    `json:"-"`          // users.password_hash
    Role         Role      `json:"role"`       // users.role
    IsActive     bool      `json:"is_active"`  // users.is_active
    CreatedAt    time.Time `json:"created_at"` // users.created_at
    UpdatedAt    time.Time `json:"updated_at"` // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA‑256 hash.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
