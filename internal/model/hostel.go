package model

import "time"

// Hostel is the root tenant unit.  Floors, rooms, guests and non-admin
// users all belong to exactly one hostel.  Hostels are never hard
// deleted.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name of the hostel.
//  Address   – postal address (nullable).
//  Email     – contact email (nullable).
//  Phone     – contact phone (nullable).
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Hostel struct {
    ID        uint64    `json:"id"`         // hostels.id
    Name      string    `json:"name"`       // hostels.name
    Address   *string   `json:"address"`    // hostels.address (nullable)
    Email     *string   `json:"email"`      // hostels.email (nullable)
    Phone     *string   `json:"phone"`      // hostels.phone (nullable)
    CreatedAt time.Time `json:"created_at"` // hostels.created_at
    UpdatedAt time.Time `json:"updated_at"` // hostels.updated_at
}
