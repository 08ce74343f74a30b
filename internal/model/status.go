package model

import "strings"

// RoomStatus is the occupancy state of a room.  Every value except
// RoomMaintenance is derived from occupied_beds vs sharing_type.
type RoomStatus string

const (
    RoomAvailable   RoomStatus = "available"
    RoomPartial     RoomStatus = "partial"
    RoomFull        RoomStatus = "full"
    RoomMaintenance RoomStatus = "maintenance"
)

// Valid reports whether s is one of the room_status enum values.
func (s RoomStatus) Valid() bool {
    switch s {
    case RoomAvailable, RoomPartial, RoomFull, RoomMaintenance:
        return true
    }
    return false
}

// GuestStatus is the lifecycle state of a guest.  Only GuestActive
// counts toward a room's occupied beds.
type GuestStatus string

const (
    GuestActive     GuestStatus = "active"
    GuestInactive   GuestStatus = "inactive"
    GuestCheckedOut GuestStatus = "checked_out"
)

// Valid reports whether s is one of the guest_status enum values.
func (s GuestStatus) Valid() bool {
    switch s {
    case GuestActive, GuestInactive, GuestCheckedOut:
        return true
    }
    return false
}

// Role is the canonical user role.  Admins see every hostel; staff and
// guest accounts are bound to exactly one hostel.
type Role string

const (
    RoleAdmin Role = "admin"
    RoleStaff Role = "staff"
    RoleGuest Role = "guest"
)

// Valid reports whether r is one of the user_role enum values.
func (r Role) Valid() bool {
    switch r {
    case RoleAdmin, RoleStaff, RoleGuest:
        return true
    }
    return false
}

// ParseRole normalizes a role string.  The legacy "user" role of the
// first admin console maps to RoleStaff.
func ParseRole(s string) (Role, bool) {
    r := Role(strings.ToLower(strings.TrimSpace(s)))
    if r == "user" {
        return RoleStaff, true
    }
    return r, r.Valid()
}
