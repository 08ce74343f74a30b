package model

import "time"

// Guest is a resident registered at a hostel.  RoomID is nil for
// guests that have not been given a bed yet and for checked-out
// guests.  Checked-out guests are kept for historical records.
type Guest struct {
    ID                 uint64      `json:"id"`                   // guests.id
    HostelID           uint64      `json:"hostel_id"`            // guests.hostel_id
    RoomID             *uint64     `json:"room_id"`              // guests.room_id (nullable)
    FullName           string      `json:"full_name"`            // guests.full_name
    Phone              string      `json:"phone"`                // guests.phone
    Email              *string     `json:"email"`                // guests.email (nullable)
    DateOfBirth        *time.Time  `json:"date_of_birth"`        // guests.date_of_birth (nullable)
    ParentName         *string     `json:"parent_name"`          // guests.parent_name (nullable)
    ParentContact      *string     `json:"parent_contact"`       // guests.parent_contact (nullable)
    Purpose            *string     `json:"purpose"`              // guests.purpose (nullable)
    PermanentAddress   *string     `json:"permanent_address"`    // guests.permanent_address (nullable)
    OfficeAddress      *string     `json:"office_address"`       // guests.office_address (nullable)
    GovernmentID       *string     `json:"government_id"`        // guests.government_id (nullable)
    PayingAmountCents  uint32      `json:"paying_amount_cents"`  // guests.paying_amount_cents
    AdvanceAmountCents uint32      `json:"advance_amount_cents"` // guests.advance_amount_cents
    JoinDate           time.Time   `json:"join_date"`            // guests.join_date
    Status             GuestStatus `json:"status"`               // guests.status
    CreatedAt          time.Time   `json:"created_at"`           // guests.created_at
    UpdatedAt          time.Time   `json:"updated_at"`           // guests.updated_at
}

// InRoom reports whether the guest is assigned to the given room.
func (g Guest) InRoom(roomID uint64) bool {
    return g.RoomID != nil && *g.RoomID == roomID
}
