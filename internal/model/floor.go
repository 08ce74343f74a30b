package model

import "time"

// Floor groups rooms of a hostel.  FloorNumber is unique within the
// owning hostel.
type Floor struct {
    ID          uint64    `json:"id"`           // floors.id
    HostelID    uint64    `json:"hostel_id"`    // floors.hostel_id
    FloorNumber int       `json:"floor_number"` // floors.floor_number
    FloorName   *string   `json:"floor_name"`   // floors.floor_name (nullable)
    CreatedAt   time.Time `json:"created_at"`   // floors.created_at
}
