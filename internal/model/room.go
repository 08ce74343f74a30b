package model

import "time"

// Room is a bookable unit on a floor.  SharingType is the total bed
// capacity.  OccupiedBeds and Status are owned by the occupancy ledger
// and must only change through it; Version is bumped on every
// occupancy write and guards those writes against concurrent updates.
//
// Fields:
//  ID              – primary key identifier.
//  HostelID        – owning hostel.
//  FloorID         – floor the room is on.
//  RoomNumber      – label unique within the floor (e.g. "102").
//  SharingType     – number of beds.
//  RentAmountCents – monthly rent per bed in cents.
//  OccupiedBeds    – number of active guests assigned to the room.
//  Status          – available, partial, full or maintenance.
//  Version         – optimistic locking counter.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Room struct {
    ID              uint64     `json:"id"`                // rooms.id
    HostelID        uint64     `json:"hostel_id"`         // rooms.hostel_id
    FloorID         uint64     `json:"floor_id"`          // rooms.floor_id
    RoomNumber      string     `json:"room_number"`       // rooms.room_number
    SharingType     int        `json:"sharing_type"`      // rooms.sharing_type
    RentAmountCents uint32     `json:"rent_amount_cents"` // rooms.rent_amount_cents
    OccupiedBeds    int        `json:"occupied_beds"`     // rooms.occupied_beds
    Status          RoomStatus `json:"status"`            // rooms.status
    Version         uint32     `json:"version"`           // rooms.version
    CreatedAt       time.Time  `json:"created_at"`        // rooms.created_at
    UpdatedAt       time.Time  `json:"updated_at"`        // rooms.updated_at
}

// FreeBeds returns the number of beds that can still be assigned.
// Rooms under maintenance have none.
func (r Room) FreeBeds() int {
    if r.Status == RoomMaintenance || r.OccupiedBeds >= r.SharingType {
        return 0
    }
    return r.SharingType - r.OccupiedBeds
}
