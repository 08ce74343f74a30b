// Package queue carries occupancy events from the service layer to the
// dashboard activity feed, through RabbitMQ when a broker is configured.
package queue

import (
    "time"

    "github.com/google/uuid"

    "github.com/hostellog/hostel-admin/internal/model"
)

// Kind names what happened.
type Kind string

const (
    GuestRegistered  Kind = "guest.registered"
    GuestAssigned    Kind = "guest.assigned"
    GuestTransferred Kind = "guest.transferred"
    GuestVacated     Kind = "guest.vacated"
    GuestReactivated Kind = "guest.reactivated"
    GuestDeactivated Kind = "guest.deactivated"
    GuestRemoved     Kind = "guest.removed"
    RoomMaintenance  Kind = "room.maintenance"
    RoomAvailable    Kind = "room.available"
    RoomReconciled   Kind = "room.reconciled"
)

// OccupancyEvent is published after a committed occupancy change.  It
// carries the room counters as they were at commit so consumers never
// query the primary database.
type OccupancyEvent struct {
    ID           string           `json:"id"`
    Kind         Kind             `json:"kind"`
    HostelID     uint64           `json:"hostel_id"`
    RoomID       uint64           `json:"room_id,omitempty"`
    RoomNumber   string           `json:"room_number,omitempty"`
    FromRoomID   *uint64          `json:"from_room_id,omitempty"`
    GuestID      uint64           `json:"guest_id,omitempty"`
    GuestName    string           `json:"guest_name,omitempty"`
    OccupiedBeds int              `json:"occupied_beds"`
    SharingType  int              `json:"sharing_type"`
    Status       model.RoomStatus `json:"status,omitempty"`
    OccurredAt   time.Time        `json:"occurred_at"`
}

// NewEvent stamps a fresh id and time.  room and guest may be nil.
func NewEvent(kind Kind, room *model.Room, guest *model.Guest) OccupancyEvent {
    ev := OccupancyEvent{
        ID:         uuid.NewString(),
        Kind:       kind,
        OccurredAt: time.Now().UTC(),
    }
    if room != nil {
        ev.HostelID = room.HostelID
        ev.RoomID = room.ID
        ev.RoomNumber = room.RoomNumber
        ev.OccupiedBeds = room.OccupiedBeds
        ev.SharingType = room.SharingType
        ev.Status = room.Status
    }
    if guest != nil {
        ev.HostelID = guest.HostelID
        ev.GuestID = guest.ID
        ev.GuestName = guest.FullName
    }
    return ev
}

// Message renders the event as a one-line activity entry.
func (e OccupancyEvent) Message() string {
    switch e.Kind {
    case GuestRegistered:
        return e.GuestName + " registered"
    case GuestAssigned:
        return e.GuestName + " moved into room " + e.RoomNumber
    case GuestTransferred:
        return e.GuestName + " transferred to room " + e.RoomNumber
    case GuestVacated:
        return e.GuestName + " vacated room " + e.RoomNumber
    case GuestReactivated:
        return e.GuestName + " reactivated"
    case GuestDeactivated:
        return e.GuestName + " put on hold"
    case GuestRemoved:
        return e.GuestName + " removed"
    case RoomMaintenance:
        return "room " + e.RoomNumber + " under maintenance"
    case RoomAvailable:
        return "room " + e.RoomNumber + " back in service"
    case RoomReconciled:
        return "room " + e.RoomNumber + " occupancy repaired"
    }
    return string(e.Kind)
}
