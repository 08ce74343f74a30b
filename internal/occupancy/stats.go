package occupancy

import "github.com/hostellog/hostel-admin/internal/model"

// Stats summarises occupancy for a set of rooms and guests.
type Stats struct {
    TotalRooms    int                      `json:"total_rooms"`
    OccupiedRooms int                      `json:"occupied_rooms"`
    TotalBeds     int                      `json:"total_beds"`
    OccupiedBeds  int                      `json:"occupied_beds"`
    VacantBeds    int                      `json:"vacant_beds"`
    ActiveGuests  int                      `json:"active_guests"`
    ByStatus      map[model.RoomStatus]int `json:"by_status"`
}

// Summarize computes dashboard statistics.  Beds in rooms under
// maintenance are not counted as vacant.
func Summarize(rooms []model.Room, guests []model.Guest) Stats {
    s := Stats{ByStatus: map[model.RoomStatus]int{
        model.RoomAvailable:   0,
        model.RoomPartial:     0,
        model.RoomFull:        0,
        model.RoomMaintenance: 0,
    }}
    for _, r := range rooms {
        s.TotalRooms++
        s.TotalBeds += r.SharingType
        s.OccupiedBeds += r.OccupiedBeds
        s.VacantBeds += r.FreeBeds()
        if r.OccupiedBeds > 0 {
            s.OccupiedRooms++
        }
        s.ByStatus[r.Status]++
    }
    for _, g := range guests {
        if g.Status == model.GuestActive {
            s.ActiveGuests++
        }
    }
    return s
}
