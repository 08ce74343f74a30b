// Package occupancy keeps room bed counts and room status consistent with
// guest assignments.  Every function is pure: it takes snapshots of the
// affected records and returns updated copies.  Persisting the results
// and serializing concurrent calls per room is the caller's job.
package occupancy

import (
    "fmt"

    "github.com/hostellog/hostel-admin/internal/model"
)

// Assignment is the outcome of Assign.  Previous is set only for a
// transfer and holds the room the guest moved out of.
type Assignment struct {
    Guest    model.Guest
    Room     model.Room
    Previous *model.Room
}

// Transfer reports whether the assignment moved the guest between rooms.
func (a Assignment) Transfer() bool { return a.Previous != nil }

// Vacation is the outcome of Vacate.
type Vacation struct {
    Guest model.Guest
    Room  model.Room
}

// Deactivation is the outcome of Deactivate.  Room is nil when the guest
// held no bed.
type Deactivation struct {
    Guest model.Guest
    Room  *model.Room
}

// ComputeStatus derives a room status from its bed counts.  A room under
// maintenance stays in maintenance regardless of the counts.  Counts that
// cannot occur in a consistent ledger (negative values, more occupied
// beds than capacity) yield ErrCapacityExceeded.
func ComputeStatus(occupied, sharing int, maintenance bool) (model.RoomStatus, error) {
    if occupied < 0 || sharing < 1 || occupied > sharing {
        return "", fmt.Errorf("%d of %d beds occupied: %w", occupied, sharing, ErrCapacityExceeded)
    }
    switch {
    case maintenance:
        return model.RoomMaintenance, nil
    case occupied == 0:
        return model.RoomAvailable, nil
    case occupied < sharing:
        return model.RoomPartial, nil
    default:
        return model.RoomFull, nil
    }
}

// CountActive returns how many guests in the slice count toward a room's
// occupancy, i.e. are active and assigned to roomID.
func CountActive(roomID uint64, guests []model.Guest) int {
    n := 0
    for _, g := range guests {
        if g.Status == model.GuestActive && g.InRoom(roomID) {
            n++
        }
    }
    return n
}

// Assign places guest into target.  occupants is the current guest list of
// target; only active guests assigned to target are counted, and the
// guest itself is ignored.  When the guest already has another room, from
// must be that room and the result carries both rooms updated: the
// source loses a bed and the target gains one.  Either both rooms change
// or Assign returns an error and nothing changes.
func Assign(guest model.Guest, target model.Room, occupants []model.Guest, from *model.Room) (Assignment, error) {
    if guest.Status != model.GuestActive {
        return Assignment{}, fmt.Errorf("guest %s is %s and cannot be assigned a bed: %w", guest.FullName, guest.Status, ErrGuestNotActive)
    }
    if guest.HostelID != target.HostelID {
        return Assignment{}, fmt.Errorf("room %s belongs to another hostel: %w", target.RoomNumber, ErrHostelMismatch)
    }
    if target.Status == model.RoomMaintenance {
        if target.OccupiedBeds != 0 {
            return Assignment{}, fmt.Errorf("room %s is under maintenance with %d occupied beds: %w", target.RoomNumber, target.OccupiedBeds, ErrCapacityExceeded)
        }
        return Assignment{}, fmt.Errorf("room %s is under maintenance: %w", target.RoomNumber, ErrRoomInMaintenance)
    }
    if guest.InRoom(target.ID) {
        return Assignment{}, fmt.Errorf("guest %s is already in room %s: %w", guest.FullName, target.RoomNumber, ErrAlreadyAssigned)
    }

    var previous *model.Room
    if guest.RoomID != nil {
        if from == nil || from.ID != *guest.RoomID {
            return Assignment{}, fmt.Errorf("guest %s must be moved out of their current room first: %w", guest.FullName, ErrTransferSource)
        }
        src, err := release(*from, guest)
        if err != nil {
            return Assignment{}, err
        }
        previous = &src
    }

    active := 0
    for _, g := range occupants {
        if g.ID != guest.ID && g.Status == model.GuestActive && g.InRoom(target.ID) {
            active++
        }
    }
    if active > target.SharingType || target.OccupiedBeds > target.SharingType {
        return Assignment{}, fmt.Errorf("room %s holds %d guests for %d beds: %w", target.RoomNumber, max(active, target.OccupiedBeds), target.SharingType, ErrCapacityExceeded)
    }
    if active >= target.SharingType {
        return Assignment{}, fmt.Errorf("room %s has no available beds: %w", target.RoomNumber, ErrRoomFull)
    }

    room := target
    room.OccupiedBeds = active + 1
    status, err := ComputeStatus(room.OccupiedBeds, room.SharingType, false)
    if err != nil {
        return Assignment{}, fmt.Errorf("room %s: %w", room.RoomNumber, err)
    }
    room.Status = status

    g := guest
    id := target.ID
    g.RoomID = &id
    return Assignment{Guest: g, Room: room, Previous: previous}, nil
}

// Vacate checks a guest out of room.  The guest becomes checked_out with
// no room.  The room loses a bed only if the guest was counted (active);
// the count never drops below zero.
func Vacate(guest model.Guest, room model.Room) (Vacation, error) {
    if !guest.InRoom(room.ID) {
        return Vacation{}, fmt.Errorf("guest %s is not assigned to room %s: %w", guest.FullName, room.RoomNumber, ErrNotAssigned)
    }
    r, err := release(room, guest)
    if err != nil {
        return Vacation{}, err
    }
    g := guest
    g.RoomID = nil
    g.Status = model.GuestCheckedOut
    return Vacation{Guest: g, Room: r}, nil
}

// release frees the bed held by guest in room and recomputes the status.
func release(room model.Room, guest model.Guest) (model.Room, error) {
    r := room
    if guest.Status == model.GuestActive && r.OccupiedBeds > 0 {
        r.OccupiedBeds--
    }
    status, err := ComputeStatus(r.OccupiedBeds, r.SharingType, r.Status == model.RoomMaintenance)
    if err != nil {
        return model.Room{}, fmt.Errorf("room %s: %w", r.RoomNumber, err)
    }
    r.Status = status
    return r, nil
}

// SetMaintenance takes an empty room out of service.  Setting maintenance
// on a room already in maintenance is a no-op.
func SetMaintenance(room model.Room) (model.Room, error) {
    if room.OccupiedBeds != 0 {
        return model.Room{}, fmt.Errorf("room %s still has %d occupied beds: %w", room.RoomNumber, room.OccupiedBeds, ErrRoomOccupied)
    }
    r := room
    r.Status = model.RoomMaintenance
    return r, nil
}

// ClearMaintenance returns a room under maintenance to service as
// available.
func ClearMaintenance(room model.Room) (model.Room, error) {
    if room.Status != model.RoomMaintenance {
        return model.Room{}, fmt.Errorf("room %s is not under maintenance: %w", room.RoomNumber, ErrNotInMaintenance)
    }
    if room.OccupiedBeds != 0 {
        return model.Room{}, fmt.Errorf("room %s is under maintenance with %d occupied beds: %w", room.RoomNumber, room.OccupiedBeds, ErrCapacityExceeded)
    }
    r := room
    r.Status = model.RoomAvailable
    return r, nil
}

// Reactivate makes a checked-out or inactive guest active again.  The
// guest comes back without a room and must be assigned explicitly.
func Reactivate(guest model.Guest) (model.Guest, error) {
    if guest.Status == model.GuestActive {
        return model.Guest{}, fmt.Errorf("guest %s is already active: %w", guest.FullName, ErrAlreadyActive)
    }
    g := guest
    g.Status = model.GuestActive
    g.RoomID = nil
    return g, nil
}

// Deactivate puts an active guest on hold.  The guest becomes inactive
// with no room; a bed the guest held is freed.  room must be the guest's
// current room, or nil when the guest has none.
func Deactivate(guest model.Guest, room *model.Room) (Deactivation, error) {
    if guest.Status != model.GuestActive {
        return Deactivation{}, fmt.Errorf("guest %s is %s: %w", guest.FullName, guest.Status, ErrGuestNotActive)
    }
    g := guest
    g.Status = model.GuestInactive
    g.RoomID = nil
    if guest.RoomID == nil {
        return Deactivation{Guest: g}, nil
    }
    if room == nil || !guest.InRoom(room.ID) {
        return Deactivation{}, fmt.Errorf("guest %s: %w", guest.FullName, ErrTransferSource)
    }
    r, err := release(*room, guest)
    if err != nil {
        return Deactivation{}, err
    }
    return Deactivation{Guest: g, Room: &r}, nil
}

// Recompute rebuilds occupied_beds and status of room from the guest list.
// It repairs drift between stored counts and actual assignments.  A room
// under maintenance that turns out to have active guests loses the
// maintenance flag, since occupancy must be zero while in maintenance.
func Recompute(room model.Room, guests []model.Guest) (model.Room, error) {
    r := room
    r.OccupiedBeds = CountActive(room.ID, guests)
    maintenance := room.Status == model.RoomMaintenance && r.OccupiedBeds == 0
    status, err := ComputeStatus(r.OccupiedBeds, r.SharingType, maintenance)
    if err != nil {
        return model.Room{}, fmt.Errorf("room %s: %w", r.RoomNumber, err)
    }
    r.Status = status
    return r, nil
}

// Resize changes the bed count of room.  occupants is the current guest
// list of the room.  Shrinking below the number of active occupants fails
// with ErrRoomOccupied; otherwise counts and status are rebuilt as in
// Recompute.
func Resize(room model.Room, sharing int, occupants []model.Guest) (model.Room, error) {
    if sharing < 1 {
        return model.Room{}, fmt.Errorf("room %s cannot have %d beds: %w", room.RoomNumber, sharing, ErrCapacityExceeded)
    }
    if active := CountActive(room.ID, occupants); active > sharing {
        return model.Room{}, fmt.Errorf("room %s has %d active guests, cannot reduce to %d beds: %w", room.RoomNumber, active, sharing, ErrRoomOccupied)
    }
    r := room
    r.SharingType = sharing
    return Recompute(r, occupants)
}
