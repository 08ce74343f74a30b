package occupancy

import "errors"

// Sentinel errors returned by the ledger.  They are always wrapped with a
// message naming the room or guest involved, so callers can show
// err.Error() to the user and still branch with errors.Is.
var (
    // ErrCapacityExceeded signals an invariant violation: a room holds more
    // active guests than it has beds.  It is never produced by a valid
    // request and indicates a broken concurrency guard or manual edits.
    ErrCapacityExceeded = errors.New("capacity exceeded")
    // ErrRoomFull is returned when an assignment targets a room with no
    // free bed.
    ErrRoomFull = errors.New("room full")
    // ErrRoomInMaintenance is returned when an assignment targets a room
    // that is under maintenance.
    ErrRoomInMaintenance = errors.New("room in maintenance")
    // ErrRoomOccupied is returned when maintenance is requested for a room
    // that still has guests.
    ErrRoomOccupied = errors.New("room occupied")
    // ErrNotInMaintenance is returned when clearing maintenance on a room
    // that is not under maintenance.
    ErrNotInMaintenance = errors.New("room not in maintenance")
    // ErrNotAssigned is returned when vacating a guest from a room they are
    // not assigned to.
    ErrNotAssigned = errors.New("guest not assigned to room")
    // ErrGuestNotActive is returned when assigning a guest whose status is
    // not active.
    ErrGuestNotActive = errors.New("guest not active")
    // ErrAlreadyAssigned is returned when assigning a guest to the room
    // they already occupy.
    ErrAlreadyAssigned = errors.New("guest already assigned to room")
    // ErrAlreadyActive is returned when reactivating an active guest.
    ErrAlreadyActive = errors.New("guest already active")
    // ErrHostelMismatch is returned when guest and room belong to
    // different hostels.
    ErrHostelMismatch = errors.New("hostel mismatch")
    // ErrTransferSource is returned when a guest already has a room but the
    // caller did not supply that room for the transfer.
    ErrTransferSource = errors.New("transfer source room mismatch")
)
