package occupancy

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/hostellog/hostel-admin/internal/model"
)

func u64(v uint64) *uint64 { return &v }

func room(id uint64, number string, sharing, occupied int, status model.RoomStatus) model.Room {
    return model.Room{ID: id, HostelID: 1, FloorID: 1, RoomNumber: number, SharingType: sharing, OccupiedBeds: occupied, Status: status}
}

func guest(id uint64, roomID *uint64, status model.GuestStatus) model.Guest {
    return model.Guest{ID: id, HostelID: 1, RoomID: roomID, FullName: "Guest", Status: status}
}

// occupantsOf builds n active guests assigned to roomID, ids starting at base.
func occupantsOf(roomID uint64, n int, base uint64) []model.Guest {
    out := make([]model.Guest, 0, n)
    for i := 0; i < n; i++ {
        out = append(out, guest(base+uint64(i), u64(roomID), model.GuestActive))
    }
    return out
}

func TestComputeStatus(t *testing.T) {
    cases := []struct {
        name        string
        occupied    int
        sharing     int
        maintenance bool
        want        model.RoomStatus
    }{
        {"empty", 0, 3, false, model.RoomAvailable},
        {"partial", 1, 3, false, model.RoomPartial},
        {"full", 3, 3, false, model.RoomFull},
        {"single full", 1, 1, false, model.RoomFull},
        {"maintenance", 0, 2, true, model.RoomMaintenance},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            got, err := ComputeStatus(tc.occupied, tc.sharing, tc.maintenance)
            require.NoError(t, err)
            assert.Equal(t, tc.want, got)
        })
    }
}

func TestComputeStatus_BoundaryProperties(t *testing.T) {
    for n := 1; n <= 12; n++ {
        got, err := ComputeStatus(0, n, false)
        require.NoError(t, err)
        assert.Equal(t, model.RoomAvailable, got, "sharing=%d", n)

        got, err = ComputeStatus(n, n, false)
        require.NoError(t, err)
        assert.Equal(t, model.RoomFull, got, "sharing=%d", n)
    }
}

func TestComputeStatus_CapacityExceededNeverClamps(t *testing.T) {
    _, err := ComputeStatus(3, 2, false)
    assert.ErrorIs(t, err, ErrCapacityExceeded)

    _, err = ComputeStatus(-1, 2, false)
    assert.ErrorIs(t, err, ErrCapacityExceeded)

    _, err = ComputeStatus(0, 0, false)
    assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestAssign_FillsLastBed(t *testing.T) {
    r := room(10, "101", 2, 1, model.RoomPartial)
    g := guest(1, nil, model.GuestActive)

    res, err := Assign(g, r, occupantsOf(10, 1, 100), nil)
    require.NoError(t, err)

    assert.Equal(t, 2, res.Room.OccupiedBeds)
    assert.Equal(t, model.RoomFull, res.Room.Status)
    require.NotNil(t, res.Guest.RoomID)
    assert.Equal(t, uint64(10), *res.Guest.RoomID)
    assert.False(t, res.Transfer())
    // inputs are untouched
    assert.Nil(t, g.RoomID)
    assert.Equal(t, 1, r.OccupiedBeds)
}

func TestAssign_RoomFull(t *testing.T) {
    r := room(10, "102", 2, 2, model.RoomFull)
    _, err := Assign(guest(1, nil, model.GuestActive), r, occupantsOf(10, 2, 100), nil)
    require.ErrorIs(t, err, ErrRoomFull)
    assert.Contains(t, err.Error(), "room 102 has no available beds")
    assert.Equal(t, 2, r.OccupiedBeds)
}

func TestAssign_IgnoresInactiveAndForeignOccupants(t *testing.T) {
    r := room(10, "103", 2, 1, model.RoomPartial)
    occupants := append(occupantsOf(10, 1, 100),
        guest(200, u64(10), model.GuestInactive),
        guest(201, u64(10), model.GuestCheckedOut),
        guest(202, u64(99), model.GuestActive),
    )
    res, err := Assign(guest(1, nil, model.GuestActive), r, occupants, nil)
    require.NoError(t, err)
    assert.Equal(t, 2, res.Room.OccupiedBeds)
}

func TestAssign_RejectsMaintenanceRoom(t *testing.T) {
    r, err := SetMaintenance(room(10, "104", 3, 0, model.RoomAvailable))
    require.NoError(t, err)
    assert.Equal(t, model.RoomMaintenance, r.Status)

    _, err = Assign(guest(1, nil, model.GuestActive), r, nil, nil)
    assert.ErrorIs(t, err, ErrRoomInMaintenance)
}

func TestAssign_RejectsInactiveGuest(t *testing.T) {
    r := room(10, "105", 2, 0, model.RoomAvailable)
    for _, st := range []model.GuestStatus{model.GuestInactive, model.GuestCheckedOut} {
        _, err := Assign(guest(1, nil, st), r, nil, nil)
        assert.ErrorIs(t, err, ErrGuestNotActive, string(st))
    }
}

func TestAssign_RejectsOtherHostel(t *testing.T) {
    r := room(10, "106", 2, 0, model.RoomAvailable)
    r.HostelID = 2
    _, err := Assign(guest(1, nil, model.GuestActive), r, nil, nil)
    assert.ErrorIs(t, err, ErrHostelMismatch)
}

func TestAssign_SameRoomRejected(t *testing.T) {
    r := room(10, "107", 2, 1, model.RoomPartial)
    g := guest(1, u64(10), model.GuestActive)
    _, err := Assign(g, r, []model.Guest{g}, &r)
    assert.ErrorIs(t, err, ErrAlreadyAssigned)
}

func TestAssign_DetectsOverfullRoom(t *testing.T) {
    r := room(10, "108", 2, 3, model.RoomFull)
    _, err := Assign(guest(1, nil, model.GuestActive), r, occupantsOf(10, 3, 100), nil)
    assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestAssign_Transfer(t *testing.T) {
    a := room(1, "A1", 2, 2, model.RoomFull)
    b := room(2, "B1", 3, 1, model.RoomPartial)
    g := guest(7, u64(1), model.GuestActive)

    res, err := Assign(g, b, occupantsOf(2, 1, 100), &a)
    require.NoError(t, err)
    require.True(t, res.Transfer())

    assert.Equal(t, 1, res.Previous.OccupiedBeds)
    assert.Equal(t, model.RoomPartial, res.Previous.Status)
    assert.Equal(t, 2, res.Room.OccupiedBeds)
    assert.Equal(t, model.RoomPartial, res.Room.Status)
    assert.Equal(t, uint64(2), *res.Guest.RoomID)
}

func TestAssign_TransferIsAllOrNothing(t *testing.T) {
    a := room(1, "A1", 2, 1, model.RoomPartial)
    b := room(2, "B1", 1, 1, model.RoomFull)
    g := guest(7, u64(1), model.GuestActive)

    res, err := Assign(g, b, occupantsOf(2, 1, 100), &a)
    require.ErrorIs(t, err, ErrRoomFull)
    assert.Nil(t, res.Previous)
    assert.Equal(t, 1, a.OccupiedBeds)
    assert.Equal(t, model.RoomPartial, a.Status)
}

func TestAssign_TransferNeedsSourceRoom(t *testing.T) {
    b := room(2, "B1", 2, 0, model.RoomAvailable)
    other := room(3, "C1", 2, 1, model.RoomPartial)
    g := guest(7, u64(1), model.GuestActive)

    _, err := Assign(g, b, nil, nil)
    assert.ErrorIs(t, err, ErrTransferSource)
    _, err = Assign(g, b, nil, &other)
    assert.ErrorIs(t, err, ErrTransferSource)
}

func TestVacate(t *testing.T) {
    r := room(10, "201", 4, 3, model.RoomPartial)
    g := guest(1, u64(10), model.GuestActive)

    res, err := Vacate(g, r)
    require.NoError(t, err)
    assert.Equal(t, 2, res.Room.OccupiedBeds)
    assert.Equal(t, model.RoomPartial, res.Room.Status)
    assert.Equal(t, model.GuestCheckedOut, res.Guest.Status)
    assert.Nil(t, res.Guest.RoomID)
}

func TestVacate_LastGuestMakesRoomAvailable(t *testing.T) {
    res, err := Vacate(guest(1, u64(10), model.GuestActive), room(10, "202", 2, 1, model.RoomPartial))
    require.NoError(t, err)
    assert.Equal(t, 0, res.Room.OccupiedBeds)
    assert.Equal(t, model.RoomAvailable, res.Room.Status)
}

func TestVacate_TwiceIsRejected(t *testing.T) {
    r := room(10, "203", 2, 2, model.RoomFull)
    first, err := Vacate(guest(1, u64(10), model.GuestActive), r)
    require.NoError(t, err)

    _, err = Vacate(first.Guest, first.Room)
    require.ErrorIs(t, err, ErrNotAssigned)
    assert.Equal(t, 1, first.Room.OccupiedBeds)
}

func TestVacate_InactiveGuestDoesNotFreeBed(t *testing.T) {
    res, err := Vacate(guest(1, u64(10), model.GuestInactive), room(10, "204", 2, 1, model.RoomPartial))
    require.NoError(t, err)
    assert.Equal(t, 1, res.Room.OccupiedBeds)
}

func TestVacate_FloorsAtZero(t *testing.T) {
    res, err := Vacate(guest(1, u64(10), model.GuestActive), room(10, "205", 2, 0, model.RoomAvailable))
    require.NoError(t, err)
    assert.Equal(t, 0, res.Room.OccupiedBeds)
    assert.Equal(t, model.RoomAvailable, res.Room.Status)
}

func TestSetMaintenance_OccupiedRoomRejected(t *testing.T) {
    r := room(10, "301", 2, 1, model.RoomPartial)
    _, err := SetMaintenance(r)
    require.ErrorIs(t, err, ErrRoomOccupied)
    assert.Equal(t, model.RoomPartial, r.Status)
}

func TestClearMaintenance(t *testing.T) {
    r, err := SetMaintenance(room(10, "302", 3, 0, model.RoomAvailable))
    require.NoError(t, err)

    r, err = ClearMaintenance(r)
    require.NoError(t, err)
    assert.Equal(t, model.RoomAvailable, r.Status)

    _, err = ClearMaintenance(r)
    assert.ErrorIs(t, err, ErrNotInMaintenance)
}

func TestReactivate(t *testing.T) {
    g, err := Reactivate(guest(1, nil, model.GuestCheckedOut))
    require.NoError(t, err)
    assert.Equal(t, model.GuestActive, g.Status)
    assert.Nil(t, g.RoomID)

    _, err = Reactivate(g)
    assert.ErrorIs(t, err, ErrAlreadyActive)
}

func TestDeactivate(t *testing.T) {
    rm := room(3, "102", 2, 2, model.RoomFull)
    d, err := Deactivate(guest(10, u64(3), model.GuestActive), &rm)
    require.NoError(t, err)
    assert.Equal(t, model.GuestInactive, d.Guest.Status)
    assert.Nil(t, d.Guest.RoomID)
    require.NotNil(t, d.Room)
    assert.Equal(t, 1, d.Room.OccupiedBeds)
    assert.Equal(t, model.RoomPartial, d.Room.Status)
    assert.Equal(t, 2, rm.OccupiedBeds, "input room is not mutated")

    d, err = Deactivate(guest(11, nil, model.GuestActive), nil)
    require.NoError(t, err)
    assert.Nil(t, d.Room)
    assert.Equal(t, model.GuestInactive, d.Guest.Status)
}

func TestDeactivate_Rejects(t *testing.T) {
    _, err := Deactivate(guest(10, nil, model.GuestCheckedOut), nil)
    assert.ErrorIs(t, err, ErrGuestNotActive)

    other := room(4, "104", 2, 1, model.RoomPartial)
    _, err = Deactivate(guest(10, u64(3), model.GuestActive), &other)
    assert.ErrorIs(t, err, ErrTransferSource)

    _, err = Deactivate(guest(10, u64(3), model.GuestActive), nil)
    assert.ErrorIs(t, err, ErrTransferSource)
}

func TestRecompute(t *testing.T) {
    r := room(10, "401", 3, 0, model.RoomAvailable)
    guests := append(occupantsOf(10, 2, 100), guest(300, u64(10), model.GuestCheckedOut))

    got, err := Recompute(r, guests)
    require.NoError(t, err)
    assert.Equal(t, 2, got.OccupiedBeds)
    assert.Equal(t, model.RoomPartial, got.Status)

    _, err = Recompute(room(10, "401", 1, 0, model.RoomAvailable), guests)
    assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestRecompute_KeepsEmptyMaintenance(t *testing.T) {
    got, err := Recompute(room(10, "402", 2, 0, model.RoomMaintenance), nil)
    require.NoError(t, err)
    assert.Equal(t, model.RoomMaintenance, got.Status)
}

// TestInvariantsHoldAcrossOperations drives a room through a sequence of
// operations and checks the occupancy invariants after every step.
func TestInvariantsHoldAcrossOperations(t *testing.T) {
    r := room(10, "501", 3, 0, model.RoomAvailable)
    var guests []model.Guest

    check := func() {
        t.Helper()
        assert.GreaterOrEqual(t, r.OccupiedBeds, 0)
        assert.LessOrEqual(t, r.OccupiedBeds, r.SharingType)
        assert.Equal(t, CountActive(r.ID, guests), r.OccupiedBeds)
        if r.Status == model.RoomMaintenance {
            assert.Zero(t, r.OccupiedBeds)
        }
        if r.OccupiedBeds > 0 {
            assert.Contains(t, []model.RoomStatus{model.RoomPartial, model.RoomFull}, r.Status)
        }
    }

    for i := uint64(1); i <= 4; i++ {
        res, err := Assign(guest(i, nil, model.GuestActive), r, guests, nil)
        if i == 4 {
            require.ErrorIs(t, err, ErrRoomFull)
            check()
            continue
        }
        require.NoError(t, err)
        r = res.Room
        guests = append(guests, res.Guest)
        check()
    }

    for i := range guests {
        res, err := Vacate(guests[i], r)
        require.NoError(t, err)
        r = res.Room
        guests[i] = res.Guest
        check()
    }

    var err error
    r, err = SetMaintenance(r)
    require.NoError(t, err)
    check()
    r, err = ClearMaintenance(r)
    require.NoError(t, err)
    check()
}

func TestResize(t *testing.T) {
    r := room(7, "107", 3, 2, model.RoomPartial)
    occ := occupantsOf(7, 2, 10)

    shrunk, err := Resize(r, 2, occ)
    require.NoError(t, err)
    assert.Equal(t, 2, shrunk.SharingType)
    assert.Equal(t, model.RoomFull, shrunk.Status)

    grown, err := Resize(r, 4, occ)
    require.NoError(t, err)
    assert.Equal(t, model.RoomPartial, grown.Status)
    assert.Equal(t, 2, grown.OccupiedBeds)

    _, err = Resize(r, 1, occ)
    assert.ErrorIs(t, err, ErrRoomOccupied)

    _, err = Resize(r, 0, nil)
    assert.ErrorIs(t, err, ErrCapacityExceeded)

    m, err := Resize(room(8, "108", 2, 0, model.RoomMaintenance), 4, nil)
    require.NoError(t, err)
    assert.Equal(t, model.RoomMaintenance, m.Status)
}
