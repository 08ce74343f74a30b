package model

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
    cases := map[string]Role{
        "admin":  RoleAdmin,
        " Staff": RoleStaff,
        "guest":  RoleGuest,
        "user":   RoleStaff,
    }
    for in, want := range cases {
        got, ok := ParseRole(in)
        assert.True(t, ok, in)
        assert.Equal(t, want, got, in)
    }
    _, ok := ParseRole("owner")
    assert.False(t, ok)
}

func TestEnumValidity(t *testing.T) {
    assert.True(t, RoomMaintenance.Valid())
    assert.False(t, RoomStatus("closed").Valid())
    assert.True(t, GuestCheckedOut.Valid())
    assert.False(t, GuestStatus("gone").Valid())
}

func TestRoomFreeBeds(t *testing.T) {
    assert.Equal(t, 2, Room{SharingType: 3, OccupiedBeds: 1, Status: RoomPartial}.FreeBeds())
    assert.Equal(t, 0, Room{SharingType: 2, OccupiedBeds: 2, Status: RoomFull}.FreeBeds())
    assert.Equal(t, 0, Room{SharingType: 2, Status: RoomMaintenance}.FreeBeds())
}
