package access

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/hostellog/hostel-admin/internal/model"
)

func ptr(v uint64) *uint64 { return &v }

func TestScopeFor(t *testing.T) {
    s, err := ScopeFor(model.RoleAdmin, nil)
    require.NoError(t, err)
    assert.True(t, s.All)
    assert.True(t, s.Allows(1))
    assert.True(t, s.Allows(42))

    s, err = ScopeFor(model.RoleStaff, ptr(7))
    require.NoError(t, err)
    assert.False(t, s.All)
    assert.True(t, s.Allows(7))
    assert.False(t, s.Allows(8))
    assert.False(t, s.Allows(0))

    _, err = ScopeFor(model.RoleStaff, nil)
    assert.ErrorIs(t, err, ErrNoHostel)
    _, err = ScopeFor(model.RoleGuest, ptr(0))
    assert.ErrorIs(t, err, ErrNoHostel)
    _, err = ScopeFor("owner", ptr(1))
    assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestScopeFilter(t *testing.T) {
    admin := Scope{Role: model.RoleAdmin, All: true}
    id, ok := admin.Filter(0)
    assert.True(t, ok)
    assert.Zero(t, id)
    id, ok = admin.Filter(3)
    assert.True(t, ok)
    assert.Equal(t, uint64(3), id)

    staff := Scope{Role: model.RoleStaff, HostelID: 5}
    id, ok = staff.Filter(0)
    assert.True(t, ok)
    assert.Equal(t, uint64(5), id)
    id, ok = staff.Filter(5)
    assert.True(t, ok)
    assert.Equal(t, uint64(5), id)
    _, ok = staff.Filter(6)
    assert.False(t, ok)
}

func TestCan(t *testing.T) {
    assert.True(t, Can(model.RoleAdmin, ManageUsers))
    assert.True(t, Can(model.RoleStaff, ManageOccupancy))
    assert.False(t, Can(model.RoleStaff, ManageHostels))
    assert.False(t, Can(model.RoleGuest, ManageGuests))
    assert.True(t, Can(model.RoleGuest, ViewDashboard))
    assert.False(t, Can("unknown", ViewDashboard))
}

func TestVisibleRoutes(t *testing.T) {
    paths := func(rs []Route) []string {
        out := make([]string, 0, len(rs))
        for _, r := range rs {
            out = append(out, r.Path)
        }
        return out
    }
    assert.Equal(t, []string{"/dashboard", "/rooms", "/guests", "/settings"}, paths(VisibleRoutes(model.RoleAdmin)))
    assert.Equal(t, []string{"/dashboard", "/rooms", "/guests"}, paths(VisibleRoutes(model.RoleStaff)))
    assert.Equal(t, []string{"/dashboard", "/rooms"}, paths(VisibleRoutes(model.RoleGuest)))
}
