// Package access maps user roles to the hostels and actions they may see.
// Admins work across every hostel; staff and guest accounts are confined
// to the hostel they belong to.  Every store query made on behalf of a
// non-admin must go through a Scope.
package access

import (
    "errors"

    "github.com/hostellog/hostel-admin/internal/model"
)

var (
    // ErrNoHostel is returned when a non-admin account has no hostel.
    ErrNoHostel = errors.New("account is not linked to a hostel")
    // ErrUnknownRole is returned for roles outside the canonical enum.
    ErrUnknownRole = errors.New("unknown role")
)

// Scope is the set of hostels visible to a caller.
type Scope struct {
    Role     model.Role
    HostelID uint64 // zero when All is true
    All      bool
}

// ScopeFor builds the scope of a user from its role and hostel.
func ScopeFor(role model.Role, hostelID *uint64) (Scope, error) {
    switch role {
    case model.RoleAdmin:
        return Scope{Role: role, All: true}, nil
    case model.RoleStaff, model.RoleGuest:
        if hostelID == nil || *hostelID == 0 {
            return Scope{}, ErrNoHostel
        }
        return Scope{Role: role, HostelID: *hostelID}, nil
    }
    return Scope{}, ErrUnknownRole
}

// Allows reports whether records of hostelID are visible in the scope.
func (s Scope) Allows(hostelID uint64) bool {
    return s.All || (hostelID != 0 && s.HostelID == hostelID)
}

// Filter resolves the hostel filter a list query must use.  Admins may
// pass 0 to see all hostels.  A non-admin always gets its own hostel;
// asking for another one fails.
func (s Scope) Filter(requested uint64) (uint64, bool) {
    if s.All {
        return requested, true
    }
    if requested != 0 && requested != s.HostelID {
        return 0, false
    }
    return s.HostelID, true
}

// Action is something a user can do in the console.
type Action string

const (
    ViewDashboard   Action = "dashboard:view"
    ViewRooms       Action = "rooms:view"
    ManageRooms     Action = "rooms:manage"
    ViewGuests      Action = "guests:view"
    ManageGuests    Action = "guests:manage"
    ManageOccupancy Action = "occupancy:manage"
    ManageHostels   Action = "hostels:manage"
    ManageUsers     Action = "users:manage"
    ManageSettings  Action = "settings:manage"
)

var permissions = map[model.Role]map[Action]bool{
    model.RoleAdmin: {
        ViewDashboard: true, ViewRooms: true, ManageRooms: true,
        ViewGuests: true, ManageGuests: true, ManageOccupancy: true,
        ManageHostels: true, ManageUsers: true, ManageSettings: true,
    },
    model.RoleStaff: {
        ViewDashboard: true, ViewRooms: true, ManageRooms: true,
        ViewGuests: true, ManageGuests: true, ManageOccupancy: true,
    },
    model.RoleGuest: {
        ViewDashboard: true, ViewRooms: true,
    },
}

// Can reports whether role may perform action.
func Can(role model.Role, action Action) bool {
    return permissions[role][action]
}

// Route is a console navigation entry.
type Route struct {
    Label string `json:"label"`
    Path  string `json:"path"`
}

var routes = []struct {
    Route
    needs Action
}{
    {Route{"Dashboard", "/dashboard"}, ViewDashboard},
    {Route{"Rooms", "/rooms"}, ViewRooms},
    {Route{"Guests", "/guests"}, ViewGuests},
    {Route{"Settings", "/settings"}, ManageSettings},
}

// VisibleRoutes returns the navigation entries shown to role.
func VisibleRoutes(role model.Role) []Route {
    out := make([]Route, 0, len(routes))
    for _, r := range routes {
        if Can(role, r.needs) {
            out = append(out, r.Route)
        }
    }
    return out
}
