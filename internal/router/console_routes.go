package router

import (
	"github.com/labstack/echo/v4"

	"github.com/hostellog/hostel-admin/internal/access"
	"github.com/hostellog/hostel-admin/internal/handler"
	"github.com/hostellog/hostel-admin/internal/middleware"
)

// Console groups the handlers behind the hostel console.
type Console struct {
	Floors    *handler.FloorHandler
	Rooms     *handler.RoomHandler
	Guests    *handler.GuestHandler
	Dashboard *handler.DashboardHandler
}

// RegisterConsole registers the floor, room, guest and dashboard routes.
// Each route is gated by the access policy action it needs; handlers
// then scope every query to the caller's hostel.  statsCache wraps only
// the dashboard stats.
func RegisterConsole(e *echo.Echo, con Console, jwtSecret string, limit, statsCache echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret), limit)

	viewRooms := middleware.RequireAction(access.ViewRooms)
	manageRooms := middleware.RequireAction(access.ManageRooms)
	viewGuests := middleware.RequireAction(access.ViewGuests)
	manageGuests := middleware.RequireAction(access.ManageGuests)
	occupancy := middleware.RequireAction(access.ManageOccupancy)
	dashboard := middleware.RequireAction(access.ViewDashboard)

	// ---- Floors ----
	g.POST("/floors", con.Floors.Create, manageRooms)
	g.GET("/floors", con.Floors.List, viewRooms)
	g.PUT("/floors/:id", con.Floors.Update, manageRooms)
	g.DELETE("/floors/:id", con.Floors.Delete, manageRooms)

	// ---- Rooms ----
	g.POST("/rooms", con.Rooms.Create, manageRooms)
	g.GET("/rooms", con.Rooms.List, viewRooms)
	g.GET("/rooms/:id", con.Rooms.Get, viewRooms)
	g.PUT("/rooms/:id", con.Rooms.Update, manageRooms)
	g.DELETE("/rooms/:id", con.Rooms.Delete, manageRooms)
	g.POST("/rooms/:id/maintenance", con.Rooms.SetMaintenance, occupancy)
	g.DELETE("/rooms/:id/maintenance", con.Rooms.ClearMaintenance, occupancy)

	// ---- Guests ----
	g.POST("/guests", con.Guests.Create, manageGuests)
	g.GET("/guests", con.Guests.List, viewGuests)
	g.GET("/guests/export", con.Guests.Export, viewGuests)
	g.GET("/guests/search", con.Guests.Search, viewGuests)
	g.GET("/guests/:id", con.Guests.Get, viewGuests)
	g.PUT("/guests/:id", con.Guests.Update, manageGuests)
	g.DELETE("/guests/:id", con.Guests.Delete, manageGuests)
	g.POST("/guests/:id/assign", con.Guests.Assign, occupancy)
	g.POST("/guests/:id/vacate", con.Guests.Vacate, occupancy)
	g.POST("/guests/:id/reactivate", con.Guests.Reactivate, occupancy)
	g.POST("/guests/:id/deactivate", con.Guests.Deactivate, occupancy)

	// ---- Dashboard ----
	g.GET("/dashboard/stats", con.Dashboard.Stats, dashboard, statsCache)
	g.GET("/dashboard/activity", con.Dashboard.Activity, dashboard)
}
