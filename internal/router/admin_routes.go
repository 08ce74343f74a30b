package router

import (
	"github.com/labstack/echo/v4"

	"github.com/hostellog/hostel-admin/internal/handler"
	"github.com/hostellog/hostel-admin/internal/middleware"
	"github.com/hostellog/hostel-admin/internal/model"
)

// RegisterAdmin registers hostel and account management.  Every route
// requires a valid JWT and the admin role.
func RegisterAdmin(e *echo.Echo, h *handler.HostelHandler, u *handler.UserHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		limit,
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Hostels ----
	g.POST("/hostels", h.Create)
	g.GET("/hostels", h.List)
	g.GET("/hostels/:id", h.Get)
	g.PUT("/hostels/:id", h.Update)
	g.PATCH("/hostels/:id", h.Patch)

	// ---- Users ----
	g.POST("/users", u.Create)
	g.GET("/users", u.List)
	g.DELETE("/users/:id", u.Delete)
	g.POST("/users/:id/password", u.ResetPassword)
}
