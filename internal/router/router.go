package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/hostellog/hostel-admin/internal/handler"
	"github.com/hostellog/hostel-admin/internal/middleware"
)

// RegisterRoutes registers the unauthenticated health checks.
func RegisterRoutes(e *echo.Echo, ready echo.HandlerFunc) {
	e.GET("/healthz", handler.Health)
	if ready != nil {
		e.GET("/readyz", ready)
	}
}

// RegisterAuth registers the session endpoints.  Login and token exchange
// live under /v1/auth without a JWT; /v1/me needs one.  limit is applied
// to every auth route and keys anonymous callers by IP.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limit)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issues an access token and keeps the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Revokes one refresh token, or all of the bearer's when no body is sent.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret), limit)
	auth.GET("/me", a.Me)
	auth.POST("/me/password", a.ChangePassword)
}
