// Package router maps HTTP routes to handlers and applies the
// per-group auth middleware.  Role gates here are a first filter; the
// engine re-checks every mutation against its transition table.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/openfms/facility-desk/internal/handler"
	"github.com/openfms/facility-desk/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo) {
	// Liveness probe for load balancers and monitoring.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the session endpoints.  Register, login and
// the refresh flows are open; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotating refresh: the presented token is revoked and a new pair
	// is issued.
	g.POST("/refresh", a.Refresh)
	// Non-rotating: a new access token only.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout takes either a refresh_token body (revokes that session)
	// or a bearer token (revokes all sessions), so it is registered
	// twice: once open, once behind JWTAuth.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.POST("/logout", a.Logout)
}
