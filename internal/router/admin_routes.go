package router

import (
	"github.com/labstack/echo/v4"

	"github.com/openfms/facility-desk/internal/handler"
	"github.com/openfms/facility-desk/internal/middleware"
)

// RegisterAdmin registers the admin-only mutations: duplicate marking,
// booking confirmation and cancellation, plus the cached staff
// directory used by the assignment screens.
func RegisterAdmin(e *echo.Echo, rh *handler.RequestHandler, bh *handler.BookingHandler, sh *handler.StaffHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	g.PATCH("/requests/:id/duplicate", rh.MarkDuplicate)
	g.PATCH("/bookings/:id/confirm", bh.Confirm)
	g.PATCH("/bookings/:id/cancel", bh.Cancel)

	// The directory is also needed by staff assignment screens, so its
	// gate is ADMIN+STAFF rather than ADMIN only.
	dir := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN", "STAFF"),
	)
	if cache != nil {
		dir.GET("/staff", sh.List, cache)
	} else {
		dir.GET("/staff", sh.List)
	}
}
