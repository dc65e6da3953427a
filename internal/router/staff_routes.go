package router

import (
	"github.com/labstack/echo/v4"

	"github.com/openfms/facility-desk/internal/handler"
	"github.com/openfms/facility-desk/internal/middleware"
)

// RegisterStaff registers the endpoints for assigned workers: the
// personal work queue, completion and assignment.  Assignment is open
// to admins too, matching the engine's gate.
func RegisterStaff(e *echo.Echo, rh *handler.RequestHandler, bh *handler.BookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN", "STAFF"),
	)

	g.GET("/requests/assigned", rh.ListAssigned)
	g.PATCH("/requests/:id/complete", rh.Complete)
	g.PATCH("/requests/:id/assign", rh.Assign)
	g.PATCH("/bookings/:id/assign", bh.Assign)
}
