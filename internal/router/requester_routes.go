package router

import (
	"github.com/labstack/echo/v4"

	"github.com/openfms/facility-desk/internal/handler"
	"github.com/openfms/facility-desk/internal/middleware"
)

// RegisterRequester registers the endpoints every authenticated role
// may call: submitting requests and bookings, reading their own
// records, the remark ledger and the verification gate.  Visibility
// scoping (requesters only see their own records) lives in the engine,
// not here.
func RegisterRequester(e *echo.Echo, rh *handler.RequestHandler, bh *handler.BookingHandler, ah *handler.AttachmentHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN", "STAFF", "USER"),
	)

	// Service requests.
	g.POST("/requests", rh.Create)
	g.GET("/requests", rh.List)
	g.GET("/requests/:id", rh.Get)
	g.POST("/requests/:id/remarks", rh.AddRemark)
	g.GET("/requests/:id/remarks", rh.ListRemarks)
	g.POST("/requests/:id/verify", rh.Verify)
	g.POST("/remarks/:id/seen", rh.MarkRemarkSeen)

	// Room bookings.
	g.POST("/bookings", bh.Create)
	g.GET("/bookings", bh.List)
	g.GET("/bookings/:id", bh.Get)
	g.PATCH("/bookings/:id/remark", bh.SetRemark)

	// Attachments referenced by request bodies.
	g.POST("/attachments", ah.Upload)
	g.GET("/attachments/:ref", ah.Download)
}
