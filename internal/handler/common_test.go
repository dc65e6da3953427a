package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/openfms/facility-desk/internal/engine"
	"github.com/openfms/facility-desk/internal/model"
)

func execEngineError(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if handlerErr := engineError(c, err); handlerErr != nil {
		t.Fatalf("engineError returned error: %v", handlerErr)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	return rec, body
}

func TestEngineErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"forbidden", engine.ErrForbidden, http.StatusForbidden},
		{"not found", engine.ErrNotFound, http.StatusNotFound},
		{"not completed", engine.ErrNotCompletedYet, http.StatusConflict},
		{"empty remark", engine.ErrEmptyRemark, http.StatusBadRequest},
		{"bad time", engine.ErrInvalidTimeFormat, http.StatusBadRequest},
		{"bad interval", engine.ErrInvalidInterval, http.StatusBadRequest},
		{"unknown staff", engine.ErrUnknownStaff, http.StatusUnprocessableEntity},
		{"version mismatch", engine.ErrVersionMismatch, http.StatusConflict},
		{"storage down", engine.ErrRepositoryUnavailable, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, _ := execEngineError(t, tc.err)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestEngineErrorTransitionPayload(t *testing.T) {
	rec, body := execEngineError(t, &engine.TransitionError{
		From:    "PENDING",
		Event:   engine.EventComplete,
		Role:    model.RoleStaff,
		Allowed: []engine.Event{engine.EventAssign},
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if body["from"] != "PENDING" {
		t.Fatalf("from = %v", body["from"])
	}
	allowed, ok := body["allowed_events"].([]any)
	if !ok || len(allowed) != 1 || allowed[0] != "assign" {
		t.Fatalf("allowed_events = %v", body["allowed_events"])
	}
}

func TestEngineErrorSlotConflictPayload(t *testing.T) {
	rec, body := execEngineError(t, &engine.SlotConflictError{
		Room:          model.RoomAuditorium,
		WithBookingID: 42,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if body["room"] != "AUDITORIUM" {
		t.Fatalf("room = %v", body["room"])
	}
	if body["conflicts_with"] != float64(42) {
		t.Fatalf("conflicts_with = %v", body["conflicts_with"])
	}
}

func TestViewRequestAllowedEventsPerViewer(t *testing.T) {
	req := model.ServiceRequest{ID: 7, RequesterID: 3, Status: model.RequestAssigned}

	admin := viewRequest(req, model.Actor{ID: 1, Role: model.RoleAdmin})
	staff := viewRequest(req, model.Actor{ID: 2, Role: model.RoleStaff})
	user := viewRequest(req, model.Actor{ID: 3, Role: model.RoleUser})

	wantAdmin := []string{"assign", "mark_duplicate", "add_remark"}
	if len(admin.AllowedEvents) != len(wantAdmin) {
		t.Fatalf("admin events = %v", admin.AllowedEvents)
	}
	for i, ev := range wantAdmin {
		if admin.AllowedEvents[i] != ev {
			t.Fatalf("admin events = %v, want %v", admin.AllowedEvents, wantAdmin)
		}
	}

	wantStaff := []string{"assign", "complete"}
	if len(staff.AllowedEvents) != len(wantStaff) || staff.AllowedEvents[1] != "complete" {
		t.Fatalf("staff events = %v, want %v", staff.AllowedEvents, wantStaff)
	}

	// An assigned request offers the requester nothing until completion.
	if len(user.AllowedEvents) != 0 {
		t.Fatalf("user events = %v, want none", user.AllowedEvents)
	}
}

func TestViewBookingFacilitiesNeverNull(t *testing.T) {
	v := viewBooking(model.RoomBooking{ID: 1, Room: model.RoomAuditorium}, model.Actor{Role: model.RoleUser})
	if v.Facilities == nil {
		t.Fatal("facilities should render as [] not null")
	}
}
