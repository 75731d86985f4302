package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	bookingRepo "planora/database/repository/booking"
	"planora/models"
	"planora/services/booking"

	"github.com/gin-gonic/gin"
)

const createBookingBody = `{
	"clientId": "c1",
	"agentId": "a1",
	"serviceCategory": "plumbing",
	"start": "2026-09-01T10:00:00Z",
	"end": "2026-09-01T12:00:00Z"
}`

func TestCreateBookingBlocked(t *testing.T) {
	blocked := &booking.ConflictBlockedError{Conflicts: []models.Conflict{
		{Type: models.ConflictDoubleBooking, Severity: models.SeverityCritical},
	}}
	h := NewBookingHandler(&fakeBookingService{err: blocked})

	w := postJSON(h.CreateBookingHandler, createBookingBody)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Conflicts []models.Conflict `json:"conflicts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if len(resp.Conflicts) != 1 {
		t.Errorf("blocking conflicts should be in the response, got %d", len(resp.Conflicts))
	}
}

func TestCreateBookingWithWarnings(t *testing.T) {
	svc := &fakeBookingService{
		booking: &models.Booking{ID: "b1", AgentID: "a1"},
		warnings: []models.Conflict{
			{Type: models.ConflictTravelTime, Severity: models.SeverityMedium},
		},
	}
	h := NewBookingHandler(svc)

	w := postJSON(h.CreateBookingHandler, createBookingBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Booking  *models.Booking   `json:"booking"`
		Warnings []models.Conflict `json:"warnings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.Booking == nil || resp.Booking.ID != "b1" {
		t.Errorf("created booking missing from response: %+v", resp.Booking)
	}
	if len(resp.Warnings) != 1 {
		t.Errorf("non-blocking conflicts should surface as warnings, got %d", len(resp.Warnings))
	}
}

func TestCreateBookingRejectsIncompleteInput(t *testing.T) {
	h := NewBookingHandler(&fakeBookingService{})

	w := postJSON(h.CreateBookingHandler, `{"clientId":"c1"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetBookingNotFound(t *testing.T) {
	h := NewBookingHandler(&fakeBookingService{err: bookingRepo.ErrNotFound})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: "ghost"}}
	h.GetBookingHandler(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestWithdrawPrefersAuthenticatedSubject(t *testing.T) {
	svc := &fakeBookingService{
		request: &models.ReplacementRequest{ID: "req-1", Status: models.ReplacementPending},
	}
	h := NewBookingHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"agentId":"spoofed","reason":"sick"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "b1"}}
	c.Set("subjectID", "real-agent")
	h.WithdrawAgentHandler(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if svc.lastAgentID != "real-agent" {
		t.Errorf("token identity should win over the body, got %q", svc.lastAgentID)
	}
}

func TestWithdrawMissingIdentity(t *testing.T) {
	h := NewBookingHandler(&fakeBookingService{})

	w := postParam(h.WithdrawAgentHandler, "b1", `{"reason":"sick"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestWithdrawNotUpcoming(t *testing.T) {
	h := NewBookingHandler(&fakeBookingService{err: booking.ErrNotUpcoming})

	w := postParam(h.WithdrawAgentHandler, "b1", `{"agentId":"a1"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}
