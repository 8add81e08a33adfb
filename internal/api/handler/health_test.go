package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/booking"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/class"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/waitlist"
)

func TestHealthHandler_Check(t *testing.T) {
	// Setup
	e := NewTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewHealthHandler()

	// Act
	err := h.Check(c)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"timestamp"`)
}

func TestNewHealthHandler(t *testing.T) {
	h := NewHealthHandler()
	assert.NotNil(t, h)
}

func TestToClassResponse(t *testing.T) {
	now := time.Now()
	cl := &class.Class{
		ID:              "class-123",
		Title:           "朝ヨガ",
		Description:     "初心者向け",
		Capacity:        20,
		Active:          true,
		WaitlistEnabled: true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	resp := toClassResponse(cl)

	assert.Equal(t, cl.ID, resp.ID)
	assert.Equal(t, cl.Title, resp.Title)
	assert.Equal(t, cl.Description, resp.Description)
	assert.Equal(t, cl.Capacity, resp.Capacity)
	assert.Equal(t, cl.Active, resp.Active)
	assert.Equal(t, cl.WaitlistEnabled, resp.WaitlistEnabled)
}

func TestToBookingResponse(t *testing.T) {
	b := booking.NewBooking("member-123", "class-456")
	b.ID = "booking-123"

	resp := toBookingResponse(b)

	assert.Equal(t, b.ID, resp.ID)
	assert.Equal(t, b.MemberID, resp.MemberID)
	assert.Equal(t, b.ClassID, resp.ClassID)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Nil(t, resp.CancelledAt)
}

func TestToWaitlistEntryResponse(t *testing.T) {
	e := waitlist.NewEntry("member-123", "class-456", 2)
	e.ID = "entry-123"
	e.Notify(24 * time.Hour)

	resp := toWaitlistEntryResponse(e)

	assert.Equal(t, e.ID, resp.ID)
	assert.Equal(t, e.MemberID, resp.MemberID)
	assert.Equal(t, e.ClassID, resp.ClassID)
	assert.Equal(t, 2, resp.Position)
	assert.True(t, resp.Notified)
	assert.NotNil(t, resp.NotifiedAt)
	assert.NotNil(t, resp.ConfirmDeadline)
}
