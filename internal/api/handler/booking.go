package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/application"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/booking"
)

type BookingHandler struct {
	service BookingServiceInterface
}

func NewBookingHandler(s BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type CreateBookingRequest struct {
	ClassID string `json:"class_id" validate:"required"`
}

type BookingResponse struct {
	ID          string     `json:"id"`
	MemberID    string     `json:"member_id"`
	ClassID     string     `json:"class_id"`
	Status      string     `json:"status"`
	BookedAt    time.Time  `json:"booked_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

type CapacityResponse struct {
	ClassID     string `json:"class_id"`
	Capacity    int    `json:"capacity"`
	Occupied    int    `json:"occupied"`
	Free        int    `json:"free"`
	HasCapacity bool   `json:"has_capacity"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID: b.ID, MemberID: b.MemberID, ClassID: b.ClassID,
		Status: string(b.Status), BookedAt: b.BookedAt, CancelledAt: b.CancelledAt,
	}
}

// Create は会員のクラス予約を作成する
// POST /bookings
func (h *BookingHandler) Create(c echo.Context) error {
	memberID := c.Request().Header.Get("X-Member-ID")
	if memberID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "会員IDが必要です")
	}
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	b, err := h.service.CreateBooking(c.Request().Context(), application.CreateBookingInput{
		MemberID: memberID,
		ClassID:  req.ClassID,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toBookingResponse(b))
}

// GetByID は予約を取得する
// GET /bookings/:id
func (h *BookingHandler) GetByID(c echo.Context) error {
	b, err := h.service.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// Cancel は予約をキャンセルし、空き枠を解放する
// POST /bookings/:id/cancel
func (h *BookingHandler) Cancel(c echo.Context) error {
	b, err := h.service.CancelBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// ListMemberBookings は会員の予約一覧を取得する
// GET /bookings
func (h *BookingHandler) ListMemberBookings(c echo.Context) error {
	memberID := c.Request().Header.Get("X-Member-ID")
	if memberID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "会員IDが必要です")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	bookings, err := h.service.ListMemberBookings(c.Request().Context(), memberID, limit, offset)
	if err != nil {
		return toHTTPError(err)
	}
	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}

// ListClassBookings はクラスの予約一覧を取得する
// GET /classes/:id/bookings
func (h *BookingHandler) ListClassBookings(c echo.Context) error {
	bookings, err := h.service.ListClassBookings(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}

// QueryCapacity はクラスの定員・空き枠を照会する
// GET /classes/:id/capacity
func (h *BookingHandler) QueryCapacity(c echo.Context) error {
	classID := c.Param("id")
	info, err := h.service.QueryCapacity(c.Request().Context(), classID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, CapacityResponse{
		ClassID:     classID,
		Capacity:    info.Capacity,
		Occupied:    info.Occupied,
		Free:        info.Free,
		HasCapacity: info.HasCapacity,
	})
}
