package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/application"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/booking"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/class"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/member"
)

// MockBookingService はBookingServiceInterfaceのモック
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CreateBooking(ctx context.Context, input application.CreateBookingInput) (*booking.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) ListMemberBookings(ctx context.Context, memberID string, limit, offset int) ([]*booking.Booking, error) {
	args := m.Called(ctx, memberID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingService) ListClassBookings(ctx context.Context, classID string) ([]*booking.Booking, error) {
	args := m.Called(ctx, classID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingService) QueryCapacity(ctx context.Context, classID string) (*application.CapacityInfo, error) {
	args := m.Called(ctx, classID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.CapacityInfo), args.Error(1)
}

func TestBookingHandler_Create(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常に予約を作成できる", func(t *testing.T) {
		mockService := new(MockBookingService)
		expected := booking.NewBooking("member-123", "class-123")
		expected.ID = "booking-123"

		mockService.On("CreateBooking", mock.Anything, application.CreateBookingInput{
			MemberID: "member-123",
			ClassID:  "class-123",
		}).Return(expected, nil)

		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{"class_id": "class-123"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("X-Member-ID", "member-123")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp BookingResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "booking-123", resp.ID)
		assert.Equal(t, "confirmed", resp.Status)

		mockService.AssertExpectations(t)
	})

	t.Run("会員IDヘッダーがない場合は401", func(t *testing.T) {
		handler := NewBookingHandler(new(MockBookingService))

		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{"class_id": "class-123"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("class_idがない場合はバリデーションエラー", func(t *testing.T) {
		handler := NewBookingHandler(new(MockBookingService))

		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("X-Member-ID", "member-123")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.Error(t, err)
	})

	t.Run("満員の場合は409", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("CreateBooking", mock.Anything, mock.AnythingOfType("application.CreateBookingInput")).
			Return(nil, class.ErrClassFull)

		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{"class_id": "class-123"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("X-Member-ID", "member-123")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusConflict, he.Code)
	})

	t.Run("二重予約の場合は409", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("CreateBooking", mock.Anything, mock.AnythingOfType("application.CreateBookingInput")).
			Return(nil, booking.ErrDuplicateBooking)

		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{"class_id": "class-123"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("X-Member-ID", "member-123")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusConflict, he.Code)
	})

	t.Run("プラン対象外の場合は403", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("CreateBooking", mock.Anything, mock.AnythingOfType("application.CreateBookingInput")).
			Return(nil, member.ErrClassNotInPlan)

		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{"class_id": "class-123"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("X-Member-ID", "member-123")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, he.Code)
	})
}

func TestBookingHandler_Cancel(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常にキャンセルできる", func(t *testing.T) {
		mockService := new(MockBookingService)
		cancelled := booking.NewBooking("member-123", "class-123")
		cancelled.ID = "booking-123"
		require.NoError(t, cancelled.Cancel())

		mockService.On("CancelBooking", mock.Anything, "booking-123").Return(cancelled, nil)

		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/bookings/booking-123/cancel", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("booking-123")

		err := handler.Cancel(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp BookingResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "cancelled", resp.Status)
		assert.NotNil(t, resp.CancelledAt)
	})

	t.Run("存在しない予約は404", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("CancelBooking", mock.Anything, "missing").Return(nil, booking.ErrBookingNotFound)

		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/bookings/missing/cancel", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("missing")

		err := handler.Cancel(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})

	t.Run("キャンセル済みの予約は400", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("CancelBooking", mock.Anything, "booking-123").
			Return(nil, booking.ErrBookingAlreadyCancelled)

		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/bookings/booking-123/cancel", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("booking-123")

		err := handler.Cancel(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})
}

func TestBookingHandler_QueryCapacity(t *testing.T) {
	e := NewTestEcho()

	mockService := new(MockBookingService)
	mockService.On("QueryCapacity", mock.Anything, "class-123").Return(&application.CapacityInfo{
		Capacity:    20,
		Occupied:    18,
		Free:        2,
		HasCapacity: true,
	}, nil)

	handler := NewBookingHandler(mockService)

	req := httptest.NewRequest(http.MethodGet, "/classes/class-123/capacity", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("class-123")

	err := handler.QueryCapacity(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp CapacityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "class-123", resp.ClassID)
	assert.Equal(t, 20, resp.Capacity)
	assert.Equal(t, 18, resp.Occupied)
	assert.Equal(t, 2, resp.Free)
	assert.True(t, resp.HasCapacity)
}

func TestBookingHandler_ListMemberBookings(t *testing.T) {
	e := NewTestEcho()

	mockService := new(MockBookingService)
	b := booking.NewBooking("member-123", "class-123")
	b.ID = "booking-1"
	mockService.On("ListMemberBookings", mock.Anything, "member-123", 10, 5).
		Return([]*booking.Booking{b}, nil)

	handler := NewBookingHandler(mockService)

	req := httptest.NewRequest(http.MethodGet, "/bookings?limit=10&offset=5", nil)
	req.Header.Set("X-Member-ID", "member-123")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.ListMemberBookings(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "booking-1", resp[0].ID)
}
