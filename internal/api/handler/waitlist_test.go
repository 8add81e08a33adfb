package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/booking"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/class"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/waitlist"
)

// MockWaitlistService はWaitlistServiceInterfaceのモック
type MockWaitlistService struct {
	mock.Mock
}

func (m *MockWaitlistService) EnableWaitlist(ctx context.Context, classID string) (*class.Class, error) {
	args := m.Called(ctx, classID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*class.Class), args.Error(1)
}

func (m *MockWaitlistService) DisableWaitlist(ctx context.Context, classID string) (*class.Class, error) {
	args := m.Called(ctx, classID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*class.Class), args.Error(1)
}

func (m *MockWaitlistService) Enqueue(ctx context.Context, memberID, classID string) (*waitlist.Entry, error) {
	args := m.Called(ctx, memberID, classID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*waitlist.Entry), args.Error(1)
}

func (m *MockWaitlistService) Withdraw(ctx context.Context, memberID, classID string) error {
	args := m.Called(ctx, memberID, classID)
	return args.Error(0)
}

func (m *MockWaitlistService) ListByClass(ctx context.Context, classID string) ([]*waitlist.Entry, error) {
	args := m.Called(ctx, classID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*waitlist.Entry), args.Error(1)
}

func (m *MockWaitlistService) ConfirmSlot(ctx context.Context, memberID, classID string) (*booking.Booking, error) {
	args := m.Called(ctx, memberID, classID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockWaitlistService) SweepExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockWaitlistService) ReconcileCapacityReleases(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestWaitlistHandler_Enqueue(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常に登録できる", func(t *testing.T) {
		mockService := new(MockWaitlistService)
		entry := waitlist.NewEntry("member-123", "class-123", 3)
		entry.ID = "entry-1"
		mockService.On("Enqueue", mock.Anything, "member-123", "class-123").Return(entry, nil)

		handler := NewWaitlistHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/classes/class-123/waitlist", nil)
		req.Header.Set("X-Member-ID", "member-123")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("class-123")

		err := handler.Enqueue(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp WaitlistEntryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 3, resp.Position)
		assert.True(t, resp.Active)
		assert.False(t, resp.Notified)
	})

	t.Run("会員IDヘッダーがない場合は401", func(t *testing.T) {
		handler := NewWaitlistHandler(new(MockWaitlistService))

		req := httptest.NewRequest(http.MethodPost, "/classes/class-123/waitlist", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("class-123")

		err := handler.Enqueue(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("キャンセル待ちが無効なクラスは400", func(t *testing.T) {
		mockService := new(MockWaitlistService)
		mockService.On("Enqueue", mock.Anything, "member-123", "class-123").
			Return(nil, waitlist.ErrWaitlistNotEnabled)

		handler := NewWaitlistHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/classes/class-123/waitlist", nil)
		req.Header.Set("X-Member-ID", "member-123")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("class-123")

		err := handler.Enqueue(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("二重登録は409", func(t *testing.T) {
		mockService := new(MockWaitlistService)
		mockService.On("Enqueue", mock.Anything, "member-123", "class-123").
			Return(nil, waitlist.ErrAlreadyOnWaitlist)

		handler := NewWaitlistHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/classes/class-123/waitlist", nil)
		req.Header.Set("X-Member-ID", "member-123")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("class-123")

		err := handler.Enqueue(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusConflict, he.Code)
	})
}

func TestWaitlistHandler_Withdraw(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常に取り下げできる", func(t *testing.T) {
		mockService := new(MockWaitlistService)
		mockService.On("Withdraw", mock.Anything, "member-123", "class-123").Return(nil)

		handler := NewWaitlistHandler(mockService)

		req := httptest.NewRequest(http.MethodDelete, "/classes/class-123/waitlist", nil)
		req.Header.Set("X-Member-ID", "member-123")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("class-123")

		err := handler.Withdraw(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("登録がない場合は404", func(t *testing.T) {
		mockService := new(MockWaitlistService)
		mockService.On("Withdraw", mock.Anything, "member-123", "class-123").
			Return(waitlist.ErrEntryNotFound)

		handler := NewWaitlistHandler(mockService)

		req := httptest.NewRequest(http.MethodDelete, "/classes/class-123/waitlist", nil)
		req.Header.Set("X-Member-ID", "member-123")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("class-123")

		err := handler.Withdraw(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})
}

func TestWaitlistHandler_ConfirmSlot(t *testing.T) {
	e := NewTestEcho()

	t.Run("期限内の確認で予約が作成される", func(t *testing.T) {
		mockService := new(MockWaitlistService)
		b := booking.NewBooking("member-123", "class-123")
		b.ID = "booking-1"
		mockService.On("ConfirmSlot", mock.Anything, "member-123", "class-123").Return(b, nil)

		handler := NewWaitlistHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/classes/class-123/waitlist/confirm", nil)
		req.Header.Set("X-Member-ID", "member-123")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("class-123")

		err := handler.ConfirmSlot(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp BookingResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "booking-1", resp.ID)
	})

	t.Run("未通知の場合は400", func(t *testing.T) {
		mockService := new(MockWaitlistService)
		mockService.On("ConfirmSlot", mock.Anything, "member-123", "class-123").
			Return(nil, waitlist.ErrNotNotified)

		handler := NewWaitlistHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/classes/class-123/waitlist/confirm", nil)
		req.Header.Set("X-Member-ID", "member-123")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("class-123")

		err := handler.ConfirmSlot(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("枠が消えていた場合は409", func(t *testing.T) {
		mockService := new(MockWaitlistService)
		mockService.On("ConfirmSlot", mock.Anything, "member-123", "class-123").
			Return(nil, waitlist.ErrSlotNotAvailable)

		handler := NewWaitlistHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/classes/class-123/waitlist/confirm", nil)
		req.Header.Set("X-Member-ID", "member-123")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("class-123")

		err := handler.ConfirmSlot(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusConflict, he.Code)
	})
}

func TestWaitlistHandler_ListByClass(t *testing.T) {
	e := NewTestEcho()

	mockService := new(MockWaitlistService)
	first := waitlist.NewEntry("member-1", "class-123", 1)
	second := waitlist.NewEntry("member-2", "class-123", 2)
	mockService.On("ListByClass", mock.Anything, "class-123").
		Return([]*waitlist.Entry{first, second}, nil)

	handler := NewWaitlistHandler(mockService)

	req := httptest.NewRequest(http.MethodGet, "/classes/class-123/waitlist", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("class-123")

	err := handler.ListByClass(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []WaitlistEntryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, 1, resp[0].Position)
	assert.Equal(t, 2, resp[1].Position)
}

func TestWaitlistHandler_EnableDisable(t *testing.T) {
	e := NewTestEcho()

	t.Run("有効化できる", func(t *testing.T) {
		mockService := new(MockWaitlistService)
		cl := class.NewClass("朝ヨガ", "", 20)
		cl.ID = "class-123"
		require.NoError(t, cl.EnableWaitlist())
		mockService.On("EnableWaitlist", mock.Anything, "class-123").Return(cl, nil)

		handler := NewWaitlistHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/classes/class-123/waitlist/enable", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("class-123")

		err := handler.EnableWaitlist(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp ClassResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.WaitlistEnabled)
	})

	t.Run("有効化済みの場合は400", func(t *testing.T) {
		mockService := new(MockWaitlistService)
		mockService.On("EnableWaitlist", mock.Anything, "class-123").
			Return(nil, class.ErrWaitlistAlreadyEnabled)

		handler := NewWaitlistHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/classes/class-123/waitlist/enable", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("class-123")

		err := handler.EnableWaitlist(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})
}

func TestWaitlistHandler_Sweep(t *testing.T) {
	e := NewTestEcho()

	mockService := new(MockWaitlistService)
	mockService.On("SweepExpired", mock.Anything).Return(2, nil)
	mockService.On("ReconcileCapacityReleases", mock.Anything).Return(3, nil)

	handler := NewWaitlistHandler(mockService)

	req := httptest.NewRequest(http.MethodPost, "/waitlist/sweep", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Sweep(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp SweepResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Expired)
	assert.Equal(t, 3, resp.Notified)

	mockService.AssertExpectations(t)
}
