package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/waitlist"
)

type WaitlistHandler struct {
	service WaitlistServiceInterface
}

func NewWaitlistHandler(s WaitlistServiceInterface) *WaitlistHandler {
	return &WaitlistHandler{service: s}
}

type WaitlistEntryResponse struct {
	ID              string     `json:"id"`
	MemberID        string     `json:"member_id"`
	ClassID         string     `json:"class_id"`
	Position        int        `json:"position"`
	Notified        bool       `json:"notified"`
	Confirmed       bool       `json:"confirmed"`
	Active          bool       `json:"active"`
	EnqueuedAt      time.Time  `json:"enqueued_at"`
	NotifiedAt      *time.Time `json:"notified_at,omitempty"`
	ConfirmDeadline *time.Time `json:"confirm_deadline,omitempty"`
}

type SweepResponse struct {
	Expired  int `json:"expired"`
	Notified int `json:"notified"`
}

func toWaitlistEntryResponse(e *waitlist.Entry) WaitlistEntryResponse {
	return WaitlistEntryResponse{
		ID: e.ID, MemberID: e.MemberID, ClassID: e.ClassID,
		Position: e.Position, Notified: e.Notified, Confirmed: e.Confirmed,
		Active: e.Active, EnqueuedAt: e.EnqueuedAt,
		NotifiedAt: e.NotifiedAt, ConfirmDeadline: e.ConfirmDeadline,
	}
}

func requireMemberID(c echo.Context) (string, error) {
	memberID := c.Request().Header.Get("X-Member-ID")
	if memberID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "会員IDが必要です")
	}
	return memberID, nil
}

// EnableWaitlist はクラスのキャンセル待ちを有効化する
// POST /classes/:id/waitlist/enable
func (h *WaitlistHandler) EnableWaitlist(c echo.Context) error {
	cl, err := h.service.EnableWaitlist(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toClassResponse(cl))
}

// DisableWaitlist はクラスのキャンセル待ちを無効化し、待機中のエントリを全て非アクティブ化する
// POST /classes/:id/waitlist/disable
func (h *WaitlistHandler) DisableWaitlist(c echo.Context) error {
	cl, err := h.service.DisableWaitlist(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toClassResponse(cl))
}

// Enqueue は会員をキャンセル待ちに登録する
// POST /classes/:id/waitlist
func (h *WaitlistHandler) Enqueue(c echo.Context) error {
	memberID, err := requireMemberID(c)
	if err != nil {
		return err
	}
	entry, err := h.service.Enqueue(c.Request().Context(), memberID, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toWaitlistEntryResponse(entry))
}

// Withdraw は会員をキャンセル待ちから外す
// DELETE /classes/:id/waitlist
func (h *WaitlistHandler) Withdraw(c echo.Context) error {
	memberID, err := requireMemberID(c)
	if err != nil {
		return err
	}
	if err := h.service.Withdraw(c.Request().Context(), memberID, c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListByClass はクラスのキャンセル待ち一覧を位置順に取得する
// GET /classes/:id/waitlist
func (h *WaitlistHandler) ListByClass(c echo.Context) error {
	entries, err := h.service.ListByClass(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	resp := make([]WaitlistEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = toWaitlistEntryResponse(e)
	}
	return c.JSON(http.StatusOK, resp)
}

// ConfirmSlot は通知済みの会員が空き枠を確定し予約に変換する
// POST /classes/:id/waitlist/confirm
func (h *WaitlistHandler) ConfirmSlot(c echo.Context) error {
	memberID, err := requireMemberID(c)
	if err != nil {
		return err
	}
	b, err := h.service.ConfirmSlot(c.Request().Context(), memberID, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toBookingResponse(b))
}

// Sweep は期限切れエントリの処理と空き枠の再照合を実行する
// POST /waitlist/sweep
func (h *WaitlistHandler) Sweep(c echo.Context) error {
	ctx := c.Request().Context()
	expired, err := h.service.SweepExpired(ctx)
	if err != nil {
		return toHTTPError(err)
	}
	notified, err := h.service.ReconcileCapacityReleases(ctx)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, SweepResponse{Expired: expired, Notified: notified})
}
