package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/booking"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/class"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/member"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/plan"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/waitlist"
)

// toHTTPError はドメインエラーをHTTPエラーに変換する
// 業務上の拒否はすべて4xxで返し、それ以外はインフラ障害として500にする
func toHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, member.ErrMemberNotFound),
		errors.Is(err, class.ErrClassNotFound),
		errors.Is(err, booking.ErrBookingNotFound),
		errors.Is(err, waitlist.ErrEntryNotFound),
		errors.Is(err, plan.ErrPlanNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())

	case errors.Is(err, class.ErrClassFull),
		errors.Is(err, booking.ErrDuplicateBooking),
		errors.Is(err, waitlist.ErrAlreadyOnWaitlist),
		errors.Is(err, waitlist.ErrSlotNotAvailable):
		return echo.NewHTTPError(http.StatusConflict, err.Error())

	case errors.Is(err, member.ErrNoActivePlan),
		errors.Is(err, member.ErrClassNotInPlan):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())

	case errors.Is(err, class.ErrClassInactive),
		errors.Is(err, class.ErrWaitlistAlreadyEnabled),
		errors.Is(err, booking.ErrBookingAlreadyCancelled),
		errors.Is(err, waitlist.ErrWaitlistNotEnabled),
		errors.Is(err, waitlist.ErrNotNotified),
		errors.Is(err, waitlist.ErrConfirmationExpired),
		errors.Is(err, class.ErrInvalidCapacity),
		errors.Is(err, class.ErrTitleRequired):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
