package handler

import (
	"context"

	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/application"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/booking"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/class"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/waitlist"
)

// ClassServiceInterface はクラスサービスのインターフェース
type ClassServiceInterface interface {
	CreateClass(ctx context.Context, input application.CreateClassInput) (*class.Class, error)
	GetClass(ctx context.Context, id string) (*class.Class, error)
	ListClasses(ctx context.Context, limit, offset int) ([]*class.Class, error)
	DeactivateClass(ctx context.Context, id string) (*class.Class, error)
}

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	CreateBooking(ctx context.Context, input application.CreateBookingInput) (*booking.Booking, error)
	CancelBooking(ctx context.Context, id string) (*booking.Booking, error)
	GetBooking(ctx context.Context, id string) (*booking.Booking, error)
	ListMemberBookings(ctx context.Context, memberID string, limit, offset int) ([]*booking.Booking, error)
	ListClassBookings(ctx context.Context, classID string) ([]*booking.Booking, error)
	QueryCapacity(ctx context.Context, classID string) (*application.CapacityInfo, error)
}

// WaitlistServiceInterface はキャンセル待ちサービスのインターフェース
type WaitlistServiceInterface interface {
	EnableWaitlist(ctx context.Context, classID string) (*class.Class, error)
	DisableWaitlist(ctx context.Context, classID string) (*class.Class, error)
	Enqueue(ctx context.Context, memberID, classID string) (*waitlist.Entry, error)
	Withdraw(ctx context.Context, memberID, classID string) error
	ListByClass(ctx context.Context, classID string) ([]*waitlist.Entry, error)
	ConfirmSlot(ctx context.Context, memberID, classID string) (*booking.Booking, error)
	SweepExpired(ctx context.Context) (int, error)
	ReconcileCapacityReleases(ctx context.Context) (int, error)
}
