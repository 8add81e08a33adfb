package booking

import "time"

// Status は予約の状態を表す
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Booking はクラス予約エンティティを表す
// 予約は確定状態で作成され、キャンセルへの遷移は一度だけ・不可逆
// 統計・監査のため削除は行わない
type Booking struct {
	ID          string
	MemberID    string
	ClassID     string
	Status      Status
	BookedAt    time.Time
	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewBooking は新しい予約を確定状態で作成する
func NewBooking(memberID, classID string) *Booking {
	now := time.Now()
	return &Booking{
		MemberID:  memberID,
		ClassID:   classID,
		Status:    StatusConfirmed,
		BookedAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsLive は予約が有効（未キャンセル）かを返す
func (b *Booking) IsLive() bool {
	return b.Status == StatusConfirmed && b.CancelledAt == nil
}

// Cancel は予約をキャンセルする
func (b *Booking) Cancel() error {
	if !b.IsLive() {
		return ErrBookingAlreadyCancelled
	}
	now := time.Now()
	b.Status = StatusCancelled
	b.CancelledAt = &now
	b.UpdatedAt = now
	return nil
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.MemberID == "" {
		return ErrMemberIDRequired
	}
	if b.ClassID == "" {
		return ErrClassIDRequired
	}
	return nil
}
