package booking

import "errors"

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound         = errors.New("予約が見つかりません")
	ErrBookingAlreadyCancelled = errors.New("予約は既にキャンセルされています")
	ErrDuplicateBooking        = errors.New("同じクラスへの有効な予約が既に存在します")
	ErrMemberIDRequired        = errors.New("会員IDは必須です")
	ErrClassIDRequired         = errors.New("クラスIDは必須です")
)
