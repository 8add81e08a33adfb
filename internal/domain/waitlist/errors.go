package waitlist

import "errors"

// Waitlist ドメインのエラー定義
var (
	ErrEntryNotFound       = errors.New("キャンセル待ちエントリが見つかりません")
	ErrWaitlistNotEnabled  = errors.New("このクラスはキャンセル待ちリストが有効になっていません")
	ErrAlreadyOnWaitlist   = errors.New("既にこのクラスのキャンセル待ちリストに登録されています")
	ErrNotNotified         = errors.New("まだ空き枠の通知を受けていません")
	ErrConfirmationExpired = errors.New("確認期限が過ぎています")
	ErrSlotNotAvailable    = errors.New("空き枠は既になくなりました")
	ErrMemberIDRequired    = errors.New("会員IDは必須です")
	ErrClassIDRequired     = errors.New("クラスIDは必須です")
	ErrInvalidPosition     = errors.New("順番は1以上である必要があります")
)
