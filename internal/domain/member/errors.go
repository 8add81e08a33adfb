package member

import "errors"

// Member ドメインのエラー定義
var (
	ErrMemberNotFound = errors.New("会員が見つかりません")
	ErrNoActivePlan   = errors.New("会員は有効なプランを持っていません")
	ErrClassNotInPlan = errors.New("クラスは会員のプランに含まれていません")
)
