package class

import "errors"

// Class ドメインのエラー定義
var (
	ErrClassNotFound          = errors.New("クラスが見つかりません")
	ErrClassInactive          = errors.New("クラスは現在開講していません")
	ErrClassFull              = errors.New("クラスの定員に空きがありません")
	ErrTitleRequired          = errors.New("クラス名は必須です")
	ErrInvalidCapacity        = errors.New("定員は1以上である必要があります")
	ErrWaitlistAlreadyEnabled = errors.New("キャンセル待ちリストは既に有効です")
)
