package plan

import (
	"context"
	"errors"
)

// ErrPlanNotFound はプランが存在しない場合のエラー
var ErrPlanNotFound = errors.New("会員プランが見つかりません")

// Plan は会員プランエンティティを表す
type Plan struct {
	ID   string
	Name string
}

// Repository は会員プランディレクトリへの読み取り専用インターフェース
type Repository interface {
	// GetByID はIDからプランを取得する
	GetByID(ctx context.Context, id string) (*Plan, error)

	// IncludesClass はプランに指定クラスが含まれるかを返す
	IncludesClass(ctx context.Context, planID, classID string) (bool, error)
}
