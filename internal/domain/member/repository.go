package member

import "context"

// Repository は会員ディレクトリへの読み取り専用インターフェース
// 会員の作成・更新は会員管理側の責務であり、このサブシステムでは行わない
type Repository interface {
	// GetByID はIDから会員を取得する
	GetByID(ctx context.Context, id string) (*Member, error)
}
