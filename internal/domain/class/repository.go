package class

import (
	"context"

	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/transaction"
)

// Repository はクラスリポジトリのインターフェース
type Repository interface {
	// Create は新しいクラスを作成する
	Create(ctx context.Context, class *Class) error

	// GetByID はIDからクラスを取得する
	GetByID(ctx context.Context, id string) (*Class, error)

	// List はクラス一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Class, error)

	// ListWaitlistEnabled はキャンセル待ちリストが有効なクラス一覧を取得する
	ListWaitlistEnabled(ctx context.Context) ([]*Class, error)

	// Update はクラスを更新する
	Update(ctx context.Context, class *Class) error

	// UpdateTx はトランザクション内でクラスを更新する
	UpdateTx(ctx context.Context, tx transaction.Tx, class *Class) error
}
