package booking

import (
	"context"

	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, booking *Booking) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Booking, error)

	// GetLiveByMemberAndClass は会員・クラスの有効な予約を取得する
	GetLiveByMemberAndClass(ctx context.Context, memberID, classID string) (*Booking, error)

	// CountLiveByClass はクラスの有効な予約件数を取得する
	CountLiveByClass(ctx context.Context, classID string) (int, error)

	// CountLiveByClassTx はトランザクション内でクラスの有効な予約件数を取得する
	// 定員チェックと予約作成を同一の直列化単位で行うために使用する
	CountLiveByClassTx(ctx context.Context, tx transaction.Tx, classID string) (int, error)

	// ListByMember は会員の予約一覧を取得する
	ListByMember(ctx context.Context, memberID string, limit, offset int) ([]*Booking, error)

	// ListByClass はクラスの予約一覧を取得する
	ListByClass(ctx context.Context, classID string) ([]*Booking, error)

	// Update は予約を更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, booking *Booking) error
}
