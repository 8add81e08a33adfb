package waitlist

import (
	"context"

	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/transaction"
)

// Repository はキャンセル待ちリストリポジトリのインターフェース
type Repository interface {
	// Create は新しいエントリを作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, entry *Entry) error

	// NextPosition はトランザクション内でクラスの次の順番を取得する
	// 過去に発行された最大値+1を返し、削除後も番号は再利用しない
	NextPosition(ctx context.Context, tx transaction.Tx, classID string) (int, error)

	// GetByID はIDからエントリを取得する
	GetByID(ctx context.Context, id string) (*Entry, error)

	// GetActiveByMemberAndClass は会員・クラスの有効なエントリを取得する
	GetActiveByMemberAndClass(ctx context.Context, memberID, classID string) (*Entry, error)

	// GetLatestNotifiedByMemberAndClass は会員・クラスの通知済みエントリのうち
	// 最も新しい（順番が最大の）ものを、無効化済みも含めて取得する
	GetLatestNotifiedByMemberAndClass(ctx context.Context, memberID, classID string) (*Entry, error)

	// ListActiveByClass はクラスの有効なエントリ一覧を順番昇順で取得する
	ListActiveByClass(ctx context.Context, classID string) ([]*Entry, error)

	// ListByClass は履歴を含むクラスの全エントリ一覧を順番昇順で取得する
	ListByClass(ctx context.Context, classID string) ([]*Entry, error)

	// ListNotifiedUnconfirmed は通知済み・未確認・有効なエントリを全クラス横断で取得する
	ListNotifiedUnconfirmed(ctx context.Context) ([]*Entry, error)

	// DeactivateAllByClass はクラスの有効なエントリを一括で無効化する（トランザクション必須）
	DeactivateAllByClass(ctx context.Context, tx transaction.Tx, classID string) (int, error)

	// Update はエントリを更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, entry *Entry) error
}
