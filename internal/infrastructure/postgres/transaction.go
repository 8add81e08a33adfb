package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/transaction"
)

// sqlxTx は sqlx.Tx を transaction.Tx として公開するラッパー
// 定員チェックと書き込みを同一トランザクションにまとめる単位になる
type sqlxTx struct {
	*sqlx.Tx
}

func (t *sqlxTx) Commit() error {
	return t.Tx.Commit()
}

func (t *sqlxTx) Rollback() error {
	return t.Tx.Rollback()
}

// TxManager は sqlx.DB ベースのトランザクションマネージャー
type TxManager struct {
	db *sqlx.DB
}

func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

// Begin は新しいトランザクションを開始する
func (m *TxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlxTx{Tx: tx}, nil
}

// UnwrapTx は transaction.Tx から sqlx.Tx を取り出す
// このパッケージのリポジトリ実装でのみ使用する。別実装のTxにはnilを返す
func UnwrapTx(tx transaction.Tx) *sqlx.Tx {
	if w, ok := tx.(*sqlxTx); ok {
		return w.Tx
	}
	return nil
}
