// Package transaction はドメイン層がsqlx等のインフラ実装に依存せずに
// トランザクション境界を扱うための抽象を提供する
package transaction

import "context"

// Tx は進行中のトランザクションを表す
// 予約作成・キャンセル待ち登録では、件数確認と行の書き込みを
// 同一のTxにまとめることで定員と順番の整合性を保証する
type Tx interface {
	Commit() error
	Rollback() error
}

// Manager はトランザクションの開始点
type Manager interface {
	Begin(ctx context.Context) (Tx, error)
}
