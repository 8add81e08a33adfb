package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/transaction"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/waitlist"
)

type waitlistRow struct {
	ID              string     `db:"id"`
	MemberID        string     `db:"member_id"`
	ClassID         string     `db:"class_id"`
	Position        int        `db:"position"`
	Notified        bool       `db:"notified"`
	Confirmed       bool       `db:"confirmed"`
	Active          bool       `db:"active"`
	EnqueuedAt      time.Time  `db:"enqueued_at"`
	NotifiedAt      *time.Time `db:"notified_at"`
	ConfirmDeadline *time.Time `db:"confirm_deadline"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

type WaitlistRepository struct{ db *sqlx.DB }

func NewWaitlistRepository(db *sqlx.DB) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

const waitlistColumns = `id, member_id, class_id, position, notified, confirmed, active,
	enqueued_at, notified_at, confirm_deadline, created_at, updated_at`

func (r *WaitlistRepository) Create(ctx context.Context, tx transaction.Tx, e *waitlist.Entry) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクション")
	}
	query := `INSERT INTO waitlist_entries
		(member_id, class_id, position, notified, confirmed, active, enqueued_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query,
		e.MemberID, e.ClassID, e.Position, e.Notified, e.Confirmed, e.Active,
		e.EnqueuedAt, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID); err != nil {
		// 部分ユニークインデックス（有効なエントリは会員×クラスで1件）
		// またはクラス×順番のユニーク制約への違反
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return waitlist.ErrAlreadyOnWaitlist
		}
		return fmt.Errorf("キャンセル待ちエントリ作成に失敗: %w", err)
	}
	return nil
}

func (r *WaitlistRepository) NextPosition(ctx context.Context, tx transaction.Tx, classID string) (int, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return 0, fmt.Errorf("無効なトランザクション")
	}
	// 無効化済みエントリも含めた最大値+1。番号は欠番になっても再利用しない
	var next int
	query := `SELECT COALESCE(MAX(position), 0) + 1 FROM waitlist_entries WHERE class_id = $1`
	if err := sqlxTx.GetContext(ctx, &next, query, classID); err != nil {
		return 0, fmt.Errorf("次の順番の取得に失敗: %w", err)
	}
	return next, nil
}

func (r *WaitlistRepository) GetByID(ctx context.Context, id string) (*waitlist.Entry, error) {
	var row waitlistRow
	query := `SELECT ` + waitlistColumns + ` FROM waitlist_entries WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, waitlist.ErrEntryNotFound
		}
		return nil, fmt.Errorf("キャンセル待ちエントリ取得に失敗: %w", err)
	}
	return r.toEntity(&row), nil
}

func (r *WaitlistRepository) GetActiveByMemberAndClass(ctx context.Context, memberID, classID string) (*waitlist.Entry, error) {
	var row waitlistRow
	query := `SELECT ` + waitlistColumns + ` FROM waitlist_entries
		WHERE member_id = $1 AND class_id = $2 AND active = TRUE`
	if err := r.db.GetContext(ctx, &row, query, memberID, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, waitlist.ErrEntryNotFound
		}
		return nil, fmt.Errorf("キャンセル待ちエントリ取得に失敗: %w", err)
	}
	return r.toEntity(&row), nil
}

func (r *WaitlistRepository) GetLatestNotifiedByMemberAndClass(ctx context.Context, memberID, classID string) (*waitlist.Entry, error) {
	var row waitlistRow
	// スイープで無効化されたエントリも対象にするため active では絞らない
	query := `SELECT ` + waitlistColumns + ` FROM waitlist_entries
		WHERE member_id = $1 AND class_id = $2 AND notified = TRUE
		ORDER BY position DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &row, query, memberID, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, waitlist.ErrEntryNotFound
		}
		return nil, fmt.Errorf("キャンセル待ちエントリ取得に失敗: %w", err)
	}
	return r.toEntity(&row), nil
}

func (r *WaitlistRepository) ListActiveByClass(ctx context.Context, classID string) ([]*waitlist.Entry, error) {
	var rows []waitlistRow
	query := `SELECT ` + waitlistColumns + ` FROM waitlist_entries
		WHERE class_id = $1 AND active = TRUE ORDER BY position`
	if err := r.db.SelectContext(ctx, &rows, query, classID); err != nil {
		return nil, fmt.Errorf("キャンセル待ちリスト取得に失敗: %w", err)
	}
	return r.toEntities(rows), nil
}

func (r *WaitlistRepository) ListByClass(ctx context.Context, classID string) ([]*waitlist.Entry, error) {
	var rows []waitlistRow
	query := `SELECT ` + waitlistColumns + ` FROM waitlist_entries
		WHERE class_id = $1 ORDER BY position`
	if err := r.db.SelectContext(ctx, &rows, query, classID); err != nil {
		return nil, fmt.Errorf("キャンセル待ちリスト取得に失敗: %w", err)
	}
	return r.toEntities(rows), nil
}

func (r *WaitlistRepository) ListNotifiedUnconfirmed(ctx context.Context) ([]*waitlist.Entry, error) {
	var rows []waitlistRow
	query := `SELECT ` + waitlistColumns + ` FROM waitlist_entries
		WHERE notified = TRUE AND confirmed = FALSE AND active = TRUE ORDER BY class_id, position`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("通知済みエントリ取得に失敗: %w", err)
	}
	return r.toEntities(rows), nil
}

func (r *WaitlistRepository) DeactivateAllByClass(ctx context.Context, tx transaction.Tx, classID string) (int, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return 0, fmt.Errorf("無効なトランザクション")
	}
	query := `UPDATE waitlist_entries SET active = FALSE, updated_at = NOW()
		WHERE class_id = $1 AND active = TRUE`
	result, err := sqlxTx.ExecContext(ctx, query, classID)
	if err != nil {
		return 0, fmt.Errorf("キャンセル待ちリスト無効化に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

func (r *WaitlistRepository) Update(ctx context.Context, tx transaction.Tx, e *waitlist.Entry) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクション")
	}
	query := `UPDATE waitlist_entries SET notified = $1, confirmed = $2, active = $3,
		notified_at = $4, confirm_deadline = $5, updated_at = $6 WHERE id = $7`
	result, err := sqlxTx.ExecContext(ctx, query,
		e.Notified, e.Confirmed, e.Active, e.NotifiedAt, e.ConfirmDeadline, e.UpdatedAt, e.ID)
	if err != nil {
		return fmt.Errorf("キャンセル待ちエントリ更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return waitlist.ErrEntryNotFound
	}
	return nil
}

func (r *WaitlistRepository) toEntities(rows []waitlistRow) []*waitlist.Entry {
	result := make([]*waitlist.Entry, len(rows))
	for i := range rows {
		result[i] = r.toEntity(&rows[i])
	}
	return result
}

func (r *WaitlistRepository) toEntity(row *waitlistRow) *waitlist.Entry {
	return &waitlist.Entry{
		ID: row.ID, MemberID: row.MemberID, ClassID: row.ClassID,
		Position: row.Position, Notified: row.Notified, Confirmed: row.Confirmed,
		Active: row.Active, EnqueuedAt: row.EnqueuedAt, NotifiedAt: row.NotifiedAt,
		ConfirmDeadline: row.ConfirmDeadline, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt,
	}
}

var _ waitlist.Repository = (*WaitlistRepository)(nil)
