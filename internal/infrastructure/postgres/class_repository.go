package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/class"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/transaction"
)

type classRow struct {
	ID              string    `db:"id"`
	Title           string    `db:"title"`
	Description     string    `db:"description"`
	Capacity        int       `db:"capacity"`
	Active          bool      `db:"active"`
	WaitlistEnabled bool      `db:"waitlist_enabled"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

type ClassRepository struct{ db *sqlx.DB }

func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

func (r *ClassRepository) Create(ctx context.Context, c *class.Class) error {
	query := `INSERT INTO classes (title, description, capacity, active, waitlist_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query,
		c.Title, c.Description, c.Capacity, c.Active, c.WaitlistEnabled, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID); err != nil {
		return fmt.Errorf("クラス作成に失敗: %w", err)
	}
	return nil
}

func (r *ClassRepository) GetByID(ctx context.Context, id string) (*class.Class, error) {
	var row classRow
	query := `SELECT id, title, description, capacity, active, waitlist_enabled, created_at, updated_at
		FROM classes WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, class.ErrClassNotFound
		}
		return nil, fmt.Errorf("クラス取得に失敗: %w", err)
	}
	return r.toEntity(&row), nil
}

func (r *ClassRepository) List(ctx context.Context, limit, offset int) ([]*class.Class, error) {
	var rows []classRow
	query := `SELECT id, title, description, capacity, active, waitlist_enabled, created_at, updated_at
		FROM classes ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("クラス一覧取得に失敗: %w", err)
	}
	result := make([]*class.Class, len(rows))
	for i := range rows {
		result[i] = r.toEntity(&rows[i])
	}
	return result, nil
}

func (r *ClassRepository) ListWaitlistEnabled(ctx context.Context) ([]*class.Class, error) {
	var rows []classRow
	query := `SELECT id, title, description, capacity, active, waitlist_enabled, created_at, updated_at
		FROM classes WHERE waitlist_enabled = TRUE AND active = TRUE ORDER BY id`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("キャンセル待ち有効クラス取得に失敗: %w", err)
	}
	result := make([]*class.Class, len(rows))
	for i := range rows {
		result[i] = r.toEntity(&rows[i])
	}
	return result, nil
}

func (r *ClassRepository) Update(ctx context.Context, c *class.Class) error {
	query := `UPDATE classes SET title = $1, description = $2, capacity = $3, active = $4,
		waitlist_enabled = $5, updated_at = $6 WHERE id = $7`
	result, err := r.db.ExecContext(ctx, query,
		c.Title, c.Description, c.Capacity, c.Active, c.WaitlistEnabled, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("クラス更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return class.ErrClassNotFound
	}
	return nil
}

func (r *ClassRepository) UpdateTx(ctx context.Context, tx transaction.Tx, c *class.Class) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクション")
	}
	query := `UPDATE classes SET title = $1, description = $2, capacity = $3, active = $4,
		waitlist_enabled = $5, updated_at = $6 WHERE id = $7`
	result, err := sqlxTx.ExecContext(ctx, query,
		c.Title, c.Description, c.Capacity, c.Active, c.WaitlistEnabled, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("クラス更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return class.ErrClassNotFound
	}
	return nil
}

func (r *ClassRepository) toEntity(row *classRow) *class.Class {
	return &class.Class{
		ID: row.ID, Title: row.Title, Description: row.Description,
		Capacity: row.Capacity, Active: row.Active, WaitlistEnabled: row.WaitlistEnabled,
		CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt,
	}
}

var _ class.Repository = (*ClassRepository)(nil)
