package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/member"
)

type memberRow struct {
	ID        string    `db:"id"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Email     string    `db:"email"`
	Status    string    `db:"status"`
	PlanID    *string   `db:"plan_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// MemberRepository は会員ディレクトリへの読み取り専用アクセスを提供する
type MemberRepository struct{ db *sqlx.DB }

func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) GetByID(ctx context.Context, id string) (*member.Member, error) {
	var row memberRow
	query := `SELECT id, first_name, last_name, email, status, plan_id, created_at, updated_at
		FROM members WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, member.ErrMemberNotFound
		}
		return nil, fmt.Errorf("会員取得に失敗: %w", err)
	}
	return &member.Member{
		ID: row.ID, FirstName: row.FirstName, LastName: row.LastName,
		Email: row.Email, Status: member.MembershipStatus(row.Status),
		PlanID: row.PlanID, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt,
	}, nil
}

var _ member.Repository = (*MemberRepository)(nil)
