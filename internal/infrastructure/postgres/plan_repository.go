package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/plan"
)

// PlanRepository は会員プランディレクトリへの読み取り専用アクセスを提供する
type PlanRepository struct{ db *sqlx.DB }

func NewPlanRepository(db *sqlx.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) GetByID(ctx context.Context, id string) (*plan.Plan, error) {
	var p plan.Plan
	query := `SELECT id, name FROM plans WHERE id = $1`
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, plan.ErrPlanNotFound
		}
		return nil, fmt.Errorf("プラン取得に失敗: %w", err)
	}
	return &p, nil
}

func (r *PlanRepository) IncludesClass(ctx context.Context, planID, classID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM plan_classes WHERE plan_id = $1 AND class_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, planID, classID); err != nil {
		return false, fmt.Errorf("プラン対象クラスの確認に失敗: %w", err)
	}
	return exists, nil
}

var _ plan.Repository = (*PlanRepository)(nil)
