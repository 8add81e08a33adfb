package application

import (
	"context"
	"fmt"

	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/class"
)

// ClassService はクラスの登録・照会を提供する薄いサービス
type ClassService struct {
	classRepo class.Repository
}

func NewClassService(classRepo class.Repository) *ClassService {
	return &ClassService{classRepo: classRepo}
}

type CreateClassInput struct {
	Title       string
	Description string
	Capacity    int
}

func (s *ClassService) CreateClass(ctx context.Context, input CreateClassInput) (*class.Class, error) {
	c := class.NewClass(input.Title, input.Description, input.Capacity)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}
	if err := s.classRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("クラス作成に失敗しました: %w", err)
	}
	return c, nil
}

func (s *ClassService) GetClass(ctx context.Context, id string) (*class.Class, error) {
	return s.classRepo.GetByID(ctx, id)
}

func (s *ClassService) ListClasses(ctx context.Context, limit, offset int) ([]*class.Class, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.classRepo.List(ctx, limit, offset)
}

// DeactivateClass はクラスを無効化する（既存の予約・履歴は保持される）
func (s *ClassService) DeactivateClass(ctx context.Context, id string) (*class.Class, error) {
	c, err := s.classRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Deactivate()
	if err := s.classRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
