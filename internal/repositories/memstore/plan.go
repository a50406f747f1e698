package memstore

import (
	"context"
	"fmt"

	"github.com/fsdevblog/qrshort/internal/db"
	"github.com/fsdevblog/qrshort/internal/db/memory"
	"github.com/fsdevblog/qrshort/internal/models"
)

// PlanRepo репозиторий тарифных планов в памяти. Ключ хранилища — ref плана.
type PlanRepo struct {
	s *db.MemoryStorage
}

func NewPlanRepo(store *db.MemoryStorage) *PlanRepo {
	return &PlanRepo{
		s: store,
	}
}

// GetByRef получает план по внешнему идентификатору.
func (p *PlanRepo) GetByRef(ctx context.Context, ref string) (*models.Plan, error) {
	plan, err := memory.Get[models.Plan](ctx, ref, p.s.MStorage)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to get plan by ref %s: %w",
			ref, convertErrorType(err),
		)
	}
	return plan, nil
}

// Create создает запись плана.
func (p *PlanRepo) Create(ctx context.Context, plan *models.Plan) error {
	if err := memory.Set[models.Plan](ctx, plan.Ref, plan, p.s.MStorage); err != nil {
		return fmt.Errorf("failed to create plan: %w", convertErrorType(err))
	}
	return nil
}
