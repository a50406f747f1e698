package services

import (
	"context"

	"github.com/fsdevblog/qrshort/internal/models"
	"github.com/fsdevblog/qrshort/internal/repositories"
	"github.com/pkg/errors"
)

// PlanRepository описывает репозиторий тарифных планов.
type PlanRepository interface {
	GetByRef(ctx context.Context, ref string) (*models.Plan, error)
	Create(ctx context.Context, plan *models.Plan) error
}

// PlanService читающая прослойка над планами. Реализует контракт
// поставщика квот (quota.PlanProvider).
type PlanService struct {
	planRepo PlanRepository
}

func NewPlanService(planRepo PlanRepository) *PlanService {
	return &PlanService{planRepo: planRepo}
}

// QuotaState возвращает состояние квоты плана.
func (p *PlanService) QuotaState(ctx context.Context, planRef string) (models.QuotaState, error) {
	plan, err := p.planRepo.GetByRef(ctx, planRef)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.QuotaState{}, errors.Wrapf(ErrRecordNotFound, "plan %s not found", planRef)
		}
		return models.QuotaState{}, ErrUnknown
	}
	return models.QuotaState{
		PlanRef:         plan.Ref,
		ScanLimit:       plan.ScanLimit,
		ScansThisPeriod: plan.ScansThisPeriod,
		PeriodEnd:       plan.PeriodEnd,
	}, nil
}

// SeedPlan создает план, если его еще нет. Нужен для локальной разработки:
// боевые планы живут в биллинговой подсистеме.
func (p *PlanService) SeedPlan(ctx context.Context, plan models.Plan) error {
	if _, err := p.planRepo.GetByRef(ctx, plan.Ref); err == nil {
		return nil
	}
	if err := p.planRepo.Create(ctx, &plan); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil
		}
		return ErrUnknown
	}
	return nil
}
