package sql

import (
	"context"

	"github.com/fsdevblog/qrshort/internal/models"
	"github.com/fsdevblog/qrshort/internal/repositories"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PlanRepo struct {
	db     *gorm.DB
	logger *logrus.Entry
}

func NewPlanRepo(db *gorm.DB, logger *logrus.Logger) *PlanRepo {
	return &PlanRepo{
		db:     db,
		logger: logger.WithField("module", "repository/sql/plan"),
	}
}

// GetByRef находит тарифный план по внешнему идентификатору.
func (p *PlanRepo) GetByRef(ctx context.Context, ref string) (*models.Plan, error) {
	var plan models.Plan
	if err := p.db.WithContext(ctx).Where("ref = ?", ref).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		p.logger.WithError(err).Errorf("failed to get plan by ref %s", ref)
		return nil, ConvertErrorType(err)
	}
	return &plan, nil
}

// Create создает запись плана. Используется только при сидировании:
// сами планы живут в биллинговой подсистеме.
func (p *PlanRepo) Create(ctx context.Context, plan *models.Plan) error {
	if err := p.db.WithContext(ctx).Create(plan).Error; err != nil {
		p.logger.WithError(err).Errorf("failed to create plan %+v", *plan)
		return ConvertErrorType(err)
	}
	return nil
}
