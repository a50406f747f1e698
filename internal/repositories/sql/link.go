package sql

import (
	"context"

	"github.com/fsdevblog/qrshort/internal/models"
	"github.com/fsdevblog/qrshort/internal/repositories"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type LinkRepo struct {
	db     *gorm.DB
	logger *logrus.Entry
}

func NewLinkRepo(db *gorm.DB, logger *logrus.Logger) *LinkRepo {
	return &LinkRepo{
		db:     db,
		logger: logger.WithField("module", "repository/sql/link"),
	}
}

// Create создает запись ссылки. Второе возвращаемое значение false
// означает коллизию короткого кода (запись не создана).
func (l *LinkRepo) Create(ctx context.Context, link *models.ShortLink) (*models.ShortLink, bool, error) {
	if err := l.db.WithContext(ctx).Create(link).Error; err != nil {
		if errors.Is(ConvertErrorType(err), repositories.ErrDuplicateKey) {
			return nil, false, nil
		}
		l.logger.WithError(err).Errorf("failed to create record %+v", *link)
		return nil, false, ConvertErrorType(err)
	}
	return link, true, nil
}

// GetByCode находит ссылку по короткому коду.
func (l *LinkRepo) GetByCode(ctx context.Context, code string) (*models.ShortLink, error) {
	var link models.ShortLink
	if err := l.db.WithContext(ctx).Where("code = ?", code).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		l.logger.WithError(err).Errorf("failed to get record by code %s", code)
		return nil, errors.Wrapf(ConvertErrorType(err), "failed to get record by code %s", code)
	}
	return &link, nil
}

// UpdateDestination меняет адрес назначения и инкрементит версию
// одним запросом. Возвращает запись уже с новой версией.
func (l *LinkRepo) UpdateDestination(ctx context.Context, code string, destination string) (*models.ShortLink, error) {
	res := l.db.WithContext(ctx).
		Model(&models.ShortLink{}).
		Where("code = ?", code).
		Updates(map[string]any{
			"destination": destination,
			"version":     gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		l.logger.WithError(res.Error).Errorf("failed to update destination for code %s", code)
		return nil, ConvertErrorType(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, repositories.ErrNotFound
	}
	return l.GetByCode(ctx, code)
}

// UpdateStatus меняет статус ссылки. Версия инкрементится и здесь:
// смена статуса должна доехать до кеша тем же сигналом инвалидации,
// что и смена адреса назначения.
func (l *LinkRepo) UpdateStatus(ctx context.Context, code string, status models.LinkStatus) (*models.ShortLink, error) {
	res := l.db.WithContext(ctx).
		Model(&models.ShortLink{}).
		Where("code = ?", code).
		Updates(map[string]any{
			"status":  status,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		l.logger.WithError(res.Error).Errorf("failed to update status for code %s", code)
		return nil, ConvertErrorType(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, repositories.ErrNotFound
	}
	return l.GetByCode(ctx, code)
}

// GetAllByOwnerID возвращает ссылки владельца.
func (l *LinkRepo) GetAllByOwnerID(ctx context.Context, ownerID string) ([]models.ShortLink, error) {
	var links []models.ShortLink
	if err := l.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&links).Error; err != nil {
		l.logger.WithError(err).Errorf("failed to get records by owner %s", ownerID)
		return nil, ConvertErrorType(err)
	}
	return links, nil
}
