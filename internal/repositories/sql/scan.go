package sql

import (
	"context"

	"github.com/fsdevblog/qrshort/internal/models"
	"github.com/fsdevblog/qrshort/internal/repositories"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScanEventRepo struct {
	db     *gorm.DB
	logger *logrus.Entry
}

func NewScanEventRepo(db *gorm.DB, logger *logrus.Logger) *ScanEventRepo {
	return &ScanEventRepo{
		db:     db,
		logger: logger.WithField("module", "repository/sql/scan"),
	}
}

// BatchWrite записывает события батчем. Конфликт по первичному ключу
// игнорируется (ON CONFLICT DO NOTHING): повторная запись батча после
// частичного провала не плодит дубли.
func (s *ScanEventRepo) BatchWrite(ctx context.Context, events []models.ScanEvent) (*repositories.BatchWriteScansResult, error) {
	if len(events) == 0 {
		return &repositories.BatchWriteScansResult{}, nil
	}

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&events)
	if res.Error != nil {
		s.logger.WithError(res.Error).Errorf("failed to write batch of %d events", len(events))
		return nil, ConvertErrorType(res.Error)
	}

	return &repositories.BatchWriteScansResult{
		Written:    int(res.RowsAffected),
		Duplicates: len(events) - int(res.RowsAffected),
	}, nil
}

// CountByCode количество событий по коду (для владельческой статистики).
func (s *ScanEventRepo) CountByCode(ctx context.Context, code string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.ScanEvent{}).
		Where("code = ?", code).
		Count(&count).Error
	if err != nil {
		s.logger.WithError(err).Errorf("failed to count events by code %s", code)
		return 0, ConvertErrorType(err)
	}
	return count, nil
}
