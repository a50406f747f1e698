package services

import (
	"context"

	"github.com/fsdevblog/qrshort/internal/models"
	"github.com/fsdevblog/qrshort/internal/repositories"
)

// ScanEventRepository описывает репозиторий событий сканирования.
type ScanEventRepository interface {
	// BatchWrite записывает события батчем, идемпотентно по ID.
	BatchWrite(ctx context.Context, events []models.ScanEvent) (*repositories.BatchWriteScansResult, error)
	// CountByCode количество событий по коду.
	CountByCode(ctx context.Context, code string) (int64, error)
}

// ScanService durable хранилище событий сканирования. Реализует
// контракт стока (sink.EventStore).
type ScanService struct {
	scanRepo ScanEventRepository
}

func NewScanService(scanRepo ScanEventRepository) *ScanService {
	return &ScanService{scanRepo: scanRepo}
}

// WriteBatch пишет батч событий. Дубликаты по ID не считаются ошибкой.
func (s *ScanService) WriteBatch(ctx context.Context, events []models.ScanEvent) error {
	if _, err := s.scanRepo.BatchWrite(ctx, events); err != nil {
		return ErrUnknown
	}
	return nil
}

// CountByCode количество сканирований кода (владельческая статистика).
func (s *ScanService) CountByCode(ctx context.Context, code string) (int64, error) {
	count, err := s.scanRepo.CountByCode(ctx, code)
	if err != nil {
		return 0, ErrUnknown
	}
	return count, nil
}
