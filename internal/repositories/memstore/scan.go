package memstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsdevblog/qrshort/internal/db"
	"github.com/fsdevblog/qrshort/internal/db/memory"
	"github.com/fsdevblog/qrshort/internal/models"
	"github.com/fsdevblog/qrshort/internal/repositories"
)

// ScanEventRepo репозиторий событий сканирования в памяти.
// Ключ хранилища — ID события.
type ScanEventRepo struct {
	s *db.MemoryStorage
}

func NewScanEventRepo(store *db.MemoryStorage) *ScanEventRepo {
	return &ScanEventRepo{
		s: store,
	}
}

// BatchWrite записывает события батчем. Дубликаты по ID молча
// пропускаются: повторная запись после частичного провала не плодит копий.
func (s *ScanEventRepo) BatchWrite(ctx context.Context, events []models.ScanEvent) (*repositories.BatchWriteScansResult, error) {
	var collection = make(map[string]*models.ScanEvent, len(events))
	for i := range events {
		collection[events[i].ID] = &events[i]
	}

	var result repositories.BatchWriteScansResult
	for _, br := range memory.BatchSet[models.ScanEvent](ctx, collection, s.s.MStorage) {
		switch {
		case br.Err == nil:
			result.Written++
		case errors.Is(br.Err, memory.ErrDuplicateKey):
			result.Duplicates++
		default:
			return nil, fmt.Errorf("failed to write batch: %w", convertErrorType(br.Err))
		}
	}
	return &result, nil
}

// CountByCode количество событий по коду.
func (s *ScanEventRepo) CountByCode(ctx context.Context, code string) (int64, error) {
	data, err := memory.FilterAll[models.ScanEvent](ctx, s.s.MStorage, func(val models.ScanEvent) bool {
		return val.Code == code
	})
	if err != nil {
		return 0, fmt.Errorf(
			"failed to count events by code %s: %w",
			code, convertErrorType(err),
		)
	}
	return int64(len(data)), nil
}
