package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fsdevblog/qrshort/internal/db"
	"github.com/fsdevblog/qrshort/internal/db/memory"
	"github.com/fsdevblog/qrshort/internal/models"
)

// LinkRepo репозиторий коротких ссылок в памяти. Ключ хранилища — код ссылки.
type LinkRepo struct {
	s  *db.MemoryStorage
	mu sync.Mutex
}

func NewLinkRepo(store *db.MemoryStorage) *LinkRepo {
	return &LinkRepo{
		s: store,
	}
}

// Create создает новую запись ссылки.
//
// Возвращает:
//   - *models.ShortLink: созданная запись
//   - bool: false если код уже занят (коллизия)
//   - error: ошибка создания (преобразованная через convertErrorType)
func (l *LinkRepo) Create(ctx context.Context, link *models.ShortLink) (*models.ShortLink, bool, error) {
	if err := memory.Set[models.ShortLink](ctx, link.Code, link, l.s.MStorage); err != nil {
		if errors.Is(err, memory.ErrDuplicateKey) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to create record: %w", convertErrorType(err))
	}
	return link, true, nil
}

// GetByCode получает ссылку по короткому коду.
func (l *LinkRepo) GetByCode(ctx context.Context, code string) (*models.ShortLink, error) {
	link, err := memory.Get[models.ShortLink](ctx, code, l.s.MStorage)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to get record by code %s: %w",
			code, convertErrorType(err),
		)
	}
	return link, nil
}

// UpdateDestination меняет адрес назначения и инкрементит версию.
// Чтение-изменение-запись защищено мьютексом репозитория.
func (l *LinkRepo) UpdateDestination(ctx context.Context, code string, destination string) (*models.ShortLink, error) {
	return l.update(ctx, code, func(link *models.ShortLink) {
		link.Destination = destination
	})
}

// UpdateStatus меняет статус ссылки, также с инкрементом версии.
func (l *LinkRepo) UpdateStatus(ctx context.Context, code string, status models.LinkStatus) (*models.ShortLink, error) {
	return l.update(ctx, code, func(link *models.ShortLink) {
		link.Status = status
	})
}

// GetAllByOwnerID получает все ссылки владельца.
func (l *LinkRepo) GetAllByOwnerID(ctx context.Context, ownerID string) ([]models.ShortLink, error) {
	data, err := memory.FilterAll[models.ShortLink](ctx, l.s.MStorage, func(val models.ShortLink) bool {
		return val.OwnerID == ownerID
	})
	if err != nil {
		return nil, fmt.Errorf(
			"failed to get records by owner %s: %w",
			ownerID, convertErrorType(err),
		)
	}
	return data, nil
}

func (l *LinkRepo) update(ctx context.Context, code string, mutate func(*models.ShortLink)) (*models.ShortLink, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	link, err := memory.Get[models.ShortLink](ctx, code, l.s.MStorage)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to get record by code %s: %w",
			code, convertErrorType(err),
		)
	}

	mutate(link)
	link.Version++

	if setErr := memory.Set[models.ShortLink](ctx, code, link, l.s.MStorage, memory.WithOverwrite()); setErr != nil {
		return nil, fmt.Errorf(
			"failed to update record by code %s: %w",
			code, convertErrorType(setErr),
		)
	}
	return link, nil
}
