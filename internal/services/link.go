package services

import (
	"context"
	"sync"

	"github.com/fsdevblog/qrshort/internal/models"
	"github.com/fsdevblog/qrshort/internal/repositories"
	"github.com/pkg/errors"
)

// LinkRepository описывает репозиторий коротких ссылок.
type LinkRepository interface {
	// Create создает запись. Второе значение false при коллизии кода.
	Create(ctx context.Context, link *models.ShortLink) (*models.ShortLink, bool, error)
	// GetByCode находит запись по короткому коду.
	GetByCode(ctx context.Context, code string) (*models.ShortLink, error)
	// UpdateDestination меняет адрес назначения с инкрементом версии.
	UpdateDestination(ctx context.Context, code string, destination string) (*models.ShortLink, error)
	// UpdateStatus меняет статус с инкрементом версии.
	UpdateStatus(ctx context.Context, code string, status models.LinkStatus) (*models.ShortLink, error)
	// GetAllByOwnerID возвращает ссылки владельца.
	GetAllByOwnerID(ctx context.Context, ownerID string) ([]models.ShortLink, error)
}

// ChangeListener получает сигнал инвалидации при каждой мутации ссылки.
type ChangeListener func(code string, version uint64)

// CreateLinkArgs аргументы создания короткой ссылки.
type CreateLinkArgs struct {
	OwnerID     string
	Kind        models.LinkKind
	Destination string
	PlanRef     string
}

// LinkService сервис управления короткими ссылками. Играет роль
// источника правды для резолвера: каждая мутация рассылает слушателям
// сигнал (код, новая версия).
type LinkService struct {
	linkRepo LinkRepository

	mu        sync.RWMutex
	listeners []ChangeListener
}

func NewLinkService(linkRepo LinkRepository) *LinkService {
	return &LinkService{linkRepo: linkRepo}
}

// Subscribe регистрирует слушателя сигналов инвалидации.
func (l *LinkService) Subscribe(listener ChangeListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, listener)
}

// GetByCode находит ссылку по коду.
func (l *LinkService) GetByCode(ctx context.Context, code string) (*models.ShortLink, error) {
	link, err := l.linkRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errors.Wrapf(ErrRecordNotFound, "code %s not found", code)
		}
		return nil, ErrUnknown
	}
	return link, nil
}

// Create создает ссылку, подбирая свободный короткий код.
func (l *LinkService) Create(ctx context.Context, args CreateLinkArgs) (*models.ShortLink, error) {
	var delta uint = 1
	var deltaMax uint = 10

	for {
		if delta >= deltaMax {
			return nil, errors.Wrap(ErrUnknown, "generateShortCode loop limit for link")
		}
		link := models.ShortLink{
			Code:        generateShortCode(args.Destination, delta, models.CodeLength),
			OwnerID:     args.OwnerID,
			Kind:        args.Kind,
			Destination: args.Destination,
			Status:      models.LinkStatusActive,
			Version:     1,
			PlanRef:     args.PlanRef,
		}
		created, unique, createErr := l.linkRepo.Create(ctx, &link)
		if createErr != nil {
			return nil, ErrUnknown
		}
		if !unique {
			delta++
			continue
		}
		return created, nil
	}
}

// UpdateDestination меняет адрес назначения динамической ссылки и
// рассылает сигнал инвалидации с новой версией. Для статичных ссылок
// возвращает ErrStaticDestination.
func (l *LinkService) UpdateDestination(ctx context.Context, code string, destination string) (*models.ShortLink, error) {
	existing, err := l.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing.Kind != models.LinkKindDynamic {
		return nil, ErrStaticDestination
	}

	link, updateErr := l.linkRepo.UpdateDestination(ctx, code, destination)
	if updateErr != nil {
		if errors.Is(updateErr, repositories.ErrNotFound) {
			return nil, errors.Wrapf(ErrRecordNotFound, "code %s not found", code)
		}
		return nil, ErrUnknown
	}
	l.notify(link.Code, link.Version)
	return link, nil
}

// UpdateStatus меняет статус ссылки и рассылает сигнал инвалидации.
func (l *LinkService) UpdateStatus(ctx context.Context, code string, status models.LinkStatus) (*models.ShortLink, error) {
	link, err := l.linkRepo.UpdateStatus(ctx, code, status)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errors.Wrapf(ErrRecordNotFound, "code %s not found", code)
		}
		return nil, ErrUnknown
	}
	l.notify(link.Code, link.Version)
	return link, nil
}

// GetAllByOwnerID возвращает все ссылки владельца.
func (l *LinkService) GetAllByOwnerID(ctx context.Context, ownerID string) ([]models.ShortLink, error) {
	links, err := l.linkRepo.GetAllByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, ErrUnknown
	}
	return links, nil
}

func (l *LinkService) notify(code string, version uint64) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, listener := range l.listeners {
		listener(code, version)
	}
}
