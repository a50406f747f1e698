package controllers

import (
	"context"

	"github.com/fsdevblog/qrshort/internal/models"
	"github.com/fsdevblog/qrshort/internal/resolver"
	"github.com/fsdevblog/qrshort/internal/services"
)

type ConnectionChecker interface {
	CheckConnection(ctx context.Context) error
}

// ScanOrchestrator резолвит короткий код и планирует фоновый трекинг
// сканирования.
type ScanOrchestrator interface {
	Resolve(ctx context.Context, code string) (*resolver.Resolution, error)
	ScheduleTrack(res *resolver.Resolution, req services.ScanRequest)
}

// LinkManager операции управления короткими ссылками.
type LinkManager interface {
	Create(ctx context.Context, args services.CreateLinkArgs) (*models.ShortLink, error)
	GetByCode(ctx context.Context, code string) (*models.ShortLink, error)
	UpdateDestination(ctx context.Context, code string, destination string) (*models.ShortLink, error)
	UpdateStatus(ctx context.Context, code string, status models.LinkStatus) (*models.ShortLink, error)
	GetAllByOwnerID(ctx context.Context, ownerID string) ([]models.ShortLink, error)
}

// ScanCounter статистика сканирований для владельческого API.
type ScanCounter interface {
	CountByCode(ctx context.Context, code string) (int64, error)
}
