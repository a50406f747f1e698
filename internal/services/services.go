package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsdevblog/qrshort/internal/db"
	"github.com/fsdevblog/qrshort/internal/repositories/memstore"
	"github.com/fsdevblog/qrshort/internal/repositories/sql"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ServiceType string

const (
	ServiceTypeSQL      ServiceType = "sql"
	ServiceTypeInMemory ServiceType = "inMemory"
)

// Services сервисный слой приложения. LinkRepo дополнительно отдается
// наружу: резолвер ходит в хранилище напрямую, минуя сервисные обертки.
type Services struct {
	LinkService *LinkService
	ScanService *ScanService
	PlanService *PlanService
	PingService *PingService
	LinkRepo    LinkRepository
}

func Factory(conn any, sType ServiceType, logger *logrus.Logger) (*Services, error) {
	switch sType {
	case ServiceTypeSQL:
		gormDB, ok := conn.(*gorm.DB)
		if !ok {
			return nil, errors.New("invalid connection type. expected *gorm.DB")
		}
		return getSQLServices(gormDB, logger), nil
	case ServiceTypeInMemory:
		return getInMemoryServices(), nil
	default:
		return nil, fmt.Errorf("unknown service type: %s", sType)
	}
}

func getSQLServices(conn *gorm.DB, logger *logrus.Logger) *Services {
	linkRepo := sql.NewLinkRepo(conn, logger)
	scanRepo := sql.NewScanEventRepo(conn, logger)
	planRepo := sql.NewPlanRepo(conn, logger)
	return &Services{
		LinkService: NewLinkService(linkRepo),
		ScanService: NewScanService(scanRepo),
		PlanService: NewPlanService(planRepo),
		PingService: NewPingService(&sqlPinger{conn: conn}),
		LinkRepo:    linkRepo,
	}
}

func getInMemoryServices() *Services {
	// у каждого репозитория свое хранилище: у них пересекаются ключи
	linkRepo := memstore.NewLinkRepo(db.NewMemStorage())
	scanRepo := memstore.NewScanEventRepo(db.NewMemStorage())
	planRepo := memstore.NewPlanRepo(db.NewMemStorage())
	return &Services{
		LinkService: NewLinkService(linkRepo),
		ScanService: NewScanService(scanRepo),
		PlanService: NewPlanService(planRepo),
		PingService: NewPingService(memPinger{}),
		LinkRepo:    linkRepo,
	}
}

// sqlPinger проверяет живость SQL подключения.
type sqlPinger struct {
	conn *gorm.DB
}

func (p *sqlPinger) Ping(ctx context.Context) error {
	sqlDB, err := p.conn.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.PingContext(ctx) //nolint:wrapcheck
}

// memPinger хранилище в памяти живо всегда.
type memPinger struct{}

func (memPinger) Ping(context.Context) error { return nil }
