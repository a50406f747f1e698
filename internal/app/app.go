package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/qrshort/internal/config"
	"github.com/fsdevblog/qrshort/internal/controllers"
	"github.com/fsdevblog/qrshort/internal/db"
	"github.com/fsdevblog/qrshort/internal/metrics"
	"github.com/fsdevblog/qrshort/internal/quota"
	"github.com/fsdevblog/qrshort/internal/resolver"
	"github.com/fsdevblog/qrshort/internal/services"
	"github.com/fsdevblog/qrshort/internal/sink"
	"github.com/fsdevblog/qrshort/internal/tracking"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config     config.Config
	dbServices *services.Services
	metrics    *metrics.Metrics
	resolver   *resolver.Resolver
	parser     *tracking.Parser
	enforcer   *quota.Enforcer
	sink       *sink.Writer
	redirect   *services.RedirectService
	Logger     *logrus.Logger
}

func New(appConf config.Config) (*App, error) {
	logger := appConf.Logger

	dbServices, servicesErr := initServices(appConf, logger)
	if servicesErr != nil {
		return nil, fmt.Errorf("init services: %w", servicesErr)
	}

	m := metrics.New()

	res := resolver.New(dbServices.LinkRepo, resolver.Config{
		CacheCapacity: appConf.CacheCapacity,
		TTL:           appConf.CacheTTL,
		NegativeTTL:   appConf.NegativeTTL,
		LookupTimeout: appConf.LookupTimeout,
	}, m, logger)

	// мутации ссылок сразу выбивают запись из кеша резолвера
	dbServices.LinkService.Subscribe(func(code string, version uint64) {
		res.Invalidate(code, version)
	})

	parser, parserErr := tracking.New(appConf.GeoDBPath, logger)
	if parserErr != nil {
		return nil, fmt.Errorf("init tracking parser: %w", parserErr)
	}

	enforcer := quota.New(dbServices.PlanService, quota.Config{
		RefreshInterval: appConf.QuotaRefreshInterval,
	}, logger)

	writer := sink.NewWriter(dbServices.ScanService, sink.Config{
		QueueSize:     appConf.SinkQueueSize,
		BatchSize:     appConf.SinkBatchSize,
		FlushInterval: appConf.SinkFlushInterval,
		MaxRetries:    appConf.SinkMaxRetries,
	}, m, logger)

	redirect := services.NewRedirectService(res, parser, enforcer, writer, m, logger)

	return &App{
		config:     appConf,
		dbServices: dbServices,
		metrics:    m,
		resolver:   res,
		parser:     parser,
		enforcer:   enforcer,
		sink:       writer,
		redirect:   redirect,
		Logger:     logger,
	}, nil
}

// Must вызывает панику если произошла ошибка.
func Must(a *App, err error) *App {
	if err != nil {
		panic(err)
	}
	return a
}

// Run запускает web сервер и блокируется до SIGINT/SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go a.enforcer.Run(ctx)

	router := controllers.SetupRouter(controllers.RouterParams{
		Orchestrator: a.redirect,
		LinkService:  a.dbServices.LinkService,
		ScanService:  a.dbServices.ScanService,
		Pinger:       a.dbServices.PingService,
		Metrics:      a.metrics,
		Logger:       a.Logger,
	})

	server := &http.Server{
		Addr:              a.config.ServerAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second, //nolint:mnd
	}

	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("Shutdown command received")
	case serverErr = <-errChan:
		a.Logger.WithError(serverErr).Error("server error")
	}

	a.shutdown(server)
	return serverErr
}

// shutdown гасит компоненты в порядке потока данных: сначала сервер
// (новых сканирований нет), затем фоновый трекинг, последней очередь
// записи событий.
func (a *App) shutdown(server *http.Server) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if srvErr := server.Shutdown(shutdownCtx); srvErr != nil {
		a.Logger.WithError(srvErr).Error("server shutdown")
	}
	if trackErr := a.redirect.Shutdown(shutdownCtx); trackErr != nil {
		a.Logger.WithError(trackErr).Error("tracking shutdown")
	}
	if sinkErr := a.sink.Close(shutdownCtx); sinkErr != nil {
		a.Logger.WithError(sinkErr).Error("sink shutdown")
	}
	if parserErr := a.parser.Close(); parserErr != nil {
		a.Logger.WithError(parserErr).Error("parser shutdown")
	}
}

func initServices(appConf config.Config, logger *logrus.Logger) (*services.Services, error) {
	dbConn, connErr := db.NewConnectionFactory(db.FactoryConfig{
		StorageType:  whatIsDBStorageType(&appConf),
		PostgresDSN:  &appConf.DatabaseDSN,
		SqliteDBPath: &appConf.SQLitePath,
	})
	if connErr != nil {
		return nil, connErr //nolint:wrapcheck
	}

	dbServices, dbServErr := services.Factory(dbConn, whatIsServiceType(&appConf), logger)
	if dbServErr != nil {
		return nil, dbServErr //nolint:wrapcheck
	}
	return dbServices, nil
}

func whatIsDBStorageType(appConf *config.Config) db.StorageType {
	switch appConf.DBType {
	case config.DBTypePostgres:
		return db.StorageTypePostgres
	case config.DBTypeSQLite:
		return db.StorageTypeSQLite
	default:
		return db.StorageTypeInMemory
	}
}

func whatIsServiceType(appConf *config.Config) services.ServiceType {
	if appConf.DBType == config.DBTypeInMemory {
		return services.ServiceTypeInMemory
	}
	return services.ServiceTypeSQL
}
