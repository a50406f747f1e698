package controllers

import (
	"github.com/fsdevblog/qrshort/internal/controllers/middlewares"
	"github.com/fsdevblog/qrshort/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RouterParams зависимости маршрутизатора.
type RouterParams struct {
	Orchestrator ScanOrchestrator
	LinkService  LinkManager
	ScanService  ScanCounter
	Pinger       ConnectionChecker
	Metrics      *metrics.Metrics
	Logger       *logrus.Logger
}

func SetupRouter(p RouterParams) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware(p.Logger))

	redirectController := NewRedirectController(p.Orchestrator)
	linksController := NewLinksController(p.LinkService, p.ScanService)
	pingController := NewPingController(p.Pinger)

	// горячий путь без gzip: тело редиректа пустое
	r.GET("/:code", redirectController.Redirect)
	r.GET("/ping", pingController.Ping)
	r.GET("/metrics", gin.WrapH(p.Metrics.Handler()))

	api := r.Group("/api")
	api.Use(middlewares.GzipMiddleware())
	api.POST("/links", linksController.Create)
	api.GET("/links", linksController.Index)
	api.GET("/links/:code", linksController.Show)
	api.PATCH("/links/:code", linksController.Update)
	return r
}
