package controllers

import (
	"context"
	"net/http"

	"github.com/fsdevblog/qrshort/internal/models"
	"github.com/fsdevblog/qrshort/internal/resolver"
	"github.com/fsdevblog/qrshort/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// RedirectController обслуживает сканирования: GET /:code.
type RedirectController struct {
	orchestrator ScanOrchestrator
}

func NewRedirectController(orchestrator ScanOrchestrator) *RedirectController {
	return &RedirectController{orchestrator: orchestrator}
}

// Redirect резолвит код и отвечает редиректом. Трекинг планируется
// после записи ответа: в латентность редиректа не входит ни разбор
// User-Agent, ни гео, ни запись события.
//
// Ответы:
//   - 301 — статичная ссылка (адрес не меняется, кешируемо);
//   - 307 — динамическая ссылка (адрес может смениться, без кеша);
//   - 404 — код не найден;
//   - 410 — ссылка приостановлена или истекла;
//   - 503 — хранилище недоступно на холодном промахе.
func (c *RedirectController) Redirect(ctx *gin.Context) {
	code := ctx.Param("code")

	if len(code) != models.CodeLength {
		ctx.String(http.StatusNotFound, ErrRecordNotFound.Error())
		return
	}

	resolveCtx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
	defer cancel()

	res, err := c.orchestrator.Resolve(resolveCtx, code)
	if err != nil {
		switch {
		case errors.Is(err, resolver.ErrLinkNotFound):
			ctx.String(http.StatusNotFound, ErrRecordNotFound.Error())
		case errors.Is(err, resolver.ErrResolutionUnavailable):
			ctx.String(http.StatusServiceUnavailable, ErrResolutionUnavailable.Error())
		default:
			ctx.String(http.StatusInternalServerError, ErrInternal.Error())
		}
		return
	}

	if res.Status != models.LinkStatusActive {
		// не 404: код существует, но редиректить по нему нельзя
		ctx.String(http.StatusGone, ErrLinkInactive.Error())
		return
	}

	if res.Kind == models.LinkKindStatic {
		ctx.Redirect(http.StatusMovedPermanently, res.Destination)
	} else {
		ctx.Header("Cache-Control", "no-store")
		ctx.Redirect(http.StatusTemporaryRedirect, res.Destination)
	}

	c.orchestrator.ScheduleTrack(res, services.ScanRequest{
		Code:           code,
		IP:             ctx.ClientIP(),
		UserAgent:      ctx.Request.UserAgent(),
		Referer:        ctx.Request.Referer(),
		AcceptLanguage: ctx.Request.Header.Get("Accept-Language"),
	})
}
