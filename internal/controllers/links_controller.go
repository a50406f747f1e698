package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"regexp"

	"github.com/fsdevblog/qrshort/internal/models"
	"github.com/fsdevblog/qrshort/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

// hostnameRegex в соответствии с `RFC 1123` за исключением - исключает корневые доменные имена (без зоны).
var hostnameRegex = regexp.MustCompile(`^([a-zA-Z0-9](-?[a-zA-Z0-9])*\.)+([a-zA-Z0-9](-?[a-zA-Z0-9])*)$`)

type LinksController struct {
	linkService LinkManager
	scanService ScanCounter
}

func NewLinksController(linkService LinkManager, scanService ScanCounter) *LinksController {
	return &LinksController{
		linkService: linkService,
		scanService: scanService,
	}
}

type createLinkRequest struct {
	Destination string `json:"destination"`
	Kind        string `json:"kind"`
	OwnerID     string `json:"owner_id"`
	PlanRef     string `json:"plan_ref"`
}

type updateLinkRequest struct {
	Destination string `json:"destination,omitempty"`
	Status      string `json:"status,omitempty"`
}

type linkResponse struct {
	Code        string `json:"code"`
	Destination string `json:"destination"`
	Kind        string `json:"kind"`
	Status      string `json:"status"`
	Version     uint64 `json:"version"`
	Scans       int64  `json:"scans,omitempty"`
}

// Create обрабатывает POST /api/links.
func (c *LinksController) Create(ctx *gin.Context) {
	if !isJSONRequest(ctx) {
		ctx.String(http.StatusUnsupportedMediaType, "expected application/json")
		return
	}

	var req createLinkRequest
	if err := bindJSON(ctx, &req); err != nil {
		ctx.String(http.StatusBadRequest, err.Error())
		return
	}

	parsedURL, parseErr := validateURL(req.Destination)
	if parseErr != nil {
		ctx.String(http.StatusUnprocessableEntity, parseErr.Error())
		return
	}

	kind := models.LinkKind(req.Kind)
	if kind == "" {
		kind = models.LinkKindDynamic
	}
	if kind != models.LinkKindStatic && kind != models.LinkKindDynamic {
		ctx.String(http.StatusUnprocessableEntity, "kind must be static or dynamic")
		return
	}

	createCtx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
	defer cancel()

	link, createErr := c.linkService.Create(createCtx, services.CreateLinkArgs{
		Destination: parsedURL.String(),
		Kind:        kind,
		OwnerID:     req.OwnerID,
		PlanRef:     req.PlanRef,
	})
	if createErr != nil {
		ctx.String(http.StatusInternalServerError, ErrInternal.Error())
		return
	}

	ctx.JSON(http.StatusCreated, newLinkResponse(link, 0))
}

// Index обрабатывает GET /api/links?owner_id=... и отдает все ссылки
// владельца.
func (c *LinksController) Index(ctx *gin.Context) {
	ownerID := ctx.Query("owner_id")
	if ownerID == "" {
		ctx.String(http.StatusBadRequest, "owner_id is required")
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
	defer cancel()

	links, err := c.linkService.GetAllByOwnerID(reqCtx, ownerID)
	if err != nil {
		ctx.String(http.StatusInternalServerError, ErrInternal.Error())
		return
	}

	resp := make([]linkResponse, 0, len(links))
	for i := range links {
		resp = append(resp, newLinkResponse(&links[i], 0))
	}
	ctx.JSON(http.StatusOK, resp)
}

// Show обрабатывает GET /api/links/:code. Отдает ссылку вместе со
// счетчиком записанных сканирований.
func (c *LinksController) Show(ctx *gin.Context) {
	code := ctx.Param("code")

	reqCtx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
	defer cancel()

	link, err := c.linkService.GetByCode(reqCtx, code)
	if err != nil {
		if errors.Is(err, services.ErrRecordNotFound) {
			ctx.String(http.StatusNotFound, ErrRecordNotFound.Error())
			return
		}
		ctx.String(http.StatusInternalServerError, ErrInternal.Error())
		return
	}

	scans, countErr := c.scanService.CountByCode(reqCtx, code)
	if countErr != nil {
		// счетчик не критичен для ответа
		scans = 0
	}

	ctx.JSON(http.StatusOK, newLinkResponse(link, scans))
}

// Update обрабатывает PATCH /api/links/:code. Меняет адрес назначения
// и/или статус; каждое изменение поднимает версию ссылки и
// инвалидирует кеш резолвера.
func (c *LinksController) Update(ctx *gin.Context) {
	if !isJSONRequest(ctx) {
		ctx.String(http.StatusUnsupportedMediaType, "expected application/json")
		return
	}

	code := ctx.Param("code")

	var req updateLinkRequest
	if err := bindJSON(ctx, &req); err != nil {
		ctx.String(http.StatusBadRequest, err.Error())
		return
	}
	if req.Destination == "" && req.Status == "" {
		ctx.String(http.StatusBadRequest, "nothing to update")
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
	defer cancel()

	var link *models.ShortLink
	var err error

	if req.Destination != "" {
		parsedURL, parseErr := validateURL(req.Destination)
		if parseErr != nil {
			ctx.String(http.StatusUnprocessableEntity, parseErr.Error())
			return
		}
		link, err = c.linkService.UpdateDestination(reqCtx, code, parsedURL.String())
		if err != nil {
			c.renderUpdateError(ctx, err)
			return
		}
	}

	if req.Status != "" {
		status := models.LinkStatus(req.Status)
		if status != models.LinkStatusActive && status != models.LinkStatusPaused && status != models.LinkStatusExpired {
			ctx.String(http.StatusUnprocessableEntity, "status must be active, paused or expired")
			return
		}
		link, err = c.linkService.UpdateStatus(reqCtx, code, status)
		if err != nil {
			c.renderUpdateError(ctx, err)
			return
		}
	}

	ctx.JSON(http.StatusOK, newLinkResponse(link, 0))
}

func (c *LinksController) renderUpdateError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrRecordNotFound):
		ctx.String(http.StatusNotFound, ErrRecordNotFound.Error())
	case errors.Is(err, services.ErrStaticDestination):
		ctx.String(http.StatusUnprocessableEntity, err.Error())
	default:
		ctx.String(http.StatusInternalServerError, ErrInternal.Error())
	}
}

func newLinkResponse(link *models.ShortLink, scans int64) linkResponse {
	return linkResponse{
		Code:        link.Code,
		Destination: link.Destination,
		Kind:        string(link.Kind),
		Status:      string(link.Status),
		Version:     link.Version,
		Scans:       scans,
	}
}

// bindJSON читает тело запроса и декодирует его в dst.
func bindJSON(ctx *gin.Context, dst any) error {
	body, readErr := io.ReadAll(ctx.Request.Body)
	if readErr != nil {
		return errors.New("failed to read request body")
	}
	if unmarshalErr := json.Unmarshal(body, dst); unmarshalErr != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

// validateURL проверяет, является ли строка корректным URL.
func validateURL(rawURL string) (*url.URL, error) {
	parsedURL, err := url.ParseRequestURI(rawURL)

	if err != nil {
		return nil, errors.New("invalid URL format")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, errors.New("URL must have http or https scheme")
	}

	if parsedURL.Host == "" {
		return nil, errors.New("URL must have a host")
	}

	if parsedURL.Hostname() != "localhost" && !hostnameRegex.MatchString(parsedURL.Hostname()) {
		return nil, errors.New("invalid hostname")
	}

	return parsedURL, nil
}
