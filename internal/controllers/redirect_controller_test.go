package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fsdevblog/qrshort/internal/metrics"
	"github.com/fsdevblog/qrshort/internal/models"
	"github.com/fsdevblog/qrshort/internal/resolver"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type RedirectControllerSuite struct {
	suite.Suite
	orchestrator *orchestratorMock
	linkManager  *linkManagerMock
	scanCounter  *scanCounterMock
	pinger       *pingerMock
	router       *gin.Engine
}

func (s *RedirectControllerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.orchestrator = new(orchestratorMock)
	s.linkManager = new(linkManagerMock)
	s.scanCounter = new(scanCounterMock)
	s.pinger = new(pingerMock)
	s.router = SetupRouter(RouterParams{
		Orchestrator: s.orchestrator,
		LinkService:  s.linkManager,
		ScanService:  s.scanCounter,
		Pinger:       s.pinger,
		Metrics:      metrics.New(),
		Logger:       logrus.New(),
	})
}

func (s *RedirectControllerSuite) doGet(path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RedirectControllerSuite) TestRedirect_Static() {
	s.orchestrator.On("Resolve", mock.Anything, "sKoX9A11").
		Return(&resolver.Resolution{
			Destination: "https://example.com/menu",
			Kind:        models.LinkKindStatic,
			Status:      models.LinkStatusActive,
		}, nil).Once()

	w := s.doGet("/sKoX9A11", nil)

	s.Equal(http.StatusMovedPermanently, w.Code)
	s.Equal("https://example.com/menu", w.Header().Get("Location"))
}

func (s *RedirectControllerSuite) TestRedirect_DynamicNotCacheable() {
	s.orchestrator.On("Resolve", mock.Anything, "sKoX9A11").
		Return(&resolver.Resolution{
			Destination: "https://example.com/promo",
			Kind:        models.LinkKindDynamic,
			Status:      models.LinkStatusActive,
		}, nil).Once()

	w := s.doGet("/sKoX9A11", nil)

	s.Equal(http.StatusTemporaryRedirect, w.Code)
	s.Equal("https://example.com/promo", w.Header().Get("Location"))
	s.Equal("no-store", w.Header().Get("Cache-Control"))
}

func (s *RedirectControllerSuite) TestRedirect_SchedulesTracking() {
	s.orchestrator.On("Resolve", mock.Anything, "sKoX9A11").
		Return(&resolver.Resolution{
			Destination: "https://example.com",
			Kind:        models.LinkKindStatic,
			Status:      models.LinkStatusActive,
		}, nil).Once()

	s.doGet("/sKoX9A11", map[string]string{
		"User-Agent":      "Mozilla/5.0",
		"Referer":         "https://qr.example.com/poster",
		"Accept-Language": "en-US,en;q=0.9",
	})

	tracked := s.orchestrator.trackedRequests()
	s.Require().Len(tracked, 1)
	s.Equal("sKoX9A11", tracked[0].Code)
	s.Equal("Mozilla/5.0", tracked[0].UserAgent)
	s.Equal("https://qr.example.com/poster", tracked[0].Referer)
	s.Equal("en-US,en;q=0.9", tracked[0].AcceptLanguage)
	s.NotEmpty(tracked[0].IP)
}

func (s *RedirectControllerSuite) TestRedirect_UnknownCode() {
	s.orchestrator.On("Resolve", mock.Anything, "missing0").
		Return(nil, resolver.ErrLinkNotFound).Once()

	w := s.doGet("/missing0", nil)

	s.Equal(http.StatusNotFound, w.Code)
	// неизвестный код не порождает событий
	s.Empty(s.orchestrator.trackedRequests())
}

func (s *RedirectControllerSuite) TestRedirect_BadLengthSkipsResolve() {
	w := s.doGet("/short", nil)

	s.Equal(http.StatusNotFound, w.Code)
	s.orchestrator.AssertNotCalled(s.T(), "Resolve")
}

func (s *RedirectControllerSuite) TestRedirect_InactiveLink() {
	for _, status := range []models.LinkStatus{models.LinkStatusPaused, models.LinkStatusExpired} {
		s.orchestrator.On("Resolve", mock.Anything, "sKoX9A11").
			Return(&resolver.Resolution{
				Destination: "https://example.com",
				Kind:        models.LinkKindStatic,
				Status:      status,
			}, nil).Once()

		w := s.doGet("/sKoX9A11", nil)

		s.Equal(http.StatusGone, w.Code)
		s.Empty(w.Header().Get("Location"))
	}
	s.Empty(s.orchestrator.trackedRequests())
}

func (s *RedirectControllerSuite) TestRedirect_StoreUnavailable() {
	s.orchestrator.On("Resolve", mock.Anything, "sKoX9A11").
		Return(nil, resolver.ErrResolutionUnavailable).Once()

	w := s.doGet("/sKoX9A11", nil)

	s.Equal(http.StatusServiceUnavailable, w.Code)
	s.Empty(s.orchestrator.trackedRequests())
}

func (s *RedirectControllerSuite) TestPing() {
	s.pinger.On("CheckConnection", mock.Anything).Return(nil).Once()

	w := s.doGet("/ping", nil)

	s.Equal(http.StatusOK, w.Code)
	s.Equal("pong", w.Body.String())
}

func (s *RedirectControllerSuite) TestMetricsEndpoint() {
	w := s.doGet("/metrics", nil)
	s.Equal(http.StatusOK, w.Code)
}

func TestRedirectControllerSuite(t *testing.T) {
	suite.Run(t, new(RedirectControllerSuite))
}
