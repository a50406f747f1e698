package services

import (
	"context"
	"testing"
	"time"

	"github.com/fsdevblog/qrshort/internal/metrics"
	"github.com/fsdevblog/qrshort/internal/models"
	"github.com/fsdevblog/qrshort/internal/quota"
	"github.com/fsdevblog/qrshort/internal/resolver"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type codeResolverMock struct {
	mock.Mock
}

func (m *codeResolverMock) Resolve(ctx context.Context, code string) (*resolver.Resolution, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).(*resolver.Resolution), args.Error(1) //nolint:wrapcheck,errcheck
}

type parserMock struct {
	mock.Mock
}

func (m *parserMock) Parse(ip, userAgent, referer, acceptLanguage string) models.TrackingSignals {
	args := m.Called(ip, userAgent, referer, acceptLanguage)
	return args.Get(0).(models.TrackingSignals) //nolint:errcheck
}

type admitterMock struct {
	mock.Mock
}

func (m *admitterMock) Admit(ctx context.Context, planRef string, isBot bool) quota.Admission {
	args := m.Called(ctx, planRef, isBot)
	return args.Get(0).(quota.Admission) //nolint:errcheck
}

// sinkMock копит события через канал, чтобы дождаться фоновой горутины.
type sinkMock struct {
	events chan models.ScanEvent
}

func newSinkMock() *sinkMock {
	return &sinkMock{events: make(chan models.ScanEvent, 16)}
}

func (m *sinkMock) Enqueue(event models.ScanEvent) bool {
	m.events <- event
	return true
}

type RedirectServiceSuite struct {
	suite.Suite
	resolver *codeResolverMock
	parser   *parserMock
	admitter *admitterMock
	sink     *sinkMock
	service  *RedirectService
}

func (s *RedirectServiceSuite) SetupTest() {
	s.resolver = new(codeResolverMock)
	s.parser = new(parserMock)
	s.admitter = new(admitterMock)
	s.sink = newSinkMock()
	s.service = NewRedirectService(s.resolver, s.parser, s.admitter, s.sink, metrics.New(), logrus.New())
}

func (s *RedirectServiceSuite) waitEvent() models.ScanEvent {
	select {
	case event := <-s.sink.events:
		return event
	case <-time.After(2 * time.Second):
		s.T().Fatal("tracking event was not enqueued")
		return models.ScanEvent{}
	}
}

func (s *RedirectServiceSuite) TestResolve_Delegates() {
	want := &resolver.Resolution{
		Destination: "https://example.com",
		Status:      models.LinkStatusActive,
	}
	s.resolver.On("Resolve", mock.Anything, "sKoX9A11").Return(want, nil).Once()

	res, err := s.service.Resolve(context.Background(), "sKoX9A11")
	s.Require().NoError(err)
	s.Equal(want, res)
}

func (s *RedirectServiceSuite) TestResolve_PropagatesNotFound() {
	s.resolver.On("Resolve", mock.Anything, "missing0").
		Return(nil, resolver.ErrLinkNotFound).Once()

	_, err := s.service.Resolve(context.Background(), "missing0")
	s.Require().ErrorIs(err, resolver.ErrLinkNotFound)
}

func (s *RedirectServiceSuite) TestScheduleTrack_EnqueuesAnnotatedEvent() {
	res := &resolver.Resolution{PlanRef: "plan-basic", Status: models.LinkStatusActive}
	signals := models.TrackingSignals{IP: "203.0.113.7", Device: models.DeviceMobile}

	s.parser.On("Parse", "203.0.113.7", "Mozilla/5.0", "", "en-US").Return(signals).Once()
	s.admitter.On("Admit", mock.Anything, "plan-basic", false).
		Return(quota.Admission{Counted: true}).Once()

	s.service.ScheduleTrack(res, ScanRequest{
		Code:           "sKoX9A11",
		IP:             "203.0.113.7",
		UserAgent:      "Mozilla/5.0",
		AcceptLanguage: "en-US",
	})

	event := s.waitEvent()
	s.Equal("sKoX9A11", event.Code)
	s.NotEmpty(event.ID)
	s.True(event.Counted)
	s.False(event.OverQuota)
	s.Equal(signals, event.Signals)
}

func (s *RedirectServiceSuite) TestScheduleTrack_BotNotCounted() {
	res := &resolver.Resolution{PlanRef: "plan-basic", Status: models.LinkStatusActive}
	signals := models.TrackingSignals{IsBot: true}

	s.parser.On("Parse", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(signals).Once()
	s.admitter.On("Admit", mock.Anything, "plan-basic", true).
		Return(quota.Admission{}).Once()

	s.service.ScheduleTrack(res, ScanRequest{Code: "sKoX9A11", UserAgent: "curl/8.4.0"})

	event := s.waitEvent()
	s.True(event.Signals.IsBot)
	s.False(event.Counted)
	s.False(event.OverQuota)
}

func (s *RedirectServiceSuite) TestScheduleTrack_OverQuotaAnnotated() {
	res := &resolver.Resolution{PlanRef: "plan-basic", Status: models.LinkStatusActive}

	s.parser.On("Parse", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(models.TrackingSignals{}).Once()
	s.admitter.On("Admit", mock.Anything, "plan-basic", false).
		Return(quota.Admission{OverQuota: true}).Once()

	s.service.ScheduleTrack(res, ScanRequest{Code: "sKoX9A11"})

	event := s.waitEvent()
	s.False(event.Counted)
	s.True(event.OverQuota)
}

// Паника внутри трекинга не роняет процесс и не ломает Shutdown.
func (s *RedirectServiceSuite) TestScheduleTrack_PanicContained() {
	res := &resolver.Resolution{Status: models.LinkStatusActive}

	s.parser.On("Parse", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { panic("broken parser") }).
		Return(models.TrackingSignals{}).Once()

	s.service.ScheduleTrack(res, ScanRequest{Code: "sKoX9A11"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.Require().NoError(s.service.Shutdown(ctx))
}

func (s *RedirectServiceSuite) TestShutdown_WaitsForInflightTracking() {
	res := &resolver.Resolution{PlanRef: "", Status: models.LinkStatusActive}

	started := make(chan struct{})
	s.parser.On("Parse", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			time.Sleep(50 * time.Millisecond)
		}).
		Return(models.TrackingSignals{}).Once()
	s.admitter.On("Admit", mock.Anything, "", false).
		Return(quota.Admission{Counted: true}).Once()

	s.service.ScheduleTrack(res, ScanRequest{Code: "sKoX9A11"})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.Require().NoError(s.service.Shutdown(ctx))
	s.waitEvent()
}

func TestRedirectServiceSuite(t *testing.T) {
	suite.Run(t, new(RedirectServiceSuite))
}
