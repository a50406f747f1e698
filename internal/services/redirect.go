package services

import (
	"context"
	"sync"
	"time"

	"github.com/fsdevblog/qrshort/internal/metrics"
	"github.com/fsdevblog/qrshort/internal/models"
	"github.com/fsdevblog/qrshort/internal/quota"
	"github.com/fsdevblog/qrshort/internal/resolver"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// CodeResolver горячий путь код -> адрес назначения.
type CodeResolver interface {
	Resolve(ctx context.Context, code string) (*resolver.Resolution, error)
}

// SignalParser разборщик клиентских сигналов.
type SignalParser interface {
	Parse(ip, userAgent, referer, acceptLanguage string) models.TrackingSignals
}

// Admitter вердикт по квоте. Никогда не блокирует редирект.
type Admitter interface {
	Admit(ctx context.Context, planRef string, isBot bool) quota.Admission
}

// EventWriter неблокирующий сток событий сканирования.
type EventWriter interface {
	Enqueue(event models.ScanEvent) bool
}

// ScanRequest сырые атрибуты запроса сканирования. Снимается с
// http-запроса до отправки редиректа, разбирается уже после.
type ScanRequest struct {
	Code           string
	IP             string
	UserAgent      string
	Referer        string
	AcceptLanguage string
}

// RedirectService оркестратор сканирования: резолвит код и планирует
// трекинг. Трекинг (разбор сигналов, квота, постановка события в
// очередь) выполняется в отдельной горутине параллельно с ответом
// клиенту — латентность редиректа его не включает.
type RedirectService struct {
	resolver CodeResolver
	parser   SignalParser
	quota    Admitter
	sink     EventWriter
	metrics  *metrics.Metrics
	logger   *logrus.Entry

	tracks sync.WaitGroup
	now    func() time.Time
}

func NewRedirectService(
	codeResolver CodeResolver,
	parser SignalParser,
	admitter Admitter,
	sink EventWriter,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *RedirectService {
	return &RedirectService{
		resolver: codeResolver,
		parser:   parser,
		quota:    admitter,
		sink:     sink,
		metrics:  m,
		logger:   logger.WithField("module", "services/redirect"),
		now:      time.Now,
	}
}

// Resolve возвращает результат резолва кода и считает исходы.
func (s *RedirectService) Resolve(ctx context.Context, code string) (*resolver.Resolution, error) {
	res, err := s.resolver.Resolve(ctx, code)
	if err != nil {
		switch {
		case errors.Is(err, resolver.ErrLinkNotFound):
			s.countOutcome(metrics.OutcomeNotFound)
		case errors.Is(err, resolver.ErrResolutionUnavailable):
			s.countOutcome(metrics.OutcomeUnavailable)
		}
		return nil, err //nolint:wrapcheck
	}
	if res.Status != models.LinkStatusActive {
		s.countOutcome(metrics.OutcomeInactive)
	} else {
		s.countOutcome(metrics.OutcomeRedirect)
	}
	return res, nil
}

// ScheduleTrack запускает трекинг сканирования в фоне и сразу
// возвращается. Любой сбой внутри гасится локально: трекинг не имеет
// права повлиять на уже отправленный редирект.
func (s *RedirectService) ScheduleTrack(res *resolver.Resolution, req ScanRequest) {
	occurredAt := s.now().UTC()
	s.tracks.Add(1)
	go func() {
		defer s.tracks.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Errorf("tracking panic for code %s: %v", req.Code, r)
			}
		}()
		s.track(res, req, occurredAt)
	}()
}

// Shutdown дожидается in-flight трекинга (в пределах дедлайна ctx),
// чтобы события успели встать в очередь до дренажа стока.
func (s *RedirectService) Shutdown(ctx context.Context) error {
	finished := make(chan struct{})
	go func() {
		s.tracks.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck
	}
}

func (s *RedirectService) track(res *resolver.Resolution, req ScanRequest, occurredAt time.Time) {
	signals := s.parser.Parse(req.IP, req.UserAgent, req.Referer, req.AcceptLanguage)

	admission := s.quota.Admit(context.Background(), res.PlanRef, signals.IsBot)

	s.sink.Enqueue(models.ScanEvent{
		ID:         uuid.NewString(),
		Code:       req.Code,
		OccurredAt: occurredAt,
		Signals:    signals,
		Counted:    admission.Counted,
		OverQuota:  admission.OverQuota,
	})
}

func (s *RedirectService) countOutcome(outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.Scans.WithLabelValues(outcome).Inc()
}
