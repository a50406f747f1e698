// Package sink асинхронно доставляет события сканирования в durable
// хранилище. Очередь ограничена: при переполнении новое событие
// отбрасывается со счетчиком, но редирект из-за аналитики не тормозится
// и не падает никогда.
package sink

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fsdevblog/qrshort/internal/metrics"
	"github.com/fsdevblog/qrshort/internal/models"
	"github.com/sirupsen/logrus"
)

// EventStore durable хранилище событий. Запись обязана быть
// идемпотентной по ID события.
type EventStore interface {
	WriteBatch(ctx context.Context, events []models.ScanEvent) error
}

// Config настройки писателя.
type Config struct {
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	WriteTimeout  time.Duration
	MaxRetries    uint64
}

func (c Config) withDefaults() Config {
	if c.QueueSize <= 0 {
		c.QueueSize = 4096
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 128
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 2 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	return c
}

// Writer фоновый писатель событий. Продюсеры (обработчики запросов)
// никогда не блокируются на очереди; весь I/O принадлежит флаш-воркеру.
type Writer struct {
	store   EventStore
	cfg     Config
	metrics *metrics.Metrics
	logger  *logrus.Entry

	queue chan models.ScanEvent
	done  chan struct{}
	wg    sync.WaitGroup

	closeOnce sync.Once
}

func NewWriter(store EventStore, cfg Config, m *metrics.Metrics, logger *logrus.Logger) *Writer {
	cfg = cfg.withDefaults()
	w := &Writer{
		store:   store,
		cfg:     cfg,
		metrics: m,
		logger:  logger.WithField("module", "sink"),
		queue:   make(chan models.ScanEvent, cfg.QueueSize),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

// Enqueue кладет событие в очередь и сразу возвращается. При
// заполненной очереди событие отбрасывается (drop-newest) со счетчиком
// droppedEvents; потеря аналитического события приемлема, блокировка
// редиректа — нет.
func (w *Writer) Enqueue(event models.ScanEvent) bool {
	select {
	case w.queue <- event:
		return true
	default:
		if w.metrics != nil {
			w.metrics.EventsDropped.Inc()
		}
		w.logger.WithField("eventID", event.ID).Debug("event queue full, dropping event")
		return false
	}
}

// Close останавливает воркер, дожимая очередь (best-effort, в пределах
// дедлайна ctx).
func (w *Writer) Close(ctx context.Context) error {
	w.closeOnce.Do(func() {
		close(w.done)
	})

	finished := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck
	}
}

func (w *Writer) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]models.ScanEvent, 0, w.cfg.BatchSize)

	for {
		select {
		case event := <-w.queue:
			batch = append(batch, event)
			if len(batch) >= w.cfg.BatchSize {
				w.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				w.flush(batch)
				batch = batch[:0]
			}
		case <-w.done:
			w.drain(batch)
			return
		}
	}
}

// drain выгребает остатки очереди при остановке.
func (w *Writer) drain(batch []models.ScanEvent) {
	for {
		select {
		case event := <-w.queue:
			batch = append(batch, event)
			if len(batch) >= w.cfg.BatchSize {
				w.flush(batch)
				batch = batch[:0]
			}
		default:
			if len(batch) > 0 {
				w.flush(batch)
			}
			return
		}
	}
}

// flush пишет батч с ретраями и экспоненциальным бекофом. После
// исчерпания попыток батч отбрасывается с логом и счетчиком: аналитика
// не должна копить бесконечную очередь на лежащем хранилище.
func (w *Writer) flush(batch []models.ScanEvent) {
	events := make([]models.ScanEvent, len(batch))
	copy(events, batch)

	operation := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), w.cfg.WriteTimeout)
		defer cancel()

		return w.store.WriteBatch(ctx, events)
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), w.cfg.MaxRetries)
	if err := backoff.Retry(operation, policy); err != nil {
		if w.metrics != nil {
			w.metrics.FlushFailures.Inc()
			w.metrics.EventsDropped.Add(float64(len(events)))
		}
		w.logger.WithError(err).Errorf("dropping batch of %d events after retries", len(events))
		return
	}

	if w.metrics != nil {
		w.metrics.FlushBatches.Inc()
		w.metrics.EventsWritten.Add(float64(len(events)))
	}
}
