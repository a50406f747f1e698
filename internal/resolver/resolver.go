// Package resolver отвечает за горячий путь: код -> адрес назначения.
// Поверх хранилища держится LRU кеш с TTL и инвалидацией по монотонной
// версии, так что повторные сканирования активного кода в хранилище
// не ходят вовсе.
package resolver

import (
	"context"
	"time"

	"github.com/fsdevblog/qrshort/internal/metrics"
	"github.com/fsdevblog/qrshort/internal/models"
	"github.com/fsdevblog/qrshort/internal/repositories"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DestinationStore источник правды по коротким ссылкам.
type DestinationStore interface {
	GetByCode(ctx context.Context, code string) (*models.ShortLink, error)
}

// Resolution результат успешного резолва.
type Resolution struct {
	Destination string
	Kind        models.LinkKind
	Status      models.LinkStatus
	PlanRef     string
	Version     uint64
}

// Config настройки резолвера.
type Config struct {
	CacheCapacity int
	TTL           time.Duration
	NegativeTTL   time.Duration
	LookupTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.CacheCapacity <= 0 {
		c.CacheCapacity = 16384
	}
	if c.TTL <= 0 {
		c.TTL = 30 * time.Second
	}
	if c.NegativeTTL <= 0 {
		c.NegativeTTL = 5 * time.Second
	}
	if c.LookupTimeout <= 0 {
		c.LookupTimeout = 500 * time.Millisecond
	}
	return c
}

// Resolver кеширующий резолвер коротких кодов.
type Resolver struct {
	store   DestinationStore
	cache   *shardedCache
	cfg     Config
	metrics *metrics.Metrics
	logger  *logrus.Entry
	now     func() time.Time
}

func New(store DestinationStore, cfg Config, m *metrics.Metrics, logger *logrus.Logger) *Resolver {
	cfg = cfg.withDefaults()
	var onEvict func()
	if m != nil {
		onEvict = func() { m.CacheEvictions.Inc() }
	}
	return &Resolver{
		store:   store,
		cache:   newShardedCache(cfg.CacheCapacity, cfg.TTL, cfg.NegativeTTL, onEvict),
		cfg:     cfg,
		metrics: m,
		logger:  logger.WithField("module", "resolver"),
		now:     time.Now,
	}
}

// Resolve возвращает адрес назначения по коду.
//
// Попадание в кеш обслуживается без похода в хранилище, даже если
// хранилище лежит. Холодный промах при недоступном хранилище дает
// ErrResolutionUnavailable. «Мертвые» коды кешируются отдельной
// короткоживущей негативной записью.
func (r *Resolver) Resolve(ctx context.Context, code string) (*Resolution, error) {
	now := r.now()
	if entry, ok := r.cache.get(code, now); ok {
		if r.metrics != nil {
			r.metrics.CacheHits.Inc()
		}
		if entry.negative {
			return nil, ErrLinkNotFound
		}
		return resolutionFromEntry(entry), nil
	}
	if r.metrics != nil {
		r.metrics.CacheMisses.Inc()
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.cfg.LookupTimeout)
	defer cancel()

	link, err := r.store.GetByCode(lookupCtx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			r.cache.set(cacheEntry{
				code:      code,
				fetchedAt: now,
				negative:  true,
			})
			return nil, ErrLinkNotFound
		}
		r.logger.WithError(err).Errorf("destination store lookup failed for code %s", code)
		return nil, errors.Wrapf(ErrResolutionUnavailable, "code %s", code)
	}

	entry := cacheEntry{
		code:        link.Code,
		destination: link.Destination,
		kind:        link.Kind,
		status:      link.Status,
		planRef:     link.PlanRef,
		version:     link.Version,
		fetchedAt:   now,
	}
	// истекшие ссылки не задерживаются в кеше
	if link.Status != models.LinkStatusExpired {
		r.cache.set(entry)
	}
	return resolutionFromEntry(entry), nil
}

// Invalidate применяет сигнал об изменении ссылки. Возвращает true,
// если закешированная запись была выброшена. Сигнал с версией не новее
// закешированной игнорируется: опоздавшее стейл-обновление не может
// воскресить старый адрес назначения.
func (r *Resolver) Invalidate(code string, version uint64) bool {
	applied := r.cache.invalidate(code, version)
	if applied && r.metrics != nil {
		r.metrics.CacheInvalidations.Inc()
	}
	return applied
}

// CacheLen текущее количество записей в кеше.
func (r *Resolver) CacheLen() int {
	return r.cache.len()
}

func resolutionFromEntry(entry cacheEntry) *Resolution {
	return &Resolution{
		Destination: entry.destination,
		Kind:        entry.kind,
		Status:      entry.status,
		PlanRef:     entry.planRef,
		Version:     entry.version,
	}
}
