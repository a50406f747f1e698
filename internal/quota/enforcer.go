// Package quota решает, засчитывать ли сканирование в квоту тарифа.
// Редирект пакет не блокирует никогда: его вердикт — только аннотация
// события (засчитано / сверх квоты).
package quota

import (
	"context"
	"sync"
	"time"

	"github.com/fsdevblog/qrshort/internal/models"
	"github.com/sirupsen/logrus"
)

// PlanProvider поставщик состояния квот. Опрашивается по таймеру,
// а не на каждый запрос.
type PlanProvider interface {
	QuotaState(ctx context.Context, planRef string) (models.QuotaState, error)
}

// Admission вердикт по одному сканированию.
type Admission struct {
	Counted   bool
	OverQuota bool
}

// Config настройки энфорсера.
type Config struct {
	RefreshInterval time.Duration
	ProviderTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = 15 * time.Second
	}
	if c.ProviderTimeout <= 0 {
		c.ProviderTimeout = 2 * time.Second
	}
	return c
}

type snapshot struct {
	state      models.QuotaState
	fetchedAt  time.Time
	localDelta int64 // засчитанные сканирования с момента последнего refresh
}

// Enforcer держит приблизительные снапшоты квот по тарифам.
// Точное сведение счетов делается асинхронно по durable-истории
// событий, не здесь.
type Enforcer struct {
	provider PlanProvider
	cfg      Config
	logger   *logrus.Entry

	mu        sync.Mutex
	snapshots map[string]*snapshot

	now func() time.Time
}

func New(provider PlanProvider, cfg Config, logger *logrus.Logger) *Enforcer {
	return &Enforcer{
		provider:  provider,
		cfg:       cfg.withDefaults(),
		logger:    logger.WithField("module", "quota"),
		snapshots: make(map[string]*snapshot),
		now:       time.Now,
	}
}

// Admit аннотирует сканирование.
//
// Правила:
//   - бот никогда не расходует квоту владельца;
//   - пустой planRef (ссылка вне тарифа) считается безлимитом;
//   - человек сверх лимита получает Counted=false + OverQuota=true,
//     но сам редирект проходит как обычно;
//   - ошибка провайдера трактуется в пользу владельца (Counted=true).
func (e *Enforcer) Admit(ctx context.Context, planRef string, isBot bool) Admission {
	if isBot {
		return Admission{}
	}
	if planRef == "" {
		return Admission{Counted: true}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	snap, ok := e.snapshots[planRef]
	if !ok {
		state, err := e.fetch(ctx, planRef)
		if err != nil {
			e.logger.WithError(err).Warnf("quota state unavailable for plan %s, counting scan", planRef)
			return Admission{Counted: true}
		}
		snap = &snapshot{state: state, fetchedAt: e.now()}
		e.snapshots[planRef] = snap
	}

	if snap.state.Unlimited() {
		snap.localDelta++
		return Admission{Counted: true}
	}
	if snap.state.ScansThisPeriod+snap.localDelta < snap.state.ScanLimit {
		snap.localDelta++
		return Admission{Counted: true}
	}
	return Admission{OverQuota: true}
}

// Run обновляет снапшоты раз в RefreshInterval до отмены контекста.
func (e *Enforcer) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.refreshAll(ctx)
		}
	}
}

func (e *Enforcer) refreshAll(ctx context.Context) {
	e.mu.Lock()
	refs := make([]string, 0, len(e.snapshots))
	for ref := range e.snapshots {
		refs = append(refs, ref)
	}
	e.mu.Unlock()

	for _, ref := range refs {
		state, err := e.fetch(ctx, ref)
		if err != nil {
			// живем на старом снапшоте до следующего тика
			e.logger.WithError(err).Warnf("failed to refresh quota state for plan %s", ref)
			continue
		}

		e.mu.Lock()
		if snap, ok := e.snapshots[ref]; ok {
			snap.state = state
			snap.fetchedAt = e.now()
			snap.localDelta = 0
		}
		e.mu.Unlock()
	}
}

func (e *Enforcer) fetch(ctx context.Context, planRef string) (models.QuotaState, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.ProviderTimeout)
	defer cancel()

	return e.provider.QuotaState(fetchCtx, planRef)
}
