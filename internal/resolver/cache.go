package resolver

import (
	"container/list"
	"hash/fnv"
	"sync"
	"time"

	"github.com/fsdevblog/qrshort/internal/models"
)

const shardCount = 16

// cacheEntry запись кеша резолвера. negative означает «кода нет в
// хранилище»: такие записи живут недолго и гасят штормы сканирований
// по мертвым кодам.
type cacheEntry struct {
	code        string
	destination string
	kind        models.LinkKind
	status      models.LinkStatus
	planRef     string
	version     uint64
	fetchedAt   time.Time
	negative    bool
}

// shardedCache LRU кеш с TTL, разбитый на шарды по fnv-хешу кода.
// Глобального лока нет: каждый шард держит свой мьютекс ровно на время
// обращения к map и сдвига узла в LRU списке.
type shardedCache struct {
	shards  [shardCount]*cacheShard
	ttl     time.Duration
	negTTL  time.Duration
	onEvict func()
}

// newShardedCache создает кеш. onEvict дергается на каждое вытеснение
// (LRU либо истекший TTL); nil допустим.
func newShardedCache(capacity int, ttl, negTTL time.Duration, onEvict func()) *shardedCache {
	perShard := capacity / shardCount
	if perShard < 1 {
		perShard = 1
	}
	if onEvict == nil {
		onEvict = func() {}
	}
	c := &shardedCache{
		ttl:     ttl,
		negTTL:  negTTL,
		onEvict: onEvict,
	}
	for i := range c.shards {
		c.shards[i] = newCacheShard(perShard, onEvict)
	}
	return c
}

func (c *shardedCache) shard(code string) *cacheShard {
	h := fnv.New32a()
	h.Write([]byte(code)) //nolint:errcheck
	return c.shards[h.Sum32()%shardCount]
}

// get возвращает живую запись. Вторым значением сообщает, был ли hit;
// просроченные записи удаляются на месте и считаются промахом.
func (c *shardedCache) get(code string, now time.Time) (cacheEntry, bool) {
	ttl := c.ttl
	entry, ok := c.shard(code).get(code, now)
	if !ok {
		return cacheEntry{}, false
	}
	if entry.negative {
		ttl = c.negTTL
	}
	if now.Sub(entry.fetchedAt) > ttl {
		c.shard(code).remove(code, entry.version)
		c.onEvict()
		return cacheEntry{}, false
	}
	return entry, true
}

// set кладет запись по правилу last-writer-wins: более старая версия
// никогда не затирает более новую.
func (c *shardedCache) set(entry cacheEntry) {
	c.shard(entry.code).set(entry)
}

// invalidate выбрасывает запись, если сигнал несет версию новее
// закешированной. Следующий резолв перечитает хранилище.
func (c *shardedCache) invalidate(code string, version uint64) bool {
	return c.shard(code).invalidate(code, version)
}

func (c *shardedCache) len() int {
	var total int
	for _, s := range c.shards {
		total += s.len()
	}
	return total
}

type cacheShard struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	lru      *list.List // фронт — самые свежие
	onEvict  func()
}

func newCacheShard(capacity int, onEvict func()) *cacheShard {
	return &cacheShard{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		lru:      list.New(),
		onEvict:  onEvict,
	}
}

func (s *cacheShard) get(code string, _ time.Time) (cacheEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[code]
	if !ok {
		return cacheEntry{}, false
	}
	s.lru.MoveToFront(el)
	return el.Value.(cacheEntry), true
}

func (s *cacheShard) set(entry cacheEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[entry.code]; ok {
		existing := el.Value.(cacheEntry)
		if existing.version > entry.version {
			return
		}
		el.Value = entry
		s.lru.MoveToFront(el)
		return
	}

	if s.lru.Len() >= s.capacity {
		s.evictOldest()
	}
	s.items[entry.code] = s.lru.PushFront(entry)
}

func (s *cacheShard) remove(code string, version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[code]
	if !ok {
		return
	}
	// запись могли успеть обновить между get и remove
	if el.Value.(cacheEntry).version != version {
		return
	}
	s.lru.Remove(el)
	delete(s.items, code)
}

func (s *cacheShard) invalidate(code string, version uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[code]
	if !ok {
		return false
	}
	if el.Value.(cacheEntry).version >= version {
		return false
	}
	s.lru.Remove(el)
	delete(s.items, code)
	return true
}

func (s *cacheShard) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lru.Len()
}

func (s *cacheShard) evictOldest() {
	back := s.lru.Back()
	if back == nil {
		return
	}
	s.lru.Remove(back)
	delete(s.items, back.Value.(cacheEntry).code)
	s.onEvict()
}
