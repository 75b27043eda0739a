package cache

import (
	"slices"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"welltrend/internal/catalog"
)

const defaultCapacity = 10000

// Key identifies one node's resolved trend items. Backend is part of the key
// because both backends can serve the same process.
type Key struct {
	NodeID  string
	Backend string
}

// TrendItems memoizes resolver output per node. Implementations must be safe
// for concurrent use. Nothing invalidates entries when catalog or facility tag
// rows change; callers own that policy through Delete and Purge.
type TrendItems interface {
	Get(key Key) ([]catalog.TrendItem, bool)
	Set(key Key, items []catalog.TrendItem)
	Delete(key Key)
	Purge()
}

type Config struct {
	// TTL bounds entry lifetime. Zero keeps entries for the process lifetime.
	TTL time.Duration
	// Capacity bounds the number of nodes held; the least recently used is evicted.
	Capacity uint64
	// Version is folded into every key; changing it orphans all prior entries.
	Version string
}

// TTL is a TrendItems cache backed by ttlcache.
type TTL struct {
	version string
	cache   *ttlcache.Cache[string, []catalog.TrendItem]
	ttl     time.Duration
}

func NewTTL(cfg Config) *TTL {
	capacity := cfg.Capacity
	if capacity == 0 {
		capacity = defaultCapacity
	}
	ttl := cfg.TTL
	if ttl < 0 {
		ttl = 0
	}
	c := ttlcache.New(
		ttlcache.WithTTL[string, []catalog.TrendItem](ttl),
		ttlcache.WithCapacity[string, []catalog.TrendItem](capacity),
		ttlcache.WithDisableTouchOnHit[string, []catalog.TrendItem](),
	)
	if ttl > 0 {
		go c.Start()
	}
	return &TTL{version: cfg.Version, cache: c, ttl: ttl}
}

func (t *TTL) Get(key Key) ([]catalog.TrendItem, bool) {
	item := t.cache.Get(t.key(key))
	if item == nil {
		return nil, false
	}
	return slices.Clone(item.Value()), true
}

func (t *TTL) Set(key Key, items []catalog.TrendItem) {
	t.cache.Set(t.key(key), slices.Clone(items), ttlcache.DefaultTTL)
}

func (t *TTL) Delete(key Key) { t.cache.Delete(t.key(key)) }

func (t *TTL) Purge() { t.cache.DeleteAll() }

// Len reports the number of cached nodes.
func (t *TTL) Len() int { return t.cache.Len() }

// Close stops the expiry loop, if one runs.
func (t *TTL) Close() {
	if t.ttl > 0 {
		t.cache.Stop()
	}
}

func (t *TTL) key(k Key) string {
	return strings.Join([]string{t.version, k.Backend, k.NodeID}, "|")
}
