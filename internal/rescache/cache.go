package rescache

import (
	"context"
	"strconv"
	"time"

	"github.com/zjrosen/conddispatch/internal/cachemanager"
	"github.com/zjrosen/conddispatch/internal/dispatch"
	"github.com/zjrosen/conddispatch/internal/log"
)

// Key addresses one cached resolution.
type Key string

const keySep = "\x00"

func groupPrefix(group string) Key {
	return Key(group + keySep)
}

func makeKey(group string, version uint64, fp Fingerprint) Key {
	return groupPrefix(group) + Key(strconv.FormatUint(version, 10)+keySep+string(fp))
}

// StatsRecorder receives cache outcomes. See package metrics for a
// Prometheus implementation.
type StatsRecorder interface {
	CacheHit(group string)
	CacheMiss(group string)
	CacheInvalidated(group string, entries int)
}

type nopStats struct{}

func (nopStats) CacheHit(string)              {}
func (nopStats) CacheMiss(string)             {}
func (nopStats) CacheInvalidated(string, int) {}

// Option configures a Cache.
type Option func(*Cache)

// WithEnabled turns caching on or off. A disabled Cache resolves every call
// through the registry.
func WithEnabled(enabled bool) Option {
	return func(c *Cache) { c.enabled = enabled }
}

// WithFingerprint replaces KindFingerprint.
func WithFingerprint(fn FingerprintFunc) Option {
	return func(c *Cache) {
		if fn != nil {
			c.fingerprint = fn
		}
	}
}

// WithExpiration sets the lifetime of an entry. Zero or negative means
// entries live until invalidated.
func WithExpiration(d time.Duration) Option {
	return func(c *Cache) { c.expiration = d }
}

// WithCleanupInterval sets how often expired entries are purged.
func WithCleanupInterval(d time.Duration) Option {
	return func(c *Cache) { c.cleanupInterval = d }
}

// WithSlidingExpiration extends an entry's lifetime on every hit.
func WithSlidingExpiration(sliding bool) Option {
	return func(c *Cache) { c.sliding = sliding }
}

// WithStats records hits, misses and invalidations.
func WithStats(s StatsRecorder) Option {
	return func(c *Cache) {
		if s != nil {
			c.stats = s
		}
	}
}

// WithCacheManager supplies the backing store.
func WithCacheManager(m cachemanager.CacheManager[Key, *dispatch.Candidate]) Option {
	return func(c *Cache) { c.manager = m }
}

type request struct {
	snap dispatch.Snapshot
	args dispatch.Args
}

// Cache memoizes resolutions of a dispatch.Registry per argument fingerprint.
type Cache struct {
	reg             *dispatch.Registry
	enabled         bool
	fingerprint     FingerprintFunc
	expiration      time.Duration
	cleanupInterval time.Duration
	sliding         bool
	stats           StatsRecorder

	manager cachemanager.CacheManager[Key, *dispatch.Candidate]
	rt      *cachemanager.ReadThroughCache[Key, *dispatch.Candidate, request]
}

// New creates a Cache over reg and subscribes it to reg's mutations.
func New(reg *dispatch.Registry, opts ...Option) *Cache {
	c := &Cache{
		reg:             reg,
		enabled:         true,
		fingerprint:     KindFingerprint,
		expiration:      cachemanager.DefaultExpiration,
		cleanupInterval: cachemanager.DefaultCleanupInterval,
		stats:           nopStats{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.expiration <= 0 {
		c.expiration = cachemanager.NoExpiration
	}
	if c.manager == nil {
		c.manager = cachemanager.NewInMemoryCacheManager[Key, *dispatch.Candidate]("resolution", c.expiration, c.cleanupInterval)
	}
	c.rt = cachemanager.NewReadThroughCache[Key, *dispatch.Candidate, request](c.manager, c.load, !c.enabled)
	if c.enabled {
		reg.AddInvalidator(c)
	}
	return c
}

func (c *Cache) load(_ context.Context, req request) (*dispatch.Candidate, error) {
	return req.snap.Resolve(req.args)
}

// Enabled reports whether resolutions are memoized.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// Resolve returns the candidate for the call, from the cache when possible.
func (c *Cache) Resolve(group string, args dispatch.Args) (*dispatch.Candidate, error) {
	return c.resolve(context.Background(), group, args)
}

// Dispatch resolves through the cache and invokes the winning implementation.
// Implementation results are never cached.
func (c *Cache) Dispatch(ctx context.Context, group string, args dispatch.Args) (any, error) {
	cand, err := c.resolve(ctx, group, args)
	dispatch.ReportResolution(ctx, err)
	if err != nil {
		return nil, err
	}
	return cand.Invoke(ctx, args)
}

func (c *Cache) resolve(ctx context.Context, group string, args dispatch.Args) (*dispatch.Candidate, error) {
	if !c.enabled {
		return c.reg.Resolve(group, args)
	}

	snap := c.reg.Snapshot(group)

	fp := c.fingerprint(args)
	key := makeKey(group, snap.Version, fp)
	req := request{snap: snap, args: args}

	var (
		cand *dispatch.Candidate
		hit  bool
		err  error
	)
	if c.sliding {
		cand, hit, err = c.rt.GetWithRefresh(ctx, key, req, c.expiration)
	} else {
		cand, hit, err = c.rt.Get(ctx, key, req, c.expiration)
	}
	if err != nil {
		log.Debug(log.CatCache, "resolution failed, not cached", "group", group, "fingerprint", fp, "error", err)
		return nil, err
	}

	if hit {
		c.stats.CacheHit(group)
		log.Debug(log.CatCache, "cache hit", "group", group, "fingerprint", fp, "candidate", cand.Name())
	} else {
		c.stats.CacheMiss(group)
		log.Debug(log.CatCache, "cache miss", "group", group, "fingerprint", fp, "candidate", cand.Name())
	}
	return cand, nil
}

// InvalidateGroup drops every cached resolution of group.
func (c *Cache) InvalidateGroup(group string) {
	n := c.manager.DeletePrefix(context.Background(), groupPrefix(group))
	c.stats.CacheInvalidated(group, n)
	log.Debug(log.CatCache, "group invalidated", "group", group, "entries", n)
}

// Len returns the number of stored resolutions.
func (c *Cache) Len() int {
	return c.manager.Len(context.Background())
}

// Flush drops every stored resolution.
func (c *Cache) Flush() error {
	return c.manager.Flush(context.Background())
}

var (
	_ dispatch.Resolver    = (*Cache)(nil)
	_ dispatch.Dispatcher  = (*Cache)(nil)
	_ dispatch.Invalidator = (*Cache)(nil)
)
