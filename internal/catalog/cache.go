// Package catalog fronts the remote product catalog with a short-lived
// in-process layer, a durable last-known-good layer and a static fallback set.
package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/disuhitarth/EcommerceConcept/internal/domain"
	"github.com/disuhitarth/EcommerceConcept/internal/events"
	"github.com/disuhitarth/EcommerceConcept/internal/observability"
)

// ErrMiss is returned by stores and fallbacks that hold nothing for a query.
var ErrMiss = errors.New("catalog: no entry")

// Fetcher retrieves a catalog page from the remote platform.
type Fetcher interface {
	FetchProducts(ctx context.Context, q domain.CatalogQuery) (*domain.Collection, error)
}

// DurableStore keeps the last successful fetch of every query, of any age.
type DurableStore interface {
	Load(ctx context.Context, key string) (*domain.Collection, error)
	Save(ctx context.Context, key string, c *domain.Collection) error
	Clear(ctx context.Context) error
}

// Fallback answers a query when the remote fetch fails.
type Fallback interface {
	Lookup(ctx context.Context, q domain.CatalogQuery) (*domain.Collection, error)
}

// Options configures a Cache. Zero values get defaults: a 5s TTL, a 10s fetch
// timeout, an in-memory durable store and the [durable, static] fallback chain.
// A non-nil empty Fallbacks disables fallbacks entirely.
type Options struct {
	TTL          time.Duration
	FetchTimeout time.Duration
	PageSize     int
	Durable      DurableStore
	Fallbacks    []Fallback
	Now          func() time.Time
	Logger       *zap.Logger
	Metrics      *observability.Metrics
	Dispatcher   events.Dispatcher
}

type entry struct {
	collection *domain.Collection
	fetchedAt  time.Time
}

// Cache is safe for concurrent use.
type Cache struct {
	fetcher      Fetcher
	durable      DurableStore
	fallbacks    []Fallback
	ttl          time.Duration
	fetchTimeout time.Duration
	pageSize     int
	now          func() time.Time
	logger       *zap.Logger
	metrics      *observability.Metrics
	dispatcher   events.Dispatcher

	mu      sync.RWMutex
	entries map[string]entry
	gen     uint64 // bumped by Clear; fetches begun under an older value do not write back
	group   singleflight.Group
}

// NewCache builds a cache in front of fetcher.
func NewCache(fetcher Fetcher, opts Options) *Cache {
	c := &Cache{
		fetcher:      fetcher,
		durable:      opts.Durable,
		fallbacks:    opts.Fallbacks,
		ttl:          opts.TTL,
		fetchTimeout: opts.FetchTimeout,
		pageSize:     opts.PageSize,
		now:          opts.Now,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		dispatcher:   opts.Dispatcher,
		entries:      make(map[string]entry),
	}
	if c.ttl <= 0 {
		c.ttl = 5 * time.Second
	}
	if c.fetchTimeout <= 0 {
		c.fetchTimeout = 10 * time.Second
	}
	if c.pageSize <= 0 {
		c.pageSize = domain.DefaultPageSize
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.durable == nil {
		c.durable = NewMemoryStore()
	}
	if c.fallbacks == nil {
		c.fallbacks = []Fallback{DurableFallback(c.durable), NewStaticFallback(c.now)}
	}
	return c
}

// Get returns the catalog page for q. A page fetched less than TTL ago is
// returned unchanged, fetchedAt included. Otherwise the remote is asked once
// per key no matter how many callers are waiting. Get does not fail: a remote
// error falls through the fallback chain and, if nothing answers, yields an
// empty collection.
func (c *Cache) Get(ctx context.Context, q domain.CatalogQuery) (*domain.Collection, error) {
	q = q.Normalize(c.pageSize)

	if col, ok := c.fresh(q.Key()); ok {
		c.metrics.RecordCatalogRead(string(domain.SourceCache))
		return col, nil
	}
	return c.load(ctx, q, false)
}

// ForceRefresh empties both layers and fetches q from the remote. It never
// answers from the fresh layer, even if a fetch that was in flight before the
// clear has since completed.
func (c *Cache) ForceRefresh(ctx context.Context, q domain.CatalogQuery) (*domain.Collection, error) {
	q = q.Normalize(c.pageSize)

	if err := c.Clear(ctx); err != nil {
		c.logger.Warn("catalog clear failed during refresh", zap.Error(err))
	}
	c.group.Forget(q.Key())

	col, err := c.load(ctx, q, true)
	if err != nil {
		return nil, err
	}
	c.publish(ctx, events.NewEvent(events.EventCatalogRefreshed, q.Key(), events.CatalogRefreshedPayload{
		Key:      q.Key(),
		Products: len(col.Products),
		Source:   string(col.Source),
	}))
	return col, nil
}

// Clear drops every entry from both layers without fetching.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.gen++
	c.mu.Unlock()

	return c.durable.Clear(ctx)
}

func (c *Cache) fresh(key string) (*domain.Collection, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	out := e.collection.Clone()
	out.Source = domain.SourceCache
	return out, true
}

func (c *Cache) load(ctx context.Context, q domain.CatalogQuery, force bool) (*domain.Collection, error) {
	key := q.Key()

	// The shared fetch outlives any single caller's cancellation.
	fetchCtx := context.WithoutCancel(ctx)
	v, _, _ := c.group.Do(key, func() (any, error) {
		if !force {
			if col, ok := c.fresh(key); ok {
				return col, nil
			}
		}
		return c.fetch(fetchCtx, q), nil
	})

	return v.(*domain.Collection).Clone(), nil
}

func (c *Cache) fetch(ctx context.Context, q domain.CatalogQuery) *domain.Collection {
	key := q.Key()
	c.mu.RLock()
	gen := c.gen
	c.mu.RUnlock()

	// Fallbacks and durable writes run on ctx, not the expired fetch deadline.
	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	col, err := c.fetcher.FetchProducts(fetchCtx, q)
	if err == nil && col != nil {
		c.metrics.RecordCatalogFetch("ok")
		return c.store(ctx, key, gen, col)
	}
	if err == nil {
		err = errors.New("fetcher returned no collection")
	}

	c.metrics.RecordCatalogFetch("error")
	c.logger.Warn("remote catalog fetch failed", zap.String("key", key), zap.Error(err))
	return c.fallback(ctx, q, err)
}

func (c *Cache) store(ctx context.Context, key string, gen uint64, col *domain.Collection) *domain.Collection {
	stored := col.Clone()
	stored.FetchedAt = c.now().UTC()
	stored.Source = domain.SourceRemote

	c.mu.Lock()
	current := c.gen == gen
	if current {
		c.entries[key] = entry{collection: stored, fetchedAt: stored.FetchedAt}
	}
	c.mu.Unlock()

	if !current {
		c.logger.Debug("catalog cleared during fetch; result not cached", zap.String("key", key))
	} else if err := c.durable.Save(ctx, key, stored); err != nil {
		c.logger.Warn("durable catalog save failed", zap.String("key", key), zap.Error(err))
	}

	c.metrics.RecordCatalogRead(string(domain.SourceRemote))
	return stored
}

func (c *Cache) fallback(ctx context.Context, q domain.CatalogQuery, cause error) *domain.Collection {
	key := q.Key()

	for _, fb := range c.fallbacks {
		col, err := fb.Lookup(ctx, q)
		if err != nil {
			if !errors.Is(err, ErrMiss) {
				c.logger.Warn("catalog fallback failed", zap.String("key", key), zap.Error(err))
			}
			continue
		}

		c.metrics.RecordCatalogRead(string(col.Source))
		c.publish(ctx, events.NewEvent(events.EventCatalogDegraded, key, events.CatalogDegradedPayload{
			Key:    key,
			Source: string(col.Source),
			Reason: cause.Error(),
		}))
		return col
	}

	c.metrics.RecordCatalogRead(string(domain.SourceEmpty))
	return &domain.Collection{
		Products:  []domain.Product{},
		FetchedAt: c.now().UTC(),
		Source:    domain.SourceEmpty,
	}
}

func (c *Cache) publish(ctx context.Context, event events.Event) {
	if c.dispatcher == nil {
		return
	}
	_ = c.dispatcher.Publish(ctx, event)
}
