package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/fleetadmin/internal/client/repositories/kv"
	"github.com/dmitrijs2005/fleetadmin/internal/common"
	"github.com/dmitrijs2005/fleetadmin/internal/dbx"
	"github.com/dmitrijs2005/fleetadmin/internal/logging"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

const (
	defaultMemoryEntries = 256
	// memoryTTL bounds how long the LRU keeps an entry at all; freshness is
	// always decided by storedAt + ttl of the caller.
	memoryTTL = 2 * time.Hour
)

// Fetcher performs the authenticated GET behind a miss.
type Fetcher interface {
	Get(ctx context.Context, path string, query url.Values) ([]byte, error)
}

type entry struct {
	body     []byte
	storedAt time.Time
}

// Layer is safe for concurrent use.
type Layer struct {
	db     *sql.DB
	fetch  Fetcher
	mem    *lru.LRU[string, entry]
	group  singleflight.Group
	now    func() time.Time
	logger logging.Logger
	ttls   map[string]time.Duration
}

type Option func(*Layer)

// WithClock injects the time source used for storedAt and validity checks.
func WithClock(now func() time.Time) Option {
	return func(l *Layer) { l.now = now }
}

func WithLogger(logger logging.Logger) Option {
	return func(l *Layer) { l.logger = logger }
}

// WithTTL overrides the default TTL of a registered resource by name.
// Non-positive values are ignored.
func WithTTL(name string, ttl time.Duration) Option {
	return func(l *Layer) {
		if ttl > 0 {
			l.ttls[name] = ttl
		}
	}
}

// WithMemoryEntries sets the size of the in-process tier.
func WithMemoryEntries(n int) Option {
	return func(l *Layer) {
		if n > 0 {
			l.mem = lru.NewLRU[string, entry](n, nil, memoryTTL)
		}
	}
}

func New(db *sql.DB, fetch Fetcher, opts ...Option) *Layer {
	l := &Layer{
		db:     db,
		fetch:  fetch,
		mem:    lru.NewLRU[string, entry](defaultMemoryEntries, nil, memoryTTL),
		now:    time.Now,
		logger: logging.Nop(),
		ttls:   make(map[string]time.Duration),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Get returns the decoded value stored under key if it is younger than ttl,
// otherwise fetches path, stores the raw body and decodes it. A failed fetch
// stores nothing.
func Get[T any](ctx context.Context, l *Layer, key, path string, ttl time.Duration) (T, error) {
	var out T
	body, err := l.Fetch(ctx, key, path, nil, ttl)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("decode cache[%s]: %w", key, err)
	}
	return out, nil
}

// Fetch is the untyped form of Get.
func (l *Layer) Fetch(ctx context.Context, key, path string, query url.Values, ttl time.Duration) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	if body, ok := l.lookup(ctx, key, ttl); ok {
		return body, nil
	}

	// The shared fetch outlives any single caller; each caller still
	// stops waiting when its own ctx is done.
	ch := l.group.DoChan(key, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		body, err := l.fetch.Get(ctx, path, query)
		if err != nil {
			return nil, err
		}
		if err := l.store(ctx, key, body); err != nil {
			l.logger.Warn(ctx, "cache write failed", "key", key, "err", err)
		}
		return body, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			l.logger.Debug(ctx, "cache fetch coalesced", "key", key)
		}
		return res.Val.([]byte), nil
	}
}

func (l *Layer) lookup(ctx context.Context, key string, ttl time.Duration) ([]byte, bool) {
	now := l.now()

	if e, ok := l.mem.Get(key); ok {
		if now.Sub(e.storedAt) < ttl {
			return e.body, true
		}
		return nil, false
	}

	repo := kv.NewSQLiteRepository(l.db)
	body, err := repo.Get(ctx, common.CacheValuePrefix+key)
	if err != nil {
		l.logger.Warn(ctx, "cache read failed", "key", key, "err", err)
		return nil, false
	}
	rawTime, err := repo.Get(ctx, common.CacheTimePrefix+key)
	if err != nil {
		l.logger.Warn(ctx, "cache read failed", "key", key, "err", err)
		return nil, false
	}
	if body == nil || rawTime == nil {
		return nil, false
	}

	ms, err := strconv.ParseInt(string(rawTime), 10, 64)
	if err != nil {
		l.logger.Warn(ctx, "cache entry has a corrupt timestamp", "key", key, "value", string(rawTime))
		return nil, false
	}
	storedAt := time.UnixMilli(ms)

	l.mem.Add(key, entry{body: body, storedAt: storedAt})
	if now.Sub(storedAt) >= ttl {
		return nil, false
	}
	l.logger.Debug(ctx, "cache hit", "key", key)
	return body, true
}

func (l *Layer) store(ctx context.Context, key string, body []byte) error {
	storedAt := l.now()

	err := dbx.WithTx(ctx, l.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := kv.NewSQLiteRepository(tx)
		if err := r.Set(ctx, common.CacheValuePrefix+key, body); err != nil {
			return err
		}
		return r.Set(ctx, common.CacheTimePrefix+key, []byte(strconv.FormatInt(storedAt.UnixMilli(), 10)))
	})
	if err != nil {
		return err
	}

	l.mem.Add(key, entry{body: body, storedAt: storedAt})
	return nil
}

// Invalidate removes key from both tiers. Missing keys are not an error.
func (l *Layer) Invalidate(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	l.mem.Remove(key)
	l.group.Forget(key)

	repo := kv.NewSQLiteRepository(l.db)
	if err := repo.Delete(ctx, common.CacheValuePrefix+key, common.CacheTimePrefix+key); err != nil {
		return fmt.Errorf("invalidate cache[%s]: %w", key, err)
	}
	return nil
}

// InvalidatePrefix removes every key starting with prefix.
func (l *Layer) InvalidatePrefix(ctx context.Context, prefix string) error {
	for _, k := range l.mem.Keys() {
		if strings.HasPrefix(k, prefix) {
			l.mem.Remove(k)
			l.group.Forget(k)
		}
	}

	return dbx.WithTx(ctx, l.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := kv.NewSQLiteRepository(tx)
		if _, err := r.DeletePrefix(ctx, common.CacheValuePrefix+prefix); err != nil {
			return err
		}
		_, err := r.DeletePrefix(ctx, common.CacheTimePrefix+prefix)
		return err
	})
}

// Purge drops every cached entry.
func (l *Layer) Purge(ctx context.Context) error {
	l.mem.Purge()
	return l.InvalidatePrefix(ctx, "")
}
