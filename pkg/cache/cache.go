package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Observer is told about every lookup outcome.
type Observer interface {
	Hit(namespace string)
	Miss(namespace string)
}

type Option func(*options)

type options struct {
	logger   *zap.Logger
	observer Observer
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// Cache is a typed view over one namespace of a Store. Values are stored as
// JSON, so a reader never shares memory with the writer.
type Cache[V any] struct {
	store    Store
	policy   Policy
	logger   *zap.Logger
	observer Observer
}

func New[V any](store Store, policy Policy, opts ...Option) *Cache[V] {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[V]{
		store:    store,
		policy:   policy,
		logger:   o.logger,
		observer: o.observer,
	}
}

func (c *Cache[V]) Policy() Policy { return c.policy }

// Get reports a miss for backend and decode failures; the caller falls back
// to the source of truth.
func (c *Cache[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	raw, ok, err := c.store.Get(ctx, c.policy.Namespace, key)
	if err != nil {
		c.logger.Warn("cache read failed",
			zap.String("namespace", c.policy.Namespace), zap.String("key", key), zap.Error(err))
		c.miss()
		return zero, false
	}
	if !ok {
		c.miss()
		return zero, false
	}

	var v V
	if err := json.Unmarshal(raw, &v); err != nil {
		c.logger.Warn("cache entry undecodable, dropping",
			zap.String("namespace", c.policy.Namespace), zap.String("key", key), zap.Error(err))
		_ = c.store.Delete(ctx, c.policy.Namespace, key)
		c.miss()
		return zero, false
	}
	c.hit()
	return v, true
}

// Put stores value under key with the namespace TTL.
func (c *Cache[V]) Put(ctx context.Context, key string, value V) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s/%s: %w", c.policy.Namespace, key, err)
	}
	if err := c.store.Set(ctx, c.policy.Namespace, key, raw, c.policy.TTL); err != nil {
		return fmt.Errorf("cache write %s/%s: %w", c.policy.Namespace, key, err)
	}
	return nil
}

func (c *Cache[V]) Evict(ctx context.Context, key string) error {
	if err := c.store.Delete(ctx, c.policy.Namespace, key); err != nil {
		return fmt.Errorf("cache evict %s/%s: %w", c.policy.Namespace, key, err)
	}
	return nil
}

func (c *Cache[V]) EvictAll(ctx context.Context) error {
	if err := c.store.Flush(ctx, c.policy.Namespace); err != nil {
		return fmt.Errorf("cache flush %s: %w", c.policy.Namespace, err)
	}
	return nil
}

// GetOrLoad serves key from the cache or calls load and stores the result.
// A failed store write is logged; the loaded value is still returned.
func (c *Cache[V]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(ctx, key); ok {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if err := c.Put(ctx, key, v); err != nil {
		c.logger.Warn("cache fill failed", zap.String("namespace", c.policy.Namespace), zap.Error(err))
	}
	return v, nil
}

func (c *Cache[V]) hit() {
	if c.observer != nil {
		c.observer.Hit(c.policy.Namespace)
	}
}

func (c *Cache[V]) miss() {
	if c.observer != nil {
		c.observer.Miss(c.policy.Namespace)
	}
}
