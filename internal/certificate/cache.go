package certificate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	platformredis "birthregistry/internal/platform/redis"
	id "birthregistry/pkg/domain"
)

// Cache is a read-through cache for rendered certificate views. Views are
// deterministic for an approved registration, so caching is safe; the TTL
// only bounds staleness after an operational correction.
//
// All methods tolerate a nil receiver and cache misses silently: the
// renderer is cheap and the cache is an optimization, never a dependency.
type Cache struct {
	client *platformredis.Client
	ttl    time.Duration
}

func NewCache(client *platformredis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(regNumber id.RegistrationNumber) string {
	return fmt.Sprintf("certificate:view:%s", regNumber)
}

// Get returns the cached view, or nil on miss or cache failure.
func (c *Cache) Get(ctx context.Context, regNumber id.RegistrationNumber) *View {
	if c == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, cacheKey(regNumber)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			// Degrade to a render; the caller doesn't care why.
			return nil
		}
		return nil
	}
	var view View
	if err := json.Unmarshal(raw, &view); err != nil {
		return nil
	}
	return &view
}

// Set stores the view. Failures are ignored; the next reader re-renders.
func (c *Cache) Set(ctx context.Context, regNumber id.RegistrationNumber, view *View) {
	if c == nil || view == nil {
		return
	}
	raw, err := json.Marshal(view)
	if err != nil {
		return
	}
	c.client.Set(ctx, cacheKey(regNumber), raw, c.ttl)
}

// Invalidate drops the cached view, e.g. after a reconcile changes status.
func (c *Cache) Invalidate(ctx context.Context, regNumber id.RegistrationNumber) {
	if c == nil {
		return
	}
	c.client.Del(ctx, cacheKey(regNumber))
}
