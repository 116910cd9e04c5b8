// Package cache provides the redis-backed user snapshot cache that sits in
// front of the user store on the resolve-current-user path.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/contacts-api/internal/config"
	"github.com/iliyamo/contacts-api/internal/model"
)

// UserCache stores JSON-serialized user snapshots under "<prefix>:<email>"
// with a per-key TTL.  It never originates data: entries are written only
// from rows just read from the store, so concurrent writers simply
// last-write-wins.  Expiry is absolute, not sliding; reads do not refresh
// the TTL.
type UserCache struct {
	rdb    *redis.Client
	prefix string
}

func NewUserCache(rdb *redis.Client, cfg config.UserCacheConfig) *UserCache {
	return &UserCache{rdb: rdb, prefix: cfg.Prefix}
}

func (c *UserCache) key(email string) string { return c.prefix + ":" + email }

// Get returns the cached snapshot for email, reporting whether one was
// present.  Redis connectivity failures are returned as errors and are
// never conflated with a miss; an undecodable entry is treated as a miss so
// a schema change cannot wedge authentication.
func (c *UserCache) Get(ctx context.Context, email string) (model.User, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.User{}, false, nil
	}
	if err != nil {
		return model.User{}, false, err
	}
	var u model.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return model.User{}, false, nil
	}
	return u, true, nil
}

// Set writes the snapshot with the given TTL, overwriting any existing
// entry and restarting its expiry.
func (c *UserCache) Set(ctx context.Context, u model.User, ttl time.Duration) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(u.Email), raw, ttl).Err()
}

// Delete drops the entry for email.  Deleting an absent key is not an error.
func (c *UserCache) Delete(ctx context.Context, email string) error {
	return c.rdb.Del(ctx, c.key(email)).Err()
}
