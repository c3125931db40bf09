package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
	"promo-platform/internal/infra/metrics"
	red "promo-platform/internal/infra/redis"
)

var _ repository.UserRepository = (*userRepoCacheDecorator)(nil)

type userRepoCacheDecorator struct {
	inner repository.UserRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewUserRepoCacheDecorator(inner repository.UserRepository, cache red.RedisClient, ttl time.Duration) repository.UserRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &userRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func userIDKey(id string) string       { return fmt.Sprintf("user:id:%s", id) }
func userEmailKey(email string) string { return fmt.Sprintf("user:email:%s", strings.ToLower(email)) }

// Save invalidates every key the user may be cached under, including the
// previous email when the cached copy shows it changed.
func (d *userRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	keys := []string{userIDKey(u.ID), userEmailKey(u.Email)}
	if val, err := d.cache.Get(ctx, userIDKey(u.ID)); err == nil {
		var prev model.User
		if json.Unmarshal([]byte(val), &prev) == nil && !strings.EqualFold(prev.Email, u.Email) {
			keys = append(keys, userEmailKey(prev.Email))
		}
	}
	_ = d.cache.Del(ctx, keys...)
	return d.inner.Save(ctx, tx, u)
}

func (d *userRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	if u, ok := d.lookup(ctx, userIDKey(id)); ok {
		return u, nil
	}
	u, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	d.store(ctx, u)
	return u, nil
}

func (d *userRepoCacheDecorator) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	if u, ok := d.lookup(ctx, userEmailKey(email)); ok {
		return u, nil
	}
	u, err := d.inner.FindByEmail(ctx, tx, email)
	if err != nil {
		return nil, err
	}
	d.store(ctx, u)
	return u, nil
}

func (d *userRepoCacheDecorator) lookup(ctx context.Context, key string) (*model.User, bool) {
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var u model.User
		if json.Unmarshal([]byte(val), &u) == nil {
			metrics.IncCacheRequest("user", "hit")
			return &u, true
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		metrics.IncCacheRequest("user", "error")
		return nil, false
	}
	metrics.IncCacheRequest("user", "miss")
	return nil, false
}

// store warms both keys so either lookup hits next time.
func (d *userRepoCacheDecorator) store(ctx context.Context, u *model.User) {
	if u == nil {
		return
	}
	b, err := json.Marshal(u)
	if err != nil {
		return
	}
	_ = d.cache.Set(ctx, userIDKey(u.ID), b, d.ttl)
	_ = d.cache.Set(ctx, userEmailKey(u.Email), b, d.ttl)
}
