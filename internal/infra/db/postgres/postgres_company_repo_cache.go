package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
	"promo-platform/internal/infra/metrics"
	red "promo-platform/internal/infra/redis"
)

var _ repository.CompanyRepository = (*companyRepoCacheDecorator)(nil)

type companyRepoCacheDecorator struct {
	inner repository.CompanyRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewCompanyRepoCacheDecorator(inner repository.CompanyRepository, cache red.RedisClient, ttl time.Duration) repository.CompanyRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &companyRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func (d *companyRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Company, error) {
	key := fmt.Sprintf("company:%s", id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var c model.Company
		if json.Unmarshal([]byte(val), &c) == nil {
			metrics.IncCacheRequest("company", "hit")
			return &c, nil
		}
		metrics.IncCacheRequest("company", "miss")
	} else if errors.Is(err, domain.ErrNotFound) {
		metrics.IncCacheRequest("company", "miss")
	} else {
		metrics.IncCacheRequest("company", "error")
	}

	c, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(c); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return c, nil
}

func (d *companyRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, c *model.Company) error {
	_ = d.cache.Del(ctx, fmt.Sprintf("company:%s", c.ID))
	return d.inner.Save(ctx, tx, c)
}
