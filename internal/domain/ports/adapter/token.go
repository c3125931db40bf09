package adapter

import (
	"time"

	"promo-platform/internal/domain/model"
)

// TokenSigner issues and verifies bearer tokens for principals.
type TokenSigner interface {
	Sign(p model.Principal, ttl time.Duration) (string, error)
	Parse(token string) (model.Principal, error)
}
