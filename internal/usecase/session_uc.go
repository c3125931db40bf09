package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/adapter"
	"promo-platform/internal/domain/ports/repository"
	"promo-platform/internal/infra/logging"
	"promo-platform/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ SessionUseCase = (*sessionUC)(nil)

// SessionUseCase keeps at most one live token per principal.
type SessionUseCase interface {
	// Rotate drops the principal's recorded token, if any, and records token with ttl.
	Rotate(ctx context.Context, p model.Principal, token string, ttl time.Duration) error
	// Issue signs a fresh token for p and rotates it in.
	Issue(ctx context.Context, p model.Principal) (string, error)
	// Current returns the recorded token, or domain.ErrNotFound.
	Current(ctx context.Context, p model.Principal) (string, error)
	// Verify authenticates a bearer token. With enforcement on, a token that is
	// not the recorded one is rejected.
	Verify(ctx context.Context, token string) (model.Principal, error)
}

type sessionUC struct {
	store   repository.SessionStore
	signer  adapter.TokenSigner
	ttl     time.Duration
	enforce bool
	log     *zerolog.Logger
}

func NewSessionUseCase(
	store repository.SessionStore,
	signer adapter.TokenSigner,
	ttl time.Duration,
	enforce bool,
	logger *zerolog.Logger,
) *sessionUC {
	return &sessionUC{store: store, signer: signer, ttl: ttl, enforce: enforce, log: logger}
}

func sessionKey(p model.Principal) string {
	return fmt.Sprintf("whitelist:%s:%s", p.Kind, p.ID)
}

func (uc *sessionUC) Rotate(ctx context.Context, p model.Principal, token string, ttl time.Duration) error {
	defer logging.TraceDuration(uc.log, "SessionUC.Rotate")()

	if !p.Valid() || token == "" {
		return fmt.Errorf("%w: principal and token are required", domain.ErrInvalidArgument)
	}
	key := sessionKey(p)

	prev, err := uc.store.Get(ctx, key)
	switch {
	case err == nil && prev != "":
		if err := uc.store.Del(ctx, key); err != nil {
			return fmt.Errorf("%w: drop previous session: %v", domain.ErrUnavailable, err)
		}
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("%w: read session: %v", domain.ErrUnavailable, err)
	}

	if err := uc.store.Set(ctx, key, token, ttl); err != nil {
		return fmt.Errorf("%w: store session: %v", domain.ErrUnavailable, err)
	}
	metrics.IncSessionRotated(string(p.Kind))
	logging.With(logging.WithPrincipal(ctx, p.String()), uc.log).Debug().
		Bool("replaced", prev != "").
		Dur("ttl", ttl).
		Msg("session rotated")
	return nil
}

func (uc *sessionUC) Issue(ctx context.Context, p model.Principal) (string, error) {
	defer logging.TraceDuration(uc.log, "SessionUC.Issue")()

	token, err := uc.signer.Sign(p, uc.ttl)
	if err != nil {
		return "", err
	}
	if err := uc.Rotate(ctx, p, token, uc.ttl); err != nil {
		return "", err
	}
	return token, nil
}

func (uc *sessionUC) Current(ctx context.Context, p model.Principal) (string, error) {
	token, err := uc.store.Get(ctx, sessionKey(p))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("%w: read session: %v", domain.ErrUnavailable, err)
	}
	return token, err
}

func (uc *sessionUC) Verify(ctx context.Context, token string) (model.Principal, error) {
	p, err := uc.signer.Parse(token)
	if err != nil {
		return model.Principal{}, domain.ErrUnauthorized
	}
	if !uc.enforce {
		return p, nil
	}

	cur, err := uc.Current(ctx, p)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return model.Principal{}, domain.ErrUnauthorized
	case err != nil:
		return model.Principal{}, err
	case cur != token:
		logging.With(logging.WithPrincipal(ctx, p.String()), uc.log).Debug().
			Str("token", logging.Redact(token, false)).
			Msg("stale session token rejected")
		return model.Principal{}, domain.ErrUnauthorized
	}
	return p, nil
}
