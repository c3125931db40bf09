package usecase

import (
	"context"
	"errors"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/adapter"
	"promo-platform/internal/domain/ports/repository"
	"promo-platform/internal/infra/logging"
	"promo-platform/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ AuthUseCase = (*authUC)(nil)

// AuthUseCase registers principals and signs them in. Every successful call
// issues a token through SessionUseCase, which revokes the previous one.
type AuthUseCase interface {
	SignUpUser(ctx context.Context, u *model.User, password string) (string, error)
	SignUpCompany(ctx context.Context, c *model.Company, password string) (string, error)
	// SignIn reports an unknown email and a wrong password alike as domain.ErrUnauthorized.
	SignIn(ctx context.Context, kind model.PrincipalKind, email, password string) (model.Principal, string, error)
	SetPassword(ctx context.Context, p model.Principal, password string) error
}

type authUC struct {
	users     repository.UserRepository
	companies repository.CompanyRepository
	creds     repository.CredentialRepository
	hasher    adapter.PasswordHasher
	sessions  SessionUseCase
	tm        repository.TransactionManager
	log       *zerolog.Logger
}

func NewAuthUseCase(
	users repository.UserRepository,
	companies repository.CompanyRepository,
	creds repository.CredentialRepository,
	hasher adapter.PasswordHasher,
	sessions SessionUseCase,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *authUC {
	return &authUC{
		users:     users,
		companies: companies,
		creds:     creds,
		hasher:    hasher,
		sessions:  sessions,
		tm:        tm,
		log:       logger,
	}
}

func (uc *authUC) SignUpUser(ctx context.Context, u *model.User, password string) (string, error) {
	defer logging.TraceDuration(uc.log, "AuthUC.SignUpUser")()
	if u.IsZero() {
		return "", uc.finish(model.PrincipalUser, "sign_up", domain.ErrInvalidArgument)
	}
	p := model.Principal{Kind: model.PrincipalUser, ID: u.ID}
	token, err := uc.signUp(ctx, p, password, func(ctx context.Context, tx repository.Tx) error {
		return uc.users.Save(ctx, tx, u)
	})
	return token, uc.finish(p.Kind, "sign_up", err)
}

func (uc *authUC) SignUpCompany(ctx context.Context, c *model.Company, password string) (string, error) {
	defer logging.TraceDuration(uc.log, "AuthUC.SignUpCompany")()
	if c.IsZero() {
		return "", uc.finish(model.PrincipalCompany, "sign_up", domain.ErrInvalidArgument)
	}
	p := model.Principal{Kind: model.PrincipalCompany, ID: c.ID}
	token, err := uc.signUp(ctx, p, password, func(ctx context.Context, tx repository.Tx) error {
		return uc.companies.Save(ctx, tx, c)
	})
	return token, uc.finish(p.Kind, "sign_up", err)
}

// signUp stores the profile row and its password hash together, then issues
// the first session token.
func (uc *authUC) signUp(ctx context.Context, p model.Principal, password string, save func(context.Context, repository.Tx) error) (string, error) {
	if err := model.ValidatePassword(password); err != nil {
		return "", err
	}
	hash, err := uc.hasher.Hash(password)
	if err != nil {
		return "", err
	}
	err = uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := save(ctx, tx); err != nil {
			return err
		}
		return uc.creds.SetHash(ctx, tx, p, hash)
	})
	if err != nil {
		return "", err
	}
	return uc.sessions.Issue(ctx, p)
}

func (uc *authUC) SignIn(ctx context.Context, kind model.PrincipalKind, email, password string) (model.Principal, string, error) {
	defer logging.TraceDuration(uc.log, "AuthUC.SignIn")()

	cred, err := uc.creds.FindByEmail(ctx, repository.NoTX, kind, email)
	if errors.Is(err, domain.ErrNotFound) {
		err = domain.ErrUnauthorized
	}
	if err != nil {
		return model.Principal{}, "", uc.finish(kind, "sign_in", err)
	}
	if err := uc.hasher.Compare(cred.Hash, password); err != nil {
		return model.Principal{}, "", uc.finish(kind, "sign_in", domain.ErrUnauthorized)
	}

	token, err := uc.sessions.Issue(ctx, cred.Principal)
	if err != nil {
		return model.Principal{}, "", uc.finish(kind, "sign_in", err)
	}
	logging.With(logging.WithPrincipal(ctx, cred.Principal.String()), uc.log).Info().Msg("signed in")
	uc.finish(kind, "sign_in", nil)
	return cred.Principal, token, nil
}

func (uc *authUC) SetPassword(ctx context.Context, p model.Principal, password string) error {
	defer logging.TraceDuration(uc.log, "AuthUC.SetPassword")()

	if err := model.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := uc.hasher.Hash(password)
	if err != nil {
		return err
	}
	return uc.creds.SetHash(ctx, repository.NoTX, p, hash)
}

// finish records the attempt and returns err unchanged.
func (uc *authUC) finish(kind model.PrincipalKind, op string, err error) error {
	result := authResult(err)
	metrics.IncAuthAttempt(string(kind), op, result)
	if result == "error" {
		uc.log.Error().Err(err).Str("op", op).Str("kind", string(kind)).Msg("auth failed")
	}
	return err
}

func authResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid"
	case errors.Is(err, domain.ErrAlreadyExists):
		return "conflict"
	case errors.Is(err, domain.ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
