package usecase

import (
	"context"
	"errors"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/adapter"
	"promo-platform/internal/domain/ports/repository"
	"promo-platform/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ ProfileUseCase = (*profileUC)(nil)

// ProfileUseCase reads and edits the signed-in user's own profile.
type ProfileUseCase interface {
	Get(ctx context.Context, userID string) (*model.User, error)
	Update(ctx context.Context, userID string, patch model.UserPatch) (*model.User, error)
}

type profileUC struct {
	users  repository.UserRepository
	creds  repository.CredentialRepository
	hasher adapter.PasswordHasher
	tm     repository.TransactionManager
	log    *zerolog.Logger
}

func NewProfileUseCase(
	users repository.UserRepository,
	creds repository.CredentialRepository,
	hasher adapter.PasswordHasher,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *profileUC {
	return &profileUC{users: users, creds: creds, hasher: hasher, tm: tm, log: logger}
}

func (uc *profileUC) Get(ctx context.Context, userID string) (*model.User, error) {
	defer logging.TraceDuration(uc.log, "ProfileUC.Get")()

	u, err := uc.users.FindByID(ctx, repository.NoTX, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthorized
	}
	return u, err
}

func (uc *profileUC) Update(ctx context.Context, userID string, patch model.UserPatch) (*model.User, error) {
	defer logging.TraceDuration(uc.log, "ProfileUC.Update")()

	var hash string
	if patch.Password != nil {
		if err := model.ValidatePassword(*patch.Password); err != nil {
			return nil, err
		}
		h, err := uc.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, err
		}
		hash = h
	}

	var next *model.User
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		cur, err := uc.users.FindByID(ctx, tx, userID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrUnauthorized
		}
		if err != nil {
			return err
		}
		next, err = patch.Apply(cur)
		if err != nil {
			return err
		}
		if err := uc.users.Save(ctx, tx, next); err != nil {
			return err
		}
		if hash != "" {
			return uc.creds.SetHash(ctx, tx, model.Principal{Kind: model.PrincipalUser, ID: userID}, hash)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.With(logging.WithPrincipal(ctx, "user:"+userID), uc.log).Info().
		Bool("password_changed", hash != "").
		Msg("profile updated")
	return next, nil
}
