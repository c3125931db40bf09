package usecase

import (
	"context"
	"errors"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
	"promo-platform/internal/infra/logging"
	"promo-platform/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ ActivationUseCase = (*activationUC)(nil)

// ActivationUseCase redeems promos for end-users.
type ActivationUseCase interface {
	// Activate fails with domain.ErrNotFound when the promo does not exist and
	// domain.ErrNotEligible when it is inactive, not targeted at the user or
	// already redeemed by them.
	Activate(ctx context.Context, userID, promoID string) (*model.ActivationResult, error)
}

type activationUC struct {
	users       repository.UserRepository
	promos      repository.PromoRepository
	activations repository.ActivationRepository
	tm          repository.TransactionManager
	log         *zerolog.Logger
	opts        options
}

func NewActivationUseCase(
	users repository.UserRepository,
	promos repository.PromoRepository,
	activations repository.ActivationRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
	opts ...Option,
) *activationUC {
	return &activationUC{
		users:       users,
		promos:      promos,
		activations: activations,
		tm:          tm,
		log:         logger,
		opts:        buildOptions(opts),
	}
}

func (uc *activationUC) Activate(ctx context.Context, userID, promoID string) (*model.ActivationResult, error) {
	defer logging.TraceDuration(uc.log, "ActivationUC.Activate")()
	log := logging.With(logging.WithPromoID(ctx, promoID), uc.log)

	user, err := uc.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = domain.ErrUnauthorized
		}
		return nil, uc.finish(log, err)
	}

	var res *model.ActivationResult
	// The promo row lock serializes every activation of this promo, so the
	// counts read below cannot change before the insert commits.
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	err = uc.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		p, err := uc.promos.LockByID(ctx, tx, promoID)
		if err != nil {
			return err
		}
		if !model.MatchesUser(p.Target, user) {
			return domain.ErrNotEligible
		}
		stats, err := uc.promos.Stats(ctx, tx, p.ID)
		if err != nil {
			return err
		}
		if !model.IsActive(p, stats, uc.opts.now()) {
			return domain.ErrNotEligible
		}

		done, err := uc.activations.Exists(ctx, tx, user.ID, p.ID)
		if err != nil {
			return err
		}
		if done {
			return domain.ErrNotEligible
		}

		a := &model.Activation{UserID: user.ID, PromoID: p.ID, CreatedAt: uc.opts.now()}
		code := p.PromoCommon
		if p.Mode == model.PromoModeUnique {
			uniq, err := uc.activations.NextUniqueCode(ctx, tx, p.ID)
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotEligible
			}
			if err != nil {
				return err
			}
			a.UniqueCodeID = &uniq.ID
			code = &uniq.Value
		}

		if err := uc.activations.Create(ctx, tx, a); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				return domain.ErrNotEligible
			}
			return err
		}
		res = &model.ActivationResult{PromoID: p.ID, Description: p.Description, Code: code}
		return nil
	})
	if err != nil {
		return nil, uc.finish(log, err)
	}
	uc.finish(log, nil)
	return res, nil
}

// finish records the outcome and returns err unchanged.
func (uc *activationUC) finish(log *zerolog.Logger, err error) error {
	result := activationResult(err)
	metrics.IncActivation(result)
	switch result {
	case "ok":
		log.Info().Msg("promo activated")
	case "error":
		log.Error().Err(err).Msg("activation failed")
	default:
		log.Debug().Err(err).Str("result", result).Msg("activation rejected")
	}
	return err
}

func activationResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotEligible):
		return "not_eligible"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	default:
		return "error"
	}
}
