package usecase

import (
	"context"

	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
	"promo-platform/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ LikeUseCase = (*likeUC)(nil)

// LikeUseCase toggles a user's like on a promo. Both directions are idempotent.
type LikeUseCase interface {
	// Add returns the stored like; adding it again returns the existing row.
	Add(ctx context.Context, userID, promoID string) (*model.Like, error)
	Delete(ctx context.Context, userID, promoID string) error
}

type likeUC struct {
	promos repository.PromoRepository
	likes  repository.LikeRepository
	tm     repository.TransactionManager
	log    *zerolog.Logger
	opts   options
}

func NewLikeUseCase(
	promos repository.PromoRepository,
	likes repository.LikeRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
	opts ...Option,
) *likeUC {
	return &likeUC{promos: promos, likes: likes, tm: tm, log: logger, opts: buildOptions(opts)}
}

func (uc *likeUC) Add(ctx context.Context, userID, promoID string) (*model.Like, error) {
	defer logging.TraceDuration(uc.log, "LikeUC.Add")()

	var like *model.Like
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if _, err := uc.promos.FindByID(ctx, tx, promoID); err != nil {
			return err
		}
		if err := uc.likes.Create(ctx, tx, &model.Like{UserID: userID, PromoID: promoID, CreatedAt: uc.opts.now()}); err != nil {
			return err
		}
		var err error
		like, err = uc.likes.Find(ctx, tx, userID, promoID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return like, nil
}

func (uc *likeUC) Delete(ctx context.Context, userID, promoID string) error {
	defer logging.TraceDuration(uc.log, "LikeUC.Delete")()

	return uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if _, err := uc.promos.FindByID(ctx, tx, promoID); err != nil {
			return err
		}
		return uc.likes.Delete(ctx, tx, userID, promoID)
	})
}
