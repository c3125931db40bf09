package usecase

import (
	"context"
	"errors"
	"fmt"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
	"promo-platform/internal/infra/logging"
	"promo-platform/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ FeedUseCase = (*feedUC)(nil)

// FeedQuery narrows and pages the feed. A nil Active keeps both active and
// inactive promos; an empty Category keeps every category.
type FeedQuery struct {
	Active   *bool
	Category string
	Limit    int
	Offset   int
}

// FeedUseCase composes the personalized promo feed of an end-user.
type FeedUseCase interface {
	// Feed returns one page of the feed and the size of the whole filtered set.
	Feed(ctx context.Context, userID string, q FeedQuery) ([]model.PromoForUser, int, error)
	GetForUser(ctx context.Context, userID, promoID string) (*model.PromoForUser, error)
}

type feedUC struct {
	users  repository.UserRepository
	promos repository.PromoRepository
	tm     repository.TransactionManager
	log    *zerolog.Logger
	opts   options
}

func NewFeedUseCase(
	users repository.UserRepository,
	promos repository.PromoRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
	opts ...Option,
) *feedUC {
	return &feedUC{users: users, promos: promos, tm: tm, log: logger, opts: buildOptions(opts)}
}

func (uc *feedUC) Feed(ctx context.Context, userID string, q FeedQuery) ([]model.PromoForUser, int, error) {
	defer logging.TraceDuration(uc.log, "FeedUC.Feed")()

	if q.Limit < 0 || q.Offset < 0 {
		return nil, 0, fmt.Errorf("%w: limit and offset must not be negative", domain.ErrInvalidArgument)
	}
	user, err := uc.loadUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	rows, err := uc.promos.ListFeed(ctx, repository.NoTX, repository.FeedFilter{
		UserID:   user.ID,
		Age:      user.Age,
		Country:  user.Country,
		Category: q.Category,
	})
	if err != nil {
		logging.With(ctx, uc.log).Error().Err(err).Msg("list feed")
		return nil, 0, err
	}

	today := uc.opts.now()
	items := make([]model.PromoForUser, 0, len(rows))
	for _, r := range rows {
		// storage prefilters by targeting; the rule is re-applied so the feed
		// never shows a promo activation would reject
		if !model.MatchesUser(r.Promo.Target, user) {
			continue
		}
		if q.Category != "" && !r.Promo.Target.HasCategory(q.Category) {
			continue
		}
		item := r.ForUser(today)
		if q.Active != nil && item.Active != *q.Active {
			continue
		}
		items = append(items, item)
	}

	total := len(items)
	page := paginate(items, q.Offset, q.Limit)
	metrics.ObserveFeed(len(page))
	return page, total, nil
}

func (uc *feedUC) GetForUser(ctx context.Context, userID, promoID string) (*model.PromoForUser, error) {
	defer logging.TraceDuration(uc.log, "FeedUC.GetForUser")()

	if _, err := uc.loadUser(ctx, userID); err != nil {
		return nil, err
	}
	row, err := uc.promos.FindRow(ctx, repository.NoTX, promoID, repository.RowScope{UserID: userID})
	if err != nil {
		return nil, err
	}
	item := row.ForUser(uc.opts.now())
	return &item, nil
}

func (uc *feedUC) loadUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := uc.users.FindByID(ctx, repository.NoTX, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthorized
	}
	return user, err
}

// paginate returns the [offset, offset+limit) window of items, clamped to its bounds.
func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) || end < offset {
		end = len(items)
	}
	return items[offset:end]
}
