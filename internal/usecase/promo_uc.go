package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
	"promo-platform/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

const maxListLimit = 100

// Compile-time check
var _ PromoUseCase = (*promoUC)(nil)

// ListQuery pages through a company's own promos.
type ListQuery struct {
	Limit     int
	Offset    int
	SortBy    repository.SortField
	Countries []string
}

// PromoUseCase is the company-side management of promos. Promos owned by
// another company are reported as domain.ErrNotFound.
type PromoUseCase interface {
	Create(ctx context.Context, companyID string, in model.PromoCreate) (*model.Promo, error)
	Get(ctx context.Context, companyID, promoID string) (*model.PromoReadOnly, error)
	List(ctx context.Context, companyID string, q ListQuery) ([]model.PromoReadOnly, int, error)
	Update(ctx context.Context, companyID, promoID string, patch model.PromoPatch) (*model.PromoReadOnly, error)
}

type promoUC struct {
	companies repository.CompanyRepository
	promos    repository.PromoRepository
	tm        repository.TransactionManager
	log       *zerolog.Logger
	opts      options
}

func NewPromoUseCase(
	companies repository.CompanyRepository,
	promos repository.PromoRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
	opts ...Option,
) *promoUC {
	return &promoUC{companies: companies, promos: promos, tm: tm, log: logger, opts: buildOptions(opts)}
}

func (uc *promoUC) Create(ctx context.Context, companyID string, in model.PromoCreate) (*model.Promo, error) {
	defer logging.TraceDuration(uc.log, "PromoUC.Create")()

	if _, err := uc.loadCompany(ctx, companyID); err != nil {
		return nil, err
	}
	p, err := model.NewPromo(companyID, in)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = uc.opts.now()

	err = uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		return uc.promos.Create(ctx, tx, p)
	})
	if err != nil {
		logging.With(ctx, uc.log).Error().Err(err).Msg("create promo")
		return nil, err
	}
	logging.With(logging.WithPromoID(ctx, p.ID), uc.log).Info().
		Str("mode", string(p.Mode)).
		Int("pool", len(p.PromoUnique)).
		Msg("promo created")
	return p, nil
}

func (uc *promoUC) Get(ctx context.Context, companyID, promoID string) (*model.PromoReadOnly, error) {
	defer logging.TraceDuration(uc.log, "PromoUC.Get")()

	row, err := uc.promos.FindRow(ctx, repository.NoTX, promoID, repository.RowScope{WithPool: true})
	if err != nil {
		return nil, err
	}
	if row.Promo.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	view := row.ReadOnly(uc.opts.now())
	return &view, nil
}

func (uc *promoUC) List(ctx context.Context, companyID string, q ListQuery) ([]model.PromoReadOnly, int, error) {
	defer logging.TraceDuration(uc.log, "PromoUC.List")()

	if q.Limit < 0 || q.Limit > maxListLimit || q.Offset < 0 {
		return nil, 0, fmt.Errorf("%w: limit must be 0..%d and offset not negative", domain.ErrInvalidArgument, maxListLimit)
	}
	if !q.SortBy.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown sort_by %q", domain.ErrInvalidArgument, q.SortBy)
	}
	countries := make([]string, 0, len(q.Countries))
	for _, c := range q.Countries {
		if c = strings.TrimSpace(c); c != "" {
			countries = append(countries, strings.ToUpper(c))
		}
	}

	rows, total, err := uc.promos.ListByCompany(ctx, repository.NoTX, companyID, repository.CompanyListQuery{
		Limit:     q.Limit,
		Offset:    q.Offset,
		SortBy:    q.SortBy,
		Countries: countries,
	})
	if err != nil {
		return nil, 0, err
	}

	today := uc.opts.now()
	out := make([]model.PromoReadOnly, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ReadOnly(today))
	}
	return out, total, nil
}

func (uc *promoUC) Update(ctx context.Context, companyID, promoID string, patch model.PromoPatch) (*model.PromoReadOnly, error) {
	defer logging.TraceDuration(uc.log, "PromoUC.Update")()

	var row *model.PromoRow
	err := uc.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		cur, err := uc.promos.LockByID(ctx, tx, promoID)
		if err != nil {
			return err
		}
		if cur.CompanyID != companyID {
			return domain.ErrNotFound
		}
		next, err := patch.Apply(cur)
		if err != nil {
			return err
		}
		if err := uc.promos.Update(ctx, tx, next); err != nil {
			return err
		}
		if patch.ReplacesCategories() {
			if err := uc.promos.ReplaceCategories(ctx, tx, next.ID, next.Target.Categories); err != nil {
				return err
			}
		}
		row, err = uc.promos.FindRow(ctx, tx, next.ID, repository.RowScope{WithPool: true})
		return err
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrInvalidArgument) {
			logging.With(logging.WithPromoID(ctx, promoID), uc.log).Error().Err(err).Msg("update promo")
		}
		return nil, err
	}
	view := row.ReadOnly(uc.opts.now())
	return &view, nil
}

func (uc *promoUC) loadCompany(ctx context.Context, companyID string) (*model.Company, error) {
	c, err := uc.companies.FindByID(ctx, repository.NoTX, companyID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthorized
	}
	return c, err
}
