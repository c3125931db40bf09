package repository

import (
	"context"

	"promo-platform/internal/domain/model"
)

// SortField orders a company's promo listing.
type SortField string

const (
	SortByCreatedAt   SortField = ""
	SortByActiveFrom  SortField = "active_from"
	SortByActiveUntil SortField = "active_until"
)

func (s SortField) Valid() bool {
	return s == SortByCreatedAt || s == SortByActiveFrom || s == SortByActiveUntil
}

// CompanyListQuery pages through the promos owned by one company.
// Countries are matched case-insensitively; promos without a country always match.
type CompanyListQuery struct {
	Limit     int
	Offset    int
	SortBy    SortField
	Countries []string
}

// RowScope selects what a row read attaches. UserID scopes the
// ActivatedByUser / LikedByUser flags and may be empty.
type RowScope struct {
	UserID   string
	WithPool bool
}

// FeedFilter narrows the feed candidates in storage. Age and Country prefilter by
// targeting rule; Category (empty means any) matches case-insensitively.
type FeedFilter struct {
	UserID   string
	Age      int
	Country  string
	Category string
}

// PromoRepository stores promos with their categories and unique-code pools.
//
// Row-returning reads attach the aggregates in model.PromoStats.
type PromoRepository interface {
	Create(ctx context.Context, tx Tx, p *model.Promo) error
	// Update rewrites the scalar and target columns. Categories are left alone.
	Update(ctx context.Context, tx Tx, p *model.Promo) error
	ReplaceCategories(ctx context.Context, tx Tx, promoID string, categories []string) error

	FindByID(ctx context.Context, tx Tx, id string) (*model.Promo, error)
	// LockByID loads the promo and takes a row lock held until tx ends.
	LockByID(ctx context.Context, tx Tx, id string) (*model.Promo, error)
	Stats(ctx context.Context, tx Tx, promoID string) (model.PromoStats, error)

	FindRow(ctx context.Context, tx Tx, id string, scope RowScope) (*model.PromoRow, error)
	// ListFeed returns every promo passing f, newest first.
	ListFeed(ctx context.Context, tx Tx, f FeedFilter) ([]*model.PromoRow, error)
	// ListByCompany returns one page with unique pools attached, plus the filtered total.
	ListByCompany(ctx context.Context, tx Tx, companyID string, q CompanyListQuery) ([]*model.PromoRow, int, error)
}

// ActivationRepository records redemptions. Create returns domain.ErrAlreadyExists
// when the (user, promo) pair or the unique code is already taken.
type ActivationRepository interface {
	Create(ctx context.Context, tx Tx, a *model.Activation) error
	Exists(ctx context.Context, tx Tx, userID, promoID string) (bool, error)
	// NextUniqueCode returns the first pool entry no activation references yet,
	// or domain.ErrNotFound when the pool is exhausted.
	NextUniqueCode(ctx context.Context, tx Tx, promoID string) (*model.UniqueCode, error)
}

// CommentRepository only writes; reads are counted into model.PromoStats.
type CommentRepository interface {
	Create(ctx context.Context, tx Tx, c *model.Comment) error
}

type LikeRepository interface {
	// Create is a no-op when the like already exists.
	Create(ctx context.Context, tx Tx, l *model.Like) error
	Delete(ctx context.Context, tx Tx, userID, promoID string) error
	Find(ctx context.Context, tx Tx, userID, promoID string) (*model.Like, error)
}
