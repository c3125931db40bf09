package repository

import (
	"context"

	"promo-platform/internal/domain/model"
)

// -----------------------------
// Users & companies
// -----------------------------

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.User, error)
}

type CompanyRepository interface {
	Save(ctx context.Context, tx Tx, c *model.Company) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Company, error)
}

// CredentialRepository stores password hashes apart from the profile rows so
// that cached users and companies never carry them.
type CredentialRepository interface {
	// FindByEmail returns domain.ErrNotFound when no principal of kind uses email.
	FindByEmail(ctx context.Context, tx Tx, kind model.PrincipalKind, email string) (*model.Credential, error)
	SetHash(ctx context.Context, tx Tx, p model.Principal, hash string) error
}
