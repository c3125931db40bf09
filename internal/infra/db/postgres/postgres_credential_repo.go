package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
)

var _ repository.CredentialRepository = (*PostgresCredentialRepo)(nil)

// PostgresCredentialRepo reads and writes the password_hash column of the
// users and companies tables. An empty hash means no password was ever set.
type PostgresCredentialRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresCredentialRepo(pool *pgxpool.Pool) *PostgresCredentialRepo {
	return &PostgresCredentialRepo{pool: pool}
}

func credentialTable(kind model.PrincipalKind) (string, error) {
	switch kind {
	case model.PrincipalUser:
		return "users", nil
	case model.PrincipalCompany:
		return "companies", nil
	default:
		return "", fmt.Errorf("%w: principal kind %q", domain.ErrInvalidArgument, kind)
	}
}

func (r *PostgresCredentialRepo) FindByEmail(ctx context.Context, tx repository.Tx, kind model.PrincipalKind, email string) (*model.Credential, error) {
	table, err := credentialTable(kind)
	if err != nil {
		return nil, err
	}
	q := `SELECT id::text, password_hash FROM ` + table + ` WHERE email=$1 AND password_hash <> '';`
	row, err := pickRow(ctx, r.pool, tx, q, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	c := model.Credential{Principal: model.Principal{Kind: kind}}
	if err := row.Scan(&c.Principal.ID, &c.Hash); err != nil {
		return nil, scanErr(err)
	}
	return &c, nil
}

func (r *PostgresCredentialRepo) SetHash(ctx context.Context, tx repository.Tx, p model.Principal, hash string) error {
	table, err := credentialTable(p.Kind)
	if err != nil {
		return err
	}
	tag, err := execSQL(ctx, r.pool, tx, `UPDATE `+table+` SET password_hash=$2 WHERE id=$1;`, p.ID, hash)
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
