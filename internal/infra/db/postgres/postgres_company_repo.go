package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
)

var _ repository.CompanyRepository = (*PostgresCompanyRepo)(nil)

type PostgresCompanyRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresCompanyRepo(pool *pgxpool.Pool) *PostgresCompanyRepo {
	return &PostgresCompanyRepo{pool: pool}
}

func (r *PostgresCompanyRepo) Save(ctx context.Context, tx repository.Tx, c *model.Company) error {
	const q = `
INSERT INTO companies (id, name, email, created_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (id) DO UPDATE SET name=$2, email=$3;
`
	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.Name, c.Email, c.CreatedAt)
	return err
}

func (r *PostgresCompanyRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Company, error) {
	const q = `SELECT id, name, email, created_at FROM companies WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var c model.Company
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.CreatedAt); err != nil {
		return nil, scanErr(err)
	}
	return &c, nil
}
