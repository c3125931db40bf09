package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"

	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*PostgresUserRepo)(nil)

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

func (r *PostgresUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (id, name, surname, email, avatar_url, age, country, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  name=$2, surname=$3, email=$4, avatar_url=$5, age=$6, country=$7;
`
	_, err := execSQL(ctx, r.pool, tx, q, u.ID, u.Name, u.Surname, u.Email, u.AvatarURL, u.Age, u.Country, u.CreatedAt)
	return err
}

const selectUser = `
SELECT id, name, surname, email, avatar_url, age, country, created_at
  FROM users`

func (r *PostgresUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	return r.findOne(ctx, tx, selectUser+` WHERE id=$1;`, id)
}

func (r *PostgresUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	return r.findOne(ctx, tx, selectUser+` WHERE email=$1;`, strings.ToLower(email))
}

func (r *PostgresUserRepo) findOne(ctx context.Context, tx repository.Tx, q string, arg interface{}) (*model.User, error) {
	row, err := pickRow(ctx, r.pool, tx, q, arg)
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.Surname, &u.Email, &u.AvatarURL, &u.Age, &u.Country, &u.CreatedAt); err != nil {
		return nil, scanErr(err)
	}
	return &u, nil
}
