package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
)

var _ repository.LikeRepository = (*PostgresLikeRepo)(nil)

type PostgresLikeRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresLikeRepo(pool *pgxpool.Pool) *PostgresLikeRepo {
	return &PostgresLikeRepo{pool: pool}
}

func (r *PostgresLikeRepo) Create(ctx context.Context, tx repository.Tx, l *model.Like) error {
	const q = `
INSERT INTO likes (user_id, promo_id, created_at) VALUES ($1, $2, $3)
ON CONFLICT (user_id, promo_id) DO NOTHING;
`
	_, err := execSQL(ctx, r.pool, tx, q, l.UserID, l.PromoID, l.CreatedAt)
	return err
}

func (r *PostgresLikeRepo) Delete(ctx context.Context, tx repository.Tx, userID, promoID string) error {
	_, err := execSQL(ctx, r.pool, tx, `DELETE FROM likes WHERE user_id=$1 AND promo_id=$2;`, userID, promoID)
	return err
}

func (r *PostgresLikeRepo) Find(ctx context.Context, tx repository.Tx, userID, promoID string) (*model.Like, error) {
	const q = `SELECT user_id::text, promo_id::text, created_at FROM likes WHERE user_id=$1 AND promo_id=$2;`
	row, err := pickRow(ctx, r.pool, tx, q, userID, promoID)
	if err != nil {
		return nil, err
	}
	var l model.Like
	if err := row.Scan(&l.UserID, &l.PromoID, &l.CreatedAt); err != nil {
		return nil, scanErr(err)
	}
	return &l, nil
}
