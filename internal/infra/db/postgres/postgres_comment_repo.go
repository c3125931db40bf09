package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
)

var _ repository.CommentRepository = (*PostgresCommentRepo)(nil)

type PostgresCommentRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresCommentRepo(pool *pgxpool.Pool) *PostgresCommentRepo {
	return &PostgresCommentRepo{pool: pool}
}

func (r *PostgresCommentRepo) Create(ctx context.Context, tx repository.Tx, c *model.Comment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	const q = `INSERT INTO comments (id, promo_id, author_id, text, created_at) VALUES ($1,$2,$3,$4,$5);`
	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.PromoID, c.AuthorID, c.Text, c.CreatedAt)
	return err
}
