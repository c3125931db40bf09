package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
)

var _ repository.ActivationRepository = (*PostgresActivationRepo)(nil)

type PostgresActivationRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresActivationRepo(pool *pgxpool.Pool) *PostgresActivationRepo {
	return &PostgresActivationRepo{pool: pool}
}

// Create inserts the activation. The (user_id, promo_id) primary key and the
// unique unique_code_id column surface as domain.ErrAlreadyExists.
func (r *PostgresActivationRepo) Create(ctx context.Context, tx repository.Tx, a *model.Activation) error {
	const q = `
INSERT INTO activations (user_id, promo_id, unique_code_id, created_at)
VALUES ($1, $2, $3, $4);
`
	if _, err := execSQL(ctx, r.pool, tx, q, a.UserID, a.PromoID, a.UniqueCodeID, a.CreatedAt); err != nil {
		return fmt.Errorf("insert activation: %w", err)
	}
	return nil
}

func (r *PostgresActivationRepo) Exists(ctx context.Context, tx repository.Tx, userID, promoID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM activations WHERE user_id=$1 AND promo_id=$2);`
	row, err := pickRow(ctx, r.pool, tx, q, userID, promoID)
	if err != nil {
		return false, err
	}
	var ok bool
	if err := row.Scan(&ok); err != nil {
		return false, classify(err)
	}
	return ok, nil
}

// NextUniqueCode picks the lowest-positioned pool entry nobody has redeemed.
func (r *PostgresActivationRepo) NextUniqueCode(ctx context.Context, tx repository.Tx, promoID string) (*model.UniqueCode, error) {
	const q = `
SELECT u.id, u.name
  FROM promo_unique u
 WHERE u.promo_id = $1
   AND NOT EXISTS (SELECT 1 FROM activations a WHERE a.unique_code_id = u.id)
 ORDER BY u.position
 LIMIT 1;
`
	row, err := pickRow(ctx, r.pool, tx, q, promoID)
	if err != nil {
		return nil, err
	}
	uc := model.UniqueCode{PromoID: promoID}
	if err := row.Scan(&uc.ID, &uc.Value); err != nil {
		return nil, scanErr(err)
	}
	return &uc, nil
}
