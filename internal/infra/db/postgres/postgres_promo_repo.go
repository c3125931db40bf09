package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
)

var _ repository.PromoRepository = (*PostgresPromoRepo)(nil)

type PostgresPromoRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresPromoRepo(pool *pgxpool.Pool) *PostgresPromoRepo {
	return &PostgresPromoRepo{pool: pool}
}

// promoColumns must stay in sync with promoDest.
const promoColumns = `
  p.id, p.company_id, p.description, p.image_url, p.active_from, p.active_until,
  p.mode, p.max_count, p.promo_common, p.age_from, p.age_until, p.country, p.created_at,
  COALESCE((SELECT array_agg(k.name::text ORDER BY k.position) FROM categories k WHERE k.promo_id = p.id), '{}'::text[])`

// statsColumns expects the (nullable) user id as $1.
const statsColumns = `
  (SELECT COUNT(*) FROM activations a WHERE a.promo_id = p.id),
  (SELECT COUNT(*) FROM promo_unique u WHERE u.promo_id = p.id),
  (SELECT COUNT(*) FROM likes l WHERE l.promo_id = p.id),
  (SELECT COUNT(*) FROM comments m WHERE m.promo_id = p.id),
  EXISTS (SELECT 1 FROM activations a WHERE a.promo_id = p.id AND a.user_id = $1::uuid),
  EXISTS (SELECT 1 FROM likes l WHERE l.promo_id = p.id AND l.user_id = $1::uuid)`

const poolColumns = `
  COALESCE((SELECT array_agg(u.id::text ORDER BY u.position) FROM promo_unique u WHERE u.promo_id = p.id), '{}'::text[]),
  COALESCE((SELECT array_agg(u.name::text ORDER BY u.position) FROM promo_unique u WHERE u.promo_id = p.id), '{}'::text[])`

func rowColumns(withPool bool) string {
	cols := promoColumns + ",\n  c.name," + statsColumns
	if withPool {
		cols += "," + poolColumns
	}
	return cols
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func promoDest(p *model.Promo, mode *string) []interface{} {
	return []interface{}{
		&p.ID, &p.CompanyID, &p.Description, &p.ImageURL, &p.ActiveFrom, &p.ActiveUntil,
		mode, &p.MaxCount, &p.PromoCommon, &p.Target.AgeFrom, &p.Target.AgeUntil, &p.Target.Country, &p.CreatedAt,
		&p.Target.Categories,
	}
}

func scanPromo(row scanner) (*model.Promo, error) {
	var p model.Promo
	var mode string
	if err := row.Scan(promoDest(&p, &mode)...); err != nil {
		return nil, err
	}
	p.Mode = model.PromoMode(mode)
	return &p, nil
}

func scanPromoRow(row scanner, withPool bool) (*model.PromoRow, error) {
	var (
		p       model.Promo
		mode    string
		r       = model.PromoRow{Promo: &p}
		poolIDs []string
		poolVal []string
	)
	dest := append(promoDest(&p, &mode),
		&r.CompanyName,
		&r.Stats.ActivationCount, &r.Stats.UniqueCount, &r.Stats.LikeCount, &r.Stats.CommentCount,
		&r.ActivatedByUser, &r.LikedByUser,
	)
	if withPool {
		dest = append(dest, &poolIDs, &poolVal)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	p.Mode = model.PromoMode(mode)
	for i := range poolIDs {
		p.PromoUnique = append(p.PromoUnique, model.UniqueCode{ID: poolIDs[i], PromoID: p.ID, Value: poolVal[i]})
	}
	return &r, nil
}

func nullableID(id string) interface{} {
	if id == "" {
		return nil
	}
	return id
}

func (r *PostgresPromoRepo) Create(ctx context.Context, tx repository.Tx, p *model.Promo) error {
	const q = `
INSERT INTO promocodes (
  id, company_id, description, image_url, active_from, active_until,
  mode, max_count, promo_common, age_from, age_until, country, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13);
`
	if _, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.CompanyID, p.Description, p.ImageURL, p.ActiveFrom, p.ActiveUntil,
		string(p.Mode), p.MaxCount, p.PromoCommon, p.Target.AgeFrom, p.Target.AgeUntil, p.Target.Country, p.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert promo: %w", err)
	}
	if err := r.insertCategories(ctx, tx, p.ID, p.Target.Categories); err != nil {
		return err
	}
	if len(p.PromoUnique) == 0 {
		return nil
	}

	ids := make([]string, len(p.PromoUnique))
	vals := make([]string, len(p.PromoUnique))
	for i, u := range p.PromoUnique {
		ids[i], vals[i] = u.ID, u.Value
	}
	const qPool = `
INSERT INTO promo_unique (id, promo_id, position, name)
SELECT t.id::uuid, $1, t.ord, t.name
  FROM unnest($2::text[], $3::text[]) WITH ORDINALITY AS t(id, name, ord);
`
	if _, err := execSQL(ctx, r.pool, tx, qPool, p.ID, ids, vals); err != nil {
		return fmt.Errorf("insert unique pool: %w", err)
	}
	return nil
}

func (r *PostgresPromoRepo) insertCategories(ctx context.Context, tx repository.Tx, promoID string, categories []string) error {
	if len(categories) == 0 {
		return nil
	}
	const q = `
INSERT INTO categories (promo_id, position, name)
SELECT $1, t.ord, t.name
  FROM unnest($2::text[]) WITH ORDINALITY AS t(name, ord);
`
	if _, err := execSQL(ctx, r.pool, tx, q, promoID, categories); err != nil {
		return fmt.Errorf("insert categories: %w", err)
	}
	return nil
}

func (r *PostgresPromoRepo) Update(ctx context.Context, tx repository.Tx, p *model.Promo) error {
	const q = `
UPDATE promocodes SET
  description=$2, image_url=$3, active_from=$4, active_until=$5, max_count=$6,
  age_from=$7, age_until=$8, country=$9
WHERE id=$1;
`
	tag, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.Description, p.ImageURL, p.ActiveFrom, p.ActiveUntil, p.MaxCount,
		p.Target.AgeFrom, p.Target.AgeUntil, p.Target.Country,
	)
	if err != nil {
		return fmt.Errorf("update promo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresPromoRepo) ReplaceCategories(ctx context.Context, tx repository.Tx, promoID string, categories []string) error {
	if _, err := execSQL(ctx, r.pool, tx, `DELETE FROM categories WHERE promo_id=$1;`, promoID); err != nil {
		return fmt.Errorf("delete categories: %w", err)
	}
	return r.insertCategories(ctx, tx, promoID, categories)
}

func (r *PostgresPromoRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Promo, error) {
	q := `SELECT` + promoColumns + `
  FROM promocodes p WHERE p.id=$1;`
	return r.findPromo(ctx, tx, q, id)
}

func (r *PostgresPromoRepo) LockByID(ctx context.Context, tx repository.Tx, id string) (*model.Promo, error) {
	if _, ok := tx.(pgx.Tx); !ok {
		return nil, fmt.Errorf("%w: row lock requires a transaction", domain.ErrInvalidExecContext)
	}
	q := `SELECT` + promoColumns + `
  FROM promocodes p WHERE p.id=$1
   FOR UPDATE OF p;`
	return r.findPromo(ctx, tx, q, id)
}

func (r *PostgresPromoRepo) findPromo(ctx context.Context, tx repository.Tx, q, id string) (*model.Promo, error) {
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	p, err := scanPromo(row)
	if err != nil {
		return nil, scanErr(err)
	}
	return p, nil
}

func (r *PostgresPromoRepo) Stats(ctx context.Context, tx repository.Tx, promoID string) (model.PromoStats, error) {
	const q = `
SELECT
  (SELECT COUNT(*) FROM activations  WHERE promo_id = $1),
  (SELECT COUNT(*) FROM promo_unique WHERE promo_id = $1),
  (SELECT COUNT(*) FROM likes        WHERE promo_id = $1),
  (SELECT COUNT(*) FROM comments     WHERE promo_id = $1);
`
	var s model.PromoStats
	row, err := pickRow(ctx, r.pool, tx, q, promoID)
	if err != nil {
		return s, err
	}
	if err := row.Scan(&s.ActivationCount, &s.UniqueCount, &s.LikeCount, &s.CommentCount); err != nil {
		return model.PromoStats{}, scanErr(err)
	}
	return s, nil
}

func (r *PostgresPromoRepo) FindRow(ctx context.Context, tx repository.Tx, id string, scope repository.RowScope) (*model.PromoRow, error) {
	q := `SELECT` + rowColumns(scope.WithPool) + `
  FROM promocodes p
  JOIN companies c ON c.id = p.company_id
 WHERE p.id = $2;`
	row, err := pickRow(ctx, r.pool, tx, q, nullableID(scope.UserID), id)
	if err != nil {
		return nil, err
	}
	pr, err := scanPromoRow(row, scope.WithPool)
	if err != nil {
		return nil, scanErr(err)
	}
	return pr, nil
}

func (r *PostgresPromoRepo) ListFeed(ctx context.Context, tx repository.Tx, f repository.FeedFilter) ([]*model.PromoRow, error) {
	q := `SELECT` + rowColumns(false) + `
  FROM promocodes p
  JOIN companies c ON c.id = p.company_id
 WHERE ($2::text = '' OR EXISTS (
         SELECT 1 FROM categories k WHERE k.promo_id = p.id AND lower(k.name) = lower($2::text)))
   AND (p.age_from IS NULL OR p.age_from <= $3::int)
   AND (p.age_until IS NULL OR p.age_until >= $3::int)
   AND (p.country IS NULL OR p.country = upper($4::text))
 ORDER BY p.created_at DESC, p.id DESC;`
	rows, err := pickRows(ctx, r.pool, tx, q, nullableID(f.UserID), f.Category, f.Age, f.Country)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, false)
}

var companySort = map[repository.SortField]string{
	repository.SortByCreatedAt:   `p.created_at DESC, p.id DESC`,
	repository.SortByActiveFrom:  `COALESCE(p.active_from, '-infinity'::date) DESC, p.created_at DESC, p.id DESC`,
	repository.SortByActiveUntil: `COALESCE(p.active_until, 'infinity'::date) DESC, p.created_at DESC, p.id DESC`,
}

func (r *PostgresPromoRepo) ListByCompany(ctx context.Context, tx repository.Tx, companyID string, lq repository.CompanyListQuery) ([]*model.PromoRow, int, error) {
	order, ok := companySort[lq.SortBy]
	if !ok {
		return nil, 0, fmt.Errorf("%w: sort_by %q", domain.ErrInvalidArgument, lq.SortBy)
	}
	// A nil slice encodes as NULL, which would reject every row.
	countries := make([]string, 0, len(lq.Countries))
	for _, c := range lq.Countries {
		countries = append(countries, strings.ToUpper(strings.TrimSpace(c)))
	}

	const countQ = `
SELECT COUNT(*) FROM promocodes p
 WHERE p.company_id = $1
   AND (cardinality($2::text[]) = 0 OR p.country IS NULL OR p.country = ANY($2::text[]));`
	var total int
	row, err := pickRow(ctx, r.pool, tx, countQ, companyID, countries)
	if err != nil {
		return nil, 0, err
	}
	if err := row.Scan(&total); err != nil {
		return nil, 0, classify(err)
	}

	q := `SELECT` + rowColumns(true) + `
  FROM promocodes p
  JOIN companies c ON c.id = p.company_id
 WHERE p.company_id = $2
   AND (cardinality($3::text[]) = 0 OR p.country IS NULL OR p.country = ANY($3::text[]))
 ORDER BY ` + order + `
 LIMIT $4 OFFSET $5;`
	rows, err := pickRows(ctx, r.pool, tx, q, nil, companyID, countries, lq.Limit, lq.Offset)
	if err != nil {
		return nil, 0, err
	}
	out, err := collectRows(rows, true)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func collectRows(rows pgx.Rows, withPool bool) ([]*model.PromoRow, error) {
	defer rows.Close()
	var out []*model.PromoRow
	for rows.Next() {
		pr, err := scanPromoRow(rows, withPool)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}
