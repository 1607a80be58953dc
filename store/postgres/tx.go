package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ajs/poefixer/internal/errkit"
	"github.com/ajs/poefixer/models"
	"github.com/ajs/poefixer/store"
)

// tx wraps a *sqlx.Tx to satisfy store.Tx. Every method issues plain SQL
// (no ORM), matching the query style the teacher's commonsql registries
// use on top of sqlx.
type tx struct {
	tx *sqlx.Tx
}

var _ store.Tx = (*tx)(nil)

func (t *tx) Commit(_ context.Context) error {
	if err := t.tx.Commit(); err != nil {
		return errkit.Wrap(err, "failed to commit transaction")
	}
	return nil
}

func (t *tx) Rollback(_ context.Context) error {
	if err := t.tx.Rollback(); err != nil {
		return errkit.Wrap(err, "failed to rollback transaction")
	}
	return nil
}

func (t *tx) DistinctFromCurrencies(ctx context.Context) ([]string, error) {
	var names []string
	err := t.tx.SelectContext(ctx, &names,
		`SELECT DISTINCT from_currency FROM currency_summary ORDER BY from_currency`)
	if err != nil {
		return nil, errkit.Wrap(err, "failed to query distinct from_currency values")
	}
	return names, nil
}

func (t *tx) LastProcessedItemUpdatedAt(ctx context.Context) (*int64, error) {
	var max *int64
	err := t.tx.GetContext(ctx, &max, `SELECT MAX(item_updated_at) FROM sale`)
	if err != nil {
		return nil, errkit.Wrap(err, "failed to query last processed item_updated_at")
	}
	return max, nil
}

func (t *tx) ItemsForProcessing(ctx context.Context, start *int64, limit, offset int) ([]store.ItemStashRow, error) {
	const q = `
SELECT
	i.id, i.api_id, i.stash_id, i.w, i.h, i.x, i.y, i.league, i.type_line,
	i.name, i.frame_type, i.category, i.note, i.extra, i.active,
	i.created_at, i.updated_at,
	s.stash_name AS stash_name, s.public AS stash_public
FROM item i
JOIN stash s ON s.id = i.stash_id
WHERE s.public = true
  AND ($1::BIGINT IS NULL OR i.updated_at >= $1)
ORDER BY i.updated_at, i.created_at, i.id
LIMIT $2 OFFSET $3`

	type row struct {
		models.Item
		StashNameCol   string `db:"stash_name"`
		StashPublicCol bool   `db:"stash_public"`
	}

	var rows []row
	if err := t.tx.SelectContext(ctx, &rows, q, start, limit, offset); err != nil {
		return nil, errkit.Wrap(err, "failed to query items for processing")
	}

	out := make([]store.ItemStashRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, store.ItemStashRow{
			Item:        r.Item,
			StashName:   r.StashNameCol,
			StashPublic: r.StashPublicCol,
		})
	}
	return out, nil
}

func (t *tx) GetSaleByItemID(ctx context.Context, itemID int64) (*models.Sale, error) {
	var sale models.Sale
	err := t.tx.GetContext(ctx, &sale, `SELECT * FROM sale WHERE item_id = $1`, itemID)
	if err != nil {
		if isNoRows(err) {
			return nil, store.ErrNotFound
		}
		return nil, errkit.Wrap(err, "failed to query sale by item_id")
	}
	return &sale, nil
}

func (t *tx) UpsertSale(ctx context.Context, sale *models.Sale) error {
	const q = `
INSERT INTO sale (
	item_id, item_api_id, name, is_currency, sale_currency, sale_amount,
	sale_amount_chaos, item_updated_at, created_at, updated_at
) VALUES (
	:item_id, :item_api_id, :name, :is_currency, :sale_currency, :sale_amount,
	:sale_amount_chaos, :item_updated_at, :created_at, :updated_at
)
ON CONFLICT (item_id) DO UPDATE SET
	item_api_id       = EXCLUDED.item_api_id,
	name              = EXCLUDED.name,
	is_currency       = EXCLUDED.is_currency,
	sale_currency     = EXCLUDED.sale_currency,
	sale_amount       = EXCLUDED.sale_amount,
	sale_amount_chaos = EXCLUDED.sale_amount_chaos,
	item_updated_at   = EXCLUDED.item_updated_at,
	updated_at        = EXCLUDED.updated_at
RETURNING id`

	rows, err := t.tx.NamedQuery(q, sale)
	if err != nil {
		return errkit.Wrap(err, "failed to upsert sale")
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&sale.ID); err != nil {
			return errkit.Wrap(err, "failed to scan upserted sale id")
		}
	}
	return rows.Err()
}

func (t *tx) SalesForBucket(ctx context.Context, name, currency, league string, after int64) ([]store.SaleSample, error) {
	const q = `
SELECT sl.sale_amount, sl.item_updated_at
FROM sale sl
JOIN item i ON i.id = sl.item_id
WHERE sl.name = $1 AND sl.sale_currency = $2 AND i.league = $3 AND sl.item_updated_at > $4`

	var samples []store.SaleSample
	if err := t.tx.SelectContext(ctx, &samples, q, name, currency, league, after); err != nil {
		return nil, errkit.Wrap(err, "failed to query sales for bucket")
	}
	return samples, nil
}

func (t *tx) GetCurrencySummary(ctx context.Context, from, to, league string) (*models.CurrencySummary, error) {
	var summary models.CurrencySummary
	const q = `SELECT * FROM currency_summary WHERE from_currency = $1 AND to_currency = $2 AND league = $3`
	err := t.tx.GetContext(ctx, &summary, q, from, to, league)
	if err != nil {
		if isNoRows(err) {
			return nil, store.ErrNotFound
		}
		return nil, errkit.Wrap(err, "failed to query currency summary")
	}
	return &summary, nil
}

func (t *tx) UpsertCurrencySummary(ctx context.Context, summary *models.CurrencySummary) error {
	const q = `
INSERT INTO currency_summary (
	from_currency, to_currency, league, count, mean, standard_dev, weight,
	created_at, updated_at
) VALUES (
	:from_currency, :to_currency, :league, :count, :mean, :standard_dev, :weight,
	:created_at, :updated_at
)
ON CONFLICT (from_currency, to_currency, league) DO UPDATE SET
	count        = EXCLUDED.count,
	mean         = EXCLUDED.mean,
	standard_dev = EXCLUDED.standard_dev,
	weight       = EXCLUDED.weight,
	updated_at   = EXCLUDED.updated_at
RETURNING id`

	rows, err := t.tx.NamedQuery(q, summary)
	if err != nil {
		return errkit.Wrap(err, "failed to upsert currency summary")
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&summary.ID); err != nil {
			return errkit.Wrap(err, "failed to scan upserted currency summary id")
		}
	}
	return rows.Err()
}

func (t *tx) SummariesFrom(ctx context.Context, from, league string) ([]models.CurrencySummary, error) {
	const q = `SELECT * FROM currency_summary WHERE from_currency = $1 AND league = $2 ORDER BY weight DESC`
	var rows []models.CurrencySummary
	if err := t.tx.SelectContext(ctx, &rows, q, from, league); err != nil {
		return nil, errkit.Wrap(err, "failed to query summaries from currency")
	}
	return rows, nil
}

func (t *tx) UpsertStash(ctx context.Context, stash *models.Stash) error {
	const q = `
INSERT INTO stash (
	api_id, account_name, last_character_name, stash_name, stash_type,
	public, created_at, updated_at
) VALUES (
	:api_id, :account_name, :last_character_name, :stash_name, :stash_type,
	:public, :created_at, :updated_at
)
ON CONFLICT (api_id) DO UPDATE SET
	account_name        = EXCLUDED.account_name,
	last_character_name = EXCLUDED.last_character_name,
	stash_name          = EXCLUDED.stash_name,
	stash_type          = EXCLUDED.stash_type,
	public              = EXCLUDED.public,
	updated_at          = EXCLUDED.updated_at
RETURNING id, created_at`

	rows, err := t.tx.NamedQuery(q, stash)
	if err != nil {
		return errkit.Wrap(err, "failed to upsert stash")
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&stash.ID, &stash.CreatedAt); err != nil {
			return errkit.Wrap(err, "failed to scan upserted stash id")
		}
	}
	return rows.Err()
}

func (t *tx) UpsertItem(ctx context.Context, item *models.Item) error {
	const q = `
INSERT INTO item (
	api_id, stash_id, w, h, x, y, league, type_line, name, frame_type,
	category, note, extra, active, created_at, updated_at
) VALUES (
	:api_id, :stash_id, :w, :h, :x, :y, :league, :type_line, :name, :frame_type,
	:category, :note, :extra, true, :created_at, :updated_at
)
ON CONFLICT (api_id) DO UPDATE SET
	stash_id   = EXCLUDED.stash_id,
	w          = EXCLUDED.w,
	h          = EXCLUDED.h,
	x          = EXCLUDED.x,
	y          = EXCLUDED.y,
	league     = EXCLUDED.league,
	type_line  = EXCLUDED.type_line,
	name       = EXCLUDED.name,
	frame_type = EXCLUDED.frame_type,
	category   = EXCLUDED.category,
	note       = EXCLUDED.note,
	extra      = EXCLUDED.extra,
	active     = true,
	updated_at = EXCLUDED.updated_at
RETURNING id, created_at`

	rows, err := t.tx.NamedQuery(q, item)
	if err != nil {
		return errkit.Wrap(err, "failed to upsert item")
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&item.ID, &item.CreatedAt); err != nil {
			return errkit.Wrap(err, "failed to scan upserted item id")
		}
	}
	item.Active = true
	return rows.Err()
}

func (t *tx) DeactivateStashItems(ctx context.Context, stashID int64) error {
	_, err := t.tx.ExecContext(ctx, `UPDATE item SET active = false WHERE stash_id = $1`, stashID)
	if err != nil {
		return errkit.Wrap(err, "failed to deactivate stash items")
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
