// Package store declares the transactional session the currency
// post-processor is built against (spec.md §2 item 1, §5). Two
// implementations exist: store/postgres (the real backend) and
// store/memory (an in-process implementation used by tests so that core
// logic never needs a live database).
package store

import (
	"context"
	"errors"

	"github.com/ajs/poefixer/models"
)

// ErrNotFound is returned by single-row lookups that find nothing.
var ErrNotFound = errors.New("store: not found")

// ErrSchemaExists is folded into EnsureSchema's success path: spec.md §7
// says a "schema already exists at create" error is swallowed.
var ErrSchemaExists = errors.New("store: schema already exists")

// Store is the root handle: it knows how to stand up the schema and open
// transactional sessions. The Driver owns the one Store for the lifetime
// of the process (spec.md §5: "Shared-resource policy").
type Store interface {
	// EnsureSchema creates the stash/item/sale/currency_summary tables if
	// they don't already exist. A "relation already exists" condition is
	// swallowed; any other DDL failure is fatal (spec.md §7).
	EnsureSchema(ctx context.Context) error

	// Begin opens one block's transaction (spec.md §5: "one transaction
	// per block").
	Begin(ctx context.Context) (Tx, error)

	Close() error
}

// ItemStashRow is the joined (item, stash) record the Driver pages
// through and hands to the Sale Extractor (spec.md §4.3, §4.6).
type ItemStashRow struct {
	Item        models.Item
	StashName   string
	StashPublic bool
}

// SaleSample is one historical sale considered by the Summary Updater's
// weighted-statistics pass (spec.md §4.4).
type SaleSample struct {
	SaleAmount    float64 `db:"sale_amount"`
	ItemUpdatedAt int64   `db:"item_updated_at"`
}

// Tx is the per-block session passed by reference to every component; no
// component may retain it past the block it was handed for (spec.md §5).
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// DistinctFromCurrencies feeds the Alias Map (spec.md §4.2): every
	// distinct from_currency ever recorded in currency_summary.
	DistinctFromCurrencies(ctx context.Context) ([]string, error)

	// LastProcessedItemUpdatedAt is the Driver's resume point: the
	// item_updated_at of the most recently recorded sale, or nil if none
	// exists yet (spec.md §4.6 step 2).
	LastProcessedItemUpdatedAt(ctx context.Context) (*int64, error)

	// ItemsForProcessing pages through item rows joined to their stash,
	// restricted to public stashes and (if start is non-nil) to
	// updated_at >= start, ordered by (updated_at, created_at, id)
	// (spec.md §4.6 step 3).
	ItemsForProcessing(ctx context.Context, start *int64, limit, offset int) ([]ItemStashRow, error)

	// GetSaleByItemID looks up the existing sale for an item, if any
	// (spec.md §4.3 "Persistence": upsert keyed by item_id).
	GetSaleByItemID(ctx context.Context, itemID int64) (*models.Sale, error)

	// UpsertSale inserts or updates sale by ItemID, writing the ID back
	// onto sale (spec.md §4.3 "Persistence").
	UpsertSale(ctx context.Context, sale *models.Sale) error

	// SalesForBucket returns every sale sample in the (name, currency,
	// league) bucket with item_updated_at > after, for the weighted
	// statistics pass (spec.md §4.4).
	SalesForBucket(ctx context.Context, name, currency, league string, after int64) ([]SaleSample, error)

	// GetCurrencySummary looks up the existing summary row for a bucket,
	// or ErrNotFound.
	GetCurrencySummary(ctx context.Context, from, to, league string) (*models.CurrencySummary, error)

	// UpsertCurrencySummary inserts or updates the summary row for
	// (from_currency, to_currency, league) (spec.md §4.4 "Write").
	UpsertCurrencySummary(ctx context.Context, summary *models.CurrencySummary) error

	// SummariesFrom returns every summary row with the given from_currency
	// and league, ordered by weight descending (spec.md §4.5 step 2).
	SummariesFrom(ctx context.Context, from, league string) ([]models.CurrencySummary, error)

	// UpsertStash inserts or updates a stash keyed by APIID, writing the
	// surrogate ID back onto stash (spec.md §3 "Stash" lifecycle).
	UpsertStash(ctx context.Context, stash *models.Stash) error

	// UpsertItem inserts or updates an item keyed by APIID, writing the
	// surrogate ID back onto item (spec.md §3 "Item" lifecycle).
	UpsertItem(ctx context.Context, item *models.Item) error

	// DeactivateStashItems marks every item currently belonging to
	// stashID inactive; re-ingesting items then flips them back to
	// active one at a time via UpsertItem (spec.md §3 "Item" invariant).
	DeactivateStashItems(ctx context.Context, stashID int64) error
}
