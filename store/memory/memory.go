// Package memory is an in-process implementation of store.Store, modeled
// on the teacher's registry/memory package: a handful of maps behind a
// single mutex. It exists so the currency post-processor's core logic can
// be tested (spec.md §8) without a live PostgreSQL instance.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ajs/poefixer/internal/errkit"
	"github.com/ajs/poefixer/models"
	"github.com/ajs/poefixer/store"
)

type summaryKey struct {
	from, to, league string
}

// Store is an in-memory store.Store. The zero value is not usable; use
// New.
type Store struct {
	mu sync.Mutex

	stashes      map[int64]*models.Stash
	stashByAPI   map[string]int64
	items        map[int64]*models.Item
	itemByAPI    map[string]int64
	sales        map[int64]*models.Sale
	saleByItemID map[int64]int64
	summaries    map[summaryKey]*models.CurrencySummary

	nextStashID   int64
	nextItemID    int64
	nextSaleID    int64
	nextSummaryID int64
}

var _ store.Store = (*Store)(nil)

// New returns an empty in-memory Store.
func New() *Store {
	return &Store{
		stashes:      make(map[int64]*models.Stash),
		stashByAPI:   make(map[string]int64),
		items:        make(map[int64]*models.Item),
		itemByAPI:    make(map[string]int64),
		sales:        make(map[int64]*models.Sale),
		saleByItemID: make(map[int64]int64),
		summaries:    make(map[summaryKey]*models.CurrencySummary),
	}
}

func (s *Store) EnsureSchema(_ context.Context) error {
	return nil
}

func (s *Store) Close() error {
	return nil
}

// Begin locks the store for the duration of the block and snapshots its
// state so Rollback can restore it, matching spec.md §5's "one
// transaction per block" / crash-mid-block-rolls-back-the-block model.
func (s *Store) Begin(_ context.Context) (store.Tx, error) {
	s.mu.Lock()
	return &tx{store: s, snapshot: s.snapshot()}, nil
}

func (s *Store) snapshot() snapshot {
	cp := snapshot{
		stashes:      make(map[int64]*models.Stash, len(s.stashes)),
		stashByAPI:   make(map[string]int64, len(s.stashByAPI)),
		items:        make(map[int64]*models.Item, len(s.items)),
		itemByAPI:    make(map[string]int64, len(s.itemByAPI)),
		sales:        make(map[int64]*models.Sale, len(s.sales)),
		saleByItemID: make(map[int64]int64, len(s.saleByItemID)),
		summaries:    make(map[summaryKey]*models.CurrencySummary, len(s.summaries)),
		nextStashID:  s.nextStashID,
		nextItemID:   s.nextItemID,
		nextSaleID:   s.nextSaleID,
		nextSumID:    s.nextSummaryID,
	}
	for k, v := range s.stashes {
		cpv := *v
		cp.stashes[k] = &cpv
	}
	for k, v := range s.stashByAPI {
		cp.stashByAPI[k] = v
	}
	for k, v := range s.items {
		cpv := *v
		cp.items[k] = &cpv
	}
	for k, v := range s.itemByAPI {
		cp.itemByAPI[k] = v
	}
	for k, v := range s.sales {
		cpv := *v
		cp.sales[k] = &cpv
	}
	for k, v := range s.saleByItemID {
		cp.saleByItemID[k] = v
	}
	for k, v := range s.summaries {
		cpv := *v
		cp.summaries[k] = &cpv
	}
	return cp
}

type snapshot struct {
	stashes      map[int64]*models.Stash
	stashByAPI   map[string]int64
	items        map[int64]*models.Item
	itemByAPI    map[string]int64
	sales        map[int64]*models.Sale
	saleByItemID map[int64]int64
	summaries    map[summaryKey]*models.CurrencySummary
	nextStashID  int64
	nextItemID   int64
	nextSaleID   int64
	nextSumID    int64
}

func (s *Store) restore(snap snapshot) {
	s.stashes = snap.stashes
	s.stashByAPI = snap.stashByAPI
	s.items = snap.items
	s.itemByAPI = snap.itemByAPI
	s.sales = snap.sales
	s.saleByItemID = snap.saleByItemID
	s.summaries = snap.summaries
	s.nextStashID = snap.nextStashID
	s.nextItemID = snap.nextItemID
	s.nextSaleID = snap.nextSaleID
	s.nextSummaryID = snap.nextSumID
}

type tx struct {
	store    *Store
	snapshot snapshot
	done     bool
}

var _ store.Tx = (*tx)(nil)

func (t *tx) Commit(_ context.Context) error {
	if t.done {
		return errkit.Wrap(store.ErrNotFound, "transaction already closed")
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

func (t *tx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.restore(t.snapshot)
	t.store.mu.Unlock()
	return nil
}

func (t *tx) DistinctFromCurrencies(_ context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	for k := range t.store.summaries {
		seen[k.from] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func (t *tx) LastProcessedItemUpdatedAt(_ context.Context) (*int64, error) {
	var max int64
	found := false
	for _, sale := range t.store.sales {
		if !found || sale.ItemUpdatedAt > max {
			max = sale.ItemUpdatedAt
			found = true
		}
	}
	if !found {
		return nil, nil
	}
	return &max, nil
}

func (t *tx) ItemsForProcessing(_ context.Context, start *int64, limit, offset int) ([]store.ItemStashRow, error) {
	rows := make([]store.ItemStashRow, 0, len(t.store.items))
	for _, item := range t.store.items {
		stash, ok := t.store.stashes[item.StashID]
		if !ok || !stash.Public {
			continue
		}
		if start != nil && item.UpdatedAt < *start {
			continue
		}
		rows = append(rows, store.ItemStashRow{
			Item:        *item,
			StashName:   stash.StashName,
			StashPublic: stash.Public,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].Item, rows[j].Item
		if a.UpdatedAt != b.UpdatedAt {
			return a.UpdatedAt < b.UpdatedAt
		}
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt < b.CreatedAt
		}
		return a.ID < b.ID
	})

	if offset >= len(rows) {
		return nil, nil
	}
	rows = rows[offset:]
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (t *tx) GetSaleByItemID(_ context.Context, itemID int64) (*models.Sale, error) {
	id, ok := t.store.saleByItemID[itemID]
	if !ok {
		return nil, store.ErrNotFound
	}
	sale := *t.store.sales[id]
	return &sale, nil
}

func (t *tx) UpsertSale(_ context.Context, sale *models.Sale) error {
	if existingID, ok := t.store.saleByItemID[sale.ItemID]; ok {
		sale.ID = existingID
		cp := *sale
		t.store.sales[existingID] = &cp
		return nil
	}

	t.store.nextSaleID++
	sale.ID = t.store.nextSaleID
	cp := *sale
	t.store.sales[sale.ID] = &cp
	t.store.saleByItemID[sale.ItemID] = sale.ID
	return nil
}

func (t *tx) SalesForBucket(_ context.Context, name, currency, league string, after int64) ([]store.SaleSample, error) {
	var out []store.SaleSample
	for _, sale := range t.store.sales {
		if sale.Name != name || sale.SaleCurrency != currency {
			continue
		}
		item, ok := t.store.items[sale.ItemID]
		if !ok || item.League != league {
			continue
		}
		if sale.ItemUpdatedAt <= after {
			continue
		}
		out = append(out, store.SaleSample{
			SaleAmount:    sale.SaleAmount,
			ItemUpdatedAt: sale.ItemUpdatedAt,
		})
	}
	return out, nil
}

func (t *tx) GetCurrencySummary(_ context.Context, from, to, league string) (*models.CurrencySummary, error) {
	row, ok := t.store.summaries[summaryKey{from, to, league}]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (t *tx) UpsertCurrencySummary(_ context.Context, summary *models.CurrencySummary) error {
	key := summaryKey{summary.FromCurrency, summary.ToCurrency, summary.League}
	if existing, ok := t.store.summaries[key]; ok {
		summary.ID = existing.ID
	} else {
		t.store.nextSummaryID++
		summary.ID = t.store.nextSummaryID
	}
	cp := *summary
	t.store.summaries[key] = &cp
	return nil
}

func (t *tx) SummariesFrom(_ context.Context, from, league string) ([]models.CurrencySummary, error) {
	var out []models.CurrencySummary
	for k, v := range t.store.summaries {
		if k.from != from || k.league != league {
			continue
		}
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Weight > out[j].Weight
	})
	return out, nil
}

func (t *tx) UpsertStash(_ context.Context, stash *models.Stash) error {
	if existingID, ok := t.store.stashByAPI[stash.APIID]; ok {
		stash.ID = existingID
		existing := t.store.stashes[existingID]
		stash.CreatedAt = existing.CreatedAt
	} else {
		t.store.nextStashID++
		stash.ID = t.store.nextStashID
	}
	cp := *stash
	t.store.stashes[stash.ID] = &cp
	t.store.stashByAPI[stash.APIID] = stash.ID
	return nil
}

func (t *tx) UpsertItem(_ context.Context, item *models.Item) error {
	if existingID, ok := t.store.itemByAPI[item.APIID]; ok {
		item.ID = existingID
		existing := t.store.items[existingID]
		item.CreatedAt = existing.CreatedAt
	} else {
		t.store.nextItemID++
		item.ID = t.store.nextItemID
	}
	item.Active = true
	cp := *item
	t.store.items[item.ID] = &cp
	t.store.itemByAPI[item.APIID] = item.ID
	return nil
}

func (t *tx) DeactivateStashItems(_ context.Context, stashID int64) error {
	for _, item := range t.store.items {
		if item.StashID == stashID {
			item.Active = false
		}
	}
	return nil
}
