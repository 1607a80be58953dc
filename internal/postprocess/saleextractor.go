package postprocess

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ajs/poefixer/internal/errkit"
	"github.com/ajs/poefixer/models"
	"github.com/ajs/poefixer/store"
)

// ExtractSale implements the Sale Extractor (spec.md §4.3): given a joined
// (item, stash) row, decides whether a sale is present and materializes or
// updates the corresponding sale row. Returns the sale's primary key, or
// nil if the row carries no sale.
func (p *Postprocessor) ExtractSale(ctx context.Context, tx store.Tx, row store.ItemStashRow, parser *NoteParser) (*int64, error) {
	item := row.Item

	var itemNote string
	if item.Note != nil {
		itemNote = *item.Note
	}

	if !strings.HasPrefix(itemNote, "~") && !strings.HasPrefix(row.StashName, "~") {
		return nil, nil
	}

	isCurrency := item.IsCurrency()
	var name string
	if isCurrency {
		name = item.TypeLine
	} else {
		name = strings.TrimSpace(item.Name + " " + item.TypeLine)
	}

	price, currency, ok := parser.Parse(ctx, itemNote)
	if !ok {
		price, currency, ok = parser.Parse(ctx, row.StashName)
	}
	if !ok || price == 0 {
		return nil, nil
	}

	now := time.Now().Unix()

	existing, err := tx.GetSaleByItemID(ctx, item.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, errkit.Wrap(err, "failed to load existing sale").WithField("item_id", item.ID)
	}

	sale := &models.Sale{
		ItemID:        item.ID,
		ItemAPIID:     item.APIID,
		Name:          name,
		IsCurrency:    isCurrency,
		SaleCurrency:  currency,
		SaleAmount:    price,
		ItemUpdatedAt: item.UpdatedAt,
		UpdatedAt:     now,
	}
	if existing != nil {
		sale.ID = existing.ID
		sale.CreatedAt = existing.CreatedAt
	} else {
		sale.CreatedAt = now
	}

	if err := tx.UpsertSale(ctx, sale); err != nil {
		return nil, errkit.Wrap(err, "failed to upsert sale").WithField("item_id", item.ID)
	}

	chaosValue, err := p.updateCurrencyPricing(ctx, tx, name, currency, item.League, price, item.UpdatedAt, isCurrency)
	if err != nil {
		return nil, err
	}
	if chaosValue != nil {
		sale.SaleAmountChaos = chaosValue
		if err := tx.UpsertSale(ctx, sale); err != nil {
			return nil, errkit.Wrap(err, "failed to persist sale's chaos valuation").WithField("item_id", item.ID)
		}
	}

	id := sale.ID
	return &id, nil
}
