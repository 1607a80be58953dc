package postprocess_test

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/ajs/poefixer/internal/defaults"
	"github.com/ajs/poefixer/internal/postprocess"
	"github.com/ajs/poefixer/models"
	"github.com/ajs/poefixer/store"
	"github.com/ajs/poefixer/store/memory"
)

// seedSale creates a backing item and a sale row in the given bucket so
// SalesForBucket can find it.
func seedSale(t *testing.T, ctx context.Context, tx store.Tx, idx int, name, currency, league string, amount float64, itemUpdatedAt int64) {
	t.Helper()
	item := &models.Item{
		APIID:     fmt.Sprintf("item-%d", idx),
		StashID:   1,
		League:    league,
		TypeLine:  name,
		UpdatedAt: itemUpdatedAt,
	}
	if err := tx.UpsertItem(ctx, item); err != nil {
		t.Fatalf("seed item: %v", err)
	}
	sale := &models.Sale{
		ItemID:        item.ID,
		ItemAPIID:     item.APIID,
		Name:          name,
		IsCurrency:    true,
		SaleCurrency:  currency,
		SaleAmount:    amount,
		ItemUpdatedAt: itemUpdatedAt,
	}
	if err := tx.UpsertSale(ctx, sale); err != nil {
		t.Fatalf("seed sale: %v", err)
	}
}

func TestSummaryUpdater_OutlierRejection(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	st := memory.New()
	tx, err := st.Begin(ctx)
	c.Assert(err, qt.IsNil)

	now := time.Now().Unix()
	for i := 0; i < 20; i++ {
		seedSale(t, ctx, tx, i, "Chaos Orb", "Exalted Orb", "Standard", 0.01, now)
	}
	seedSale(t, ctx, tx, 20, "Chaos Orb", "Exalted Orb", "Standard", 100, now)

	cfg := defaults.New()
	updater := postprocess.NewSummaryUpdater(cfg, nil)
	c.Assert(updater.Update(ctx, tx, "Chaos Orb", "Exalted Orb", "Standard", now), qt.IsNil)

	summary, err := tx.GetCurrencySummary(ctx, "Chaos Orb", "Exalted Orb", "Standard")
	c.Assert(err, qt.IsNil)
	c.Assert(summary.Count, qt.Equals, 20)
	c.Assert(math.Abs(summary.Mean-0.01) < 1e-6, qt.IsTrue, qt.Commentf("mean=%v", summary.Mean))
	c.Assert(math.IsNaN(summary.StandardDev), qt.IsFalse)

	c.Assert(tx.Commit(ctx), qt.IsNil)
}

func TestSummaryUpdater_RecentCacheSkipsRecompute(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	st := memory.New()
	tx, err := st.Begin(ctx)
	c.Assert(err, qt.IsNil)

	now := time.Now().Unix()
	existing := &models.CurrencySummary{
		FromCurrency: "Chaos Orb",
		ToCurrency:   "Exalted Orb",
		League:       "Standard",
		Count:        10,
		Mean:         50,
		StandardDev:  1,
		Weight:       10,
		UpdatedAt:    now,
	}
	c.Assert(tx.UpsertCurrencySummary(ctx, existing), qt.IsNil)

	cfg := defaults.New()
	updater := postprocess.NewSummaryUpdater(cfg, nil)
	c.Assert(updater.Update(ctx, tx, "Chaos Orb", "Exalted Orb", "Standard", now), qt.IsNil)

	summary, err := tx.GetCurrencySummary(ctx, "Chaos Orb", "Exalted Orb", "Standard")
	c.Assert(err, qt.IsNil)
	c.Assert(summary.Mean, qt.Equals, 50.0)

	c.Assert(tx.Commit(ctx), qt.IsNil)
}
