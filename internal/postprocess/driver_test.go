package postprocess_test

import (
	"context"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/ajs/poefixer/internal/defaults"
	"github.com/ajs/poefixer/internal/metrics"
	"github.com/ajs/poefixer/internal/postprocess"
	"github.com/ajs/poefixer/models"
	"github.com/ajs/poefixer/store/memory"
)

// seedEndToEndScenario reproduces the two-item scenario with item
// update times inside the relevance window: real timestamps stand in for
// the scenario's abstract "1000"/"1001", preserving their relative order.
func seedEndToEndScenario(t *testing.T, ctx context.Context, st *memory.Store) (i1UpdatedAt, i2UpdatedAt int64) {
	t.Helper()
	tx, err := st.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	now := time.Now().Unix()
	i1UpdatedAt = now - 100
	i2UpdatedAt = now - 99

	stash := &models.Stash{APIID: "S1", StashType: "PremiumStash", Public: true}
	if err := tx.UpsertStash(ctx, stash); err != nil {
		t.Fatalf("upsert stash: %v", err)
	}

	note1 := "~price 100 chaos"
	i1 := &models.Item{
		APIID: "I1", StashID: stash.ID, League: "Standard",
		TypeLine: "Exalted Orb", Category: models.Category{"currency": nil},
		Note: &note1, Active: true, UpdatedAt: i1UpdatedAt,
	}
	if err := tx.UpsertItem(ctx, i1); err != nil {
		t.Fatalf("upsert item 1: %v", err)
	}

	note2 := "~price 1/100 exa"
	i2 := &models.Item{
		APIID: "I2", StashID: stash.ID, League: "Standard",
		TypeLine: "Chaos Orb", Category: models.Category{"currency": nil},
		Note: &note2, Active: true, UpdatedAt: i2UpdatedAt,
	}
	if err := tx.UpsertItem(ctx, i2); err != nil {
		t.Fatalf("upsert item 2: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return i1UpdatedAt, i2UpdatedAt
}

func TestDriver_EndToEndScenario(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	st := memory.New()
	_, _ = seedEndToEndScenario(t, ctx, st)

	cfg := defaults.New()
	driver := postprocess.NewDriver(st, cfg, nil, false, nil, metrics.New(nil))
	c.Assert(driver.Run(ctx), qt.IsNil)

	tx, err := st.Begin(ctx)
	c.Assert(err, qt.IsNil)

	rows, err := tx.ItemsForProcessing(ctx, nil, 100, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(rows, qt.HasLen, 2)

	var i1ID, i2ID int64
	for _, r := range rows {
		switch r.Item.APIID {
		case "I1":
			i1ID = r.Item.ID
		case "I2":
			i2ID = r.Item.ID
		}
	}

	sale1, err := tx.GetSaleByItemID(ctx, i1ID)
	c.Assert(err, qt.IsNil)
	c.Assert(sale1.SaleCurrency, qt.Equals, "Chaos Orb")
	c.Assert(sale1.SaleAmount, qt.Equals, 100.0)
	c.Assert(sale1.SaleAmountChaos, qt.Not(qt.IsNil))
	c.Assert(*sale1.SaleAmountChaos, qt.Equals, 100.0)

	sale2, err := tx.GetSaleByItemID(ctx, i2ID)
	c.Assert(err, qt.IsNil)
	c.Assert(sale2.SaleCurrency, qt.Equals, "Exalted Orb")
	c.Assert(sale2.SaleAmount, qt.Equals, 0.01)

	exaltedToChaos, err := tx.GetCurrencySummary(ctx, "Exalted Orb", "Chaos Orb", "Standard")
	c.Assert(err, qt.IsNil)
	c.Assert(exaltedToChaos.Count, qt.Equals, 1)
	c.Assert(exaltedToChaos.Mean, qt.Equals, 100.0)

	chaosToExalted, err := tx.GetCurrencySummary(ctx, "Chaos Orb", "Exalted Orb", "Standard")
	c.Assert(err, qt.IsNil)
	c.Assert(chaosToExalted.Count, qt.Equals, 1)
	c.Assert(chaosToExalted.Mean, qt.Equals, 0.01)

	c.Assert(tx.Commit(ctx), qt.IsNil)
}

func TestDriver_IdempotentSecondPass(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	st := memory.New()
	_, _ = seedEndToEndScenario(t, ctx, st)

	cfg := defaults.New()
	driver := postprocess.NewDriver(st, cfg, nil, false, nil, metrics.New(nil))
	c.Assert(driver.Run(ctx), qt.IsNil)

	tx, err := st.Begin(ctx)
	c.Assert(err, qt.IsNil)
	firstSummary, err := tx.GetCurrencySummary(ctx, "Exalted Orb", "Chaos Orb", "Standard")
	c.Assert(err, qt.IsNil)
	c.Assert(tx.Commit(ctx), qt.IsNil)

	startTime := int64(0)
	driver2 := postprocess.NewDriver(st, cfg, &startTime, false, nil, metrics.New(nil))
	c.Assert(driver2.Run(ctx), qt.IsNil)

	tx2, err := st.Begin(ctx)
	c.Assert(err, qt.IsNil)
	secondSummary, err := tx2.GetCurrencySummary(ctx, "Exalted Orb", "Chaos Orb", "Standard")
	c.Assert(err, qt.IsNil)
	c.Assert(secondSummary.Count, qt.Equals, firstSummary.Count)
	c.Assert(secondSummary.Mean, qt.Equals, firstSummary.Mean)
	c.Assert(tx2.Commit(ctx), qt.IsNil)
}

func TestDriver_ResumeSkipsOlderItems(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	st := memory.New()
	_, i2UpdatedAt := seedEndToEndScenario(t, ctx, st)

	cfg := defaults.New()
	driver := postprocess.NewDriver(st, cfg, nil, false, nil, metrics.New(nil))
	c.Assert(driver.Run(ctx), qt.IsNil)

	tx, err := st.Begin(ctx)
	c.Assert(err, qt.IsNil)
	resume, err := tx.LastProcessedItemUpdatedAt(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(resume, qt.Not(qt.IsNil))
	c.Assert(*resume, qt.Equals, i2UpdatedAt)

	rows, err := tx.ItemsForProcessing(ctx, resume, 100, 0)
	c.Assert(err, qt.IsNil)
	for _, r := range rows {
		c.Assert(r.Item.UpdatedAt >= *resume, qt.IsTrue)
	}
	c.Assert(tx.Commit(ctx), qt.IsNil)
}
