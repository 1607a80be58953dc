package postprocess_test

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/ajs/poefixer/internal/defaults"
	"github.com/ajs/poefixer/internal/postprocess"
	"github.com/ajs/poefixer/models"
	"github.com/ajs/poefixer/store"
	"github.com/ajs/poefixer/store/memory"
)

func putSummary(t *testing.T, ctx context.Context, tx store.Tx, from, to, league string, mean, weight float64) {
	t.Helper()
	s := &models.CurrencySummary{
		FromCurrency: from,
		ToCurrency:   to,
		League:       league,
		Count:        1,
		Mean:         mean,
		Weight:       weight,
	}
	if err := tx.UpsertCurrencySummary(ctx, s); err != nil {
		t.Fatalf("put summary: %v", err)
	}
}

func TestValuationEngine_ChaosIdentity(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	st := memory.New()
	tx, err := st.Begin(ctx)
	c.Assert(err, qt.IsNil)

	engine := postprocess.NewValuationEngine(defaults.New(), nil)
	value, err := engine.FindValueOf(ctx, tx, "Chaos Orb", "Standard", 42)
	c.Assert(err, qt.IsNil)
	c.Assert(*value, qt.Equals, 42.0)

	c.Assert(tx.Commit(ctx), qt.IsNil)
}

func TestValuationEngine_DirectPricing(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	st := memory.New()
	tx, err := st.Begin(ctx)
	c.Assert(err, qt.IsNil)

	putSummary(t, ctx, tx, "Exalted Orb", "Chaos Orb", "Standard", 100, 10)

	engine := postprocess.NewValuationEngine(defaults.New(), nil)
	value, err := engine.FindValueOf(ctx, tx, "Exalted Orb", "Standard", 1)
	c.Assert(err, qt.IsNil)
	c.Assert(*value, qt.Equals, 100.0)

	c.Assert(tx.Commit(ctx), qt.IsNil)
}

func TestValuationEngine_TwoHopPricing(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	st := memory.New()
	tx, err := st.Begin(ctx)
	c.Assert(err, qt.IsNil)

	putSummary(t, ctx, tx, "Exalted Orb", "Chromatic Orb", "Standard", 500, 10)
	putSummary(t, ctx, tx, "Chromatic Orb", "Chaos Orb", "Standard", 0.2, 10)

	engine := postprocess.NewValuationEngine(defaults.New(), nil)
	value, err := engine.FindValueOf(ctx, tx, "Exalted Orb", "Standard", 1)
	c.Assert(err, qt.IsNil)
	c.Assert(*value, qt.Equals, 100.0)

	c.Assert(tx.Commit(ctx), qt.IsNil)
}

func TestValuationEngine_InverseFallback(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	st := memory.New()
	tx, err := st.Begin(ctx)
	c.Assert(err, qt.IsNil)

	putSummary(t, ctx, tx, "Chaos Orb", "Some Currency", "Standard", 0.5, 10)

	engine := postprocess.NewValuationEngine(defaults.New(), nil)
	value, err := engine.FindValueOf(ctx, tx, "Some Currency", "Standard", 1)
	c.Assert(err, qt.IsNil)
	c.Assert(*value, qt.Equals, 2.0)

	c.Assert(tx.Commit(ctx), qt.IsNil)
}

func TestValuationEngine_NoPathReturnsNil(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	st := memory.New()
	tx, err := st.Begin(ctx)
	c.Assert(err, qt.IsNil)

	engine := postprocess.NewValuationEngine(defaults.New(), nil)
	value, err := engine.FindValueOf(ctx, tx, "Unknown Currency", "Standard", 1)
	c.Assert(err, qt.IsNil)
	c.Assert(value, qt.IsNil)

	c.Assert(tx.Commit(ctx), qt.IsNil)
}

func TestValuationEngine_InvalidateRefreshesCache(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	st := memory.New()
	tx, err := st.Begin(ctx)
	c.Assert(err, qt.IsNil)

	putSummary(t, ctx, tx, "Exalted Orb", "Chaos Orb", "Standard", 100, 10)

	engine := postprocess.NewValuationEngine(defaults.New(), nil)
	value, err := engine.FindValueOf(ctx, tx, "Exalted Orb", "Standard", 1)
	c.Assert(err, qt.IsNil)
	c.Assert(*value, qt.Equals, 100.0)

	putSummary(t, ctx, tx, "Exalted Orb", "Chaos Orb", "Standard", 120, 20)
	engine.Invalidate("Exalted Orb", "Standard")

	value, err = engine.FindValueOf(ctx, tx, "Exalted Orb", "Standard", 1)
	c.Assert(err, qt.IsNil)
	c.Assert(*value, qt.Equals, 120.0)

	c.Assert(tx.Commit(ctx), qt.IsNil)
}
