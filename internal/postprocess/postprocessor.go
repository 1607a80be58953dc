// Package postprocess implements the currency post-processor: the Note
// Parser, Alias Map, Sale Extractor, Summary Updater, and Valuation
// Engine components that turn raw item/stash rows into a priced currency
// exchange graph.
package postprocess

import (
	"context"
	"log/slog"

	"github.com/ajs/poefixer/internal/defaults"
	"github.com/ajs/poefixer/store"
)

// Postprocessor wires the Summary Updater and Valuation Engine together
// and exposes the Sale Extractor entry point the Driver calls per row.
type Postprocessor struct {
	cfg       defaults.Postprocessor
	logger    *slog.Logger
	summary   *SummaryUpdater
	valuation *ValuationEngine
}

// New builds a Postprocessor from the configured defaults.
func New(cfg defaults.Postprocessor, logger *slog.Logger) *Postprocessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Postprocessor{
		cfg:       cfg,
		logger:    logger,
		summary:   NewSummaryUpdater(cfg, logger),
		valuation: NewValuationEngine(cfg, logger),
	}
}

// updateCurrencyPricing is the combined "Summary Updater + Valuation
// Engine" call the Sale Extractor makes per sale (spec.md §4.3
// "Valuation"): if the sale is currency-denominated, first recompute the
// (name, currency, league) summary bucket, then resolve the chaos value
// of `price` units of `currency` via the Valuation Engine.
func (p *Postprocessor) updateCurrencyPricing(ctx context.Context, tx store.Tx, name, currency, league string, price float64, saleTime int64, isCurrency bool) (*float64, error) {
	if isCurrency {
		if err := p.summary.Update(ctx, tx, name, currency, league, saleTime); err != nil {
			return nil, err
		}
		p.valuation.Invalidate(name, league)
	}
	return p.valuation.FindValueOf(ctx, tx, currency, league, price)
}
