package postprocess

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/ajs/poefixer/internal/defaults"
	"github.com/ajs/poefixer/internal/errkit"
	"github.com/ajs/poefixer/models"
	"github.com/ajs/poefixer/store"
)

// SummaryUpdater recomputes the weighted mean/stddev/weight/count for a
// (from, to, league) bucket from sale history (spec.md §4.4). It is the
// sole writer of currency_summary.
type SummaryUpdater struct {
	relevanceWindow time.Duration
	weightIncrement time.Duration
	recentCache     time.Duration
	logger          *slog.Logger
}

// NewSummaryUpdater builds a SummaryUpdater from the process defaults.
func NewSummaryUpdater(cfg defaults.Postprocessor, logger *slog.Logger) *SummaryUpdater {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryUpdater{
		relevanceWindow: cfg.RelevanceWindow,
		weightIncrement: cfg.WeightIncrement,
		recentCache:     cfg.RecentCache,
		logger:          logger,
	}
}

// Update recomputes and upserts the currency_summary row for
// (from=name, to=currency, league), using sale observations with
// item_updated_at inside the relevance window. saleTime is the moment the
// triggering sale was observed (spec.md: "sale_time"), used to weight
// historical samples by recency.
func (u *SummaryUpdater) Update(ctx context.Context, tx store.Tx, name, currency, league string, saleTime int64) error {
	now := time.Now().Unix()

	existing, err := tx.GetCurrencySummary(ctx, name, currency, league)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return errkit.Wrap(err, "failed to load existing currency summary")
	}

	if u.recentCache > 0 && existing != nil &&
		existing.Count >= 10 && existing.UpdatedAt >= now-int64(u.recentCache.Seconds()) {
		u.logger.DebugContext(ctx, "skipping cached currency summary",
			"from", name, "to", currency, "league", league)
		return nil
	}

	after := now - int64(u.relevanceWindow.Seconds())
	samples, err := tx.SalesForBucket(ctx, name, currency, league, after)
	if err != nil {
		return errkit.Wrap(err, "failed to query sales for bucket")
	}
	if len(samples) == 0 {
		return nil
	}

	prices := make([]float64, len(samples))
	weights := make([]float64, len(samples))
	weightIncrementSeconds := u.weightIncrement.Seconds()
	for i, s := range samples {
		prices[i] = s.SaleAmount
		delta := saleTime - s.ItemUpdatedAt
		if delta < 1 {
			delta = 1
		}
		weights[i] = weightIncrementSeconds / float64(delta)
	}

	mean, stddev, totalWeight := weightedMeanStddev(prices, weights)
	count := len(prices)

	if count > 3 && stddev > mean/2 {
		u.logger.DebugContext(ctx, "large stddev vs mean, recalibrating",
			"from", name, "to", currency, "stddev", stddev, "mean", mean)
		keptPrices := prices[:0:0]
		keptWeights := weights[:0:0]
		for i, p := range prices {
			if math.Abs(p-mean) <= stddev*2 {
				keptPrices = append(keptPrices, p)
				keptWeights = append(keptWeights, weights[i])
			}
		}
		mean, stddev, totalWeight = weightedMeanStddev(keptPrices, keptWeights)
		count = len(keptPrices)
	}

	summary := &models.CurrencySummary{
		FromCurrency: name,
		ToCurrency:   currency,
		League:       league,
		Count:        count,
		Mean:         mean,
		StandardDev:  stddev,
		Weight:       totalWeight,
		UpdatedAt:    now,
	}
	if existing != nil {
		summary.ID = existing.ID
		summary.CreatedAt = existing.CreatedAt
	} else {
		summary.CreatedAt = now
	}

	if err := tx.UpsertCurrencySummary(ctx, summary); err != nil {
		return errkit.Wrap(err, "failed to upsert currency summary")
	}
	return nil
}

// weightedMeanStddev implements spec.md §4.4's statistics exactly:
// mean = Σwᵢpᵢ/Σwᵢ, stddev = √(Σwᵢ(pᵢ-mean)²/Σwᵢ) — the population form,
// not Bessel-corrected (spec.md §9 design note).
func weightedMeanStddev(prices, weights []float64) (mean, stddev, totalWeight float64) {
	if len(prices) == 0 {
		return 0, 0, 0
	}
	var weightedSum float64
	for i, p := range prices {
		weightedSum += weights[i] * p
		totalWeight += weights[i]
	}
	mean = weightedSum / totalWeight

	var weightedSqDiff float64
	for i, p := range prices {
		d := p - mean
		weightedSqDiff += weights[i] * d * d
	}
	variance := weightedSqDiff / totalWeight
	stddev = math.Sqrt(variance)
	return mean, stddev, totalWeight
}
