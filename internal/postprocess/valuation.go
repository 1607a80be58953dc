package postprocess

import (
	"context"
	"errors"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ajs/poefixer/internal/defaults"
	"github.com/ajs/poefixer/internal/errkit"
	"github.com/ajs/poefixer/models"
	"github.com/ajs/poefixer/store"
)

// ChaosOrbName is the numeraire currency; see models.ChaosOrb.
const ChaosOrbName = string(models.ChaosOrb)

type summaryCacheKey struct {
	from   string
	league string
}

// ValuationEngine implements find_value_of (spec.md §4.5): a bounded,
// two-hop best-reliability-path search over the currency_summary graph.
//
// It fronts SummariesFrom with a per-pass LRU cache keyed on (from,
// league), invalidated synchronously whenever the SummaryUpdater writes
// that key — a caching layer the original Python implementation doesn't
// have, added here because a single Driver pass can call find_value_of
// once per currency-denominated sale against a bucket that rarely changes
// mid-pass.
type ValuationEngine struct {
	cache  *lru.Cache[summaryCacheKey, []models.CurrencySummary]
	logger *slog.Logger
}

// NewValuationEngine builds a ValuationEngine with the configured cache
// size (spec.md §9.2 addition).
func NewValuationEngine(cfg defaults.Postprocessor, logger *slog.Logger) *ValuationEngine {
	if logger == nil {
		logger = slog.Default()
	}
	size := cfg.ValuationCacheSize
	if size <= 0 {
		size = 1
	}
	cache, err := lru.New[summaryCacheKey, []models.CurrencySummary](size)
	if err != nil {
		// Only returns an error for a non-positive size, which is guarded
		// above; a failure here is a programming error.
		panic(err)
	}
	return &ValuationEngine{cache: cache, logger: logger}
}

// Invalidate drops any cached summary rows for (from, league). Call this
// whenever the SummaryUpdater writes a bucket with that from/league, so a
// later FindValueOf call in the same pass sees fresh data.
func (v *ValuationEngine) Invalidate(from, league string) {
	v.cache.Remove(summaryCacheKey{from: from, league: league})
}

// FindValueOf returns the chaos-denominated value of price units of name
// in league, or nil if no path to Chaos Orb could be found.
func (v *ValuationEngine) FindValueOf(ctx context.Context, tx store.Tx, name, league string, price float64) (*float64, error) {
	if name == ChaosOrbName {
		return &price, nil
	}

	rows, err := v.summariesFrom(ctx, tx, name, league)
	if err != nil {
		return nil, err
	}

	var highScore float64
	var haveHighScore bool
	var conversion float64

	for _, row := range rows {
		target := row.ToCurrency
		if target == ChaosOrbName {
			if !haveHighScore || row.Weight >= highScore {
				v.logger.DebugContext(ctx, "direct conversion discovered", "from", name, "mean", row.Mean)
				highScore = row.Weight
				haveHighScore = true
				conversion = row.Mean
			}
			break
		}

		if haveHighScore && row.Weight <= highScore {
			continue
		}

		hop, err := tx.GetCurrencySummary(ctx, target, ChaosOrbName, league)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, errkit.Wrap(err, "failed to load two-hop currency summary")
		}

		score := row.Weight
		if hop.Weight < score {
			score = hop.Weight
		}
		if !haveHighScore || score > highScore {
			haveHighScore = true
			highScore = score
			conversion = row.Mean * hop.Mean
			v.logger.DebugContext(ctx, "two-hop conversion discovered",
				"from", name, "via", target, "to_chaos", conversion)
		}
	}

	if haveHighScore {
		value := conversion * price
		return &value, nil
	}

	inverse, err := tx.GetCurrencySummary(ctx, ChaosOrbName, name, league)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, errkit.Wrap(err, "failed to load inverse currency summary")
	}
	if inverse.Mean == 0 {
		return nil, nil
	}
	value := (1 / inverse.Mean) * price
	return &value, nil
}

func (v *ValuationEngine) summariesFrom(ctx context.Context, tx store.Tx, name, league string) ([]models.CurrencySummary, error) {
	key := summaryCacheKey{from: name, league: league}
	if rows, ok := v.cache.Get(key); ok {
		return rows, nil
	}

	rows, err := tx.SummariesFrom(ctx, name, league)
	if err != nil {
		return nil, errkit.Wrap(err, "failed to load summaries for valuation")
	}
	v.cache.Add(key, rows)
	return rows, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
