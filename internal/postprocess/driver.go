package postprocess

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ajs/poefixer/internal/defaults"
	"github.com/ajs/poefixer/internal/errkit"
	"github.com/ajs/poefixer/internal/metrics"
	"github.com/ajs/poefixer/store"
)

// Driver implements spec.md §4.6: it paginates unprocessed items in
// ascending update-time order, invoking the Sale Extractor per row, and
// optionally loops forever.
type Driver struct {
	store      store.Store
	cfg        defaults.Postprocessor
	pp         *Postprocessor
	logger     *slog.Logger
	metrics    *metrics.Metrics
	startTime  *int64
	continuous bool
	lastItemAt int64
}

// NewDriver builds a Driver against st. startTime, if non-nil, overrides
// the resume-from-last-sale behavior (spec.md §4.6 step 2).
func NewDriver(st store.Store, cfg defaults.Postprocessor, startTime *int64, continuous bool, logger *slog.Logger, m *metrics.Metrics) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		store:      st,
		cfg:        cfg,
		pp:         New(cfg, logger),
		logger:     logger,
		metrics:    m,
		startTime:  startTime,
		continuous: continuous,
	}
}

// Run executes passes until a single-shot pass completes (continuous
// mode off) or ctx is canceled.
func (d *Driver) Run(ctx context.Context) error {
	var prevLastSaleID *int64

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		passID := uuid.NewString()
		passStart := time.Now()

		lastSaleID, rowsProcessed, err := d.runPass(ctx, passID)
		if err != nil {
			return errkit.Wrap(err, "currency post-processor pass failed").WithField("pass_id", passID)
		}

		duration := time.Since(passStart).Seconds()
		d.metrics.ObservePass(duration, d.lastItemAt)

		if !sameSaleID(prevLastSaleID, lastSaleID) {
			d.logger.InfoContext(ctx, "currency post-processor pass complete",
				"pass_id", passID, "rows_processed", rowsProcessed, "duration_seconds", duration)
		} else if d.continuous {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d.cfg.ContinuousSleep):
			}
		}
		prevLastSaleID = lastSaleID

		if !d.continuous {
			return nil
		}
	}
}

// runPass executes one full pass: alias map rebuild, resume-point
// determination, and the block-by-block pagination loop (spec.md §4.6
// steps 1-5).
func (d *Driver) runPass(ctx context.Context, passID string) (lastSaleID *int64, rowsProcessed int, err error) {
	d.pp.valuation.cache.Purge()

	setupTx, err := d.store.Begin(ctx)
	if err != nil {
		return nil, 0, errkit.Wrap(err, "failed to begin pass setup transaction")
	}

	aliases, err := BuildAliasMap(ctx, setupTx)
	if err != nil {
		_ = setupTx.Rollback(ctx)
		return nil, 0, err
	}

	start := d.startTime
	if start == nil {
		start, err = setupTx.LastProcessedItemUpdatedAt(ctx)
		if err != nil {
			_ = setupTx.Rollback(ctx)
			return nil, 0, errkit.Wrap(err, "failed to determine resume point")
		}
	}

	if err := setupTx.Commit(ctx); err != nil {
		return nil, 0, errkit.Wrap(err, "failed to commit pass setup transaction")
	}

	if start != nil {
		d.logger.InfoContext(ctx, "starting currency post-processor pass", "pass_id", passID, "start", *start)
	} else {
		d.logger.InfoContext(ctx, "starting currency post-processor pass from beginning", "pass_id", passID)
	}

	parser := NewNoteParser(aliases, d.logger)

	offset := 0
	for {
		select {
		case <-ctx.Done():
			return lastSaleID, rowsProcessed, ctx.Err()
		default:
		}

		blockLastID, blockRows, blockSales, err := d.runBlock(ctx, start, offset, parser)
		if err != nil {
			return lastSaleID, rowsProcessed, err
		}
		if blockLastID != nil {
			lastSaleID = blockLastID
		}
		rowsProcessed += blockRows
		offset += blockRows
		d.metrics.ObserveBlock(blockRows, blockSales)

		if blockRows < d.cfg.BlockSize {
			return lastSaleID, rowsProcessed, nil
		}
	}
}

// runBlock processes a single page of items inside its own transaction
// (spec.md §5: "one transaction per block").
func (d *Driver) runBlock(ctx context.Context, start *int64, offset int, parser *NoteParser) (lastSaleID *int64, rowCount, saleCount int, err error) {
	tx, err := d.store.Begin(ctx)
	if err != nil {
		return nil, 0, 0, errkit.Wrap(err, "failed to begin block transaction")
	}

	rows, err := tx.ItemsForProcessing(ctx, start, d.cfg.BlockSize, offset)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, 0, 0, errkit.Wrap(err, "failed to page items for processing")
	}

	for _, row := range rows {
		id, err := d.pp.ExtractSale(ctx, tx, row, parser)
		if err != nil {
			_ = tx.Rollback(ctx)
			return nil, 0, 0, err
		}
		if id != nil {
			lastSaleID = id
			saleCount++
			d.lastItemAt = row.Item.UpdatedAt
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, 0, errkit.Wrap(err, "failed to commit block")
	}

	return lastSaleID, len(rows), saleCount, nil
}

func sameSaleID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
