package ingest

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ajs/poefixer/internal/errkit"
	"github.com/ajs/poefixer/models"
	"github.com/ajs/poefixer/store"
)

// Ingestor applies a decoded feed page to the store: stash upsert, item
// invalidation (mark all of a stash's existing items inactive), then
// per-item upsert which flips each re-observed item back to active
// (spec.md §3 Item invariant).
type Ingestor struct {
	logger *slog.Logger
}

// New builds an Ingestor.
func New(logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{logger: logger}
}

// IngestPage applies every stash in page to tx, in order. Invalid stashes
// or items (failing their required-field check) are logged and skipped;
// this matches the original implementation's behavior of warning on a bad
// record rather than aborting the whole page.
func (g *Ingestor) IngestPage(ctx context.Context, tx store.Tx, page StashPage) error {
	for _, s := range page.Stashes {
		if err := g.ingestStash(ctx, tx, s); err != nil {
			return err
		}
	}
	return nil
}

func (g *Ingestor) ingestStash(ctx context.Context, tx store.Tx, apiStash ApiStash) error {
	if err := apiStash.validate(); err != nil {
		g.logger.WarnContext(ctx, "invalid stash", "error", err)
		return nil
	}

	now := time.Now().Unix()
	stash := &models.Stash{
		APIID:             apiStash.ID,
		AccountName:       apiStash.AccountName,
		LastCharacterName: apiStash.LastCharacterName,
		StashName:         apiStash.StashName,
		StashType:         apiStash.StashType,
		Public:            apiStash.Public,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := tx.UpsertStash(ctx, stash); err != nil {
		return errkit.Wrap(err, "failed to upsert stash").WithField("stash_api_id", apiStash.ID)
	}

	// Every item previously recorded for this stash is marked inactive
	// before re-ingest; each item seen below flips back to active
	// (spec.md §3 Item invariant). Items absent from this ingest stay
	// inactive.
	if err := tx.DeactivateStashItems(ctx, stash.ID); err != nil {
		return errkit.Wrap(err, "failed to deactivate stash items").WithField("stash_id", stash.ID)
	}

	for _, apiItem := range apiStash.Items {
		if err := g.ingestItem(ctx, tx, stash.ID, apiItem); err != nil {
			return err
		}
	}
	return nil
}

func (g *Ingestor) ingestItem(ctx context.Context, tx store.Tx, stashID int64, apiItem ApiItem) error {
	if err := apiItem.validate(); err != nil {
		g.logger.WarnContext(ctx, "invalid item", "error", err)
		return nil
	}

	var category models.Category
	if len(apiItem.Category) > 0 {
		if err := json.Unmarshal(apiItem.Category, &category); err != nil {
			g.logger.WarnContext(ctx, "malformed item category", "item_api_id", apiItem.ID, "error", err)
		}
	}

	now := time.Now().Unix()
	item := &models.Item{
		APIID:     apiItem.ID,
		StashID:   stashID,
		W:         apiItem.W,
		H:         apiItem.H,
		X:         apiItem.X,
		Y:         apiItem.Y,
		League:    apiItem.League,
		TypeLine:  apiItem.CleanTypeLine(),
		Name:      apiItem.CleanName(),
		FrameType: apiItem.FrameType,
		Category:  category,
		Note:      apiItem.Note,
		Extra:     apiItem.Raw(),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := tx.UpsertItem(ctx, item); err != nil {
		return errkit.Wrap(err, "failed to upsert item").WithField("item_api_id", apiItem.ID)
	}
	return nil
}
