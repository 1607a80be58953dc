package ingest_test

import (
	"context"
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/ajs/poefixer/internal/ingest"
	"github.com/ajs/poefixer/store/memory"
)

func decodePage(t *testing.T, raw string) ingest.StashPage {
	t.Helper()
	var page ingest.StashPage
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		t.Fatalf("failed to decode fixture: %v", err)
	}
	return page
}

func TestIngestor_StripsMarkupAndUpserts(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	st := memory.New()
	g := ingest.New(nil)

	page := decodePage(t, `{
		"next_change_id": "1-2-3",
		"stashes": [{
			"id": "stash-1",
			"accountName": "acct",
			"stash": "~price 10 chaos",
			"stashType": "PremiumStash",
			"public": true,
			"items": [{
				"id": "item-1",
				"w": 1, "h": 1, "x": 0, "y": 0,
				"league": "Standard",
				"typeLine": "<<set:MS>><<set:M>>Chaos Orb",
				"name": "",
				"frameType": 0,
				"icon": "http://example.com/icon.png",
				"identified": true,
				"ilvl": 1,
				"verified": true,
				"category": {"currency": []}
			}]
		}]
	}`)

	tx, err := st.Begin(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(g.IngestPage(ctx, tx, page), qt.IsNil)
	c.Assert(tx.Commit(ctx), qt.IsNil)

	tx2, err := st.Begin(ctx)
	c.Assert(err, qt.IsNil)
	rows, err := tx2.ItemsForProcessing(ctx, nil, 10, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(rows, qt.HasLen, 1)
	c.Assert(rows[0].Item.TypeLine, qt.Equals, "Chaos Orb")
	c.Assert(rows[0].Item.Active, qt.IsTrue)
	c.Assert(rows[0].Item.IsCurrency(), qt.IsTrue)
	c.Assert(tx2.Commit(ctx), qt.IsNil)
}

func TestIngestor_ReingestDeactivatesMissingItems(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	st := memory.New()
	g := ingest.New(nil)

	first := decodePage(t, `{
		"next_change_id": "1",
		"stashes": [{
			"id": "stash-1", "stashType": "PremiumStash", "public": true,
			"items": [
				{"id": "item-1", "w":1,"h":1,"x":0,"y":0, "league":"Standard", "typeLine":"Chaos Orb", "name":"", "frameType":0, "icon":"i", "identified":true, "ilvl":1, "verified":true, "category": {"currency":[]}},
				{"id": "item-2", "w":1,"h":1,"x":0,"y":0, "league":"Standard", "typeLine":"Exalted Orb", "name":"", "frameType":0, "icon":"i", "identified":true, "ilvl":1, "verified":true, "category": {"currency":[]}}
			]
		}]
	}`)

	tx, err := st.Begin(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(g.IngestPage(ctx, tx, first), qt.IsNil)
	c.Assert(tx.Commit(ctx), qt.IsNil)

	second := decodePage(t, `{
		"next_change_id": "2",
		"stashes": [{
			"id": "stash-1", "stashType": "PremiumStash", "public": true,
			"items": [
				{"id": "item-1", "w":1,"h":1,"x":0,"y":0, "league":"Standard", "typeLine":"Chaos Orb", "name":"", "frameType":0, "icon":"i", "identified":true, "ilvl":1, "verified":true, "category": {"currency":[]}}
			]
		}]
	}`)

	tx2, err := st.Begin(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(g.IngestPage(ctx, tx2, second), qt.IsNil)
	c.Assert(tx2.Commit(ctx), qt.IsNil)

	tx3, err := st.Begin(ctx)
	c.Assert(err, qt.IsNil)
	rows, err := tx3.ItemsForProcessing(ctx, nil, 10, 0)
	c.Assert(err, qt.IsNil)

	active := map[string]bool{}
	for _, row := range rows {
		active[row.Item.TypeLine] = row.Item.Active
	}
	c.Assert(active["Chaos Orb"], qt.IsTrue)
	c.Assert(active["Exalted Orb"], qt.IsFalse)
	c.Assert(tx3.Commit(ctx), qt.IsNil)
}

func TestIngestor_SkipsInvalidItemsButKeepsPage(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	st := memory.New()
	g := ingest.New(nil)

	page := decodePage(t, `{
		"next_change_id": "1",
		"stashes": [{
			"id": "stash-1", "stashType": "PremiumStash", "public": true,
			"items": [
				{"id": "", "w":1,"h":1,"x":0,"y":0, "league":"Standard", "typeLine":"Bad Item", "name":"", "frameType":0, "icon":"i", "identified":true, "ilvl":1, "verified":true},
				{"id": "item-1", "w":1,"h":1,"x":0,"y":0, "league":"Standard", "typeLine":"Chaos Orb", "name":"", "frameType":0, "icon":"i", "identified":true, "ilvl":1, "verified":true, "category": {"currency":[]}}
			]
		}]
	}`)

	tx, err := st.Begin(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(g.IngestPage(ctx, tx, page), qt.IsNil)
	c.Assert(tx.Commit(ctx), qt.IsNil)

	tx2, err := st.Begin(ctx)
	c.Assert(err, qt.IsNil)
	rows, err := tx2.ItemsForProcessing(ctx, nil, 10, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(rows, qt.HasLen, 1)
	c.Assert(tx2.Commit(ctx), qt.IsNil)
}
