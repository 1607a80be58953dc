package models

import (
	"github.com/jellydator/validation"
)

var _ validation.Validatable = (*Item)(nil)

// Item is the db-table row for a single item inside a stash (spec.md §3,
// §6.2). Only the fields the core post-processor actually reads are
// modeled as first-class columns; the rest of the upstream API's
// descriptive flags and lists (mods, sockets, icon, identified, ilvl,
// verified, ...) are passed through unchanged in Extra. The corresponding
// table is created by the hand-written DDL in store/postgres/schema/sqldata
// (see DESIGN.md §5 for why this isn't annotation-driven codegen).
type Item struct {
	ID        int64    `db:"id" json:"id"`
	APIID     string   `db:"api_id" json:"api_id"`
	StashID   int64    `db:"stash_id" json:"stash_id"`
	W         int      `db:"w" json:"w"`
	H         int      `db:"h" json:"h"`
	X         int      `db:"x" json:"x"`
	Y         int      `db:"y" json:"y"`
	League    string   `db:"league" json:"league"`
	TypeLine  string   `db:"type_line" json:"typeLine"`
	Name      string   `db:"name" json:"name"`
	FrameType int      `db:"frame_type" json:"frameType"`
	Category  Category `db:"category" json:"category"`
	Note      *string  `db:"note" json:"note,omitempty"`
	Extra     []byte   `db:"extra" json:"-"`
	Active    bool     `db:"active" json:"active"`
	CreatedAt int64    `db:"created_at" json:"created_at"`
	UpdatedAt int64    `db:"updated_at" json:"updated_at"`
}

func (i *Item) GetID() int64   { return i.ID }
func (i *Item) SetID(id int64) { i.ID = id }

// IsCurrency reports whether "currency" is a top-level key in the item's
// category bag (spec.md §4.3: Name precedence).
func (i *Item) IsCurrency() bool {
	return i.Category.Has("currency")
}

func (i *Item) Validate() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.APIID, validation.Required),
		validation.Field(&i.StashID, validation.Required),
		validation.Field(&i.League, validation.Required),
		validation.Field(&i.TypeLine, validation.Required),
	)
}
