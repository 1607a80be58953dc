package models

import (
	"github.com/jellydator/validation"
)

var _ validation.Validatable = (*Sale)(nil)

// Sale is the db-table row materialized by the Sale Extractor from an
// item's (or its stash's) price note (spec.md §3, §6.2). It is one-to-one
// with Item, keyed by ItemID, and unique on ItemAPIID. The corresponding
// table is created by the hand-written DDL in store/postgres/schema/sqldata
// (see DESIGN.md §5 for why this isn't annotation-driven codegen).
type Sale struct {
	ID              int64    `db:"id" json:"id"`
	ItemID          int64    `db:"item_id" json:"item_id"`
	ItemAPIID       string   `db:"item_api_id" json:"item_api_id"`
	Name            string   `db:"name" json:"name"`
	IsCurrency      bool     `db:"is_currency" json:"is_currency"`
	SaleCurrency    string   `db:"sale_currency" json:"sale_currency"`
	SaleAmount      float64  `db:"sale_amount" json:"sale_amount"`
	SaleAmountChaos *float64 `db:"sale_amount_chaos" json:"sale_amount_chaos,omitempty"`
	ItemUpdatedAt   int64    `db:"item_updated_at" json:"item_updated_at"`
	CreatedAt       int64    `db:"created_at" json:"created_at"`
	UpdatedAt       int64    `db:"updated_at" json:"updated_at"`
}

func (s *Sale) GetID() int64   { return s.ID }
func (s *Sale) SetID(id int64) { s.ID = id }

func (s *Sale) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.ItemID, validation.Required),
		validation.Field(&s.ItemAPIID, validation.Required),
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.SaleCurrency, validation.Required),
		validation.Field(&s.SaleAmount, validation.Required, validation.Min(0.0).Exclusive()),
	)
}
