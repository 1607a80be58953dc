package models

import (
	"github.com/jellydator/validation"
)

var _ validation.Validatable = (*CurrencySummary)(nil)

// CurrencySummary is the db-table row for one (from_currency, to_currency,
// league) exchange-graph edge: a weighted mean, weighted standard
// deviation, total weight, and sample count (spec.md §3, §4.4, §6.2). The
// corresponding table is created by the hand-written DDL in
// store/postgres/schema/sqldata (see DESIGN.md §5 for why this isn't
// annotation-driven codegen).
type CurrencySummary struct {
	ID           int64   `db:"id" json:"id"`
	FromCurrency string  `db:"from_currency" json:"from_currency"`
	ToCurrency   string  `db:"to_currency" json:"to_currency"`
	League       string  `db:"league" json:"league"`
	Count        int     `db:"count" json:"count"`
	Mean         float64 `db:"mean" json:"mean"`
	StandardDev  float64 `db:"standard_dev" json:"standard_dev"`
	Weight       float64 `db:"weight" json:"weight"`
	CreatedAt    int64   `db:"created_at" json:"created_at"`
	UpdatedAt    int64   `db:"updated_at" json:"updated_at"`
}

func (s *CurrencySummary) GetID() int64   { return s.ID }
func (s *CurrencySummary) SetID(id int64) { s.ID = id }

func (s *CurrencySummary) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.FromCurrency, validation.Required),
		validation.Field(&s.ToCurrency, validation.Required),
		validation.Field(&s.League, validation.Required),
	)
}
