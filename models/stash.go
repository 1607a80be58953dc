package models

import (
	"github.com/jellydator/validation"
)

var _ validation.Validatable = (*Stash)(nil)

// Stash is the db-table row for a public stash tab (spec.md §3, §6.2). The
// corresponding table is created by the hand-written DDL in
// store/postgres/schema/sqldata (see DESIGN.md §5 for why this isn't
// annotation-driven codegen).
type Stash struct {
	ID                int64  `db:"id" json:"id"`
	APIID             string `db:"api_id" json:"api_id"`
	AccountName       string `db:"account_name" json:"account_name"`
	LastCharacterName string `db:"last_character_name" json:"last_character_name"`
	StashName         string `db:"stash_name" json:"stash_name"`
	StashType         string `db:"stash_type" json:"stash_type"`
	Public            bool   `db:"public" json:"public"`
	CreatedAt         int64  `db:"created_at" json:"created_at"`
	UpdatedAt         int64  `db:"updated_at" json:"updated_at"`
}

func (s *Stash) GetID() int64   { return s.ID }
func (s *Stash) SetID(id int64) { s.ID = id }
func (s *Stash) IsPublic() bool { return s.Public }

func (s *Stash) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.APIID, validation.Required),
		validation.Field(&s.StashType, validation.Required),
	)
}
