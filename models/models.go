// Package models defines the four persistent record types the currency
// post-processor reads and writes: Stash, Item, Sale, and CurrencySummary
// (spec.md §3).
package models

// IDable is implemented by every model that carries a surrogate primary
// key, mirroring the teacher's registry.IDable convention.
type IDable interface {
	GetID() int64
	SetID(id int64)
}

// Currency is a canonical currency name, e.g. "Chaos Orb", "Exalted Orb".
// It is always the resolved, full name — never an abbreviation.
type Currency string

// ChaosOrb is the numeraire of the modeled economy (spec.md glossary).
const ChaosOrb Currency = "Chaos Orb"
