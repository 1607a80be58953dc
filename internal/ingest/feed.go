// Package ingest maps the upstream public-stash feed's JSON shape (spec.md
// §6.1) onto Store writes: the Stash/Item upsert and invalidation lifecycle
// described in spec.md §3. The HTTP transport that retrieves feed pages
// (polling cadence, cursor persistence, retry/backoff) is an external
// collaborator and is not implemented here; this package only consumes an
// already-decoded page.
package ingest

import (
	"encoding/json"
	"regexp"
)

// markupRE strips the run of leading "<<...>>" tags the upstream API
// sometimes prepends to an item's name or typeLine (spec.md §6.1).
var markupRE = regexp.MustCompile(`^(?:<<[^>]*>>)+`)

func cleanMarkup(s string) string {
	return markupRE.ReplaceAllString(s, "")
}

// StashPage is the decoded shape of one page of the public stash feed:
// `{ next_change_id: string, stashes: [ StashObj ] }` (spec.md §6.1).
type StashPage struct {
	NextChangeID string     `json:"next_change_id"`
	Stashes      []ApiStash `json:"stashes"`
}

// ApiStash is the subset of the upstream stash object the core consumes
// (spec.md §6.1): `id`, `accountName`, `lastCharacterName`, `stash`
// (display name), `stashType`, `public`, `items`.
type ApiStash struct {
	ID                string    `json:"id"`
	AccountName       string    `json:"accountName"`
	LastCharacterName string    `json:"lastCharacterName"`
	StashName         string    `json:"stash"`
	StashType         string    `json:"stashType"`
	Public            bool      `json:"public"`
	Items             []ApiItem `json:"items"`
}

// ApiItem is the upstream item shape. Fields the core reads as first-class
// columns are named; the whole object is also kept as raw bytes (see Raw)
// so everything else can be persisted in the item's Extra column without
// the ingest path needing to know its shape (spec.md §3:
// "a large set of descriptive flags and lists that the core passes through
// unchanged").
type ApiItem struct {
	ID        string          `json:"id"`
	W         int             `json:"w"`
	H         int             `json:"h"`
	X         int             `json:"x"`
	Y         int             `json:"y"`
	League    string          `json:"league"`
	TypeLine  string          `json:"typeLine"`
	Name      string          `json:"name"`
	FrameType int             `json:"frameType"`
	Category  json.RawMessage `json:"category"`
	Note      *string         `json:"note,omitempty"`
	Icon      string          `json:"icon"`
	Identified bool           `json:"identified"`
	Ilvl      int             `json:"ilvl"`
	Verified  bool            `json:"verified"`

	raw []byte
}

// UnmarshalJSON decodes the known fields and retains the entire object's
// raw bytes for Raw, so every descriptive flag and list the upstream API
// sends rides along unchanged (spec.md §3) without this package needing to
// model each one.
func (a *ApiItem) UnmarshalJSON(data []byte) error {
	type alias ApiItem
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*a = ApiItem(decoded)
	a.raw = append([]byte(nil), data...)
	return nil
}

// Raw returns the item's full, undecoded JSON object, persisted verbatim
// as the item's Extra column.
func (a ApiItem) Raw() []byte {
	return a.raw
}

// CleanTypeLine returns TypeLine with any leading "<<...>>" markup stripped
// (spec.md §6.1).
func (a ApiItem) CleanTypeLine() string {
	return cleanMarkup(a.TypeLine)
}

// CleanName returns Name with any leading "<<...>>" markup stripped
// (spec.md §6.1).
func (a ApiItem) CleanName() string {
	return cleanMarkup(a.Name)
}

// validate checks the stash's required fields: id and stashType must be
// non-empty. public is a bool and cannot be checked for presence once
// decoded.
func (a ApiStash) validate() error {
	if a.ID == "" {
		return errMissingField("stash", "id")
	}
	if a.StashType == "" {
		return errMissingField("stash", "stashType")
	}
	return nil
}

// validate checks the item's required fields. Of the original
// implementation's list (category, id, h, w, x, y, frameType, icon,
// identified, ilvl, league, name, typeLine, verified), only id, league and
// typeLine are checked, for being non-empty; the other fields are not
// checkable as "present" once decoded into Go's zero-value-having types,
// or may legitimately be empty.
func (a ApiItem) validate() error {
	switch {
	case a.ID == "":
		return errMissingField("item", "id")
	case a.League == "":
		return errMissingField("item", "league")
	case a.TypeLine == "":
		return errMissingField("item", "typeLine")
	}
	return nil
}
