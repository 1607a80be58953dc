package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Category is the item's nested category bag from the upstream API, e.g.
// {"currency": []} or {"armour": ["chest"]}. spec.md §3 calls out that it
// contains "zero or more top-level keys such as currency, gems, cards,
// armour, accessories" — we keep it as a generic map so new top-level keys
// never require a schema change.
type Category map[string][]string

// Has reports whether key is present in the category bag, regardless of its
// associated value. The Sale Extractor only ever needs this (spec.md §4.3:
// `"currency" in item.category`).
func (c Category) Has(key string) bool {
	if c == nil {
		return false
	}
	_, ok := c[key]
	return ok
}

// Value implements driver.Valuer so Category can be written directly as a
// JSON column by database/sql drivers that don't have a native JSON type
// (mirrors the teacher's SemiJSON type decorator approach, ported from the
// original Python implementation's rapidjson-backed column).
func (c Category) Value() (driver.Value, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner.
func (c *Category) Scan(src any) error {
	if src == nil {
		*c = nil
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("models: cannot scan %T into Category", src)
	}

	if len(raw) == 0 {
		*c = nil
		return nil
	}

	return json.Unmarshal(raw, c)
}
