package postprocess

import (
	"context"
	"strings"

	"github.com/ajs/poefixer/internal/errkit"
	"github.com/ajs/poefixer/store"
)

// AliasMap is the dynamic portion of currency-name resolution (spec.md
// §4.2): for every full name ever seen as a from_currency in
// currency_summary, it installs the lowercased name, the dashed form, and
// the dashed-and-apostrophe-stripped form, all pointing back at the
// canonical name. It is rebuilt once per Driver pass and is read-only for
// the remainder of that pass.
type AliasMap map[string]string

// BuildAliasMap runs the single DISTINCT query this pass needs and
// installs the three key variants per canonical name.
func BuildAliasMap(ctx context.Context, tx store.Tx) (AliasMap, error) {
	names, err := tx.DistinctFromCurrencies(ctx)
	if err != nil {
		return nil, errkit.Wrap(err, "failed to load distinct from_currency values")
	}

	m := make(AliasMap, len(names)*3)
	for _, name := range names {
		low := strings.ToLower(name)
		dashed := strings.ReplaceAll(low, " ", "-")
		dashedClean := strings.ReplaceAll(dashed, "'", "")

		m[low] = name
		m[dashed] = name
		m[dashedClean] = name
	}
	return m, nil
}

// Lookup resolves a lowercased currency token against the dynamic map.
func (m AliasMap) Lookup(lowerToken string) (string, bool) {
	name, ok := m[lowerToken]
	return name, ok
}
