package postprocess

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// NoteParser extracts (amount, canonical_currency) pairs from free-text
// price notes (spec.md §4.1). It consumes the pass's current AliasMap, so
// a new NoteParser is constructed once per Driver pass.
type NoteParser struct {
	aliases AliasMap
	logger  *slog.Logger
}

// NewNoteParser builds a parser bound to the given pass's alias map.
func NewNoteParser(aliases AliasMap, logger *slog.Logger) *NoteParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoteParser{aliases: aliases, logger: logger}
}

// Parse extracts a price from note, trying the strict regex first and
// falling back once to the space-tolerant regex if the currency token
// didn't resolve against any table (spec.md §4.1 "Resolution").
func (p *NoteParser) Parse(ctx context.Context, note string) (amount float64, currency string, ok bool) {
	if note == "" {
		return 0, "", false
	}
	return p.parseWith(ctx, note, PriceRE, true)
}

func (p *NoteParser) parseWith(ctx context.Context, note string, re *regexp.Regexp, allowFallback bool) (float64, string, bool) {
	match := re.FindStringSubmatch(note)
	if match == nil {
		return 0, "", false
	}

	amountToken := match[2]
	currencyToken := match[3]
	lowerCurrency := strings.ToLower(currencyToken)

	amount, ok := parseAmount(amountToken)
	if !ok {
		p.logger.DebugContext(ctx, "invalid price amount", "note", note, "amount", amountToken)
		return 0, "", false
	}

	if canonical, found := OfficialCurrencies[lowerCurrency]; found {
		return amount, canonical, true
	}
	if canonical, found := UnofficialCurrencies[lowerCurrency]; found {
		return amount, canonical, true
	}
	if canonical, found := p.aliases.Lookup(lowerCurrency); found {
		return amount, canonical, true
	}

	if allowFallback && re == PriceRE {
		return p.parseWith(ctx, note, PriceWithSpaceRE, false)
	}

	p.logger.WarnContext(ctx, "currency note has unknown currency abbreviation", "note", note, "currency", currencyToken)
	return 0, "", false
}

// parseAmount handles both plain decimal literals and "num/den" fractions.
// A zero denominator or an unparsable literal fails the note silently
// (spec.md §4.1: "division by zero fails the note").
func parseAmount(token string) (float64, bool) {
	if num, den, isFraction := strings.Cut(token, "/"); isFraction {
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, false
		}
		d, err := strconv.ParseFloat(den, 64)
		if err != nil || d == 0 {
			return 0, false
		}
		return n / d, true
	}

	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
