package postprocess

import (
	"regexp"

	"github.com/go-extras/go-kit/must"
)

// PriceRE is the primary price-note grammar (spec.md §6.4): no spaces are
// permitted in the currency token.
var PriceRE = must.Must(regexp.Compile(
	`~(price|b/o)\s+(\d+(?:\.\d+)?(?:/\d+(?:\.\d+)?)?)\s+([A-Za-z0-9'\-]+)`))

// PriceWithSpaceRE is the one-shot fallback grammar: the currency token may
// contain internal spaces, so multi-word names like "orb of chance" parse.
var PriceWithSpaceRE = must.Must(regexp.Compile(
	`~(price|b/o)\s+(\d+(?:\.\d+)?(?:/\d+(?:\.\d+)?)?)\s+([A-Za-z0-9'][A-Za-z0-9'\- ]*)`))

// OfficialCurrencies maps a lowercased full currency name onto its
// canonical display form. Seeded with the standard Path of Exile currency
// item set (spec.md §4.1 step (1)).
var OfficialCurrencies = map[string]string{
	"chaos orb":               "Chaos Orb",
	"exalted orb":             "Exalted Orb",
	"divine orb":              "Divine Orb",
	"orb of alchemy":          "Orb of Alchemy",
	"orb of alteration":       "Orb of Alteration",
	"orb of augmentation":     "Orb of Augmentation",
	"orb of binding":          "Orb of Binding",
	"orb of chance":           "Orb of Chance",
	"orb of fusing":           "Orb of Fusing",
	"orb of horizons":         "Orb of Horizons",
	"orb of regret":           "Orb of Regret",
	"orb of scouring":         "Orb of Scouring",
	"orb of transmutation":    "Orb of Transmutation",
	"orb of unmaking":         "Orb of Unmaking",
	"blessed orb":             "Blessed Orb",
	"cartographer's chisel":   "Cartographer's Chisel",
	"chromatic orb":           "Chromatic Orb",
	"gemcutter's prism":       "Gemcutter's Prism",
	"glassblower's bauble":    "Glassblower's Bauble",
	"jeweller's orb":          "Jeweller's Orb",
	"regal orb":               "Regal Orb",
	"silver coin":             "Silver Coin",
	"vaal orb":                "Vaal Orb",
	"armourer's scrap":        "Armourer's Scrap",
	"blacksmith's whetstone":  "Blacksmith's Whetstone",
	"scroll of wisdom":        "Scroll of Wisdom",
	"portal scroll":           "Portal Scroll",
	"mirror of kalandra":      "Mirror of Kalandra",
	"eternal orb":             "Eternal Orb",
	"ancient orb":             "Ancient Orb",
	"harbinger's orb":         "Harbinger's Orb",
	"engineer's orb":          "Engineer's Orb",
	"instilling orb":          "Instilling Orb",
	"enkindling orb":          "Enkindling Orb",
	"awakened sextant":        "Awakened Sextant",
	"simple sextant":          "Simple Sextant",
	"prime sextant":           "Prime Sextant",
	"orb of dominance":        "Orb of Dominance",
	"veiled chaos orb":        "Veiled Chaos Orb",
	"crusader's exalted orb":  "Crusader's Exalted Orb",
	"redeemer's exalted orb":  "Redeemer's Exalted Orb",
	"hunter's exalted orb":    "Hunter's Exalted Orb",
	"warlord's exalted orb":   "Warlord's Exalted Orb",
	"exceptional eldritch ember": "Exceptional Eldritch Ember",
}

// UnofficialCurrencies maps the common shorthand abbreviations traders
// actually type onto the canonical name (spec.md §4.1 step (2)).
var UnofficialCurrencies = map[string]string{
	"chaos":      "Chaos Orb",
	"c":          "Chaos Orb",
	"exa":        "Exalted Orb",
	"ex":         "Exalted Orb",
	"divine":     "Divine Orb",
	"div":        "Divine Orb",
	"alch":       "Orb of Alchemy",
	"alt":        "Orb of Alteration",
	"alts":       "Orb of Alteration",
	"aug":        "Orb of Augmentation",
	"augment":    "Orb of Augmentation",
	"chance":     "Orb of Chance",
	"fuse":       "Orb of Fusing",
	"fusing":     "Orb of Fusing",
	"fusings":    "Orb of Fusing",
	"regret":     "Orb of Regret",
	"scour":      "Orb of Scouring",
	"scouring":   "Orb of Scouring",
	"blessed":    "Blessed Orb",
	"chisel":     "Cartographer's Chisel",
	"chisels":    "Cartographer's Chisel",
	"chrome":     "Chromatic Orb",
	"chromatic":  "Chromatic Orb",
	"gcp":        "Gemcutter's Prism",
	"glassblower": "Glassblower's Bauble",
	"bauble":     "Glassblower's Bauble",
	"jewellers":  "Jeweller's Orb",
	"jeweler":    "Jeweller's Orb",
	"jewelers":   "Jeweller's Orb",
	"regal":      "Regal Orb",
	"vaal":       "Vaal Orb",
	"scrap":      "Armourer's Scrap",
	"whetstone":  "Blacksmith's Whetstone",
	"wisdom":     "Scroll of Wisdom",
	"wisdoms":    "Scroll of Wisdom",
	"portal":     "Portal Scroll",
	"portals":    "Portal Scroll",
	"transmute":  "Orb of Transmutation",
	"transmutation": "Orb of Transmutation",
	"mirror":     "Mirror of Kalandra",
	"eternal":    "Eternal Orb",
	"ancient":    "Ancient Orb",
	"unmaking":   "Orb of Unmaking",
	"harbinger":  "Harbinger's Orb",
	"engineers":  "Engineer's Orb",
	"instilling": "Instilling Orb",
	"enkindling": "Enkindling Orb",
	"silver":     "Silver Coin",
}
