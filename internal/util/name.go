package util

import (
	"regexp"
	"strings"
)

// UnnamedProduct is the sentinel for lines whose name collapsed to nothing
// after cleaning.
const UnnamedProduct = "Producto sin nombre"

var (
	reTrailQtyPrice = regexp.MustCompile(`\s+\d+\s+\$\d+[.,]\d+$`)
	reTrailDecimal  = regexp.MustCompile(`\s+\d+[.,]\d+\s*$`)
	reTrailInt      = regexp.MustCompile(`\s+\d+\s*$`)
	reTrailTimes    = regexp.MustCompile(`(?i)\s+x\s*\d+$`)
	reTrailAt       = regexp.MustCompile(`\s*@.*$`)
	reEdgeBullets   = regexp.MustCompile(`^[-|•*\s]+|[-|•*\s]+$`)
	reNameSpaces    = regexp.MustCompile(`\s+`)
)

// Unit-of-measure words stripped when they close the name.
var unitWords = []string{
	"un", "un.", "und", "pza", "pzs", "pieza", "piezas", "unid", "unidad",
	"kg", "gr", "g", "mg", "ml", "l", "lt", "cm", "mm", "m",
	"pack", "paq", "caja", "blister", "bolsa",
}

var unitWordPatterns = compileUnitWordPatterns()

func compileUnitWordPatterns() []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(unitWords))
	for _, w := range unitWords {
		out = append(out, regexp.MustCompile(`(?i)\s`+regexp.QuoteMeta(w)+`\s*$`))
	}
	return out
}

// CleanName strips trailing quantity/price noise and unit words from a raw
// product-name token, trims bullets, collapses whitespace, re-capitalizes
// all-uppercase names and caps the result at 100 characters.
func CleanName(raw string) string {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return UnnamedProduct
	}

	clean = reTrailQtyPrice.ReplaceAllString(clean, "")
	clean = reTrailDecimal.ReplaceAllString(clean, "")
	clean = reTrailInt.ReplaceAllString(clean, "")
	clean = reTrailTimes.ReplaceAllString(clean, "")
	clean = reTrailAt.ReplaceAllString(clean, "")

	for _, re := range unitWordPatterns {
		clean = re.ReplaceAllString(clean, "")
	}

	clean = reEdgeBullets.ReplaceAllString(clean, "")
	clean = strings.TrimSpace(reNameSpaces.ReplaceAllString(clean, " "))

	if clean == strings.ToUpper(clean) && len([]rune(clean)) > 3 {
		clean = recapitalize(clean)
	}

	if runes := []rune(clean); len(runes) > 100 {
		clean = string(runes[:97]) + "..."
	}

	if clean == "" {
		return UnnamedProduct
	}
	return clean
}

// recapitalize turns an all-caps name into word caps, leaving words of two
// characters or fewer alone so codes and abbreviations survive.
func recapitalize(name string) string {
	words := strings.Split(name, " ")
	for i, w := range words {
		runes := []rune(w)
		if len(runes) <= 2 {
			continue
		}
		words[i] = string(runes[0]) + strings.ToLower(string(runes[1:]))
	}
	return strings.Join(words, " ")
}
