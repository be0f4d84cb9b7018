package pipeline

import (
	"regexp"
	"strings"

	"gestor/internal"
)

// lineCandidate is the raw (code, name, price) triple pulled out of one
// line before normalization.
type lineCandidate struct {
	Code     string
	Name     string
	Price    string
	Strategy string
}

var (
	reBareCode = regexp.MustCompile(`^\d{2,}$`)
	// Strict money shape, used where a token must be disambiguated from a
	// code: requires exactly two decimals.
	reMoneyStrict = regexp.MustCompile(`\$?\s*\d+[.,]\d{2}`)
	// Loose money shape of the separator strategy: zero to two decimals.
	// The two regexes intentionally disagree; see the tests.
	reMoneyLoose = regexp.MustCompile(`\$?\s*\d+[.,]\d{0,2}`)
	reMoneyTail  = regexp.MustCompile(`\d+[.,]\d{2}`)
)

type separator struct {
	re   *regexp.Regexp
	name string
}

var separators = []separator{
	{regexp.MustCompile(`\s{3,}`), "espacios-triples"},
	{regexp.MustCompile(`\t`), "tabulacion"},
	{regexp.MustCompile(`\s{2,}`), "espacios-dobles"},
	{regexp.MustCompile(`\s+`), "espacios-simples"},
}

type directPattern struct {
	re       *regexp.Regexp
	code     int
	name     int
	price    int
	strategy string
}

var directPatterns = []directPattern{
	{regexp.MustCompile(`^(\d{2,})\s+(.+?)\s+(\$?\s*\d+[.,]\d{2})`), 1, 2, 3, "cod-nombre-precio"},
	{regexp.MustCompile(`^(.+?)\s+(\d{2,})\s+(\$?\s*\d+[.,]\d{2})`), 2, 1, 3, "nombre-cod-precio"},
	{regexp.MustCompile(`^(\$?\s*\d+[.,]\d{2})\s+(\d{2,})\s+(.+)`), 2, 3, 1, "precio-cod-nombre"},
}

// ExtractLine tries the strategies in fixed priority order and returns the
// first that yields a (code, name, price) triple, or nil. Each strategy is
// a pure function of the line, so they can be reordered and tested alone.
func ExtractLine(line string, guess internal.FormatGuess) *lineCandidate {
	if c := extractPipes(line, guess); c != nil {
		return c
	}
	if c := extractSeparated(line); c != nil {
		return c
	}
	return extractDirect(line)
}

// extractPipes handles pipe-delimited rows. It applies whenever the
// document looks pipe-formatted or the line itself carries a pipe.
func extractPipes(line string, guess internal.FormatGuess) *lineCandidate {
	if guess.Kind != internal.FormatPipes && !strings.Contains(line, "|") {
		return nil
	}

	parts := splitTrimmed(line, "|")
	if len(parts) < 3 {
		return nil
	}

	codeIdx, priceIdx := -1, -1
	for i, p := range parts {
		if codeIdx == -1 && reBareCode.MatchString(p) {
			codeIdx = i
		}
		if priceIdx == -1 && reMoneyStrict.MatchString(p) {
			priceIdx = i
		}
	}
	if codeIdx == -1 || priceIdx == -1 {
		return nil
	}

	nameParts := make([]string, 0, len(parts)-2)
	for i, p := range parts {
		if i != codeIdx && i != priceIdx {
			nameParts = append(nameParts, p)
		}
	}

	return &lineCandidate{
		Code:     parts[codeIdx],
		Name:     strings.Join(nameParts, " "),
		Price:    parts[priceIdx],
		Strategy: "pipes",
	}
}

// extractSeparated splits on progressively weaker whitespace separators and
// scans the parts for a code-shaped and a money-shaped token.
func extractSeparated(line string) *lineCandidate {
	for _, sep := range separators {
		parts := filterEmpty(sep.re.Split(line, -1))
		if len(parts) < 3 {
			continue
		}
		if c := findCodeAndPrice(parts); c != nil {
			c.Strategy = sep.name
			return c
		}
	}
	return nil
}

func findCodeAndPrice(parts []string) *lineCandidate {
	code, price := "", ""
	nameParts := make([]string, 0, len(parts))

	for _, p := range parts {
		switch {
		case code == "" && reBareCode.MatchString(p) && !reMoneyTail.MatchString(p):
			code = p
		case price == "" && reMoneyLoose.MatchString(p):
			price = p
		default:
			nameParts = append(nameParts, p)
		}
	}

	if code == "" || price == "" || len(nameParts) == 0 {
		return nil
	}
	return &lineCandidate{Code: code, Name: strings.Join(nameParts, " "), Price: price}
}

func extractDirect(line string) *lineCandidate {
	for _, dp := range directPatterns {
		m := dp.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		return &lineCandidate{
			Code:     strings.TrimSpace(m[dp.code]),
			Name:     strings.TrimSpace(m[dp.name]),
			Price:    strings.TrimSpace(m[dp.price]),
			Strategy: dp.strategy,
		}
	}
	return nil
}

func splitTrimmed(line, sep string) []string {
	return filterEmpty(strings.Split(line, sep))
}

func filterEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
