package pipeline

import (
	"regexp"
	"strings"
)

var (
	reEAN13 = regexp.MustCompile(`^\d{13}$`)
	reEAN8  = regexp.MustCompile(`^\d{8}$`)
)

// ScoreCandidate assigns a 0-100 plausibility score to an extracted record.
// The score is informational: it rides along on the candidate but never
// gates inclusion (the price-range and code-length checks do that).
func ScoreCandidate(line, code string, price float64, name, strategy string) int {
	score := 50

	if len(code) >= 8 {
		score += 20
	}
	if len(code) >= 13 {
		score += 10
	}
	if price > 0.01 && price < 10000 {
		score += 25
	}
	if n := len([]rune(name)); n >= 3 && n <= 100 {
		score += 15
	}
	if strings.Contains(line, "$") || strings.Contains(line, "USD") || strings.Contains(line, "€") {
		score += 10
	}
	if strategy != "" && strategy != "desconocido" {
		score += 5
	}

	lowerName := strings.ToLower(name)
	if strings.Contains(lowerName, "total") || strings.Contains(lowerName, "subtotal") {
		score -= 40
	}
	if strings.Contains(lowerName, "iva") || strings.Contains(lowerName, "impuesto") {
		score -= 40
	}
	if strings.Contains(lowerName, "cant") || strings.Contains(lowerName, "cantidad") {
		score -= 20
	}
	lowerLine := strings.ToLower(line)
	if strings.Contains(lowerLine, "pagina") || strings.Contains(lowerLine, "page") {
		score -= 30
	}

	if reEAN13.MatchString(code) {
		score += 5
	}
	if reEAN8.MatchString(code) {
		score += 5
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
