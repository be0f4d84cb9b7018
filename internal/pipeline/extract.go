package pipeline

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"gestor/internal"
	"gestor/internal/util"
)

// Price bounds of an acceptable candidate. Out-of-range prices drop the
// line silently; they are counted in statistics, never surfaced as errors.
const (
	maxAcceptedPrice = 1_000_000
	minCodeLength    = 2
)

// ImportConfig carries the caller-supplied column labels and defaults for
// one extraction run.
type ImportConfig struct {
	CodeColumn      string
	NameColumn      string
	PriceColumn     string
	Category        string
	DefaultStock    int
	DefaultMinStock int
	UpdateExisting  bool
}

func (c ImportConfig) withDefaults() ImportConfig {
	if c.CodeColumn == "" {
		c.CodeColumn = "CÓDIGO"
	}
	if c.NameColumn == "" {
		c.NameColumn = "DESCRIPCIÓN"
	}
	if c.PriceColumn == "" {
		c.PriceColumn = "PRECIO"
	}
	if c.Category == "" {
		c.Category = "Importado"
	}
	if c.DefaultMinStock == 0 {
		c.DefaultMinStock = 1
	}
	return c
}

// ExtractResult is what the text entry points hand back: the accepted
// candidates in source-line order plus aggregate statistics.
type ExtractResult struct {
	Products []internal.CandidateProduct
	Total    int
	Stats    internal.ExtractStats
}

// ExtractProductsFromText recovers structured product candidates from one
// newline-joined document. Pure function of its input: re-running it over
// the same text yields the same candidates in the same order.
func ExtractProductsFromText(text string, cfg ImportConfig) ExtractResult {
	cfg = cfg.withDefaults()
	lines := strings.Split(text, "\n")

	guess := DetectFormat(lines)
	fmt.Printf("formato detectado: %s (confianza %.0f%%, muestra %d líneas)\n", guess.Kind, guess.Confidence, guess.SampleSize)

	products := make([]internal.CandidateProduct, 0)
	strategyHits := map[string]int{}
	linesProcessed := 0

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if utf8.RuneCountInString(line) < 3 {
			continue
		}
		linesProcessed++

		extracted := ExtractLine(line, guess)
		if extracted == nil || extracted.Code == "" || extracted.Price == "" {
			continue
		}

		price := util.NormalizePrice(extracted.Price)
		name := util.CleanName(extracted.Name)

		if price <= 0 || price >= maxAcceptedPrice || len(strings.TrimSpace(extracted.Code)) < minCodeLength {
			continue
		}

		products = append(products, internal.CandidateProduct{
			Code:       extracted.Code,
			Name:       name,
			Category:   cfg.Category,
			Price:      price,
			Stock:      cfg.DefaultStock,
			MinStock:   cfg.DefaultMinStock,
			Confidence: ScoreCandidate(line, extracted.Code, price, name, extracted.Strategy),
			SourceLine: line,
			LineNumber: i + 1,
			Strategy:   extracted.Strategy,
			Source:     internal.SourceText,
		})
		strategyHits[extracted.Strategy]++
	}

	stats := internal.ExtractStats{
		LinesProcessed:   linesProcessed,
		ProductsFound:    len(products),
		DominantStrategy: dominantStrategy(strategyHits),
	}
	if linesProcessed > 0 {
		stats.SuccessRate = float64(len(products)) / float64(linesProcessed) * 100
	}
	if len(products) > 0 {
		sum := 0
		for _, p := range products {
			sum += p.Confidence
		}
		stats.AverageConfidence = float64(sum) / float64(len(products))
	}

	fmt.Printf("productos detectados: %d/%d líneas (%.1f%%)\n", stats.ProductsFound, stats.LinesProcessed, stats.SuccessRate)

	return ExtractResult{Products: products, Total: len(products), Stats: stats}
}

func dominantStrategy(hits map[string]int) string {
	best, bestCount := "", 0
	for s, n := range hits {
		if n > bestCount {
			best, bestCount = s, n
		}
	}
	return best
}

var reLineBreaks = regexp.MustCompile(`\r\n?`)

func normalizeLineBreaks(text string) string {
	return reLineBreaks.ReplaceAllString(text, "\n")
}
