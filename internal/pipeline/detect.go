package pipeline

import (
	"regexp"

	"gestor/internal"
)

const detectSampleSize = 20

type formatPattern struct {
	kind    internal.FormatKind
	pattern *regexp.Regexp
}

// Declaration order is the tie-break: on equal confidence the earlier
// family wins.
var formatPatterns = []formatPattern{
	{internal.FormatTable, regexp.MustCompile(`\s{2,}|\t`)},
	{internal.FormatPipes, regexp.MustCompile(`\|`)},
	{internal.FormatCSV, regexp.MustCompile(`,`)},
	{internal.FormatInvoice, regexp.MustCompile(`(?i)(CÓDIGO|COD|REF|SKU).*(PRECIO|PRECIO UNIT|VALOR)`)},
	{internal.FormatSimple, regexp.MustCompile(`^\d+\s+[A-Za-z].*\$\d+`)},
}

// DetectFormat samples up to the first 20 lines and scores each pattern
// family by the share of sampled lines it matches. The guess is advisory:
// extraction still tries every strategy per line.
func DetectFormat(lines []string) internal.FormatGuess {
	sample := lines
	if len(sample) > detectSampleSize {
		sample = sample[:detectSampleSize]
	}

	guess := internal.FormatGuess{Kind: internal.FormatUnknown, SampleSize: len(sample)}
	if len(sample) == 0 {
		return guess
	}

	for _, fp := range formatPatterns {
		hits := 0
		for _, line := range sample {
			if fp.pattern.MatchString(line) {
				hits++
			}
		}
		confidence := float64(hits) / float64(len(sample)) * 100
		if confidence > guess.Confidence {
			guess.Confidence = confidence
			guess.Kind = fp.kind
		}
	}

	return guess
}
