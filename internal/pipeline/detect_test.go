package pipeline

import (
	"testing"

	"gestor/internal"
)

func TestDetectFormatPipes(t *testing.T) {
	lines := []string{
		"001|Lapicera azul|150.00",
		"002|Cuaderno rayado|890.50",
		"003|Goma de borrar|75.00",
	}
	guess := DetectFormat(lines)
	if guess.Kind != internal.FormatPipes {
		t.Fatalf("kind=%s", guess.Kind)
	}
	if guess.Confidence != 100 {
		t.Fatalf("confidence=%v", guess.Confidence)
	}
}

func TestDetectFormatTableWinsTieOverPipes(t *testing.T) {
	// Both families match every line; the table family is declared first.
	lines := []string{
		"001  |  Lapicera azul  |  150.00",
		"002  |  Cuaderno rayado  |  890.50",
	}
	guess := DetectFormat(lines)
	if guess.Kind != internal.FormatTable {
		t.Fatalf("kind=%s", guess.Kind)
	}
}

func TestDetectFormatSamplesFirstTwentyLines(t *testing.T) {
	lines := make([]string, 0, 40)
	for i := 0; i < 20; i++ {
		lines = append(lines, "a|b|c")
	}
	for i := 0; i < 20; i++ {
		lines = append(lines, "x  y  z")
	}
	guess := DetectFormat(lines)
	if guess.Kind != internal.FormatPipes {
		t.Fatalf("kind=%s", guess.Kind)
	}
	if guess.SampleSize != 20 {
		t.Fatalf("sample=%d", guess.SampleSize)
	}
}

func TestDetectFormatEmptyInput(t *testing.T) {
	guess := DetectFormat(nil)
	if guess.Kind != internal.FormatUnknown || guess.Confidence != 0 {
		t.Fatalf("guess=%+v", guess)
	}
}
