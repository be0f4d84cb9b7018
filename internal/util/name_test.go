package util

import "testing"

func TestCleanNameStripsQtyPriceAndRecapitalizes(t *testing.T) {
	if got := CleanName("LAPICERA AZUL 2 $150.00"); got != "Lapicera Azul" {
		t.Fatalf("got %q", got)
	}
}

func TestCleanNameStripsTrailingDecimal(t *testing.T) {
	if got := CleanName("Cuaderno rayado 120.50"); got != "Cuaderno rayado" {
		t.Fatalf("got %q", got)
	}
}

func TestCleanNameStripsTimesQuantity(t *testing.T) {
	if got := CleanName("Pilas AAA x4"); got != "Pilas AAA" {
		t.Fatalf("got %q", got)
	}
}

func TestCleanNameStripsAtSuffix(t *testing.T) {
	if got := CleanName("Yerba 1kg @ depósito"); got != "Yerba 1kg" {
		t.Fatalf("got %q", got)
	}
}

func TestCleanNameStripsUnitWord(t *testing.T) {
	if got := CleanName("Arroz largo fino caja"); got != "Arroz largo fino" {
		t.Fatalf("got %q", got)
	}
}

func TestCleanNameTrimsBulletsAndCollapses(t *testing.T) {
	if got := CleanName("- Detergente   concentrado -"); got != "Detergente concentrado" {
		t.Fatalf("got %q", got)
	}
}

func TestCleanNameShortUppercaseKept(t *testing.T) {
	// Codes and short abbreviations stay as they came.
	if got := CleanName("USB"); got != "USB" {
		t.Fatalf("got %q", got)
	}
}

func TestCleanNameCapsAtHundredRunes(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "abcd "
	}
	got := CleanName(long)
	if runes := []rune(got); len(runes) != 100 {
		t.Fatalf("len=%d", len(runes))
	}
	if got[len(got)-3:] != "..." {
		t.Fatalf("got %q", got)
	}
}

func TestCleanNameEmptyIsSentinel(t *testing.T) {
	for _, in := range []string{"", "   ", "- | -"} {
		if got := CleanName(in); got != UnnamedProduct {
			t.Fatalf("%q: got %q", in, got)
		}
	}
}
