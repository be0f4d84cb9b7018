package pipeline

import (
	"strings"
	"testing"

	"gestor/internal"
)

func TestExtractProductsFromTextPipes(t *testing.T) {
	text := strings.Join([]string{
		"001|Producto Test 1|100.00",
		"002|Producto Test 2|200.50",
		"003|Producto Test 3|75.25",
	}, "\n")

	res := ExtractProductsFromText(text, ImportConfig{})
	if len(res.Products) != 3 {
		t.Fatalf("len=%d", len(res.Products))
	}
	p := res.Products[0]
	if p.Code != "001" || p.Price != 100.00 {
		t.Fatalf("got %+v", p)
	}
	if p.Category != "Importado" || p.MinStock != 1 {
		t.Fatalf("defaults %+v", p)
	}
	if p.Source != internal.SourceText || p.LineNumber != 1 {
		t.Fatalf("provenance %+v", p)
	}
	if res.Stats.DominantStrategy != "pipes" {
		t.Fatalf("strategy=%s", res.Stats.DominantStrategy)
	}
}

func TestExtractSkipsShortLines(t *testing.T) {
	res := ExtractProductsFromText("ab\n\n001|Producto Uno|50.00\n", ImportConfig{})
	if res.Stats.LinesProcessed != 1 {
		t.Fatalf("processed=%d", res.Stats.LinesProcessed)
	}
	if len(res.Products) != 1 {
		t.Fatalf("len=%d", len(res.Products))
	}

	// Length is counted in characters, not bytes: a two-letter accented
	// line is still short.
	res = ExtractProductsFromText("áé\n001|Producto Uno|50.00", ImportConfig{})
	if res.Stats.LinesProcessed != 1 {
		t.Fatalf("processed=%d", res.Stats.LinesProcessed)
	}
}

func TestExtractRejectsOutOfRangePrices(t *testing.T) {
	text := strings.Join([]string{
		"001|Producto gratis|0.00",
		"002|Producto carisimo|1000000.00",
		"003|Producto normal|99.99",
	}, "\n")

	res := ExtractProductsFromText(text, ImportConfig{})
	if len(res.Products) != 1 {
		t.Fatalf("len=%d", len(res.Products))
	}
	if res.Products[0].Code != "003" {
		t.Fatalf("code=%s", res.Products[0].Code)
	}
}

func TestExtractRejectsShortCodes(t *testing.T) {
	res := ExtractProductsFromText("55 | Producto corto | 10.00", ImportConfig{})
	if len(res.Products) != 1 {
		t.Fatalf("len=%d", len(res.Products))
	}

	// A one-digit token never reads as a code in the first place, and the
	// length gate keeps anything shorter than two characters out.
	res = ExtractProductsFromText("5 | Producto corto | 10.00", ImportConfig{})
	for _, p := range res.Products {
		if len(strings.TrimSpace(p.Code)) < 2 {
			t.Fatalf("short code %q", p.Code)
		}
	}
}

func TestExtractCustomCategoryAndStock(t *testing.T) {
	cfg := ImportConfig{Category: "Librería", DefaultStock: 3, DefaultMinStock: 2}
	res := ExtractProductsFromText("001|Cuaderno|500.00", cfg)
	if len(res.Products) != 1 {
		t.Fatalf("len=%d", len(res.Products))
	}
	p := res.Products[0]
	if p.Category != "Librería" || p.Stock != 3 || p.MinStock != 2 {
		t.Fatalf("got %+v", p)
	}
}

func TestExtractEmptyText(t *testing.T) {
	res := ExtractProductsFromText("", ImportConfig{})
	if len(res.Products) != 0 || res.Total != 0 {
		t.Fatalf("got %+v", res)
	}
}
