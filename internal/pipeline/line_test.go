package pipeline

import (
	"testing"

	"gestor/internal"
)

func TestExtractLinePipes(t *testing.T) {
	guess := internal.FormatGuess{Kind: internal.FormatPipes}
	c := ExtractLine("001|Producto Test 1|100.00", guess)
	if c == nil {
		t.Fatal("nil")
	}
	if c.Code != "001" || c.Name != "Producto Test 1" || c.Price != "100.00" {
		t.Fatalf("got %+v", c)
	}
	if c.Strategy != "pipes" {
		t.Fatalf("strategy=%s", c.Strategy)
	}
}

func TestExtractLinePipesWithoutGuess(t *testing.T) {
	// A pipe in the line is enough even when the document guess disagrees.
	c := ExtractLine("7791234567890 | Yerba Mate 1kg | $ 2450.00", internal.FormatGuess{Kind: internal.FormatSimple})
	if c == nil || c.Strategy != "pipes" {
		t.Fatalf("got %+v", c)
	}
	if c.Code != "7791234567890" {
		t.Fatalf("code=%s", c.Code)
	}
}

func TestExtractLinePipesNeedsThreeParts(t *testing.T) {
	if c := ExtractLine("001|100.00", internal.FormatGuess{Kind: internal.FormatPipes}); c != nil {
		t.Fatalf("got %+v", c)
	}
}

func TestExtractLineTripleSpaces(t *testing.T) {
	c := ExtractLine("12345   Shampoo Neutro 400ml   $890.50", internal.FormatGuess{})
	if c == nil {
		t.Fatal("nil")
	}
	if c.Strategy != "espacios-triples" {
		t.Fatalf("strategy=%s", c.Strategy)
	}
	if c.Code != "12345" || c.Price != "$890.50" {
		t.Fatalf("got %+v", c)
	}
}

func TestExtractLineTab(t *testing.T) {
	c := ExtractLine("889\tJabón en polvo\t$1.200,00", internal.FormatGuess{})
	if c == nil || c.Strategy != "tabulacion" {
		t.Fatalf("got %+v", c)
	}
}

func TestExtractLineSingleSpaces(t *testing.T) {
	c := ExtractLine("45 Marcador negro $75.00", internal.FormatGuess{})
	if c == nil {
		t.Fatal("nil")
	}
	if c.Code != "45" || c.Name != "Marcador negro" || c.Price != "$75.00" {
		t.Fatalf("got %+v", c)
	}
	if c.Strategy != "espacios-simples" {
		t.Fatalf("strategy=%s", c.Strategy)
	}
}

func TestExtractDirectPatterns(t *testing.T) {
	c := extractDirect("45 Marcador negro $75.00")
	if c == nil || c.Strategy != "cod-nombre-precio" {
		t.Fatalf("got %+v", c)
	}
	if c.Code != "45" || c.Name != "Marcador negro" || c.Price != "$75.00" {
		t.Fatalf("got %+v", c)
	}

	c = extractDirect("Marcador negro 4578 $75.00")
	if c == nil || c.Strategy != "nombre-cod-precio" {
		t.Fatalf("got %+v", c)
	}
	if c.Code != "4578" || c.Name != "Marcador negro" {
		t.Fatalf("got %+v", c)
	}
}

func TestExtractLineNoMatch(t *testing.T) {
	if c := ExtractLine("listado de precios vigente", internal.FormatGuess{}); c != nil {
		t.Fatalf("got %+v", c)
	}
}
