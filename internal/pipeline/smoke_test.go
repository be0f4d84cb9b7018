package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gestor/internal"
	"gestor/internal/config"
	"gestor/internal/storage"
)

func TestSmokeCSVToCatalogAndExport(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "gestor.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	// Pre-existing catalog with one product the import will update.
	if err := db.ReplaceCatalog([]internal.Product{
		{ID: 1, Code: "A001", Name: "Lapicera vieja", Category: "Librería", Price: 90, Stock: 10},
	}); err != nil {
		t.Fatal(err)
	}
	if err := db.SeedProductCounter(1); err != nil {
		t.Fatal(err)
	}

	csvPath := filepath.Join(tmp, "lista.csv")
	csvData := strings.Join([]string{
		"codigo,nombre,categoria,precio,stock,stockMinimo",
		"A001,Lapicera azul,Librería,100,5,2",
		"B001,Goma de borrar,Librería,50,20,3",
	}, "\n")
	if err := os.WriteFile(csvPath, []byte(csvData), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _ := config.Load()
	proc := NewProcessingService(db, cfg)
	result, err := proc.ProcessFile(csvPath, ImportConfig{UpdateExisting: true}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Report.Updated != 1 || result.Report.New != 1 {
		t.Fatalf("report=%+v", result.Report)
	}

	products, err := db.ListProducts()
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 2 {
		t.Fatalf("len=%d", len(products))
	}
	if products[0].Name != "Lapicera azul" || products[0].Stock != 15 {
		t.Fatalf("got %+v", products[0])
	}
	if products[1].Code != "B001" || products[1].ID != 2 {
		t.Fatalf("got %+v", products[1])
	}

	history, err := db.ListImportHistory(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].File != "lista.csv" {
		t.Fatalf("history=%+v", history)
	}

	out := filepath.Join(tmp, "out", "result.xlsx")
	if err := ExportRunToXLSX(result.Rows, result.Report, out); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatal(err)
	}
}

func TestProcessFileUnsupportedExtension(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "gestor.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	path := filepath.Join(tmp, "lista.docx")
	if err := os.WriteFile(path, []byte("nada"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _ := config.Load()
	proc := NewProcessingService(db, cfg)
	_, err = proc.ProcessFile(path, ImportConfig{}, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "formato no soportado") {
		t.Fatalf("err=%v", err)
	}
}

func TestProcessFileEmptyDocument(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "gestor.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	path := filepath.Join(tmp, "vacio.csv")
	if err := os.WriteFile(path, []byte("codigo,nombre,categoria,precio\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _ := config.Load()
	proc := NewProcessingService(db, cfg)
	_, err = proc.ProcessFile(path, ImportConfig{}, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "no hay productos") {
		t.Fatalf("err=%v", err)
	}
}
