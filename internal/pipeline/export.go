package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"gestor/internal"
)

// ExportRunToXLSX writes one finished run to disk: a row per candidate
// with its provenance and reconciliation outcome, followed by the report
// totals.
func ExportRunToXLSX(rows []internal.ResultRow, report internal.ImportReport, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"linea", "fuente", "linea_original", "codigo", "nombre", "categoria",
		"precio", "stock", "confianza", "estrategia", "resultado",
	}
	for i, h := range headers {
		cellName, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cellName, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cellName, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cellName, value)
		}

		set(1, row.LineNumber)
		set(2, row.Source)
		set(3, row.RawLine)
		set(4, row.Code)
		set(5, row.Name)
		set(6, row.Category)
		set(7, row.Price)
		set(8, row.Stock)
		set(9, row.Confidence)
		set(10, row.Strategy)
		set(11, row.Outcome)
	}

	summaryStart := len(rows) + 3
	summary := [][2]any{
		{"archivo", report.File},
		{"nuevos", report.New},
		{"actualizados", report.Updated},
		{"omitidos", report.Skipped},
		{"errores", report.Errors},
		{"total", report.Total},
		{"cancelado", report.Cancelled},
		{"fecha", report.Timestamp},
	}
	for i, kv := range summary {
		keyCell, _ := excelize.CoordinatesToCellName(1, summaryStart+i)
		valCell, _ := excelize.CoordinatesToCellName(2, summaryStart+i)
		_ = f.SetCellValue(sheet, keyCell, kv[0])
		_ = f.SetCellValue(sheet, valCell, kv[1])
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("guardando %s: %w", outputPath, err)
	}
	return nil
}
