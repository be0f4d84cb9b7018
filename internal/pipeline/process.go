package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gestor/internal"
	"gestor/internal/catalog"
	"gestor/internal/config"
	"gestor/internal/storage"
	"gestor/internal/util"
)

// maxPDFBytes caps accepted PDFs; oversized files are rejected before any
// processing starts.
const maxPDFBytes = 10 * 1024 * 1024

// ProcessingService wires extraction to reconciliation: it reads a source
// document, extracts candidates, runs the import against the local catalog
// mirror and records the outcome.
type ProcessingService struct {
	db     *storage.DB
	cfg    config.Config
	codes  *util.CodeGenerator
	runner *catalog.Runner
}

func NewProcessingService(db *storage.DB, cfg config.Config) *ProcessingService {
	codes := util.NewCodeGenerator()
	return &ProcessingService{
		db:     db,
		cfg:    cfg,
		codes:  codes,
		runner: catalog.NewRunner(db, codes),
	}
}

func (s *ProcessingService) importConfig() ImportConfig {
	return ImportConfig{
		Category:        s.cfg.ImportCategory,
		DefaultStock:    s.cfg.ImportDefaultStock,
		DefaultMinStock: s.cfg.ImportDefaultMinStock,
		UpdateExisting:  s.cfg.ImportUpdateExisting,
	}
}

// ExtractFromFile reads one document and returns its candidates. The file
// type is decided by extension; anything unrecognized fails fast before
// any parsing happens.
func (s *ProcessingService) ExtractFromFile(path string, icfg ImportConfig) ([]internal.CandidateProduct, internal.SourceKind, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))

	info, err := os.Stat(path)
	if err != nil {
		return nil, "", err
	}
	if ext == "pdf" && info.Size() > maxPDFBytes {
		return nil, "", fmt.Errorf("el archivo es demasiado grande (máximo 10MB): %s", filepath.Base(path))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}

	switch ext {
	case "pdf":
		text, err := ReadPDF(content)
		if err != nil {
			return nil, "", fmt.Errorf("error procesando PDF: %w", err)
		}
		res := ExtractProductsFromText(text, icfg)
		products := res.Products
		for i := range products {
			products[i].Source = internal.SourcePDF
		}
		return products, internal.SourcePDF, nil
	case "csv":
		products, err := ParseCSV(content, ',', true, icfg, s.codes)
		return products, internal.SourceCSV, err
	case "xlsx", "xls":
		products, err := ParseXLSX(content, icfg, s.codes)
		return products, internal.SourceXLSX, err
	case "html", "htm":
		products, err := ParseHTML(content, icfg, s.codes)
		return products, internal.SourceHTML, err
	case "eml":
		products, err := ReadEML(content, icfg, s.codes)
		return products, internal.SourceEML, err
	default:
		return nil, "", fmt.Errorf("formato no soportado: .%s", ext)
	}
}

// ProcessFile runs the whole pipeline for one document: extract, import
// against the current catalog, persist the merged catalog as a whole and
// append the report to history.
func (s *ProcessingService) ProcessFile(path string, icfg ImportConfig, onProgress catalog.ProgressFunc, handle *catalog.RunHandle) (catalog.RunResult, error) {
	candidates, source, err := s.ExtractFromFile(path, icfg)
	if err != nil {
		return catalog.RunResult{}, err
	}
	return s.ImportCandidates(candidates, filepath.Base(path), source, icfg, onProgress, handle)
}

// ImportCandidates drives one import run over an already-extracted
// candidate list.
func (s *ProcessingService) ImportCandidates(candidates []internal.CandidateProduct, file string, source internal.SourceKind, icfg ImportConfig, onProgress catalog.ProgressFunc, handle *catalog.RunHandle) (catalog.RunResult, error) {
	if len(candidates) == 0 {
		return catalog.RunResult{}, errors.New("no hay productos para importar")
	}

	existing, err := s.db.ListProducts()
	if err != nil {
		return catalog.RunResult{}, err
	}

	result := s.runner.Run(candidates, existing, catalog.RunOptions{
		File:           file,
		Source:         source,
		UpdateExisting: icfg.UpdateExisting,
	}, onProgress, handle)

	if err := s.db.ReplaceCatalog(result.Catalog); err != nil {
		return catalog.RunResult{}, err
	}
	if err := s.db.InsertImportReport(result.Report); err != nil {
		return catalog.RunResult{}, err
	}

	r := result.Report
	fmt.Printf("importación %s: nuevos=%d actualizados=%d omitidos=%d errores=%d total=%d cancelado=%v\n",
		file, r.New, r.Updated, r.Skipped, r.Errors, r.Total, r.Cancelled)

	return result, nil
}

// ProcessDocument handles one registered intake document and moves its
// status to processed or failed.
func (s *ProcessingService) ProcessDocument(doc internal.DocumentRow, onProgress catalog.ProgressFunc) (catalog.RunResult, error) {
	result, err := s.ProcessFile(doc.RawRef, s.importConfig(), onProgress, nil)
	if err != nil {
		_ = s.db.UpdateDocumentStatus(doc.ID, "failed")
		return catalog.RunResult{}, err
	}
	if err := s.db.UpdateDocumentStatus(doc.ID, "processed"); err != nil {
		return catalog.RunResult{}, err
	}
	return result, nil
}

// ProcessPending works through the fetched-document backlog in batches.
func (s *ProcessingService) ProcessPending(limit int) (int, error) {
	pending, err := s.db.ListDocumentsByStatus("fetched", limit)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, doc := range pending {
		if _, err := s.ProcessDocument(doc, nil); err != nil {
			fmt.Printf("documento %s falló: %v\n", doc.Name, err)
			continue
		}
		processed++
	}
	return processed, nil
}

// Codes exposes the service's code generator so callers sharing the
// service share its uniqueness guarantee.
func (s *ProcessingService) Codes() *util.CodeGenerator {
	return s.codes
}
