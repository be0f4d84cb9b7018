package intake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"gestor/internal"
	"gestor/internal/config"
	"gestor/internal/connectors"
	imapconnector "gestor/internal/connectors/imap"
	"gestor/internal/pipeline"
	"gestor/internal/storage"
)

// Extensions the intake accepts. Anything else left in the directory is
// ignored, not failed.
var intakeExtensions = map[string]struct{}{
	".pdf": {}, ".csv": {}, ".xlsx": {}, ".xls": {}, ".html": {}, ".htm": {}, ".eml": {},
}

// Service watches the intake directory (and, when configured, the supplier
// mailbox) and runs the import pipeline over everything that arrives.
type Service struct {
	db   *storage.DB
	cfg  config.Config
	proc *pipeline.ProcessingService
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, cfg: cfg, proc: pipeline.NewProcessingService(db, cfg)}
}

// Run blocks until ctx is done. Filesystem events trigger a cycle early;
// the interval rescan catches anything the watcher missed.
func (s *Service) Run(ctx context.Context) error {
	if err := os.MkdirAll(s.cfg.IntakeDir, 0o755); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(s.cfg.IntakeDir); err != nil {
		return err
	}

	interval := time.Duration(s.cfg.WatcherIntervalSec) * time.Second
cycle:
	for {
		if err := s.runCycle(); err != nil {
			fmt.Printf("ciclo de intake con error: %v\n", err)
		}

		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				// Give the writer a moment to finish the file.
				time.Sleep(500 * time.Millisecond)
				continue cycle
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Printf("watcher error: %v\n", err)
			case <-time.After(interval):
				continue cycle
			}
		}
	}
}

func (s *Service) runCycle() error {
	if err := s.registerIntakeFiles(); err != nil {
		return err
	}

	if strings.TrimSpace(s.cfg.IMAPHost) != "" {
		if err := s.fetchMailbox(); err != nil {
			fmt.Printf("buzón no disponible: %v\n", err)
		}
	}

	processed, err := s.processFetched()
	if err != nil {
		return err
	}
	if processed > 0 {
		fmt.Printf("ciclo de intake: %d documento(s) procesados\n", processed)
	}
	return nil
}

// registerIntakeFiles moves eligible dropped files into the content-hashed
// raw store and registers them as fetched documents.
func (s *Service) registerIntakeFiles() error {
	entries, err := os.ReadDir(s.cfg.IntakeDir)
	if err != nil {
		return err
	}

	store := connectors.NewDocumentStore(s.db, s.cfg.RawDocDir)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := intakeExtensions[ext]; !ok {
			continue
		}

		existing, err := s.db.GetDocument("intake", entry.Name())
		if err != nil {
			return err
		}
		if existing != nil && existing.Status != "fetched" {
			continue
		}

		path := filepath.Join(s.cfg.IntakeDir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("no se pudo leer %s: %v\n", entry.Name(), err)
			continue
		}

		if _, err := store.Store(internal.FetchedDocument{
			Provider:   "intake",
			ExternalID: entry.Name(),
			Name:       entry.Name(),
			ReceivedAt: time.Now().UTC().Format(time.RFC3339),
			Raw:        raw,
		}, ext); err != nil {
			return err
		}
		_ = os.Remove(path)
	}
	return nil
}

func (s *Service) fetchMailbox() error {
	conn, err := imapconnector.NewConnector(s.cfg)
	if err != nil {
		return err
	}
	fetch := connectors.NewFetchService(s.db, s.cfg.RawDocDir, conn)
	result, err := fetch.FetchAndStore(s.cfg.IMAPMailbox, s.cfg.WatcherFetchMax)
	if err != nil {
		return err
	}
	if result.Stored > 0 || result.Skipped > 0 {
		fmt.Printf("buzón: %d mensaje(s) almacenados, %d sin contenido importable\n", result.Stored, result.Skipped)
	}
	return nil
}

func (s *Service) processFetched() (int, error) {
	pending, err := s.db.ListDocumentsByStatus("fetched", s.cfg.WatcherProcessBatch)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, doc := range pending {
		result, err := s.proc.ProcessDocument(doc, nil)
		if err != nil {
			fmt.Printf("documento %s falló: %v\n", doc.Name, err)
			continue
		}
		processed++

		if s.cfg.WatcherAutoExport {
			filename := fmt.Sprintf("%d_%s.xlsx", doc.ID, sanitizeName(doc.Name))
			outputPath := filepath.Join(s.cfg.OutputDir, "intake", filename)
			if err := pipeline.ExportRunToXLSX(result.Rows, result.Report, outputPath); err != nil {
				fmt.Printf("no se pudo exportar %s: %v\n", filename, err)
			}
		}
	}
	return processed, nil
}

func sanitizeName(input string) string {
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	out := repl.Replace(input)
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}
