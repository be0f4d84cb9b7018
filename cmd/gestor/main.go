package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gestor/internal"
	"gestor/internal/catalog"
	"gestor/internal/config"
	"gestor/internal/connectors"
	imapconnector "gestor/internal/connectors/imap"
	"gestor/internal/intake"
	"gestor/internal/pipeline"
	"gestor/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "catalog:pull":
		svc := catalog.NewSyncService(db, cfg)
		count, err := svc.Pull(context.Background())
		must(err)
		fmt.Printf("catálogo descargado: %d productos\n", count)
	case "catalog:push":
		svc := catalog.NewSyncService(db, cfg)
		count, err := svc.Push(context.Background())
		must(err)
		fmt.Printf("catálogo enviado: %d productos\n", count)
	case "import:file":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		path := fs.String("path", "", "archivo a importar (pdf|csv|xlsx|xls|html|eml)")
		update := fs.Bool("update", cfg.ImportUpdateExisting, "actualizar productos existentes")
		category := fs.String("category", cfg.ImportCategory, "categoría por defecto")
		out := fs.String("out", "", "exportar resultado a xlsx (opcional)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*path) == "" {
			must(fmt.Errorf("--path es obligatorio"))
		}

		icfg := pipeline.ImportConfig{
			Category:        *category,
			DefaultStock:    cfg.ImportDefaultStock,
			DefaultMinStock: cfg.ImportDefaultMinStock,
			UpdateExisting:  *update,
		}
		processor := pipeline.NewProcessingService(db, cfg)
		result, err := processor.ProcessFile(*path, icfg, printProgress, nil)
		must(err)
		if strings.TrimSpace(*out) != "" {
			must(pipeline.ExportRunToXLSX(result.Rows, result.Report, *out))
			fmt.Printf("resultado exportado a %s\n", *out)
		}
	case "import:text":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		path := fs.String("path", "", "archivo de texto plano; - lee de stdin")
		update := fs.Bool("update", cfg.ImportUpdateExisting, "actualizar productos existentes")
		out := fs.String("out", "", "exportar resultado a xlsx (opcional)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*path) == "" {
			must(fmt.Errorf("--path es obligatorio"))
		}

		text, name, err := readTextInput(*path)
		must(err)

		icfg := pipeline.ImportConfig{
			Category:        cfg.ImportCategory,
			DefaultStock:    cfg.ImportDefaultStock,
			DefaultMinStock: cfg.ImportDefaultMinStock,
			UpdateExisting:  *update,
		}
		res := pipeline.ExtractProductsFromText(text, icfg)
		fmt.Printf("extracción: %d candidatos de %d líneas (estrategia %s, confianza media %.0f)\n",
			len(res.Products), res.Total, res.Stats.DominantStrategy, res.Stats.AverageConfidence)

		processor := pipeline.NewProcessingService(db, cfg)
		result, err := processor.ImportCandidates(res.Products, name, internal.SourceText, icfg, printProgress, nil)
		must(err)
		if strings.TrimSpace(*out) != "" {
			must(pipeline.ExportRunToXLSX(result.Rows, result.Report, *out))
			fmt.Printf("resultado exportado a %s\n", *out)
		}
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		mailbox := fs.String("mailbox", cfg.IMAPMailbox, "buzón IMAP")
		max := fs.Int("max", cfg.WatcherFetchMax, "máximo de mensajes")
		_ = fs.Parse(os.Args[2:])
		conn, err := imapconnector.NewConnector(cfg)
		must(err)
		fetch := connectors.NewFetchService(db, cfg.RawDocDir, conn)
		result, err := fetch.FetchAndStore(*mailbox, *max)
		must(err)
		fmt.Printf("buzón %s: %d mensajes leídos, %d almacenados, %d sin contenido importable\n", *mailbox, result.Fetched, result.Stored, result.Skipped)
	case "intake:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		batch := fs.Int("batch", cfg.WatcherProcessBatch, "tamaño de lote")
		_ = fs.Parse(os.Args[2:])
		processor := pipeline.NewProcessingService(db, cfg)
		count, err := processor.ProcessPending(*batch)
		must(err)
		fmt.Printf("documentos procesados: %d\n", count)
	case "history:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "cantidad de importaciones a mostrar")
		_ = fs.Parse(os.Args[2:])
		history, err := db.ListImportHistory(*limit)
		must(err)
		if len(history) == 0 {
			fmt.Println("sin importaciones registradas")
			return
		}
		// Most recent first for display; storage keeps them oldest first.
		for i := len(history) - 1; i >= 0; i-- {
			r := history[i]
			status := "completada"
			if r.Cancelled {
				status = "cancelada"
			}
			fmt.Printf("#%d %s [%s] %s: nuevos=%d actualizados=%d omitidos=%d errores=%d total=%d\n",
				r.ID, r.Timestamp, status, r.File, r.New, r.Updated, r.Skipped, r.Errors, r.Total)
		}
	case "watch":
		s := intake.NewService(db, cfg)
		must(s.Run(context.Background()))
	default:
		usage()
		os.Exit(1)
	}
}

func readTextInput(path string) (text, name string, err error) {
	if path == "-" {
		raw, err := io.ReadAll(os.Stdin)
		return string(raw), "stdin", err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	return string(raw), filepath.Base(path), nil
}

func printProgress(message string, percent, total int) {
	fmt.Printf("[%3d%%] %s (total %d)\n", percent, message, total)
}

func usage() {
	fmt.Println("usage: gestor <command>")
	fmt.Println("commands:")
	fmt.Println("  catalog:pull")
	fmt.Println("  catalog:push")
	fmt.Println("  import:file --path=lista.pdf [--update] [--category=Importado] [--out=./out/result.xlsx]")
	fmt.Println("  import:text --path=lista.txt [--update] [--out=./out/result.xlsx]")
	fmt.Println("  mail:fetch [--mailbox=INBOX] [--max=20]")
	fmt.Println("  intake:process [--batch=20]")
	fmt.Println("  history:list [--limit=20]")
	fmt.Println("  watch")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
