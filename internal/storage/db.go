package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"

	"gestor/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS products (
  id INTEGER PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  category TEXT NOT NULL DEFAULT 'General',
  price REAL NOT NULL DEFAULT 0,
  cost REAL NOT NULL DEFAULT 0,
  stock INTEGER NOT NULL DEFAULT 0,
  min_stock INTEGER NOT NULL DEFAULT 5,
  unit TEXT NOT NULL DEFAULT 'un',
  source TEXT,
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_products_code ON products(code);

CREATE TABLE IF NOT EXISTS documents (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  externalId TEXT NOT NULL,
  name TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, externalId)
);

CREATE TABLE IF NOT EXISTS import_history (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  file TEXT NOT NULL,
  source TEXT NOT NULL,
  newCount INTEGER NOT NULL,
  updatedCount INTEGER NOT NULL,
  skippedCount INTEGER NOT NULL,
  errorCount INTEGER NOT NULL,
  totalCount INTEGER NOT NULL,
  cancelled INTEGER NOT NULL DEFAULT 0,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// ReplaceCatalog swaps the whole local mirror for the given products in
// one transaction. The merged catalog is persisted as a whole after a run,
// never incrementally.
func (d *DB) ReplaceCatalog(products []internal.Product) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM products`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
INSERT INTO products (id, code, name, category, price, cost, stock, min_stock, unit, source, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, COALESCE(NULLIF(?, ''), CURRENT_TIMESTAMP))
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range products {
		unit := p.Unit
		if unit == "" {
			unit = "un"
		}
		if _, err := stmt.Exec(p.ID, p.Code, p.Name, p.Category, p.Price, p.Cost, p.Stock, p.MinStock, unit, p.Source, p.CreatedAt); err != nil {
			return fmt.Errorf("guardando producto %s: %w", p.Code, err)
		}
	}

	return tx.Commit()
}

func (d *DB) ListProducts() ([]internal.Product, error) {
	rows, err := d.conn.Query(`
SELECT id, code, name, category, price, cost, stock, min_stock, unit, COALESCE(source, ''), created_at
FROM products ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Product
	for rows.Next() {
		var p internal.Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Category, &p.Price, &p.Cost, &p.Stock, &p.MinStock, &p.Unit, &p.Source, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// NextProductID advances the persistent product-id counter and returns the
// new value. Runs assume exclusive access; concurrent imports must be
// serialized by the caller.
func (d *DB) NextProductID() (int, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var value string
	err = tx.QueryRow(`SELECT value FROM metadata WHERE key = 'contador_productos'`).Scan(&value)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	counter, _ := strconv.Atoi(value)
	counter++

	if _, err := tx.Exec(`
INSERT INTO metadata (key, value) VALUES ('contador_productos', ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, strconv.Itoa(counter)); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return counter, nil
}

// SeedProductCounter raises the counter to at least floor. Used after a
// pull so freshly allocated ids never collide with remote ones.
func (d *DB) SeedProductCounter(floor int) error {
	current, err := d.GetMetadata("contador_productos")
	if err != nil {
		return err
	}
	if current != nil {
		if v, err := strconv.Atoi(*current); err == nil && v >= floor {
			return nil
		}
	}
	return d.SetMetadata("contador_productos", strconv.Itoa(floor))
}

func (d *DB) InsertImportReport(r internal.ImportReport) error {
	cancelled := 0
	if r.Cancelled {
		cancelled = 1
	}
	_, err := d.conn.Exec(`
INSERT INTO import_history (file, source, newCount, updatedCount, skippedCount, errorCount, totalCount, cancelled, createdAt)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, r.File, string(r.Source), r.New, r.Updated, r.Skipped, r.Errors, r.Total, cancelled, r.Timestamp)
	return err
}

// ListImportHistory returns the most recent reports, oldest-first within
// the window; callers reverse for display.
func (d *DB) ListImportHistory(limit int) ([]internal.ImportReport, error) {
	rows, err := d.conn.Query(`
SELECT id, file, source, newCount, updatedCount, skippedCount, errorCount, totalCount, cancelled, createdAt
FROM import_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ImportReport
	for rows.Next() {
		var r internal.ImportReport
		var source string
		var cancelled int
		if err := rows.Scan(&r.ID, &r.File, &source, &r.New, &r.Updated, &r.Skipped, &r.Errors, &r.Total, &cancelled, &r.Timestamp); err != nil {
			return nil, err
		}
		r.Source = internal.SourceKind(source)
		r.Cancelled = cancelled == 1
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (d *DB) UpsertDocument(provider, externalID, name, sender, receivedAt, hash, rawRef, status string) (internal.DocumentRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO documents (provider, externalId, name, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, externalId) DO UPDATE SET
  name=excluded.name,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, externalID, name, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.DocumentRow{}, err
	}

	row, err := d.GetDocument(provider, externalID)
	if err != nil {
		return internal.DocumentRow{}, err
	}
	if row == nil {
		return internal.DocumentRow{}, errors.New("failed to upsert document")
	}
	return *row, nil
}

func (d *DB) GetDocument(provider, externalID string) (*internal.DocumentRow, error) {
	var row internal.DocumentRow
	err := d.conn.QueryRow(`
SELECT id, provider, externalId, COALESCE(name, ''), COALESCE(sender, ''), COALESCE(receivedAt, ''), hash, status, rawRef
FROM documents WHERE provider = ? AND externalId = ?
`, provider, externalID).Scan(
		&row.ID, &row.Provider, &row.ExternalID, &row.Name, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) ListDocumentsByStatus(status string, limit int) ([]internal.DocumentRow, error) {
	rows, err := d.conn.Query(`
SELECT id, provider, externalId, COALESCE(name, ''), COALESCE(sender, ''), COALESCE(receivedAt, ''), hash, status, rawRef
FROM documents WHERE status = ? ORDER BY receivedAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.DocumentRow
	for rows.Next() {
		var row internal.DocumentRow
		if err := rows.Scan(&row.ID, &row.Provider, &row.ExternalID, &row.Name, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateDocumentStatus(documentID int, status string) error {
	_, err := d.conn.Exec(`UPDATE documents SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, documentID)
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
