package connectors

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"gestor/internal"
	"gestor/internal/storage"
)

// DocumentStore writes raw supplier documents to disk, named by content
// hash so refetches are idempotent, and registers them for processing.
type DocumentStore struct {
	db     *storage.DB
	rawDir string
}

func NewDocumentStore(db *storage.DB, rawDir string) *DocumentStore {
	return &DocumentStore{db: db, rawDir: rawDir}
}

func (s *DocumentStore) Store(doc internal.FetchedDocument, ext string) (internal.DocumentRow, error) {
	hashBytes := sha256.Sum256(doc.Raw)
	hash := hex.EncodeToString(hashBytes[:])

	if err := os.MkdirAll(s.rawDir, 0o755); err != nil {
		return internal.DocumentRow{}, err
	}

	rawPath := filepath.Join(s.rawDir, hash+ext)
	if _, err := os.Stat(rawPath); os.IsNotExist(err) {
		if err := os.WriteFile(rawPath, doc.Raw, 0o644); err != nil {
			return internal.DocumentRow{}, err
		}
	}

	return s.db.UpsertDocument(doc.Provider, doc.ExternalID, doc.Name, doc.Sender, doc.ReceivedAt, hash, rawPath, "fetched")
}
