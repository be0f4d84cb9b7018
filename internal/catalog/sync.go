package catalog

import (
	"context"
	"time"

	"gestor/internal/config"
	"gestor/internal/storage"
)

// SyncService mirrors the remote catalog into the local store and pushes
// the merged catalog back after imports. Import runs reconcile against the
// local mirror, so they also work with the backend unreachable.
type SyncService struct {
	db     *storage.DB
	client *Client
	cfg    config.Config
}

func NewSyncService(db *storage.DB, cfg config.Config) *SyncService {
	return &SyncService{db: db, client: NewClient(cfg), cfg: cfg}
}

// Pull replaces the local mirror with the remote catalog.
func (s *SyncService) Pull(ctx context.Context) (int, error) {
	products, err := s.client.GetProducts(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.db.ReplaceCatalog(products); err != nil {
		return 0, err
	}

	maxID := 0
	for _, p := range products {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	if err := s.db.SeedProductCounter(maxID); err != nil {
		return 0, err
	}

	_ = s.db.SetMetadata("catalog.last_pull", time.Now().UTC().Format(time.RFC3339))
	return len(products), nil
}

// Push uploads the local mirror as one batch.
func (s *SyncService) Push(ctx context.Context) (int, error) {
	products, err := s.db.ListProducts()
	if err != nil {
		return 0, err
	}
	if err := s.client.PushProducts(ctx, products); err != nil {
		return 0, err
	}
	_ = s.db.SetMetadata("catalog.last_push", time.Now().UTC().Format(time.RFC3339))
	return len(products), nil
}
