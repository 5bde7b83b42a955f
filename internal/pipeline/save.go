package pipeline

import (
	"context"
	"time"

	"github.com/agrisight/plantmap-cli/internal/model"
	"github.com/agrisight/plantmap-cli/internal/store"
)

// SaveCoordinator stamps extracted records with their capture time and
// persists them through the store.
type SaveCoordinator struct {
	store *store.PlantStore
	now   func() time.Time
}

// NewSaveCoordinator creates a save coordinator.
func NewSaveCoordinator(st *store.PlantStore) *SaveCoordinator {
	return &SaveCoordinator{store: st, now: time.Now}
}

// Save stamps the record and persists it. On success the store holds the
// enriched record (upserted by image name) and the collection has been
// mirrored to the local cache; on failure the store is untouched.
func (c *SaveCoordinator) Save(ctx context.Context, rec model.PlantRecord) (model.PlantRecord, error) {
	rec.Timestamp = c.now().UTC().Format(time.RFC3339)
	return c.store.Save(ctx, rec)
}
