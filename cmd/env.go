package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/agrisight/plantmap-cli/internal/pipeline"
	"github.com/agrisight/plantmap-cli/internal/store"
	"github.com/agrisight/plantmap-cli/internal/view"
	"github.com/agrisight/plantmap-cli/pkg/extract"
	"github.com/agrisight/plantmap-cli/pkg/plantapi"
	"github.com/agrisight/plantmap-cli/pkg/storage"
)

// appEnv holds the initialized cache, store, view state, and pipeline used
// by the upload/plants/export/serve commands.
type appEnv struct {
	Cache    *store.Cache
	Store    *store.PlantStore
	View     *view.State
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Cache != nil {
		_ = e.Cache.Close()
	}
}

// initEnv opens the local cache, builds the collaborator clients, and
// pre-populates the store from cache before any network activity.
func initEnv(ctx context.Context, scope string) (*appEnv, error) {
	if err := cfg.Validate(scope); err != nil {
		return nil, err
	}

	cache, err := store.OpenCache(cfg.Cache.Path)
	if err != nil {
		return nil, eris.Wrap(err, "open cache")
	}

	apiClient := plantapi.NewClient(cfg.API.BaseURL, cfg.Identity)
	st := store.NewPlantStore(apiClient, cache)
	st.LoadFromCache(ctx)

	env := &appEnv{
		Cache: cache,
		Store: st,
		View:  view.New(ctx, cache),
	}

	if scope != "pipeline" {
		return env, nil
	}

	var storageClient storage.Client
	switch cfg.Storage.Driver {
	case "gcs":
		storageClient, err = storage.NewGCSClient(ctx, cfg.Storage.Bucket, cfg.Storage.Folder)
		if err != nil {
			env.Close()
			return nil, err
		}
		zap.L().Info("using gcs storage", zap.String("bucket", cfg.Storage.Bucket))
	default:
		storageClient = storage.NewPresetClient(cfg.Storage.UploadURL, cfg.Storage.Preset,
			storage.WithFolder(cfg.Storage.Folder))
	}

	extractClient := extract.NewClient(cfg.Extract.BaseURL, cfg.Identity,
		extract.WithRateLimit(cfg.Extract.RPS))

	env.Pipeline = pipeline.New(storageClient, extractClient, st, cfg.Upload.Concurrency)
	return env, nil
}
