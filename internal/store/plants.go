// Package store holds the session's authoritative plant collection and its
// durable local mirror.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/agrisight/plantmap-cli/internal/model"
	"github.com/agrisight/plantmap-cli/pkg/plantapi"
)

// LoadState describes how the in-memory collection was populated.
type LoadState string

const (
	StateIdle            LoadState = "idle"
	StateLoading         LoadState = "loading"
	StateLoaded          LoadState = "loaded"
	StateLoadedFromCache LoadState = "loaded-from-cache"
	StateEmptyWithError  LoadState = "empty-with-error"
)

// Status is a read-only view of the store's load state for display.
type Status struct {
	State     LoadState `json:"state"`
	LastError string    `json:"lastError,omitempty"`
	FetchedAt time.Time `json:"fetchedAt,omitzero"`
	Count     int       `json:"count"`
}

// PlantStore owns the in-memory plant collection for the session. It is the
// single source of truth for map and detail views; other components receive
// snapshots or mutate through Save/FetchAll/LoadFromCache.
type PlantStore struct {
	mu      sync.RWMutex
	records []model.PlantRecord

	api   plantapi.Client
	cache *Cache

	state     LoadState
	lastErr   string
	fetchedAt time.Time
}

// NewPlantStore creates an empty store. cache may be nil, in which case
// mirroring and fallback are disabled.
func NewPlantStore(api plantapi.Client, cache *Cache) *PlantStore {
	return &PlantStore{
		api:   api,
		cache: cache,
		state: StateIdle,
	}
}

// LoadFromCache pre-populates the collection from the last cached snapshot.
// Called once at startup, before any network activity.
func (s *PlantStore) LoadFromCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	records := s.cache.LoadSnapshot(ctx)
	if len(records) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.state = StateLoadedFromCache
	zap.L().Debug("store: pre-populated from cache", zap.Int("records", len(records)))
}

// FetchAll replaces the collection wholesale from the persistence
// collaborator and mirrors the result to the cache. On failure the
// collection falls back to the last cached snapshot if one exists; the
// fetch error is returned either way so the caller can surface it.
func (s *PlantStore) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.state = StateLoading
	s.mu.Unlock()

	wire, err := s.api.FetchAll(ctx)
	if err != nil {
		s.fallback(ctx, err)
		return &model.NetworkError{Collaborator: "persistence", Err: err}
	}

	records := make([]model.PlantRecord, 0, len(wire))
	for _, w := range wire {
		records = append(records, fromWire(w))
	}

	s.mu.Lock()
	s.records = records
	s.state = StateLoaded
	s.lastErr = ""
	s.fetchedAt = time.Now().UTC()
	s.mu.Unlock()

	s.Mirror(ctx)
	return nil
}

// fallback populates the collection from cache after a failed fetch.
func (s *PlantStore) fallback(ctx context.Context, cause error) {
	var cached []model.PlantRecord
	if s.cache != nil {
		cached = s.cache.LoadSnapshot(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = cause.Error()
	if len(cached) > 0 {
		s.records = cached
		s.state = StateLoadedFromCache
		zap.L().Warn("store: remote fetch failed, serving cached snapshot",
			zap.Int("records", len(cached)), zap.Error(cause))
		return
	}
	s.records = nil
	s.state = StateEmptyWithError
	zap.L().Warn("store: remote fetch failed and no cache available", zap.Error(cause))
}

// Save persists rec via the collaborator, merges the server's reply (server
// fields win), upserts the result into the collection, and mirrors the full
// collection to the cache. On failure the collection is untouched.
func (s *PlantStore) Save(ctx context.Context, rec model.PlantRecord) (model.PlantRecord, error) {
	if err := rec.Validate(); err != nil {
		return model.PlantRecord{}, err
	}

	srv, err := s.api.Save(ctx, toWire(rec))
	if err != nil {
		return model.PlantRecord{}, eris.Wrapf(err, "store: save %s", rec.ImageName)
	}

	saved := rec
	if srv != nil {
		saved = rec.Merge(fromWire(*srv))
	}

	s.upsert(saved)
	s.Mirror(ctx)
	return saved, nil
}

// upsert replaces the record matching rec.ImageName in place, preserving
// its position, or appends when no match exists.
func (s *PlantStore) upsert(rec model.PlantRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ImageName == rec.ImageName {
			s.records[i] = rec
			return
		}
	}
	s.records = append(s.records, rec)
}

// Mirror writes the full current collection to the durable cache as one
// snapshot. Mirror failures are logged, never propagated: the cache is
// best-effort.
func (s *PlantStore) Mirror(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SaveSnapshot(ctx, s.Snapshot()); err != nil {
		zap.L().Warn("store: cache mirror failed", zap.Error(err))
	}
}

// Snapshot returns a copy of the collection in insertion order.
func (s *PlantStore) Snapshot() []model.PlantRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.PlantRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Get returns a copy of the record with the given image name.
func (s *PlantStore) Get(imageName string) (model.PlantRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.records {
		if s.records[i].ImageName == imageName {
			return s.records[i], true
		}
	}
	return model.PlantRecord{}, false
}

// Len returns the number of records held.
func (s *PlantStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Status reports the current load state for display.
func (s *PlantStore) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		State:     s.state,
		LastError: s.lastErr,
		FetchedAt: s.fetchedAt,
		Count:     len(s.records),
	}
}

func toWire(r model.PlantRecord) plantapi.Record {
	return plantapi.Record{
		ImageName: r.ImageName,
		ImageURL:  r.ImageURL,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Timestamp: r.Timestamp,
	}
}

func fromWire(w plantapi.Record) model.PlantRecord {
	return model.PlantRecord{
		ImageName: w.ImageName,
		ImageURL:  w.ImageURL,
		Latitude:  w.Latitude,
		Longitude: w.Longitude,
		Timestamp: w.Timestamp,
	}
}
