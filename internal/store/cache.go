package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/agrisight/plantmap-cli/internal/model"
)

// Cache keys. The record snapshot is stored as one JSON blob so a session
// never observes a partially written collection.
const (
	cacheKeyPlants = "farmPlants"
	cacheKeyTheme  = "theme"
)

// Cache is the durable local mirror of the plant collection and UI
// preferences, backed by SQLite. All reads are best-effort: missing or
// corrupt entries come back empty, never as a failure.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (or creates) the cache database at the given path and
// configures WAL mode.
func OpenCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "cache: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "cache: exec %s", pragma)
		}
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "cache: migrate")
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// SaveSnapshot mirrors the full record collection. The write replaces the
// previous snapshot wholesale.
func (c *Cache) SaveSnapshot(ctx context.Context, records []model.PlantRecord) error {
	if records == nil {
		records = []model.PlantRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return eris.Wrap(err, "cache: marshal snapshot")
	}
	return c.set(ctx, cacheKeyPlants, string(data))
}

// LoadSnapshot returns the last mirrored record collection. A missing or
// corrupt snapshot yields an empty slice.
func (c *Cache) LoadSnapshot(ctx context.Context) []model.PlantRecord {
	raw, ok := c.get(ctx, cacheKeyPlants)
	if !ok {
		return nil
	}
	var records []model.PlantRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		zap.L().Warn("cache: corrupt plant snapshot, treating as empty", zap.Error(err))
		return nil
	}
	return records
}

// SetTheme persists the theme preference.
func (c *Cache) SetTheme(ctx context.Context, theme string) error {
	return c.set(ctx, cacheKeyTheme, theme)
}

// Theme returns the persisted theme preference, or "" if none is stored.
func (c *Cache) Theme(ctx context.Context) string {
	raw, _ := c.get(ctx, cacheKeyTheme)
	return raw
}

func (c *Cache) set(ctx context.Context, key, value string) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')`,
		key, value,
	)
	if err != nil {
		return eris.Wrapf(err, "cache: set %s", key)
	}
	return nil
}

func (c *Cache) get(ctx context.Context, key string) (string, bool) {
	var value string
	err := c.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			zap.L().Warn("cache: read failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return value, true
}
