// Package view tracks pure UI state for the dashboard shell: the active
// screen, the selected record, and the theme. No async work happens here.
package view

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/agrisight/plantmap-cli/internal/model"
	"github.com/agrisight/plantmap-cli/internal/store"
)

// State holds the current UI state. Transitions are user-triggered
// assignments with enum-membership checks only.
type State struct {
	mu       sync.RWMutex
	current  model.View
	selected string // image name of the selected record, "" = none
	theme    model.Theme
	cache    *store.Cache
}

// Snapshot is a read-only copy of the state for rendering.
type Snapshot struct {
	CurrentView model.View  `json:"currentView"`
	Selected    string      `json:"selected,omitempty"`
	Theme       model.Theme `json:"theme"`
}

// New creates the state, restoring the persisted theme if the cache holds
// one. cache may be nil.
func New(ctx context.Context, cache *store.Cache) *State {
	s := &State{
		current: model.ViewUpload,
		theme:   model.ThemeLight,
		cache:   cache,
	}
	if cache != nil {
		if t := model.Theme(cache.Theme(ctx)); model.ValidTheme(t) {
			s.theme = t
		}
	}
	return s
}

// SetView switches the active screen.
func (s *State) SetView(v model.View) error {
	if !model.ValidView(v) {
		return eris.Errorf("view: unknown view %q", v)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = v
	return nil
}

// Select marks a record as selected for the detail view. An empty name
// clears the selection; detail with no selection is a valid empty state.
func (s *State) Select(imageName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = imageName
}

// SetTheme sets the theme and persists it. Persistence failures are logged,
// never surfaced: the preference is best-effort.
func (s *State) SetTheme(ctx context.Context, t model.Theme) error {
	if !model.ValidTheme(t) {
		return eris.Errorf("view: unknown theme %q", t)
	}
	s.mu.Lock()
	s.theme = t
	s.mu.Unlock()
	s.persistTheme(ctx, t)
	return nil
}

// ToggleTheme flips between light and dark and persists the result.
func (s *State) ToggleTheme(ctx context.Context) model.Theme {
	s.mu.Lock()
	s.theme = s.theme.Toggle()
	t := s.theme
	s.mu.Unlock()
	s.persistTheme(ctx, t)
	return t
}

func (s *State) persistTheme(ctx context.Context, t model.Theme) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetTheme(ctx, string(t)); err != nil {
		zap.L().Warn("view: persist theme failed", zap.Error(err))
	}
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		CurrentView: s.current,
		Selected:    s.selected,
		Theme:       s.theme,
	}
}
