// Package settings stores the user's blocked-site list and theme.
package settings

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/grovetools/focus/errors"
	"github.com/grovetools/focus/pkg/models"
	"github.com/grovetools/focus/state"
)

// StorageKey is the store key holding the settings document.
const StorageKey = "todo-app-settings"

// Defaults returns the settings used when nothing valid is stored.
func Defaults() models.Settings {
	return models.Settings{BlockedSites: []string{}, Theme: models.DefaultTheme}
}

// Repository reads and writes settings.
type Repository struct {
	store state.Store
}

// New returns a Repository over store.
func New(store state.Store) *Repository {
	return &Repository{store: store}
}

// rawSettings decodes loosely so one bad field doesn't discard the other.
type rawSettings struct {
	BlockedSites json.RawMessage `json:"blockedSites"`
	Theme        json.RawMessage `json:"theme"`
}

// Load returns the stored settings. Missing or malformed documents yield the
// defaults; a non-array blockedSites becomes empty and an unknown theme
// becomes "light".
func (r *Repository) Load() models.Settings {
	data, ok, err := r.store.Get(StorageKey)
	if err != nil || !ok || data == "" {
		return Defaults()
	}

	var raw rawSettings
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return Defaults()
	}

	s := Defaults()
	var sites []string
	if err := json.Unmarshal(raw.BlockedSites, &sites); err == nil && sites != nil {
		s.BlockedSites = sites
	}
	var theme string
	if err := json.Unmarshal(raw.Theme, &theme); err == nil && slices.Contains(models.Themes, theme) {
		s.Theme = theme
	}
	return s
}

// BlockedSites returns the current blocked-site list.
func (r *Repository) BlockedSites() []string {
	return r.Load().BlockedSites
}

// Save normalizes and stores settings.
func (r *Repository) Save(s models.Settings) (models.Settings, error) {
	if s.Theme == "" {
		s.Theme = models.DefaultTheme
	}
	if !slices.Contains(models.Themes, s.Theme) {
		return models.Settings{}, errors.InvalidInput("theme must be one of light, dark, auto").
			WithDetail("theme", s.Theme)
	}
	s.BlockedSites = NormalizeSites(s.BlockedSites)

	data, err := json.Marshal(s)
	if err != nil {
		return models.Settings{}, errors.Wrap(err, errors.ErrCodeStorageWrite, "marshal settings")
	}
	if err := r.store.Set(StorageKey, string(data)); err != nil {
		return models.Settings{}, err
	}
	return s, nil
}

// NormalizeSites trims and lowercases entries and drops blanks.
func NormalizeSites(sites []string) []string {
	out := make([]string, 0, len(sites))
	for _, s := range sites {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
