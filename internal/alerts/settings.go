package alerts

import (
	"sync"

	"github.com/kavachhq/kavach-backend/internal/models"
)

// SettingsStore keeps per-user alert configuration in memory. Absence is not
// an error: reads for an unknown user yield defaults, and the evaluator uses
// Lookup to tell "never configured" apart from "configured but quiet".
type SettingsStore struct {
	mu     sync.RWMutex
	byUser map[string]models.AlertSettings
}

func NewSettingsStore() *SettingsStore {
	return &SettingsStore{
		byUser: make(map[string]models.AlertSettings),
	}
}

// Get returns the user's settings, default-populated when absent.
func (s *SettingsStore) Get(userID string) models.AlertSettings {
	settings, ok := s.Lookup(userID)
	if !ok {
		return models.DefaultAlertSettings()
	}
	return settings
}

// Lookup returns the stored settings and whether the user has ever saved any.
func (s *SettingsStore) Lookup(userID string) (models.AlertSettings, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	settings, ok := s.byUser[userID]
	return settings, ok
}

// Put saves the user's settings. No validation of email or phone format:
// malformed values just fail at delivery time.
func (s *SettingsStore) Put(userID string, settings models.AlertSettings) {
	s.mu.Lock()
	s.byUser[userID] = settings
	s.mu.Unlock()
}

// All returns a copy of every user's settings, keyed by user ID.
func (s *SettingsStore) All() map[string]models.AlertSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.AlertSettings, len(s.byUser))
	for id, settings := range s.byUser {
		out[id] = settings
	}
	return out
}
