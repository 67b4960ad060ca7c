package core

import (
	"nova/internal/domain"
	"nova/internal/storage/store"
)

const settingsKey = "settings"

// SettingsManager persists user settings under the "settings" store key,
// sharing the document with the profiles collection.
type SettingsManager struct {
	store    *store.Store
	defaults domain.Settings
}

// NewSettingsManager creates a settings manager. defaults is returned when no
// settings record has been persisted yet.
func NewSettingsManager(st *store.Store, defaults domain.Settings) *SettingsManager {
	return &SettingsManager{store: st, defaults: defaults}
}

// Get returns the persisted settings, or the defaults when none exist.
func (sm *SettingsManager) Get() (domain.Settings, error) {
	settings := sm.defaults
	if _, err := sm.store.Get(settingsKey, &settings); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

// Update applies fn to the current settings and persists the result.
func (sm *SettingsManager) Update(fn func(*domain.Settings)) error {
	settings, err := sm.Get()
	if err != nil {
		return err
	}
	fn(&settings)
	if err := sm.store.Set(settingsKey, settings); err != nil {
		return err
	}
	return sm.store.Save()
}
