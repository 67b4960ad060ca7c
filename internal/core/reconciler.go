package core

import (
	"os"

	"go.uber.org/zap"

	"nova/internal/domain"
)

// Reconciler merges a profile's tracked mod list with the plugin files
// actually on disk.
type Reconciler struct {
	profiles  *ProfileManager
	installer *Installer
	log       *zap.SugaredLogger
}

// NewReconciler creates a reconciler. A nil logger disables logging.
func NewReconciler(profiles *ProfileManager, installer *Installer, log *zap.SugaredLogger) *Reconciler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Reconciler{profiles: profiles, installer: installer, log: log}
}

// ListPluginFiles lists the plugin directory of a profile. Any access failure
// yields an empty list: a brand-new profile legitimately has no plugins yet.
func ListPluginFiles(profilePath string) []string {
	entries, err := os.ReadDir(PluginsDir(profilePath))
	if err != nil {
		return nil
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, entry.Name())
	}
	return files
}

// Unify builds the per-profile unified view: managed entries first in record
// order, then one custom entry per on-disk file the record does not track.
// A tracked entry whose file is missing on disk is dropped, not synthesized.
// Custom entries follow directory-listing order; callers needing a stable
// display order must sort.
func (r *Reconciler) Unify(profileID string) ([]domain.UnifiedMod, error) {
	profile, err := r.profiles.GetProfile(profileID)
	if err != nil {
		return nil, err
	}

	onDisk := make(map[string]bool)
	diskFiles := ListPluginFiles(profile.Path)
	for _, f := range diskFiles {
		onDisk[f] = true
	}

	var unified []domain.UnifiedMod
	managed := make(map[string]bool)

	for _, m := range profile.Mods {
		// Entries without a file name were recorded before installation
		// completed; they have nothing on disk to reconcile against.
		if m.File == "" {
			continue
		}
		managed[m.File] = true
		if !onDisk[m.File] {
			continue
		}
		unified = append(unified, domain.UnifiedMod{
			Source:  domain.SourceManaged,
			ModID:   m.ModID,
			Version: m.Version,
			File:    m.File,
		})
	}

	for _, f := range diskFiles {
		if managed[f] {
			continue
		}
		unified = append(unified, domain.UnifiedMod{
			Source: domain.SourceCustom,
			File:   f,
		})
	}

	return unified, nil
}

// DeleteEntry deletes the backing file of a unified entry, and for managed
// entries also drops the tracked record. Custom files were never tracked, so
// deleting one leaves the profile record untouched.
func (r *Reconciler) DeleteEntry(profileID string, entry domain.UnifiedMod) error {
	profile, err := r.profiles.GetProfile(profileID)
	if err != nil {
		return err
	}

	if err := r.installer.RemoveMod(entry.File, profile.Path); err != nil {
		return err
	}

	if entry.Source == domain.SourceManaged {
		if err := r.profiles.RemoveModEntry(profileID, entry.ModID); err != nil {
			return err
		}
	}

	r.log.Infow("deleted plugin", "profile", profileID, "file", entry.File, "source", entry.Source)
	return nil
}
