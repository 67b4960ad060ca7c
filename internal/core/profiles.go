package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"nova/internal/domain"
	"nova/internal/storage/store"
)

const profilesKey = "profiles"

// ProfileManager handles profile CRUD over the persisted store.
//
// Every mutation is a read-modify-write of the whole profiles collection with
// last-save-wins semantics. That is acceptable for a single-user desktop app;
// concurrent mutating calls against the same profile need external
// serialization or one writer's update is lost.
type ProfileManager struct {
	store       *store.Store
	profilesDir string
	log         *zap.SugaredLogger
}

// NewProfileManager creates a profile manager. profilesDir is the directory
// under which per-profile trees are created. A nil logger disables logging.
func NewProfileManager(st *store.Store, profilesDir string, log *zap.SugaredLogger) *ProfileManager {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ProfileManager{store: st, profilesDir: profilesDir, log: log}
}

func (pm *ProfileManager) loadProfiles() ([]domain.Profile, error) {
	var profiles []domain.Profile
	if _, err := pm.store.Get(profilesKey, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (pm *ProfileManager) saveProfiles(profiles []domain.Profile) error {
	if err := pm.store.Set(profilesKey, profiles); err != nil {
		return err
	}
	return pm.store.Save()
}

// GetProfiles returns all profiles, most-recently-launched first with a
// most-recently-created tie-break.
func (pm *ProfileManager) GetProfiles() ([]domain.Profile, error) {
	profiles, err := pm.loadProfiles()
	if err != nil {
		return nil, err
	}
	domain.SortProfiles(profiles)
	return profiles, nil
}

// GetProfile returns the profile with the given ID.
func (pm *ProfileManager) GetProfile(profileID string) (*domain.Profile, error) {
	profiles, err := pm.loadProfiles()
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if profiles[i].ID == profileID {
			return &profiles[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrProfileNotFound, profileID)
}

// CreateProfile creates and persists a new profile with its owned directory.
// Names are unique case-insensitively among existing profiles. The runtime
// environment is NOT provisioned here; callers fire the preparer after this
// returns so creation never blocks on the download.
func (pm *ProfileManager) CreateProfile(name string) (*domain.Profile, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, fmt.Errorf("profile name cannot be empty")
	}

	profiles, err := pm.loadProfiles()
	if err != nil {
		return nil, err
	}

	for _, p := range profiles {
		if strings.EqualFold(p.Name, trimmed) {
			return nil, fmt.Errorf("%w: %s", domain.ErrProfileExists, trimmed)
		}
	}

	timestamp := time.Now().UnixMilli()
	slug := slugify(trimmed)
	if slug == "" {
		slug = "profile"
	}
	profileID := fmt.Sprintf("%s-%d", slug, timestamp)
	profilePath := filepath.Join(pm.profilesDir, profileID)

	if err := os.MkdirAll(profilePath, 0755); err != nil {
		return nil, fmt.Errorf("creating profile directory: %w", err)
	}

	profile := domain.Profile{
		ID:        profileID,
		Name:      trimmed,
		Path:      profilePath,
		CreatedAt: timestamp,
		Mods:      []domain.ManagedMod{},
	}

	profiles = append(profiles, profile)
	if err := pm.saveProfiles(profiles); err != nil {
		return nil, err
	}

	pm.log.Infow("created profile", "id", profileID, "name", trimmed)
	return &profile, nil
}

// DeleteProfile removes a profile and its owned directory tree.
func (pm *ProfileManager) DeleteProfile(profileID string) error {
	profiles, err := pm.loadProfiles()
	if err != nil {
		return err
	}

	idx := -1
	for i := range profiles {
		if profiles[i].ID == profileID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", domain.ErrProfileNotFound, profileID)
	}

	if err := os.RemoveAll(profiles[idx].Path); err != nil {
		return fmt.Errorf("removing profile directory: %w", err)
	}

	profiles = append(profiles[:idx], profiles[idx+1:]...)
	return pm.saveProfiles(profiles)
}

// AddMod upserts a managed mod entry on a profile: one entry per mod ID,
// latest add wins.
func (pm *ProfileManager) AddMod(profileID string, mod domain.ManagedMod) error {
	return pm.mutate(profileID, func(p *domain.Profile) error {
		if i := p.FindMod(mod.ModID); i >= 0 {
			p.Mods[i] = mod
		} else {
			p.Mods = append(p.Mods, mod)
		}
		return nil
	})
}

// RemoveModEntry drops the managed entry for modID from the profile record.
// The backing file is not touched here.
func (pm *ProfileManager) RemoveModEntry(profileID, modID string) error {
	return pm.mutate(profileID, func(p *domain.Profile) error {
		i := p.FindMod(modID)
		if i < 0 {
			return fmt.Errorf("%w: %s", domain.ErrModNotFound, modID)
		}
		p.Mods = append(p.Mods[:i], p.Mods[i+1:]...)
		return nil
	})
}

// UpdateLastLaunched stamps the profile with the current time.
func (pm *ProfileManager) UpdateLastLaunched(profileID string) error {
	return pm.mutate(profileID, func(p *domain.Profile) error {
		p.LastLaunchedAt = time.Now().UnixMilli()
		return nil
	})
}

// AddPlayTime accumulates a measured play session on the profile.
func (pm *ProfileManager) AddPlayTime(profileID string, sessionMillis int64) error {
	if sessionMillis < 0 {
		return fmt.Errorf("session duration cannot be negative")
	}
	return pm.mutate(profileID, func(p *domain.Profile) error {
		p.TotalPlayTime += sessionMillis
		return nil
	})
}

// SetRuntimeInstalled marks the profile's runtime environment as provisioned.
// The collection is reloaded from storage first, so a preparer finishing after
// later profile edits does not clobber them.
func (pm *ProfileManager) SetRuntimeInstalled(profileID string) error {
	if err := pm.store.Reload(); err != nil {
		return err
	}
	return pm.mutate(profileID, func(p *domain.Profile) error {
		p.BepInExInstalled = true
		return nil
	})
}

// ActiveProfile returns the most recently launched profile, or nil when no
// profile has ever been launched.
func (pm *ProfileManager) ActiveProfile() (*domain.Profile, error) {
	profiles, err := pm.GetProfiles()
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if profiles[i].LastLaunchedAt > 0 {
			return &profiles[i], nil
		}
	}
	return nil, nil
}

// mutate applies fn to the named profile inside one load-save cycle.
func (pm *ProfileManager) mutate(profileID string, fn func(*domain.Profile) error) error {
	profiles, err := pm.loadProfiles()
	if err != nil {
		return err
	}

	for i := range profiles {
		if profiles[i].ID == profileID {
			if err := fn(&profiles[i]); err != nil {
				return err
			}
			return pm.saveProfiles(profiles)
		}
	}

	return fmt.Errorf("%w: %s", domain.ErrProfileNotFound, profileID)
}

// slugify lowers input and collapses runs of non-alphanumerics into single
// hyphens, trimming any at the edges.
func slugify(input string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(input) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
