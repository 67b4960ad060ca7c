package domain

import "sort"

// ManagedMod is one registry-sourced plugin file tracked against a profile.
// File is the installed file name and joins the entry to disk state.
type ManagedMod struct {
	ModID   string `json:"mod_id"`
	Version string `json:"version"`
	File    string `json:"file,omitempty"`
}

// Profile is a named, filesystem-isolated game installation.
// Path is owned exclusively by this profile and is removed with it.
type Profile struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Path             string       `json:"path"`
	CreatedAt        int64        `json:"created_at"`
	LastLaunchedAt   int64        `json:"last_launched_at,omitempty"`
	BepInExInstalled bool         `json:"bepinex_installed"`
	TotalPlayTime    int64        `json:"total_play_time"`
	Mods             []ManagedMod `json:"mods"`
}

// SortProfiles orders profiles most-recently-launched first, falling back to
// most-recently-created. A profile that was never launched sorts as launched at 0.
func SortProfiles(profiles []Profile) {
	sort.SliceStable(profiles, func(i, j int) bool {
		if profiles[i].LastLaunchedAt != profiles[j].LastLaunchedAt {
			return profiles[i].LastLaunchedAt > profiles[j].LastLaunchedAt
		}
		return profiles[i].CreatedAt > profiles[j].CreatedAt
	})
}

// FindMod returns the managed entry for modID, or -1 if absent.
func (p *Profile) FindMod(modID string) int {
	for i, m := range p.Mods {
		if m.ModID == modID {
			return i
		}
	}
	return -1
}

// Settings holds the user-level settings persisted alongside profiles.
type Settings struct {
	BepInExURL    string `json:"bepinex_url"`
	BepInExVer    string `json:"bepinex_version"`
	GamePath      string `json:"game_path"`
	CloseOnLaunch bool   `json:"close_on_launch"`
	Platform      string `json:"game_platform"`
}
