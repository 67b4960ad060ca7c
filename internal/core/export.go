package core

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"nova/internal/domain"
)

// ExportedProfile is the portable YAML document for sharing a profile's mod
// list. Paths and timestamps are deliberately omitted; they are local state.
type ExportedProfile struct {
	Name string             `yaml:"name"`
	Mods []ExportedModEntry `yaml:"mods"`
}

// ExportedModEntry pins one mod at the exported version.
type ExportedModEntry struct {
	ModID   string `yaml:"mod_id"`
	Version string `yaml:"version"`
}

// ExportProfile renders a profile's managed mod list as a portable document.
func (pm *ProfileManager) ExportProfile(profileID string) ([]byte, error) {
	profile, err := pm.GetProfile(profileID)
	if err != nil {
		return nil, err
	}

	exported := ExportedProfile{
		Name: profile.Name,
		Mods: make([]ExportedModEntry, len(profile.Mods)),
	}
	for i, m := range profile.Mods {
		exported.Mods[i] = ExportedModEntry{ModID: m.ModID, Version: m.Version}
	}

	data, err := yaml.Marshal(&exported)
	if err != nil {
		return nil, fmt.Errorf("marshaling exported profile: %w", err)
	}
	return data, nil
}

// ImportProfile creates a new profile from an exported document and returns
// it along with the install requests for its mod list. Nothing is downloaded
// here; the caller installs the requests through the normal pipeline so each
// entry gets fetched, verified and committed individually.
func (pm *ProfileManager) ImportProfile(data []byte) (*domain.Profile, []InstallRequest, error) {
	var exported ExportedProfile
	if err := yaml.Unmarshal(data, &exported); err != nil {
		return nil, nil, fmt.Errorf("parsing exported profile: %w", err)
	}

	profile, err := pm.CreateProfile(exported.Name)
	if err != nil {
		return nil, nil, err
	}

	requests := make([]InstallRequest, len(exported.Mods))
	for i, m := range exported.Mods {
		requests[i] = InstallRequest{ModID: m.ModID, Version: m.Version}
	}

	return profile, requests, nil
}
