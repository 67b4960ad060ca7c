package core_test

import (
	"testing"

	"nova/internal/core"
	"nova/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestProfileManager_ExportProfile(t *testing.T) {
	pm := newProfileManager(t)
	profile, err := pm.CreateProfile("Shareable")
	require.NoError(t, err)

	require.NoError(t, pm.AddMod(profile.ID, domain.ManagedMod{ModID: "reactor", Version: "2.0.0", File: "Reactor.dll"}))
	require.NoError(t, pm.AddMod(profile.ID, domain.ManagedMod{ModID: "town-of-stars", Version: "1.2.0", File: "TownOfStars.dll"}))

	data, err := pm.ExportProfile(profile.ID)
	require.NoError(t, err)

	var exported core.ExportedProfile
	require.NoError(t, yaml.Unmarshal(data, &exported))

	assert.Equal(t, "Shareable", exported.Name)
	require.Len(t, exported.Mods, 2)
	assert.Equal(t, core.ExportedModEntry{ModID: "reactor", Version: "2.0.0"}, exported.Mods[0])
	// Local state like file names and paths must not leak into the document
	assert.NotContains(t, string(data), "Reactor.dll")
	assert.NotContains(t, string(data), profile.Path)
}

func TestProfileManager_ImportProfile(t *testing.T) {
	pm := newProfileManager(t)

	doc := `name: Imported
mods:
  - mod_id: reactor
    version: 2.0.0
  - mod_id: town-of-stars
    version: 1.2.0
`
	profile, requests, err := pm.ImportProfile([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "Imported", profile.Name)
	require.Len(t, requests, 2)
	assert.Equal(t, core.InstallRequest{ModID: "reactor", Version: "2.0.0"}, requests[0])

	// The profile exists but nothing was downloaded into it
	got, err := pm.GetProfile(profile.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Mods)
}

func TestProfileManager_ImportProfile_NameCollision(t *testing.T) {
	pm := newProfileManager(t)
	_, err := pm.CreateProfile("Taken")
	require.NoError(t, err)

	_, _, err = pm.ImportProfile([]byte("name: taken\nmods: []\n"))
	assert.ErrorIs(t, err, domain.ErrProfileExists)
}

func TestProfileManager_ImportProfile_Malformed(t *testing.T) {
	pm := newProfileManager(t)
	_, _, err := pm.ImportProfile([]byte("{not yaml"))
	assert.Error(t, err)
}
