package core_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"nova/internal/core"
	"nova/internal/domain"
	"nova/internal/storage/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRegistryServer serves a two-mod registry: town-of-stars@1.2.0 depending
// on reactor, which has 1.0.0 and 2.0.0.
func newRegistryServer(t *testing.T) *httptest.Server {
	t.Helper()

	var server *httptest.Server
	mux := http.NewServeMux()

	payloads := map[string][]byte{
		"/dl/TownOfStars.dll": []byte("town of stars build"),
		"/dl/Reactor.dll":     []byte("reactor build"),
	}
	mux.HandleFunc("/dl/", func(w http.ResponseWriter, r *http.Request) {
		payload, ok := payloads[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(payload)
	})

	mux.HandleFunc("/mods/town-of-stars", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"town-of-stars","name":"Town of Stars"}`))
	})
	mux.HandleFunc("/mods/town-of-stars/versions", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"version":"1.2.0","created_at":200},{"version":"1.0.0","created_at":100}]`))
	})
	mux.HandleFunc("/mods/town-of-stars/versions/1.2.0/info", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"file_name": "TownOfStars.dll",
			"checksum": %q,
			"download_url": %q,
			"dependencies": [{"mod_id":"reactor","version_constraint":"^2.0.0"}]
		}`, checksumOf(payloads["/dl/TownOfStars.dll"]), server.URL+"/dl/TownOfStars.dll")
	})

	mux.HandleFunc("/mods/reactor", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"reactor","name":"Reactor"}`))
	})
	mux.HandleFunc("/mods/reactor/versions", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"version":"2.0.0","created_at":200},{"version":"1.0.0","created_at":100}]`))
	})
	mux.HandleFunc("/mods/reactor/versions/2.0.0/info", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"file_name": "Reactor.dll",
			"checksum": %q,
			"download_url": %q
		}`, checksumOf(payloads["/dl/Reactor.dll"]), server.URL+"/dl/Reactor.dll")
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newService(t *testing.T) *core.Service {
	t.Helper()
	server := newRegistryServer(t)

	cfg := &config.Config{
		DataDir:      t.TempDir(),
		RegistryURL:  server.URL,
		UserAgent:    "nova-test",
		CacheRuntime: false,
	}

	svc, err := core.NewService(cfg, nil)
	require.NoError(t, err)
	return svc
}

// pointServiceAtArchive targets the service's runtime settings at a zip
// server, the way a configured installation would be.
func pointServiceAtArchive(t *testing.T, svc *core.Service) {
	t.Helper()
	archive := runtimeArchive(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	t.Cleanup(server.Close)

	require.NoError(t, svc.Settings().Update(func(s *domain.Settings) {
		s.BepInExURL = server.URL
		s.BepInExVer = "6.0.0-test"
	}))
}

func TestService_CreateProfileProvisionsToCompletion(t *testing.T) {
	svc := newService(t)
	pointServiceAtArchive(t, svc)

	var stages []domain.Stage
	profile, prep, err := svc.CreateProfile("Full Flow", func(ev domain.ProgressEvent) {
		stages = append(stages, ev.Stage)
	})
	require.NoError(t, err)
	require.NotNil(t, prep)

	// The create call returned before waiting; the handle carries completion
	require.NoError(t, prep.Wait(context.Background()))

	got, err := svc.Profiles().GetProfile(profile.ID)
	require.NoError(t, err)
	assert.True(t, got.BepInExInstalled)

	_, err = os.Stat(filepath.Join(profile.Path, "BepInEx", "core", "BepInEx.Unity.IL2CPP.dll"))
	assert.NoError(t, err)

	assert.Contains(t, stages, domain.StageDownloading)
	assert.Equal(t, domain.StageComplete, stages[len(stages)-1])
}

func TestService_ImportProfileProvisionsToCompletion(t *testing.T) {
	svc := newService(t)
	pointServiceAtArchive(t, svc)

	doc := "name: Imported Flow\nmods:\n  - mod_id: reactor\n    version: 2.0.0\n"
	profile, requests, prep, err := svc.ImportProfile([]byte(doc), nil)
	require.NoError(t, err)
	require.Len(t, requests, 1)

	require.NoError(t, prep.Wait(context.Background()))

	got, err := svc.Profiles().GetProfile(profile.ID)
	require.NoError(t, err)
	assert.True(t, got.BepInExInstalled)
}

func TestService_CreateProfile_DuplicateFiresNothing(t *testing.T) {
	svc := newService(t)
	pointServiceAtArchive(t, svc)

	_, prep, err := svc.CreateProfile("Original", nil)
	require.NoError(t, err)
	require.NoError(t, prep.Wait(context.Background()))

	_, prep, err = svc.CreateProfile("original", nil)
	assert.ErrorIs(t, err, domain.ErrProfileExists)
	assert.Nil(t, prep)
}

func TestService_InstallModCommitsEntry(t *testing.T) {
	svc := newService(t)
	profile, err := svc.Profiles().CreateProfile("Main")
	require.NoError(t, err)

	fileName, err := svc.InstallMod(context.Background(), profile.ID, "town-of-stars", "1.2.0")
	require.NoError(t, err)
	assert.Equal(t, "TownOfStars.dll", fileName)

	// File on disk and record entry agree
	_, err = os.Stat(filepath.Join(core.PluginsDir(profile.Path), "TownOfStars.dll"))
	require.NoError(t, err)

	got, err := svc.Profiles().GetProfile(profile.ID)
	require.NoError(t, err)
	require.Len(t, got.Mods, 1)
	assert.Equal(t, domain.ManagedMod{ModID: "town-of-stars", Version: "1.2.0", File: "TownOfStars.dll"}, got.Mods[0])
}

func TestService_InstallMod_UnknownProfile(t *testing.T) {
	svc := newService(t)
	_, err := svc.InstallMod(context.Background(), "ghost", "town-of-stars", "1.2.0")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestService_InstallModWithDependencies(t *testing.T) {
	svc := newService(t)
	profile, err := svc.Profiles().CreateProfile("Deps")
	require.NoError(t, err)

	resolved, err := svc.InstallModWithDependencies(context.Background(), profile.ID, "town-of-stars", "1.2.0")
	require.NoError(t, err)

	require.Len(t, resolved, 1)
	assert.Equal(t, "reactor", resolved[0].ModID)
	assert.Equal(t, "2.0.0", resolved[0].ResolvedVersion)

	got, err := svc.Profiles().GetProfile(profile.ID)
	require.NoError(t, err)
	assert.Len(t, got.Mods, 2)

	for _, file := range []string{"TownOfStars.dll", "Reactor.dll"} {
		_, err = os.Stat(filepath.Join(core.PluginsDir(profile.Path), file))
		assert.NoError(t, err, file)
	}
}

func TestService_CheckUpdates(t *testing.T) {
	svc := newService(t)
	profile, err := svc.Profiles().CreateProfile("Stale")
	require.NoError(t, err)

	require.NoError(t, svc.Profiles().AddMod(profile.ID, domain.ManagedMod{ModID: "reactor", Version: "1.0.0", File: "Reactor.dll"}))
	require.NoError(t, svc.Profiles().AddMod(profile.ID, domain.ManagedMod{ModID: "town-of-stars", Version: "1.2.0", File: "TownOfStars.dll"}))

	updates, err := svc.CheckUpdates(context.Background(), profile.ID)
	require.NoError(t, err)

	require.Len(t, updates, 1)
	assert.Equal(t, "reactor", updates[0].ModID)
	assert.Equal(t, "1.0.0", updates[0].CurrentVersion)
	assert.Equal(t, "2.0.0", updates[0].LatestVersion)
}

func TestService_LatestVersion(t *testing.T) {
	svc := newService(t)

	version, err := svc.LatestVersion(context.Background(), "reactor")
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", version)

	_, err = svc.LatestVersion(context.Background(), "unknown")
	assert.Error(t, err)
}
