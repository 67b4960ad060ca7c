package launch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"nova/internal/core"
	"nova/internal/domain"
	"nova/internal/launch"
	"nova/internal/storage/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	moddedSpec  *launch.ModdedSpec
	vanillaExe  string
	startModded error
}

func (r *fakeRunner) StartModded(_ context.Context, spec launch.ModdedSpec) error {
	if r.startModded != nil {
		return r.startModded
	}
	r.moddedSpec = &spec
	return nil
}

func (r *fakeRunner) StartVanilla(_ context.Context, gameExe string) error {
	r.vanillaExe = gameExe
	return nil
}

type launchFixture struct {
	profiles *core.ProfileManager
	settings *core.SettingsManager
	runner   *fakeRunner
	launcher *launch.Launcher
	gameDir  string
}

func newLaunchFixture(t *testing.T) *launchFixture {
	t.Helper()
	dir := t.TempDir()

	st, err := store.Load(filepath.Join(dir, "registry.json"))
	require.NoError(t, err)

	profiles := core.NewProfileManager(st, filepath.Join(dir, "profiles"), nil)
	settings := core.NewSettingsManager(st, domain.Settings{})

	gameDir := filepath.Join(dir, "game")
	require.NoError(t, os.MkdirAll(gameDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(gameDir, "Among Us.exe"), []byte("game"), 0755))
	require.NoError(t, settings.Update(func(s *domain.Settings) { s.GamePath = gameDir }))

	runner := &fakeRunner{}
	return &launchFixture{
		profiles: profiles,
		settings: settings,
		runner:   runner,
		launcher: launch.NewLauncher(profiles, settings, runner, nil),
		gameDir:  gameDir,
	}
}

// provision lays down the runtime files a ready profile would have.
func provision(t *testing.T, fx *launchFixture, profileID, profilePath string) {
	t.Helper()
	loaderPath := filepath.Join(profilePath, "BepInEx", "core", "BepInEx.Unity.IL2CPP.dll")
	require.NoError(t, os.MkdirAll(filepath.Dir(loaderPath), 0755))
	require.NoError(t, os.WriteFile(loaderPath, []byte("loader"), 0644))

	coreclrPath := filepath.Join(profilePath, "dotnet", "coreclr.dll")
	require.NoError(t, os.MkdirAll(filepath.Dir(coreclrPath), 0755))
	require.NoError(t, os.WriteFile(coreclrPath, []byte("clr"), 0644))

	require.NoError(t, fx.profiles.SetRuntimeInstalled(profileID))
}

func TestLauncher_LaunchModded(t *testing.T) {
	fx := newLaunchFixture(t)
	profile, err := fx.profiles.CreateProfile("Ready")
	require.NoError(t, err)
	provision(t, fx, profile.ID, profile.Path)

	require.NoError(t, fx.launcher.LaunchModded(context.Background(), profile.ID))

	require.NotNil(t, fx.runner.moddedSpec)
	spec := *fx.runner.moddedSpec
	assert.Equal(t, filepath.Join(fx.gameDir, "Among Us.exe"), spec.GameExe)
	assert.Equal(t, profile.Path, spec.ProfilePath)
	assert.Equal(t, filepath.Join(profile.Path, "BepInEx", "core", "BepInEx.Unity.IL2CPP.dll"), spec.LoaderPath)
	assert.Equal(t, filepath.Join(profile.Path, "dotnet", "coreclr.dll"), spec.CoreCLRPath)

	// The launch is stamped on the profile
	got, err := fx.profiles.GetProfile(profile.ID)
	require.NoError(t, err)
	assert.NotZero(t, got.LastLaunchedAt)
}

func TestLauncher_LaunchModded_RuntimeNotProvisioned(t *testing.T) {
	fx := newLaunchFixture(t)
	profile, err := fx.profiles.CreateProfile("Pending")
	require.NoError(t, err)

	err = fx.launcher.LaunchModded(context.Background(), profile.ID)
	assert.ErrorIs(t, err, domain.ErrRuntimeNotReady)
	assert.Nil(t, fx.runner.moddedSpec)
}

func TestLauncher_LaunchModded_MissingLoaderFiles(t *testing.T) {
	fx := newLaunchFixture(t)
	profile, err := fx.profiles.CreateProfile("Flagged")
	require.NoError(t, err)

	// Flag says installed but the files are not there
	require.NoError(t, fx.profiles.SetRuntimeInstalled(profile.ID))

	err = fx.launcher.LaunchModded(context.Background(), profile.ID)
	assert.ErrorIs(t, err, domain.ErrRuntimeNotReady)
}

func TestLauncher_LaunchModded_GamePathUnset(t *testing.T) {
	fx := newLaunchFixture(t)
	profile, err := fx.profiles.CreateProfile("NoGame")
	require.NoError(t, err)
	provision(t, fx, profile.ID, profile.Path)

	require.NoError(t, fx.settings.Update(func(s *domain.Settings) { s.GamePath = "" }))

	err = fx.launcher.LaunchModded(context.Background(), profile.ID)
	assert.Error(t, err)
	assert.Nil(t, fx.runner.moddedSpec)
}

func TestLauncher_LaunchModded_GameExeMissing(t *testing.T) {
	fx := newLaunchFixture(t)
	profile, err := fx.profiles.CreateProfile("Moved")
	require.NoError(t, err)
	provision(t, fx, profile.ID, profile.Path)

	require.NoError(t, os.Remove(filepath.Join(fx.gameDir, "Among Us.exe")))

	err = fx.launcher.LaunchModded(context.Background(), profile.ID)
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
}

func TestLauncher_LaunchModded_RunnerFailure(t *testing.T) {
	fx := newLaunchFixture(t)
	profile, err := fx.profiles.CreateProfile("Broken")
	require.NoError(t, err)
	provision(t, fx, profile.ID, profile.Path)

	fx.runner.startModded = errors.New("process refused")

	err = fx.launcher.LaunchModded(context.Background(), profile.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "process refused")
}

func TestLauncher_LaunchVanilla(t *testing.T) {
	fx := newLaunchFixture(t)

	require.NoError(t, fx.launcher.LaunchVanilla(context.Background()))
	assert.Equal(t, filepath.Join(fx.gameDir, "Among Us.exe"), fx.runner.vanillaExe)
}
