// Package launch prepares and gates game launches. The process start itself
// is delegated to a Runner; this package only guarantees the preconditions.
package launch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"nova/internal/core"
	"nova/internal/domain"
)

const (
	gameExecutable = "Among Us.exe"
	loaderDLL      = "BepInEx.Unity.IL2CPP.dll"
)

// ModdedSpec carries the resolved paths a Runner needs to start a modded
// session.
type ModdedSpec struct {
	GameExe     string
	ProfilePath string
	LoaderPath  string
	DotnetDir   string
	CoreCLRPath string
}

// Runner starts game processes. The native implementation supervises the
// process; this package never does.
type Runner interface {
	StartModded(ctx context.Context, spec ModdedSpec) error
	StartVanilla(ctx context.Context, gameExe string) error
}

// Launcher validates launch preconditions and records launches.
type Launcher struct {
	profiles *core.ProfileManager
	settings *core.SettingsManager
	runner   Runner
	log      *zap.SugaredLogger
}

// NewLauncher creates a launcher. A nil logger disables logging.
func NewLauncher(profiles *core.ProfileManager, settings *core.SettingsManager, runner Runner, log *zap.SugaredLogger) *Launcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Launcher{profiles: profiles, settings: settings, runner: runner, log: log}
}

// LaunchModded starts the game with a profile's runtime and plugins.
// It refuses to start until the profile's runtime environment is fully
// provisioned, then stamps the profile's last-launched time on success.
func (l *Launcher) LaunchModded(ctx context.Context, profileID string) error {
	profile, err := l.profiles.GetProfile(profileID)
	if err != nil {
		return err
	}

	gameExe, err := l.gameExePath()
	if err != nil {
		return err
	}

	if !profile.BepInExInstalled {
		return fmt.Errorf("%w: installation still in progress for profile %s", domain.ErrRuntimeNotReady, profile.Name)
	}

	spec := ModdedSpec{
		GameExe:     gameExe,
		ProfilePath: profile.Path,
		LoaderPath:  filepath.Join(profile.Path, "BepInEx", "core", loaderDLL),
		DotnetDir:   filepath.Join(profile.Path, "dotnet"),
	}
	spec.CoreCLRPath = filepath.Join(spec.DotnetDir, "coreclr.dll")

	if !fileExists(spec.LoaderPath) {
		return fmt.Errorf("%w: loader DLL missing at %s", domain.ErrRuntimeNotReady, spec.LoaderPath)
	}
	if !fileExists(spec.CoreCLRPath) {
		return fmt.Errorf("%w: dotnet runtime missing at %s", domain.ErrRuntimeNotReady, spec.DotnetDir)
	}

	if err := l.profiles.UpdateLastLaunched(profileID); err != nil {
		return err
	}

	started := time.Now()
	if err := l.runner.StartModded(ctx, spec); err != nil {
		return fmt.Errorf("starting modded session: %w", err)
	}

	// With a supervising runner this is the session length; with a detached
	// runner it is the startup cost, a few milliseconds of noise.
	if elapsed := time.Since(started); elapsed >= time.Second {
		if err := l.profiles.AddPlayTime(profileID, elapsed.Milliseconds()); err != nil {
			return err
		}
	}

	l.log.Infow("launched modded session", "profile", profileID)
	return nil
}

// LaunchVanilla starts the game without any modifications.
func (l *Launcher) LaunchVanilla(ctx context.Context) error {
	gameExe, err := l.gameExePath()
	if err != nil {
		return err
	}

	if err := l.runner.StartVanilla(ctx, gameExe); err != nil {
		return fmt.Errorf("starting vanilla session: %w", err)
	}

	l.log.Info("launched vanilla session")
	return nil
}

// gameExePath resolves and verifies the configured game executable.
func (l *Launcher) gameExePath() (string, error) {
	settings, err := l.settings.Get()
	if err != nil {
		return "", err
	}
	if settings.GamePath == "" {
		return "", fmt.Errorf("game path not configured")
	}

	gameExe := filepath.Join(settings.GamePath, gameExecutable)
	if !fileExists(gameExe) {
		return "", fmt.Errorf("%w: %s", domain.ErrFileNotFound, gameExe)
	}
	return gameExe, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
