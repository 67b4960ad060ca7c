package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"nova/internal/domain"
)

// PluginsDir returns the plugin directory inside a profile tree.
func PluginsDir(profilePath string) string {
	return filepath.Join(profilePath, "BepInEx", "plugins")
}

// InstallRequest names one (mod, version) pair to install.
type InstallRequest struct {
	ModID   string
	Version string
}

// Installer writes verified mod artifacts into a profile's plugin directory.
// It does not touch the profile record: callers commit the returned file name
// themselves, keeping file-write and metadata-commit separately failable.
type Installer struct {
	registry Registry
	fetcher  *Fetcher
	log      *zap.SugaredLogger
}

// NewInstaller creates an installer. A nil logger disables logging.
func NewInstaller(reg Registry, fetcher *Fetcher, log *zap.SugaredLogger) *Installer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Installer{registry: reg, fetcher: fetcher, log: log}
}

// InstallMod installs one mod version into the profile at profilePath and
// returns the installed file name. On download or checksum failure nothing is
// written. An existing file of the same name is overwritten.
func (i *Installer) InstallMod(ctx context.Context, modID, version, profilePath string) (string, error) {
	info, err := i.registry.GetVersionInfo(ctx, modID, version)
	if err != nil {
		return "", err
	}

	data, err := i.fetcher.FetchVerified(ctx, info.DownloadURL, info.Checksum)
	if err != nil {
		return "", err
	}

	pluginsDir := PluginsDir(profilePath)
	if err := os.MkdirAll(pluginsDir, 0755); err != nil {
		return "", fmt.Errorf("creating plugins dir: %w", err)
	}

	destPath := filepath.Join(pluginsDir, info.FileName)
	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", info.FileName, err)
	}

	i.log.Infow("installed mod", "mod_id", modID, "version", version, "file", info.FileName)
	return info.FileName, nil
}

// InstallMods installs requests sequentially, bounding resource usage and
// keeping the result order deterministic. The first failure fails the whole
// batch; callers needing partial-success semantics call InstallMod per item.
func (i *Installer) InstallMods(ctx context.Context, requests []InstallRequest, profilePath string) ([]string, error) {
	files := make([]string, 0, len(requests))
	for _, req := range requests {
		file, err := i.InstallMod(ctx, req.ModID, req.Version, profilePath)
		if err != nil {
			return nil, fmt.Errorf("installing %s@%s: %w", req.ModID, req.Version, err)
		}
		files = append(files, file)
	}
	return files, nil
}

// RemoveMod deletes fileName from the profile's plugin directory.
// Removing an already-absent file is reported as ErrFileNotFound rather than
// silently succeeding: deletions are explicit user actions.
func (i *Installer) RemoveMod(fileName, profilePath string) error {
	path := filepath.Join(PluginsDir(profilePath), fileName)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", domain.ErrFileNotFound, fileName)
		}
		return fmt.Errorf("removing %s: %w", fileName, err)
	}
	return nil
}
