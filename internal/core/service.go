package core

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"

	"nova/internal/domain"
	"nova/internal/registry"
	"nova/internal/storage/cache"
	"nova/internal/storage/config"
	"nova/internal/storage/store"
)

// Service wires the store, registry client and managers together and
// orchestrates the install pipeline end to end.
type Service struct {
	cfg      *config.Config
	store    *store.Store
	registry *registry.Client

	archive    *cache.Cache // nil when runtime caching is disabled
	profiles   *ProfileManager
	settings   *SettingsManager
	installer  *Installer
	resolver   *Resolver
	reconciler *Reconciler
	preparer   *RuntimePreparer
	tracker    *ProgressTracker

	log *zap.SugaredLogger
}

// NewService constructs the service from application configuration.
func NewService(cfg *config.Config, log *zap.SugaredLogger) (*Service, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	st, err := store.Load(cfg.StorePath())
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	httpClient := &http.Client{
		Timeout: cfg.RequestTimeout,
		Transport: &http.Transport{
			DialContext:         (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
			TLSHandshakeTimeout: cfg.ConnectTimeout,
		},
	}
	reg := registry.NewClient(httpClient, cfg.RegistryURL, cfg.UserAgent)
	fetcher := NewFetcher(httpClient)

	profiles := NewProfileManager(st, cfg.ProfilesDir(), log)
	settings := NewSettingsManager(st, domain.Settings{
		BepInExURL: config.DefaultBepInExURL,
		BepInExVer: config.DefaultBepInExVer,
	})
	installer := NewInstaller(reg, fetcher, log)
	tracker := NewProgressTracker()

	var archiveCache *cache.Cache
	if cfg.CacheRuntime {
		archiveCache = cache.New(cfg.CacheDir())
	}

	return &Service{
		cfg:        cfg,
		store:      st,
		registry:   reg,
		archive:    archiveCache,
		profiles:   profiles,
		settings:   settings,
		installer:  installer,
		resolver:   NewResolver(reg, log),
		reconciler: NewReconciler(profiles, installer, log),
		preparer:   NewRuntimePreparer(fetcher, profiles, tracker, archiveCache, log),
		tracker:    tracker,
		log:        log,
	}, nil
}

// CreateProfile creates a profile and fires runtime provisioning in the
// background, returning the provisioning handle alongside the profile. The
// new profile is persisted before the preparer starts, so the preparer's later
// record update is ordered after this write. The creation call itself never
// blocks on the download; callers wait on the handle when they need the
// profile launchable.
func (s *Service) CreateProfile(name string, progressFn ProgressFunc) (*domain.Profile, *Preparation, error) {
	profile, err := s.profiles.CreateProfile(name)
	if err != nil {
		return nil, nil, err
	}

	prep, err := s.provision(profile, progressFn)
	if err != nil {
		return nil, nil, err
	}

	return profile, prep, nil
}

// ImportProfile creates a profile from an exported document and fires runtime
// provisioning for it, exactly as CreateProfile does for a fresh profile. The
// returned install requests still go through the normal install pipeline.
func (s *Service) ImportProfile(data []byte, progressFn ProgressFunc) (*domain.Profile, []InstallRequest, *Preparation, error) {
	profile, requests, err := s.profiles.ImportProfile(data)
	if err != nil {
		return nil, nil, nil, err
	}

	prep, err := s.provision(profile, progressFn)
	if err != nil {
		return nil, nil, nil, err
	}

	return profile, requests, prep, nil
}

func (s *Service) provision(profile *domain.Profile, progressFn ProgressFunc) (*Preparation, error) {
	settings, err := s.settings.Get()
	if err != nil {
		return nil, err
	}

	return s.preparer.PrepareAsync(PrepareRequest{
		ProfileID:      profile.ID,
		ProfilePath:    profile.Path,
		ArchiveURL:     settings.BepInExURL,
		ArchiveVersion: settings.BepInExVer,
	}, progressFn), nil
}

// InstallMod installs one mod version into a profile and commits the managed
// entry. The file write and the record commit are two explicit steps; a
// failure between them leaves an untracked file that reconciliation surfaces
// as custom.
func (s *Service) InstallMod(ctx context.Context, profileID, modID, version string) (string, error) {
	profile, err := s.profiles.GetProfile(profileID)
	if err != nil {
		return "", err
	}

	fileName, err := s.installer.InstallMod(ctx, modID, version, profile.Path)
	if err != nil {
		return "", err
	}

	if err := s.profiles.AddMod(profileID, domain.ManagedMod{
		ModID:   modID,
		Version: version,
		File:    fileName,
	}); err != nil {
		return "", fmt.Errorf("recording installed mod: %w", err)
	}

	return fileName, nil
}

// InstallModWithDependencies resolves the declared dependencies of the
// requested version, installs each resolved dependency (best-effort, one
// failure does not stop the rest), then installs the requested mod itself.
func (s *Service) InstallModWithDependencies(ctx context.Context, profileID, modID, version string) ([]domain.ResolvedDependency, error) {
	info, err := s.registry.GetVersionInfo(ctx, modID, version)
	if err != nil {
		return nil, err
	}

	resolved := s.resolver.ResolveDependencies(ctx, info.Dependencies)
	for _, dep := range resolved {
		if _, err := s.InstallMod(ctx, profileID, dep.ModID, dep.ResolvedVersion); err != nil {
			s.log.Warnw("dependency install failed", "mod_id", dep.ModID, "version", dep.ResolvedVersion, "error", err)
		}
	}

	if _, err := s.InstallMod(ctx, profileID, modID, version); err != nil {
		return resolved, err
	}

	return resolved, nil
}

// LatestVersion resolves the newest published version of a mod.
func (s *Service) LatestVersion(ctx context.Context, modID string) (string, error) {
	resolved, err := s.resolver.resolveOne(ctx, domain.Dependency{ModID: modID})
	if err != nil {
		return "", err
	}
	return resolved.ResolvedVersion, nil
}

// ModUpdate describes a newer registry version available for a managed mod.
type ModUpdate struct {
	ModID          string
	CurrentVersion string
	LatestVersion  string
}

// CheckUpdates compares each managed mod of a profile against the newest
// registry version. Mods whose version list cannot be fetched are skipped.
func (s *Service) CheckUpdates(ctx context.Context, profileID string) ([]ModUpdate, error) {
	profile, err := s.profiles.GetProfile(profileID)
	if err != nil {
		return nil, err
	}

	var updates []ModUpdate
	for _, m := range profile.Mods {
		resolved, err := s.resolver.resolveOne(ctx, domain.Dependency{ModID: m.ModID})
		if err != nil {
			s.log.Warnw("update check skipped", "mod_id", m.ModID, "error", err)
			continue
		}
		if resolved.ResolvedVersion != m.Version {
			updates = append(updates, ModUpdate{
				ModID:          m.ModID,
				CurrentVersion: m.Version,
				LatestVersion:  resolved.ResolvedVersion,
			})
		}
	}

	return updates, nil
}

// ClearRuntimeCache drops the cached runtime archive for the currently
// configured runtime version. A no-op when caching is disabled.
func (s *Service) ClearRuntimeCache() error {
	if s.archive == nil {
		return nil
	}
	settings, err := s.settings.Get()
	if err != nil {
		return err
	}
	return s.archive.Clear(settings.BepInExVer)
}

// Profiles returns the profile manager.
func (s *Service) Profiles() *ProfileManager { return s.profiles }

// Settings returns the settings manager.
func (s *Service) Settings() *SettingsManager { return s.settings }

// Reconciler returns the reconciliation engine.
func (s *Service) Reconciler() *Reconciler { return s.reconciler }

// Registry returns the remote registry client.
func (s *Service) Registry() *registry.Client { return s.registry }

// Progress returns the tracker of in-flight runtime preparations.
func (s *Service) Progress() *ProgressTracker { return s.tracker }

// Preparer returns the runtime environment preparer.
func (s *Service) Preparer() *RuntimePreparer { return s.preparer }
