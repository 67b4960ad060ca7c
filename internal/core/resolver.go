package core

import (
	"context"
	"sort"
	"sync"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"nova/internal/domain"
	"nova/internal/registry"
)

// Registry is the subset of the remote registry the core pipeline consumes.
type Registry interface {
	GetMod(ctx context.Context, modID string) (*registry.Mod, error)
	GetModVersions(ctx context.Context, modID string) ([]registry.ModVersion, error)
	GetVersionInfo(ctx context.Context, modID, version string) (*registry.VersionInfo, error)
}

// Resolver picks concrete versions for a mod's declared dependencies.
type Resolver struct {
	registry Registry
	log      *zap.SugaredLogger
}

// NewResolver creates a dependency resolver. A nil logger disables logging.
func NewResolver(reg Registry, log *zap.SugaredLogger) *Resolver {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Resolver{registry: reg, log: log}
}

// ResolveDependencies resolves each declared dependency independently.
// A dependency whose metadata or version list cannot be fetched is logged and
// omitted; it never aborts resolution of its siblings. The result preserves
// the input order of the dependencies that resolved.
func (r *Resolver) ResolveDependencies(ctx context.Context, deps []domain.Dependency) []domain.ResolvedDependency {
	resolved := make([]domain.ResolvedDependency, 0, len(deps))

	for _, dep := range deps {
		entry, err := r.resolveOne(ctx, dep)
		if err != nil {
			r.log.Warnw("skipping unresolvable dependency", "mod_id", dep.ModID, "error", err)
			continue
		}
		resolved = append(resolved, *entry)
	}

	return resolved
}

// resolveOne fetches a dependency's metadata and version list concurrently and
// picks the version to install.
func (r *Resolver) resolveOne(ctx context.Context, dep domain.Dependency) (*domain.ResolvedDependency, error) {
	var (
		wg          sync.WaitGroup
		mod         *registry.Mod
		versions    []registry.ModVersion
		modErr      error
		versionsErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		mod, modErr = r.registry.GetMod(ctx, dep.ModID)
	}()
	go func() {
		defer wg.Done()
		versions, versionsErr = r.registry.GetModVersions(ctx, dep.ModID)
	}()
	wg.Wait()

	if modErr != nil {
		return nil, modErr
	}
	if versionsErr != nil {
		return nil, versionsErr
	}
	if len(versions) == 0 {
		return nil, domain.ErrModNotFound
	}

	// Most recent first; the newest version is the fallback pick.
	sort.SliceStable(versions, func(i, j int) bool {
		return versions[i].CreatedAt > versions[j].CreatedAt
	})

	return &domain.ResolvedDependency{
		Dependency:      dep,
		ModName:         mod.Name,
		ResolvedVersion: pickVersion(versions, dep.VersionConstraint),
	}, nil
}

// pickVersion scans versions (newest first) for the first one satisfying the
// constraint. Constraint satisfaction is best-effort: an absent or wildcard
// constraint, an unparsable constraint, or no satisfying version all fall
// back to the newest version. Unparsable version strings are skipped.
func pickVersion(versions []registry.ModVersion, constraint string) string {
	newest := versions[0].Version
	if constraint == "" || constraint == "*" {
		return newest
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return newest
	}

	for _, v := range versions {
		parsed, err := semver.NewVersion(v.Version)
		if err != nil {
			continue
		}
		if c.Check(parsed) {
			return v.Version
		}
	}

	return newest
}
