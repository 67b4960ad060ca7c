package core_test

import (
	"context"
	"fmt"
	"testing"

	"nova/internal/core"
	"nova/internal/domain"
	"nova/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRegistry serves canned mods and version lists for resolver tests.
type fakeRegistry struct {
	mods     map[string]*registry.Mod
	versions map[string][]registry.ModVersion
	infos    map[string]*registry.VersionInfo
}

func (f *fakeRegistry) GetMod(_ context.Context, modID string) (*registry.Mod, error) {
	mod, ok := f.mods[modID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrModNotFound, modID)
	}
	return mod, nil
}

func (f *fakeRegistry) GetModVersions(_ context.Context, modID string) ([]registry.ModVersion, error) {
	versions, ok := f.versions[modID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrModNotFound, modID)
	}
	return versions, nil
}

func (f *fakeRegistry) GetVersionInfo(_ context.Context, modID, version string) (*registry.VersionInfo, error) {
	info, ok := f.infos[modID+"@"+version]
	if !ok {
		return nil, fmt.Errorf("%w: %s@%s", domain.ErrModNotFound, modID, version)
	}
	return info, nil
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		mods:     make(map[string]*registry.Mod),
		versions: make(map[string][]registry.ModVersion),
		infos:    make(map[string]*registry.VersionInfo),
	}
}

func (f *fakeRegistry) addMod(id, name string, versions ...registry.ModVersion) {
	f.mods[id] = &registry.Mod{ID: id, Name: name}
	f.versions[id] = versions
}

func TestResolver_ConstraintPicksSatisfyingVersion(t *testing.T) {
	reg := newFakeRegistry()
	reg.addMod("reactor", "Reactor",
		registry.ModVersion{Version: "1.0.0", CreatedAt: 100},
		registry.ModVersion{Version: "1.2.0", CreatedAt: 200},
		registry.ModVersion{Version: "2.0.0", CreatedAt: 300},
	)

	r := core.NewResolver(reg, nil)
	resolved := r.ResolveDependencies(context.Background(), []domain.Dependency{
		{ModID: "reactor", VersionConstraint: "^1.0.0"},
	})

	require.Len(t, resolved, 1)
	assert.Equal(t, "1.2.0", resolved[0].ResolvedVersion)
	assert.Equal(t, "Reactor", resolved[0].ModName)
}

func TestResolver_WildcardPicksNewest(t *testing.T) {
	reg := newFakeRegistry()
	reg.addMod("reactor", "Reactor",
		registry.ModVersion{Version: "1.0.0", CreatedAt: 100},
		registry.ModVersion{Version: "2.0.0", CreatedAt: 300},
		registry.ModVersion{Version: "1.2.0", CreatedAt: 200},
	)

	r := core.NewResolver(reg, nil)

	for _, constraint := range []string{"", "*"} {
		resolved := r.ResolveDependencies(context.Background(), []domain.Dependency{
			{ModID: "reactor", VersionConstraint: constraint},
		})
		require.Len(t, resolved, 1)
		assert.Equal(t, "2.0.0", resolved[0].ResolvedVersion)
	}
}

func TestResolver_UnparsableConstraintFallsBackToNewest(t *testing.T) {
	reg := newFakeRegistry()
	reg.addMod("reactor", "Reactor",
		registry.ModVersion{Version: "1.0.0", CreatedAt: 100},
		registry.ModVersion{Version: "2.0.0", CreatedAt: 200},
	)

	r := core.NewResolver(reg, nil)
	resolved := r.ResolveDependencies(context.Background(), []domain.Dependency{
		{ModID: "reactor", VersionConstraint: "not a constraint"},
	})

	require.Len(t, resolved, 1)
	assert.Equal(t, "2.0.0", resolved[0].ResolvedVersion)
}

func TestResolver_NoSatisfyingVersionFallsBackToNewest(t *testing.T) {
	reg := newFakeRegistry()
	reg.addMod("reactor", "Reactor",
		registry.ModVersion{Version: "1.0.0", CreatedAt: 100},
		registry.ModVersion{Version: "1.2.0", CreatedAt: 200},
	)

	r := core.NewResolver(reg, nil)
	resolved := r.ResolveDependencies(context.Background(), []domain.Dependency{
		{ModID: "reactor", VersionConstraint: "^3.0.0"},
	})

	require.Len(t, resolved, 1)
	assert.Equal(t, "1.2.0", resolved[0].ResolvedVersion)
}

func TestResolver_SkipsUnresolvableDependencies(t *testing.T) {
	reg := newFakeRegistry()
	reg.addMod("a", "A", registry.ModVersion{Version: "1.0.0", CreatedAt: 100})
	reg.addMod("c", "C", registry.ModVersion{Version: "3.0.0", CreatedAt: 100})

	r := core.NewResolver(reg, nil)
	resolved := r.ResolveDependencies(context.Background(), []domain.Dependency{
		{ModID: "a"},
		{ModID: "b"}, // unknown to the registry
		{ModID: "c"},
	})

	// Two of three resolve; input order is preserved
	require.Len(t, resolved, 2)
	assert.Equal(t, "a", resolved[0].ModID)
	assert.Equal(t, "c", resolved[1].ModID)
}

func TestResolver_EmptyVersionListIsNotFound(t *testing.T) {
	reg := newFakeRegistry()
	reg.addMod("hollow", "Hollow")

	r := core.NewResolver(reg, nil)
	resolved := r.ResolveDependencies(context.Background(), []domain.Dependency{
		{ModID: "hollow"},
	})

	assert.Empty(t, resolved)
}

func TestResolver_SkipsUnparsableVersionStrings(t *testing.T) {
	reg := newFakeRegistry()
	reg.addMod("reactor", "Reactor",
		registry.ModVersion{Version: "1.1.0", CreatedAt: 100},
		registry.ModVersion{Version: "nightly-build", CreatedAt: 300},
		registry.ModVersion{Version: "1.2.0", CreatedAt: 200},
	)

	r := core.NewResolver(reg, nil)
	resolved := r.ResolveDependencies(context.Background(), []domain.Dependency{
		{ModID: "reactor", VersionConstraint: "^1.0.0"},
	})

	require.Len(t, resolved, 1)
	assert.Equal(t, "1.2.0", resolved[0].ResolvedVersion)
}
