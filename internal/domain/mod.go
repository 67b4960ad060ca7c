package domain

// ModSource tags a unified entry with its provenance.
type ModSource string

const (
	SourceManaged ModSource = "managed" // tracked in the profile record and present on disk
	SourceCustom  ModSource = "custom"  // present on disk only, never tracked
)

// UnifiedMod is one reconciled plugin file in a profile.
// Managed entries carry ModID and Version; custom entries only File.
type UnifiedMod struct {
	Source  ModSource
	ModID   string
	Version string
	File    string
}

// Dependency is one declared dependency of a mod version.
type Dependency struct {
	ModID             string `json:"mod_id"`
	VersionConstraint string `json:"version_constraint"`
	Type              string `json:"type"`
}

// ResolvedDependency is a dependency with its display name and the concrete
// version picked for installation.
type ResolvedDependency struct {
	Dependency
	ModName         string
	ResolvedVersion string
}

// Stage identifies a phase of runtime environment preparation.
type Stage string

const (
	StageDownloading Stage = "downloading"
	StageExtracting  Stage = "extracting"
	StageComplete    Stage = "complete"
)

// ProgressEvent reports staged progress for one in-flight preparation.
// Progress is in [0,1].
type ProgressEvent struct {
	Stage    Stage
	Progress float64
	Message  string
}
