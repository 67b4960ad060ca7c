package registry

import (
	"fmt"

	"nova/internal/domain"
)

// Mod is the registry's mod summary.
type Mod struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Author      string `json:"author"`
	Description string `json:"description"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
	Downloads   int64  `json:"downloads"`
}

// ExternalLink is a labelled URL attached to a mod's info page.
type ExternalLink struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// ModInfo is the extended mod description.
type ModInfo struct {
	LongDescription string         `json:"long_description"`
	License         string         `json:"license"`
	Links           []ExternalLink `json:"links"`
	Tags            []string       `json:"tags"`
}

// ModVersion is one entry of a mod's version list.
type ModVersion struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Platform  string `json:"platform"`
	Downloads int64  `json:"downloads"`
	CreatedAt int64  `json:"created_at"`
}

// VersionInfo is the install metadata for one mod version.
type VersionInfo struct {
	FileName     string              `json:"file_name"`
	Changelog    string              `json:"changelog"`
	Checksum     string              `json:"checksum"`
	DownloadURL  string              `json:"download_url"`
	Dependencies []domain.Dependency `json:"dependencies"`
}

// NewsItem is one entry of the launcher news feed.
type NewsItem struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// Responses failing these checks are treated as fetch failures, never
// silently coerced.

func (m *Mod) validate() error {
	if m.ID == "" || m.Name == "" {
		return fmt.Errorf("%w: mod summary missing id or name", domain.ErrValidationFailed)
	}
	return nil
}

func (v *ModVersion) validate() error {
	if v.Version == "" {
		return fmt.Errorf("%w: version entry missing version string", domain.ErrValidationFailed)
	}
	return nil
}

func (v *VersionInfo) validate() error {
	if v.FileName == "" {
		return fmt.Errorf("%w: version info missing file_name", domain.ErrValidationFailed)
	}
	if v.Checksum == "" {
		return fmt.Errorf("%w: version info missing checksum", domain.ErrValidationFailed)
	}
	if v.DownloadURL == "" {
		return fmt.Errorf("%w: version info missing download_url", domain.ErrValidationFailed)
	}
	return nil
}

func (n *NewsItem) validate() error {
	if n.Title == "" {
		return fmt.Errorf("%w: news item missing title", domain.ErrValidationFailed)
	}
	return nil
}
