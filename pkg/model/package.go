// Package model provides the typed records exchanged with the package index
// and stored in the install tree.
package model

import (
	"encoding/json"
	"fmt"
	"io"
	"path"

	"github.com/glorpus-work/woezel/pkg/errors"
)

// PackageMetadata is the index document describing one package.
type PackageMetadata struct {
	Info     PackageInfo                    `json:"info"`
	Releases map[string][]ReleaseDescriptor `json:"releases"`
}

// PackageInfo holds the package-level fields of PackageMetadata.
type PackageInfo struct {
	Name        string `json:"name,omitempty"`
	Version     string `json:"version"`
	Summary     string `json:"summary,omitempty"`
	Description string `json:"description,omitempty"`
}

// ReleaseDescriptor points at the downloadable artifact of one version.
type ReleaseDescriptor struct {
	URL          string `json:"url"`
	Size         int64  `json:"size,omitempty"`
	MD5Digest    string `json:"md5_digest,omitempty"`
	SHA256Digest string `json:"sha256_digest,omitempty"`
}

// Filename returns the basename of the release URL.
func (r ReleaseDescriptor) Filename() string {
	return path.Base(r.URL)
}

// PackageSummary is one entry of a basket listing or search result.
type PackageSummary struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Revision    string `json:"revision"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}

// LatestVersion returns info.version.
func (m *PackageMetadata) LatestVersion() string {
	return m.Info.Version
}

// Validate checks the fields every consumer relies on.
func (m *PackageMetadata) Validate() error {
	if m.Info.Version == "" {
		return errors.Kindf(errors.ErrProtocol, "metadata has no info.version")
	}
	return nil
}

// Artifact returns the single release descriptor of ver. Zero or several
// artifacts for one version break the index contract.
func (m *PackageMetadata) Artifact(ver string) (ReleaseDescriptor, error) {
	releases := m.Releases[ver]
	if len(releases) != 1 {
		return ReleaseDescriptor{}, errors.Kindf(errors.ErrInvalidMetadata,
			"expected exactly one release artifact for version %s, got %d", ver, len(releases))
	}
	if releases[0].URL == "" {
		return ReleaseDescriptor{}, errors.Kindf(errors.ErrInvalidMetadata, "release %s has no url", ver)
	}
	return releases[0], nil
}

// Validate checks that a summary identifies a package.
func (s PackageSummary) Validate() error {
	if s.Slug == "" {
		return errors.Kindf(errors.ErrProtocol, "package summary %q has no slug", s.Name)
	}
	return nil
}

// DecodeMetadata parses and validates a PackageMetadata document.
func DecodeMetadata(r io.Reader) (*PackageMetadata, error) {
	var meta PackageMetadata
	if err := json.NewDecoder(r).Decode(&meta); err != nil {
		return nil, errors.Join(errors.ErrProtocol, fmt.Errorf("decoding metadata: %w", err))
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	return &meta, nil
}

// DecodeSummaries parses and validates a list of PackageSummary entries.
func DecodeSummaries(r io.Reader) ([]PackageSummary, error) {
	var summaries []PackageSummary
	if err := json.NewDecoder(r).Decode(&summaries); err != nil {
		return nil, errors.Join(errors.ErrProtocol, fmt.Errorf("decoding package list: %w", err))
	}
	for _, s := range summaries {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	return summaries, nil
}
