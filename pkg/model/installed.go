package model

import (
	"strings"
	"unicode"

	"github.com/glorpus-work/woezel/pkg/errors"
	"github.com/hashicorp/go-version"
)

// ValidatePackageName rejects names that cannot be used as a single
// directory under the install root.
func ValidatePackageName(name string) error {
	switch {
	case name == "":
		return errors.Kindf(errors.ErrProtocol, "empty package name")
	case name == "." || name == "..":
		return errors.Kindf(errors.ErrProtocol, "invalid package name %q", name)
	case strings.ContainsAny(name, "/\\\x00"):
		return errors.Kindf(errors.ErrProtocol, "invalid package name %q: path separator", name)
	case strings.IndexFunc(name, unicode.IsSpace) >= 0:
		return errors.Kindf(errors.ErrProtocol, "invalid package name %q: whitespace", name)
	}
	return nil
}

// InstalledRecord describes a package directory found under the install root.
type InstalledRecord struct {
	Name    string
	Version string // empty when the directory has no version file
	Path    string
}

// HasVersion reports whether a version file was found.
func (r *InstalledRecord) HasVersion() bool {
	return r.Version != ""
}

// GetVersion parses the recorded version. It returns nil for versions that
// are not semantic-version shaped.
func (r *InstalledRecord) GetVersion() *version.Version {
	v, err := version.NewVersion(r.Version)
	if err != nil {
		return nil
	}
	return v
}

// Transition names what replacing one installed version with another does.
type Transition string

const (
	TransitionInstall   Transition = "install"
	TransitionUpgrade   Transition = "upgrade"
	TransitionDowngrade Transition = "downgrade"
	TransitionReinstall Transition = "reinstall"
	// TransitionReplace is used when either version cannot be ordered.
	TransitionReplace Transition = "replace"
)

// ClassifyTransition compares the installed version with the version about to
// be installed. An empty installed version means a fresh install.
func ClassifyTransition(installed, latest string) Transition {
	return (&InstalledRecord{Version: installed}).TransitionTo(latest)
}

// TransitionTo classifies replacing this record with latest.
func (r *InstalledRecord) TransitionTo(latest string) Transition {
	if !r.HasVersion() {
		return TransitionInstall
	}
	if r.Version == latest {
		return TransitionReinstall
	}
	from := r.GetVersion()
	to := (&InstalledRecord{Version: latest}).GetVersion()
	if from == nil || to == nil {
		return TransitionReplace
	}
	switch from.Compare(to) {
	case -1:
		return TransitionUpgrade
	case 1:
		return TransitionDowngrade
	default:
		return TransitionReinstall
	}
}
