//go:generate mockgen -destination=./mocks/orchestrator.go . MetadataFetcher,Opener,ArchiveInstaller,ScriptRunner

package orchestrator

import (
	"context"
	"fmt"
	"io"

	"github.com/glorpus-work/woezel/pkg/archive"
	"github.com/glorpus-work/woezel/pkg/hooks"
	"github.com/glorpus-work/woezel/pkg/model"
)

// MetadataFetcher is the subset of the index client used by the orchestrator.
type MetadataFetcher interface {
	GetMetadata(ctx context.Context, name string) (*model.PackageMetadata, error)
}

// Opener opens release artifact streams.
type Opener interface {
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// ArchiveInstaller extracts a package archive stream below prefix.
type ArchiveInstaller interface {
	InstallArchive(ctx context.Context, r io.Reader, prefix string) (archive.Result, error)
}

// ScriptRunner runs user hook scripts.
type ScriptRunner interface {
	Execute(ctx context.Context, hookType hooks.HookType, hctx hooks.HookContext) error
	HasScript(hookType hooks.HookType) bool
}

// Orchestrator ties the index, transport and archive installer together.
type Orchestrator struct {
	Index     MetadataFetcher
	Transport Opener
	Archive   ArchiveInstaller
	Scripts   ScriptRunner // optional
	Hooks     Hooks        // Hooks for progress and event notifications
}

// Event represents a simple progress notification.
type Event struct {
	Phase string // resolving|removing|installing|dependencies|done|error
	ID    string // package name
	Msg   string
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

// InstallOptions control orchestrator install execution.
type InstallOptions struct {
	InstallRoot    string
	ForceReinstall bool
}

// InstallError aborts a run. Packages installed earlier in the run stay in
// place and the failing package's directory may be partially written.
type InstallError struct {
	Package string
	Err     error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("failed to install %s: %v, packages may be partially installed", e.Package, e.Err)
}

func (e *InstallError) Unwrap() error {
	return e.Err
}
