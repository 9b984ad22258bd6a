// Package hooks runs user supplied Tengo scripts around package installs.
package hooks

import "context"

// HookType represents the type of hooks.
type HookType string

// Supported hooks types.
const (
	PreInstall  HookType = "pre-install"
	PostInstall HookType = "post-install"
)

// Valid reports whether t is a supported hook type.
func (t HookType) Valid() bool {
	switch t {
	case PreInstall, PostInstall:
		return true
	}
	return false
}

// Hook represents a hooks script with its type and content.
type Hook struct {
	Type    HookType
	Content string
}

// HookContext contains information passed to hooks.
type HookContext struct {
	PackageName    string
	PackageVersion string
	PackagePath    string // the package directory under the install root
	InstallPath    string // the install root
	Vars           map[string]interface{} // extra script globals, e.g. previousVersion
}

// Runner executes hook scripts. TengoExecutor implements it.
type Runner interface {
	Execute(ctx context.Context, hookType HookType, hctx HookContext) error
	HasScript(hookType HookType) bool
}
