package hooks

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/woezel/pkg/errors"
)

// HookFileExtension is the extension of hook scripts on disk.
const HookFileExtension = ".tengo"

// Registry accepts hooks. TengoExecutor implements it.
type Registry interface {
	AddHook(hook Hook) error
}

// LoadHooksFromDir registers every <hook-type>.tengo file in dir. A missing
// directory is not an error; unknown hook names are skipped.
func LoadHooksFromDir(registry Registry, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "failed to read hooks directory %s", dir)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != HookFileExtension {
			continue
		}

		hookType := HookType(strings.TrimSuffix(entry.Name(), HookFileExtension))
		if !hookType.Valid() {
			continue
		}

		hookPath := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(hookPath)
		if err != nil {
			return errors.Wrapf(err, "error reading hooks file %s", hookPath)
		}

		if err := registry.AddHook(Hook{Type: hookType, Content: string(content)}); err != nil {
			return errors.Wrapf(err, "error adding hooks %s", hookType)
		}
	}

	return nil
}

// HookTemplate generates a template for a hooks script.
func HookTemplate(hookType HookType) string {
	switch hookType {
	case PreInstall:
		return `// Pre-install hook
// Runs after the package metadata is resolved, before any file is written.
// Available variables:
// - packageName: string - name of the package being installed
// - packageVersion: string - version about to be installed
// - packagePath: string - directory the package is extracted into
// - installPath: string - the install root
// - previousVersion: string - installed version being replaced, or ""
// - transition: string - install, upgrade, downgrade, reinstall or replace
//
// Assign a message to err to abort the install of this package:
/*
err := ""
if packageName == "forbidden" {
    err = "refusing to install " + packageName
}
*/`

	case PostInstall:
		return `// Post-install hook
// Runs after the package files and its version file are written.
// Available variables: same as the pre-install hook
//
// A failing post-install hook is reported but does not fail the install.
/*
fmt := import("fmt")
fmt.println("installed ", packageName, " ", packageVersion)
*/`

	default:
		return "// Unknown hooks type: " + string(hookType)
	}
}
