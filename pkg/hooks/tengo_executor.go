package hooks

import (
	"context"
	"fmt"
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/glorpus-work/woezel/pkg/errors"
)

// maxAllocs bounds the objects a single hook run may allocate.
const maxAllocs = 1 << 20

// TengoExecutor handles the execution of Tengo scripts.
type TengoExecutor struct {
	scripts map[HookType]string
	mutex   sync.RWMutex
}

var _ Runner = (*TengoExecutor)(nil)

// NewTengoExecutor creates a new Tengo script executor.
func NewTengoExecutor() *TengoExecutor {
	return &TengoExecutor{
		scripts: make(map[HookType]string),
	}
}

// Execute runs the script registered for hookType, if any. A script reports
// failure by assigning a non-empty string or an error value to err.
func (e *TengoExecutor) Execute(ctx context.Context, hookType HookType, hctx HookContext) error {
	e.mutex.RLock()
	script, exists := e.scripts[hookType]
	e.mutex.RUnlock()
	if !exists {
		return nil
	}

	scriptInstance := tengo.NewScript([]byte(script))
	scriptInstance.SetImports(stdlib.GetModuleMap("fmt", "os", "text", "times", "json"))
	scriptInstance.SetMaxAllocs(maxAllocs)

	vars := map[string]interface{}{
		"packageName":    hctx.PackageName,
		"packageVersion": hctx.PackageVersion,
		"packagePath":    hctx.PackagePath,
		"installPath":    hctx.InstallPath,
	}
	for k, v := range hctx.Vars {
		vars[k] = v
	}
	for k, v := range vars {
		if err := scriptInstance.Add(k, v); err != nil {
			return fmt.Errorf("failed to add variable '%s' to script: %w", k, err)
		}
	}

	compiled, err := scriptInstance.RunContext(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", hookType, errors.ErrHookExecution, err)
	}

	switch v := compiled.Get("err").Value().(type) {
	case error:
		return fmt.Errorf("%s: %w: %w", hookType, errors.ErrHookScript, v)
	case string:
		if v != "" {
			return fmt.Errorf("%s: %w: %s", hookType, errors.ErrHookScript, v)
		}
	}
	return nil
}

// AddScript adds or updates a script for the specified hooks type.
func (e *TengoExecutor) AddScript(hookType HookType, script string) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.scripts[hookType] = script
}

// AddHook registers a hook, rejecting unknown types.
func (e *TengoExecutor) AddHook(hook Hook) error {
	if hook.Type == "" {
		return ErrHookTypeEmpty
	}
	if !hook.Type.Valid() {
		return ErrUnsupportedHookType(string(hook.Type))
	}
	e.AddScript(hook.Type, hook.Content)
	return nil
}

// HasScript checks if a script exists for the specified hooks type.
func (e *TengoExecutor) HasScript(hookType HookType) bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	_, exists := e.scripts[hookType]
	return exists
}
