package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glorpus-work/woezel/internal/logger"
	"github.com/glorpus-work/woezel/pkg/fsutil"
	"github.com/glorpus-work/woezel/pkg/hooks"
	"github.com/spf13/cobra"
)

// NewHookCmd creates the hook command.
func NewHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Manage install hooks",
		Long: `Install hooks are Tengo scripts run around every package install.
They live in the hooks directory next to the config file as <type>.tengo.`,
	}

	cmd.AddCommand(newHookNewCmd())
	return cmd
}

func newHookNewCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:       "new TYPE",
		Short:     "Create a hook script from a template",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(hooks.PreInstall), string(hooks.PostInstall)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHookNew(cmd, hooks.HookType(args[0]), force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing hook script")
	return cmd
}

func runHookNew(cmd *cobra.Command, hookType hooks.HookType, force bool) error {
	if !hookType.Valid() {
		return hooks.ErrUnsupportedHookType(string(hookType))
	}
	dir := hooksDir()
	if dir == "" {
		return fmt.Errorf("cannot determine hooks directory")
	}

	path := filepath.Join(dir, string(hookType)+hooks.HookFileExtension)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("hook script already exists at %s (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(dir, fsutil.DirModeDefault); err != nil {
		return fmt.Errorf("failed to create hooks directory: %w", err)
	}
	if err := fsutil.WriteFileAtomic(path, []byte(hooks.HookTemplate(hookType)+"\n"), fsutil.FileModeDefault); err != nil {
		return fmt.Errorf("failed to write hook script: %w", err)
	}

	logger.Debug("hook script created", logger.Fields{"type": hookType})
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
