package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/glorpus-work/woezel/internal/logger"
	"github.com/glorpus-work/woezel/pkg/fsutil"
	"github.com/glorpus-work/woezel/pkg/orchestrator"
	"github.com/spf13/cobra"
)

type installOptions struct {
	installPath string
	listFiles   []string
	debug       bool
	force       bool
}

// NewInstallCmd creates the install command.
func NewInstallCmd() *cobra.Command {
	var opts installOptions

	cmd := &cobra.Command{
		Use:   "install [flags] PACKAGE...",
		Short: "Install packages",
		Long: `Install one or more packages from the hatchery index.
Dependencies declared by a package are installed after it, breadth first.
A package whose installed version is already the latest stops the run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.installPath, "path", "p", "", "Install root (defaults to config install_path)")
	cmd.Flags().StringArrayVarP(&opts.listFiles, "requirement", "r", nil, "Install packages listed in FILE, one per line")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Print the install queue and debug output")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Reinstall packages that are already at the latest version")

	return cmd
}

func runInstall(cmd *cobra.Command, args []string, opts installOptions) error {
	var packages []string
	for _, listFile := range opts.listFiles {
		listed, err := readPackageList(listFile)
		if err != nil {
			return err
		}
		packages = append(packages, listed...)
	}
	packages = append(packages, args...)

	if len(packages) == 0 {
		return cmd.Help()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.debug {
		cfg.Settings.LogLevel = "debug"
		initLogger(cfg)
	}

	installRoot := cfg.Settings.InstallPath
	if opts.installPath != "" {
		installRoot = fsutil.ExpandHome(opts.installPath)
	}

	out := cmd.OutOrStdout()
	events := orchestrator.Hooks{OnEvent: func(e orchestrator.Event) {
		printEvent(out, e)
	}}

	orch, err := loadOrchestrator(cfg, events)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "Installing to: %s\n", installRoot)
	return orch.Install(cmd.Context(), packages, orchestrator.InstallOptions{
		InstallRoot:    installRoot,
		ForceReinstall: opts.force,
	})
}

func printEvent(w io.Writer, e orchestrator.Event) {
	switch e.Phase {
	case "resolving":
		_, _ = fmt.Fprintf(w, "Installing %s\n", e.ID)
	case "removing":
		_, _ = fmt.Fprintf(w, "Removing previous rev. %s\n", e.Msg)
	case "installing":
		_, _ = fmt.Fprintf(w, "Installing %s rev. %s\n", e.ID, e.Msg)
	case "dependencies":
		_, _ = fmt.Fprintf(w, "Dependencies of %s: %s\n", e.ID, e.Msg)
	case "error":
		logger.Debug("install aborted", logger.Fields{"package": e.ID, "error": e.Msg})
	}
}

// readPackageList reads package names from a requirements file. Lines
// starting with # and blank lines are skipped.
func readPackageList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open package list: %w", err)
	}
	defer f.Close()

	var packages []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		packages = append(packages, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read package list %s: %w", path, err)
	}
	return packages, nil
}
