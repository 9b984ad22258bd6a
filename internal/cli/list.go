package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/glorpus-work/woezel/internal/logger"
	"github.com/glorpus-work/woezel/pkg/fsutil"
	"github.com/glorpus-work/woezel/pkg/installed"
	"github.com/glorpus-work/woezel/pkg/model"
	"github.com/spf13/cobra"
)

type listOptions struct {
	installPath  string
	nameFilter   string
	checkUpdates bool
}

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed packages",
		Long: `List the packages found under the install root with their installed version.

Use --name to filter packages by name and --check-updates to compare each
package with the latest version on the index.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.installPath, "path", "p", "", "Install root (defaults to config install_path)")
	cmd.Flags().StringVar(&opts.nameFilter, "name", "", "Filter packages by name (partial match)")
	cmd.Flags().BoolVar(&opts.checkUpdates, "check-updates", false, "Query the index for the latest version of each package")

	return cmd
}

func runList(cmd *cobra.Command, opts listOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	root := cfg.Settings.InstallPath
	if opts.installPath != "" {
		root = fsutil.ExpandHome(opts.installPath)
	}

	records, err := installed.Scan(root)
	if err != nil {
		return fmt.Errorf("failed to scan install root: %w", err)
	}

	filtered := records[:0]
	for _, rec := range records {
		if opts.nameFilter == "" || strings.Contains(rec.Name, opts.nameFilter) {
			filtered = append(filtered, rec)
		}
	}

	out := cmd.OutOrStdout()
	if len(filtered) == 0 {
		_, _ = fmt.Fprintln(out, "No packages installed")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, TabWidth, ' ', 0)
	if !opts.checkUpdates {
		_, _ = fmt.Fprintln(tw, "PACKAGE\tVERSION")
		for _, rec := range filtered {
			_, _ = fmt.Fprintf(tw, "%s\t%s\n", rec.Name, displayVersion(rec))
		}
		return tw.Flush()
	}

	client := loadIndexClient(cfg, loadTransport(cfg))
	_, _ = fmt.Fprintln(tw, "PACKAGE\tVERSION\tLATEST\tSTATUS")
	for _, rec := range filtered {
		latest, status := unknownVersion, "unavailable"
		meta, err := client.GetMetadata(cmd.Context(), rec.Name)
		if err != nil {
			logger.Debug("latest version lookup failed", logger.Fields{"package": rec.Name, "error": err})
		} else {
			latest = meta.LatestVersion()
			status = updateStatus(rec, latest)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rec.Name, displayVersion(rec), latest, status)
	}
	return tw.Flush()
}

func displayVersion(rec *model.InstalledRecord) string {
	if !rec.HasVersion() {
		return unknownVersion
	}
	return rec.Version
}

func updateStatus(rec *model.InstalledRecord, latest string) string {
	switch rec.TransitionTo(latest) {
	case model.TransitionReinstall:
		return "up to date"
	case model.TransitionInstall:
		return "unversioned"
	default:
		return "update available"
	}
}
