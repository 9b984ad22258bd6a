package cli

import (
	"fmt"
	"io"

	"github.com/glorpus-work/woezel/pkg/model"
	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search for packages",
		Long: `Search the configured basket of the hatchery index.

Without a query, or with "*", every package in the basket is listed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := "*"
			if len(args) == 1 {
				query = args[0]
			}
			return runSearch(cmd, query)
		},
	}

	return cmd
}

func runSearch(cmd *cobra.Command, query string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := loadIndexClient(cfg, loadTransport(cfg))
	packages, err := client.Search(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(packages) == 0 {
		_, _ = fmt.Fprintf(out, "No packages found matching '%s'\n", query)
		return nil
	}
	displayPackages(out, packages)
	return nil
}

func displayPackages(w io.Writer, packages []model.PackageSummary) {
	for _, pkg := range packages {
		_, _ = fmt.Fprintln(w, pkg.Name)
		_, _ = fmt.Fprintf(w, "  Slug:        %s\n", pkg.Slug)
		_, _ = fmt.Fprintf(w, "  Version:     %s\n", pkg.Revision)
		_, _ = fmt.Fprintf(w, "  Description: %s\n", pkg.Description)
	}
}
