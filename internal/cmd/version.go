package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polyseam/cndi/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd(_ *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show cndi version information.

Displays:
  - cndi version, commit, and build date
  - Go version and platform
  - cndi_config.yaml schema version generated by templates`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
			return nil
		},
	}
}
