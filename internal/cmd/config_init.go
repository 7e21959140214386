package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/polyseam/cndi/internal/config"
	oerrors "github.com/polyseam/cndi/internal/errors"
)

// NewConfigInitCmd creates the config init command.
func NewConfigInitCmd(g *GlobalConfig) *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "init",
		Short: "Initialize default configuration",
		Long: `Initialize the cndi CLI configuration.

Creates ~/.cndi/config.yaml (or the path given by --config / CNDI_CONFIG)
with the default values:
  - templates.baseURL   where bare template names are fetched from
  - fetch.timeout       bound for every remote fetch
  - prompt.maxAttempts  re-prompts after a failed validation
  - log.timestamps      timestamps in log output

Examples:
  # Initialize configuration
  cndi config init

  # Overwrite existing configuration
  cndi config init --force`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return exitError(runConfigInit(c, g, force))
		},
	}

	c.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return c
}

func runConfigInit(c *cobra.Command, g *GlobalConfig, force bool) error {
	path, err := g.configPath()
	if err != nil {
		return oerrors.Wrap(oerrors.ErrNotFound, "could not determine config path")
	}

	exists, err := config.ConfigFileExists(path)
	if err != nil {
		return fmt.Errorf("checking config file: %w", err)
	}
	if exists && !force {
		return &oerrors.DetailError{
			Type:     "validation failed",
			Message:  "configuration already exists",
			Location: path,
			Hint:     "Use --force to overwrite existing configuration.",
			Cause:    oerrors.ErrValidation,
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fileError("creating config directory", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(config.DefaultConfigYAML), 0o600); err != nil {
		return fileError("writing config", path, err)
	}

	fmt.Fprintln(c.OutOrStdout(), "Configuration initialized at "+path)
	fmt.Fprintln(c.OutOrStdout(), "Validate with: cndi config vet")
	return nil
}
