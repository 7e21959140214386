package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/polyseam/cndi/internal/config"
	oerrors "github.com/polyseam/cndi/internal/errors"
	"github.com/polyseam/cndi/internal/output"
)

// NewConfigVetCmd creates the config vet command.
func NewConfigVetCmd(g *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "vet",
		Short: "Validate configuration",
		Long: `Validate the cndi CLI configuration file.

Checks performed:
  1. Config file exists at resolved path
  2. Config file is valid YAML with the expected fields
  3. Values are in range (absolute base URL, non-negative timeout)

The config path is resolved using precedence:
  --config flag > CNDI_CONFIG env > ~/.cndi/config.yaml

Examples:
  # Validate default configuration
  cndi config vet

  # Validate custom config path
  cndi config vet --config /path/to/config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return exitError(runConfigVet(c, g))
		},
	}
}

func runConfigVet(c *cobra.Command, g *GlobalConfig) error {
	path, err := g.configPath()
	if err != nil {
		return oerrors.Wrap(oerrors.ErrNotFound, "could not determine config path")
	}

	output.Debug("validating config", "path", path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &oerrors.DetailError{
			Type:     "not found",
			Message:  "configuration file not found",
			Location: path,
			Hint:     "Run 'cndi config init' to create default configuration",
			Cause:    oerrors.ErrNotFound,
		}
	}

	cfg, err := config.NewLoader().Load(path)
	if err != nil {
		return &oerrors.DetailError{
			Type:     "validation failed",
			Message:  err.Error(),
			Location: path,
			Cause:    oerrors.ErrValidation,
		}
	}

	if err := config.Validate(cfg); err != nil {
		return &oerrors.DetailError{
			Type:     "validation failed",
			Message:  strings.TrimSpace(err.Error()),
			Location: path,
			Cause:    oerrors.ErrValidation,
		}
	}

	fmt.Fprintln(c.OutOrStdout(), output.FormatCheckmark("Configuration is valid: "+path))

	if g != nil && g.Resolved != nil {
		tbl := output.NewTable("KEY", "VALUE", "SOURCE").Mute("SOURCE")
		for _, v := range g.Resolved.Values() {
			tbl.Row(v.Key, v.Value, string(v.Source))
		}
		fmt.Fprintln(c.OutOrStdout(), tbl.String())
	}
	return nil
}
