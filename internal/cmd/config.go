package cmd

import (
	"github.com/spf13/cobra"

	"github.com/polyseam/cndi/internal/config"
)

// NewConfigCmd creates the config command group.
func NewConfigCmd(g *GlobalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  `Configuration management for the cndi CLI.`,
	}

	c.AddCommand(NewConfigInitCmd(g))
	c.AddCommand(NewConfigVetCmd(g))

	return c
}

// configPath returns the config file path chosen by --config, CNDI_CONFIG
// or the default, with ~ expanded.
func (g *GlobalConfig) configPath() (string, error) {
	path := ""
	if g != nil && g.Resolved != nil {
		path = g.Resolved.ConfigPath.Value
	}
	if path == "" {
		var err error
		path, err = config.GetConfigFile()
		if err != nil {
			return "", err
		}
	}
	return config.ExpandPath(path)
}
