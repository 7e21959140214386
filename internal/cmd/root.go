package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/polyseam/cndi/internal/config"
	"github.com/polyseam/cndi/internal/output"
	"github.com/polyseam/cndi/internal/template/resolve"
	"github.com/polyseam/cndi/internal/templates"
	"github.com/polyseam/cndi/internal/version"
)

// GlobalConfig holds CLI-wide configuration resolved during PersistentPreRunE.
// It is created once by NewRootCmd and passed into every sub-command
// constructor.
type GlobalConfig struct {
	// Config is the loaded configuration with defaults applied.
	Config *config.Config

	// Resolved records where each configuration value came from.
	Resolved *config.ResolvedConfig

	// Verbose enables debug logging.
	Verbose bool
}

// BaseURL returns the resolved templates base URL.
func (g *GlobalConfig) BaseURL() string {
	if g.Resolved != nil && g.Resolved.TemplatesBaseURL.Value != "" {
		return g.Resolved.TemplatesBaseURL.Value
	}
	return g.config().Templates.BaseURL
}

// FetchTimeout returns the bound for a single remote fetch.
func (g *GlobalConfig) FetchTimeout() time.Duration {
	return g.config().Fetch.Timeout
}

// MaxPromptAttempts returns how often a prompt is re-asked.
func (g *GlobalConfig) MaxPromptAttempts() int {
	return g.config().Prompt.MaxAttempts
}

// NewResolver builds the identifier resolver for a template session.
func (g *GlobalConfig) NewResolver(opts ...resolve.Option) *resolve.Resolver {
	base := []resolve.Option{
		resolve.WithBaseURL(g.BaseURL()),
		resolve.WithTimeout(g.FetchTimeout()),
		resolve.WithBuiltins(templates.Lookup),
		resolve.WithUserAgent(version.Get().UserAgent()),
		resolve.WithLogger(output.Logger()),
	}
	return resolve.New(append(base, opts...)...)
}

func (g *GlobalConfig) config() *config.Config {
	if g == nil || g.Config == nil {
		return config.DefaultConfig()
	}
	return g.Config
}

// NewRootCmd creates the root command for the cndi CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&GlobalConfig{})
}

func newRootCmd(g *GlobalConfig) *cobra.Command {
	var (
		configFlag     string
		baseURLFlag    string
		verboseFlag    bool
		timestampsFlag bool
	)

	rootCmd := &cobra.Command{
		Use:   "cndi",
		Short: "Cloud-Native Data Infrastructure project generator",
		Long: `cndi creates infrastructure projects from declarative templates.

A template asks a few questions and renders:
  - cndi_config.yaml
  - README.md
  - .env
  - any extra files the template declares`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			g.Verbose = verboseFlag
			return initializeGlobals(cmd, g, configFlag, baseURLFlag, timestampsFlag)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to config file (env: CNDI_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "templates-base-url", "", "URL bare template names are fetched from (env: CNDI_TEMPLATES_BASE_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&timestampsFlag, "timestamps", true, "Show timestamps in log output")

	rootCmd.AddCommand(NewCreateCmd(g))
	rootCmd.AddCommand(NewTemplateCmd(g))
	rootCmd.AddCommand(NewConfigCmd(g))
	rootCmd.AddCommand(NewVersionCmd(g))

	return rootCmd
}

// initializeGlobals loads configuration and sets up logging.
func initializeGlobals(cmd *cobra.Command, g *GlobalConfig, configFlag, baseURLFlag string, timestampsFlag bool) error {
	loaded, err := config.NewLoader().LoadWithDefaults(configFlag)
	if err != nil {
		// Commands like `config init` must work with a broken config.
		output.Debug("config load error", "error", err)
		loaded = config.DefaultConfig()
	}
	g.Config = loaded

	resolved, err := config.ResolveAll(config.ResolveAllOptions{
		ConfigFlag:  configFlag,
		BaseURLFlag: baseURLFlag,
		Config:      loaded,
	})
	if err != nil {
		return err
	}
	g.Resolved = resolved

	logCfg := output.LogConfig{Verbose: g.Verbose}
	if cmd.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(timestampsFlag)
	} else if loaded.Log.Timestamps != nil {
		logCfg.Timestamps = loaded.Log.Timestamps
	}
	output.SetupLogging(logCfg)

	if g.Verbose {
		info := version.Get()
		output.Debug("initializing CLI", "version", info.Version, "config", resolved.ConfigPath.Value)
		config.LogResolvedValues(resolved.Values())
	}

	return nil
}
