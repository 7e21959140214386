// Package version provides version information for the cndi CLI.
package version

import (
	"fmt"
	"runtime"
)

// Build-time variables set via ldflags.
var (
	// Version is the CLI version (set via ldflags).
	Version = "v0.0.0-dev"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// ConfigVersion is the cndi_config.yaml schema version generated by this CLI.
const ConfigVersion = "v2"

// Info contains version information.
type Info struct {
	// Version is the CLI version (set via ldflags).
	Version string `json:"version"`

	// GitCommit is the git commit hash.
	GitCommit string `json:"gitCommit"`

	// BuildDate is the build timestamp.
	BuildDate string `json:"buildDate"`

	// GoVersion is the Go version used to build.
	GoVersion string `json:"goVersion"`

	// Platform is GOOS/GOARCH.
	Platform string `json:"platform"`

	// ConfigVersion is the cndi_config.yaml schema version.
	ConfigVersion string `json:"configVersion"`
}

// Get returns the current version information.
func Get() Info {
	return Info{
		Version:       Version,
		GitCommit:     GitCommit,
		BuildDate:     BuildDate,
		GoVersion:     runtime.Version(),
		Platform:      runtime.GOOS + "/" + runtime.GOARCH,
		ConfigVersion: ConfigVersion,
	}
}

// String returns a human-readable version string.
func (i Info) String() string {
	return fmt.Sprintf("cndi:\n  Version:  %s\n  Build ID: %s/%s\n  Go:       %s (%s)\n\nTemplates:\n  Config Version: %s",
		i.Version, i.BuildDate, i.GitCommit, i.GoVersion, i.Platform, i.ConfigVersion)
}

// UserAgent is sent with template fetches.
func (i Info) UserAgent() string {
	return fmt.Sprintf("cndi/%s (%s)", i.Version, i.Platform)
}
