package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	info := Get()

	require.NotEmpty(t, info.GoVersion, "GoVersion should be populated")
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.Equal(t, ConfigVersion, info.ConfigVersion)
}

func TestInfoString(t *testing.T) {
	info := Info{
		Version:       "v1.0.0",
		GitCommit:     "abc123",
		BuildDate:     "2026-01-29",
		GoVersion:     "go1.25",
		Platform:      "linux/amd64",
		ConfigVersion: "v2",
	}

	str := info.String()

	for _, want := range []string{"v1.0.0", "abc123", "2026-01-29", "go1.25", "linux/amd64", "Config Version: v2"} {
		assert.Contains(t, str, want)
	}
	assert.Equal(t, "cndi/v1.0.0 (linux/amd64)", info.UserAgent())
}
