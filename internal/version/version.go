// Package version reports build metadata for the protochain binary and the
// graph file schema it understands.
// Version, GitCommit, and BuildDate are injected at compile time via -ldflags.
package version

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"
)

// Graph file schema handled by this build.
const (
	GraphAPIVersion = "protochain/v1"
	GraphSchema     = "^1.0.0"
)

// Build-time values injected via -ldflags.
var (
	version   = "dev"
	gitCommit = "none"
	buildDate = "unknown"
)

// Info holds the build metadata for the binary.
type Info struct {
	Version     string `json:"version"`
	GitCommit   string `json:"gitCommit"`
	BuildDate   string `json:"buildDate"`
	GoVersion   string `json:"goVersion"`
	Platform    string `json:"platform"`
	GraphAPI    string `json:"graphApiVersion"`
	GraphSchema string `json:"graphSchema"`
}

// GetInfo returns the current build information.
func GetInfo() Info {
	return Info{
		Version:     version,
		GitCommit:   shortCommit(gitCommit),
		BuildDate:   buildDate,
		GoVersion:   runtime.Version(),
		Platform:    fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		GraphAPI:    GraphAPIVersion,
		GraphSchema: GraphSchema,
	}
}

// IsRelease reports whether Version is a semantic version rather than a
// development build.
func (i Info) IsRelease() bool {
	_, err := semver.NewVersion(i.Version)
	return err == nil
}

// String returns a human-readable single-line version string.
func (i Info) String() string {
	s := fmt.Sprintf("protochain %s (commit: %s, built: %s, %s %s, graph %s %s)",
		i.Version, i.GitCommit, i.BuildDate, i.GoVersion, i.Platform, i.GraphAPI, i.GraphSchema)

	if !i.IsRelease() {
		s += " [development build]"
	}

	return s
}

// JSON returns the version info as indented JSON.
func (i Info) JSON() (string, error) {
	data, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling version info: %w", err)
	}

	return string(data), nil
}

// shortCommit truncates a commit SHA to 7 characters.
func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}

	return commit
}
