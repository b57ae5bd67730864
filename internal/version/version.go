// Package version reports the snip build. Release builds set the variables
// with -ldflags "-X github.com/standardbeagle/snip/internal/version.GitCommit=...".
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	Version   = "0.2.0"
	GitCommit = ""
	BuildDate = ""
)

// BuildInfo is what both the version command and the MCP info tool report.
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the linker-set values, filling anything left empty from the
// VCS stamp the go tool embeds.
func Get() BuildInfo {
	return fill(BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}, readSettings())
}

func readSettings() map[string]string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}
	return settings
}

func fill(b BuildInfo, settings map[string]string) BuildInfo {
	if b.GitCommit == "" {
		b.GitCommit = settings["vcs.revision"]
		b.Modified = settings["vcs.modified"] == "true"
	}
	if b.BuildDate == "" {
		b.BuildDate = settings["vcs.time"]
	}
	if b.GitCommit == "" {
		b.GitCommit = "unknown"
	}
	if b.BuildDate == "" {
		b.BuildDate = "development"
	}
	if len(b.GitCommit) > 12 {
		b.GitCommit = b.GitCommit[:12]
	}
	return b
}

// String is the one-line form, e.g. "0.2.0 (commit: 1a2b3c4d5e6f, built: 2026-01-02T15:04:05Z)".
func (b BuildInfo) String() string {
	commit := b.GitCommit
	if b.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", b.Version, commit, b.BuildDate)
}
