// Package version reports the build of irbridged and irbridge-cfg.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Set at build time:
//
//	go build -ldflags="-X github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/version.Version=v0.3.0 \
//	                   -X github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/version.Commit=abc1234"
//
// Unset values are filled from the VCS stamp in the build info, then fall
// back to "dev" and "unknown".
var (
	Version = ""
	Commit  = ""
)

func init() {
	if Version == "" || Commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			fromBuildInfo(info)
		}
	}
	if Version == "" {
		Version = "dev"
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

func fromBuildInfo(info *debug.BuildInfo) {
	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}

	if Commit == "" {
		if rev := settings["vcs.revision"]; rev != "" {
			if len(rev) > 7 {
				rev = rev[:7]
			}
			if settings["vcs.modified"] == "true" {
				rev += "-dirty"
			}
			Commit = rev
		}
	}

	if Version == "" {
		// "go install module@v1.2.3" stamps the main module version
		if v := info.Main.Version; v != "" && v != "(devel)" {
			Version = v
		} else if t := settings["vcs.time"]; len(t) >= 10 {
			Version = "dev-" + strings.ReplaceAll(t[:10], "-", "")
		}
	}
}

// Full returns the version including the commit
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// UserAgent identifies irbridge-cfg in requests to a bridge.
func UserAgent() string {
	return "irbridge-cfg/" + Version
}
