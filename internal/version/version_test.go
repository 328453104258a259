package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	tests := []struct {
		name        string
		info        *debug.BuildInfo
		wantVersion string
		wantCommit  string
	}{
		{
			name: "module version and dirty tree",
			info: &debug.BuildInfo{
				Main: debug.Module{Version: "v0.3.0"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123456789abcdef"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			wantVersion: "v0.3.0",
			wantCommit:  "0123456-dirty",
		},
		{
			name: "devel build falls back to commit date",
			info: &debug.BuildInfo{
				Main: debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "abc"},
					{Key: "vcs.time", Value: "2026-10-19T08:00:00Z"},
				},
			},
			wantVersion: "dev-20261019",
			wantCommit:  "abc",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldV, oldC := Version, Commit
			defer func() { Version, Commit = oldV, oldC }()
			Version, Commit = "", ""

			fromBuildInfo(tt.info)
			if Version != tt.wantVersion {
				t.Errorf("Version = %q, want %q", Version, tt.wantVersion)
			}
			if Commit != tt.wantCommit {
				t.Errorf("Commit = %q, want %q", Commit, tt.wantCommit)
			}
		})
	}
}

func TestFullAndUserAgent(t *testing.T) {
	if !strings.Contains(Full(), Commit) {
		t.Errorf("Full() = %q, should contain commit %q", Full(), Commit)
	}
	if got := UserAgent(); got != "irbridge-cfg/"+Version {
		t.Errorf("UserAgent() = %q", got)
	}
}
