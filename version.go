// Package wordscope exposes the build identity of the binary.
package wordscope

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at build time via -ldflags:
//
//	go build -ldflags "-X github.com/wordscope/wordscope.Version=v0.2.0 \
//	  -X github.com/wordscope/wordscope.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/wordscope/wordscope.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	Version = "0.1.0-dev"
	Commit  = ""
	Date    = ""
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	Date      string `json:"date,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Build returns the binary's build identity. When the commit was not
// injected at link time it falls back to the VCS stamp embedded by the
// toolchain, if any.
func Build() BuildInfo {
	commit := Commit
	if commit == "" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" && len(s.Value) >= 7 {
					commit = s.Value[:7]
					break
				}
			}
		}
	}
	return BuildInfo{
		Version:   Version,
		Commit:    commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (b BuildInfo) String() string {
	s := "wordscope " + b.Version
	if b.Commit != "" {
		s += " (" + b.Commit + ")"
	}
	if b.Date != "" {
		s += " built " + b.Date
	}
	return fmt.Sprintf("%s %s %s", s, b.GoVersion, b.Platform)
}
