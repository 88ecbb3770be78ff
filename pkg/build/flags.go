// SPDX-License-Identifier: MIT
//
// Package build exposes the metadata embedded into the wavescope binary at
// link time (name, timestamp, commit and version). Release builds set every
// value with -ldflags:
//
//	go build -ldflags "-X wavescope/pkg/build.buildName=wavescope \
//	  -X wavescope/pkg/build.buildVersion=0.3.0 ..."
//
// Development builds that set nothing fall back to the module information
// recorded by the Go toolchain.
package build

import (
	"fmt"
	"runtime/debug"
)

// DefaultName is reported when the binary was built without ldflags.
const DefaultName = "wavescope"

type ldFlags struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &ldFlags{
		Name:        DefaultName,
		Description: "Real-time microphone waveform, spectrum and level analyzer",
		Time:        "unknown",
		Commit:      "unknown",
		Version:     "dev",
	}
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// Initialize copies the ldflags variables into the build information.
// When none of them is set the binary is a development build and the
// version is taken from the embedded module information. A partially
// populated set is an error: it means the release tooling is broken.
func Initialize() error {
	if buildName == "" && buildTime == "" && buildCommit == "" && buildVersion == "" {
		if info, ok := readBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			buildFlags.Version = info.Main.Version
		}
		return nil
	}

	if buildName == "" {
		return fmt.Errorf("BuildName is required")
	}
	if buildTime == "" {
		return fmt.Errorf("BuildTime is required")
	}
	if buildCommit == "" {
		return fmt.Errorf("BuildCommit is required")
	}
	if buildVersion == "" {
		return fmt.Errorf("BuildVersion is required")
	}

	buildFlags.Name = buildName
	buildFlags.Time = buildTime
	buildFlags.Commit = buildCommit
	buildFlags.Version = buildVersion

	return nil
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *ldFlags {
	return buildFlags
}
