// SPDX-License-Identifier: MIT
//
// Package build manages build metadata embedded into the binary at compile
// time via linker flags, e.g.
//
//	go build -ldflags "-X audioviz/pkg/build.buildName=audioviz \
//	    -X audioviz/pkg/build.buildVersion=v1.2.0 \
//	    -X audioviz/pkg/build.buildCommit=$(git rev-parse --short HEAD) \
//	    -X audioviz/pkg/build.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Unset flags fall back to development defaults so a plain `go build`
// still produces a working binary.
package build

type ldFlags struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

// Package-level variables populated by -ldflags during compilation.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string

	buildFlags = &ldFlags{}
)

// Initialize copies build information from the ldflags variables into the
// buildFlags struct, substituting development defaults for anything unset.
// Call early in program startup.
func Initialize() {
	buildFlags.Name = orDefault(buildName, "audioviz")
	buildFlags.Time = orDefault(buildTime, "unknown")
	buildFlags.Commit = orDefault(buildCommit, "unknown")
	buildFlags.Version = orDefault(buildVersion, "dev")
}

// GetBuildFlags returns the resolved build information.
func GetBuildFlags() ldFlags {
	return *buildFlags
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
