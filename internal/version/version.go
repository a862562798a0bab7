// Package version holds casematch build metadata, injected via ldflags:
//
//	-X github.com/kailas-cloud/casematch/internal/version.Version=v0.3.0
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build as "dev (unknown, built unknown)".
func String() string {
	return fmt.Sprintf("%s (%s, built %s)", Version, Commit, Date)
}
