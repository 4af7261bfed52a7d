// Package buildinfo carries the release identity stamped into the
// binary at build time.
package buildinfo

// Set via -ldflags "-X github.com/flowcast-dev/flowcast/internal/buildinfo.Version=..."
// and friends; an unstamped build reports itself as dev.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
