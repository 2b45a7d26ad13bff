// Package version carries build metadata stamped in via -ldflags.
package version

// Defaults apply under go run and in tests.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
