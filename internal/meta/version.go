package meta

import (
	"fmt"
)

var (
	// Version is the semantic version of storecheck.
	// This value is injected at build time via ldflags.
	Version = "HEAD"

	// Commit is the git commit hash.
	// This value is injected at build time via ldflags.
	Commit = "UNKNOWN"
)

// UserAgent returns the default User-Agent header of probes.
func UserAgent() string {
	return fmt.Sprintf("storecheck/%s health check", Version)
}
