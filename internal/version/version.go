package version

import "fmt"

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X github.com/specforge/specinit/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X github.com/specforge/specinit/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X github.com/specforge/specinit/internal/version.Date={{.Date}}
)

// String returns the multi-line version banner
func String() string {
	return fmt.Sprintf("specinit version %s\n  commit: %s\n  built:  %s\n", Version, Commit, Date)
}
