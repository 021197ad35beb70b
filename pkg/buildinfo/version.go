// Package buildinfo holds the version of the trigen binary.
//
// The variables are set through ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/trigen/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/trigen/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/trigen/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// The step cache is scoped by [CacheScope], so results cached by one build
// are never replayed by another.
package buildinfo

import "fmt"

var (
	Version = "dev"     // semantic version
	Commit  = "none"    // git commit SHA
	Date    = "unknown" // build timestamp
)

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// CacheScope returns the prefix for step cache keys. Development builds
// include the commit, since their version string never changes.
func CacheScope() string {
	if Version == "dev" {
		return "dev@" + Commit + ":"
	}
	return Version + ":"
}
