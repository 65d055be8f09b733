// Package version holds build metadata stamped via -ldflags.
package version

var (
	// Version is the release version.
	Version = "dev"
	// Commit is the git revision the binary was built from.
	Commit = "unknown"
)

// String returns the version with the commit when one was stamped.
func String() string {
	if Commit == "unknown" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
