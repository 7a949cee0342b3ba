// Package version holds the symbolic version of the pingslo code.
package version

// Version is the symbolic version of the running code. It can be overridden
// at build time with -ldflags "-X github.com/m-lab/pingslo/pkg/version.Version=...".
var Version = "v0.1.0"
