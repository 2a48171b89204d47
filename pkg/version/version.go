// Package version holds build version information.
package version

import (
	"fmt"
	"runtime"
)

// BuildVersion is the semantic version of this build. It is overridden
// at link time via -ldflags for release builds.
var BuildVersion = "0.1.0-dev"

// String returns a human-readable version line.
func String() string {
	return fmt.Sprintf("roadsketch %s (%s %s/%s)",
		BuildVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
