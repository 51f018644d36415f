// Package version implements helper functions for the stored version.
package version

import (
	"fmt"
	"runtime"
)

// Version is the jsondoc version (e.g. "0.3.0"), injected via LDFLAGS.
var Version = "dev"

// Timestamp is the build time, injected via LDFLAGS.
var Timestamp = ""

func Platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

func UserAgent() string {
	return fmt.Sprintf("jsondoc/%s (%s, %s)", Version, runtime.GOOS, runtime.GOARCH)
}
