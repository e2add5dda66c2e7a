// Package buildinfo reports the msttree version.
//
// Release builds stamp the variables through ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/msttree/pkg/buildinfo.Version=v0.4.0 \
//	    -X github.com/matzehuels/msttree/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/msttree/pkg/buildinfo.Date=$(date -u +%Y-%m-%d)"
//
// Binaries from "go install github.com/matzehuels/msttree/cmd/msttree@v0.4.0"
// carry no ldflags; they report the module version recorded by the toolchain.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Stamped at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Resolved returns Version, or the main module version embedded by
// "go install" when no version was stamped.
func Resolved() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return Version
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Resolved(), Commit, Date)
}
