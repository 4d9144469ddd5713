// Package buildinfo carries the version stamped into the binary.
//
// Release builds set the variables with -ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/archflow/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/archflow/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/archflow/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/archflow
//
// A binary built with go install falls back to the module version and VCS
// stamp recorded by the toolchain.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"sync"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var fromModule = sync.OnceFunc(func() {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && Commit == "none":
			Commit = s.Value
		case s.Key == "vcs.time" && Date == "unknown":
			Date = s.Value
		}
	}
})

// Template is the cobra version template.
func Template() string {
	fromModule()
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, Commit, Date)
}

// Fields returns the build stamp as logger key-value pairs.
func Fields() []any {
	fromModule()
	return []any{"version", Version, "commit", Commit, "built", Date}
}
