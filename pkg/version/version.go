// Package version holds build metadata injected at link time with
// -ldflags "-X github.com/Sumatoshi-tech/crackfang/pkg/version.Version=...".
package version

import (
	"fmt"
	"runtime/debug"
)

// Build metadata. Defaults apply to plain `go build` binaries.
var (
	Version = "dev"
	Commit  = "<unknown>"
	Date    = "<unknown>"
)

const revisionSetting = "vcs.revision"

// InitBinaryVersion fills Version and Commit from the module build info
// when they were not injected by the linker.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	if Commit != "<unknown>" {
		return
	}

	for _, setting := range info.Settings {
		if setting.Key == revisionSetting {
			Commit = setting.Value
		}
	}
}

// String renders the version line printed by `crackfang version`.
func String() string {
	return fmt.Sprintf("crackfang %s (commit: %s, built: %s)", Version, Commit, Date)
}
