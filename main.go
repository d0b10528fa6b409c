// Command lmgen compiles grammar definitions into recognizers.
package main

import "github.com/arr-ai/lmgen/cmd"

// Build information, set at link time with
//
//	-ldflags "-X main.version=... -X main.gitCommit=..."
//
//nolint:gochecknoglobals
var (
	version   = "unspecified"
	gitCommit = "unspecified"
	buildDate = "unspecified"
	buildOS   = "unspecified"
)

func main() {
	cmd.Main(cmd.VersionTags{
		Version:   version,
		GitCommit: gitCommit,
		BuildDate: buildDate,
		BuildOS:   buildOS,
	})
}
