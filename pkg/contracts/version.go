package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version is the release reported by "surveystats version", the JSON
	// report and the telemetry resource.
	Version = "0.3.0"

	// InputFormatVersion identifies the survey file layout the parser accepts.
	InputFormatVersion = "v1"

	// ReportFormatVersion identifies the JSON and CSV report layout.
	ReportFormatVersion = "v1"
)

// Set at build time with -ldflags "-X surveystats/pkg/contracts.GitCommit=...".
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionString returns "surveystats v<Version>".
func VersionString() string {
	return "surveystats v" + Version
}

// FullVersionString adds build metadata and the supported format versions.
func FullVersionString() string {
	return fmt.Sprintf("%s (commit %s, built %s, %s %s/%s, input %s, report %s)",
		VersionString(), GitCommit, BuildTime,
		runtime.Version(), runtime.GOOS, runtime.GOARCH,
		InputFormatVersion, ReportFormatVersion)
}
