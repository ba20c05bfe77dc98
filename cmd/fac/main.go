// FAC agent - acquisition and transfer client for the Forensic Auto Carver server.
package main

import (
	"os"

	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/cli"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/version"
)

// Version information - injected via LDFLAGS for release builds.
var (
	Version   = "v1.2.0"
	BuildTime = "2026-08-28"
)

func main() {
	// Propagate version to the canonical source for all packages.
	version.Version = Version
	version.BuildTime = BuildTime

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
