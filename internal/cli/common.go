// Package cli holds the small set of helpers cmd/mpirace needs: version
// reporting, a leveled console logger, and usage printing. Pared down
// from a multi-subcommand tool-suite shape (Config load/save, per-command
// CommandInfo tables) to what a single binary taking only flags and
// positional file paths needs.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
)

// Version information for the mpirace binary.
const (
	Version   = "0.1.0"
	BuildDate = "2026-07-31"
	CommitSHA = "unknown"
)

// VersionInfo is the structured form --version --json prints.
type VersionInfo struct {
	Version       string `json:"version"`
	BuildDate     string `json:"build_date"`
	CommitSHA     string `json:"commit_sha"`
	GoVersion     string `json:"go_version"`
	Platform      string `json:"platform"`
	Arch          string `json:"arch"`
	SchemaVersion string `json:"ir_schema_version"`
}

// GetVersionInfo returns structured version information. schemaVersion
// is threaded in by the caller rather than imported directly, so this
// package stays independent of internal/irformat.
func GetVersionInfo(schemaVersion string) *VersionInfo {
	return &VersionInfo{
		Version:       Version,
		BuildDate:     BuildDate,
		CommitSHA:     CommitSHA,
		GoVersion:     runtime.Version(),
		Platform:      runtime.GOOS,
		Arch:          runtime.GOARCH,
		SchemaVersion: schemaVersion,
	}
}

// PrintVersion prints version information in a consistent format.
func PrintVersion(toolName, schemaVersion string, jsonOutput bool) {
	info := GetVersionInfo(schemaVersion)

	if jsonOutput {
		data, err := json.MarshalIndent(map[string]interface{}{
			"tool":         toolName,
			"version_info": info,
		}, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to marshal version info to JSON: %v\n", err)
		} else {
			fmt.Println(string(data))

			return
		}
	}

	fmt.Printf("%s v%s\n", toolName, info.Version)
	fmt.Printf("Build Date: %s\n", info.BuildDate)
	fmt.Printf("Go Version: %s\n", info.GoVersion)
	fmt.Printf("Platform: %s/%s\n", info.Platform, info.Arch)
	fmt.Printf("IR schema: %s\n", info.SchemaVersion)
}

// ExitWithError prints an error message and exits with code 1.
func ExitWithError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// Logger is a minimal leveled console logger for CLI progress output
// that is not itself a race diagnostic (those go through
// internal/diagnostic.Engine).
type Logger struct {
	Verbose bool
}

// NewLogger creates a Logger.
func NewLogger(verbose bool) *Logger { return &Logger{Verbose: verbose} }

// Info logs a message only when verbose output was requested.
func (l *Logger) Info(format string, args ...interface{}) {
	if l.Verbose {
		fmt.Fprintf(os.Stderr, "[mpirace] "+format+"\n", args...)
	}
}

// PrintUsage prints the flag-only usage banner for this single-command
// binary.
func PrintUsage(tool string) {
	fmt.Printf("%s - static data-race detector for non-blocking MPI programs\n\n", tool)
	fmt.Printf("USAGE:\n")
	fmt.Printf("    %s [OPTIONS] <ir-file>...\n\n", tool)
	fmt.Printf("OPTIONS:\n")
	fmt.Printf("    --race              Run the race-detection core\n")
	fmt.Printf("    --verbose-level N   Diagnostic verbosity threshold (default 0)\n")
	fmt.Printf("    --watch             Re-run on change to any input file\n")
	fmt.Printf("    --workers N         Bound concurrent file loads (default GOMAXPROCS)\n")
	fmt.Printf("    --version           Print version information\n")
	fmt.Printf("    --json              With --version, print as JSON\n")
}
