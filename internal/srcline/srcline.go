// Package srcline recovers a single line of original source text from an
// instruction's debug-location metadata. It is a pure formatter: any
// failure (missing location, unreadable file, short file) yields the empty
// string rather than an error.
package srcline

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mpirace-tools/mpirace/internal/ir"
)

// Format returns "<filename>:<line>: <text>" for loc, or "" if loc carries
// no line, the source file cannot be opened, or it has fewer lines than
// loc.Line.
func Format(loc ir.DebugLoc) string {
	if !loc.HasLoc() {
		return ""
	}

	path := loc.File
	if loc.Dir != "" {
		path = filepath.Join(loc.Dir, loc.File)
	}

	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	line := 0
	for scanner.Scan() {
		line++
		if line == loc.Line {
			return loc.File + ":" + strconv.Itoa(loc.Line) + ": " + scanner.Text()
		}
	}

	return ""
}
