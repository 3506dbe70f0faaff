// Command mpirace loads one or more textual IR modules and reports
// potential data races between non-blocking MPI communication and the
// buffers it touches before completion is awaited.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mpirace-tools/mpirace/internal/cli"
	"github.com/mpirace-tools/mpirace/internal/diagnostic"
	"github.com/mpirace-tools/mpirace/internal/driver"
	"github.com/mpirace-tools/mpirace/internal/ir"
	"github.com/mpirace-tools/mpirace/internal/irformat"
	"github.com/mpirace-tools/mpirace/internal/loader"
	"github.com/mpirace-tools/mpirace/internal/srcline"
	"github.com/mpirace-tools/mpirace/internal/watch"
)

const toolName = "mpirace"

func main() {
	race := flag.Bool("race", false, "run the race-detection core")
	verboseLevel := flag.Int("verbose-level", 0, "diagnostic verbosity threshold")
	watchFlag := flag.Bool("watch", false, "re-run on change to any input file")
	workers := flag.Int("workers", 0, "bound concurrent file loads (default GOMAXPROCS)")
	version := flag.Bool("version", false, "print version information")
	jsonOut := flag.Bool("json", false, "with --version, print as JSON")

	flag.Usage = func() { cli.PrintUsage(toolName) }
	flag.Parse()

	if *version {
		cli.PrintVersion(toolName, irformat.SchemaVersion, *jsonOut)

		return
	}

	paths := flag.Args()
	if len(paths) == 0 {
		cli.PrintUsage(toolName)
		os.Exit(2)
	}

	if !*race {
		cli.ExitWithError("no analysis requested; pass --race to run the data-race detector")
	}

	diag := diagnostic.NewEngine(os.Stderr, *verboseLevel)

	l := loader.New(*workers)
	runOnce(l, diag, paths)

	if *watchFlag {
		runWatch(l, diag, paths)
	}

	// Exit 0 on successful completion regardless of whether races were
	// found or warnings were emitted; only a load/usage error that aborts
	// the run (cli.ExitWithError, above) exits non-zero.
}

func runOnce(l *loader.Loader, diag *diagnostic.Engine, paths []string) {
	mods, err := l.Load(context.Background(), paths, diag)
	if err != nil {
		cli.ExitWithError("loading input files: %v", err)
	}

	for _, mod := range mods {
		diag.Info(0, "\n== analyzing module %s", mod.Name)

		reports, stats := driver.Run(mod, diag)
		diag.Info(1, "scanned %d function(s), %d with nonblocking MPI calls, %d report(s)",
			stats.FunctionsScanned, stats.FunctionsWithMPI, stats.ReportsFound)

		for _, fr := range reports {
			emitReport(diag, fr)
		}
	}
}

func emitReport(diag *diagnostic.Engine, fr driver.FunctionReport) {
	nbCall := fr.Report.NonBlockingCall.Call
	nbLoc, _ := ir.InstrLoc(nbCall)
	offLoc, _ := ir.InstrLoc(fr.Report.Offending)

	diag.RaceReport(
		nbCall.String(), srcline.Format(nbLoc),
		fr.Report.Offending.String(), srcline.Format(offLoc),
	)
}

// runWatch re-runs the analysis whenever fsnotify reports a change to
// one of the watched input files. It blocks until the process is
// interrupted.
func runWatch(l *loader.Loader, diag *diagnostic.Engine, paths []string) {
	w, err := watch.New(paths)
	if err != nil {
		cli.ExitWithError("starting watcher: %v", err)
	}
	defer w.Close()

	fmt.Fprintf(os.Stderr, "[mpirace] watching %d file(s) for changes\n", len(paths))

	for {
		select {
		case changed := <-w.Changed:
			fmt.Fprintf(os.Stderr, "[mpirace] %s changed, re-running\n", changed)
			runOnce(l, diag, paths)
		case err := <-w.Errors:
			fmt.Fprintf(os.Stderr, "[mpirace] watch error: %v\n", err)
		}
	}
}
