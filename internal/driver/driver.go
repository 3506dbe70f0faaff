// Package driver runs the race-detection core over a whole module,
// function by function, grounded on the original analysis's
// MPIRacePass::doModulePass (analyzer/src/lib/mpirace.cc): classify a
// function's MPI calls, detect races, report, then tear the per-function
// registry down before moving to the next function.
package driver

import (
	"github.com/mpirace-tools/mpirace/internal/ir"
	"github.com/mpirace-tools/mpirace/internal/mpicall"
	"github.com/mpirace-tools/mpirace/internal/race"
)

// Stats summarizes one module run, reported back to the caller for
// progress reporting.
type Stats struct {
	FunctionsScanned int64
	FunctionsWithMPI int64
	NonBlockingCalls int64
	ReportsFound     int64
}

// Run walks every function in m, in order, running the classify-then-detect
// pipeline on each. It returns every Report found, annotated with the
// owning function, plus aggregate Stats.
func Run(m *ir.Module, diag DiagEngine) ([]FunctionReport, Stats) {
	var (
		reports []FunctionReport
		stats   Stats
	)

	for _, fn := range m.Functions {
		if len(fn.Blocks) == 0 {
			continue
		}

		stats.FunctionsScanned++

		reg := mpicall.ClassifyFunction(fn, diag)
		if len(reg.NonBlocking) == 0 {
			continue
		}

		stats.FunctionsWithMPI++
		stats.NonBlockingCalls += int64(len(reg.NonBlocking))

		diag.Info(1, "identified %d nonblocking MPI call(s) in <%s>", len(reg.NonBlocking), fn.Name)

		frs := race.DetectFunction(fn, reg, diag)
		stats.ReportsFound += int64(len(frs))

		for _, r := range frs {
			reports = append(reports, FunctionReport{Function: fn, Report: r})
		}
	}

	return reports, stats
}

// FunctionReport pairs a detected race with the function it was found in,
// since race.Report itself carries no function back-reference.
type FunctionReport struct {
	Function *ir.Function
	Report   race.Report
}

// DiagEngine is the subset of *diagnostic.Engine the driver and the
// packages it drives need. Declared here, rather than importing
// internal/diagnostic directly, so internal/driver stays dependency-free
// of the CLI's output formatting concerns; cmd/mpirace wires a concrete
// *diagnostic.Engine in.
type DiagEngine interface {
	ir.Diagnostics
	Info(level int, format string, args ...interface{})
}
