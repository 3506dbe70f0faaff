package driver

import (
	"testing"

	"github.com/mpirace-tools/mpirace/internal/ir"
)

type collectingDiag struct {
	warnings []string
	infos    []string
}

func (d *collectingDiag) Warn(format string, args ...interface{}) {
	d.warnings = append(d.warnings, format)
}

func (d *collectingDiag) Info(level int, format string, args ...interface{}) {
	d.infos = append(d.infos, format)
}

func intTag(v int64) *ir.ConstInt { return &ir.ConstInt{Val: v} }

func TestRun_SkipsFunctionsWithoutMPICalls(t *testing.T) {
	fn := &ir.Function{Name: "plain", Blocks: []*ir.BasicBlock{{Name: "entry", Term: &ir.Ret{}}}}
	fn.Finalize()

	m := &ir.Module{Name: "m", Functions: []*ir.Function{fn}}
	diag := &collectingDiag{}

	reports, stats := Run(m, diag)
	if len(reports) != 0 {
		t.Fatalf("got %d reports, want 0", len(reports))
	}

	if stats.FunctionsScanned != 1 || stats.FunctionsWithMPI != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestRun_FindsRaceAndAccumulatesStats(t *testing.T) {
	buf := &ir.Alloca{Name: "buf"}
	req := &ir.Alloca{Name: "req"}

	nbCall := &ir.Call{
		Callee: "MPI_Irecv",
		Args:   []ir.Value{buf, intTag(4), intTag(0x4c000405), nil, nil, nil, req},
	}
	store := &ir.Store{Addr: buf, ElemType: ir.IntType{Bits: 32}}
	waitCall := &ir.Call{Callee: "MPI_Wait", Args: []ir.Value{req}}

	block := &ir.BasicBlock{Name: "entry", Instrs: []ir.Instr{nbCall, store, waitCall}, Term: &ir.Ret{}}
	fn := &ir.Function{Name: "worker", Blocks: []*ir.BasicBlock{block}}
	fn.Finalize()

	m := &ir.Module{Name: "m", Functions: []*ir.Function{fn}}
	diag := &collectingDiag{}

	reports, stats := Run(m, diag)
	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(reports))
	}

	if reports[0].Function != fn {
		t.Errorf("report should be attributed to the scanned function")
	}

	if stats.FunctionsWithMPI != 1 || stats.NonBlockingCalls != 1 || stats.ReportsFound != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	if len(diag.infos) != 1 {
		t.Errorf("expected one informational header, got %d", len(diag.infos))
	}
}

func TestRun_SkipsEmptyFunction(t *testing.T) {
	fn := &ir.Function{Name: "decl_only"}
	m := &ir.Module{Name: "m", Functions: []*ir.Function{fn}}
	diag := &collectingDiag{}

	_, stats := Run(m, diag)
	if stats.FunctionsScanned != 0 {
		t.Errorf("a function with no blocks should not count as scanned")
	}
}
