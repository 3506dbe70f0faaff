package mpicall

import (
	"testing"

	"github.com/mpirace-tools/mpirace/internal/ir"
)

func buildTestFunction(instrs ...ir.Instr) *ir.Function {
	block := &ir.BasicBlock{Name: "entry", Instrs: instrs, Term: &ir.Ret{}}
	fn := &ir.Function{Name: "main", Blocks: []*ir.BasicBlock{block}}
	fn.Finalize()

	return fn
}

func mpiIntConst(tag int64) *ir.ConstInt { return &ir.ConstInt{Val: tag} }

func TestClassifyFunction_NonBlocking(t *testing.T) {
	buf := &ir.Alloca{Name: "buf"}
	req := &ir.Alloca{Name: "req"}
	call := &ir.Call{
		Callee: "MPI_Irecv",
		Args:   []ir.Value{buf, mpiIntConst(4), mpiIntConst(0x4c000405), nil, nil, nil, req},
	}
	fn := buildTestFunction(call)

	reg := ClassifyFunction(fn, ir.NopDiagnostics)

	if len(reg.NonBlocking) != 1 {
		t.Fatalf("got %d non-blocking records, want 1", len(reg.NonBlocking))
	}

	nb := reg.NonBlocking[0]
	if nb.BufferStart != ir.Value(buf) {
		t.Errorf("BufferStart = %v, want buf", nb.BufferStart)
	}

	if nb.BufferAccessSize != 16 {
		t.Errorf("BufferAccessSize = %d, want 16", nb.BufferAccessSize)
	}

	if !nb.Write {
		t.Errorf("MPI_Irecv should be classified as a write")
	}

	if nb.Request != ir.Value(req) {
		t.Errorf("Request = %v, want req", nb.Request)
	}

	if reg.NonBlockingByCall(call) != nb {
		t.Errorf("NonBlockingByCall did not return the same record")
	}
}

func TestClassifyFunction_Blocking(t *testing.T) {
	buf := &ir.Alloca{Name: "buf"}
	call := &ir.Call{
		Callee: "MPI_Send",
		Args:   []ir.Value{buf, mpiIntConst(2), mpiIntConst(0x4c00080b), nil, nil, nil},
	}
	fn := buildTestFunction(call)

	reg := ClassifyFunction(fn, ir.NopDiagnostics)

	if len(reg.Blocking) != 1 {
		t.Fatalf("got %d blocking records, want 1", len(reg.Blocking))
	}

	bc := reg.Blocking[0]
	if bc.Write {
		t.Errorf("MPI_Send should not be classified as a write")
	}

	if bc.BufferAccessSize != 16 {
		t.Errorf("BufferAccessSize = %d, want 16", bc.BufferAccessSize)
	}
}

func TestClassifyFunction_Wait(t *testing.T) {
	req := &ir.Alloca{Name: "req"}
	reqs := &ir.Alloca{Name: "reqs"}

	waitCall := &ir.Call{Callee: "MPI_Wait", Args: []ir.Value{req}}
	waitAllCall := &ir.Call{Callee: "MPI_Waitall", Args: []ir.Value{mpiIntConst(3), reqs}}
	waitAnyCall := &ir.Call{Callee: "MPI_Waitany", Args: []ir.Value{mpiIntConst(3), reqs}}

	fn := buildTestFunction(waitCall, waitAllCall, waitAnyCall)
	reg := ClassifyFunction(fn, ir.NopDiagnostics)

	if len(reg.Wait) != 3 {
		t.Fatalf("got %d wait records, want 3", len(reg.Wait))
	}

	wc := reg.WaitByCall(waitCall)
	if ci, ok := wc.WaitCount.(*ir.ConstInt); !ok || ci.Val != 1 {
		t.Errorf("MPI_Wait WaitCount = %v, want constant 1", wc.WaitCount)
	}

	if wc.Request != ir.Value(req) {
		t.Errorf("MPI_Wait Request = %v, want req", wc.Request)
	}

	wca := reg.WaitByCall(waitAllCall)
	if wca.WaitCount != ir.Value(waitAllCall.Arg(0)) {
		t.Errorf("MPI_Waitall WaitCount should be arg 0")
	}

	if wca.Request != ir.Value(reqs) {
		t.Errorf("MPI_Waitall Request should be arg 1")
	}

	wcy := reg.WaitByCall(waitAnyCall)
	if ci, ok := wcy.WaitCount.(*ir.ConstInt); !ok || ci.Val != 1 {
		t.Errorf("MPI_Waitany WaitCount = %v, want constant 1", wcy.WaitCount)
	}

	if wcy.Request != ir.Value(reqs) {
		t.Errorf("MPI_Waitany Request should be arg 1")
	}
}

func TestClassifyFunction_IgnoresUnrelatedCalls(t *testing.T) {
	call := &ir.Call{Callee: "printf", Args: nil}
	fn := buildTestFunction(call)

	reg := ClassifyFunction(fn, ir.NopDiagnostics)

	if len(reg.NonBlocking)+len(reg.Blocking)+len(reg.Wait) != 0 {
		t.Errorf("expected no records for an unrelated call")
	}
}

func TestClassifyFunction_StripsOuterBitCast(t *testing.T) {
	buf := &ir.Alloca{Name: "buf"}
	bc := &ir.BitCast{Src: buf}
	call := &ir.Call{
		Callee: "MPI_Isend",
		Args:   []ir.Value{bc, mpiIntConst(1), mpiIntConst(0x4c000101), nil, nil, nil, &ir.Alloca{Name: "req"}},
	}
	fn := buildTestFunction(call)

	reg := ClassifyFunction(fn, ir.NopDiagnostics)

	if reg.NonBlocking[0].BufferStart != ir.Value(buf) {
		t.Errorf("BufferStart should have its outer bitcast stripped")
	}
}
