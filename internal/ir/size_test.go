package ir

import (
	"fmt"
	"testing"
)

type collectingDiag struct{ warnings []string }

func (d *collectingDiag) Warn(format string, args ...interface{}) {
	d.warnings = append(d.warnings, fmt.Sprintf(format, args...))
}

func TestAccessSizeFromDatatype_Recognized(t *testing.T) {
	diag := &collectingDiag{}

	size := AccessSizeFromDatatype(&ConstInt{Val: 4}, &ConstInt{Val: 0x4c000405}, diag)
	if size != 16 {
		t.Errorf("4 x MPI_INT = %d, want 16", size)
	}

	if len(diag.warnings) != 0 {
		t.Errorf("a recognized tag should not emit a diagnostic")
	}
}

func TestAccessSizeFromDatatype_UnrecognizedTag(t *testing.T) {
	diag := &collectingDiag{}

	size := AccessSizeFromDatatype(&ConstInt{Val: 1}, &ConstInt{Val: 0xdeadbeef}, diag)
	if size != 0 {
		t.Errorf("an unrecognized tag should yield size 0, got %d", size)
	}

	if len(diag.warnings) != 1 {
		t.Errorf("an unrecognized tag should emit exactly one diagnostic")
	}
}

func TestAccessSizeFromDatatype_DerivedTypeSilent(t *testing.T) {
	diag := &collectingDiag{}

	derived := &Load{Addr: &Alloca{Name: "dt"}}

	size := AccessSizeFromDatatype(&ConstInt{Val: 1}, derived, diag)
	if size != 0 {
		t.Errorf("a derived datatype should yield size 0, got %d", size)
	}

	if len(diag.warnings) != 0 {
		t.Errorf("a derived datatype should not emit a diagnostic")
	}
}

func TestAccessSizeFromElemType(t *testing.T) {
	diag := &collectingDiag{}

	if got := AccessSizeFromElemType(IntType{Bits: 32}, diag); got != 4 {
		t.Errorf("i32 = %d, want 4", got)
	}

	if got := AccessSizeFromElemType(PtrType{}, diag); got != 8 {
		t.Errorf("ptr = %d, want 8", got)
	}

	if got := AccessSizeFromElemType(FloatType{Bits: 64}, diag); got != 8 {
		t.Errorf("double = %d, want 8", got)
	}

	if got := AccessSizeFromElemType(VoidType{}, diag); got != 0 {
		t.Errorf("void = %d, want 0", got)
	}

	if len(diag.warnings) != 1 {
		t.Errorf("only the unsupported void case should emit a diagnostic, got %d", len(diag.warnings))
	}
}
