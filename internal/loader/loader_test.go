package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mpirace-tools/mpirace/internal/ir"
	"github.com/mpirace-tools/mpirace/internal/irformat"
)

type collectingDiag struct{ warnings []string }

func (d *collectingDiag) Warn(format string, args ...interface{}) {
	d.warnings = append(d.warnings, format)
}

func writeModule(t *testing.T, dir, name string) string {
	t.Helper()

	mod := ir.NewModule(name)
	fn := &ir.Function{Name: "f", Blocks: []*ir.BasicBlock{{Name: "entry", Term: &ir.Ret{}}}}
	fn.Finalize()
	mod.Functions = append(mod.Functions, fn)

	data, err := irformat.Encode(mod)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	path := filepath.Join(dir, name+".mpirir")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	return path
}

func TestLoad_ReadsAllFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeModule(t, dir, "alpha")
	b := writeModule(t, dir, "beta")

	l := New(2)

	mods, err := l.Load(context.Background(), []string{a, b}, &collectingDiag{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(mods) != 2 || mods[0].Name != "alpha" || mods[1].Name != "beta" {
		t.Fatalf("unexpected modules: %+v", mods)
	}
}

func TestLoad_SkipsUnreadableFileWithDiagnostic(t *testing.T) {
	dir := t.TempDir()
	good := writeModule(t, dir, "ok")
	missing := filepath.Join(dir, "missing.mpirir")

	diag := &collectingDiag{}

	l := New(2)

	mods, err := l.Load(context.Background(), []string{good, missing}, diag)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(mods) != 1 || mods[0].Name != "ok" {
		t.Fatalf("expected only the readable module, got %+v", mods)
	}

	if len(diag.warnings) != 1 {
		t.Errorf("expected one diagnostic for the missing file, got %d", len(diag.warnings))
	}
}

func TestLoad_DedupesSamePathListedTwice(t *testing.T) {
	dir := t.TempDir()
	a := writeModule(t, dir, "alpha")

	l := New(2)

	mods, err := l.Load(context.Background(), []string{a, a}, &collectingDiag{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(mods) != 1 {
		t.Fatalf("got %d modules, want 1 after dedup", len(mods))
	}
}
