// Package testirfmt bundles a golden end-to-end scenario - one textual IR
// module plus the stderr output mpirace is expected to produce for it -
// into a single txtar archive, so the fixture and its expected output
// travel together as one diffable file instead of two.
// Test-only: nothing outside _test.go files should import this package.
package testirfmt

import (
	"fmt"

	"golang.org/x/tools/txtar"

	"github.com/mpirace-tools/mpirace/internal/ir"
	"github.com/mpirace-tools/mpirace/internal/irformat"
)

// Scenario is one decoded golden fixture.
type Scenario struct {
	Name           string
	Module         *ir.Module
	ExpectedStderr string
}

const (
	moduleFile   = "module.json"
	expectedFile = "expected.stderr"
)

// Load parses a txtar archive previously built with Build.
func Load(name string, data []byte) (*Scenario, error) {
	arc := txtar.Parse(data)

	var moduleData, expected []byte

	for _, f := range arc.Files {
		switch f.Name {
		case moduleFile:
			moduleData = f.Data
		case expectedFile:
			expected = f.Data
		}
	}

	if moduleData == nil {
		return nil, fmt.Errorf("testirfmt: %s missing %s section", name, moduleFile)
	}

	mod, err := irformat.Decode(moduleData)
	if err != nil {
		return nil, fmt.Errorf("testirfmt: %s: %w", name, err)
	}

	return &Scenario{Name: name, Module: mod, ExpectedStderr: string(expected)}, nil
}

// Build encodes mod and pairs it with expectedStderr into one txtar
// archive, for tests that want to construct a fixture in-process rather
// than read one from testdata/.
func Build(mod *ir.Module, expectedStderr string) ([]byte, error) {
	data, err := irformat.Encode(mod)
	if err != nil {
		return nil, err
	}

	arc := &txtar.Archive{
		Files: []txtar.File{
			{Name: moduleFile, Data: data},
			{Name: expectedFile, Data: []byte(expectedStderr)},
		},
	}

	return txtar.Format(arc), nil
}
