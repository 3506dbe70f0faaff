// Package irformat is the on-disk textual encoding for internal/ir modules.
//
// Loading IR from a compiled program is treated as an external
// collaborator behind a fixed interface (a reader hands the core a
// populated *ir.Module), not a fixed byte format - there is no real LLVM
// bitcode reader in this workspace. irformat supplies a deterministic,
// diffable JSON text format that satisfies that same interface without
// requiring cgo or an LLVM toolchain, which keeps internal/loader and the
// golden end-to-end fixtures testable in plain Go.
//
// Every encoded module carries a schema_version field, a semver string
// gated against CompatRange by Decode so that a module produced by an
// incompatible future revision of this package is rejected with an error
// instead of silently misparsed.
package irformat

import "github.com/Masterminds/semver/v3"

// SchemaVersion is the version this build of irformat writes and the
// version new Encode calls stamp onto a module.
const SchemaVersion = "1.0.0"

// CompatRange is the semver constraint Decode accepts. Widened only when
// a schema change is additive; a breaking change bumps SchemaVersion's
// major component and this range together.
var CompatRange = mustConstraint("^1.0.0")

func mustConstraint(s string) *semver.Constraints {
	c, err := semver.NewConstraint(s)
	if err != nil {
		panic(err)
	}

	return c
}
