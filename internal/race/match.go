// Package race implements wait-matching (request-handle equivalence) and
// the race-detection engine.
package race

import (
	"github.com/mpirace-tools/mpirace/internal/ir"
	"github.com/mpirace-tools/mpirace/internal/mpicall"
)

// MatchRequest decides whether wait refers to the same outstanding request
// as pending, the request-handle value recorded on a NonBlockingCall. The
// four checks below are intentionally independent rather than an if/else
// chain - source parity requires evaluating them in this exact order, not
// collapsing them into a single boolean expression.
//
// Matching is syntactic, not data-flow aware: a getelementptr pair that
// shares a base pointer is accepted regardless of index equality, a
// deliberate over-approximation preserved here for result parity with the
// original C++ analysis.
func MatchRequest(pending ir.Value, wait *mpicall.WaitCall, diag ir.Diagnostics) bool {
	q := wait.Request

	if ci, ok := wait.WaitCount.(*ir.ConstInt); ok && ci.Val == 1 && q == pending {
		return true
	}

	if rGEP, ok := pending.(*ir.GEP); ok {
		mrPtr := rGEP.Base

		if qGEP, ok := q.(*ir.GEP); ok && qGEP.Base == mrPtr {
			return true
		}

		if ir.IsLoadFromSameAddr(q, mrPtr) {
			return true
		}
	}

	if qGEP, ok := q.(*ir.GEP); ok {
		qPtr := qGEP.Base
		if ir.IsLoadFromSameAddr(qPtr, pending) {
			return true
		}
	}

	if rCall, ok := pending.(*ir.Call); ok {
		if qCall, ok := q.(*ir.Call); ok {
			if ir.IsSTLIndexedAccess(rCall.Callee) && ir.IsSTLIndexedAccess(qCall.Callee) {
				if rCall.Arg(0) == qCall.Arg(0) {
					return true
				}
			}
		}
	}

	diag.Warn("unsupported request form when matching wait %s against pending request", wait.APIName)

	return false
}
