package race

import (
	"github.com/mpirace-tools/mpirace/internal/ir"
	"github.com/mpirace-tools/mpirace/internal/mpicall"
)

// Report is one detected data race: a non-blocking call and an offending
// instruction found somewhere in the region between it and one of its
// matched waits.
type Report struct {
	NonBlockingCall *mpicall.NonBlockingCall
	Offending       ir.Instr
}

// DetectFunction runs the full engine over every non-blocking call already
// classified in reg: wait identification, then guarded region traversal
// against each matched wait.
func DetectFunction(fn *ir.Function, reg *mpicall.Registry, diag ir.Diagnostics) []Report {
	var reports []Report

	for _, nb := range reg.NonBlocking {
		identifyWaits(fn, nb, reg, diag)

		for _, w := range nb.Waits {
			for _, instr := range regionOffenders(fn, nb, w, reg, diag) {
				reports = append(reports, Report{NonBlockingCall: nb, Offending: instr})
			}
		}
	}

	return reports
}

// isWantedWait reports whether instr is a wait call whose recorded
// request matches nb's pending request.
func isWantedWait(instr ir.Instr, nb *mpicall.NonBlockingCall, reg *mpicall.Registry, diag ir.Diagnostics) (*mpicall.WaitCall, bool) {
	call, ok := instr.(*ir.Call)
	if !ok {
		return nil, false
	}

	wc := reg.WaitByCall(call)
	if wc == nil {
		return nil, false
	}

	return wc, MatchRequest(nb.Request, wc, diag)
}

// identifyWaits finds the wait(s) that complete nb's request. An in-block
// match terminates the search unconditionally - at most one wait is ever
// recorded that way. A match found during the successor-block BFS instead
// stops only that branch's further descent, so multiple waits reached
// along divergent paths can all be recorded. This asymmetry is
// load-bearing, not incidental, and is preserved exactly from the original
// C++ analysis's identifyWaitCalls.
func identifyWaits(fn *ir.Function, nb *mpicall.NonBlockingCall, reg *mpicall.Registry, diag ir.Diagnostics) {
	block, idx, ok := fn.Locate(nb.Call)
	if !ok {
		diag.Warn("non-blocking call %s not located in its function", nb.APIName)

		return
	}

	for _, instr := range block.Instrs[idx+1:] {
		if wc, matched := isWantedWait(instr, nb, reg, diag); matched {
			nb.AddWait(wc)

			return
		}
	}

	visited := make(map[*ir.BasicBlock]bool)
	queue := append([]*ir.BasicBlock(nil), fn.Successors(block)...)

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if visited[cur] {
			continue
		}

		visited[cur] = true

		found := false

		for _, instr := range cur.Instrs {
			if wc, matched := isWantedWait(instr, nb, reg, diag); matched {
				nb.AddWait(wc)
				found = true

				break
			}
		}

		if found {
			continue
		}

		queue = append(queue, fn.Successors(cur)...)
	}
}

// admittedSuccessors returns term's successors that can still reach
// target.
func admittedSuccessors(fn *ir.Function, term ir.Terminator, target *ir.BasicBlock) []*ir.BasicBlock {
	if term == nil {
		return nil
	}

	var admitted []*ir.BasicBlock

	for _, succ := range term.Successors() {
		if ir.IsReachable(fn, succ, target) {
			admitted = append(admitted, succ)
		}
	}

	return admitted
}

// pruneFailurePath removes the "call failed" successor from frontier when
// term is a conditional branch on `nb.Call != 0` - the idiom "if the
// non-blocking call failed, skip the region". Applied only to the
// successors of the non-blocking call's own block, matching the original
// C++ analysis's single application at the start of the traversal.
func pruneFailurePath(nb *mpicall.NonBlockingCall, term ir.Terminator, frontier []*ir.BasicBlock) []*ir.BasicBlock {
	cond, ok := term.(*ir.CondBr)
	if !ok {
		return frontier
	}

	cmp, ok := cond.Cond.(*ir.ICmp)
	if !ok || cmp.Pred != ir.CmpNE {
		return frontier
	}

	isFailureCheck := (cmp.LHS == ir.Value(nb.Call) && isConstZero(cmp.RHS)) ||
		(cmp.RHS == ir.Value(nb.Call) && isConstZero(cmp.LHS))
	if !isFailureCheck {
		return frontier
	}

	pruned := frontier[:0:0]

	for _, bb := range frontier {
		if bb != cond.True {
			pruned = append(pruned, bb)
		}
	}

	return pruned
}

func isConstZero(v ir.Value) bool {
	ci, ok := v.(*ir.ConstInt)

	return ok && ci.Val == 0
}

// regionOffenders walks the region [nb, w) and returns every instruction
// whose access overlaps nb's pending buffer.
func regionOffenders(fn *ir.Function, nb *mpicall.NonBlockingCall, w *mpicall.WaitCall, reg *mpicall.Registry, diag ir.Diagnostics) []ir.Instr {
	var offenders []ir.Instr

	nbBlock, nbIdx, ok := fn.Locate(nb.Call)
	if !ok {
		diag.Warn("non-blocking call %s not located in its function", nb.APIName)

		return nil
	}

	for _, instr := range nbBlock.Instrs[nbIdx+1:] {
		if call, isCall := instr.(*ir.Call); isCall && nb.IsWaitOfThis(call) {
			return offenders
		}

		offenders = appendIfOffending(offenders, fn, nb, reg, instr, diag)
	}

	wBlock, _, ok := fn.Locate(w.Call)
	if !ok {
		diag.Warn("wait call %s not located in its function", w.APIName)

		return offenders
	}

	visited := make(map[*ir.BasicBlock]bool)

	frontier := pruneFailurePath(nb, nbBlock.Term, admittedSuccessors(fn, nbBlock.Term, wBlock))

	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]

		if visited[cur] {
			continue
		}

		visited[cur] = true

		stop := false

		for _, instr := range cur.Instrs {
			if call, isCall := instr.(*ir.Call); isCall && nb.IsWaitOfThis(call) {
				stop = true

				break
			}

			offenders = appendIfOffending(offenders, fn, nb, reg, instr, diag)
		}

		if stop {
			continue
		}

		frontier = append(frontier, admittedSuccessors(fn, cur.Term, wBlock)...)
	}

	return offenders
}

func appendIfOffending(offenders []ir.Instr, fn *ir.Function, nb *mpicall.NonBlockingCall, reg *mpicall.Registry, instr ir.Instr, diag ir.Diagnostics) []ir.Instr {
	ptr, size, proceed := candidateAccess(nb, reg, instr, diag)
	if !proceed {
		return offenders
	}

	if overlap(fn, ptr, size, nb.BufferStart, nb.BufferAccessSize, diag) {
		offenders = append(offenders, instr)
	}

	return offenders
}

// candidateAccess derives a (ptr, size) candidate access from instr.
// proceed is false only for the loop-invariance guard: a non-blocking call
// revisited inside a loop whose buffer address is not (approximately)
// loop-invariant is skipped entirely, matching the original C++ analysis's
// early return.
func candidateAccess(nb *mpicall.NonBlockingCall, reg *mpicall.Registry, instr ir.Instr, diag ir.Diagnostics) (ir.Value, uint64, bool) {
	if nb.Write {
		switch t := instr.(type) {
		case *ir.Load:
			return t.Addr, ir.AccessSizeFromElemType(t.ElemType, diag), true
		case *ir.Store:
			return t.Addr, ir.AccessSizeFromElemType(t.ElemType, diag), true
		case *ir.Call:
			if t == nb.Call && !isLoopInvariantBuffer(nb.BufferStart) {
				return nil, 0, false
			}

			if other := reg.NonBlockingByCall(t); other != nil {
				return other.BufferStart, other.BufferAccessSize, true
			}

			if other := reg.BlockingByCall(t); other != nil {
				return other.BufferStart, other.BufferAccessSize, true
			}
		}

		return nil, 0, true
	}

	switch t := instr.(type) {
	case *ir.Store:
		return t.Addr, ir.AccessSizeFromElemType(t.ElemType, diag), true
	case *ir.Call:
		if other := reg.NonBlockingByCall(t); other != nil && other.Write {
			return other.BufferStart, other.BufferAccessSize, true
		}
	}

	return nil, 0, true
}

// isLoopInvariantBuffer approximates "this buffer address does not change
// across loop iterations" by the two forms the original C++ analysis
// recognizes: a getelementptr with every index constant, or an
// STL-indexed-access call whose index argument is constant. Any other
// form is conservatively treated as variant (silently skipped - this guard
// is intentionally partial).
func isLoopInvariantBuffer(buf ir.Value) bool {
	if gep, ok := buf.(*ir.GEP); ok {
		return ir.IsConstantIndex(gep)
	}

	if call, ok := buf.(*ir.Call); ok && ir.IsSTLIndexedAccess(call.Callee) {
		_, constIdx := call.Arg(1).(*ir.ConstInt)

		return constIdx
	}

	return false
}

// overlap is the buffer-overlap test: null check, constant-offset GEP
// comparison, then a root-pointer-set intersection fallback.
func overlap(fn *ir.Function, ptr ir.Value, accessSize uint64, bufferStart ir.Value, bufferAccessSize uint64, diag ir.Diagnostics) bool {
	if ptr == nil {
		return false
	}

	ptrGEP, ptrIsGEP := ptr.(*ir.GEP)
	bufGEP, bufIsGEP := bufferStart.(*ir.GEP)

	if ptrIsGEP && bufIsGEP {
		ptrOps := ptrGEP.Operands()
		bufOps := bufGEP.Operands()

		if len(ptrOps) != len(bufOps) {
			return false
		}

		for i := 1; i < len(ptrOps); i++ {
			o0, o1 := ptrOps[i], bufOps[i]
			if o0 == o1 {
				continue
			}

			ci0, ok0 := o0.(*ir.ConstInt)
			ci1, ok1 := o1.(*ir.ConstInt)

			if ok0 && ok1 && accessSize != 0 && bufferAccessSize != 0 {
				v0, v1 := uint64(ci0.Val), uint64(ci1.Val)
				if (v0 <= v1 && v1+bufferAccessSize <= v0+accessSize) ||
					(v1 <= v0 && v0+accessSize <= v1+bufferAccessSize) {
					continue
				}
			}

			return false
		}

		if ptrGEP.Base == bufGEP.Base {
			return true
		}

		// A match here falls through to the root-pointer check below rather
		// than returning true - only a mismatch short-circuits with false.
		if poGEP1, ok1 := ptrGEP.Base.(*ir.GEP); ok1 {
			if poGEP2, ok2 := bufGEP.Base.(*ir.GEP); ok2 {
				ops1, ops2 := poGEP1.Operands(), poGEP2.Operands()
				if len(ops1) != len(ops2) {
					return false
				}

				for i := range ops1 {
					if ops1[i] != ops2[i] {
						return false
					}
				}
			}
		}
	}

	ptrRoots := ir.CollectRootPointers(fn, ptr, diag)
	bufRoots := ir.CollectRootPointers(fn, bufferStart, diag)

	for v := range ptrRoots {
		if ir.IsNull(v) {
			continue
		}

		if bufRoots[v] {
			return true
		}
	}

	return false
}
