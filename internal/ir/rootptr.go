package ir

// ValueSet is a small set of Values, used for root-pointer collections.
type ValueSet map[Value]bool

// IsNull reports whether v is the null-pointer constant.
func IsNull(v Value) bool {
	_, ok := v.(*NullPtr)

	return ok
}

// IsConstantIndex reports whether every index operand of g (and, transitively,
// of any GEP that serves as its base pointer) is a constant integer.
func IsConstantIndex(g *GEP) bool {
	if base, ok := g.Base.(*GEP); ok {
		if !IsConstantIndex(base) {
			return false
		}
	}

	for _, idx := range g.Indices {
		if _, ok := idx.(*ConstInt); !ok {
			return false
		}
	}

	return true
}

// IsLoadFromSameAddr reports whether a and b are both loads reading from the
// identical address operand.
func IsLoadFromSameAddr(a, b Value) bool {
	la, ok := a.(*Load)
	if !ok {
		return false
	}

	lb, ok := b.(*Load)
	if !ok {
		return false
	}

	return la.Addr == lb.Addr
}

// StripOneBitCast peels a single outer bitcast off v, if present.
func StripOneBitCast(v Value) Value {
	if bc, ok := v.(*BitCast); ok {
		return bc.Src
	}

	return v
}

// CollectRootPointers walks a pointer expression back to its terminal
// producers: local allocations, globals, null, heap allocations, STL
// container pointers, and values reconstructed from the most recent
// defining store. It is a deliberately local, syntactic approximation, not
// an alias analysis.
func CollectRootPointers(fn *Function, v Value, diag Diagnostics) ValueSet {
	roots := make(ValueSet)
	collectRootPointers(fn, v, roots, diag)

	return roots
}

func collectRootPointers(fn *Function, v Value, roots ValueSet, diag Diagnostics) {
	switch t := v.(type) {
	case *Alloca:
		roots[v] = true
	case *Global:
		roots[v] = true
	case *NullPtr:
		roots[v] = true
	case *BitCast:
		collectRootPointers(fn, t.Src, roots, diag)
	case *GEP:
		collectRootPointers(fn, t.Base, roots, diag)
	case *ConstExpr:
		collectRootPointers(fn, t.Op, roots, diag)
	case *Call:
		switch {
		case t.Callee == MallocName:
			roots[v] = true
		case IsSTLIndexedAccess(t.Callee):
			collectRootPointers(fn, t.Arg(0), roots, diag)
		default:
			diag.Warn("unsupported call in root-pointer trace: %s", t.Callee)
		}
	case *Load:
		collectLoadRoot(fn, t, roots, diag)
	default:
		diag.Warn("unsupported pointer in CollectRootPointers: %v", v)
	}
}

// collectLoadRoot implements the load case: search backward for the most
// recent store to the same address, first within the enclosing block, then
// transitively into predecessor blocks via BFS.
func collectLoadRoot(fn *Function, ld *Load, roots ValueSet, diag Diagnostics) {
	block, idx, ok := fn.Locate(ld)
	if !ok {
		diag.Warn("load not located in any function block during root tracing")

		return
	}

	if storeVal, found := searchBlockBackward(block.Instrs[:idx], ld.Addr); found {
		collectRootPointers(fn, storeVal, roots, diag)

		return
	}

	visited := make(map[*BasicBlock]bool)
	queue := append([]*BasicBlock(nil), fn.Predecessors(block)...)

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if visited[cur] {
			continue
		}

		visited[cur] = true

		if storeVal, found := searchBlockBackward(cur.Instrs, ld.Addr); found {
			collectRootPointers(fn, storeVal, roots, diag)

			continue
		}

		queue = append(queue, fn.Predecessors(cur)...)
	}
}

// searchBlockBackward scans instrs from the end looking for a Store whose
// destination is addr, returning the value stored.
func searchBlockBackward(instrs []Instr, addr Value) (Value, bool) {
	for i := len(instrs) - 1; i >= 0; i-- {
		if st, ok := instrs[i].(*Store); ok && st.Addr == addr {
			return st.Val, true
		}
	}

	return nil, false
}
