package irformat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mpirace-tools/mpirace/internal/ir"
)

// Value references are small self-describing strings scoped to one
// function's encode/decode pass: "" for nil, "null" for the null-pointer
// constant, "const:<n>" for an integer constant, "param:<name>" for a
// parameter, "global:<name>" for a module global, "constexpr:<ref>" for a
// wrapped address, and "id:<n>" for a previously assigned instruction
// result. Forward references never occur because blocks are encoded and
// decoded in program order and an operand can only name an instruction
// already walked.

type encState struct {
	ids map[ir.Value]string
	n   int
}

func newEncState() *encState { return &encState{ids: make(map[ir.Value]string)} }

func (e *encState) assign(v ir.Value) string {
	id := fmt.Sprintf("id:%d", e.n)
	e.n++
	e.ids[v] = id

	return id
}

func (e *encState) ref(v ir.Value) string {
	if v == nil {
		return ""
	}

	switch t := v.(type) {
	case *ir.Param:
		return "param:" + t.Name
	case *ir.Global:
		return "global:" + t.Name
	case *ir.NullPtr:
		return "null"
	case *ir.ConstInt:
		return "const:" + strconv.FormatInt(t.Val, 10)
	case *ir.ConstExpr:
		return "constexpr:" + e.ref(t.Op)
	}

	if id, ok := e.ids[v]; ok {
		return id
	}

	return ""
}

type decState struct {
	mod    *ir.Module
	params map[string]*ir.Param
	ids    map[string]ir.Value
}

func newDecState(mod *ir.Module, params map[string]*ir.Param) *decState {
	return &decState{mod: mod, params: params, ids: make(map[string]ir.Value)}
}

func (d *decState) bind(id string, v ir.Value) { d.ids[id] = v }

func (d *decState) resolve(ref string) ir.Value {
	if ref == "" {
		return nil
	}

	if ref == "null" {
		return &ir.NullPtr{}
	}

	if n, ok := strings.CutPrefix(ref, "const:"); ok {
		v, _ := strconv.ParseInt(n, 10, 64)

		return &ir.ConstInt{Val: v}
	}

	if name, ok := strings.CutPrefix(ref, "param:"); ok {
		return d.params[name]
	}

	if name, ok := strings.CutPrefix(ref, "global:"); ok {
		return d.mod.Global(name)
	}

	if inner, ok := strings.CutPrefix(ref, "constexpr:"); ok {
		return &ir.ConstExpr{Op: d.resolve(inner)}
	}

	return d.ids[ref]
}

func resolveAll(d *decState, refs []string) []ir.Value {
	if refs == nil {
		return nil
	}

	vals := make([]ir.Value, len(refs))
	for i, r := range refs {
		vals[i] = d.resolve(r)
	}

	return vals
}
