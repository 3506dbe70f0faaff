package ir

import (
	"fmt"
	"strings"
)

// Module is a single loaded compilation unit.
type Module struct {
	Name      string
	Functions []*Function
	Globals   map[string]*Global
}

// NewModule creates an empty module ready to be populated by a loader.
func NewModule(name string) *Module {
	return &Module{Name: name, Globals: make(map[string]*Global)}
}

// Global returns the module-level global with the given name, creating it on
// first reference so that every reference to the same name resolves to the
// same Value (identity matters throughout the core).
func (m *Module) Global(name string) *Global {
	if g, ok := m.Globals[name]; ok {
		return g
	}

	g := &Global{Name: name}
	m.Globals[name] = g

	return g
}

// Function is an ordered sequence of basic blocks.
type Function struct {
	Name   string
	Params []*Param
	Blocks []*BasicBlock

	succ map[*BasicBlock][]*BasicBlock
	pred map[*BasicBlock][]*BasicBlock
	loc  map[Instr]instrLoc
}

type instrLoc struct {
	Block *BasicBlock
	Index int
}

// BasicBlock holds a straight-line run of non-terminator instructions plus a
// single terminator.
type BasicBlock struct {
	Name   string
	Instrs []Instr
	Term   Terminator
}

// Finalize computes the successor/predecessor adjacency and the
// instruction-location index. A loader must call this once after building a
// function's blocks and before handing the function to the core.
func (f *Function) Finalize() {
	f.succ = make(map[*BasicBlock][]*BasicBlock, len(f.Blocks))
	f.pred = make(map[*BasicBlock][]*BasicBlock, len(f.Blocks))
	f.loc = make(map[Instr]instrLoc)

	for _, bb := range f.Blocks {
		if bb.Term != nil {
			f.succ[bb] = bb.Term.Successors()
		}

		for i, in := range bb.Instrs {
			f.loc[in] = instrLoc{Block: bb, Index: i}
		}
	}

	for _, bb := range f.Blocks {
		for _, s := range f.succ[bb] {
			f.pred[s] = append(f.pred[s], bb)
		}
	}
}

// Successors returns the CFG successors of bb.
func (f *Function) Successors(bb *BasicBlock) []*BasicBlock { return f.succ[bb] }

// Predecessors returns the CFG predecessors of bb.
func (f *Function) Predecessors(bb *BasicBlock) []*BasicBlock { return f.pred[bb] }

// Locate finds the block and in-block index of an instruction, if it belongs
// to this function.
func (f *Function) Locate(in Instr) (block *BasicBlock, index int, ok bool) {
	loc, ok := f.loc[in]
	if !ok {
		return nil, 0, false
	}

	return loc.Block, loc.Index, true
}

func (m *Module) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "module %s\n", m.Name)

	for _, fn := range m.Functions {
		b.WriteString(fn.String())
		b.WriteByte('\n')
	}

	return b.String()
}

func (f *Function) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "func %s(", f.Name)

	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(p.Name)
	}

	b.WriteString(") {\n")

	for _, bb := range f.Blocks {
		b.WriteString(bb.String())
	}

	b.WriteString("}\n")

	return b.String()
}

func (bb *BasicBlock) String() string {
	var b strings.Builder

	if bb.Name != "" {
		fmt.Fprintf(&b, "%s:\n", bb.Name)
	}

	for _, in := range bb.Instrs {
		fmt.Fprintf(&b, "  %s\n", in.String())
	}

	if bb.Term != nil {
		fmt.Fprintf(&b, "  %s\n", bb.Term.String())
	}

	return b.String()
}
