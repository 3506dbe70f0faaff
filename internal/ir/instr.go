package ir

import (
	"fmt"
	"strings"
)

// Value is anything an instruction operand can refer to: an instruction
// result, a function parameter, a global, or a constant. Identity (Go
// pointer equality of the concrete node) is "the same IR value" throughout
// the core, matching the source analysis's use of raw LLVM Value pointers.
type Value interface {
	isValue()
}

// Instr is a non-terminator instruction inside a basic block.
type Instr interface {
	isInstr()
	String() string
}

// DebugLoc is the optional source-location metadata an instruction may carry.
type DebugLoc struct {
	Dir  string
	File string
	Line int
}

// HasLoc reports whether a location was actually attached.
func (d DebugLoc) HasLoc() bool { return d.Line > 0 }

// Terminator ends a basic block.
type Terminator interface {
	isTerm()
	String() string
	Successors() []*BasicBlock
}

// Param is a function parameter.
type Param struct{ Name string }

func (*Param) isValue() {}

// Global is a module-level symbol (a variable or a function address taken as
// a value). Two references to the same name yield the same *Global.
type Global struct{ Name string }

func (*Global) isValue() {}

// NullPtr is the typed null-pointer constant.
type NullPtr struct{ Ty Type }

func (*NullPtr) isValue() {}

// ConstInt is an integer constant. Each decoded occurrence is a fresh node;
// callers that need two occurrences to be value-equal should reuse the same
// ConstInt pointer (rare - value comparisons in this analysis compare the
// decoded integer, not node identity).
type ConstInt struct{ Val int64 }

func (*ConstInt) isValue() {}

// ConstExpr wraps a single address operand, mirroring LLVM's constant
// expressions (e.g. a bitcast baked into a global initializer).
type ConstExpr struct{ Op Value }

func (*ConstExpr) isValue() {}

// Alloca allocates a local stack slot.
type Alloca struct {
	Name string // source name, for readability only
}

func (*Alloca) isValue() {}
func (*Alloca) isInstr() {}

// BitCast reinterprets a pointer without changing its address.
type BitCast struct{ Src Value }

func (*BitCast) isValue() {}
func (*BitCast) isInstr() {}

// GEP computes a derived pointer from a base pointer and index operands.
// Operand 0 is the base pointer; Operands() returns base followed by
// indices, with the base pointer always the first entry.
type GEP struct {
	Base    Value
	Indices []Value
}

func (*GEP) isValue() {}
func (*GEP) isInstr() {}

// Operands returns the base pointer followed by the index operands.
func (g *GEP) Operands() []Value {
	ops := make([]Value, 0, len(g.Indices)+1)
	ops = append(ops, g.Base)
	ops = append(ops, g.Indices...)

	return ops
}

// Load reads ElemType bytes from Addr.
type Load struct {
	Addr     Value
	ElemType Type
	Loc      DebugLoc
}

func (*Load) isValue() {}
func (*Load) isInstr() {}

// Store writes Val (of ElemType) to Addr. Stores produce no value.
type Store struct {
	Addr     Value
	Val      Value
	ElemType Type
	Loc      DebugLoc
}

func (*Store) isInstr() {}

// BinOpKind enumerates supported binary operators.
type BinOpKind int

const (
	OpAdd BinOpKind = iota
	OpSub
	OpMul
	OpDiv
)

func (k BinOpKind) String() string {
	switch k {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	default:
		return "binop?"
	}
}

// BinOp is a binary arithmetic instruction.
type BinOp struct {
	Op       BinOpKind
	LHS, RHS Value
}

func (*BinOp) isValue() {}
func (*BinOp) isInstr() {}

// CmpPred enumerates comparison predicates. Only CmpNE is load-bearing for
// the branch-pruning heuristic, but the full set keeps comparison
// instructions represented faithfully in the IR.
type CmpPred int

const (
	CmpEQ CmpPred = iota
	CmpNE
	CmpSLT
	CmpSLE
	CmpSGT
	CmpSGE
)

func (p CmpPred) String() string {
	switch p {
	case CmpEQ:
		return "eq"
	case CmpNE:
		return "ne"
	case CmpSLT:
		return "slt"
	case CmpSLE:
		return "sle"
	case CmpSGT:
		return "sgt"
	case CmpSGE:
		return "sge"
	default:
		return "cmp?"
	}
}

// ICmp is an integer comparison, producing a 0/1 value.
type ICmp struct {
	Pred     CmpPred
	LHS, RHS Value
}

func (*ICmp) isValue() {}
func (*ICmp) isInstr() {}

// Call is a direct call by symbolic callee name. Its result (when it is
// referenced elsewhere) is the Call node itself - this is how the branch
// pruning heuristic in the engine compares a conditional branch's operand
// against "the non-blocking call's return value".
type Call struct {
	Callee string
	Args   []Value
	Loc    DebugLoc
}

func (*Call) isValue() {}
func (*Call) isInstr() {}

// Arg returns the i'th call argument, or nil if out of range.
func (c *Call) Arg(i int) Value {
	if i < 0 || i >= len(c.Args) {
		return nil
	}

	return c.Args[i]
}

// Br is an unconditional branch.
type Br struct{ Target *BasicBlock }

func (*Br) isTerm()                     {}
func (b *Br) Successors() []*BasicBlock { return []*BasicBlock{b.Target} }

// CondBr is a conditional branch. True is taken when Cond is non-zero.
type CondBr struct {
	Cond        Value
	True, False *BasicBlock
}

func (*CondBr) isTerm() {}
func (b *CondBr) Successors() []*BasicBlock {
	return []*BasicBlock{b.True, b.False}
}

// Ret returns from the function, optionally with a value.
type Ret struct{ Val Value }

func (*Ret) isTerm()                   {}
func (*Ret) Successors() []*BasicBlock { return nil }

// --- String() -------------------------------------------------------------

func refString(v Value) string {
	switch t := v.(type) {
	case nil:
		return "<nil>"
	case *Param:
		return "%" + t.Name
	case *Global:
		return "@" + t.Name
	case *NullPtr:
		return "null"
	case *ConstInt:
		return fmt.Sprintf("%d", t.Val)
	case *ConstExpr:
		return "constexpr(" + refString(t.Op) + ")"
	case *Alloca:
		if t.Name != "" {
			return "%" + t.Name
		}

		return fmt.Sprintf("%%alloca.%p", t)
	case *BitCast:
		return fmt.Sprintf("%%bc.%p", t)
	case *GEP:
		return fmt.Sprintf("%%gep.%p", t)
	case *Load:
		return fmt.Sprintf("%%ld.%p", t)
	case *BinOp:
		return fmt.Sprintf("%%bo.%p", t)
	case *ICmp:
		return fmt.Sprintf("%%cmp.%p", t)
	case *Call:
		return fmt.Sprintf("%%call.%p", t)
	default:
		return "<value>"
	}
}

func (i *Alloca) String() string {
	if i.Name != "" {
		return fmt.Sprintf("%s = alloca ; %s", refString(i), i.Name)
	}

	return refString(i) + " = alloca"
}

func (i *BitCast) String() string {
	return fmt.Sprintf("%s = bitcast %s", refString(i), refString(i.Src))
}

func (g *GEP) String() string {
	parts := make([]string, 0, len(g.Indices))
	for _, idx := range g.Indices {
		parts = append(parts, refString(idx))
	}

	return fmt.Sprintf("%s = getelementptr %s, %s", refString(g), refString(g.Base), strings.Join(parts, ", "))
}

func (i *Load) String() string {
	return fmt.Sprintf("%s = load %s, %s%s", refString(i), i.ElemType, refString(i.Addr), locSuffix(i.Loc))
}

func (i *Store) String() string {
	return fmt.Sprintf("store %s, %s, %s%s", i.ElemType, refString(i.Val), refString(i.Addr), locSuffix(i.Loc))
}

// InstrLoc extracts the debug location carried by in, if its concrete kind
// carries one. Alloca, BitCast, GEP, BinOp, and ICmp never carry source
// locations in this IR; Load, Store, and Call do.
func InstrLoc(in Instr) (DebugLoc, bool) {
	switch t := in.(type) {
	case *Load:
		return t.Loc, t.Loc.HasLoc()
	case *Store:
		return t.Loc, t.Loc.HasLoc()
	case *Call:
		return t.Loc, t.Loc.HasLoc()
	default:
		return DebugLoc{}, false
	}
}

func locSuffix(loc DebugLoc) string {
	if !loc.HasLoc() {
		return ""
	}

	return fmt.Sprintf(" ; %s:%d", loc.File, loc.Line)
}

func (i *BinOp) String() string {
	return fmt.Sprintf("%s = %s %s, %s", refString(i), i.Op, refString(i.LHS), refString(i.RHS))
}

func (i *ICmp) String() string {
	return fmt.Sprintf("%s = icmp.%s %s, %s", refString(i), i.Pred, refString(i.LHS), refString(i.RHS))
}

func (c *Call) String() string {
	args := make([]string, 0, len(c.Args))
	for _, a := range c.Args {
		args = append(args, refString(a))
	}

	loc := ""
	if c.Loc.HasLoc() {
		loc = fmt.Sprintf(" ; %s:%d", c.Loc.File, c.Loc.Line)
	}

	return fmt.Sprintf("%s = call @%s(%s)%s", refString(c), c.Callee, strings.Join(args, ", "), loc)
}

func (b *Br) String() string { return "br " + b.Target.Name }

func (b *CondBr) String() string {
	return fmt.Sprintf("brcond %s, %s, %s", refString(b.Cond), b.True.Name, b.False.Name)
}

func (r *Ret) String() string {
	if r.Val == nil {
		return "ret"
	}

	return "ret " + refString(r.Val)
}
