package irformat

import "github.com/mpirace-tools/mpirace/internal/ir"

func encodeType(t ir.Type) *typeDoc {
	if t == nil {
		return nil
	}

	switch v := t.(type) {
	case ir.IntType:
		return &typeDoc{Kind: "int", Bits: v.Bits}
	case ir.FloatType:
		return &typeDoc{Kind: "float", Bits: v.Bits}
	case ir.PtrType:
		return &typeDoc{Kind: "ptr", Elem: encodeType(v.Elem)}
	case ir.VoidType:
		return &typeDoc{Kind: "void"}
	case ir.NamedType:
		return &typeDoc{Kind: "named", Name: v.Name}
	default:
		return nil
	}
}

func decodeType(d *typeDoc) ir.Type {
	if d == nil {
		return nil
	}

	switch d.Kind {
	case "int":
		return ir.IntType{Bits: d.Bits}
	case "float":
		return ir.FloatType{Bits: d.Bits}
	case "ptr":
		return ir.PtrType{Elem: decodeType(d.Elem)}
	case "void":
		return ir.VoidType{}
	case "named":
		return ir.NamedType{Name: d.Name}
	default:
		return nil
	}
}

func encodeLoc(loc ir.DebugLoc) *locDoc {
	if !loc.HasLoc() {
		return nil
	}

	return &locDoc{Dir: loc.Dir, File: loc.File, Line: loc.Line}
}

func decodeLoc(d *locDoc) ir.DebugLoc {
	if d == nil {
		return ir.DebugLoc{}
	}

	return ir.DebugLoc{Dir: d.Dir, File: d.File, Line: d.Line}
}

var binOpNames = map[ir.BinOpKind]string{
	ir.OpAdd: "add",
	ir.OpSub: "sub",
	ir.OpMul: "mul",
	ir.OpDiv: "div",
}

var binOpKinds = map[string]ir.BinOpKind{
	"add": ir.OpAdd,
	"sub": ir.OpSub,
	"mul": ir.OpMul,
	"div": ir.OpDiv,
}

var cmpPredNames = map[ir.CmpPred]string{
	ir.CmpEQ:  "eq",
	ir.CmpNE:  "ne",
	ir.CmpSLT: "slt",
	ir.CmpSLE: "sle",
	ir.CmpSGT: "sgt",
	ir.CmpSGE: "sge",
}

var cmpPreds = map[string]ir.CmpPred{
	"eq":  ir.CmpEQ,
	"ne":  ir.CmpNE,
	"slt": ir.CmpSLT,
	"sle": ir.CmpSLE,
	"sgt": ir.CmpSGT,
	"sge": ir.CmpSGE,
}
