package irformat

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/mpirace-tools/mpirace/internal/ir"
)

// Encode serializes m to its textual form, stamping the current
// SchemaVersion.
func Encode(m *ir.Module) ([]byte, error) {
	doc := moduleDoc{SchemaVersion: SchemaVersion, Name: m.Name}

	for name := range m.Globals {
		doc.Globals = append(doc.Globals, name)
	}

	sort.Strings(doc.Globals)

	for _, fn := range m.Functions {
		doc.Functions = append(doc.Functions, encodeFunction(fn))
	}

	return json.MarshalIndent(doc, "", "  ")
}

// Decode parses data into a ready-to-analyze *ir.Module, rejecting a
// module whose schema_version falls outside CompatRange.
func Decode(data []byte) (*ir.Module, error) {
	var doc moduleDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("irformat: parse: %w", err)
	}

	v, err := semver.NewVersion(doc.SchemaVersion)
	if err != nil {
		return nil, fmt.Errorf("irformat: invalid schema_version %q: %w", doc.SchemaVersion, err)
	}

	if !CompatRange.Check(v) {
		return nil, fmt.Errorf("irformat: schema_version %s is not compatible with %s", doc.SchemaVersion, CompatRange)
	}

	mod := ir.NewModule(doc.Name)
	for _, name := range doc.Globals {
		mod.Global(name)
	}

	for _, fd := range doc.Functions {
		fn, err := decodeFunction(mod, fd)
		if err != nil {
			return nil, fmt.Errorf("irformat: function %s: %w", fd.Name, err)
		}

		mod.Functions = append(mod.Functions, fn)
	}

	return mod, nil
}

func encodeFunction(fn *ir.Function) functionDoc {
	fd := functionDoc{Name: fn.Name}

	for _, p := range fn.Params {
		fd.Params = append(fd.Params, p.Name)
	}

	enc := newEncState()

	for _, bb := range fn.Blocks {
		fd.Blocks = append(fd.Blocks, encodeBlock(enc, bb))
	}

	return fd
}

func encodeBlock(enc *encState, bb *ir.BasicBlock) blockDoc {
	bd := blockDoc{Name: bb.Name}

	for _, in := range bb.Instrs {
		bd.Instrs = append(bd.Instrs, encodeInstr(enc, in))
	}

	bd.Term = encodeTerm(enc, bb.Term)

	return bd
}

func encodeInstr(enc *encState, in ir.Instr) instrDoc {
	// Store is the one Instr that is not also a Value (it has no result
	// another operand could reference), so it gets no assigned id.
	if st, ok := in.(*ir.Store); ok {
		return instrDoc{
			Kind:     "store",
			Addr:     enc.ref(st.Addr),
			Val:      enc.ref(st.Val),
			ElemType: encodeType(st.ElemType),
			Loc:      encodeLoc(st.Loc),
		}
	}

	id := enc.assign(in.(ir.Value))
	d := instrDoc{ID: id}

	switch t := in.(type) {
	case *ir.Alloca:
		d.Kind = "alloca"
		d.Name = t.Name
	case *ir.BitCast:
		d.Kind = "bitcast"
		d.Src = enc.ref(t.Src)
	case *ir.GEP:
		d.Kind = "gep"
		d.Base = enc.ref(t.Base)

		for _, idx := range t.Indices {
			d.Indices = append(d.Indices, enc.ref(idx))
		}
	case *ir.Load:
		d.Kind = "load"
		d.Addr = enc.ref(t.Addr)
		d.ElemType = encodeType(t.ElemType)
		d.Loc = encodeLoc(t.Loc)
	case *ir.BinOp:
		d.Kind = "binop"
		d.Op = binOpNames[t.Op]
		d.LHS = enc.ref(t.LHS)
		d.RHS = enc.ref(t.RHS)
	case *ir.ICmp:
		d.Kind = "icmp"
		d.Pred = cmpPredNames[t.Pred]
		d.LHS = enc.ref(t.LHS)
		d.RHS = enc.ref(t.RHS)
	case *ir.Call:
		d.Kind = "call"
		d.Callee = t.Callee

		for _, a := range t.Args {
			d.Args = append(d.Args, enc.ref(a))
		}

		d.Loc = encodeLoc(t.Loc)
	}

	return d
}

func encodeTerm(enc *encState, term ir.Terminator) termDoc {
	switch t := term.(type) {
	case *ir.Br:
		return termDoc{Kind: "br", Target: t.Target.Name}
	case *ir.CondBr:
		return termDoc{Kind: "condbr", Cond: enc.ref(t.Cond), True: t.True.Name, False: t.False.Name}
	case *ir.Ret:
		return termDoc{Kind: "ret", Val: enc.ref(t.Val)}
	default:
		return termDoc{Kind: "ret"}
	}
}

func decodeFunction(mod *ir.Module, fd functionDoc) (*ir.Function, error) {
	fn := &ir.Function{Name: fd.Name}

	params := make(map[string]*ir.Param, len(fd.Params))
	for _, name := range fd.Params {
		p := &ir.Param{Name: name}
		params[name] = p
		fn.Params = append(fn.Params, p)
	}

	blocksByName := make(map[string]*ir.BasicBlock, len(fd.Blocks))

	for _, bd := range fd.Blocks {
		bb := &ir.BasicBlock{Name: bd.Name}
		blocksByName[bd.Name] = bb
		fn.Blocks = append(fn.Blocks, bb)
	}

	dec := newDecState(mod, params)

	for i, bd := range fd.Blocks {
		bb := fn.Blocks[i]

		for _, id := range bd.Instrs {
			in, err := decodeInstr(dec, id)
			if err != nil {
				return nil, err
			}

			bb.Instrs = append(bb.Instrs, in)
		}

		term, err := decodeTerm(dec, bd.Term, blocksByName)
		if err != nil {
			return nil, err
		}

		bb.Term = term
	}

	fn.Finalize()

	return fn, nil
}

func decodeInstr(dec *decState, d instrDoc) (ir.Instr, error) {
	switch d.Kind {
	case "alloca":
		v := &ir.Alloca{Name: d.Name}
		dec.bind(d.ID, v)

		return v, nil
	case "bitcast":
		v := &ir.BitCast{Src: dec.resolve(d.Src)}
		dec.bind(d.ID, v)

		return v, nil
	case "gep":
		v := &ir.GEP{Base: dec.resolve(d.Base), Indices: resolveAll(dec, d.Indices)}
		dec.bind(d.ID, v)

		return v, nil
	case "load":
		v := &ir.Load{Addr: dec.resolve(d.Addr), ElemType: decodeType(d.ElemType), Loc: decodeLoc(d.Loc)}
		dec.bind(d.ID, v)

		return v, nil
	case "store":
		v := &ir.Store{Addr: dec.resolve(d.Addr), Val: dec.resolve(d.Val), ElemType: decodeType(d.ElemType), Loc: decodeLoc(d.Loc)}

		return v, nil
	case "binop":
		v := &ir.BinOp{Op: binOpKinds[d.Op], LHS: dec.resolve(d.LHS), RHS: dec.resolve(d.RHS)}
		dec.bind(d.ID, v)

		return v, nil
	case "icmp":
		v := &ir.ICmp{Pred: cmpPreds[d.Pred], LHS: dec.resolve(d.LHS), RHS: dec.resolve(d.RHS)}
		dec.bind(d.ID, v)

		return v, nil
	case "call":
		v := &ir.Call{Callee: d.Callee, Args: resolveAll(dec, d.Args), Loc: decodeLoc(d.Loc)}
		dec.bind(d.ID, v)

		return v, nil
	default:
		return nil, fmt.Errorf("unknown instruction kind %q", d.Kind)
	}
}

func decodeTerm(dec *decState, d termDoc, blocks map[string]*ir.BasicBlock) (ir.Terminator, error) {
	switch d.Kind {
	case "br":
		target, ok := blocks[d.Target]
		if !ok {
			return nil, fmt.Errorf("br target %q not found", d.Target)
		}

		return &ir.Br{Target: target}, nil
	case "condbr":
		t, ok1 := blocks[d.True]
		f, ok2 := blocks[d.False]

		if !ok1 || !ok2 {
			return nil, fmt.Errorf("condbr targets %q/%q not found", d.True, d.False)
		}

		return &ir.CondBr{Cond: dec.resolve(d.Cond), True: t, False: f}, nil
	case "ret":
		return &ir.Ret{Val: dec.resolve(d.Val)}, nil
	default:
		return nil, fmt.Errorf("unknown terminator kind %q", d.Kind)
	}
}
