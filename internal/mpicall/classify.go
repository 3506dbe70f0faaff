package mpicall

import "github.com/mpirace-tools/mpirace/internal/ir"

var nonBlockingAPIs = map[string]bool{
	"MPI_Isend":  true,
	"MPI_Irsend": true,
	"MPI_Irecv":  true,
}

var blockingAPIs = map[string]bool{
	"MPI_Send": true,
	"MPI_Recv": true,
}

var waitAPIs = map[string]bool{
	"MPI_Wait":    true,
	"MPI_Waitall": true,
	"MPI_Waitany": true,
}

var writeAPIs = map[string]bool{
	"MPI_Irecv": true,
	"MPI_Recv":  true,
}

// Registry holds the three per-function call record collections, plus
// reverse lookups by originating call instruction. It is owned by the
// function currently under analysis and discarded when analysis moves to
// the next one.
type Registry struct {
	NonBlocking []*NonBlockingCall
	Blocking    []*BlockingCall
	Wait        []*WaitCall

	nbByCall map[*ir.Call]*NonBlockingCall
	bcByCall map[*ir.Call]*BlockingCall
	wcByCall map[*ir.Call]*WaitCall
}

// NonBlockingByCall returns the record for call, or nil if call is not a
// known non-blocking call.
func (r *Registry) NonBlockingByCall(call *ir.Call) *NonBlockingCall {
	return r.nbByCall[call]
}

// BlockingByCall returns the record for call, or nil if call is not a
// known blocking call.
func (r *Registry) BlockingByCall(call *ir.Call) *BlockingCall {
	return r.bcByCall[call]
}

// WaitByCall returns the record for call, or nil if call is not a known
// wait call.
func (r *Registry) WaitByCall(call *ir.Call) *WaitCall {
	return r.wcByCall[call]
}

// stripOuterBitCast mirrors the C++ source's one-level BitCastInst peel on
// a communication call's buffer-pointer argument.
func stripOuterBitCast(v ir.Value) ir.Value {
	return ir.StripOneBitCast(v)
}

// ClassifyFunction scans fn's instructions in program order and builds a
// fresh Registry, one record per recognized call instruction. Calls
// through an unresolved callee, or whose callee name is not in any of the
// three recognized sets, are ignored.
func ClassifyFunction(fn *ir.Function, diag ir.Diagnostics) *Registry {
	reg := &Registry{
		nbByCall: make(map[*ir.Call]*NonBlockingCall),
		bcByCall: make(map[*ir.Call]*BlockingCall),
		wcByCall: make(map[*ir.Call]*WaitCall),
	}

	for _, block := range fn.Blocks {
		for _, instr := range block.Instrs {
			call, ok := instr.(*ir.Call)
			if !ok {
				continue
			}

			switch {
			case nonBlockingAPIs[call.Callee]:
				nb := newNonBlockingCall(call, diag)
				reg.NonBlocking = append(reg.NonBlocking, nb)
				reg.nbByCall[call] = nb
			case blockingAPIs[call.Callee]:
				bc := newBlockingCall(call, diag)
				reg.Blocking = append(reg.Blocking, bc)
				reg.bcByCall[call] = bc
			case waitAPIs[call.Callee]:
				wc := newWaitCall(call, diag)
				reg.Wait = append(reg.Wait, wc)
				reg.wcByCall[call] = wc
			}
		}
	}

	return reg
}

// newNonBlockingCall builds a NonBlockingCall from a call instruction
// already known to name MPI_Isend, MPI_Irsend, or MPI_Irecv. Argument
// positions follow the MPI non-blocking signature: buf, count, datatype,
// dest/source, tag, comm, request.
func newNonBlockingCall(call *ir.Call, diag ir.Diagnostics) *NonBlockingCall {
	return &NonBlockingCall{
		Call:             call,
		APIName:          call.Callee,
		BufferStart:      stripOuterBitCast(call.Arg(0)),
		BufferAccessSize: ir.AccessSizeFromDatatype(call.Arg(1), call.Arg(2), diag),
		Write:            writeAPIs[call.Callee],
		Request:          call.Arg(6),
	}
}

// newBlockingCall builds a BlockingCall from a call instruction already
// known to name MPI_Send or MPI_Recv. Argument positions: buf, count,
// datatype, dest/source, tag, comm.
func newBlockingCall(call *ir.Call, diag ir.Diagnostics) *BlockingCall {
	return &BlockingCall{
		Call:             call,
		APIName:          call.Callee,
		BufferStart:      stripOuterBitCast(call.Arg(0)),
		BufferAccessSize: ir.AccessSizeFromDatatype(call.Arg(1), call.Arg(2), diag),
		Write:            writeAPIs[call.Callee],
	}
}

// newWaitCall builds a WaitCall from a call instruction already known to
// name MPI_Wait, MPI_Waitall, or MPI_Waitany, using each form's argument
// layout for count and request.
func newWaitCall(call *ir.Call, diag ir.Diagnostics) *WaitCall {
	wc := &WaitCall{Call: call, APIName: call.Callee}

	switch call.Callee {
	case "MPI_Wait":
		wc.WaitCount = &ir.ConstInt{Val: 1}
		wc.Request = call.Arg(0)
	case "MPI_Waitall":
		wc.WaitCount = call.Arg(0)
		wc.Request = call.Arg(1)
	case "MPI_Waitany":
		wc.WaitCount = &ir.ConstInt{Val: 1}
		wc.Request = call.Arg(1)
	default:
		diag.Warn("unsupported wait call: %s", call.Callee)
	}

	return wc
}
