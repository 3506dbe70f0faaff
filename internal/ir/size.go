package ir

// mpiDatatypeSizes maps the recognized MPI_Datatype integer tags to their
// per-element size in bytes.
var mpiDatatypeSizes = map[int64]uint64{
	0x4c000101: 1, // MPI_CHAR
	0x4c000102: 1, // MPI_UNSIGNED_CHAR
	0x4c00010d: 1, // MPI_BYTE
	0x4c000405: 4, // MPI_INT
	0x4c000406: 4, // MPI_UNSIGNED
	0x4c00040a: 4, // MPI_FLOAT
	0x4c00080b: 8, // MPI_DOUBLE
}

// AccessSizeFromDatatype derives the total byte count of a communication
// buffer access from its (count, datatype) operand pair. A non-constant
// count or an unrecognized datatype tag (e.g. a derived type loaded from
// memory) yields 0, which disables constant-offset overlap reasoning
// downstream.
func AccessSizeFromDatatype(count, datatype Value, diag Diagnostics) uint64 {
	ci, ok := count.(*ConstInt)
	if !ok {
		// Non-constant counts (e.g. produced by a BinOp) silently fall back
		// to a zero count - not warning-worthy the way an unrecognized
		// literal datatype tag is.
		ci = &ConstInt{Val: 0}
	}

	dt, ok := datatype.(*ConstInt)
	if !ok {
		// A derived datatype loaded from memory: size intentionally unknown.
		return 0
	}

	if perElem, ok := mpiDatatypeSizes[dt.Val]; ok {
		return uint64(ci.Val) * perElem
	}

	diag.Warn("unsupported MPI_Datatype tag: %#x", dt.Val)

	return 0
}

// AccessSizeFromElemType derives a non-communication access size from a
// typed pointer's pointee type: integer types yield bitwidth/8; pointer and
// double yield 8; anything else is unsupported and yields 0.
func AccessSizeFromElemType(t Type, diag Diagnostics) uint64 {
	if t == nil {
		return 0
	}

	if bits, ok := IntegerBitWidth(t); ok {
		return uint64(bits) / 8
	}

	if IsPointer(t) || IsDouble(t) {
		return 8
	}

	diag.Warn("unsupported pointer element type: %s", t)

	return 0
}
