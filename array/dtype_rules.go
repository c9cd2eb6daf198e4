package array

import "github.com/tsforge/tsforge/dtype"

// rank orders dtypes from narrowest to widest within the real lane for the
// purpose of binary-op type promotion (the usual "wider operand wins" rule;
// complex always wins over real).
func rank(dt dtype.DType) int {
	switch dt {
	case dtype.B8:
		return 0
	case dtype.U8:
		return 1
	case dtype.S16:
		return 2
	case dtype.U16:
		return 3
	case dtype.F16:
		return 4
	case dtype.S32:
		return 5
	case dtype.U32:
		return 6
	case dtype.F32:
		return 7
	case dtype.S64:
		return 8
	case dtype.U64:
		return 9
	case dtype.F64:
		return 10
	case dtype.C32:
		return 11
	case dtype.C64:
		return 12
	default:
		return 0
	}
}

// commonDType picks the result dtype of a binary op between a and b: the
// wider of the two by rank, with complex dominating real.
func commonDType(a, b dtype.DType) dtype.DType {
	if dtype.IsComplex(a) || dtype.IsComplex(b) {
		if rank(a) >= rank(b) {
			if dtype.IsComplex(a) {
				return a
			}
			return promoteToComplex(a)
		}
		if dtype.IsComplex(b) {
			return b
		}
		return promoteToComplex(b)
	}
	if rank(a) >= rank(b) {
		return a
	}
	return b
}

func promoteToComplex(dt dtype.DType) dtype.DType {
	if dt == dtype.F64 {
		return dtype.C64
	}
	return dtype.C32
}
