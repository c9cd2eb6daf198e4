package array

import "github.com/tsforge/tsforge/errs"

// stridesOf returns the column-major-leading strides for shape: stride[0]
// is always 1 since dims[0] is the fastest-varying axis (spec §3).
func stridesOf(shape Shape) [4]int {
	var s [4]int
	s[0] = 1
	for i := 1; i < 4; i++ {
		s[i] = s[i-1] * shape[i-1]
	}
	return s
}

// unravel decomposes linear flat index i into per-axis indices for shape,
// writing into out (len 4).
func unravel(i int, shape Shape, out []int) {
	for k := 0; k < 4; k++ {
		out[k] = i % shape[k]
		i /= shape[k]
	}
}

// ravel computes the flat index for per-axis indices idx under strides.
func ravel(idx [4]int, strides [4]int) int {
	return idx[0]*strides[0] + idx[1]*strides[1] + idx[2]*strides[2] + idx[3]*strides[3]
}

// broadcastShapes implements the pairwise broadcasting rule of spec §4.2:
// equal, or one is 1, otherwise a ShapeError.
func broadcastShapes(a, b Shape) (Shape, error) {
	var out Shape
	for i := 0; i < 4; i++ {
		switch {
		case a[i] == b[i]:
			out[i] = a[i]
		case a[i] == 1:
			out[i] = b[i]
		case b[i] == 1:
			out[i] = a[i]
		default:
			return Shape{}, errs.Shapef("cannot broadcast shapes %v and %v on axis %d", a, b, i)
		}
	}
	return out, nil
}

// broadcastIndex maps a flat index in the broadcast output shape back to
// the corresponding flat index in an operand of shape opShape (axes of
// extent 1 in opShape always resolve to index 0, standard broadcast rule).
func broadcastIndex(outIdx [4]int, opShape Shape, opStrides [4]int) int {
	var idx [4]int
	for k := 0; k < 4; k++ {
		if opShape[k] == 1 {
			idx[k] = 0
		} else {
			idx[k] = outIdx[k]
		}
	}
	return ravel(idx, opStrides)
}
