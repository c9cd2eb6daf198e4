package array

import (
	"sort"

	"github.com/tsforge/tsforge/errs"
)

// Selector is one axis's indexing request (spec §4.3, visitor-style sum
// type as the spec's "implementers may choose a visitor pattern over sum
// types" note permits). Exactly one of the fields is active, chosen by Kind.
type Selector struct {
	Kind SelectorKind

	Int int // SelInt

	Start, Stop, Step int // SelRange (inclusive of Stop after normalization)

	Indices []int // SelIndexArray

	Mask []bool // SelBoolMask

	// SelParallelRange carries the same fields as SelRange; it additionally
	// marks the axis as a batching/GFor dimension (§5) for the caller.
}

// SelectorKind tags which field of a Selector is populated.
type SelectorKind int

const (
	SelAll SelectorKind = iota
	SelInt
	SelRange
	SelIndexArray
	SelBoolMask
	SelParallelRange
)

// All is the "all dimensions" marker selector.
func All() Selector { return Selector{Kind: SelAll} }

// Idx selects a single integer position (negative indices normalize against
// the axis extent at resolve time).
func Idx(i int) Selector { return Selector{Kind: SelInt, Int: i} }

// Rng selects [start, stop] inclusive with the given step (spec §4.3: ranges
// are inclusive of stop after normalization; negative step iterates high→low).
func Rng(start, stop, step int) Selector {
	return Selector{Kind: SelRange, Start: start, Stop: stop, Step: step}
}

// IndexArray selects by an explicit list of positions (an int gather,
// grounded on the teacher's GatherIndex in hwy/gather.go).
func IndexArray(idx []int) Selector { return Selector{Kind: SelIndexArray, Indices: idx} }

// BoolMask selects positions where mask is true, reduced via a nonzero scan
// (grounded on the teacher's Compress in hwy/compress.go: "packs elements
// where mask is true to the front").
func BoolMask(mask []bool) Selector { return Selector{Kind: SelBoolMask, Mask: mask} }

// ParallelRng is a range selector additionally marking the axis as a
// batching (GFor) dimension for the caller (spec §5).
func ParallelRng(start, stop, step int) Selector {
	return Selector{Kind: SelParallelRange, Start: start, Stop: stop, Step: step}
}

func normalizeIndex(i, extent int) (int, error) {
	if i < 0 {
		i += extent
	}
	if i < 0 || i >= extent {
		return 0, errs.Indexf("index %d out of bounds for axis of extent %d", i, extent)
	}
	return i, nil
}

// resolvedAxis is the engine's per-axis output (spec §4.3: "a 4-slot
// normalized indexer suitable for the kernel").
type resolvedAxis struct {
	positions []int // concrete positions along this axis, in order
	parallel  bool
}

// resolveSelectors implements C3: accepts up to 4 selectors (fewer expand
// the trailing axes as SelAll; at most one SelAll/gap may itself expand to
// fill remaining axes), returns the 4 resolved axes, the effective result
// Shape, and the ndims count.
func resolveSelectors(shape Shape, sels []Selector) ([4]resolvedAxis, Shape, int, error) {
	if len(sels) > 4 {
		return [4]resolvedAxis{}, Shape{}, 0, errs.Indexf("selector: at most 4 axes supported, got %d", len(sels))
	}
	// Expand a single bare SelAll gap to fill the remaining axes, matching
	// the spec's "tuple... optionally containing at most one all-dimensions
	// marker that expands to fill the remaining axes".
	expanded := make([]Selector, 4)
	for i := range expanded {
		expanded[i] = All()
	}
	if len(sels) < 4 {
		fillAt := -1
		for i, s := range sels {
			if s.Kind == SelAll {
				fillAt = i
				break
			}
		}
		if fillAt >= 0 {
			gap := 4 - len(sels)
			for i := 0; i < fillAt; i++ {
				expanded[i] = sels[i]
			}
			for i := fillAt; i < fillAt+gap+1; i++ {
				expanded[i] = All()
			}
			for i := fillAt + 1; i < len(sels); i++ {
				expanded[i+gap] = sels[i]
			}
		} else {
			copy(expanded, sels)
		}
	} else {
		copy(expanded, sels)
	}

	var out [4]resolvedAxis
	var resShape Shape
	ndims := 0
	for axis := 0; axis < 4; axis++ {
		extent := shape[axis]
		sel := expanded[axis]
		switch sel.Kind {
		case SelAll:
			pos := make([]int, extent)
			for i := range pos {
				pos[i] = i
			}
			out[axis] = resolvedAxis{positions: pos}
		case SelInt:
			i, err := normalizeIndex(sel.Int, extent)
			if err != nil {
				return [4]resolvedAxis{}, Shape{}, 0, err
			}
			out[axis] = resolvedAxis{positions: []int{i}}
		case SelRange, SelParallelRange:
			start, err := normalizeIndex(sel.Start, extent)
			if err != nil {
				return [4]resolvedAxis{}, Shape{}, 0, err
			}
			stop, err := normalizeIndex(sel.Stop, extent)
			if err != nil {
				return [4]resolvedAxis{}, Shape{}, 0, err
			}
			step := sel.Step
			if step == 0 {
				step = 1
			}
			var pos []int
			if step > 0 {
				for i := start; i <= stop; i += step {
					pos = append(pos, i)
				}
			} else {
				for i := start; i >= stop; i += step {
					pos = append(pos, i)
				}
			}
			out[axis] = resolvedAxis{positions: pos, parallel: sel.Kind == SelParallelRange}
		case SelIndexArray:
			pos := make([]int, len(sel.Indices))
			for i, v := range sel.Indices {
				n, err := normalizeIndex(v, extent)
				if err != nil {
					return [4]resolvedAxis{}, Shape{}, 0, err
				}
				pos[i] = n
			}
			out[axis] = resolvedAxis{positions: pos}
		case SelBoolMask:
			if len(sel.Mask) != extent {
				return [4]resolvedAxis{}, Shape{}, 0, errs.Indexf("boolean mask length %d does not match axis extent %d", len(sel.Mask), extent)
			}
			var pos []int
			for i, b := range sel.Mask {
				if b {
					pos = append(pos, i)
				}
			}
			out[axis] = resolvedAxis{positions: pos}
		}
		if len(out[axis].positions) > 0 {
			ndims = axis + 1
		}
		resShape[axis] = len(out[axis].positions)
		if resShape[axis] == 0 {
			resShape[axis] = 1
		}
	}
	return out, resShape, ndims, nil
}

// Get implements spec §4.2 `get(selector) → Array`.
func (a *Array) Get(sels ...Selector) *Array {
	axes, outShape, _, err := resolveSelectors(a.shape, sels)
	if err != nil {
		return errArray(err)
	}
	aStrides := stridesOf(a.shape)
	compute := func() (*handle, error) {
		n := outShape.Elements()
		var idx [4]int
		if a.IsComplex() {
			av, err := a.cplxData()
			if err != nil {
				return nil, err
			}
			h := newComplexHandle(n)
			for i := 0; i < n; i++ {
				unravel(i, outShape, idx[:])
				var src [4]int
				for k := 0; k < 4; k++ {
					src[k] = axes[k].positions[idx[k]%len(axes[k].positions)]
				}
				h.cplx[i] = av[ravel(src, aStrides)]
			}
			return h, nil
		}
		av, err := a.realData()
		if err != nil {
			return nil, err
		}
		h := newRealHandle(n)
		for i := 0; i < n; i++ {
			unravel(i, outShape, idx[:])
			var src [4]int
			for k := 0; k < 4; k++ {
				src[k] = axes[k].positions[idx[k]%len(axes[k].positions)]
			}
			h.real[i] = av[ravel(src, aStrides)]
		}
		return h, nil
	}
	return lazy(a.dt, outShape, []*Array{a}, compute)
}

// Set implements spec §4.2 `set(selector, value|array)`, writing val into a
// at the positions selector resolves to, broadcasting val's shape against
// the selection shape. Set forces evaluation of a (it mutates a's handle
// in place once materialized).
func (a *Array) Set(val *Array, sels ...Selector) error {
	axes, selShape, _, err := resolveSelectors(a.shape, sels)
	if err != nil {
		return err
	}
	if err := a.Eval(); err != nil {
		return err
	}
	valShape, err := broadcastShapes(selShape, val.shape)
	if err != nil {
		return err
	}
	if valShape != selShape {
		return errs.Shapef("set: value shape %v does not fit selection shape %v", val.shape, selShape)
	}
	aStrides := stridesOf(a.shape)
	vStrides := stridesOf(val.shape)
	n := selShape.Elements()
	var idx [4]int
	if a.IsComplex() {
		vv, err := val.cplxDataPromoted()
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			unravel(i, selShape, idx[:])
			var dst [4]int
			for k := 0; k < 4; k++ {
				dst[k] = axes[k].positions[idx[k]%len(axes[k].positions)]
			}
			a.h.cplx[ravel(dst, aStrides)] = vv[broadcastIndex(idx, val.shape, vStrides)]
		}
		return nil
	}
	vv, err := val.realDataPromoted()
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		unravel(i, selShape, idx[:])
		var dst [4]int
		for k := 0; k < 4; k++ {
			dst[k] = axes[k].positions[idx[k]%len(axes[k].positions)]
		}
		a.h.real[ravel(dst, aStrides)] = quantizeReal(a.dt, vv[broadcastIndex(idx, val.shape, vStrides)])
	}
	return nil
}

// Nonzero returns the flat positions where a real array is non-zero,
// mirroring the teacher's Compress "pack elements where mask is true to the
// front" primitive generalized from a fixed-width vector to a whole array.
func Nonzero(a *Array) ([]int, error) {
	v, err := a.realData()
	if err != nil {
		return nil, err
	}
	var out []int
	for i, x := range v {
		if x != 0 {
			out = append(out, i)
		}
	}
	return out, nil
}

// argSort returns a permutation of [0,n) that sorts v ascending (or
// descending), stable so ties preserve original order (used by Sort and
// SortByKey).
func argSort(v []float64, descending bool) []int {
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		if descending {
			return v[idx[i]] > v[idx[j]]
		}
		return v[idx[i]] < v[idx[j]]
	})
	return idx
}
