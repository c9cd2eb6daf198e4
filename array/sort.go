package array

import (
	"sort"

	"github.com/tsforge/tsforge/dtype"
)

// Sort returns a along axis 0 sorted ascending (descending=true for
// descending), plus the permutation array used (spec §4.2 "sort:
// ascending/descending along an axis; variant producing permutation
// indices"). Only 1-D vectors are supported; the spec's matrix-profile and
// feature batteries only ever sort flat series/profile vectors.
func Sort(a *Array, descending bool) (values *Array, indices *Array, err error) {
	v, err := a.realData()
	if err != nil {
		return nil, nil, err
	}
	perm := argSort(v, descending)
	sorted := make([]float64, len(v))
	idxOut := make([]float64, len(v))
	for i, p := range perm {
		sorted[i] = v[p]
		idxOut[i] = float64(p)
	}
	values, err = FromHost(sorted, []int{len(sorted)}, a.dt)
	if err != nil {
		return nil, nil, err
	}
	indices, err = FromHost(idxOut, []int{len(idxOut)}, dtype.S64)
	if err != nil {
		return nil, nil, err
	}
	return values, indices, nil
}

// SortByKey sorts keys ascending and permutes values along with them (spec
// §4.2 "sort-by-key producing both keys and values permuted together").
func SortByKey(keys, values *Array) (sortedKeys, sortedValues *Array, err error) {
	kv, err := keys.realData()
	if err != nil {
		return nil, nil, err
	}
	vv, err := values.realData()
	if err != nil {
		return nil, nil, err
	}
	perm := argSort(kv, false)
	sk := make([]float64, len(kv))
	sv := make([]float64, len(vv))
	for i, p := range perm {
		sk[i] = kv[p]
		sv[i] = vv[p]
	}
	sortedKeys, err = FromHost(sk, []int{len(sk)}, keys.dt)
	if err != nil {
		return nil, nil, err
	}
	sortedValues, err = FromHost(sv, []int{len(sv)}, values.dt)
	if err != nil {
		return nil, nil, err
	}
	return sortedKeys, sortedValues, nil
}

// Unique returns the sorted distinct values of a 1-D array (spec §4.2 "set
// ops: unique (sorted or unsorted hint)"). unsortedHint is accepted for API
// parity with the spec but tsforge's CPU backend always dedups via a sort,
// so the returned values are always sorted.
func Unique(a *Array, unsortedHint bool) (*Array, error) {
	v, err := a.realData()
	if err != nil {
		return nil, err
	}
	sorted := append([]float64(nil), v...)
	sort.Float64s(sorted)
	var out []float64
	for i, x := range sorted {
		if i == 0 || x != sorted[i-1] {
			out = append(out, x)
		}
	}
	return FromHost(out, []int{len(out)}, a.dt)
}

// Union returns the sorted union of two 1-D arrays (spec §4.2 "set ops: ...
// union").
func Union(a, b *Array) (*Array, error) {
	av, err := a.realData()
	if err != nil {
		return nil, err
	}
	bv, err := b.realData()
	if err != nil {
		return nil, err
	}
	set := make(map[float64]struct{}, len(av)+len(bv))
	for _, x := range av {
		set[x] = struct{}{}
	}
	for _, x := range bv {
		set[x] = struct{}{}
	}
	out := make([]float64, 0, len(set))
	for x := range set {
		out = append(out, x)
	}
	sort.Float64s(out)
	return FromHost(out, []int{len(out)}, commonDType(a.dt, b.dt))
}

// Intersect returns the sorted intersection of two 1-D arrays (spec §4.2
// "set ops: ... intersect").
func Intersect(a, b *Array) (*Array, error) {
	av, err := a.realData()
	if err != nil {
		return nil, err
	}
	bv, err := b.realData()
	if err != nil {
		return nil, err
	}
	bset := make(map[float64]struct{}, len(bv))
	for _, x := range bv {
		bset[x] = struct{}{}
	}
	seen := make(map[float64]struct{})
	var out []float64
	for _, x := range av {
		if _, ok := bset[x]; ok {
			if _, dup := seen[x]; !dup {
				out = append(out, x)
				seen[x] = struct{}{}
			}
		}
	}
	sort.Float64s(out)
	return FromHost(out, []int{len(out)}, commonDType(a.dt, b.dt))
}
