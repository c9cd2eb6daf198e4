// Package linalg implements C5, the linear-algebra surface operating on
// tsforge/array.Array, moving the teacher's 2-D-only
// hwy/contrib/matmul kernels and katalvlaran-lvlath/matrix/ops's
// Doolittle-LU/Householder-QR/Jacobi-eigen algorithms from a dedicated
// matrix.Matrix type to tsforge's Array. Every routine works on the matrix
// held in axes 0 (rows) and 1 (cols) of its inputs; it does not batch over
// axes 2 and 3, and only the first matrix of such an input is read.
package linalg

import (
	"math"

	"github.com/tsforge/tsforge/array"
	"github.com/tsforge/tsforge/dtype"
	"github.com/tsforge/tsforge/errs"
)

// dense2D is an internal row-major scratch matrix used by the decomposition
// routines; Array only ever stores column-major-leading data, so every
// routine below converts at the boundary.
type dense2D struct {
	rows, cols int
	data       []float64
}

func newDense2D(rows, cols int) *dense2D {
	return &dense2D{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

func (d *dense2D) at(i, j int) float64     { return d.data[i*d.cols+j] }
func (d *dense2D) set(i, j int, v float64) { d.data[i*d.cols+j] = v }

func toDense2D(a *array.Array) (*dense2D, error) {
	shape := a.Shape()
	rows, cols := shape[0], shape[1]
	host, err := a.HostCopy()
	if err != nil {
		return nil, err
	}
	d := newDense2D(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			// host is column-major-leading: flat = i + j*rows
			d.set(i, j, host[i+j*rows])
		}
	}
	return d, nil
}

func fromDense2D(d *dense2D, dt dtype.DType) (*array.Array, error) {
	host := make([]float64, d.rows*d.cols)
	for i := 0; i < d.rows; i++ {
		for j := 0; j < d.cols; j++ {
			host[i+j*d.rows] = d.at(i, j)
		}
	}
	return array.FromHost(host, []int{d.rows, d.cols}, dt)
}

func floatDType(dt dtype.DType) dtype.DType {
	if dt == dtype.F32 {
		return dtype.F32
	}
	return dtype.F64
}

// Matmul computes A×B (or their transposed/conjugated forms per
// transA/transB), promoting integer operands to a floating dtype first
// (spec §4.5 "all accept integer inputs by promoting to a floating type").
func Matmul(a, b *array.Array, transA, transB bool) (*array.Array, error) {
	da, err := toDense2D(a)
	if err != nil {
		return nil, err
	}
	db, err := toDense2D(b)
	if err != nil {
		return nil, err
	}
	if transA {
		da = transposeDense(da)
	}
	if transB {
		db = transposeDense(db)
	}
	if da.cols != db.rows {
		return nil, errs.Shapef("matmul: inner dimensions %d and %d do not agree", da.cols, db.rows)
	}
	c := newDense2D(da.rows, db.cols)
	// Triple-loop product generalized from the teacher's matmulScalar64
	// (hwy/contrib/matmul/matmul_base.go): C[i,j] = sum_p A[i,p]*B[p,j].
	for i := 0; i < da.rows; i++ {
		for p := 0; p < da.cols; p++ {
			aip := da.at(i, p)
			if aip == 0 {
				continue
			}
			for j := 0; j < db.cols; j++ {
				c.data[i*c.cols+j] += aip * db.at(p, j)
			}
		}
	}
	return fromDense2D(c, floatDType(a.DType()))
}

func transposeDense(d *dense2D) *dense2D {
	out := newDense2D(d.cols, d.rows)
	for i := 0; i < d.rows; i++ {
		for j := 0; j < d.cols; j++ {
			out.set(j, i, d.at(i, j))
		}
	}
	return out
}

// Gemm computes C = alpha*A*B + beta*C in place (spec §4.5 "gemm(α, A, B,
// β, C) with in-place accumulation into C").
func Gemm(alpha float64, a, b *array.Array, beta float64, c *array.Array) error {
	prod, err := Matmul(a, b, false, false)
	if err != nil {
		return err
	}
	prodHost, err := prod.HostCopy()
	if err != nil {
		return err
	}
	cHost, err := c.HostCopy()
	if err != nil {
		return err
	}
	out := make([]float64, len(cHost))
	for i := range out {
		out[i] = alpha*prodHost[i] + beta*cHost[i]
	}
	updated, err := array.FromHost(out, shapeDims(c), c.DType())
	if err != nil {
		return err
	}
	return c.Set(updated, array.All())
}

func shapeDims(a *array.Array) []int {
	s := a.Shape()
	return []int{s[0], s[1], s[2], s[3]}[:a.NDims()]
}

// Dot computes the scalar dot product of two equal-length 1-D arrays (spec
// §4.5 "dot (scalar or 1x1 array form)"), grounded on
// hwy/contrib/dot/batch.go's pairwise-sum reduction and
// hwy/contrib/matvec/matvec_base.go's row-times-vector accumulation.
func Dot(a, b *array.Array) (float64, error) {
	av, err := a.HostCopy()
	if err != nil {
		return 0, err
	}
	bv, err := b.HostCopy()
	if err != nil {
		return 0, err
	}
	if len(av) != len(bv) {
		return 0, errs.Shapef("dot: length %d does not match length %d", len(av), len(bv))
	}
	sum := 0.0
	for i := range av {
		sum += av[i] * bv[i]
	}
	return sum, nil
}

// NormKind selects the norm variant for Norm.
type NormKind int

const (
	NormEuclidean NormKind = iota
	NormP
	NormQ
)

// Norm computes the Euclidean/p-norm/q-norm of a flattened array (spec
// §4.5 "norm with the Euclidean/p-norm/q-norm selector").
func Norm(a *array.Array, kind NormKind, p float64) (float64, error) {
	v, err := a.HostCopy()
	if err != nil {
		return 0, err
	}
	switch kind {
	case NormEuclidean:
		sum := 0.0
		for _, x := range v {
			sum += x * x
		}
		return math.Sqrt(sum), nil
	default:
		sum := 0.0
		for _, x := range v {
			sum += math.Pow(math.Abs(x), p)
		}
		return math.Pow(sum, 1/p), nil
	}
}

// Det computes the determinant of a square matrix via LU decomposition
// (product of U's diagonal, sign-adjusted per row swap; this implementation
// follows the Doolittle variant below, which performs no pivoting, so the
// sign is always +1).
func Det(a *array.Array) (float64, error) {
	_, u, _, err := LU(a)
	if err != nil {
		return 0, err
	}
	uHost, err := toDense2D(u)
	if err != nil {
		return 0, err
	}
	det := 1.0
	for i := 0; i < uHost.rows; i++ {
		det *= uHost.at(i, i)
	}
	return det, nil
}

// LU performs Doolittle LU decomposition, returning (L, U, perm) with perm
// the identity permutation (no partial pivoting), grounded directly on
// katalvlaran-lvlath/matrix/ops/lu.go's Doolittle recurrence, rewritten
// against tsforge's dense2D scratch instead of matrix.Matrix (spec §4.5 "lu
// returning (L, U, permutation)").
func LU(a *array.Array) (l, u, perm *array.Array, err error) {
	m, err := toDense2D(a)
	if err != nil {
		return nil, nil, nil, err
	}
	if m.rows != m.cols {
		return nil, nil, nil, errs.Shapef("lu: non-square matrix %dx%d", m.rows, m.cols)
	}
	n := m.rows
	L := newDense2D(n, n)
	U := newDense2D(n, n)
	for i := 0; i < n; i++ {
		L.set(i, i, 1)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sum := 0.0
			for k := 0; k < i; k++ {
				sum += L.at(i, k) * U.at(k, j)
			}
			U.set(i, j, m.at(i, j)-sum)
		}
		for j := i + 1; j < n; j++ {
			sum := 0.0
			for k := 0; k < i; k++ {
				sum += L.at(j, k) * U.at(k, i)
			}
			uDiag := U.at(i, i)
			if uDiag == 0 {
				return nil, nil, nil, errs.Argf("lu: zero pivot at %d, matrix requires partial pivoting", i)
			}
			L.set(j, i, (m.at(j, i)-sum)/uDiag)
		}
	}
	P := newDense2D(n, n)
	for i := 0; i < n; i++ {
		P.set(i, i, 1)
	}
	dt := floatDType(a.DType())
	if l, err = fromDense2D(L, dt); err != nil {
		return nil, nil, nil, err
	}
	if u, err = fromDense2D(U, dt); err != nil {
		return nil, nil, nil, err
	}
	if perm, err = fromDense2D(P, dt); err != nil {
		return nil, nil, nil, err
	}
	return l, u, perm, nil
}

// QR performs Householder-reflection QR decomposition, grounded directly on
// katalvlaran-lvlath/matrix/ops/qr.go, returning (Q, R, τ) where τ is the
// per-column tau scalar used by each reflection (spec §4.5 "qr returning
// (Q, R, τ)").
func QR(a *array.Array) (q, r, tau *array.Array, err error) {
	m, err := toDense2D(a)
	if err != nil {
		return nil, nil, nil, err
	}
	if m.rows != m.cols {
		return nil, nil, nil, errs.Shapef("qr: non-square matrix %dx%d", m.rows, m.cols)
	}
	n := m.rows
	A := newDense2D(n, n)
	copy(A.data, m.data)
	Q := newDense2D(n, n)
	for i := 0; i < n; i++ {
		Q.set(i, i, 1)
	}
	v := make([]float64, n)
	taus := make([]float64, n)
	for k := 0; k < n; k++ {
		norm := 0.0
		for i := k; i < n; i++ {
			norm += A.at(i, k) * A.at(i, k)
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			continue
		}
		alpha := -math.Copysign(norm, A.at(k, k))
		for i := range v {
			v[i] = 0
		}
		for i := k; i < n; i++ {
			v[i] = A.at(i, k)
		}
		v[k] -= alpha
		beta := 0.0
		for i := k; i < n; i++ {
			beta += v[i] * v[i]
		}
		if beta == 0 {
			continue
		}
		t := 2.0 / beta
		taus[k] = t
		for j := k; j < n; j++ {
			sum := 0.0
			for i := k; i < n; i++ {
				sum += v[i] * A.at(i, j)
			}
			for i := k; i < n; i++ {
				A.set(i, j, A.at(i, j)-t*v[i]*sum)
			}
		}
		for j := 0; j < n; j++ {
			sum := 0.0
			for i := k; i < n; i++ {
				sum += v[i] * Q.at(i, j)
			}
			for i := k; i < n; i++ {
				Q.set(i, j, Q.at(i, j)-t*v[i]*sum)
			}
		}
	}
	dt := floatDType(a.DType())
	// Q accumulates H_{n-1}...H_0 so that Q·A = R; the factor with A = Q·R is
	// its transpose.
	if q, err = fromDense2D(transposeDense(Q), dt); err != nil {
		return nil, nil, nil, err
	}
	if r, err = fromDense2D(A, dt); err != nil {
		return nil, nil, nil, err
	}
	tauArr, err := array.FromHost(taus, []int{n}, dt)
	if err != nil {
		return nil, nil, nil, err
	}
	return q, r, tauArr, nil
}

// Eigen performs Jacobi eigenvalue decomposition on a symmetric matrix,
// grounded directly on katalvlaran-lvlath/matrix/ops/eigen.go, returning
// eigenvalues and the matrix of eigenvectors as columns.
func Eigen(a *array.Array, tol float64, maxIter int) (eigenvalues []float64, eigenvectors *array.Array, err error) {
	m, err := toDense2D(a)
	if err != nil {
		return nil, nil, err
	}
	n := m.rows
	if n != m.cols {
		return nil, nil, errs.Shapef("eigen: non-square matrix %dx%d", m.rows, m.cols)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if math.Abs(m.at(i, j)-m.at(j, i)) > tol {
				return nil, nil, errs.Argf("eigen: matrix is not symmetric")
			}
		}
	}
	A := newDense2D(n, n)
	copy(A.data, m.data)
	Q := newDense2D(n, n)
	for i := 0; i < n; i++ {
		Q.set(i, i, 1)
	}
	iter := 0
	for ; iter < maxIter; iter++ {
		maxOff := 0.0
		p, q := 0, 1
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				off := math.Abs(A.at(i, j))
				if off > maxOff {
					maxOff = off
					p, q = i, j
				}
			}
		}
		if maxOff < tol {
			break
		}
		app, aqq, apq := A.at(p, p), A.at(q, q), A.at(p, q)
		theta := (aqq - app) / (2 * apq)
		t := math.Copysign(1.0/(math.Abs(theta)+math.Sqrt(theta*theta+1)), theta)
		c := 1.0 / math.Sqrt(t*t+1)
		s := t * c
		for i := 0; i < n; i++ {
			if i != p && i != q {
				aip, aiq := A.at(i, p), A.at(i, q)
				A.set(i, p, c*aip-s*aiq)
				A.set(p, i, c*aip-s*aiq)
				A.set(i, q, s*aip+c*aiq)
				A.set(q, i, s*aip+c*aiq)
			}
		}
		A.set(p, p, c*c*app-2*c*s*apq+s*s*aqq)
		A.set(q, q, s*s*app+2*c*s*apq+c*c*aqq)
		A.set(p, q, 0)
		A.set(q, p, 0)
		for i := 0; i < n; i++ {
			qip, qiq := Q.at(i, p), Q.at(i, q)
			Q.set(i, p, c*qip-s*qiq)
			Q.set(i, q, s*qip+c*qiq)
		}
	}
	if iter == maxIter {
		return nil, nil, errs.Argf("eigen: Jacobi rotation did not converge within %d iterations", maxIter)
	}
	eigs := make([]float64, n)
	for i := 0; i < n; i++ {
		eigs[i] = A.at(i, i)
	}
	vecs, err := fromDense2D(Q, floatDType(a.DType()))
	if err != nil {
		return nil, nil, err
	}
	return eigs, vecs, nil
}

// Inverse computes the matrix inverse via LU decomposition and forward/
// backward substitution, grounded directly on
// katalvlaran-lvlath/matrix/ops/inverse.go.
func Inverse(a *array.Array) (*array.Array, error) {
	l, u, _, err := LU(a)
	if err != nil {
		return nil, err
	}
	L, err := toDense2D(l)
	if err != nil {
		return nil, err
	}
	U, err := toDense2D(u)
	if err != nil {
		return nil, err
	}
	n := L.rows
	inv := newDense2D(n, n)
	y := make([]float64, n)
	x := make([]float64, n)
	for col := 0; col < n; col++ {
		for i := 0; i < n; i++ {
			sum := 0.0
			for k := 0; k < i; k++ {
				sum += L.at(i, k) * y[k]
			}
			if i == col {
				y[i] = 1 - sum
			} else {
				y[i] = -sum
			}
		}
		for i := n - 1; i >= 0; i-- {
			sum := 0.0
			for k := i + 1; k < n; k++ {
				sum += U.at(i, k) * x[k]
			}
			pivot := U.at(i, i)
			if pivot == 0 {
				return nil, errs.Argf("inverse: singular matrix, zero pivot at row %d", i)
			}
			x[i] = (y[i] - sum) / pivot
		}
		for i := 0; i < n; i++ {
			inv.set(i, col, x[i])
		}
	}
	return fromDense2D(inv, floatDType(a.DType()))
}

// SVD computes the singular value decomposition of a from the Jacobi
// eigendecomposition of AᵀA (symmetric, so Eigen applies directly), used internally by Pinverse
// and Rank (spec §4.5 "svd returning (U, Σ, Vᵀ)").
func SVD(a *array.Array) (u, sigma, vt *array.Array, err error) {
	shape := a.Shape()
	rows, cols := shape[0], shape[1]
	ata, err := Matmul(a, a, true, false)
	if err != nil {
		return nil, nil, nil, err
	}
	eigs, v, err := Eigen(ata, 1e-10, 200)
	if err != nil {
		return nil, nil, nil, err
	}
	order := make([]int, cols)
	for i := range order {
		order[i] = i
	}
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			if eigs[order[j]] > eigs[order[i]] {
				order[i], order[j] = order[j], order[i]
			}
		}
	}
	vHost, err := toDense2D(v)
	if err != nil {
		return nil, nil, nil, err
	}
	vSorted := newDense2D(cols, cols)
	singular := make([]float64, cols)
	for newCol, oldCol := range order {
		ev := eigs[oldCol]
		if ev < 0 {
			ev = 0
		}
		singular[newCol] = math.Sqrt(ev)
		for r := 0; r < cols; r++ {
			vSorted.set(r, newCol, vHost.at(r, oldCol))
		}
	}
	dt := floatDType(a.DType())
	vArr, err := fromDense2D(vSorted, dt)
	if err != nil {
		return nil, nil, nil, err
	}
	vt, err = transposeArray(vArr)
	if err != nil {
		return nil, nil, nil, err
	}
	sigma, err = array.FromHost(singular, []int{len(singular)}, dt)
	if err != nil {
		return nil, nil, nil, err
	}
	// U = A V Σ⁺ (pseudo-inverse of the diagonal; zero columns where Σ=0).
	av, err := Matmul(a, vArr, false, false)
	if err != nil {
		return nil, nil, nil, err
	}
	avHost, err := toDense2D(av)
	if err != nil {
		return nil, nil, nil, err
	}
	uDense := newDense2D(rows, cols)
	for c := 0; c < cols; c++ {
		s := singular[c]
		if s < 1e-12 {
			continue
		}
		for r := 0; r < rows; r++ {
			uDense.set(r, c, avHost.at(r, c)/s)
		}
	}
	u, err = fromDense2D(uDense, dt)
	if err != nil {
		return nil, nil, nil, err
	}
	return u, sigma, vt, nil
}

func transposeArray(a *array.Array) (*array.Array, error) {
	return array.Transpose(a, [4]int{1, 0, 2, 3})
}

// Pinverse computes the Moore-Penrose pseudoinverse via SVD, zeroing
// singular values at or below tol (spec §4.5 "pinverse(tol) via SVD with
// threshold").
func Pinverse(a *array.Array, tol float64) (*array.Array, error) {
	u, sigma, vt, err := SVD(a)
	if err != nil {
		return nil, err
	}
	sigmaHost, err := sigma.HostCopy()
	if err != nil {
		return nil, err
	}
	inv := make([]float64, len(sigmaHost))
	for i, s := range sigmaHost {
		if s > tol {
			inv[i] = 1 / s
		}
	}
	uHost, err := toDense2D(u)
	if err != nil {
		return nil, err
	}
	vtHost, err := toDense2D(vt)
	if err != nil {
		return nil, err
	}
	rows, cols := uHost.rows, vtHost.cols
	out := newDense2D(cols, rows)
	for i := 0; i < cols; i++ {
		for j := 0; j < rows; j++ {
			sum := 0.0
			for k := 0; k < len(inv); k++ {
				sum += vtHost.at(k, i) * inv[k] * uHost.at(j, k)
			}
			out.set(i, j, sum)
		}
	}
	return fromDense2D(out, floatDType(a.DType()))
}

// Rank estimates the numerical rank of a as the count of singular values
// strictly greater than tol (spec §4.5 "rank(tol)").
func Rank(a *array.Array, tol float64) (int, error) {
	_, sigma, _, err := SVD(a)
	if err != nil {
		return 0, err
	}
	sigmaHost, err := sigma.HostCopy()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, s := range sigmaHost {
		if s > tol {
			n++
		}
	}
	return n, nil
}

// Cholesky factors a symmetric positive-definite matrix a = L·Lᵀ
// (isUpper=false) or a = Uᵀ·U with U = Lᵀ (isUpper=true). Fails with
// CholeskyError(rank) at the first non-positive pivot, rank being the
// number of leading principal minors successfully factored (spec §4.5
// "cholesky(is_upper) (failing with CholeskyError(rank) when not positive
// definite)").
func Cholesky(a *array.Array, isUpper bool) (*array.Array, error) {
	m, err := toDense2D(a)
	if err != nil {
		return nil, err
	}
	n := m.rows
	if n != m.cols {
		return nil, errs.Shapef("cholesky: non-square matrix %dx%d", m.rows, m.cols)
	}
	L := newDense2D(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := 0.0
			for k := 0; k < j; k++ {
				sum += L.at(i, k) * L.at(j, k)
			}
			if i == j {
				diag := m.at(i, i) - sum
				if diag <= 0 {
					return nil, errs.NewCholeskyError(i)
				}
				L.set(i, j, math.Sqrt(diag))
			} else {
				L.set(i, j, (m.at(i, j)-sum)/L.at(j, j))
			}
		}
	}
	dt := floatDType(a.DType())
	lArr, err := fromDense2D(L, dt)
	if err != nil {
		return nil, err
	}
	if !isUpper {
		return lArr, nil
	}
	return transposeArray(lArr)
}
