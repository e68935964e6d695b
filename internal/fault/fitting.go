package fault

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Supported polynomial orders and their term counts.
const (
	OrderPlane   = 1
	OrderQuadric = 2

	planeTerms   = 3 // 1, x, y
	quadricTerms = 6 // 1, x, y, xy, x², y²

	// MinPoints is the smallest point set any fit accepts.
	MinPoints = 3
)

// SurfaceFit is the result of a least-squares surface regression.
type SurfaceFit struct {
	Order        int
	Coefficients []float64
	// Rank is the effective rank of the design matrix.
	Rank int
	// Degenerate is set when the design matrix carried no information
	// (unsupported order). Coefficients are NaN in that case.
	Degenerate bool
	// Underdetermined is set when there were fewer points than terms and
	// the minimum-norm solution was returned.
	Underdetermined bool
}

// Terms returns the number of basis terms for order, or 0 when the order is
// not supported.
func Terms(order int) int {
	switch order {
	case OrderPlane:
		return planeTerms
	case OrderQuadric:
		return quadricTerms
	default:
		return 0
	}
}

// OrderForTerms maps a coefficient count back to its polynomial order.
func OrderForTerms(n int) (int, bool) {
	switch n {
	case planeTerms:
		return OrderPlane, true
	case quadricTerms:
		return OrderQuadric, true
	default:
		return 0, false
	}
}

// BuildBasis returns the N×K design matrix for x and y.
//
//	order 1: columns 1, x, y
//	order 2: columns 1, x, y, xy, x², y²
//
// Any other order yields an N×1 zero matrix, which fits to a degenerate
// result rather than an error. Returns nil when x is empty.
func BuildBasis(x, y []float64, order int) *mat.Dense {
	n := len(x)
	if n == 0 {
		return nil
	}

	k := Terms(order)
	if k == 0 {
		return mat.NewDense(n, 1, nil)
	}

	a := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		xi, yi := x[i], y[i]
		a.Set(i, 0, 1)
		a.Set(i, 1, xi)
		a.Set(i, 2, yi)
		if order == OrderQuadric {
			a.Set(i, 3, xi*yi)
			a.Set(i, 4, xi*xi)
			a.Set(i, 5, yi*yi)
		}
	}
	return a
}

// FitSurface solves min ‖A·c − z‖² with A = BuildBasis(x, y, order).
//
// The solve goes through an SVD, so rank-deficient systems return the
// minimum-norm solution. Fewer than MinPoints points is a
// DegenerateInputError for every order; between MinPoints and the term
// count the minimum-norm solution is returned with Underdetermined set.
//
// x and y are centred on their mean and scaled to [-1, 1] before the solve,
// and the coefficients are mapped back to the input frame. Without this the
// quadratic columns of a grid far from the origin differ from the constant
// column by many orders of magnitude and the rank cut-off discards real
// terms.
func FitSurface(x, y, z []float64, order int) (SurfaceFit, error) {
	const op = "fit surface"

	n := len(x)
	if len(y) != n || len(z) != n {
		return SurfaceFit{}, &DegenerateInputError{
			Op:     op,
			Points: n,
			Reason: fmt.Sprintf("coordinate length mismatch x=%d y=%d z=%d", n, len(y), len(z)),
		}
	}
	if n < MinPoints {
		return SurfaceFit{}, &DegenerateInputError{Op: op, Points: n, Need: MinPoints}
	}

	k := Terms(order)
	if k == 0 {
		// The zero basis carries no information; flag rather than fail.
		return SurfaceFit{
			Order:        order,
			Coefficients: []float64{math.NaN()},
			Degenerate:   true,
		}, nil
	}

	f := newFrame(x, y)
	u, v := f.apply(x, y)
	a := BuildBasis(u, v, order)

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return SurfaceFit{}, &NumericalError{Op: op, Reason: "SVD factorisation did not converge"}
	}

	// Singular values below eps relative to the largest are treated as zero.
	rank := svd.Rank(eps)
	if rank == 0 {
		coeffs := make([]float64, k)
		for i := range coeffs {
			coeffs[i] = math.NaN()
		}
		return SurfaceFit{Order: order, Coefficients: coeffs, Degenerate: true}, nil
	}

	var c mat.VecDense
	svd.SolveVecTo(&c, mat.NewVecDense(n, append([]float64(nil), z...)), rank)

	coeffs := f.unmap(mat.Col(nil, 0, &c), order)
	for i, v := range coeffs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return SurfaceFit{}, &NumericalError{Op: op, Reason: fmt.Sprintf("coefficient %d is %v", i, v)}
		}
	}

	return SurfaceFit{
		Order:           order,
		Coefficients:    coeffs,
		Rank:            rank,
		Underdetermined: n < k,
	}, nil
}

// frame maps input coordinates to u = (x−mx)/s, v = (y−my)/s.
type frame struct {
	mx, my, s float64
}

func newFrame(x, y []float64) frame {
	n := float64(len(x))
	var f frame
	for i := range x {
		f.mx += x[i]
		f.my += y[i]
	}
	f.mx /= n
	f.my /= n
	for i := range x {
		f.s = math.Max(f.s, math.Max(math.Abs(x[i]-f.mx), math.Abs(y[i]-f.my)))
	}
	if f.s == 0 {
		f.s = 1
	}
	return f
}

func (f frame) apply(x, y []float64) (u, v []float64) {
	u = make([]float64, len(x))
	v = make([]float64, len(y))
	for i := range x {
		u[i] = (x[i] - f.mx) / f.s
		v[i] = (y[i] - f.my) / f.s
	}
	return u, v
}

// unmap re-expands coefficients d fitted in (u, v) into the basis of the
// input frame.
func (f frame) unmap(d []float64, order int) []float64 {
	a := 1 / f.s
	mx, my := f.mx, f.my

	c := make([]float64, len(d))
	c[0] = d[0] - d[1]*a*mx - d[2]*a*my
	c[1] = d[1] * a
	c[2] = d[2] * a
	if order == OrderQuadric {
		a2 := a * a
		c[0] += a2 * (d[3]*mx*my + d[4]*mx*mx + d[5]*my*my)
		c[1] -= a2 * (2*d[4]*mx + d[3]*my)
		c[2] -= a2 * (2*d[5]*my + d[3]*mx)
		c[3] = d[3] * a2
		c[4] = d[4] * a2
		c[5] = d[5] * a2
	}
	return c
}

// eps is float64 machine epsilon.
const eps = 2.220446049250313e-16

// Evaluate returns A·c at the given coordinates, inferring the order from
// len(c).
func Evaluate(x, y, c []float64) ([]float64, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("evaluate surface: coordinate length mismatch x=%d y=%d", len(x), len(y))
	}
	order, ok := OrderForTerms(len(c))
	if !ok {
		return nil, fmt.Errorf("evaluate surface: %d coefficients do not match a supported order", len(c))
	}
	if len(x) == 0 {
		return []float64{}, nil
	}

	a := BuildBasis(x, y, order)
	var z mat.VecDense
	z.MulVec(a, mat.NewVecDense(len(c), append([]float64(nil), c...)))

	return mat.Col(nil, 0, &z), nil
}
