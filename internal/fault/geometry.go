package fault

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// StrikeDip derives the fault-plane orientation from first-order plane
// coefficients [c0, c1, c2]. Higher-order coefficient vectors are accepted;
// only c1 and c2 are read.
//
// strike = atan2(c2, c1), normalised into [0, 2π).
// dip    = atan(√(c1² + c2²)), in [0, π/2).
//
// A horizontal plane (c1 = c2 = 0) has no defined strike; atan2(0, 0) gives 0.
func StrikeDip(c []float64) (strike, dip float64, err error) {
	if len(c) == 0 {
		return 0, 0, ErrUnfitted
	}
	if len(c) < planeTerms {
		return 0, 0, &DegenerateInputError{Op: "strike/dip", Points: len(c), Need: planeTerms, Reason: "too few coefficients"}
	}

	c1, c2 := c[1], c[2]
	strike = math.Atan2(c2, c1)
	if strike < 0 {
		strike += 2 * math.Pi
	}
	// A tiny negative angle rounds to exactly 2π after the shift.
	if strike >= 2*math.Pi {
		strike -= 2 * math.Pi
	}
	dip = math.Atan(math.Hypot(c1, c2))
	return strike, dip, nil
}

// RotationMatrix returns R_y(dip)·R_z(−strike). Applied to a point on the
// plane described by strike and dip it yields a point on z = const.
func RotationMatrix(strike, dip float64) *mat.Dense {
	sd, cd := math.Sincos(dip)
	ss, cs := math.Sincos(-strike)

	ry := mat.NewDense(3, 3, []float64{
		cd, 0, sd,
		0, 1, 0,
		-sd, 0, cd,
	})
	rz := mat.NewDense(3, 3, []float64{
		cs, -ss, 0,
		ss, cs, 0,
		0, 0, 1,
	})

	var r mat.Dense
	r.Mul(ry, rz)
	return &r
}

// Rotate applies RotationMatrix(strike, dip) to every point, returning a new
// PointSet of the same length and order. pts is not modified.
func Rotate(strike, dip float64, pts PointSet) PointSet {
	if len(pts) == 0 {
		return PointSet{}
	}

	data := make([]float64, 0, 3*len(pts))
	for _, p := range pts {
		data = append(data, p.X, p.Y, p.Z)
	}
	p := mat.NewDense(len(pts), 3, data)

	// Rows are points, so (R·pᵀ)ᵀ = p·Rᵀ.
	var rotated mat.Dense
	rotated.Mul(p, RotationMatrix(strike, dip).T())

	out := make(PointSet, len(pts))
	for i := range out {
		out[i] = r3.Vector{X: rotated.At(i, 0), Y: rotated.At(i, 1), Z: rotated.At(i, 2)}
	}
	return out
}

// Extent holds the planar extent of a rotated point set.
//
// DepthMin holds the maximum z and DepthMax the minimum z. The inverted
// naming is kept for compatibility with existing fault tables.
type Extent struct {
	Height    float64 // |max x − min x|
	Length    float64 // |max y − min y|
	DepthMin  float64 // max z
	DepthMax  float64 // min z
	Deviation float64 // max z − min z
	StdDev    float64 // population standard deviation of z
}

// ComputeExtent measures a rotated point set. An empty set yields the zero
// Extent.
func ComputeExtent(rot PointSet) Extent {
	if len(rot) == 0 {
		return Extent{}
	}

	x, y, z := rot.Columns()
	zMax, zMin := floats.Max(z), floats.Min(z)
	_, std := stat.PopMeanStdDev(z, nil)

	return Extent{
		Height:    math.Abs(floats.Max(x) - floats.Min(x)),
		Length:    math.Abs(floats.Max(y) - floats.Min(y)),
		DepthMin:  zMax,
		DepthMax:  zMin,
		Deviation: zMax - zMin,
		StdDev:    std,
	}
}
