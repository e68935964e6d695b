package fault

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// PointSet is an ordered sequence of 3-D points. Order is significant: the
// rotated copy of a PointSet keeps the same ordering as its source.
type PointSet []r3.Vector

// NewPointSet builds a PointSet from parallel coordinate slices.
func NewPointSet(x, y, z []float64) (PointSet, error) {
	if len(x) != len(y) || len(x) != len(z) {
		return nil, fmt.Errorf("coordinate length mismatch: x=%d y=%d z=%d", len(x), len(y), len(z))
	}
	ps := make(PointSet, len(x))
	for i := range x {
		ps[i] = r3.Vector{X: x[i], Y: y[i], Z: z[i]}
	}
	return ps, nil
}

// Columns splits the set into x, y and z coordinate slices.
func (ps PointSet) Columns() (x, y, z []float64) {
	x = make([]float64, len(ps))
	y = make([]float64, len(ps))
	z = make([]float64, len(ps))
	for i, p := range ps {
		x[i], y[i], z[i] = p.X, p.Y, p.Z
	}
	return x, y, z
}

// Centroid returns the mean point. An empty set yields the zero vector.
func (ps PointSet) Centroid() r3.Vector {
	if len(ps) == 0 {
		return r3.Vector{}
	}
	var sum r3.Vector
	for _, p := range ps {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float64(len(ps)))
}

// Clone returns a copy that shares no storage with ps.
func (ps PointSet) Clone() PointSet {
	if ps == nil {
		return nil
	}
	out := make(PointSet, len(ps))
	copy(out, ps)
	return out
}
