// Package volume holds dense 3-D scalar fields, such as fault-probability
// cubes from a segmentation model, and extracts candidate fault points from
// them.
package volume

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Volume is a dense NX×NY×NZ scalar field stored x-major: the value at
// (i, j, k) lives at Data[(i*NY+j)*NZ+k].
type Volume struct {
	NX, NY, NZ int
	Data       []float32
}

// New allocates a zero-filled volume.
func New(nx, ny, nz int) (*Volume, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("invalid volume dimensions %dx%dx%d", nx, ny, nz)
	}
	return &Volume{NX: nx, NY: ny, NZ: nz, Data: make([]float32, nx*ny*nz)}, nil
}

// FromData wraps data as a volume without copying.
func FromData(nx, ny, nz int, data []float32) (*Volume, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("invalid volume dimensions %dx%dx%d", nx, ny, nz)
	}
	if len(data) != nx*ny*nz {
		return nil, fmt.Errorf("volume data has %d values, want %d for %dx%dx%d", len(data), nx*ny*nz, nx, ny, nz)
	}
	return &Volume{NX: nx, NY: ny, NZ: nz, Data: data}, nil
}

func (v *Volume) index(i, j, k int) int {
	return (i*v.NY+j)*v.NZ + k
}

// At returns the value at (i, j, k). It panics when out of range, like a
// slice index.
func (v *Volume) At(i, j, k int) float32 {
	return v.Data[v.index(i, j, k)]
}

// Set stores val at (i, j, k).
func (v *Volume) Set(i, j, k int, val float32) {
	v.Data[v.index(i, j, k)] = val
}

// Range is a half-open index interval [Min, Max) along one axis.
type Range struct {
	Min, Max int
}

// resolve returns the concrete interval for an axis of length n. A nil range
// selects the whole axis.
func resolve(r *Range, n int, axis string) (Range, error) {
	if r == nil {
		return Range{Min: 0, Max: n}, nil
	}
	if r.Min < 0 || r.Max > n || r.Min >= r.Max {
		return Range{}, fmt.Errorf("%s range [%d, %d) outside [0, %d) or empty", axis, r.Min, r.Max, n)
	}
	return *r, nil
}

// SubVolume copies the selected region into a new volume.
func (v *Volume) SubVolume(xr, yr, zr *Range) (*Volume, error) {
	x, err := resolve(xr, v.NX, "x")
	if err != nil {
		return nil, err
	}
	y, err := resolve(yr, v.NY, "y")
	if err != nil {
		return nil, err
	}
	z, err := resolve(zr, v.NZ, "z")
	if err != nil {
		return nil, err
	}

	sub, err := New(x.Max-x.Min, y.Max-y.Min, z.Max-z.Min)
	if err != nil {
		return nil, err
	}
	for i := x.Min; i < x.Max; i++ {
		for j := y.Min; j < y.Max; j++ {
			src := v.index(i, j, z.Min)
			dst := sub.index(i-x.Min, j-y.Min, 0)
			copy(sub.Data[dst:dst+sub.NZ], v.Data[src:src+sub.NZ])
		}
	}
	return sub, nil
}

// ExtractPointsAboveThreshold returns the voxel coordinates, relative to the
// origin of the selected region, whose value is strictly greater than
// thresh, together with those values. Points are emitted in x-major order.
func ExtractPointsAboveThreshold(v *Volume, thresh float32, xr, yr, zr *Range) ([]r3.Vector, []float32, error) {
	sub, err := v.SubVolume(xr, yr, zr)
	if err != nil {
		return nil, nil, err
	}

	var (
		points []r3.Vector
		values []float32
	)
	for i := 0; i < sub.NX; i++ {
		for j := 0; j < sub.NY; j++ {
			for k := 0; k < sub.NZ; k++ {
				val := sub.At(i, j, k)
				if val > thresh {
					points = append(points, r3.Vector{X: float64(i), Y: float64(j), Z: float64(k)})
					values = append(values, val)
				}
			}
		}
	}
	return points, values, nil
}
