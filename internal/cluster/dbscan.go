package cluster

import (
	"math"

	"github.com/golang/geo/r3"
)

// Noise is the label given to points that belong to no cluster.
const Noise = -1

// unvisited marks points DBSCAN has not reached yet.
const unvisited = -2

// Params holds DBSCAN parameters.
type Params struct {
	Eps        float64 // Neighbourhood radius
	MinSamples int     // Neighbours, the point itself included, needed for a core point
}

// Presets used by the fault workflow.

// SliceParams labels sparse connected pixels within one slice.
func SliceParams() Params { return Params{Eps: 1.1, MinSamples: 2} }

// IntersectionParams separates dense intersection zones.
func IntersectionParams() Params { return Params{Eps: 3, MinSamples: 21} }

// FaultClusterParams splits a thresholded volume into individual faults.
func FaultClusterParams() Params { return Params{Eps: 2, MinSamples: 22} }

// IntersectionSliceParams is used by IntersectionLabels on each z slice.
func IntersectionSliceParams() Params { return Params{Eps: 2, MinSamples: 12} }

// cellKey addresses one cube of the spatial index.
type cellKey struct {
	X, Y, Z int64
}

// SpatialIndex provides neighbour queries using a regular 3-D grid.
// Cell size should match the DBSCAN eps so a query only touches the 27
// surrounding cells.
type SpatialIndex struct {
	CellSize float64
	Grid     map[cellKey][]int // Cell → point indices
}

// NewSpatialIndex creates a spatial index with the specified cell size.
func NewSpatialIndex(cellSize float64) *SpatialIndex {
	return &SpatialIndex{
		CellSize: cellSize,
		Grid:     make(map[cellKey][]int),
	}
}

func (si *SpatialIndex) cellOf(p r3.Vector) cellKey {
	return cellKey{
		X: int64(math.Floor(p.X / si.CellSize)),
		Y: int64(math.Floor(p.Y / si.CellSize)),
		Z: int64(math.Floor(p.Z / si.CellSize)),
	}
}

// Build populates the index from points.
func (si *SpatialIndex) Build(points []r3.Vector) {
	si.Grid = make(map[cellKey][]int, len(points)/4+1)
	for i, p := range points {
		k := si.cellOf(p)
		si.Grid[k] = append(si.Grid[k], i)
	}
}

// RegionQuery returns the indices of all points within eps of points[idx],
// idx included, in ascending order of cell then insertion.
func (si *SpatialIndex) RegionQuery(points []r3.Vector, idx int, eps float64) []int {
	p := points[idx]
	base := si.cellOf(p)
	eps2 := eps * eps

	var neighbors []int
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				k := cellKey{X: base.X + dx, Y: base.Y + dy, Z: base.Z + dz}
				for _, j := range si.Grid[k] {
					if points[j].Sub(p).Norm2() <= eps2 {
						neighbors = append(neighbors, j)
					}
				}
			}
		}
	}
	return neighbors
}

// ClusterPoints runs DBSCAN with 3-D Euclidean distance and returns one
// label per point: Noise for outliers, otherwise 0..k-1 in discovery order.
func ClusterPoints(points []r3.Vector, minSamples int, eps float64) []int {
	n := len(points)
	labels := make([]int, n)
	if n == 0 {
		return labels
	}
	for i := range labels {
		labels[i] = unvisited
	}
	if eps <= 0 {
		// Nothing can be a neighbour of anything but itself.
		for i := range labels {
			if minSamples <= 1 {
				labels[i] = i
			} else {
				labels[i] = Noise
			}
		}
		return labels
	}

	si := NewSpatialIndex(eps)
	si.Build(points)

	clusterID := 0
	for i := 0; i < n; i++ {
		if labels[i] != unvisited {
			continue
		}

		neighbors := si.RegionQuery(points, i, eps)
		if len(neighbors) < minSamples {
			labels[i] = Noise
			continue
		}

		expandCluster(points, si, labels, i, neighbors, clusterID, eps, minSamples)
		clusterID++
	}

	return labels
}

// expandCluster grows a cluster breadth-first from a core point.
func expandCluster(points []r3.Vector, si *SpatialIndex, labels []int,
	seed int, neighbors []int, clusterID int, eps float64, minSamples int) {

	labels[seed] = clusterID

	for j := 0; j < len(neighbors); j++ {
		idx := neighbors[j]

		if labels[idx] == Noise {
			labels[idx] = clusterID // Noise becomes a border point
		}
		if labels[idx] != unvisited {
			continue
		}

		labels[idx] = clusterID
		next := si.RegionQuery(points, idx, eps)
		if len(next) >= minSamples {
			neighbors = append(neighbors, next...)
		}
	}
}
