package cluster

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"
)

// SliceOf returns the horizontal slice holding p: its z rounded to the
// nearest integer, which is exact for voxel coordinates.
func SliceOf(p r3.Vector) int64 {
	return int64(math.Round(p.Z))
}

// IntersectionLabels clusters each horizontal slice independently. Label
// numbering restarts at 0 in every slice, so labels are only meaningful
// together with SliceOf; SliceSegments groups them that way.
func IntersectionLabels(points []r3.Vector, params Params) []int {
	labels := make([]int, len(points))
	if len(points) == 0 {
		return labels
	}

	slices := make(map[int64][]int)
	for i, p := range points {
		z := SliceOf(p)
		slices[z] = append(slices[z], i)
	}

	// Iterate bottom-up so the walk is deterministic.
	keys := make([]int64, 0, len(slices))
	for z := range slices {
		keys = append(keys, z)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, z := range keys {
		idx := slices[z]
		slice := make([]r3.Vector, len(idx))
		for k, i := range idx {
			slice[k] = points[i]
		}
		sliceLabels := ClusterPoints(slice, params.MinSamples, params.Eps)
		for k, i := range idx {
			labels[i] = sliceLabels[k]
		}
	}
	return labels
}
