package cluster

import (
	"fmt"
	"sort"

	"github.com/golang/geo/r3"
)

// Segment is the set of points sharing one non-noise label. Segments from
// per-slice labelling also carry the slice the label belongs to.
type Segment struct {
	Label  int
	Slice  int64
	Sliced bool
	Points []r3.Vector
}

// Name returns the label formatted for fault tables.
func (s Segment) Name() string {
	if s.Sliced {
		return fmt.Sprintf("z%d-%d", s.Slice, s.Label)
	}
	return fmt.Sprintf("%d", s.Label)
}

// Segments splits labelled points into one Segment per non-noise label,
// ordered by label. Points keep their input order within a segment.
func Segments(points []r3.Vector, labels []int) ([]Segment, error) {
	if len(points) != len(labels) {
		return nil, fmt.Errorf("segments: %d points but %d labels", len(points), len(labels))
	}

	byLabel := make(map[int][]r3.Vector)
	for i, l := range labels {
		if l == Noise {
			continue
		}
		byLabel[l] = append(byLabel[l], points[i])
	}

	out := make([]Segment, 0, len(byLabel))
	for l, pts := range byLabel {
		out = append(out, Segment{Label: l, Points: pts})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

// SliceSegments splits IntersectionLabels output into one Segment per
// (slice, label) pair, ordered by slice then label. Equal label numbers in
// different slices are different clusters.
func SliceSegments(points []r3.Vector, labels []int) ([]Segment, error) {
	if len(points) != len(labels) {
		return nil, fmt.Errorf("slice segments: %d points but %d labels", len(points), len(labels))
	}

	type key struct {
		slice int64
		label int
	}
	byKey := make(map[key][]r3.Vector)
	for i, l := range labels {
		if l == Noise {
			continue
		}
		k := key{SliceOf(points[i]), l}
		byKey[k] = append(byKey[k], points[i])
	}

	out := make([]Segment, 0, len(byKey))
	for k, pts := range byKey {
		out = append(out, Segment{Label: k.label, Slice: k.slice, Sliced: true, Points: pts})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Slice != out[j].Slice {
			return out[i].Slice < out[j].Slice
		}
		return out[i].Label < out[j].Label
	})
	return out, nil
}

// FilterMinPoints drops segments with fewer than n points.
func FilterMinPoints(segs []Segment, n int) []Segment {
	out := segs[:0:0]
	for _, s := range segs {
		if len(s.Points) >= n {
			out = append(out, s)
		}
	}
	return out
}
