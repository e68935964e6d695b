package fault

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// hullAreaTolerance is the relative area below which a hull is treated as
// collinear, scaled by the squared bounding-box span of the input.
const hullAreaTolerance = 1e-12

// hullGeometry returns the convex hull of the x–y projection of pts: a
// *geom.Polygon, or a *geom.LineString / *geom.Point when the projection is
// collinear or coincident.
func hullGeometry(pts PointSet) geom.T {
	flat := make([]float64, 0, 2*len(pts))
	for _, p := range pts {
		flat = append(flat, p.X, p.Y)
	}
	return xy.ConvexHull(geom.NewMultiPointFlat(geom.XY, flat))
}

// ConvexHull returns the convex hull of the x–y projection of pts in
// counter-clockwise order, without repeating the first vertex. Collinear
// boundary points are dropped. Fewer than three distinct non-collinear points
// produce a hull with fewer than three vertices.
func ConvexHull(pts PointSet) []r2.Point {
	if len(pts) == 0 {
		return nil
	}

	var coords []geom.Coord
	switch g := hullGeometry(pts).(type) {
	case *geom.Polygon:
		coords = g.LinearRing(0).Coords()
		// The ring repeats its first vertex.
		coords = coords[:len(coords)-1]
	case *geom.LineString:
		coords = g.Coords()
	case *geom.Point:
		coords = []geom.Coord{g.Coords()}
	}

	hull := make([]r2.Point, len(coords))
	for i, c := range coords {
		hull[i] = r2.Point{X: c.X(), Y: c.Y()}
	}
	if signedArea(hull) < 0 {
		for i, j := 0, len(hull)-1; i < j; i, j = i+1, j-1 {
			hull[i], hull[j] = hull[j], hull[i]
		}
	}
	return hull
}

// signedArea is positive for counter-clockwise rings.
func signedArea(ring []r2.Point) float64 {
	var sum float64
	for i := range ring {
		sum += ring[i].Cross(ring[(i+1)%len(ring)])
	}
	return sum / 2
}

// Area projects rotated points onto the x–y plane and returns the area of
// their convex hull. Fewer than three non-collinear projected points is a
// DegenerateInputError.
func Area(rot PointSet) (float64, error) {
	const op = "convex hull area"

	if len(rot) < 3 {
		return 0, &DegenerateInputError{Op: op, Points: len(rot), Need: 3}
	}

	poly, ok := hullGeometry(rot).(*geom.Polygon)
	if !ok {
		return 0, &DegenerateInputError{Op: op, Points: len(rot), Reason: "projected points are collinear"}
	}

	area := poly.Area()
	b := poly.Bounds()
	span := math.Max(b.Max(0)-b.Min(0), b.Max(1)-b.Min(1))
	if area <= hullAreaTolerance*span*span {
		return 0, &DegenerateInputError{Op: op, Points: len(rot), Reason: "projected points are collinear"}
	}

	return area, nil
}
