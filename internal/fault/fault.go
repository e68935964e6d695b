package fault

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/fault.report/internal/monitoring"
)

// Fault is a labelled point set awaiting fitting (the Created stage).
type Fault struct {
	Label  string
	Points PointSet
	// Order is the polynomial order of the primary fit used for strike and
	// dip, 1 (plane) by default.
	Order int
}

// NewFault copies pts into a new Fault. order must be 1 or 2.
func NewFault(label string, pts PointSet, order int) (*Fault, error) {
	if Terms(order) == 0 {
		return nil, fmt.Errorf("fault %s: unsupported fit order %d", label, order)
	}
	return &Fault{Label: label, Points: pts.Clone(), Order: order}, nil
}

// FittedFault is a Fault with both raw-frame fits computed (the Fitted stage).
type FittedFault struct {
	Fault *Fault

	// Plane is the primary fit at Fault.Order (C).
	Plane SurfaceFit
	// Quadric is the second-order fit on the raw points (C_sq). It is kept
	// for inspection; parameters use the rotated-frame quadric instead.
	Quadric SurfaceFit

	PlaneZ   []float64 // Plane evaluated at the raw points
	QuadricZ []float64 // Quadric evaluated at the raw points
}

// Fit computes the primary and second-order fits of the raw points.
// It recomputes from the stored points on every call.
func (f *Fault) Fit() (*FittedFault, error) {
	if len(f.Points) < MinPoints {
		return nil, fmt.Errorf("fault %s: %w", f.Label,
			&DegenerateInputError{Op: "fit", Points: len(f.Points), Need: MinPoints})
	}

	x, y, z := f.Points.Columns()

	plane, err := FitSurface(x, y, z, f.Order)
	if err != nil {
		return nil, fmt.Errorf("fault %s: order %d fit: %w", f.Label, f.Order, err)
	}
	planeZ, err := Evaluate(x, y, plane.Coefficients)
	if err != nil {
		return nil, fmt.Errorf("fault %s: evaluate order %d fit: %w", f.Label, f.Order, err)
	}

	quadric, err := FitSurface(x, y, z, OrderQuadric)
	if err != nil {
		return nil, fmt.Errorf("fault %s: order 2 fit: %w", f.Label, err)
	}
	quadricZ, err := Evaluate(x, y, quadric.Coefficients)
	if err != nil {
		return nil, fmt.Errorf("fault %s: evaluate order 2 fit: %w", f.Label, err)
	}

	return &FittedFault{
		Fault:    f,
		Plane:    plane,
		Quadric:  quadric,
		PlaneZ:   planeZ,
		QuadricZ: quadricZ,
	}, nil
}

// ParameterizedFault carries every derived attribute of a fault (the
// Parameterized stage).
type ParameterizedFault struct {
	*FittedFault

	Strike float64 // radians, [0, 2π)
	Dip    float64 // radians, [0, π/2)
	Extent
	Area float64

	// Rotated is the raw point set in the fault-aligned frame.
	Rotated PointSet
	// RotatedQuadric is the second-order fit on Rotated that all curvature
	// attributes are evaluated with.
	RotatedQuadric SurfaceFit

	Curv  float64 // mean curvature at the rotated centroid
	CurvX float64
	CurvY float64

	// Mean curvature evaluated at every rotated point, reduced.
	CurvMean float64
	CurvMin  float64
	CurvMax  float64
}

// ComputeParams derives orientation, extent, area and curvature. A nil or
// zero-value FittedFault returns ErrUnfitted.
func (ff *FittedFault) ComputeParams() (*ParameterizedFault, error) {
	if ff == nil || ff.Fault == nil || len(ff.Plane.Coefficients) == 0 {
		return nil, ErrUnfitted
	}
	label := ff.Fault.Label
	start := time.Now()

	strike, dip, err := StrikeDip(ff.Plane.Coefficients)
	if err != nil {
		return nil, fmt.Errorf("fault %s: %w", label, err)
	}
	if math.IsNaN(strike) || math.IsNaN(dip) {
		return nil, fmt.Errorf("fault %s: %w", label, &NumericalError{Op: "strike/dip", Reason: "plane fit is degenerate"})
	}

	rotated := Rotate(strike, dip, ff.Fault.Points)
	extent := ComputeExtent(rotated)

	area, err := Area(rotated)
	if err != nil {
		return nil, fmt.Errorf("fault %s: %w", label, err)
	}

	rx, ry, rz := rotated.Columns()
	rotQuadric, err := FitSurface(rx, ry, rz, OrderQuadric)
	if err != nil {
		return nil, fmt.Errorf("fault %s: rotated order 2 fit: %w", label, err)
	}
	c := rotQuadric.Coefficients

	mx, my := stat.Mean(rx, nil), stat.Mean(ry, nil)

	curvs := make([]float64, len(rotated))
	for i := range rotated {
		curvs[i] = MeanCurvature(rx[i], ry[i], c)
	}

	pf := &ParameterizedFault{
		FittedFault:    ff,
		Strike:         strike,
		Dip:            dip,
		Extent:         extent,
		Area:           area,
		Rotated:        rotated,
		RotatedQuadric: rotQuadric,
		Curv:           MeanCurvature(mx, my, c),
		CurvX:          CurvatureX(mx, my, c),
		CurvY:          CurvatureY(mx, my, c),
		CurvMean:       stat.Mean(curvs, nil),
		CurvMin:        floats.Min(curvs),
		CurvMax:        floats.Max(curvs),
	}

	monitoring.Debugf("fault %s: %d points, strike=%.4f dip=%.4f area=%.3f in %s",
		label, len(rotated), strike, dip, area, time.Since(start))

	return pf, nil
}

// Record flattens the derived attributes into one output row.
func (pf *ParameterizedFault) Record() Record {
	return Record{
		Strike:    pf.Strike,
		Dip:       pf.Dip,
		DepthMin:  pf.DepthMin,
		DepthMax:  pf.DepthMax,
		Height:    pf.Height,
		Length:    pf.Length,
		Area:      pf.Area,
		Curv:      pf.Curv,
		CurvMean:  pf.CurvMean,
		CurvMin:   pf.CurvMin,
		CurvMax:   pf.CurvMax,
		CurvX:     pf.CurvX,
		CurvY:     pf.CurvY,
		Deviation: pf.Deviation,
		StdDev:    pf.StdDev,
	}
}

// Label returns the label of the underlying fault.
func (pf *ParameterizedFault) Label() string {
	return pf.Fault.Label
}

// Process runs a fault through NewFault, Fit and ComputeParams.
func Process(label string, pts PointSet, order int) (*ParameterizedFault, error) {
	f, err := NewFault(label, pts, order)
	if err != nil {
		return nil, err
	}
	ff, err := f.Fit()
	if err != nil {
		return nil, err
	}
	return ff.ComputeParams()
}
