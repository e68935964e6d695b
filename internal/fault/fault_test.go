package fault

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tiltedGrid is a 5×5 grid on z = x, i.e. strike 0 and dip π/4.
func tiltedGrid() PointSet {
	return gridPoints(5, func(x, y float64) float64 { return x })
}

func TestNewFault(t *testing.T) {
	pts := tiltedGrid()

	f, err := NewFault("F1", pts, OrderPlane)
	require.NoError(t, err)
	assert.Equal(t, "F1", f.Label)
	assert.Equal(t, OrderPlane, f.Order)

	// The fault owns its own copy.
	pts[0].Z = 99
	assert.Equal(t, 0.0, f.Points[0].Z)

	_, err = NewFault("F2", pts, 3)
	assert.Error(t, err)
}

func TestFault_Fit(t *testing.T) {
	f, err := NewFault("F1", tiltedGrid(), OrderPlane)
	require.NoError(t, err)

	ff, err := f.Fit()
	require.NoError(t, err)
	assert.Same(t, f, ff.Fault)
	assert.InDeltaSlice(t, []float64{0, 1, 0}, ff.Plane.Coefficients, 1e-9)
	assert.Len(t, ff.Quadric.Coefficients, 6)
	assert.InDeltaSlice(t, []float64{0, 1, 0, 0, 0, 0}, ff.Quadric.Coefficients, 1e-9)

	_, _, z := f.Points.Columns()
	assert.InDeltaSlice(t, z, ff.PlaneZ, 1e-9)
	assert.InDeltaSlice(t, z, ff.QuadricZ, 1e-9)

	// Re-fitting recomputes the same coefficients.
	again, err := f.Fit()
	require.NoError(t, err)
	if diff := cmp.Diff(ff.Plane, again.Plane); diff != "" {
		t.Errorf("refit plane differs (-first +second):\n%s", diff)
	}
}

func TestFault_FitTooFewPoints(t *testing.T) {
	for _, order := range []int{OrderPlane, OrderQuadric} {
		f, err := NewFault("tiny", PointSet{vec(0, 0, 0), vec(1, 1, 1)}, order)
		require.NoError(t, err)

		_, err = f.Fit()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDegenerateInput), "order %d: %v", order, err)
	}
}

func TestFault_ThreePointsSucceeds(t *testing.T) {
	pf, err := Process("tri", PointSet{vec(0, 0, 0), vec(1, 0, 0), vec(0, 1, 0)}, OrderPlane)
	require.NoError(t, err)
	assert.InDelta(t, 0, pf.Dip, 1e-12)
	assert.InDelta(t, 0.5, pf.Area, 1e-12)
	assert.True(t, pf.Quadric.Underdetermined)
	assert.True(t, pf.RotatedQuadric.Underdetermined)
}

func TestComputeParams_Unfitted(t *testing.T) {
	var nilFitted *FittedFault
	_, err := nilFitted.ComputeParams()
	assert.ErrorIs(t, err, ErrUnfitted)

	_, err = (&FittedFault{}).ComputeParams()
	assert.ErrorIs(t, err, ErrUnfitted)

	f, err := NewFault("F1", tiltedGrid(), OrderPlane)
	require.NoError(t, err)
	_, err = (&FittedFault{Fault: f}).ComputeParams()
	assert.ErrorIs(t, err, ErrUnfitted)
}

func TestComputeParams_TiltedPlane(t *testing.T) {
	f, err := NewFault("F1", tiltedGrid(), OrderPlane)
	require.NoError(t, err)
	ff, err := f.Fit()
	require.NoError(t, err)

	pf, err := ff.ComputeParams()
	require.NoError(t, err)

	// Strike is 0 up to wrap-around at 2π.
	assert.InDelta(t, 0, math.Sin(pf.Strike), 1e-9)
	assert.InDelta(t, 1, math.Cos(pf.Strike), 1e-9)
	assert.InDelta(t, math.Pi/4, pf.Dip, 1e-9)

	// The 4×4 footprint tilted by 45° is √2 times longer along x.
	assert.InDelta(t, 4*math.Sqrt2, pf.Height, 1e-9)
	assert.InDelta(t, 4, pf.Length, 1e-9)
	assert.InDelta(t, 16*math.Sqrt2, pf.Area, 1e-9)
	assert.InDelta(t, 0, pf.Deviation, 1e-9)
	assert.InDelta(t, 0, pf.StdDev, 1e-9)
	assert.InDelta(t, pf.DepthMin, pf.DepthMax, 1e-9)

	// A plane has no curvature.
	for name, v := range map[string]float64{
		"curv": pf.Curv, "curv_x": pf.CurvX, "curv_y": pf.CurvY,
		"curv_mean": pf.CurvMean, "curv_min": pf.CurvMin, "curv_max": pf.CurvMax,
	} {
		assert.InDelta(t, 0, v, 1e-6, name)
	}

	require.Len(t, pf.Rotated, len(f.Points))
}

func TestComputeParams_CurvedFault(t *testing.T) {
	// A shallow bowl: positive c4 and c5 give negative curvature.
	pts := gridPoints(7, func(x, y float64) float64 {
		dx, dy := x-3, y-3
		return 0.05*dx*dx + 0.05*dy*dy
	})
	pf, err := Process("bowl", pts, OrderPlane)
	require.NoError(t, err)

	assert.Less(t, pf.Curv, 0.0)
	assert.Less(t, pf.CurvX, 0.0)
	assert.Less(t, pf.CurvY, 0.0)
	assert.InDelta(t, pf.Curv, 0.5*(pf.CurvX+pf.CurvY), 1e-12)
	assert.LessOrEqual(t, pf.CurvMin, pf.CurvMean)
	assert.LessOrEqual(t, pf.CurvMean, pf.CurvMax)
	// The bowl is symmetric, so the plane fit is level.
	assert.InDelta(t, 0, pf.Dip, 1e-9)
	assert.Greater(t, pf.Deviation, 0.0)
}

func TestComputeParams_Idempotent(t *testing.T) {
	pts := gridPoints(6, func(x, y float64) float64 { return 0.3*x - 0.2*y + 0.01*x*y })
	f, err := NewFault("F1", pts, OrderPlane)
	require.NoError(t, err)
	ff, err := f.Fit()
	require.NoError(t, err)

	first, err := ff.ComputeParams()
	require.NoError(t, err)
	second, err := ff.ComputeParams()
	require.NoError(t, err)

	if diff := cmp.Diff(first.Record(), second.Record()); diff != "" {
		t.Errorf("records differ (-first +second):\n%s", diff)
	}
}

func TestComputeParams_CollinearFootprint(t *testing.T) {
	// Points on a line in x–y never give a hull, whatever their z.
	pts := PointSet{vec(0, 0, 0), vec(1, 1, 1), vec(2, 2, 0), vec(3, 3, 1)}
	_, err := Process("line", pts, OrderPlane)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDegenerateInput)
}

func TestRecord(t *testing.T) {
	pf, err := Process("F1", tiltedGrid(), OrderPlane)
	require.NoError(t, err)

	r := pf.Record()
	assert.Equal(t, pf.Strike, r.Strike)
	assert.Equal(t, pf.DepthMin, r.DepthMin)
	assert.Equal(t, pf.Area, r.Area)

	vals := r.Values()
	require.Len(t, vals, len(RecordColumns))
	m := r.Map()
	require.Len(t, m, len(RecordColumns))
	for i, name := range RecordColumns {
		assert.Equal(t, vals[i], m[name], name)
	}
	assert.Equal(t, []string{
		"strike", "dip", "depth_min", "depth_max", "height", "length", "area",
		"curv", "curv_mean", "curv_min", "curv_max", "curv_x", "curv_y",
	}, RecordColumns[:13])
}
