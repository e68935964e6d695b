package export

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/fault.report/internal/fault"
)

var (
	pointColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	hullColor  = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// footprintSize is the side of the square PNG footprint plot.
const footprintSize = 6 * vg.Inch

// WriteFootprintPNG plots a fault's rotated points projected onto the fault
// plane together with the convex hull used for its area.
func WriteFootprintPNG(w io.Writer, pf *fault.ParameterizedFault) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Fault %s - footprint (area %.2f)", pf.Label(), pf.Area)
	p.X.Label.Text = "Along x'"
	p.Y.Label.Text = "Along y'"

	pts := make(plotter.XYs, len(pf.Rotated))
	for i, q := range pf.Rotated {
		pts[i] = plotter.XY{X: q.X, Y: q.Y}
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("fault %s: scatter: %w", pf.Label(), err)
	}
	scatter.GlyphStyle.Color = pointColor
	scatter.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(scatter)
	p.Legend.Add("points", scatter)

	hull := fault.ConvexHull(pf.Rotated)
	if len(hull) >= 3 {
		ring := make(plotter.XYs, 0, len(hull)+1)
		for _, v := range hull {
			ring = append(ring, plotter.XY{X: v.X, Y: v.Y})
		}
		ring = append(ring, ring[0])

		line, err := plotter.NewLine(ring)
		if err != nil {
			return fmt.Errorf("fault %s: hull: %w", pf.Label(), err)
		}
		line.Color = hullColor
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add("convex hull", line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	wt, err := p.WriterTo(footprintSize, footprintSize, "png")
	if err != nil {
		return fmt.Errorf("fault %s: render: %w", pf.Label(), err)
	}
	_, err = wt.WriteTo(w)
	return err
}
