package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"

	"github.com/banshee-data/fault.report/internal/fault"
)

// UnlabelledFault is the label given to points read without a label column.
const UnlabelledFault = "0"

// ReadASC parses whitespace-separated "x y z [label]" lines. Blank lines and
// lines starting with '#' are skipped. labels is nil when no line carries a
// label; otherwise unlabelled lines get UnlabelledFault.
func ReadASC(r io.Reader) (fault.PointSet, []string, error) {
	var (
		pts      fault.PointSet
		labels   []string
		labelled bool
	)

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, nil, fmt.Errorf("line %d: expected x y z [label], got %d fields", lineNo, len(fields))
		}
		var xyz [3]float64
		for i := range xyz {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			xyz[i] = v
		}
		pts = append(pts, r3.Vector{X: xyz[0], Y: xyz[1], Z: xyz[2]})

		label := UnlabelledFault
		if len(fields) > 3 {
			label = fields[3]
			labelled = true
		}
		labels = append(labels, label)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("read points: %w", err)
	}

	if !labelled {
		labels = nil
	}
	return pts, labels, nil
}

// GroupByLabel splits points into one Input per label, in order of first
// appearance. A nil labels slice yields a single unlabelled fault.
func GroupByLabel(pts fault.PointSet, labels []string) ([]fault.Input, error) {
	if labels == nil {
		if len(pts) == 0 {
			return nil, nil
		}
		return []fault.Input{{Label: UnlabelledFault, Points: pts}}, nil
	}
	if len(labels) != len(pts) {
		return nil, fmt.Errorf("group points: %d points but %d labels", len(pts), len(labels))
	}

	index := make(map[string]int)
	var out []fault.Input
	for i, l := range labels {
		j, ok := index[l]
		if !ok {
			j = len(out)
			index[l] = j
			out = append(out, fault.Input{Label: l})
		}
		out[j].Points = append(out[j].Points, pts[i])
	}
	return out, nil
}

// WriteASC writes a fault's raw points followed by their rotated coordinates,
// one point per line.
func WriteASC(w io.Writer, pf *fault.ParameterizedFault) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# Fault %s\n", pf.Label())
	fmt.Fprintf(bw, "# strike=%.6f dip=%.6f area=%.6f\n", pf.Strike, pf.Dip, pf.Area)
	fmt.Fprintf(bw, "# Format: X Y Z RotX RotY RotZ\n")

	raw := pf.Fault.Points
	for i, p := range raw {
		q := pf.Rotated[i]
		fmt.Fprintf(bw, "%.6f %.6f %.6f %.6f %.6f %.6f\n", p.X, p.Y, p.Z, q.X, q.Y, q.Z)
	}
	return bw.Flush()
}
