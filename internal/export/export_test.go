package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/fault.report/internal/fault"
	"github.com/banshee-data/fault.report/internal/fsutil"
	"github.com/banshee-data/fault.report/internal/testutil"
)

// bowl is a gently curved, tilted surface sampled on a 6x6 grid.
func bowl(t *testing.T, label string) *fault.ParameterizedFault {
	t.Helper()
	pts := fault.PointSet(testutil.Grid(6, func(x, y float64) float64 {
		return 0.5*x + 0.05*(x*x+y*y)
	}))
	pf, err := fault.Process(label, pts, fault.OrderPlane)
	require.NoError(t, err)
	return pf
}

func sampleTable() *fault.Table {
	tbl := fault.NewTable(2)
	tbl.Append("f1", fault.Record{Strike: math.Pi / 2, Dip: math.Pi / 4, Area: 10, CurvMean: 0.1})
	tbl.Append("f2", fault.Record{Strike: 0.5, Dip: 0.1, Area: 3, Curv: math.NaN(), CurvMean: math.NaN()})
	return tbl
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, append([]string{"label"}, fault.RecordColumns...), rows[0])
	assert.Equal(t, "f1", rows[1][0])
	assert.Equal(t, "10", rows[1][1+6]) // area
	assert.Equal(t, "NaN", rows[2][1+7]) // curv
}

func TestConvertAngles(t *testing.T) {
	in := sampleTable()

	deg, err := ConvertAngles(in, "deg")
	require.NoError(t, err)
	assert.InDelta(t, 90.0, deg.Rows[0].Record.Strike, 1e-9)
	assert.InDelta(t, 45.0, deg.Rows[0].Record.Dip, 1e-9)
	assert.Equal(t, 10.0, deg.Rows[0].Record.Area)
	assert.InDelta(t, math.Pi/2, in.Rows[0].Record.Strike, 1e-12, "input unchanged")

	rad, err := ConvertAngles(in, "rad")
	require.NoError(t, err)
	assert.Equal(t, in.Rows[1].Record.Strike, rad.Rows[1].Record.Strike)

	_, err = ConvertAngles(in, "grad")
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	failures := []fault.Failure{{Label: "f3", Err: errors.New("too few points")}}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleTable(), failures))

	var got struct {
		Columns  []string                 `json:"columns"`
		Rows     []map[string]interface{} `json:"rows"`
		Failures []map[string]string      `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	require.Len(t, got.Rows, 2)
	assert.Equal(t, "f1", got.Rows[0]["label"])
	assert.InDelta(t, 10.0, got.Rows[0]["area"], 1e-12)
	assert.Nil(t, got.Rows[1]["curv"])
	assert.Contains(t, got.Rows[1], "curv")

	want := []map[string]string{{"label": "f3", "error": "too few points"}}
	if diff := cmp.Diff(want, got.Failures); diff != "" {
		t.Errorf("failures mismatch (-want +got):\n%s", diff)
	}
}

func TestReadASC(t *testing.T) {
	in := `# header
0 0 0 a
1 0 0.5 a

2 1 1 b
3.5 -1 2e-1 a
`
	pts, labels, err := ReadASC(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, pts, 4)
	assert.Equal(t, []string{"a", "a", "b", "a"}, labels)
	assert.Equal(t, r3.Vector{X: 3.5, Y: -1, Z: 0.2}, pts[3])

	inputs, err := GroupByLabel(pts, labels)
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, "a", inputs[0].Label)
	assert.Len(t, inputs[0].Points, 3)
	assert.Equal(t, "b", inputs[1].Label)
}

func TestReadASC_Unlabelled(t *testing.T) {
	pts, labels, err := ReadASC(strings.NewReader("0 0 0\n1 1 1\n2 0 1\n"))
	require.NoError(t, err)
	assert.Nil(t, labels)

	inputs, err := GroupByLabel(pts, labels)
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, UnlabelledFault, inputs[0].Label)
	assert.Len(t, inputs[0].Points, 3)
}

func TestReadASC_Errors(t *testing.T) {
	_, _, err := ReadASC(strings.NewReader("1 2\n"))
	assert.ErrorContains(t, err, "line 1")

	_, _, err = ReadASC(strings.NewReader("# ok\n1 2 x\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = GroupByLabel(fault.PointSet{{}}, []string{"a", "b"})
	assert.Error(t, err)
}

func TestWriteASC(t *testing.T) {
	pf := bowl(t, "f1")

	var buf bytes.Buffer
	require.NoError(t, WriteASC(&buf, pf))

	pts, _, err := ReadASC(&buf)
	require.NoError(t, err)
	require.Len(t, pts, len(pf.Rotated))
	assert.InDelta(t, pf.Fault.Points[5].Z, pts[5].Z, 1e-6)
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sampleTable(), "faults"))

	html := buf.String()
	assert.Contains(t, html, "Fault Orientation")
	assert.Contains(t, html, "Fault Area")
	assert.Contains(t, html, "Mean Curvature")
}

func TestWriteFootprintPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFootprintPNG(&buf, bowl(t, "f1")))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), 0)
}

func TestExporter_WritesThroughFileSystem(t *testing.T) {
	testutil.QuietLogs(t)
	mfs := fsutil.NewMemoryFileSystem()
	e := NewExporter(mfs)

	faults := []*fault.ParameterizedFault{bowl(t, "f1"), bowl(t, "../f2")}
	tbl := fault.GenerateTable(faults)

	require.NoError(t, e.CSV("/out/faults.csv", tbl))
	require.NoError(t, e.JSON("/out/faults.json", tbl, nil))
	require.NoError(t, e.HTML("/out/faults.html", tbl))

	n, err := e.Footprints("/out/plots", faults)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = e.RotatedPoints("/out/asc", faults)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	want := []string{
		"/out/asc/f1.asc",
		"/out/asc/f2.asc",
		"/out/faults.csv",
		"/out/faults.html",
		"/out/faults.json",
		"/out/plots/f1.png",
		"/out/plots/f2.png",
	}
	if diff := cmp.Diff(want, mfs.Files()); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, mfs.Exists("/out/plots"))
}

func TestExporter_CollidingLabelsGetDistinctFiles(t *testing.T) {
	testutil.QuietLogs(t)
	mfs := fsutil.NewMemoryFileSystem()
	e := NewExporter(mfs)

	faults := []*fault.ParameterizedFault{bowl(t, "a/b"), bowl(t, "a_b"), bowl(t, "a b")}
	n, err := e.RotatedPoints("/out", faults)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	want := []string{"/out/a_b.asc", "/out/a_b_2.asc", "/out/a_b_3.asc"}
	if diff := cmp.Diff(want, mfs.Files()); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestExporter_ReadPoints(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	w, err := mfs.Create("/in/points.asc")
	require.NoError(t, err)
	_, err = w.Write([]byte("0 0 0 7\n1 0 0 7\n0 1 0 7\n5 5 5 8\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	inputs, err := NewExporter(mfs).ReadPoints("/in/points.asc")
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, "7", inputs[0].Label)
	assert.Len(t, inputs[0].Points, 3)

	_, err = NewExporter(mfs).ReadPoints("/in/missing.asc")
	assert.Error(t, err)
}
