package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/fault.report/internal/storage/sqlite"
	"github.com/banshee-data/fault.report/internal/testutil"
	"github.com/banshee-data/fault.report/internal/volume"
)

// writePoints writes two labelled planar faults and one fault too small to fit.
func writePoints(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("# x y z label\n")
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			x, y := float64(i), float64(j)
			fmt.Fprintf(&b, "%g %g %g A\n", x, y, x)
			fmt.Fprintf(&b, "%g %g %g B\n", x+20, y, 0.5*y)
		}
	}
	b.WriteString("0 0 0 C\n1 1 1 C\n")

	return testutil.WriteFile(t, dir, "points.asc", b.String())
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestParseFlags(t *testing.T) {
	fs := flag.NewFlagSet("faults", flag.ContinueOnError)
	o, verbose, showVersion, err := parseFlags(fs, []string{"-points", "p.asc", "-order", "2", "-verbose"})
	require.NoError(t, err)
	assert.Equal(t, "p.asc", o.Points)
	assert.Equal(t, 2, o.Order)
	assert.Nil(t, o.Threshold)
	assert.True(t, verbose)
	assert.False(t, showVersion)

	fs = flag.NewFlagSet("faults", flag.ContinueOnError)
	o, _, _, err = parseFlags(fs, []string{"-volume", "v.raw", "-threshold", "-0.25"})
	require.NoError(t, err)
	require.NotNil(t, o.Threshold)
	assert.Equal(t, -0.25, *o.Threshold)
}

func TestParseDims(t *testing.T) {
	dims, err := parseDims("10, 20,30")
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30}, dims)

	_, err = parseDims("10,20")
	assert.Error(t, err)
	_, err = parseDims("a,b,c")
	assert.Error(t, err)
}

func TestParseRange(t *testing.T) {
	r, err := parseRange("")
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = parseRange("2:8")
	require.NoError(t, err)
	assert.Equal(t, &volume.Range{Min: 2, Max: 8}, r)

	_, err = parseRange("2-8")
	assert.Error(t, err)
}

func TestRun_PointsToStdout(t *testing.T) {
	testutil.QuietLogs(t)
	dir := t.TempDir()

	var out bytes.Buffer
	err := run(context.Background(), &options{Points: writePoints(t, dir), Workers: 2}, &out)
	require.NoError(t, err)

	rows := readCSV(t, out.Bytes())
	require.Len(t, rows, 3, "header plus faults A and B; C has too few points")
	assert.Equal(t, "label", rows[0][0])
	assert.Equal(t, "A", rows[1][0])
	assert.Equal(t, "B", rows[2][0])

	dip, err := strconv.ParseFloat(rows[1][2], 64)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/4, dip, 1e-9)
}

func TestRun_Degrees(t *testing.T) {
	testutil.QuietLogs(t)
	dir := t.TempDir()

	var out bytes.Buffer
	err := run(context.Background(), &options{Points: writePoints(t, dir), Angles: "deg"}, &out)
	require.NoError(t, err)

	rows := readCSV(t, out.Bytes())
	require.Len(t, rows, 3)
	dip, err := strconv.ParseFloat(rows[1][2], 64)
	require.NoError(t, err)
	assert.InDelta(t, 45.0, dip, 1e-6)
}

func TestRun_AllOutputs(t *testing.T) {
	testutil.QuietLogs(t)
	dir := t.TempDir()

	o := &options{
		Points:    writePoints(t, dir),
		CSV:       filepath.Join(dir, "out", "faults.csv"),
		JSON:      filepath.Join(dir, "out", "faults.json"),
		HTML:      filepath.Join(dir, "out", "faults.html"),
		Plots:     filepath.Join(dir, "out", "plots"),
		ASCDir:    filepath.Join(dir, "out", "asc"),
		DB:        filepath.Join(dir, "faults.db"),
	}
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), o, &out))
	assert.Zero(t, out.Len(), "nothing goes to stdout when an output is given")

	for _, p := range []string{
		o.CSV, o.JSON, o.HTML,
		filepath.Join(o.Plots, "A.png"), filepath.Join(o.Plots, "B.png"),
		filepath.Join(o.ASCDir, "A.asc"), filepath.Join(o.ASCDir, "B.asc"),
	} {
		_, err := os.Stat(p)
		assert.NoError(t, err, p)
	}

	db, err := sqlite.Open(o.DB)
	require.NoError(t, err)
	defer db.Close()
	store := sqlite.NewRunStore(db)

	runs, err := store.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "points.asc", runs[0].Source)
	assert.Equal(t, 2, runs[0].FaultCount)
	assert.Equal(t, 1, runs[0].FailedCount)

	failures, err := store.ListFailures(runs[0].RunID)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "C", failures[0].Label)
}

func TestRun_VolumeWithClustering(t *testing.T) {
	testutil.QuietLogs(t)
	dir := t.TempDir()

	// A 45 degree plane of voxels, z = x.
	vol, err := volume.New(10, 10, 10)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			vol.Set(i, j, i, 1)
		}
	}
	volPath := filepath.Join(dir, "faults.raw")
	f, err := os.Create(volPath)
	require.NoError(t, err)
	require.NoError(t, volume.WriteRaw(f, vol))
	require.NoError(t, f.Close())

	cfgPath := testutil.WriteFile(t, dir, "analysis.json", `{"fault_min_samples": 3}`)

	var out bytes.Buffer
	err = run(context.Background(), &options{
		ConfigPath: cfgPath,
		Volume:     volPath,
		Dims:       "10,10,10",
	}, &out)
	require.NoError(t, err)

	rows := readCSV(t, out.Bytes())
	require.Len(t, rows, 2)
	assert.Equal(t, "0", rows[1][0])

	dip, err := strconv.ParseFloat(rows[1][2], 64)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/4, dip, 1e-9)
}

func TestRun_SliceClusteringKeepsSlicesApart(t *testing.T) {
	testutil.QuietLogs(t)
	dir := t.TempDir()

	// Two unlabelled squares in different slices, both label 0 in their own slice.
	points := testutil.WriteFile(t, dir, "slices.asc",
		"0 0 0\n1 0 0\n0 1 0\n1 1 0\n100 100 5\n101 100 5\n100 101 5\n101 101 5\n")

	var out bytes.Buffer
	err := run(context.Background(), &options{Points: points, Cluster: "slice"}, &out)
	require.NoError(t, err)

	rows := readCSV(t, out.Bytes())
	require.Len(t, rows, 3)
	assert.Equal(t, "z0-0", rows[1][0])
	assert.Equal(t, "z5-0", rows[2][0])
}

func TestRun_Errors(t *testing.T) {
	testutil.QuietLogs(t)
	dir := t.TempDir()
	points := writePoints(t, dir)
	ctx := context.Background()

	tests := []struct {
		name string
		opts options
	}{
		{"no input", options{}},
		{"both inputs", options{Points: points, Volume: "v.raw"}},
		{"volume without dims", options{Volume: "v.raw"}},
		{"bad order", options{Points: points, Order: 3}},
		{"bad angle units", options{Points: points, Angles: "grad"}},
		{"bad cluster mode", options{Points: points, Cluster: "kmeans"}},
		{"output outside allowed dirs", options{Points: points, CSV: "/proc/faults.csv"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := tt.opts
			assert.Error(t, run(ctx, &o, &bytes.Buffer{}))
		})
	}
}
