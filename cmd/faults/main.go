// Command faults fits surfaces to fault point clouds and writes a table of
// fault attributes: strike, dip, extent, area and curvature.
//
// Faults come either from a labelled ASC point file (-points) or from a raw
// float32 volume (-volume) that is thresholded and clustered into faults.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/golang/geo/r3"

	"github.com/banshee-data/fault.report/internal/cluster"
	"github.com/banshee-data/fault.report/internal/config"
	"github.com/banshee-data/fault.report/internal/export"
	"github.com/banshee-data/fault.report/internal/fault"
	"github.com/banshee-data/fault.report/internal/monitoring"
	"github.com/banshee-data/fault.report/internal/security"
	"github.com/banshee-data/fault.report/internal/storage/sqlite"
	"github.com/banshee-data/fault.report/internal/units"
	"github.com/banshee-data/fault.report/internal/version"
	"github.com/banshee-data/fault.report/internal/volume"
)

// Clustering modes for -cluster.
const (
	clusterNone         = "none"
	clusterFault        = "fault"
	clusterSlice        = "slice"
	clusterIntersection = "intersection"
)

type options struct {
	ConfigPath string
	Points     string
	Volume     string
	Dims       string
	Threshold  *float64 // nil uses the config value
	XRange     string
	YRange     string
	ZRange     string
	Cluster    string
	Order      int
	Workers    int
	Angles     string

	CSV    string
	JSON   string
	HTML   string
	Plots  string
	ASCDir string
	DB     string
}

func parseFlags(fs *flag.FlagSet, args []string) (*options, bool, bool, error) {
	o := &options{}
	fs.StringVar(&o.ConfigPath, "config", "", "Analysis config JSON (built-in defaults when empty)")
	fs.StringVar(&o.Points, "points", "", "ASC point file: x y z [label] per line")
	fs.StringVar(&o.Volume, "volume", "", "Raw little-endian float32 volume")
	fs.StringVar(&o.Dims, "dims", "", "Volume dimensions nx,ny,nz (overrides config)")
	threshold := fs.Float64("threshold", 0, "Voxel threshold (config value when not given)")
	fs.StringVar(&o.XRange, "x", "", "Sub-volume x range min:max")
	fs.StringVar(&o.YRange, "y", "", "Sub-volume y range min:max")
	fs.StringVar(&o.ZRange, "z", "", "Sub-volume z range min:max")
	fs.StringVar(&o.Cluster, "cluster", "", "Clustering: none, fault, slice or intersection (default fault for volumes, none for points)")
	fs.IntVar(&o.Order, "order", 0, "Primary fit order 1 or 2; 0 uses the config value")
	fs.IntVar(&o.Workers, "workers", 0, "Concurrent faults; 0 uses the config value")
	fs.StringVar(&o.Angles, "angles", units.Radians, "Angle units for CSV/JSON strike and dip: "+units.ValidAngleUnitsString())
	fs.StringVar(&o.CSV, "csv", "", "Write the fault table as CSV (stdout when no output is given)")
	fs.StringVar(&o.JSON, "json", "", "Write the fault table and failures as JSON")
	fs.StringVar(&o.HTML, "html", "", "Write an HTML chart summary")
	fs.StringVar(&o.Plots, "plots", "", "Directory for per-fault footprint PNGs")
	fs.StringVar(&o.ASCDir, "asc-dir", "", "Directory for per-fault rotated ASC point files")
	fs.StringVar(&o.DB, "db", "", "SQLite database to record the run in")
	verbose := fs.Bool("verbose", false, "Log per-fault timings")
	showVersion := fs.Bool("version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, false, false, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "threshold" {
			o.Threshold = threshold
		}
	})
	return o, *verbose, *showVersion, nil
}

func main() {
	opts, verbose, showVersion, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if showVersion {
		fmt.Println(version.String("faults"))
		return
	}
	monitoring.SetVerbose(verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		log.Fatalf("faults: %v", err)
	}
}

func run(ctx context.Context, o *options, stdout io.Writer) error {
	if (o.Points == "") == (o.Volume == "") {
		return fmt.Errorf("exactly one of -points or -volume is required")
	}
	if o.Angles == "" {
		o.Angles = units.Radians
	}
	if !units.IsValidAngle(o.Angles) {
		return fmt.Errorf("invalid -angles %q: must be one of %s", o.Angles, units.ValidAngleUnitsString())
	}

	cfg := config.EmptyAnalysisConfig()
	if o.ConfigPath != "" {
		var err error
		if cfg, err = config.LoadAnalysisConfig(o.ConfigPath); err != nil {
			return err
		}
	}
	if o.Order != 0 {
		cfg.FitOrder = &o.Order
	}
	if o.Workers != 0 {
		cfg.Workers = &o.Workers
	}
	if o.Threshold != nil {
		cfg.VolumeThreshold = o.Threshold
	}
	if o.Dims != "" {
		dims, err := parseDims(o.Dims)
		if err != nil {
			return err
		}
		cfg.VolumeDims = dims
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	for _, p := range []string{o.CSV, o.JSON, o.HTML, o.Plots, o.ASCDir, o.DB} {
		if p == "" {
			continue
		}
		if err := security.ValidateOutputPath(p); err != nil {
			return err
		}
	}

	exp := export.NewExporter(nil)
	inputs, source, err := loadInputs(exp, o, cfg)
	if err != nil {
		return err
	}
	log.Printf("Loaded %d faults from %s", len(inputs), source)

	res := fault.ProcessBatch(ctx, inputs, fault.BatchOptions{
		Order:   cfg.GetFitOrder(),
		Workers: cfg.GetWorkers(),
	})
	if err := ctx.Err(); err != nil {
		return err
	}

	return writeOutputs(exp, o, cfg, source, res, stdout)
}

// loadInputs returns the fault inputs and a description of their source.
func loadInputs(exp *export.Exporter, o *options, cfg *config.AnalysisConfig) ([]fault.Input, string, error) {
	mode := o.Cluster
	if o.Points != "" {
		if mode == "" {
			mode = clusterNone
		}
		inputs, err := exp.ReadPoints(o.Points)
		if err != nil {
			return nil, "", err
		}
		if mode == clusterNone {
			return inputs, o.Points, nil
		}
		var pts []r3.Vector
		for _, in := range inputs {
			pts = append(pts, in.Points...)
		}
		inputs, err = clusterInputs(pts, mode, cfg)
		return inputs, o.Points, err
	}

	nx, ny, nz, ok := cfg.GetVolumeDims()
	if !ok {
		return nil, "", fmt.Errorf("-volume needs -dims or volume_dims in the config")
	}
	vol, err := volume.LoadRawFile(o.Volume, nx, ny, nz)
	if err != nil {
		return nil, "", err
	}

	var ranges [3]*volume.Range
	for i, s := range []string{o.XRange, o.YRange, o.ZRange} {
		if ranges[i], err = parseRange(s); err != nil {
			return nil, "", err
		}
	}
	pts, _, err := volume.ExtractPointsAboveThreshold(vol, float32(cfg.GetVolumeThreshold()), ranges[0], ranges[1], ranges[2])
	if err != nil {
		return nil, "", err
	}
	log.Printf("Extracted %d voxels above %.3f from %s", len(pts), cfg.GetVolumeThreshold(), o.Volume)

	if mode == "" {
		mode = clusterFault
	}
	if mode == clusterNone {
		return []fault.Input{{Label: export.UnlabelledFault, Points: pts}}, o.Volume, nil
	}
	inputs, err := clusterInputs(pts, mode, cfg)
	return inputs, o.Volume, err
}

// clusterInputs labels pts with the chosen clustering and turns every
// cluster with enough points into a fault input.
func clusterInputs(pts []r3.Vector, mode string, cfg *config.AnalysisConfig) ([]fault.Input, error) {
	var (
		segs []cluster.Segment
		err  error
	)
	switch mode {
	case clusterFault:
		c := cluster.NewDBSCANClusterer(cluster.Params{Eps: cfg.GetFaultEps(), MinSamples: cfg.GetFaultMinSamples()})
		segs, err = cluster.Segments(pts, c.Cluster(pts))
	case clusterSlice:
		labels := cluster.IntersectionLabels(pts, cluster.Params{Eps: cfg.GetSliceEps(), MinSamples: cfg.GetSliceMinSamples()})
		segs, err = cluster.SliceSegments(pts, labels)
	case clusterIntersection:
		labels := cluster.IntersectionLabels(pts, cluster.Params{Eps: cfg.GetIntersectionEps(), MinSamples: cfg.GetIntersectionMinSamples()})
		segs, err = cluster.SliceSegments(pts, labels)
	default:
		return nil, fmt.Errorf("unknown -cluster mode %q", mode)
	}
	if err != nil {
		return nil, err
	}
	kept := cluster.FilterMinPoints(segs, cfg.GetMinFaultPoints())
	log.Printf("Clustered %d points into %d segments (%d with at least %d points)",
		len(pts), len(segs), len(kept), cfg.GetMinFaultPoints())

	inputs := make([]fault.Input, len(kept))
	for i, s := range kept {
		inputs[i] = fault.Input{Label: s.Name(), Points: s.Points}
	}
	return inputs, nil
}

func writeOutputs(exp *export.Exporter, o *options, cfg *config.AnalysisConfig, source string,
	res *fault.BatchResult, stdout io.Writer) error {
	// The database and charts always take radians.
	table, err := export.ConvertAngles(res.Table, o.Angles)
	if err != nil {
		return err
	}

	wrote := false
	if o.CSV != "" {
		if err := exp.CSV(o.CSV, table); err != nil {
			return err
		}
		wrote = true
	}
	if o.JSON != "" {
		if err := exp.JSON(o.JSON, table, res.Failures); err != nil {
			return err
		}
		wrote = true
	}
	if o.HTML != "" {
		if err := exp.HTML(o.HTML, res.Table); err != nil {
			return err
		}
		wrote = true
	}
	if o.Plots != "" {
		if _, err := exp.Footprints(o.Plots, res.Faults); err != nil {
			return err
		}
		wrote = true
	}
	if o.ASCDir != "" {
		if _, err := exp.RotatedPoints(o.ASCDir, res.Faults); err != nil {
			return err
		}
		wrote = true
	}
	if o.DB != "" {
		runID, err := saveRun(o.DB, cfg, source, res)
		if err != nil {
			return err
		}
		log.Printf("Recorded run %s in %s", runID, o.DB)
		wrote = true
	}

	if !wrote {
		return export.WriteCSV(stdout, table)
	}
	return nil
}

func saveRun(path string, cfg *config.AnalysisConfig, source string, res *fault.BatchResult) (string, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return "", err
	}
	defer db.Close()

	params, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode run params: %w", err)
	}
	run := &sqlite.Run{Source: filepath.Base(source), ParamsJSON: params}
	if err := sqlite.NewRunStore(db).SaveRun(run, res.Table, res.Failures); err != nil {
		return "", err
	}
	return run.RunID, nil
}

// parseDims parses "nx,ny,nz".
func parseDims(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid -dims %q: want nx,ny,nz", s)
	}
	out := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid -dims %q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}

// parseRange parses "min:max"; an empty string is the full axis.
func parseRange(s string) (*volume.Range, error) {
	if s == "" {
		return nil, nil
	}
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("invalid range %q: want min:max", s)
	}
	minV, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return nil, fmt.Errorf("invalid range %q: %w", s, err)
	}
	maxV, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return nil, fmt.Errorf("invalid range %q: %w", s, err)
	}
	return &volume.Range{Min: minV, Max: maxV}, nil
}
