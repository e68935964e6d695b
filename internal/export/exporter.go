package export

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/banshee-data/fault.report/internal/fault"
	"github.com/banshee-data/fault.report/internal/fsutil"
	"github.com/banshee-data/fault.report/internal/monitoring"
	"github.com/banshee-data/fault.report/internal/security"
)

// Exporter writes report files through a FileSystem.
type Exporter struct {
	FS fsutil.FileSystem
}

// NewExporter returns an Exporter over fsys, or the OS filesystem when fsys
// is nil.
func NewExporter(fsys fsutil.FileSystem) *Exporter {
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	return &Exporter{FS: fsys}
}

// writeFile creates path, including missing parent directories, and hands
// it to fn. The file is closed before returning.
func (e *Exporter) writeFile(path string, fn func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := e.FS.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	f, err := e.FS.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return fn(f)
}

// ReadPoints reads an ASC point file and groups it into fault inputs.
func (e *Exporter) ReadPoints(path string) ([]fault.Input, error) {
	f, err := e.FS.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open points: %w", err)
	}
	defer f.Close()

	pts, labels, err := ReadASC(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return GroupByLabel(pts, labels)
}

// CSV writes the table to path.
func (e *Exporter) CSV(path string, t *fault.Table) error {
	if err := e.writeFile(path, func(w io.Writer) error { return WriteCSV(w, t) }); err != nil {
		return err
	}
	monitoring.Logf("Exported %d fault rows to %s", t.Len(), path)
	return nil
}

// JSON writes the table and failures to path.
func (e *Exporter) JSON(path string, t *fault.Table, failures []fault.Failure) error {
	if err := e.writeFile(path, func(w io.Writer) error { return WriteJSON(w, t, failures) }); err != nil {
		return err
	}
	monitoring.Logf("Exported %d fault rows to %s", t.Len(), path)
	return nil
}

// HTML writes the chart summary page to path.
func (e *Exporter) HTML(path string, t *fault.Table) error {
	title := fmt.Sprintf("Fault attributes - %s", filepath.Base(path))
	if err := e.writeFile(path, func(w io.Writer) error { return WriteHTML(w, t, title) }); err != nil {
		return err
	}
	monitoring.Logf("Exported chart summary to %s", path)
	return nil
}

// faultPath builds dir/<label><ext> and checks it stays inside dir.
// Labels that sanitise to a name already in used get a numeric suffix.
func faultPath(dir, label, ext string, used map[string]bool) (string, error) {
	base := security.SanitizeFilename(label)
	name := base + ext
	for i := 2; used[name]; i++ {
		name = fmt.Sprintf("%s_%d%s", base, i, ext)
	}
	used[name] = true
	path := filepath.Join(dir, name)
	if filepath.Dir(path) != filepath.Clean(dir) {
		return "", fmt.Errorf("fault %s: invalid file name %q", label, name)
	}
	return path, nil
}

// Footprints writes one PNG per fault into dir and returns how many were
// written. It stops at the first error.
func (e *Exporter) Footprints(dir string, faults []*fault.ParameterizedFault) (int, error) {
	return e.perFault(dir, ".png", faults, WriteFootprintPNG)
}

// RotatedPoints writes one ASC file per fault into dir.
func (e *Exporter) RotatedPoints(dir string, faults []*fault.ParameterizedFault) (int, error) {
	return e.perFault(dir, ".asc", faults, WriteASC)
}

func (e *Exporter) perFault(dir, ext string, faults []*fault.ParameterizedFault,
	write func(io.Writer, *fault.ParameterizedFault) error) (int, error) {
	n := 0
	used := make(map[string]bool, len(faults))
	for _, pf := range faults {
		path, err := faultPath(dir, pf.Label(), ext, used)
		if err != nil {
			return n, err
		}
		if err := e.writeFile(path, func(w io.Writer) error { return write(w, pf) }); err != nil {
			return n, err
		}
		n++
	}
	monitoring.Logf("Exported %d %s files to %s", n, ext, dir)
	return n, nil
}
