// Package testutil provides shared test fixtures for the fault packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"

	"github.com/banshee-data/fault.report/internal/monitoring"
)

// QuietLogs silences monitoring.Logf for the duration of the test.
func QuietLogs(t testing.TB) {
	t.Helper()
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = original })
}

// Grid samples z = f(x, y) on the integer grid [0, n)×[0, n), x-major.
func Grid(n int, f func(x, y float64) float64) []r3.Vector {
	pts := make([]r3.Vector, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x, y := float64(i), float64(j)
			pts = append(pts, r3.Vector{X: x, Y: y, Z: f(x, y)})
		}
	}
	return pts
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
