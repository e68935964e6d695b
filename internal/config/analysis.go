package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// DefaultConfigPath is the path to the canonical analysis defaults file.
const DefaultConfigPath = "config/analysis.defaults.json"

// AnalysisConfig holds the fault-analysis parameters. Every field is
// optional; the Get* methods fall back to built-in defaults so partial JSON
// files are safe.
type AnalysisConfig struct {
	// Surface fitting
	FitOrder       *int `json:"fit_order,omitempty"`
	MinFaultPoints *int `json:"min_fault_points,omitempty"`
	Workers        *int `json:"workers,omitempty"`

	// Clustering
	FaultEps               *float64 `json:"fault_eps,omitempty"`
	FaultMinSamples        *int     `json:"fault_min_samples,omitempty"`
	IntersectionEps        *float64 `json:"intersection_eps,omitempty"`
	IntersectionMinSamples *int     `json:"intersection_min_samples,omitempty"`
	SliceEps               *float64 `json:"slice_eps,omitempty"`
	SliceMinSamples        *int     `json:"slice_min_samples,omitempty"`

	// Volume extraction
	VolumeThreshold *float64 `json:"volume_threshold,omitempty"`
	VolumeDims      []int    `json:"volume_dims,omitempty"` // nx, ny, nz
}

// EmptyAnalysisConfig returns an AnalysisConfig with all fields unset.
func EmptyAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// LoadAnalysisConfig loads an AnalysisConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyAnalysisConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching parent
// directories so tests can call it from any package. Panics on failure.
func MustLoadDefaultConfig() *AnalysisConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadAnalysisConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are usable.
func (c *AnalysisConfig) Validate() error {
	if c.FitOrder != nil && *c.FitOrder != 1 && *c.FitOrder != 2 {
		return fmt.Errorf("fit_order must be 1 or 2, got %d", *c.FitOrder)
	}
	if c.MinFaultPoints != nil && *c.MinFaultPoints < 3 {
		return fmt.Errorf("min_fault_points must be at least 3, got %d", *c.MinFaultPoints)
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}

	for name, eps := range map[string]*float64{
		"fault_eps":        c.FaultEps,
		"intersection_eps": c.IntersectionEps,
		"slice_eps":        c.SliceEps,
	} {
		if eps != nil && *eps <= 0 {
			return fmt.Errorf("%s must be positive, got %f", name, *eps)
		}
	}
	for name, n := range map[string]*int{
		"fault_min_samples":        c.FaultMinSamples,
		"intersection_min_samples": c.IntersectionMinSamples,
		"slice_min_samples":        c.SliceMinSamples,
	} {
		if n != nil && *n < 1 {
			return fmt.Errorf("%s must be at least 1, got %d", name, *n)
		}
	}

	if c.VolumeDims != nil {
		if len(c.VolumeDims) != 3 {
			return fmt.Errorf("volume_dims must have 3 entries, got %d", len(c.VolumeDims))
		}
		for _, d := range c.VolumeDims {
			if d <= 0 {
				return fmt.Errorf("volume_dims must be positive, got %v", c.VolumeDims)
			}
		}
	}

	return nil
}

// GetFitOrder returns the fit_order value or the default.
func (c *AnalysisConfig) GetFitOrder() int {
	if c.FitOrder == nil {
		return 1
	}
	return *c.FitOrder
}

// GetMinFaultPoints returns the min_fault_points value or the default.
func (c *AnalysisConfig) GetMinFaultPoints() int {
	if c.MinFaultPoints == nil {
		return 3
	}
	return *c.MinFaultPoints
}

// GetWorkers returns the workers value, defaulting to the CPU count.
func (c *AnalysisConfig) GetWorkers() int {
	if c.Workers == nil || *c.Workers == 0 {
		return runtime.NumCPU()
	}
	return *c.Workers
}

// GetFaultEps returns the fault_eps value or the default.
func (c *AnalysisConfig) GetFaultEps() float64 {
	if c.FaultEps == nil {
		return 2
	}
	return *c.FaultEps
}

// GetFaultMinSamples returns the fault_min_samples value or the default.
func (c *AnalysisConfig) GetFaultMinSamples() int {
	if c.FaultMinSamples == nil {
		return 22
	}
	return *c.FaultMinSamples
}

// GetIntersectionEps returns the intersection_eps value or the default.
func (c *AnalysisConfig) GetIntersectionEps() float64 {
	if c.IntersectionEps == nil {
		return 2
	}
	return *c.IntersectionEps
}

// GetIntersectionMinSamples returns the intersection_min_samples value or the default.
func (c *AnalysisConfig) GetIntersectionMinSamples() int {
	if c.IntersectionMinSamples == nil {
		return 12
	}
	return *c.IntersectionMinSamples
}

// GetSliceEps returns the slice_eps value or the default.
func (c *AnalysisConfig) GetSliceEps() float64 {
	if c.SliceEps == nil {
		return 1.1
	}
	return *c.SliceEps
}

// GetSliceMinSamples returns the slice_min_samples value or the default.
func (c *AnalysisConfig) GetSliceMinSamples() int {
	if c.SliceMinSamples == nil {
		return 2
	}
	return *c.SliceMinSamples
}

// GetVolumeThreshold returns the volume_threshold value or the default.
func (c *AnalysisConfig) GetVolumeThreshold() float64 {
	if c.VolumeThreshold == nil {
		return 0.5
	}
	return *c.VolumeThreshold
}

// GetVolumeDims returns nx, ny, nz and whether they were configured.
func (c *AnalysisConfig) GetVolumeDims() (nx, ny, nz int, ok bool) {
	if len(c.VolumeDims) != 3 {
		return 0, 0, 0, false
	}
	return c.VolumeDims[0], c.VolumeDims[1], c.VolumeDims[2], true
}
