package cluster

import "github.com/golang/geo/r3"

// Clusterer abstracts the clustering implementation so the fault workflow
// can swap algorithms or parameters without touching callers.
type Clusterer interface {
	// Cluster returns one label per point; Noise marks outliers.
	Cluster(points []r3.Vector) []int

	// Params returns the current clustering parameters.
	Params() Params

	// SetParams updates the clustering parameters.
	SetParams(params Params)
}

// DBSCANClusterer implements Clusterer with ClusterPoints.
type DBSCANClusterer struct {
	params Params
}

// NewDBSCANClusterer creates a DBSCAN clusterer with the given parameters.
func NewDBSCANClusterer(params Params) *DBSCANClusterer {
	return &DBSCANClusterer{params: params}
}

// NewFaultClusterer creates a DBSCAN clusterer with FaultClusterParams.
func NewFaultClusterer() *DBSCANClusterer {
	return NewDBSCANClusterer(FaultClusterParams())
}

// Cluster performs DBSCAN clustering on points.
func (c *DBSCANClusterer) Cluster(points []r3.Vector) []int {
	return ClusterPoints(points, c.params.MinSamples, c.params.Eps)
}

// Params returns the current clustering parameters.
func (c *DBSCANClusterer) Params() Params {
	return c.params
}

// SetParams updates the clustering parameters.
func (c *DBSCANClusterer) SetParams(params Params) {
	c.params = params
}

// Verify at compile time that *DBSCANClusterer implements Clusterer.
var _ Clusterer = (*DBSCANClusterer)(nil)
