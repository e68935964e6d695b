// Package cluster groups fault point clouds into discrete segments.
//
// Responsibilities: 3-D DBSCAN over a grid spatial index, per-z-slice
// intersection labelling and splitting labelled points into segments that
// feed fault.Input.
// Key types: Params, SpatialIndex, DBSCANClusterer, Segment.
package cluster
