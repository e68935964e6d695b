// Package fault owns the per-fault geometric pipeline.
//
// Responsibilities: least-squares surface fitting, strike/dip estimation,
// rotation into a fault-aligned frame, extent, convex-hull area and
// curvature, plus the flat per-fault Record and the batch Table.
// Key types: Fault, FittedFault, ParameterizedFault, Record, Table.
//
// The lifecycle is enforced by types: Fault.Fit returns a FittedFault, and
// only a FittedFault can ComputeParams into a ParameterizedFault.
//
// Dependency rule: this package never imports storage or export code.
package fault
