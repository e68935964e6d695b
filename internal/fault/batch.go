package fault

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/fault.report/internal/monitoring"
)

// Input is one labelled point set to be processed as a fault.
type Input struct {
	Label  string
	Points PointSet
}

// Failure records a fault that was excluded from the table.
type Failure struct {
	Label string
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("fault %s: %v", f.Label, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// BatchOptions configures ProcessBatch.
type BatchOptions struct {
	// Order is the primary fit order, 1 when zero.
	Order int
	// Workers bounds concurrent faults, runtime.NumCPU() when <= 0.
	Workers int
}

// BatchResult is the outcome of ProcessBatch. Faults holds the parameterised
// faults of the table rows, in the same order.
type BatchResult struct {
	Table    *Table
	Faults   []*ParameterizedFault
	Failures []Failure
}

// ProcessBatch fits and parameterises every input in parallel. A failing
// fault never aborts the batch: it is left out of the table and reported in
// Failures. Table rows keep input order. ctx is checked before each fault is
// scheduled; faults not started when it is cancelled fail with ctx.Err().
func ProcessBatch(ctx context.Context, inputs []Input, opts BatchOptions) *BatchResult {
	order := opts.Order
	if order == 0 {
		order = OrderPlane
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	start := time.Now()
	results := make([]*ParameterizedFault, len(inputs))
	errs := make([]error, len(inputs))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			results[i], errs[i] = Process(in.Label, in.Points, order)
			return nil
		})
	}
	// Workers never return errors; per-fault failures live in errs.
	_ = g.Wait()

	res := &BatchResult{Table: NewTable(len(inputs))}
	for i, in := range inputs {
		if errs[i] != nil {
			monitoring.Logf("fault %s excluded: %v", in.Label, errs[i])
			res.Failures = append(res.Failures, Failure{Label: in.Label, Err: errs[i]})
			continue
		}
		res.Faults = append(res.Faults, results[i])
		res.Table.Append(in.Label, results[i].Record())
	}

	monitoring.Logf("processed %d faults (%d failed) with %d workers in %s",
		len(inputs), len(res.Failures), workers, time.Since(start).Round(time.Millisecond))
	return res
}
