package cleaning

import (
	"context"

	"golang.org/x/sync/errgroup"

	"review-dashboard/internal/models"
)

const (
	defaultWorkers = 4
	minChunk       = 1024
)

// CleanParallel is CleanWithOptions split over contiguous chunks. Each chunk
// writes into its own slots of a shared outcome slice, so the folded result
// (order, counts and the first failing row) matches the sequential path.
func CleanParallel(ctx context.Context, raw []models.RawRecord, opts Options) (Result, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	chunk := (len(raw) + workers - 1) / workers
	if chunk < minChunk {
		chunk = minChunk
	}

	outcomes := make([]outcome, len(raw))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for lo := 0; lo < len(raw); lo += chunk {
		hi := min(lo+chunk, len(raw))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if (i-lo)%minChunk == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				outcomes[i] = cleanRecord(i+1, raw[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return collect(outcomes, opts.Policy)
}
