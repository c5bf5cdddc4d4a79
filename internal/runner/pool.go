package runner

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type Job func(ctx context.Context) error

// RunPool executes jobs with at most maxWorkers concurrently. A failing job
// does not stop its siblings. Returns all errors in job order.
func RunPool(ctx context.Context, maxWorkers int, jobs []Job) []error {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	var g errgroup.Group
	g.SetLimit(maxWorkers)
	slots := make([]error, len(jobs))
	for i, job := range jobs {
		g.Go(func() error {
			slots[i] = job(ctx)
			return nil
		})
	}
	g.Wait()

	var errs []error
	for _, err := range slots {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
