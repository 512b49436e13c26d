package analyze

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RunBatch analyzes several logs concurrently. Each log still gets its
// own strictly sequential pass; only whole files run in parallel, so
// every verdict matches what a lone Run of that file would produce.
// Results come back in input order. The first failure cancels the rest.
func (a *Analyzer) RunBatch(ctx context.Context, paths []string, workers int) ([]*Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			res, err := a.RunFile(ctx, path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
