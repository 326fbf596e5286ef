package tx

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/bitfsorg/misfit-go/rng"
)

// BuildParallel synthesizes n transactions with default parameters on up to
// workers goroutines. Transaction i draws from its own stream derived from
// seed and i, so the result does not depend on scheduling.
func BuildParallel(ctx context.Context, seed [rng.SeedSize]byte, n, workers int, opts ...BuilderOption) ([]*Generated, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: count %d", ErrInvalidParams, n)
	}
	if workers < 1 {
		workers = 1
	}

	out := make([]*Generated, n)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i := 0; i < n; i++ {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			src := rng.NewSeeded(rng.Derive(seed, uint64(i)))
			g, err := NewBuilder(src, opts...).Build(TxParams{})
			if err != nil {
				return fmt.Errorf("transaction %d: %w", i, err)
			}
			out[i] = g
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
