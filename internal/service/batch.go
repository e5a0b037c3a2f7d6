// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package service

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// each calls fn for every index in [0, n) with at most workers calls in
// flight. fn records its own outcome, a failing item never stops the rest.
// One worker runs the items in order.
func each(ctx context.Context, workers, n int, fn func(ctx context.Context, i int)) {
	var g errgroup.Group
	g.SetLimit(max(workers, 1))
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			fn(ctx, i)
			return nil
		})
	}
	_ = g.Wait()
}
