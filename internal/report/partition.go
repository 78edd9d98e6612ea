package report

import (
	"context"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"
)

// partitionBy splits items into n buckets by the hash of key. All items with
// the same key land in the same bucket, so a bucket always holds complete
// groups. Item order within a bucket follows the input.
func partitionBy[T any](items []T, n int, key func(T) string) [][]T {
	if n < 1 {
		n = 1
	}
	parts := make([][]T, n)
	for _, it := range items {
		b := xxh3.HashString(key(it)) % uint64(n)
		parts[b] = append(parts[b], it)
	}
	return parts
}

// runPartitions calls fn for every non-empty bucket concurrently and waits for
// all of them. The first error cancels ctx for the others and is returned.
func runPartitions[T any](ctx context.Context, parts [][]T, fn func(ctx context.Context, bucket int, part []T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for i, part := range parts {
		if len(part) == 0 {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i, part)
		})
	}
	return g.Wait()
}
