package table

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ScanSegments scans p in totalSegments parallel segments and merges the
// results in segment order. Limit applies to each segment. The first
// failing segment cancels the others.
func ScanSegments(ctx context.Context, p Persister, in ScanInput, totalSegments int) (*Result, error) {
	if totalSegments < 1 {
		return nil, fmt.Errorf("table: invalid segment count %d", totalSegments)
	}
	results := make([]*Result, totalSegments)
	g, ctx := errgroup.WithContext(ctx)
	for seg := range totalSegments {
		g.Go(func() error {
			sin := in
			sin.Segment = seg
			sin.TotalSegments = totalSegments
			sin.ExclusiveStartKey = nil
			res, err := p.Scan(ctx, sin)
			if err != nil {
				return fmt.Errorf("table: scan segment %d: %w", seg, err)
			}
			results[seg] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	merged := &Result{}
	for _, res := range results {
		merged.Items = append(merged.Items, res.Items...)
		merged.ScannedCount += res.ScannedCount
	}
	return merged, nil
}
