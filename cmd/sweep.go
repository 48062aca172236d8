package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mawngo/kcluster/internal/kmeans"
	"golang.org/x/sync/errgroup"
)

// parseSweep parses an inclusive "from:to" cluster count range.
func parseSweep(s string) (int, int, error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("sweep %q must be from:to", s)
	}
	lo, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, fmt.Errorf("sweep %q: %w", s, err)
	}
	hi, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, fmt.Errorf("sweep %q: %w", s, err)
	}
	if lo < 1 || hi < lo {
		return 0, 0, fmt.Errorf("sweep %q must satisfy 1 <= from <= to", s)
	}
	return lo, hi, nil
}

// sweep runs one independent engine per k in [lo, hi], at most concurrency at a time.
func sweep(ctx context.Context, data kmeans.Dataset, lo, hi, concurrency int, options []kmeans.Option, logger *slog.Logger) ([]summary, error) {
	summaries := make([]summary, hi-lo+1)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for k := lo; k <= hi; k++ {
		g.Go(func() error {
			o := append(append([]kmeans.Option(nil), options...), kmeans.WithLogger(logger))
			r, err := kmeans.NewTrainer(k, o...).Fit(ctx, data)
			if err != nil {
				return fmt.Errorf("k=%d: %w", k, err)
			}
			summaries[k-lo] = summary{
				K:          k,
				State:      r.State.String(),
				Iterations: r.Iterations,
				Inertia:    r.Inertia,
				Empty:      len(r.Degenerate),
			}
			logger.Debug("Sweep run completed",
				slog.Int("k", k),
				slog.Int("iter", r.Iterations),
				slog.Float64("inertia", r.Inertia))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}
