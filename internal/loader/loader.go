// Package loader reads textual IR modules (internal/irformat) from disk,
// concurrently across files, bounded by a caller-supplied worker count.
// Concurrent fetches run behind an errgroup gated by a semaphore sized
// from a caller-configurable concurrency limit.
package loader

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/mpirace-tools/mpirace/internal/ir"
	"github.com/mpirace-tools/mpirace/internal/irformat"
)

// Diagnostics is the sink a failed or skipped file is reported to. A
// load failure is never fatal: the file is skipped and the rest of the
// batch proceeds.
type Diagnostics interface {
	Warn(format string, args ...interface{})
}

// Loader reads a batch of IR files concurrently.
type Loader struct {
	workers int
}

// New constructs a Loader. workers <= 0 defaults to GOMAXPROCS.
func New(workers int) *Loader {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Loader{workers: workers}
}

// result pairs a path with its outcome, kept so the final ordering can be
// restored after concurrent completion.
type result struct {
	index int
	mod   *ir.Module
	err   error
}

// Load reads every path in paths, deduplicating paths that resolve to the
// same underlying file (see dedupePaths), and returns the successfully
// parsed modules in the original argument order. A path that fails to
// read or decode is reported to diag and omitted from the result rather
// than aborting the batch.
func (l *Loader) Load(ctx context.Context, paths []string, diag Diagnostics) ([]*ir.Module, error) {
	unique, err := dedupePaths(paths)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, l.workers)

	results := make([]result, len(unique))

	for i, p := range unique {
		i, p := i, p

		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			mod, err := loadOne(p)
			results[i] = result{index: i, mod: mod, err: err}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(a, b int) bool { return results[a].index < results[b].index })

	mods := make([]*ir.Module, 0, len(results))

	for _, r := range results {
		if r.err != nil {
			diag.Warn("skipping %s: %v", unique[r.index], r.err)

			continue
		}

		mods = append(mods, r.mod)
	}

	return mods, nil
}

func loadOne(path string) (*ir.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	mod, err := irformat.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	return mod, nil
}
