package meshdist

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// parallelFor is the §5 `parallel_for(begin, end, body)` primitive: it
// partitions [begin,end) into contiguous chunks of ceil(N/P) iterations
// each (the last chunk may be shorter), runs each chunk's
// body calls on a worker goroutine, and joins all of them before returning.
// body must only write to a per-iteration output slot pre-sized by the
// caller, or to goroutine-private locals — never share mutable state across
// iterations (§5).
func parallelFor(begin, end, parallelism int, body func(i int)) {
	n := end - begin
	if n <= 0 {
		return
	}
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	if parallelism > n {
		parallelism = n
	}
	if parallelism <= 1 {
		for i := begin; i < end; i++ {
			body(i)
		}
		return
	}

	chunkSize := (n + parallelism - 1) / parallelism
	var g errgroup.Group
	for c := begin; c < end; c += chunkSize {
		lo, hi := c, c+chunkSize
		if hi > end {
			hi = end
		}
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				body(i)
			}
			return nil
		})
	}
	// parallelFor's body never fails, so the error return is always nil;
	// Wait still provides the join barrier §5 requires.
	_ = g.Wait()
}
