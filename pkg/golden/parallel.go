package golden

import (
	"runtime"
	"sync"
)

// Work below this many inner-loop steps runs on the calling goroutine.
const parallelThreshold = 1 << 15

// parallelFor runs fn over [0, n) split into contiguous chunks. cost is the
// approximate number of inner steps per index. Each index must own a disjoint
// slice of the output.
func parallelFor(n, cost int, fn func(lo, hi int)) {
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers <= 1 || cost < (parallelThreshold+n-1)/n {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		wg.Go(func() { fn(lo, hi) })
	}
	wg.Wait()
}
