package frame

import "sync"

// parallelChunk is the fewest points handed to one worker.
const parallelChunk = 2048

// chunks returns how many workers a field of n points gets.
func chunks(n, workers, minChunk int) int {
	if workers <= 1 || n <= minChunk {
		return 1
	}
	return max(min(workers, n/minChunk), 1)
}

// ParallelFor splits [0, n) into workers contiguous ranges and runs fn on
// each concurrently. fn receives its worker index.
func ParallelFor(n, workers int, fn func(w, start, end int)) {
	if workers <= 1 || n == 0 {
		fn(0, 0, n)
		return
	}
	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		start := min(w*chunkSize, n)
		end := min(start+chunkSize, n)
		go func(w, s, e int) {
			defer wg.Done()
			fn(w, s, e)
		}(w, start, end)
	}
	wg.Wait()
}
