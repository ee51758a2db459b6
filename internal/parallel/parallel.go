// Package parallel runs index-range work over contiguous shards.
package parallel

import "sync"

// Task partitions [0, count) into at most workers contiguous shards and calls
// fn(shard, start, end) once per shard. If count is not divisible by the shard
// count the first shards get one extra element each. The last shard runs on the
// calling goroutine. Task returns after every shard has finished and reports
// the number of shards used, which is 0 for an empty range.
//
// fn must only write to outputs owned by its own [start, end) range.
func Task(workers, count int, fn func(shard, start, end int)) int {
	if count <= 0 {
		return 0
	}
	shards := workers
	if shards < 1 {
		shards = 1
	}
	if shards > count {
		shards = count
	}
	size := count / shards
	remainder := count % shards
	var wg sync.WaitGroup
	start := 0
	for shard := 0; shard < shards-1; shard++ {
		end := start + size
		if shard < remainder {
			end++
		}
		wg.Add(1)
		go func(shard, start, end int) {
			defer wg.Done()
			fn(shard, start, end)
		}(shard, start, end)
		start = end
	}
	fn(shards-1, start, count)
	wg.Wait()
	return shards
}

// Bounds returns the [start, end) range Task assigns to shard for the same
// workers and count arguments.
func Bounds(workers, count, shard int) (start, end int) {
	shards := workers
	if shards < 1 {
		shards = 1
	}
	if shards > count {
		shards = count
	}
	if shards <= 0 || shard < 0 || shard >= shards {
		return 0, 0
	}
	size := count / shards
	remainder := count % shards
	start = shard*size + min(shard, remainder)
	end = start + size
	if shard < remainder {
		end++
	}
	return start, end
}
