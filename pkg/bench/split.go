package bench

import "math/rand"

// IndexSet builds the ordered file index set 0..n-1.
func IndexSet(n int) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return indices
}

// Partition distributes the index set over the given number of workers
// according to the split strategy. Every returned slice is an
// independent copy owned by its worker.
//
// Separate produces an exact partition: the first len(indices)%workers
// workers receive one extra index, so the union of all assignments is
// the full set with no gaps and no duplicates. Overlap hands every
// worker the complete set in an independently shuffled order. Same
// hands every worker the complete set in the original order.
func Partition(indices []int, workers int, split Split, rng *rand.Rand) [][]int {
	assignments := make([][]int, workers)

	switch split {
	case SplitSeparate:
		base := len(indices) / workers
		extra := len(indices) % workers
		start := 0
		for i := range assignments {
			size := base
			if i < extra {
				size++
			}
			assignments[i] = append([]int(nil), indices[start:start+size]...)
			start += size
		}
	case SplitOverlap:
		for i := range assignments {
			own := append([]int(nil), indices...)
			rng.Shuffle(len(own), func(a, b int) {
				own[a], own[b] = own[b], own[a]
			})
			assignments[i] = own
		}
	case SplitSame:
		for i := range assignments {
			assignments[i] = append([]int(nil), indices...)
		}
	}

	return assignments
}
