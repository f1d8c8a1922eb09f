package worklist_test

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/amorph/worklist"
)

// ExampleChunkedFIFO drives a queue directly with one worker slot, the
// way a custom driver would.
func ExampleChunkedFIFO() {
	wl := worklist.ChunkedFIFO[string]()(worklist.Config{Workers: 1, ChunkSize: 8})
	wl.Push(0, "a")
	wl.Push(0, "b")
	wl.Push(0, "c")
	for {
		v, ok := wl.Pop(0)
		if !ok {
			break
		}
		fmt.Println(v)
	}
	// Output:
	// a
	// b
	// c
}

// ExampleOrderedByIntegerMetric buckets items by length and drains them
// shortest-first with one worker.
func ExampleOrderedByIntegerMetric() {
	byLen := worklist.OrderedByIntegerMetric[string](func(s string) int { return len(s) })
	wl := byLen(worklist.Config{Workers: 1})

	for _, s := range []string{"delta", "is", "an", "integer", "metric"} {
		wl.Push(0, s)
	}
	var words []string
	for {
		v, ok := wl.Pop(0)
		if !ok {
			break
		}
		words = append(words, v)
	}
	// Same-length words carry no relative order; normalize inside a length.
	for lo := 0; lo < len(words); {
		hi := lo + 1
		for hi < len(words) && len(words[hi]) == len(words[lo]) {
			hi++
		}
		sort.Strings(words[lo:hi])
		lo = hi
	}
	fmt.Println(words)
	// Output: [an is delta metric integer]
}
