package bag_test

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/amorph/bag"
	"github.com/katalvlaran/amorph/parallel"
)

// Example shows the two-phase frontier pattern: one loop fills a bag,
// the bag seeds the next loop.
func Example() {
	frontier := bag.New[int](4)

	// Phase 1: collect the even numbers below 10.
	_ = parallel.DoAll([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, func(v int) {
		if v%2 == 0 {
			frontier.Push(v)
		}
	})

	// Phase 2: the bag seeds the next loop directly.
	doubled := bag.New[int](4)
	_ = parallel.ForEach[int](frontier,
		func(v int, ctx *parallel.Context[int]) {
			doubled.PushTo(ctx.Worker(), 2*v)
		})

	out := doubled.Slice()
	sort.Ints(out)
	fmt.Println(out)
	// Output: [0 4 8 12 16]
}
