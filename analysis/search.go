package analysis

import "fmt"

// DefaultSearchStep is the coarse increment of FindMinimalMemory.
const DefaultSearchStep = 20

// FindMinimalMemory returns the smallest number of page frames that replays
// the trace without any write-back. Memory sizes grow by step until a size
// passes; the sizes between the last failure and that size are then tried one
// by one. Every probe stops at its first write-back.
//
// Policies that do not have the stack property, such as FIFO, can pass at a
// size and fail at a larger one. The result is then the smallest passing size
// above the last failing coarse step.
func FindMinimalMemory(p *Prober, step int) (int, error) {
	if step <= 0 {
		return 0, fmt.Errorf("search step must be positive, got %d", step)
	}

	lastFail := 0
	passing := 0

	for n := step; ; n += step {
		if n > p.maxPages {
			n = p.maxPages
		}

		ok, _, err := p.RunUntilWrite(n)
		if err != nil {
			return 0, err
		}

		if ok {
			passing = n
			break
		}

		if n >= p.maxPages {
			return 0, fmt.Errorf("%w up to %d pages",
				ErrNoZeroWriteSize, p.maxPages)
		}

		lastFail = n
	}

	for n := lastFail + 1; n < passing; n++ {
		ok, _, err := p.RunUntilWrite(n)
		if err != nil {
			return 0, err
		}

		if ok {
			return n, nil
		}
	}

	return passing, nil
}
