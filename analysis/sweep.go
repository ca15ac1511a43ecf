package analysis

import "fmt"

// DefaultSweepStep is the memory-size increment of SweepToZeroWrites.
const DefaultSweepStep = 50

// A Sample is the number of write-backs of a full run at a memory size.
type Sample struct {
	Pages  int    `json:"pages"`
	Writes uint64 `json:"writes"`
}

// SweepToZeroWrites runs the trace with step, 2*step, ... page frames until a
// run completes without any write-back. It returns one sample per run, the
// last one having zero writes.
func SweepToZeroWrites(p *Prober, step int) ([]Sample, error) {
	if step <= 0 {
		return nil, fmt.Errorf("sweep step must be positive, got %d", step)
	}

	var samples []Sample

	for n := step; ; n += step {
		if n > p.maxPages {
			n = p.maxPages
		}

		state, err := p.RunToEnd(n)
		if err != nil {
			return samples, err
		}

		samples = append(samples, Sample{Pages: n, Writes: state.WriteCount})

		if state.WriteCount == 0 {
			return samples, nil
		}

		if n >= p.maxPages {
			return samples, fmt.Errorf("%w up to %d pages",
				ErrNoZeroWriteSize, p.maxPages)
		}
	}
}
