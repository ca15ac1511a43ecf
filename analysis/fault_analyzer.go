package analysis

import (
	"github.com/sarchlab/pagesim/sim"
)

// FaultAnalyzer is a hook that summarizes page faults and write-backs per
// period of events.
type FaultAnalyzer struct {
	PerfLogger

	simID  string
	where  string
	period uint64

	periodStart sim.State
	last        sim.State
}

// Func records the state after every event.
func (a *FaultAnalyzer) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosAfterEvent {
		return
	}

	a.last = ctx.Detail.(sim.State)

	if a.last.TotalEvents-a.periodStart.TotalEvents >= a.period {
		a.Summarize()
	}
}

// Summarize reports the events since the last summary, if any.
func (a *FaultAnalyzer) Summarize() {
	numEvents := a.last.TotalEvents - a.periodStart.TotalEvents
	if numEvents == 0 {
		return
	}

	faults := a.last.ReadCount - a.periodStart.ReadCount
	writes := a.last.WriteCount - a.periodStart.WriteCount

	a.add("PageFault", "Count", float64(faults), "pages")
	a.add("WriteBack", "Count", float64(writes), "pages")
	a.add("PageFault", "Rate", float64(faults)/float64(numEvents),
		"faults/access")

	a.periodStart = a.last
}

func (a *FaultAnalyzer) add(what, entryType string, value float64, unit string) {
	a.AddDataEntry(PerfAnalyzerEntry{
		Start:     a.periodStart.TotalEvents,
		End:       a.last.TotalEvents,
		Where:     a.where,
		What:      what,
		EntryType: entryType,
		Value:     value,
		Unit:      unit,
	})
}
