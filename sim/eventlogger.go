package sim

import (
	"log"

	"github.com/sarchlab/pagesim/vm"
)

// EventLogger is a hook that prints every access and every eviction. The
// addresses are printed in binary so that the page number and offset bits
// line up.
type EventLogger struct {
	LogHookBase
}

// NewEventLogger returns a new EventLogger which will write in to the logger.
// A nil logger writes to the standard logger.
func NewEventLogger(logger *log.Logger) *EventLogger {
	return &EventLogger{LogHookBase: NewLogHookBase(logger)}
}

// Func writes the event information into the logger
func (h *EventLogger) Func(ctx HookCtx) {
	op, ok := ctx.Item.(vm.Operation)
	if !ok {
		return
	}

	switch ctx.Pos {
	case HookPosBeforeEvent:
		h.Logger.Printf("Perform \"%s\" operation\n"+
			"  virtual address     0b%032b\n"+
			"  virtual page number 0b%020b\n"+
			"  page offset                             0b%012b\n",
			op.Kind, op.VirtualAddress, op.VirtualPageNumber, op.PageOffset)
	case HookPosEviction:
		detail := ctx.Detail.(EvictionDetail)
		h.Logger.Printf("  evict page 0x%x (dirty: %t) from slot %d "+
			"to load page 0x%x\n",
			detail.VirtualPageNumber, detail.WasDirty, detail.Slot,
			op.VirtualPageNumber)
	}
}
