// Package vm models the virtual-memory side of a trace replay: the memory
// accesses decoded from a trace, the page table and the physical memory that
// resident pages are loaded into.
package vm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Log2PageSize is the number of bits used by the page offset.
const Log2PageSize = 12

// PageSize is the size of a page in bytes.
const PageSize = 1 << Log2PageSize

// MaxNumPages is the number of distinct virtual page numbers that a 32-bit
// address can refer to.
const MaxNumPages = 1 << (32 - Log2PageSize)

// ErrMalformedTraceLine is returned when a trace line cannot be decoded into
// an Operation.
var ErrMalformedTraceLine = errors.New("malformed trace line")

// A ParseError describes why a trace line was rejected.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrMalformedTraceLine, e.Line, e.Reason)
}

// Unwrap allows errors.Is(err, ErrMalformedTraceLine).
func (e *ParseError) Unwrap() error {
	return ErrMalformedTraceLine
}

// AccessKind tells if an access reads or writes a page.
type AccessKind int

// The kinds of accesses that a trace line can carry.
const (
	Read AccessKind = iota
	Write
)

func (k AccessKind) String() string {
	switch k {
	case Read:
		return "Read"
	case Write:
		return "Write"
	default:
		return fmt.Sprintf("AccessKind(%d)", int(k))
	}
}

// An Operation is one memory access of a trace.
type Operation struct {
	VirtualAddress    uint32
	VirtualPageNumber uint32
	PageOffset        uint32
	Kind              AccessKind
}

// NewOperation splits the address into page number and offset.
func NewOperation(vAddr uint32, kind AccessKind) Operation {
	return Operation{
		VirtualAddress:    vAddr,
		VirtualPageNumber: vAddr >> Log2PageSize,
		PageOffset:        vAddr & (PageSize - 1),
		Kind:              kind,
	}
}

// ParseOperation decodes a line formatted as "<hex-address> <R|W>".
func ParseOperation(line string) (Operation, error) {
	fields := strings.Split(line, " ")
	if len(fields) != 2 {
		return Operation{}, &ParseError{
			Line:   line,
			Reason: "expected \"<hex-address> <R|W>\"",
		}
	}

	addr, err := strconv.ParseUint(fields[0], 16, 32)
	if err != nil {
		return Operation{}, &ParseError{
			Line:   line,
			Reason: fmt.Sprintf("invalid address %q", fields[0]),
		}
	}

	var kind AccessKind
	switch fields[1] {
	case "R":
		kind = Read
	case "W":
		kind = Write
	default:
		return Operation{}, &ParseError{
			Line:   line,
			Reason: fmt.Sprintf("unknown operation %q", fields[1]),
		}
	}

	return NewOperation(uint32(addr), kind), nil
}
