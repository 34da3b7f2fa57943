package errors

import (
	"fmt"
	"strings"

	"github.com/halsten/boogaloo/ast"
)

// StackFrame represents a single frame in a call stack: the procedure being
// executed and the call site within its caller.
type StackFrame struct {
	Position     ast.Position
	ProcedureName string
}

// String returns a formatted string representation of the stack frame.
func (sf StackFrame) String() string {
	if sf.Position.IsZero() {
		return sf.ProcedureName
	}
	return fmt.Sprintf("%s [%s]", sf.ProcedureName, sf.Position)
}

// StackTrace represents a complete call stack as a sequence of frames,
// ordered from oldest (bottom of stack) to newest (top of stack).
type StackTrace []StackFrame

// String returns a formatted string representation of the entire stack
// trace, most recent call first.
func (st StackTrace) String() string {
	if len(st) == 0 {
		return ""
	}
	var sb strings.Builder
	for i := len(st) - 1; i >= 0; i-- {
		sb.WriteString(st[i].String())
		if i > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Push returns a new StackTrace with frame appended at the top, leaving st
// unmodified (call frames are pushed on procedure entry).
func (st StackTrace) Push(frame StackFrame) StackTrace {
	out := make(StackTrace, len(st)+1)
	copy(out, st)
	out[len(st)] = frame
	return out
}

// Top returns the most recent (top) frame in the stack, or nil if empty.
func (st StackTrace) Top() *StackFrame {
	if len(st) == 0 {
		return nil
	}
	return &st[len(st)-1]
}

// Depth returns the number of frames in the stack.
func (st StackTrace) Depth() int {
	return len(st)
}
