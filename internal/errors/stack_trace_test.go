package errors

import (
	"testing"

	"github.com/halsten/boogaloo/ast"
)

func TestStackFrame_String(t *testing.T) {
	tests := []struct {
		name     string
		frame    StackFrame
		expected string
	}{
		{
			name:     "frame with position",
			frame:    StackFrame{ProcedureName: "Transfer", Position: ast.Position{File: "t.bpl", Line: 10, Column: 5}},
			expected: "Transfer [t.bpl:10:5]",
		},
		{
			name:     "frame without position",
			frame:    StackFrame{ProcedureName: "Transfer"},
			expected: "Transfer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.frame.String(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestStackTrace_String(t *testing.T) {
	trace := StackTrace{
		{ProcedureName: "Main", Position: ast.Position{File: "m.bpl", Line: 20, Column: 1}},
		{ProcedureName: "Foo", Position: ast.Position{File: "m.bpl", Line: 15, Column: 5}},
		{ProcedureName: "Bar", Position: ast.Position{File: "m.bpl", Line: 10, Column: 3}},
	}

	expected := "Bar [m.bpl:10:3]\nFoo [m.bpl:15:5]\nMain [m.bpl:20:1]"
	if got := trace.String(); got != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, got)
	}
}

func TestStackTrace_Push(t *testing.T) {
	base := StackTrace{{ProcedureName: "Main"}}
	pushed := base.Push(StackFrame{ProcedureName: "Foo"})

	if len(base) != 1 {
		t.Fatalf("Push must not mutate the receiver, got len %d", len(base))
	}
	if len(pushed) != 2 || pushed[1].ProcedureName != "Foo" {
		t.Fatalf("expected [Main Foo], got %v", pushed)
	}
}

func TestStackTrace_Top(t *testing.T) {
	if (StackTrace{}).Top() != nil {
		t.Fatal("expected nil top for empty trace")
	}
	trace := StackTrace{{ProcedureName: "Main"}, {ProcedureName: "Foo"}}
	if top := trace.Top(); top == nil || top.ProcedureName != "Foo" {
		t.Fatalf("expected top Foo, got %v", top)
	}
}

func TestStackTrace_Depth(t *testing.T) {
	if (StackTrace{}).Depth() != 0 {
		t.Fatal("expected depth 0 for empty trace")
	}
	trace := StackTrace{{ProcedureName: "Main"}, {ProcedureName: "Foo"}, {ProcedureName: "Bar"}}
	if trace.Depth() != 3 {
		t.Fatalf("expected depth 3, got %d", trace.Depth())
	}
}
