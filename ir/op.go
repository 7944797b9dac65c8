// Package ir implements the intermediate representation of a Brainfuck
// program: lexing with run-length folding, bracket linking, and the
// loop-pattern optimizer that rewrites idiom loops into O(1) ops.
package ir

import "fmt"

// Kind identifies the operation an Op performs.
type Kind int

const (
	// MoveLeft and MoveRight carry a run-length in Operand (>= 1).
	MoveLeft Kind = iota
	MoveRight
	// Add and Sub carry a run-length in Operand (>= 1), applied mod 256.
	Add
	Sub
	// Output and Input have no Operand.
	Output
	Input
	// LoopOpen and LoopClose carry the IR index of their match in Operand.
	LoopOpen
	LoopClose
	// Zero sets the current cell to 0.
	Zero
	// Copy adds the current cell into tape[cc+Operand] and zeroes it.
	// Operand is a signed offset.
	Copy
	// MulAdd scales the current cell by each Targets factor into
	// tape[cc+offset], then zeroes it.
	MulAdd
	// ScanLeft and ScanRight carry a signed stride in Operand.
	ScanLeft
	ScanRight
)

func (k Kind) String() string {
	switch k {
	case MoveLeft:
		return "MoveLeft"
	case MoveRight:
		return "MoveRight"
	case Add:
		return "Add"
	case Sub:
		return "Sub"
	case Output:
		return "Output"
	case Input:
		return "Input"
	case LoopOpen:
		return "LoopOpen"
	case LoopClose:
		return "LoopClose"
	case Zero:
		return "Zero"
	case Copy:
		return "Copy"
	case MulAdd:
		return "MulAdd"
	case ScanLeft:
		return "ScanLeft"
	case ScanRight:
		return "ScanRight"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// fusible reports whether consecutive ops of this kind should be merged
// into a single op carrying the summed run-length.
func (k Kind) fusible() bool {
	switch k {
	case MoveLeft, MoveRight, Add, Sub:
		return true
	default:
		return false
	}
}

// Target is one destination of a MulAdd: tape[cc+Offset] += tape[cc]*Factor.
type Target struct {
	Offset int
	Factor int
}

// Op is a single element of the IR. Operand's meaning depends on Kind:
// run-length for Move/Add/Sub, matching index for LoopOpen/LoopClose,
// destination offset for Copy, stride for ScanLeft/ScanRight. Targets is
// populated only for MulAdd. Pos is the byte offset in the source of the
// first operator folded into this op; it exists only for diagnostics and
// never affects any invariant or execution semantics.
type Op struct {
	Kind    Kind
	Operand int
	Targets []Target
	Pos     int
}

func (o Op) String() string {
	switch o.Kind {
	case MoveLeft, MoveRight, Add, Sub:
		return fmt.Sprintf("%s(%d)", o.Kind, o.Operand)
	case LoopOpen, LoopClose:
		return fmt.Sprintf("%s(->%d)", o.Kind, o.Operand)
	case Copy, ScanLeft, ScanRight:
		return fmt.Sprintf("%s(%d)", o.Kind, o.Operand)
	case MulAdd:
		return fmt.Sprintf("MulAdd(%v)", o.Targets)
	default:
		return o.Kind.String()
	}
}

// Program is an ordered, immutable (post-construction) sequence of IR
// ops produced by Lex or LexLinked.
type Program struct {
	Ops []Op
}

// Len returns the number of ops in the program.
func (p *Program) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Ops)
}
