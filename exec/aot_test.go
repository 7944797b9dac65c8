package exec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Urethramancer/bf/ir"
	"github.com/Urethramancer/bf/tape"
)

func runAOT(t *testing.T, src string, in string) (string, *tape.Tape) {
	t.Helper()
	prog := ir.Lex([]byte(src))
	spec, err := Compile(prog)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	tp := tape.New()
	var out bytes.Buffer
	if _, err := spec.Run(tp, strings.NewReader(in), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String(), tp
}

func TestAOTHelloWorld(t *testing.T) {
	src := "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++."
	out, _ := runAOT(t, src, "")
	if out != "Hello World!\n" {
		t.Fatalf("got %q", out)
	}
}

func TestAOTZeroLoop(t *testing.T) {
	_, tp := runAOT(t, "+++++[-]", "")
	if tp.Get() != 0 {
		t.Fatalf("cell not zeroed: %d", tp.Get())
	}
}

func TestAOTCopyLoop(t *testing.T) {
	_, tp := runAOT(t, "+++[->+<]", "")
	if tp.Cells[0] != 0 || tp.Cells[1] != 3 {
		t.Fatalf("got cell0=%d cell1=%d, want 0,3", tp.Cells[0], tp.Cells[1])
	}
}

func TestAOTMulAddLoop(t *testing.T) {
	_, tp := runAOT(t, "++[->+++>+<<]", "")
	if tp.Cells[0] != 0 || tp.Cells[1] != 6 || tp.Cells[2] != 2 {
		t.Fatalf("got %v", tp.Cells[:3])
	}
}

func TestAOTScanRightStopsAtZero(t *testing.T) {
	_, tp := runAOT(t, "+>+>+>[>]", "")
	if tp.Cursor != 3 {
		t.Fatalf("got cursor %d, want 3", tp.Cursor)
	}
}

func TestAOTEchoesInput(t *testing.T) {
	out, _ := runAOT(t, ",.", "Q")
	if out != "Q" {
		t.Fatalf("got %q", out)
	}
}

func TestAOTEOFLeavesCellUnchanged(t *testing.T) {
	_, tp := runAOT(t, "+++,", "")
	if tp.Get() != 3 {
		t.Fatalf("got %d, want 3 (unchanged on EOF)", tp.Get())
	}
}

func TestAOTAddWrapsModulo256(t *testing.T) {
	src := strings.Repeat("+", 256)
	_, tp := runAOT(t, src, "")
	if tp.Get() != 0 {
		t.Fatalf("got %d, want 0 (wrapped)", tp.Get())
	}
}

func TestAOTOffsetBatchingFlushesBeforeLoop(t *testing.T) {
	// "+>>>+[<<<+>>>-]" batches a MoveRight(3) (never flushed, only
	// folded into the following Add's baked-in offset) right up until
	// the loop is entered, which must flush first: the loop condition
	// reads the real cursor, and the body's own moves must start from
	// that real position, not from a stale one.
	_, tp := runAOT(t, "+>>>+[<<<+>>>-]", "")
	if tp.Cells[0] != 2 || tp.Cells[3] != 0 {
		t.Fatalf("got cell0=%d cell3=%d, want 2,0", tp.Cells[0], tp.Cells[3])
	}
}

func TestAOTOffsetBatchingClampsAtBoundary(t *testing.T) {
	// "<+" at cursor 0: the MoveLeft clamps to 0 before the Add lands,
	// so the Add must hit cell 0, not cell -1 (which AddAt would
	// silently discard, losing the increment entirely).
	_, tp := runAOT(t, "<+", "")
	if tp.Get() != 1 || tp.Cursor != 0 {
		t.Fatalf("got cell=%d cursor=%d, want 1,0", tp.Get(), tp.Cursor)
	}
}

func TestAOTOffsetBatchingNetsThroughBoundary(t *testing.T) {
	// "<>" at cursor 0: the MoveLeft clamps to 0, then the MoveRight
	// advances to 1. A batch that just sums the two deltas to zero
	// would wrongly leave the cursor at 0.
	_, tp := runAOT(t, "<>", "")
	if tp.Cursor != 1 {
		t.Fatalf("got cursor=%d, want 1", tp.Cursor)
	}
}

func TestAOTOffsetBatchingAcrossIO(t *testing.T) {
	// Output must see the batched offset without a flush: "+>>." prints
	// the still-zero cell at offset +2, not cell0.
	out, _ := runAOT(t, "+>>.", "")
	if out != "\x00" {
		t.Fatalf("got %q", out)
	}
}

// TestAOTMatchesInterpreter runs the same programs through both
// execution modes and requires identical output and final tape state.
func TestAOTMatchesInterpreter(t *testing.T) {
	cases := []struct {
		name string
		src  string
		in   string
	}{
		{"hello", "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++.", ""},
		{"zero", "+++++[-]", ""},
		{"copy", "+++[->+<]", ""},
		{"muladd", "++[->+++>+<<]", ""},
		{"scan", "+>+>+>[>]", ""},
		{"echo", ",.", "Z"},
		{"wrap", strings.Repeat("+", 300), ""},
		{"nested", "++[>[-]<-]", ""},
		{"boundary_clamp", "<+", ""},
		{"boundary_net", "<>", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			aotOut, aotTape := runAOT(t, c.src, c.in)
			interpOut, interpTape := runInterp(t, c.src, c.in)
			if aotOut != interpOut {
				t.Fatalf("output mismatch: aot=%q interp=%q", aotOut, interpOut)
			}
			if aotTape.Cursor != interpTape.Cursor {
				t.Fatalf("cursor mismatch: aot=%d interp=%d", aotTape.Cursor, interpTape.Cursor)
			}
			if !bytes.Equal(aotTape.Cells[:], interpTape.Cells[:]) {
				t.Fatalf("tape mismatch for %s", c.name)
			}
		})
	}
}
