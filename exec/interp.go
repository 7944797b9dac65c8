// Package exec implements the two specialized execution modes: the
// ahead-of-time specializer and the hot-loop interpreter, both driving a
// tape.Tape.
package exec

import (
	"io"

	"github.com/pkg/errors"

	"github.com/Urethramancer/bf/ir"
	"github.com/Urethramancer/bf/tape"
)

// HotThreshold is the per-loop execution count at which the interpreter
// attempts pattern recognition on a loop it is about to re-enter.
const HotThreshold = 10

// Result reports how much work an execution mode performed, for the
// -timing CLI flag.
type Result struct {
	OpsDispatched int
}

// Interpreter directly interprets an ir.Program, tracking a per-
// LoopOpen-index hot counter and attempting loop-pattern recognition
// lazily once a loop crosses HotThreshold. It holds no fields, so the
// same Interpreter value is safe to share across concurrent Run calls.
type Interpreter struct{}

// NewInterpreter returns a ready-to-use Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// Run interprets prog against t, reading `,` input from in and writing
// `.` output to out, until pc runs off the end of the program.
func (ip *Interpreter) Run(prog *ir.Program, t *tape.Tape, in io.Reader, out io.Writer) (Result, error) {
	ops := prog.Ops
	hot := map[int]int{}
	tried := map[int]bool{}
	recognized := map[int]ir.Op{}
	var result Result

	pc := 0
	for pc < len(ops) {
		op := ops[pc]
		result.OpsDispatched++

		switch op.Kind {
		case ir.LoopOpen:
			hot[pc]++
			if !tried[pc] && hot[pc] >= HotThreshold {
				tried[pc] = true
				body := ops[pc+1 : op.Operand]
				if rewritten, ok := ir.Recognize(body); ok {
					recognized[pc] = rewritten
				}
			}
			if rewritten, ok := recognized[pc]; ok {
				applyOp(t, rewritten)
				pc = op.Operand + 1
				continue
			}
			if t.Get() == 0 {
				pc = op.Operand + 1
			} else {
				pc++
			}
		case ir.LoopClose:
			if t.Get() != 0 {
				pc = op.Operand + 1
			} else {
				pc++
			}
		default:
			if err := stepIO(t, in, out, op); err != nil {
				return result, errors.Wrapf(err, "interpreter: op %d (%s)", pc, op)
			}
			pc++
		}
	}
	return result, nil
}

// applyOp executes any non-control-flow, non-I/O op against t. It is
// shared between normal dispatch and the "execute the recognized form
// once" path taken right after a hot loop is rewritten.
func applyOp(t *tape.Tape, op ir.Op) {
	switch op.Kind {
	case ir.MoveLeft:
		t.Left(op.Operand)
	case ir.MoveRight:
		t.Right(op.Operand)
	case ir.Add:
		t.Add(op.Operand)
	case ir.Sub:
		t.Add(-op.Operand)
	case ir.Zero:
		t.Set(0)
	case ir.Copy:
		v := t.Get()
		t.AddAt(t.Cursor+op.Operand, int(v))
		t.Set(0)
	case ir.MulAdd:
		v := t.Get()
		for _, tgt := range op.Targets {
			t.AddAt(t.Cursor+tgt.Offset, int(v)*tgt.Factor)
		}
		t.Set(0)
	case ir.ScanLeft, ir.ScanRight:
		t.Scan(op.Operand)
	}
}

// stepIO executes any op that might touch in/out, falling back to
// applyOp for everything else.
func stepIO(t *tape.Tape, in io.Reader, out io.Writer, op ir.Op) error {
	switch op.Kind {
	case ir.Output:
		_, err := out.Write([]byte{t.Get()})
		return err
	case ir.Input:
		v, eof, err := readByte(in)
		if err != nil {
			return err
		}
		if !eof {
			t.Set(v)
		}
		return nil
	default:
		applyOp(t, op)
		return nil
	}
}

// readByte reads a single byte from in. On EOF it reports eof=true and
// no error; the caller leaves the cell unchanged by skipping the Set.
func readByte(in io.Reader) (b byte, eof bool, err error) {
	var buf [1]byte
	for {
		n, rerr := in.Read(buf[:])
		if n == 1 {
			return buf[0], false, nil
		}
		if rerr == io.EOF {
			return 0, true, nil
		}
		if rerr != nil {
			return 0, false, rerr
		}
	}
}
