package exec

import (
	"io"

	"github.com/pkg/errors"

	"github.com/Urethramancer/bf/ir"
	"github.com/Urethramancer/bf/tape"
)

// step is one unit of the reduced IR the AOT specializer compiles a
// Program into. Each step captures its constants (run-length, offset,
// MulAdd targets, scan stride) at compile time, so invoking it at run
// time needs no further lookup.
type step func(t *tape.Tape, in io.Reader, out io.Writer) error

// Specialized is a compiled, directly callable routine, constructed once
// by Compile and invoked once per program run. It holds no cross-
// invocation state.
type Specialized struct {
	steps []step
	prog  *ir.Program
}

// Compile lowers prog into a Specialized routine. Consecutive
// MoveLeft/MoveRight ops are batched: rather than moving the tape cursor
// for each one, their signed deltas are recorded and folded into the
// displacement baked into every Add/Sub/Output/Zero/Copy/MulAdd step
// that follows, until the batch is flushed — emitting a step that
// performs the real cursor move — before Input, before a Scan,
// before/after a loop body, and at the end of the program, the points
// where the real cursor
// value is observed from outside the batch.
func Compile(prog *ir.Program) (*Specialized, error) {
	steps, next, err := compileBlock(prog.Ops, 0)
	if err != nil {
		return nil, errors.Wrap(err, "aot: compile")
	}
	if next != len(prog.Ops) {
		return nil, errors.Errorf("aot: compile: %d trailing unconsumed ops", len(prog.Ops)-next)
	}
	return &Specialized{steps: steps, prog: prog}, nil
}

// batchOffset computes the cursor offset (relative to cursor) produced
// by replaying a sequence of signed move deltas with the same per-step
// clamping tape.Left/tape.Right apply, without actually moving the
// cursor. A batch of moves that would drive the cursor against a
// boundary and back out again must land in the same place a sequence of
// real, individually clamped moves would — simply summing the deltas
// and clamping once at the end is not equivalent whenever an
// intermediate position would have been clamped.
func batchOffset(cursor int, deltas []int) int {
	pos := cursor
	for _, d := range deltas {
		pos += d
		if pos < 0 {
			pos = 0
		} else if pos >= tape.Size {
			pos = tape.Size - 1
		}
	}
	return pos - cursor
}

// compileBlock compiles ops[start:] until either a LoopClose is reached
// (returning just past it is the caller's job, via the returned index)
// or the slice is exhausted. It is called once for the top-level program
// and once per loop body, recursively, so nested loops are compiled
// inside-out.
func compileBlock(ops []ir.Op, start int) ([]step, int, error) {
	var steps []step
	var pending []int

	flush := func() {
		if len(pending) == 0 {
			return
		}
		deltas := pending
		pending = nil
		steps = append(steps, func(t *tape.Tape, _ io.Reader, _ io.Writer) error {
			t.Cursor += batchOffset(t.Cursor, deltas)
			return nil
		})
	}

	i := start
	for i < len(ops) {
		op := ops[i]
		switch op.Kind {
		case ir.MoveLeft:
			pending = append(pending, -op.Operand)
			i++
		case ir.MoveRight:
			pending = append(pending, op.Operand)
			i++
		case ir.Add:
			deltas, delta := pending, op.Operand
			steps = append(steps, func(t *tape.Tape, _ io.Reader, _ io.Writer) error {
				t.AddAt(t.Cursor+batchOffset(t.Cursor, deltas), delta)
				return nil
			})
			i++
		case ir.Sub:
			deltas, delta := pending, op.Operand
			steps = append(steps, func(t *tape.Tape, _ io.Reader, _ io.Writer) error {
				t.AddAt(t.Cursor+batchOffset(t.Cursor, deltas), -delta)
				return nil
			})
			i++
		case ir.Output:
			deltas := pending
			steps = append(steps, func(t *tape.Tape, _ io.Reader, out io.Writer) error {
				idx := t.Cursor + batchOffset(t.Cursor, deltas)
				if !tape.InBounds(idx) {
					return nil
				}
				_, err := out.Write([]byte{t.Cells[idx]})
				return err
			})
			i++
		case ir.Zero:
			deltas := pending
			steps = append(steps, func(t *tape.Tape, _ io.Reader, _ io.Writer) error {
				idx := t.Cursor + batchOffset(t.Cursor, deltas)
				if tape.InBounds(idx) {
					t.Cells[idx] = 0
				}
				return nil
			})
			i++
		case ir.Copy:
			deltas, dst := pending, op.Operand
			steps = append(steps, func(t *tape.Tape, _ io.Reader, _ io.Writer) error {
				idx := t.Cursor + batchOffset(t.Cursor, deltas)
				if !tape.InBounds(idx) {
					return nil
				}
				v := t.Cells[idx]
				t.AddAt(idx+dst, int(v))
				t.Cells[idx] = 0
				return nil
			})
			i++
		case ir.MulAdd:
			deltas, targets := pending, op.Targets
			steps = append(steps, func(t *tape.Tape, _ io.Reader, _ io.Writer) error {
				idx := t.Cursor + batchOffset(t.Cursor, deltas)
				if !tape.InBounds(idx) {
					return nil
				}
				v := t.Cells[idx]
				for _, tgt := range targets {
					t.AddAt(idx+tgt.Offset, int(v)*tgt.Factor)
				}
				t.Cells[idx] = 0
				return nil
			})
			i++
		case ir.ScanLeft, ir.ScanRight:
			flush()
			stride := op.Operand
			steps = append(steps, func(t *tape.Tape, _ io.Reader, _ io.Writer) error {
				t.Scan(stride)
				return nil
			})
			i++
		case ir.Input:
			flush()
			steps = append(steps, func(t *tape.Tape, in io.Reader, _ io.Writer) error {
				v, eof, err := readByte(in)
				if err != nil {
					return err
				}
				if !eof {
					t.Set(v)
				}
				return nil
			})
			i++
		case ir.LoopOpen:
			flush()
			body, next, err := compileBlock(ops, i+1)
			if err != nil {
				return nil, 0, err
			}
			if next != op.Operand {
				return nil, 0, errors.Errorf("aot: bracket mismatch at op %d", i)
			}
			steps = append(steps, func(t *tape.Tape, in io.Reader, out io.Writer) error {
				for t.Get() != 0 {
					for _, s := range body {
						if err := s(t, in, out); err != nil {
							return err
						}
					}
				}
				return nil
			})
			i = next + 1
		case ir.LoopClose:
			flush()
			return steps, i, nil
		}
	}
	flush()
	return steps, i, nil
}

// Run invokes the specialized routine once against t. OpsDispatched
// counts top-level specialized steps, not individual source IR ops — a
// loop collapses to a single step regardless of iteration count, which
// is the entire point of specialization, so it is a coarser number than
// Interpreter.Run's, useful only as a relative timing signal.
func (s *Specialized) Run(t *tape.Tape, in io.Reader, out io.Writer) (Result, error) {
	var result Result
	for _, st := range s.steps {
		if err := st(t, in, out); err != nil {
			return result, errors.Wrap(err, "aot: execution failed")
		}
		result.OpsDispatched++
	}
	return result, nil
}
