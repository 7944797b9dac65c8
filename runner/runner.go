// Package runner is the single entry point for driving a Brainfuck
// source buffer through either execution mode with explicit I/O,
// independent of the CLI that calls it.
package runner

import (
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/Urethramancer/bf/exec"
	"github.com/Urethramancer/bf/ir"
	"github.com/Urethramancer/bf/tape"
)

// Mode selects which of the two execution mechanisms runs the program.
type Mode int

const (
	// AOT runs the program through the ahead-of-time specializer
	// (exec.Compile/exec.Specialized.Run), over IR₂ — ir.Lex already
	// resolved every recognizable loop before compilation, so there is
	// nothing left for the specializer to discover at run time.
	AOT Mode = iota
	// JIT runs the program through the hot-loop interpreter
	// (exec.Interpreter.Run), over IR₁ — ir.LexLinked deliberately skips
	// construction-time pattern rewriting, leaving real unrecognized
	// loops for the interpreter's per-loop hot counters to act on.
	JIT
)

func (m Mode) String() string {
	switch m {
	case AOT:
		return "aot"
	case JIT:
		return "jit"
	default:
		return "unknown"
	}
}

// ParseMode maps a CLI flag value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "aot":
		return AOT, nil
	case "jit":
		return JIT, nil
	default:
		return 0, errors.Errorf("runner: unknown mode %q (want aot or jit)", s)
	}
}

// Stats reports how a run went, for the CLI's -timing flag.
type Stats struct {
	Mode     Mode
	Elapsed  time.Duration
	OpsCount int
}

// Run lexes src under the mode-appropriate IR form, executes it against
// a fresh 30,000-cell tape.Tape, and reports how long it took. It is the
// package's only execution entry point: everything else is plumbing
// exec.Compile or exec.NewInterpreter already provide.
func Run(src []byte, in io.Reader, out io.Writer, mode Mode) (Stats, error) {
	start := time.Now()
	t := tape.New()
	stats := Stats{Mode: mode}

	switch mode {
	case AOT:
		prog := ir.Lex(src)
		spec, err := exec.Compile(prog)
		if err != nil {
			return stats, errors.Wrap(err, "runner: compile")
		}
		result, err := spec.Run(t, in, out)
		stats.Elapsed = time.Since(start)
		stats.OpsCount = result.OpsDispatched
		if err != nil {
			return stats, errors.Wrap(err, "runner: aot run")
		}
		return stats, nil
	case JIT:
		prog := ir.LexLinked(src)
		result, err := exec.NewInterpreter().Run(prog, t, in, out)
		stats.Elapsed = time.Since(start)
		stats.OpsCount = result.OpsDispatched
		if err != nil {
			return stats, errors.Wrap(err, "runner: jit run")
		}
		return stats, nil
	default:
		return stats, errors.Errorf("runner: invalid mode %v", mode)
	}
}
