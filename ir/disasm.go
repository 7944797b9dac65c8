package ir

import (
	"fmt"
	"strings"

	"github.com/kr/pretty"
)

// Dump renders prog as one line per op, index-prefixed, one mnemonic
// line per op. It backs the cmd/bf -dump-ir flag.
func Dump(prog *Program) string {
	var b strings.Builder
	for i, op := range prog.Ops {
		fmt.Fprintf(&b, "%5d  %s\n", i, op)
	}
	return b.String()
}

// DumpVerbose renders prog with kr/pretty, spelling out every field of
// every Op (including zero-valued ones) for deep debugging — e.g. the
// source position in Pos, which the one-line form in Dump omits. It
// backs cmd/bf's -dump-ir -v.
func DumpVerbose(prog *Program) string {
	return pretty.Sprint(prog.Ops)
}
