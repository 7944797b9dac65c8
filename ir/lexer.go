package ir

// Lex turns a Brainfuck source buffer into an optimized Program (IR₂):
// run-length folding, bracket linking, and loop-pattern rewriting all
// happen inline, in a single pass, so that a loop is rewritten the
// instant its closing bracket is seen — which guarantees inner loops are
// finalized (and their bracket indices resolved) before any enclosing
// loop is examined.
func Lex(src []byte) *Program {
	l := &lexState{src: src, optimize: true}
	l.run()
	return &Program{Ops: l.ops}
}

// LexLinked produces IR₁: run-length folding and bracket linking, but
// without loop-pattern rewriting. This is what feeds the hot-loop
// interpreter, so that its per-loop hot counters and lazy pattern
// dispatch have unrecognized loops left to act on instead of everything
// having already been rewritten at compile time.
func LexLinked(src []byte) *Program {
	l := &lexState{src: src, optimize: false}
	l.run()
	return &Program{Ops: l.ops}
}

type lexState struct {
	src      []byte
	ops      []Op
	optimize bool

	// open is a stack of indices into ops holding LoopOpen ops that have
	// not yet been matched by a LoopClose.
	open []int

	// pending run-length fusion state.
	haveRun bool
	runKind Kind
	runLen  int
	runPos  int
}

func (l *lexState) flushRun() {
	if l.haveRun {
		l.ops = append(l.ops, Op{Kind: l.runKind, Operand: l.runLen, Pos: l.runPos})
		l.haveRun = false
	}
}

func (l *lexState) run() {
	for pos := 0; pos < len(l.src); pos++ {
		k, ok := classify(l.src[pos])
		if !ok {
			// Whitespace or a comment byte: silently skipped, and does
			// not interrupt a run-length fusion in progress.
			continue
		}

		if k.fusible() {
			if l.haveRun && l.runKind == k {
				l.runLen++
				continue
			}
			l.flushRun()
			l.haveRun = true
			l.runKind = k
			l.runLen = 1
			l.runPos = pos
			continue
		}

		l.flushRun()

		switch k {
		case LoopOpen:
			l.open = append(l.open, len(l.ops))
			l.ops = append(l.ops, Op{Kind: LoopOpen, Pos: pos})
		case LoopClose:
			l.closeLoop(pos)
		default:
			l.ops = append(l.ops, Op{Kind: k, Pos: pos})
		}
	}
	l.flushRun()

	if len(l.open) > 0 {
		l.ops = dropUnmatchedOpens(l.ops, l.open)
		l.open = nil
	}
}

// closeLoop handles a ']'. An unmatched ']' is discarded. Otherwise the
// body since the matching '[' is handed to the loop
// optimizer; a recognized idiom replaces the whole loop in place, and an
// unrecognized one is linked normally.
func (l *lexState) closeLoop(pos int) {
	if len(l.open) == 0 {
		return
	}
	openIdx := l.open[len(l.open)-1]
	l.open = l.open[:len(l.open)-1]

	if l.optimize {
		body := l.ops[openIdx+1:]
		if rewritten, ok := recognizeLoop(body); ok {
			rewritten.Pos = l.ops[openIdx].Pos
			l.ops = append(l.ops[:openIdx], rewritten)
			return
		}
	}

	closeIdx := len(l.ops)
	l.ops[openIdx].Operand = closeIdx
	l.ops = append(l.ops, Op{Kind: LoopClose, Operand: openIdx, Pos: pos})
}

// classify maps a source byte to its IR Kind. The second return value is
// false for whitespace and unrecognized (comment) bytes.
func classify(b byte) (Kind, bool) {
	switch b {
	case '<':
		return MoveLeft, true
	case '>':
		return MoveRight, true
	case '+':
		return Add, true
	case '-':
		return Sub, true
	case '.':
		return Output, true
	case ',':
		return Input, true
	case '[':
		return LoopOpen, true
	case ']':
		return LoopClose, true
	default:
		return 0, false
	}
}

// dropUnmatchedOpens removes the LoopOpen ops listed in open (indices
// into ops, ascending, least-nested first) while preserving every other
// op — including the body ops between a stray '[' and end of input —
// and re-resolves the Operand of every surviving matched bracket pair
// against the post-removal indices.
func dropUnmatchedOpens(ops []Op, open []int) []Op {
	remove := make(map[int]bool, len(open))
	for _, idx := range open {
		remove[idx] = true
	}

	mapping := make([]int, len(ops))
	out := make([]Op, 0, len(ops)-len(open))
	for i, op := range ops {
		if remove[i] {
			mapping[i] = -1
			continue
		}
		mapping[i] = len(out)
		out = append(out, op)
	}
	for i := range out {
		if out[i].Kind == LoopOpen || out[i].Kind == LoopClose {
			out[i].Operand = mapping[out[i].Operand]
		}
	}
	return out
}
