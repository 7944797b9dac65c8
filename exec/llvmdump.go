package exec

import (
	"fmt"

	llvmir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"

	"github.com/Urethramancer/bf/ir"
)

// DumpLLVM renders prog as LLVM IR text: a debug artifact only, printed
// behind the CLI's -dump-llvm flag and never compiled or executed. The
// rendered module calls out to declared-but-undefined @bf.* runtime
// helpers rather than lowering tape access to raw loads and stores.
// Control flow is real: every loop the optimizer left in place becomes
// actual cond/body/after basic blocks, while a recognized loop is a
// single helper call like any other op.
func DumpLLVM(prog *ir.Program) string {
	m := llvmir.NewModule()

	decl := func(name string, params ...*llvmir.Param) *llvmir.Func {
		return m.NewFunc(name, types.Void, params...)
	}
	p := func(name string) *llvmir.Param {
		return llvmir.NewParam(name, types.I64)
	}

	h := llvmHelpers{
		moveLeft:     decl("bf.move_left", p("n")),
		moveRight:    decl("bf.move_right", p("n")),
		add:          decl("bf.add", p("delta")),
		output:       decl("bf.output"),
		input:        decl("bf.input"),
		zero:         decl("bf.zero"),
		copyOp:       decl("bf.copy", p("offset")),
		mulAddTarget: decl("bf.muladd_target", p("offset"), p("factor")),
		scan:         decl("bf.scan", p("stride")),
		nonzero:      m.NewFunc("bf.nonzero", types.I1),
	}

	fn := m.NewFunc("specialized", types.Void)
	entry := fn.NewBlock("entry")

	b := &llvmBuilder{fn: fn, h: h}
	end, next := b.emitBlock(prog.Ops, 0, entry)
	if next != len(prog.Ops) {
		end.NewUnreachable()
	} else {
		end.NewRet(nil)
	}

	return m.String()
}

type llvmHelpers struct {
	moveLeft, moveRight, add, output, input, zero, copyOp, mulAddTarget, scan *llvmir.Func
	nonzero                                                                   *llvmir.Func
}

type llvmBuilder struct {
	fn    *llvmir.Func
	h     llvmHelpers
	count int
}

func (b *llvmBuilder) block(label string) *llvmir.Block {
	b.count++
	return b.fn.NewBlock(fmt.Sprintf("%s.%d", label, b.count))
}

// emitBlock mirrors aot.go's compileBlock: it walks ops[start:] emitting
// straight-line helper calls, and for a LoopOpen recurses into the body
// between real cond/body/after blocks, returning once it reaches a
// LoopClose (signalling its caller's loop is done) or the end of ops.
func (b *llvmBuilder) emitBlock(ops []ir.Op, start int, cur *llvmir.Block) (*llvmir.Block, int) {
	i := start
	for i < len(ops) {
		op := ops[i]
		switch op.Kind {
		case ir.LoopOpen:
			cond := b.block("loop.cond")
			body := b.block("loop.body")
			after := b.block("loop.after")
			cur.NewBr(cond)

			nz := cond.NewCall(b.h.nonzero)
			cond.NewCondBr(nz, body, after)

			bodyEnd, next := b.emitBlock(ops, i+1, body)
			bodyEnd.NewBr(cond)
			if next != op.Operand {
				after.NewUnreachable()
			}

			cur = after
			i = op.Operand + 1
		case ir.LoopClose:
			return cur, i
		default:
			emitOp(cur, b.h, op)
			i++
		}
	}
	return cur, i
}

func emitOp(cur *llvmir.Block, h llvmHelpers, op ir.Op) {
	i64 := func(n int) *constant.Int {
		return constant.NewInt(types.I64, int64(n))
	}
	switch op.Kind {
	case ir.MoveLeft:
		cur.NewCall(h.moveLeft, i64(op.Operand))
	case ir.MoveRight:
		cur.NewCall(h.moveRight, i64(op.Operand))
	case ir.Add:
		cur.NewCall(h.add, i64(op.Operand))
	case ir.Sub:
		cur.NewCall(h.add, i64(-op.Operand))
	case ir.Output:
		cur.NewCall(h.output)
	case ir.Input:
		cur.NewCall(h.input)
	case ir.Zero:
		cur.NewCall(h.zero)
	case ir.Copy:
		cur.NewCall(h.copyOp, i64(op.Operand))
	case ir.MulAdd:
		for _, tgt := range op.Targets {
			cur.NewCall(h.mulAddTarget, i64(tgt.Offset), i64(tgt.Factor))
		}
	case ir.ScanLeft, ir.ScanRight:
		cur.NewCall(h.scan, i64(op.Operand))
	}
}
