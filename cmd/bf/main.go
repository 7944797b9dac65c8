package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"github.com/Urethramancer/bf/exec"
	"github.com/Urethramancer/bf/ir"
	"github.com/Urethramancer/bf/runner"
)

var (
	modeFlag     = flag.String("mode", "jit", "Execution mode: aot or jit.")
	timingFlag   = flag.Bool("timing", false, "Print elapsed time and op counts after running.")
	dumpIRFlag   = flag.Bool("dump-ir", false, "Print the compiled IR instead of running it.")
	dumpLLVMFlag = flag.Bool("dump-llvm", false, "Print the AOT routine as LLVM IR text instead of running it.")
	verboseFlag  = flag.Bool("v", false, "Print a verbose (kr/pretty) IR dump with -dump-ir.")
)

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: bf [options] <path.bf>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	path := flag.Arg(0)
	runID := uuid.New().String()
	color := isatty.IsTerminal(os.Stderr.Fd())

	src, err := os.ReadFile(path)
	if err != nil {
		glog.Exitf("[%s] couldn't read %s: %v", runID, path, err)
	}

	if *dumpIRFlag {
		prog := ir.Lex(src)
		if *verboseFlag {
			fmt.Print(ir.DumpVerbose(prog))
		} else {
			fmt.Print(ir.Dump(prog))
		}
		return
	}

	if *dumpLLVMFlag {
		prog := ir.Lex(src)
		fmt.Print(exec.DumpLLVM(prog))
		return
	}

	mode, err := runner.ParseMode(*modeFlag)
	if err != nil {
		glog.Exitf("[%s] %v", runID, errors.Wrap(err, "bf"))
	}

	glog.V(1).Infof("[%s] running %s in %s mode", runID, path, mode)

	stats, err := runner.Run(src, os.Stdin, os.Stdout, mode)
	if err != nil {
		if color {
			fmt.Fprintf(os.Stderr, "\x1b[31m[%s] run failed: %v\x1b[0m\n", runID, err)
		} else {
			fmt.Fprintf(os.Stderr, "[%s] run failed: %v\n", runID, err)
		}
		os.Exit(1)
	}

	if *timingFlag {
		fmt.Fprintf(os.Stderr, "[%s] %s: %s ops in %s\n",
			runID, mode, humanize.Comma(int64(stats.OpsCount)), stats.Elapsed)
	}
}
