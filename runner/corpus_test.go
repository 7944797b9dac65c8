package runner

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/sync/errgroup"
)

// golden is one corpus entry: a source program, its stdin, and the
// output both execution modes must produce byte-for-byte identical.
type golden struct {
	name string
	src  string
	in   string
	want string
}

var corpus = []golden{
	{
		name: "hello_world",
		src:  "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++.",
		want: "Hello World!\n",
	},
	{
		name: "echo_three_bytes",
		src:  ",.,.,.",
		in:   "abc",
		want: "abc",
	},
	{
		name: "zero_cell",
		src:  "++++++++[-]+.",
		want: "\x01",
	},
	{
		name: "copy_cell",
		src:  "+++++[->+<]>.",
		want: "\x05",
	},
	{
		name: "scaled_copy",
		src:  "++[->+++>+<<]>.>.",
		want: "\x06\x02",
	},
	{
		name: "scan_right_to_zero",
		src:  "+>+>+>[>]<.",
		want: "\x01",
	},
	{
		name: "wraparound",
		src:  strings.Repeat("+", 257) + ".",
		want: "\x01",
	},
	{
		name: "eof_leaves_cell",
		src:  "+++,.",
		want: "\x03",
	},
}

// TestCorpusRunsUnderBothModes runs every golden program under AOT and
// JIT concurrently (golang.org/x/sync/errgroup), comparing each mode's
// output against the expected bytes. Running the whole corpus
// concurrently is purely a test-tooling concern: each goroutine gets its
// own tape via its own Run call.
func TestCorpusRunsUnderBothModes(t *testing.T) {
	var g errgroup.Group
	for _, c := range corpus {
		c := c
		g.Go(func() error {
			var aotOut bytes.Buffer
			if _, err := Run([]byte(c.src), strings.NewReader(c.in), &aotOut, AOT); err != nil {
				return err
			}
			if aotOut.String() != c.want {
				t.Errorf("%s: aot got %q, want %q", c.name, aotOut.String(), c.want)
			}
			return nil
		})
		g.Go(func() error {
			var jitOut bytes.Buffer
			if _, err := Run([]byte(c.src), strings.NewReader(c.in), &jitOut, JIT); err != nil {
				return err
			}
			if jitOut.String() != c.want {
				t.Errorf("%s: jit got %q, want %q", c.name, jitOut.String(), c.want)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("corpus run failed: %v", err)
	}
}

func TestParseModeRejectsUnknown(t *testing.T) {
	if _, err := ParseMode("gpu"); err == nil {
		t.Fatal("expected an error for an unknown mode")
	}
}

func TestParseModeRoundTrip(t *testing.T) {
	for _, s := range []string{"aot", "jit"} {
		m, err := ParseMode(s)
		if err != nil {
			t.Fatalf("ParseMode(%q): %v", s, err)
		}
		if m.String() != s {
			t.Fatalf("got %q, want %q", m.String(), s)
		}
	}
}
