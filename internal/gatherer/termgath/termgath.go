package termgath

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/programme-lv/ojuzman/internal/ojuz"
)

var (
	header = color.New(color.Bold)
	ok     = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
	muted  = color.New(color.FgHiBlack)
)

type TerminalGatherer struct {
	StartedAt time.Time
	out       io.Writer
}

func New() *TerminalGatherer { return NewWriter(os.Stdout) }

func NewWriter(w io.Writer) *TerminalGatherer {
	return &TerminalGatherer{StartedAt: time.Now(), out: w}
}

func (t *TerminalGatherer) StartSubmit(problem string) {
	header.Fprintf(t.out, "== Submitting to %s ==\n", problem)
}

func (t *TerminalGatherer) FinishSubmit(sub *ojuz.Submission) {
	ok.Fprintf(t.out, "-- Accepted as #%s via %s --\n", sub.ID, sub.Account)
	fmt.Fprintln(t.out, sub.URL)
}

func (t *TerminalGatherer) FailSubmit(msg string) {
	bad.Fprintf(t.out, "== Submission failed: %s ==\n", msg)
}

func (t *TerminalGatherer) UpdateVerdict(v *ojuz.Verdict) {
	c := muted
	switch {
	case v.Score != "" && v.Score == v.FullScore:
		c = ok
	case v.CompilationMessage != "":
		c = bad
	}
	c.Fprintf(t.out, "<- %s", v.Text)
	if v.Score != "" {
		fmt.Fprintf(t.out, "  score=%s/%s", v.Score, v.FullScore)
	}
	if v.MaxExecutionTime != "" || v.MaxMemory != "" {
		fmt.Fprintf(t.out, "  time=%s mem=%s", v.MaxExecutionTime, v.MaxMemory)
	}
	fmt.Fprintln(t.out)
	if v.CompilationMessage != "" {
		fmt.Fprintf(t.out, "compiler:\n%s\n", v.CompilationMessage)
	}
}

func (t *TerminalGatherer) FinishWatch() {
	dur := time.Since(t.StartedAt).Round(time.Millisecond)
	header.Fprintf(t.out, "== Watch finished in %s ==\n", dur)
}
