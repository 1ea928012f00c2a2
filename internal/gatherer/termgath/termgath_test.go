package termgath

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/programme-lv/ojuzman/internal/ojuz"
	"github.com/stretchr/testify/assert"
)

func TestTerminalOutput(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	g := NewWriter(&buf)

	g.StartSubmit("APIO13_interference")
	g.FinishSubmit(&ojuz.Submission{Account: "alice", ID: "4242", URL: "https://oj.uz/submission/4242"})
	g.UpdateVerdict(&ojuz.Verdict{Text: "Accepted", Score: "100", FullScore: "100", MaxExecutionTime: "12 ms", MaxMemory: "3 MB"})
	g.UpdateVerdict(&ojuz.Verdict{Text: "Compilation error", CompilationMessage: "main.cpp:1: error"})
	g.FailSubmit("soft blocked")
	g.FinishWatch()

	out := buf.String()
	assert.Contains(t, out, "== Submitting to APIO13_interference ==")
	assert.Contains(t, out, "-- Accepted as #4242 via alice --")
	assert.Contains(t, out, "https://oj.uz/submission/4242")
	assert.Contains(t, out, "<- Accepted  score=100/100  time=12 ms mem=3 MB")
	assert.Contains(t, out, "compiler:\nmain.cpp:1: error")
	assert.Contains(t, out, "== Submission failed: soft blocked ==")
	assert.Contains(t, out, "== Watch finished in")
}
