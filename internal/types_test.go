package internal

import (
	"testing"

	"github.com/programme-lv/ojuzman/api"
	"github.com/programme-lv/ojuzman/internal/ojuz"
	"github.com/stretchr/testify/assert"
)

func TestAPIVerdict(t *testing.T) {
	assert.Nil(t, APIVerdict(nil))

	v := &ojuz.Verdict{
		CompilationMessage:     "warning: unused",
		EvaluatingSubtaskOrder: []ojuz.Value{"1", "3"},
		FullScore:              "100",
		Score:                  "37",
		MaxExecutionTime:       "512",
		MaxMemory:              "2048",
		Text:                   "Partially correct",
	}
	assert.Equal(t, &api.Verdict{
		Text:               "Partially correct",
		Score:              "37",
		FullScore:          "100",
		MaxExecutionTime:   "512",
		MaxMemory:          "2048",
		SubtaskOrder:       []string{"1", "3"},
		CompilationMessage: "warning: unused",
	}, APIVerdict(v))
}

func TestAPISubmission(t *testing.T) {
	assert.Nil(t, APISubmission(nil))
	assert.Equal(t,
		&api.Submission{Account: "alice", TrackingID: "4242", URL: "https://oj.uz/submission/4242"},
		APISubmission(&ojuz.Submission{Account: "alice", ID: "4242", URL: "https://oj.uz/submission/4242"}))
}
