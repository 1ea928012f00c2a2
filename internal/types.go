package internal

import (
	"github.com/programme-lv/ojuzman/api"
	"github.com/programme-lv/ojuzman/internal/ojuz"
)

func APISubmission(s *ojuz.Submission) *api.Submission {
	if s == nil {
		return nil
	}
	return &api.Submission{
		Account:    s.Account,
		TrackingID: s.ID,
		URL:        s.URL,
	}
}

func APIVerdict(v *ojuz.Verdict) *api.Verdict {
	if v == nil {
		return nil
	}
	order := make([]string, len(v.EvaluatingSubtaskOrder))
	for i, x := range v.EvaluatingSubtaskOrder {
		order[i] = string(x)
	}
	return &api.Verdict{
		Text:               v.Text,
		Score:              string(v.Score),
		FullScore:          string(v.FullScore),
		MaxExecutionTime:   string(v.MaxExecutionTime),
		MaxMemory:          string(v.MaxMemory),
		SubtaskOrder:       order,
		CompilationMessage: v.CompilationMessage,
	}
}
