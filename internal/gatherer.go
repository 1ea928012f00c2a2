package internal

import "github.com/programme-lv/ojuzman/internal/ojuz"

// ResultGatherer receives the progress of one submission request.
// Either FinishSubmit or FailSubmit is called exactly once; verdict
// updates and FinishWatch follow only a successful, watched submit.
type ResultGatherer interface {
	StartSubmit(problem string)
	FinishSubmit(sub *ojuz.Submission)
	FailSubmit(msg string)

	UpdateVerdict(v *ojuz.Verdict)
	FinishWatch()
}
