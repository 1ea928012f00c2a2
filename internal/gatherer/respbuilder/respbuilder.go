package respbuilder

import (
	"time"

	"github.com/programme-lv/ojuzman/api"
	"github.com/programme-lv/ojuzman/internal"
	"github.com/programme-lv/ojuzman/internal/ojuz"
)

// Builder gathers submission events and builds a complete api.SubmitResp.
type Builder struct {
	uuid    string
	problem string

	started  time.Time
	finished *time.Time

	submission   *api.Submission
	verdict      *api.Verdict
	updates      int
	watchDone    bool
	status       api.SubmitStatus
	errorMessage *string
}

var _ internal.ResultGatherer = (*Builder)(nil)

func New(uuid string) *Builder {
	return &Builder{
		uuid:    uuid,
		started: time.Now(),
		status:  api.Failed,
	}
}

func (b *Builder) StartSubmit(problem string) {
	b.problem = problem
}

func (b *Builder) FinishSubmit(sub *ojuz.Submission) {
	b.submission = internal.APISubmission(sub)
	b.status = api.Accepted
	b.finish()
}

func (b *Builder) FailSubmit(msg string) {
	b.status = api.Failed
	b.errorMessage = &msg
	b.finish()
}

// UpdateVerdict keeps only the latest verdict.
func (b *Builder) UpdateVerdict(v *ojuz.Verdict) {
	b.verdict = internal.APIVerdict(v)
	b.updates++
}

func (b *Builder) FinishWatch() {
	b.watchDone = true
	b.finish()
}

func (b *Builder) finish() {
	now := time.Now()
	b.finished = &now
}

// Accepted reports whether the judge took the submission.
func (b *Builder) Accepted() bool { return b.status == api.Accepted }

// Response builds the api.SubmitResp from gathered data.
func (b *Builder) Response() api.SubmitResp {
	start := b.started.Format(time.RFC3339)
	finish := start
	total := int64(0)
	if b.finished != nil {
		finish = b.finished.Format(time.RFC3339)
		total = b.finished.Sub(b.started).Milliseconds()
	}
	resp := api.SubmitResp{
		Uuid:           b.uuid,
		Problem:        b.problem,
		Status:         b.status,
		Submission:     b.submission,
		Verdict:        b.verdict,
		VerdictUpdates: b.updates,
		WatchFinished:  b.watchDone,
		StartTime:      start,
		FinishTime:     finish,
		TotalTimeMs:    total,
	}
	if b.errorMessage != nil {
		msg := *b.errorMessage
		resp.ErrorMessage = &msg
	}
	return resp
}
