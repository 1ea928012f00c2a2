package sqsgath

import (
	"context"
	"log/slog"

	"github.com/programme-lv/ojuzman/api"
	"github.com/programme-lv/ojuzman/internal"
	"github.com/programme-lv/ojuzman/internal/ojuz"
)

type sqsResQueueGatherer struct {
	ctx       context.Context
	sqsClient Sender
	queueUrl  string
	uuid      string
	log       *slog.Logger
	seq       int
}

var _ internal.ResultGatherer = (*sqsResQueueGatherer)(nil)

func (s *sqsResQueueGatherer) StartSubmit(problem string) {
	s.send(api.NewStartSubmit(s.uuid, problem))
}

func (s *sqsResQueueGatherer) FinishSubmit(sub *ojuz.Submission) {
	s.send(api.NewFinishSubmit(s.uuid, internal.APISubmission(sub)))
}

func (s *sqsResQueueGatherer) FailSubmit(msg string) {
	s.send(api.NewFailSubmit(s.uuid, api.TrimToRect(msg, api.MaxTextHeight, api.MaxTextWidth)))
}

func (s *sqsResQueueGatherer) UpdateVerdict(v *ojuz.Verdict) {
	s.send(api.NewUpdateVerdict(s.uuid, internal.APIVerdict(v)))
}

func (s *sqsResQueueGatherer) FinishWatch() {
	s.send(api.NewFinishWatch(s.uuid))
}
