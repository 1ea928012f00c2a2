package natsgath

import (
	"log/slog"

	"github.com/programme-lv/ojuzman/api"
	"github.com/programme-lv/ojuzman/internal"
	"github.com/programme-lv/ojuzman/internal/ojuz"
)

type natsGatherer struct {
	nc    publisher
	inbox string
	uuid  string
	log   *slog.Logger
}

var _ internal.ResultGatherer = (*natsGatherer)(nil)

func (s *natsGatherer) StartSubmit(problem string) {
	s.send(api.NewStartSubmit(s.uuid, problem))
}

func (s *natsGatherer) FinishSubmit(sub *ojuz.Submission) {
	s.send(api.NewFinishSubmit(s.uuid, internal.APISubmission(sub)))
}

func (s *natsGatherer) FailSubmit(msg string) {
	s.send(api.NewFailSubmit(s.uuid, api.TrimToRect(msg, api.MaxTextHeight, api.MaxTextWidth)))
}

func (s *natsGatherer) UpdateVerdict(v *ojuz.Verdict) {
	s.send(api.NewUpdateVerdict(s.uuid, internal.APIVerdict(v)))
}

func (s *natsGatherer) FinishWatch() {
	s.send(api.NewFinishWatch(s.uuid))
}
