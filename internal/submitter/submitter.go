// Package submitter runs one submission request against the account pool
// and reports its progress to a ResultGatherer.
package submitter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
	"github.com/programme-lv/ojuzman/api"
	"github.com/programme-lv/ojuzman/internal"
	"github.com/programme-lv/ojuzman/internal/ojuz"
)

var ErrInvalidRequest = errors.New("invalid submit request")

// Pool is the part of pool.Manager the submitter drives.
type Pool interface {
	Submit(ctx context.Context, problem, code string) (*ojuz.Submission, error)
	QueryVerdict(ctx context.Context, trackingID string) (*ojuz.Verdict, error)
}

type WatchOptions struct {
	Interval       time.Duration
	MaxPolls       int
	PendingMarkers []string
}

type Submitter struct {
	pool  Pool
	watch WatchOptions
	log   *slog.Logger

	// wait is swapped in tests
	wait func(ctx context.Context, d time.Duration) error
}

func New(p Pool, watch WatchOptions, log *slog.Logger) *Submitter {
	if log == nil {
		log = slog.Default()
	}
	return &Submitter{pool: p, watch: watch, log: log, wait: sleepCtx}
}

// Process submits req.Code and, when req.Watch is set, polls the verdict
// until it is final or the poll budget runs out.
func (s *Submitter) Process(ctx context.Context, req api.SubmitReq, gath internal.ResultGatherer) error {
	log := s.log.With("uuid", req.Uuid, "problem", req.Problem)

	gath.StartSubmit(req.Problem)
	if req.Problem == "" || req.Code == "" {
		err := fmt.Errorf("%w: problem and code are required", ErrInvalidRequest)
		gath.FailSubmit(err.Error())
		return err
	}

	sub, err := s.pool.Submit(ctx, req.Problem, req.Code)
	if err != nil {
		log.Warn("submission failed", tint.Err(err))
		gath.FailSubmit(err.Error())
		return err
	}
	log.Info("submission accepted", "account", sub.Account, "id", sub.ID)
	gath.FinishSubmit(sub)

	if !req.Watch {
		return nil
	}
	err = s.watchVerdict(ctx, sub.ID, gath, log)
	gath.FinishWatch()
	return err
}

func (s *Submitter) watchVerdict(ctx context.Context, id string, gath internal.ResultGatherer, log *slog.Logger) error {
	var last *ojuz.Verdict
	for i := 0; i < s.watch.MaxPolls; i++ {
		if err := s.wait(ctx, s.watch.Interval); err != nil {
			return err
		}
		v, err := s.pool.QueryVerdict(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("verdict poll failed", "attempt", i+1, tint.Err(err))
			continue
		}
		if !v.Equal(last) {
			gath.UpdateVerdict(v)
			last = v
		}
		if !v.Pending(s.watch.PendingMarkers) {
			log.Debug("verdict final", "text", v.Text, "polls", i+1)
			return nil
		}
	}
	log.Info("verdict still pending after poll budget", "polls", s.watch.MaxPolls)
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
