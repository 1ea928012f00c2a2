package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/nats-io/nats.go"
	"github.com/programme-lv/ojuzman/api"
	"github.com/programme-lv/ojuzman/internal/gatherer/natsgath"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func listenCommand() *cli.Command {
	return &cli.Command{
		Name:  "listen",
		Usage: "take submit requests from a NATS subject and stream progress to the reply inbox",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := startApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.close()

			nc, err := nats.Connect(a.cfg.NATS.URL, nats.Name("ojuzman"))
			if err != nil {
				return fmt.Errorf("failed to connect to NATS at %s: %w", a.cfg.NATS.URL, err)
			}
			defer nc.Drain()

			sub := a.submitter()
			var g errgroup.Group
			// two in flight per account keeps every session busy
			g.SetLimit(2 * a.pool.Size())

			s, err := nc.QueueSubscribe(a.cfg.NATS.Subject, a.cfg.NATS.Queue, func(msg *nats.Msg) {
				req, err := decodeSubmitReq(msg.Data)
				if err != nil {
					a.log.Warn("dropping malformed request", "subject", msg.Subject, tint.Err(err))
					return
				}
				if msg.Reply == "" {
					a.log.Warn("dropping request without reply inbox", "uuid", req.Uuid)
					return
				}
				g.Go(func() error {
					gath := natsgath.New(nc, req.Uuid, msg.Reply, a.log)
					if err := sub.Process(ctx, req, gath); err != nil {
						a.log.Debug("request finished with error", "uuid", req.Uuid, tint.Err(err))
					}
					return nil
				})
			})
			if err != nil {
				return fmt.Errorf("failed to subscribe to %s: %w", a.cfg.NATS.Subject, err)
			}
			a.log.Info("listening for submit requests",
				slog.String("subject", a.cfg.NATS.Subject),
				slog.String("queue", a.cfg.NATS.Queue))

			<-ctx.Done()
			if err := s.Drain(); err != nil {
				a.log.Warn("failed to drain subscription", tint.Err(err))
			}
			return g.Wait()
		},
	}
}

// decodeSubmitReq parses a request body and assigns a uuid when missing.
func decodeSubmitReq(data []byte) (api.SubmitReq, error) {
	var req api.SubmitReq
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("invalid submit request: %w", err)
	}
	if req.Uuid == "" {
		req.Uuid = uuid.NewString()
	}
	return req, nil
}
