package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/lmittmann/tint"
	"github.com/programme-lv/ojuzman/internal/gatherer/sqsgath"
	"github.com/programme-lv/ojuzman/internal/submitter"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func pollSQSCommand() *cli.Command {
	return &cli.Command{
		Name:  "poll-sqs",
		Usage: "take submit requests from an SQS queue and send progress to the response queue",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			if a.cfg.SQS.RequestQueueURL == "" {
				return errors.New("sqs.request_queue_url is not set")
			}
			if err := a.pool.Initialize(ctx, a.cfg.Credentials()); err != nil {
				a.close()
				return err
			}
			defer a.close()

			client, err := sqsgath.NewClient(ctx, a.cfg.SQS.Region)
			if err != nil {
				return err
			}
			return a.pollSQS(ctx, client)
		},
	}
}

// queueClient is the part of *sqs.Client the poller uses.
type queueClient interface {
	sqsgath.Sender
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

func (a *app) pollSQS(ctx context.Context, client queueClient) error {
	sub := a.submitter()
	var g errgroup.Group
	g.SetLimit(2 * a.pool.Size())

	a.log.Info("polling for submit requests", "queue", a.cfg.SQS.RequestQueueURL)
	for ctx.Err() == nil {
		out, err := client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(a.cfg.SQS.RequestQueueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     a.cfg.SQS.WaitSeconds,
		})
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			a.log.Warn("failed to receive messages", tint.Err(err))
			time.Sleep(time.Second)
			continue
		}

		for _, m := range out.Messages {
			g.Go(func() error {
				a.handleSQSMessage(ctx, client, sub, m)
				return nil
			})
		}
	}
	return g.Wait()
}

// handleSQSMessage deletes the request once it is handled. Requests cut
// short by shutdown are left on the queue for redelivery.
func (a *app) handleSQSMessage(ctx context.Context, client queueClient, sub *submitter.Submitter, m types.Message) {
	req, err := decodeSubmitReq([]byte(aws.ToString(m.Body)))
	if err != nil {
		a.log.Warn("dropping malformed request", "message_id", aws.ToString(m.MessageId), tint.Err(err))
		a.deleteSQSMessage(client, m)
		return
	}
	resURL := a.cfg.SQS.ResponseQueueURL
	if req.ResSqsUrl != nil && *req.ResSqsUrl != "" {
		resURL = *req.ResSqsUrl
	}
	if resURL == "" {
		a.log.Warn("dropping request without response queue", "uuid", req.Uuid)
		a.deleteSQSMessage(client, m)
		return
	}

	gath := sqsgath.New(ctx, client, req.Uuid, resURL, a.log)
	err = sub.Process(ctx, req, gath)
	if err != nil && (errors.Is(err, context.Canceled) || ctx.Err() != nil) {
		a.log.Info("request interrupted, leaving it on the queue", "uuid", req.Uuid, tint.Err(err))
		return
	}
	if err != nil {
		a.log.Debug("request finished with error", "uuid", req.Uuid, tint.Err(err))
	}
	a.deleteSQSMessage(client, m)
}

// deleteSQSMessage runs even after shutdown began so finished work is not redelivered.
func (a *app) deleteSQSMessage(client queueClient, m types.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(a.cfg.SQS.RequestQueueURL),
		ReceiptHandle: m.ReceiptHandle,
	})
	if err != nil {
		a.log.Error(fmt.Sprintf("failed to delete message %s", aws.ToString(m.MessageId)), tint.Err(err))
	}
}
