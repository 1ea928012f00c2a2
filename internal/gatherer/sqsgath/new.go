package sqsgath

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// Sender is the part of *sqs.Client the gatherer needs.
type Sender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// NewClient loads the default AWS credential chain for region.
func NewClient(ctx context.Context, region string) (*sqs.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return sqs.NewFromConfig(cfg), nil
}

// New streams events for one request to the response queue.
// ctx bounds every SendMessage call.
func New(ctx context.Context, client Sender, uuid, responseQueueURL string, log *slog.Logger) *sqsResQueueGatherer {
	if log == nil {
		log = slog.Default()
	}
	return &sqsResQueueGatherer{
		ctx:       ctx,
		sqsClient: client,
		queueUrl:  responseQueueURL,
		uuid:      uuid,
		log:       log.With("uuid", uuid),
	}
}
