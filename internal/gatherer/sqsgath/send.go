package sqsgath

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/lmittmann/tint"
)

func (s *sqsResQueueGatherer) send(msg any) {
	b, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("failed to marshal message", tint.Err(err))
		return
	}

	in := &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueUrl),
		MessageBody: aws.String(string(b)),
	}
	// FIFO queues keep one request's events in order.
	if strings.HasSuffix(s.queueUrl, ".fifo") {
		s.seq++
		in.MessageGroupId = aws.String(s.uuid)
		in.MessageDeduplicationId = aws.String(fmt.Sprintf("%s-%d", s.uuid, s.seq))
	}

	if _, err := s.sqsClient.SendMessage(s.ctx, in); err != nil {
		s.log.Error("failed to send message", "queue", s.queueUrl, tint.Err(err))
	}
}
