package natsgath

import (
	"encoding/json"

	"github.com/lmittmann/tint"
)

func (s *natsGatherer) send(msg any) {
	b, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("failed to marshal message", tint.Err(err))
		return
	}

	if err := s.nc.Publish(s.inbox, b); err != nil {
		s.log.Error("failed to publish message to NATS", tint.Err(err))
	}
}
