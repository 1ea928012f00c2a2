package natsgath

import (
	"log/slog"

	"github.com/nats-io/nats.go"
)

// publisher is the part of *nats.Conn the gatherer needs.
type publisher interface {
	Publish(subj string, data []byte) error
}

// New creates a new NATS gatherer that streams events to the given inbox subject.
func New(nc *nats.Conn, uuid string, inbox string, log *slog.Logger) *natsGatherer {
	return newGatherer(nc, uuid, inbox, log)
}

func newGatherer(p publisher, uuid, inbox string, log *slog.Logger) *natsGatherer {
	if log == nil {
		log = slog.Default()
	}
	return &natsGatherer{
		nc:    p,
		inbox: inbox,
		uuid:  uuid,
		log:   log.With("uuid", uuid, "inbox", inbox),
	}
}
