package events

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogPublisher records events in the log instead of sending them anywhere.
type LogPublisher struct {
	logger *logrus.Logger
}

func NewLogPublisher(logger *logrus.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, topic string, evt UserEvent) error {
	p.logger.WithFields(logrus.Fields{
		"topic": topic,
		"kind":  evt.Kind,
		"email": evt.Email,
	}).Info("user event")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
