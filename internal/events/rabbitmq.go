package events

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-lifecycle-api/pkg/helpers"
)

// RabbitPublisher maps a topic onto a durable queue of the same name.
type RabbitPublisher struct {
	client *helpers.RabbitClient
}

func NewRabbitPublisher(client *helpers.RabbitClient) *RabbitPublisher {
	return &RabbitPublisher{client: client}
}

func (p *RabbitPublisher) Publish(ctx context.Context, topic string, evt UserEvent) error {
	return p.client.PublishJSON(ctx, topic, evt)
}

func (p *RabbitPublisher) Close() error {
	p.client.Close()
	return nil
}

const defaultRequeueDelay = 2 * time.Second

// RabbitConsumer acks handled messages and drops undecodable ones. A message
// whose handler failed is requeued after RequeueDelay, so a failing mail
// provider is retried at that pace instead of in a tight loop. This differs
// from KafkaConsumer, which commits failed messages and moves on. When the
// connection drops, Run waits RequeueDelay and consumes again.
type RabbitConsumer struct {
	client       *helpers.RabbitClient
	queue        string
	prefetch     int
	RequeueDelay time.Duration
	logger       *logrus.Logger
}

func NewRabbitConsumer(client *helpers.RabbitClient, queue string, prefetch int, requeueDelay time.Duration, logger *logrus.Logger) *RabbitConsumer {
	if requeueDelay <= 0 {
		requeueDelay = defaultRequeueDelay
	}
	return &RabbitConsumer{client: client, queue: queue, prefetch: prefetch, RequeueDelay: requeueDelay, logger: logger}
}

func (c *RabbitConsumer) Run(ctx context.Context, handle HandlerFunc) error {
	for {
		msgs, err := c.client.Consume(c.queue, c.prefetch)
		if err != nil {
			return err
		}
		if done := c.drain(ctx, msgs, handle); done {
			return nil
		}
		c.logger.WithField("queue", c.queue).Warn("delivery channel closed, reconnecting")
		if !waitOrDone(ctx, c.RequeueDelay) {
			return nil
		}
	}
}

// drain reports true when ctx ended, false when the delivery channel closed.
func (c *RabbitConsumer) drain(ctx context.Context, msgs <-chan amqp.Delivery, handle HandlerFunc) bool {
	for {
		select {
		case <-ctx.Done():
			return true
		case msg, ok := <-msgs:
			if !ok {
				return false
			}
			c.process(ctx, msg, handle)
		}
	}
}

func (c *RabbitConsumer) process(ctx context.Context, msg amqp.Delivery, handle HandlerFunc) {
	evt, err := Decode(msg.Body)
	if err != nil {
		c.logger.WithError(err).WithField("queue", c.queue).Warn("bad message")
		_ = msg.Nack(false, false)
		return
	}
	if err := handle(ctx, evt); err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{"kind": evt.Kind, "delay": c.RequeueDelay}).Error("handler failed, requeueing")
		waitOrDone(ctx, c.RequeueDelay)
		_ = msg.Nack(false, true)
		return
	}
	_ = msg.Ack(false)
}

// waitOrDone sleeps for d and reports false if ctx ended first.
func waitOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *RabbitConsumer) Close() error {
	c.client.Close()
	return nil
}
