package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// KafkaPublisher writes events keyed by email so that all events for one
// address land on the same partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, logger *logrus.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		MaxAttempts:            1, // retries belong to the dispatcher
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           10 * time.Second,
		AllowAutoTopicCreation: true,
		Logger:                 kafka.LoggerFunc(logger.Debugf),
		ErrorLogger:            kafka.LoggerFunc(logger.Errorf),
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic string, evt UserEvent) error {
	b, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(evt.Email),
		Value: b,
		Time:  time.Now().UTC(),
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// KafkaConsumer reads a topic as part of a consumer group. Offsets are
// committed after the handler returns, whatever its result: a failed handler is
// logged and the message is not redelivered. RabbitConsumer instead requeues
// failed messages after a delay; lifecycle mails are best effort on Kafka.
type KafkaConsumer struct {
	reader *kafka.Reader
	logger *logrus.Logger
}

func NewKafkaConsumer(brokers []string, groupID, topic string, logger *logrus.Logger) *KafkaConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
		Logger:      kafka.LoggerFunc(logger.Debugf),
		ErrorLogger: kafka.LoggerFunc(logger.Errorf),
	})
	return &KafkaConsumer{reader: r, logger: logger}
}

func (c *KafkaConsumer) Run(ctx context.Context, handle HandlerFunc) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		log := c.logger.WithFields(logrus.Fields{
			"topic":     msg.Topic,
			"partition": msg.Partition,
			"offset":    msg.Offset,
		})
		evt, err := Decode(msg.Value)
		if err != nil {
			log.WithError(err).Warn("skipping bad message")
		} else if err := handle(ctx, evt); err != nil {
			log.WithError(err).WithField("kind", evt.Kind).Error("handler failed")
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			log.WithError(err).Warn("commit failed")
		}
	}
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
