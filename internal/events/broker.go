package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-lifecycle-api/pkg/helpers"
)

// Publisher delivers a single event to a named topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, evt UserEvent) error
	Close() error
}

// HandlerFunc processes one consumed event.
type HandlerFunc func(ctx context.Context, evt UserEvent) error

// Consumer feeds events from a topic into a handler until ctx is done.
type Consumer interface {
	Run(ctx context.Context, handle HandlerFunc) error
	Close() error
}

const (
	BrokerKafka    = "kafka"
	BrokerRabbitMQ = "rabbitmq"
	BrokerNone     = "none"
)

// BrokerConfig selects and configures the event transport.
type BrokerConfig struct {
	Broker       string
	Topic        string
	KafkaBrokers []string
	KafkaGroupID string
	RabbitMQURL  string
	Prefetch     int
	// RequeueDelay paces RabbitMQ redelivery of messages whose handler failed.
	RequeueDelay time.Duration
}

func NewPublisher(cfg BrokerConfig, logger *logrus.Logger) (Publisher, error) {
	switch strings.ToLower(cfg.Broker) {
	case BrokerKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("kafka publisher: no brokers configured")
		}
		return NewKafkaPublisher(cfg.KafkaBrokers, logger), nil
	case BrokerRabbitMQ:
		client, err := helpers.NewRabbitClient(cfg.RabbitMQURL)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq publisher: %w", err)
		}
		return NewRabbitPublisher(client), nil
	case BrokerNone, "":
		return NewLogPublisher(logger), nil
	default:
		return nil, fmt.Errorf("unknown event broker %q", cfg.Broker)
	}
}

func NewConsumer(cfg BrokerConfig, logger *logrus.Logger) (Consumer, error) {
	topic := cfg.Topic
	if topic == "" {
		topic = TopicUserEvents
	}
	switch strings.ToLower(cfg.Broker) {
	case BrokerKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("kafka consumer: no brokers configured")
		}
		return NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, topic, logger), nil
	case BrokerRabbitMQ:
		client, err := helpers.NewRabbitClient(cfg.RabbitMQURL)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq consumer: %w", err)
		}
		return NewRabbitConsumer(client, topic, cfg.Prefetch, cfg.RequeueDelay, logger), nil
	default:
		return nil, fmt.Errorf("event broker %q cannot be consumed", cfg.Broker)
	}
}
