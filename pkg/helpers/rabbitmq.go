package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrRabbitClosed is returned once Close has been called.
var ErrRabbitClosed = errors.New("rabbitmq client closed")

// amqpChannel is the part of *amqp.Channel the client uses.
type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	IsClosed() bool
	Close() error
}

type dialFunc func(url string) (io.Closer, amqpChannel, error)

func dialAMQP(url string) (io.Closer, amqpChannel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

// RabbitClient wraps an AMQP connection and channel. Queues are declared durable
// on first use. The channel is guarded because amqp channels are not safe for
// concurrent publishing. A closed channel is redialed on the next call.
type RabbitClient struct {
	mu       sync.Mutex
	url      string
	dial     dialFunc
	conn     io.Closer
	ch       amqpChannel
	declared map[string]bool
	closed   bool
}

func NewRabbitClient(url string) (*RabbitClient, error) {
	return newRabbitClient(url, dialAMQP)
}

func newRabbitClient(url string, dial dialFunc) (*RabbitClient, error) {
	c := &RabbitClient{url: url, dial: dial}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.openLocked(); err != nil {
		return nil, err
	}
	return c, nil
}

// openLocked (re)connects when there is no usable channel.
func (c *RabbitClient) openLocked() error {
	if c.closed {
		return ErrRabbitClosed
	}
	if c.ch != nil && !c.ch.IsClosed() {
		return nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn, c.ch = nil, nil

	conn, ch, err := c.dial(c.url)
	if err != nil {
		return fmt.Errorf("amqp connect: %w", err)
	}
	c.conn, c.ch = conn, ch
	c.declared = map[string]bool{}
	return nil
}

func (c *RabbitClient) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// EnsureQueue declares a durable queue once per connection.
func (c *RabbitClient) EnsureQueue(queue string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.openLocked(); err != nil {
		return err
	}
	return c.ensureQueueLocked(queue)
}

func (c *RabbitClient) ensureQueueLocked(queue string) error {
	if c.declared[queue] {
		return nil
	}
	_, err := c.ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return err
	}
	c.declared[queue] = true
	return nil
}

// PublishJSON publishes a JSON-encoded message to queue through the default exchange.
func (c *RabbitClient) PublishJSON(ctx context.Context, queue string, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.openLocked(); err != nil {
		return err
	}
	if err := c.ensureQueueLocked(queue); err != nil {
		return err
	}
	return c.ch.PublishWithContext(ctx,
		"",    // default exchange
		queue, // routing key = queue
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         b,
		},
	)
}

// Consume starts a manual-ack consumer on queue with the given prefetch. The
// returned channel closes when the connection drops; call Consume again to
// resume on a fresh connection.
func (c *RabbitClient) Consume(queue string, prefetch int) (<-chan amqp.Delivery, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.openLocked(); err != nil {
		return nil, err
	}
	if err := c.ensureQueueLocked(queue); err != nil {
		return nil, err
	}
	if prefetch > 0 {
		if err := c.ch.Qos(prefetch, 0, false); err != nil {
			return nil, err
		}
	}
	return c.ch.Consume(queue, "", false, false, false, false, nil)
}
