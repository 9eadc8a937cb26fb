package events

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu        sync.Mutex
	failFirst int
	calls     int
	published []UserEvent
	topics    []string
}

func (p *fakePublisher) Publish(_ context.Context, topic string, evt UserEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls <= p.failFirst {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, evt)
	p.topics = append(p.topics, topic)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) snapshot() (int, []UserEvent, []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls, append([]UserEvent(nil), p.published...), append([]string(nil), p.topics...)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestDispatcherDeliversToTopic(t *testing.T) {
	pub := &fakePublisher{}
	d := NewDispatcher(pub, quietLogger(), DispatcherConfig{Workers: 2})
	d.Start(context.Background())

	d.Emit(UserCreated("a@test.com"))
	d.Emit(UserDeleted("a@test.com"))
	d.Close()

	calls, got, topics := pub.snapshot()
	assert.Equal(t, 2, calls)
	assert.ElementsMatch(t, []UserEvent{UserCreated("a@test.com"), UserDeleted("a@test.com")}, got)
	assert.Equal(t, []string{TopicUserEvents, TopicUserEvents}, topics)
}

func TestDispatcherRetries(t *testing.T) {
	t.Run("SucceedsWithinAttempts", func(t *testing.T) {
		pub := &fakePublisher{failFirst: 2}
		d := NewDispatcher(pub, quietLogger(), DispatcherConfig{MaxAttempts: 3, Backoff: time.Millisecond})
		d.Start(context.Background())

		d.Emit(UserCreated("retry@test.com"))
		d.Close()

		calls, got, _ := pub.snapshot()
		assert.Equal(t, 3, calls)
		assert.Equal(t, []UserEvent{UserCreated("retry@test.com")}, got)
	})

	t.Run("GivesUpAfterMaxAttempts", func(t *testing.T) {
		failures := testutil.ToFloat64(eventsPublished.WithLabelValues(string(KindUserDeleted), "failure"))

		pub := &fakePublisher{failFirst: 100}
		d := NewDispatcher(pub, quietLogger(), DispatcherConfig{MaxAttempts: 2})
		d.Start(context.Background())

		d.Emit(UserDeleted("lost@test.com"))
		d.Close()

		calls, got, _ := pub.snapshot()
		assert.Equal(t, 2, calls)
		assert.Empty(t, got)
		assert.Equal(t, failures+1, testutil.ToFloat64(eventsPublished.WithLabelValues(string(KindUserDeleted), "failure")))
	})

	t.Run("CancelledContextStopsBackoff", func(t *testing.T) {
		pub := &fakePublisher{failFirst: 100}
		d := NewDispatcher(pub, quietLogger(), DispatcherConfig{MaxAttempts: 5, Backoff: time.Hour})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		d.Start(ctx)

		d.Emit(UserCreated("x@test.com"))
		d.Close()

		calls, _, _ := pub.snapshot()
		assert.Equal(t, 1, calls)
	})
}

func TestDispatcherEmitNeverBlocks(t *testing.T) {
	dropped := testutil.ToFloat64(eventsDropped.WithLabelValues(string(KindUserCreated), "queue_full"))

	pub := &fakePublisher{}
	d := NewDispatcher(pub, quietLogger(), DispatcherConfig{QueueSize: 1})

	done := make(chan struct{})
	go func() {
		d.Emit(UserCreated("first@test.com"))
		d.Emit(UserCreated("second@test.com"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a full queue")
	}

	assert.Equal(t, dropped+1, testutil.ToFloat64(eventsDropped.WithLabelValues(string(KindUserCreated), "queue_full")))

	d.Start(context.Background())
	d.Close()
	_, got, _ := pub.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, "first@test.com", got[0].Email)
}

func TestDispatcherDropsAfterClose(t *testing.T) {
	pub := &fakePublisher{}
	d := NewDispatcher(pub, quietLogger(), DispatcherConfig{})
	d.Start(context.Background())
	d.Close()
	d.Close()

	d.Emit(UserCreated("late@test.com"))
	calls, _, _ := pub.snapshot()
	assert.Zero(t, calls)
}

func TestLogPublisher(t *testing.T) {
	p := NewLogPublisher(quietLogger())
	assert.NoError(t, p.Publish(context.Background(), TopicUserEvents, UserCreated("a@b.c")))
	assert.NoError(t, p.Close())
}

func TestNewPublisherSelectsBroker(t *testing.T) {
	p, err := NewPublisher(BrokerConfig{Broker: BrokerNone}, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &LogPublisher{}, p)

	p, err = NewPublisher(BrokerConfig{Broker: "KAFKA", KafkaBrokers: []string{"localhost:9092"}}, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &KafkaPublisher{}, p)
	assert.NoError(t, p.Close())

	_, err = NewPublisher(BrokerConfig{Broker: BrokerKafka}, quietLogger())
	assert.Error(t, err)

	_, err = NewPublisher(BrokerConfig{Broker: "carrier-pigeon"}, quietLogger())
	assert.Error(t, err)

	_, err = NewConsumer(BrokerConfig{Broker: BrokerNone}, quietLogger())
	assert.Error(t, err)
}
