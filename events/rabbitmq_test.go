package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type fakeConfirmation struct {
	done chan struct{}
	ack  bool
}

func (c *fakeConfirmation) resolve(ack bool) {
	c.ack = ack
	close(c.done)
}

func (c *fakeConfirmation) WaitContext(ctx context.Context) (bool, error) {
	select {
	case <-c.done:
		return c.ack, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

type fakeChannel struct {
	mu        sync.Mutex
	published []amqp.Publishing
	keys      []string
	confirms  []*fakeConfirmation
	err       error
}

func (c *fakeChannel) publish(_ context.Context, _ string, key string, msg amqp.Publishing) (confirmation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	conf := &fakeConfirmation{done: make(chan struct{})}
	c.published = append(c.published, msg)
	c.keys = append(c.keys, key)
	c.confirms = append(c.confirms, conf)
	return conf, nil
}

func (c *fakeChannel) Close() error { return nil }

func (c *fakeChannel) confirmation(i int) *fakeConfirmation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.confirms[i]
}

func TestRabbitPublisherWaitsForItsOwnConfirm(t *testing.T) {
	ch := &fakeChannel{}
	pub := &RabbitPublisher{ch: ch, exchange: "pos.events"}
	event := Event{Type: OrderCreated, OrderID: 1, Status: "pending", OccurredAt: time.Now()}

	// Nobody confirms the first publishing before its deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := pub.Publish(ctx, event); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	// A late ack for the first publishing must not be taken as the second one's.
	ch.confirmation(0).resolve(true)
	errc := make(chan error, 1)
	go func() {
		errc <- pub.Publish(context.Background(), Event{Type: OrderStatusChanged, OrderID: 1, Status: "cooking", OccurredAt: time.Now()})
	}()
	waitForPublishings(t, ch, 2)
	ch.confirmation(1).resolve(false)

	if err := <-errc; !errors.Is(err, ErrPublishNacked) {
		t.Fatalf("expected ErrPublishNacked, got %v", err)
	}

	go func() {
		errc <- pub.Publish(context.Background(), event)
	}()
	waitForPublishings(t, ch, 3)
	ch.confirmation(2).resolve(true)
	if err := <-errc; err != nil {
		t.Fatalf("acked publish returned %v", err)
	}

	if ch.keys[1] != "order.status_changed.cooking" {
		t.Fatalf("routing key = %q", ch.keys[1])
	}
	if ch.published[0].ContentType != "application/json" || ch.published[0].DeliveryMode != amqp.Persistent {
		t.Fatalf("unexpected publishing %+v", ch.published[0])
	}
}

func TestRabbitPublisherPublishError(t *testing.T) {
	ch := &fakeChannel{err: amqp.ErrClosed}
	pub := &RabbitPublisher{ch: ch, exchange: "pos.events"}

	err := pub.Publish(context.Background(), Event{Type: OrderCreated, OrderID: 2, OccurredAt: time.Now()})
	if !errors.Is(err, amqp.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func waitForPublishings(t *testing.T, ch *fakeChannel, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ch.mu.Lock()
		got := len(ch.confirms)
		ch.mu.Unlock()
		if got >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d publishings", n)
}
