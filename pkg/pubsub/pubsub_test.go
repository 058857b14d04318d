package pubsub

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type change struct {
	Seq    uint64
	Reason string
}

func TestBasicPubSub(t *testing.T) {
	b := NewBroker[change](0)
	defer b.Shutdown()

	sub, err := b.Subscribe(context.Background(), TopicState)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	if n := b.Publish(TopicState, change{Seq: 1, Reason: "select_path"}); n != 1 {
		t.Errorf("Expected 1 delivery, got %d", n)
	}

	select {
	case msg := <-sub.Channel():
		if msg.Seq != 1 || msg.Reason != "select_path" {
			t.Errorf("Unexpected message %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for message")
	}
	sub.Unsubscribe()
}

func TestTopicIsolation(t *testing.T) {
	b := NewBroker[string](0)
	defer b.Shutdown()

	state, _ := b.Subscribe(context.Background(), TopicState)
	anim, _ := b.Subscribe(context.Background(), TopicAnimation)

	b.Publish(TopicAnimation, "tick")

	select {
	case msg := <-anim.Channel():
		if msg != "tick" {
			t.Errorf("Expected tick, got %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for animation message")
	}

	select {
	case msg := <-state.Channel():
		t.Errorf("State subscriber received %q from another topic", msg)
	default:
	}
}

func TestFullBufferDrops(t *testing.T) {
	b := NewBroker[int](2)
	defer b.Shutdown()

	sub, _ := b.Subscribe(context.Background(), TopicState)
	for i := 0; i < 5; i++ {
		b.Publish(TopicState, i)
	}

	if b.Dropped() != 3 {
		t.Errorf("Expected 3 dropped, got %d", b.Dropped())
	}
	if got := <-sub.Channel(); got != 0 {
		t.Errorf("Expected oldest buffered message 0, got %d", got)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker[int](0)
	defer b.Shutdown()

	sub, _ := b.Subscribe(context.Background(), TopicState)
	sub.Unsubscribe()
	sub.Unsubscribe()

	if _, ok := <-sub.Channel(); ok {
		t.Error("Expected closed channel after unsubscribe")
	}
	if b.SubscriberCount(TopicState) != 0 {
		t.Errorf("Expected 0 subscribers, got %d", b.SubscriberCount(TopicState))
	}
}

func TestContextCancellation(t *testing.T) {
	b := NewBroker[int](0)
	defer b.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	sub, _ := b.Subscribe(ctx, TopicState)
	cancel()

	select {
	case _, ok := <-sub.Channel():
		if ok {
			t.Error("Expected channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for cancellation")
	}
}

func TestConcurrentPublishAndUnsubscribe(t *testing.T) {
	b := NewBroker[int](4)
	defer b.Shutdown()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		sub, _ := b.Subscribe(context.Background(), TopicState)
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				b.Publish(TopicState, j)
			}
		}()
		go func() {
			defer wg.Done()
			sub.Unsubscribe()
		}()
	}
	wg.Wait()
}

func TestShutdown(t *testing.T) {
	b := NewBroker[int](0)
	sub, _ := b.Subscribe(context.Background(), TopicError)

	b.Shutdown()
	b.Shutdown()

	if _, ok := <-sub.Channel(); ok {
		t.Error("Expected channel closed after shutdown")
	}
	if n := b.Publish(TopicError, 1); n != 0 {
		t.Errorf("Expected no deliveries after shutdown, got %d", n)
	}
	if _, err := b.Subscribe(context.Background(), TopicError); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}
