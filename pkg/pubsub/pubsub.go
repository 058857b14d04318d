package pubsub

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned when subscribing to a shut-down broker
var ErrClosed = errors.New("pubsub: broker closed")

// DefaultBuffer is the per-subscription channel capacity
const DefaultBuffer = 64

// Topic names a stream of notifications
type Topic string

// Topics published by the controller
const (
	TopicState     Topic = "state"
	TopicAnimation Topic = "animation"
	TopicError     Topic = "error"
)

// Broker fans typed messages out to subscribers. Publishing never blocks:
// a subscriber whose buffer is full misses the message, and the miss is counted.
type Broker[T any] struct {
	subscribers map[Topic]map[*Subscription[T]]struct{}
	mu          sync.RWMutex
	shutdown    chan struct{}
	closed      atomic.Bool
	dropped     atomic.Uint64
	buffer      int
}

// Subscription is one subscriber's view of a topic
type Subscription[T any] struct {
	topic     Topic
	channel   chan T
	broker    *Broker[T]
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewBroker creates a broker. buffer <= 0 uses DefaultBuffer.
func NewBroker[T any](buffer int) *Broker[T] {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Broker[T]{
		subscribers: make(map[Topic]map[*Subscription[T]]struct{}),
		shutdown:    make(chan struct{}),
		buffer:      buffer,
	}
}

// Subscribe registers for topic until ctx is done or Unsubscribe is called
func (b *Broker[T]) Subscribe(ctx context.Context, topic Topic) (*Subscription[T], error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription[T]{
		topic:   topic,
		channel: make(chan T, b.buffer),
		broker:  b,
		cancel:  cancel,
	}

	b.mu.Lock()
	if b.subscribers[topic] == nil {
		b.subscribers[topic] = make(map[*Subscription[T]]struct{})
	}
	b.subscribers[topic][sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		select {
		case <-subCtx.Done():
			sub.Unsubscribe()
		case <-b.shutdown:
		}
	}()

	return sub, nil
}

// Publish delivers msg to every subscriber of topic and returns how many received it
func (b *Broker[T]) Publish(topic Topic, msg T) int {
	if b.closed.Load() {
		return 0
	}

	// Sends are non-blocking, so holding the read lock is short. Channels are
	// only closed under the write lock, which rules out a send on a closed channel.
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for sub := range b.subscribers[topic] {
		select {
		case sub.channel <- msg:
			delivered++
		default:
			b.dropped.Add(1)
		}
	}
	return delivered
}

// SubscriberCount returns the number of subscribers for a topic
func (b *Broker[T]) SubscriberCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[topic])
}

// Dropped returns how many deliveries were skipped because a buffer was full
func (b *Broker[T]) Dropped() uint64 {
	return b.dropped.Load()
}

// Shutdown closes every subscription. Further publishes are ignored.
func (b *Broker[T]) Shutdown() {
	if !b.closed.CompareAndSwap(false, true) {
		return
	}
	close(b.shutdown)

	b.mu.Lock()
	for topic, subs := range b.subscribers {
		for sub := range subs {
			sub.close()
		}
		delete(b.subscribers, topic)
	}
	b.mu.Unlock()
}

// Channel returns the subscription's message channel. It is closed on unsubscribe.
func (s *Subscription[T]) Channel() <-chan T {
	return s.channel
}

// Unsubscribe removes the subscription and closes its channel
func (s *Subscription[T]) Unsubscribe() {
	s.cancel()

	s.broker.mu.Lock()
	if subs := s.broker.subscribers[s.topic]; subs != nil {
		delete(subs, s)
		if len(subs) == 0 {
			delete(s.broker.subscribers, s.topic)
		}
	}
	s.close()
	s.broker.mu.Unlock()
}

func (s *Subscription[T]) close() {
	s.closeOnce.Do(func() {
		close(s.channel)
	})
}
