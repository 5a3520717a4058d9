// Package pubsub fans frame, flash and state events out to stream subscribers.
package pubsub

import (
	"sync"

	"github.com/google/uuid"
)

// Topic represents a subscription topic.
type Topic string

const (
	// TopicLightFrame carries a controller.Frame after every engine tick.
	TopicLightFrame Topic = "LIGHT_FRAME"
	// TopicStats carries periodic registry statistics.
	TopicStats Topic = "STATS"
	// TopicFlash carries flash events; the filter is the originating light ID when known.
	TopicFlash Topic = "FLASH"
	// TopicGlobalState carries global intensity, speed and pause changes.
	TopicGlobalState Topic = "GLOBAL_STATE"
)

// Subscriber represents a subscription channel.
type Subscriber struct {
	ID      string
	Topic   Topic
	Filter  string // Optional filter value (e.g., light ID or sync group)
	Channel chan any
}

// PubSub manages subscriptions and message distribution.
type PubSub struct {
	mu          sync.RWMutex
	subscribers map[Topic][]*Subscriber
	closed      bool
}

// New creates a new PubSub instance.
func New() *PubSub {
	return &PubSub{
		subscribers: make(map[Topic][]*Subscriber),
	}
}

// Subscribe creates a new subscription for a topic. After Close the returned
// subscriber's channel is already closed.
func (ps *PubSub) Subscribe(topic Topic, filter string, bufferSize int) *Subscriber {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	sub := &Subscriber{
		ID:      uuid.NewString(),
		Topic:   topic,
		Filter:  filter,
		Channel: make(chan any, bufferSize),
	}
	if ps.closed {
		close(sub.Channel)
		return sub
	}

	ps.subscribers[topic] = append(ps.subscribers[topic], sub)
	return sub
}

// Unsubscribe removes a subscription and closes its channel.
func (ps *PubSub) Unsubscribe(sub *Subscriber) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	subs := ps.subscribers[sub.Topic]
	for i, s := range subs {
		if s.ID == sub.ID {
			close(s.Channel)
			ps.subscribers[sub.Topic] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish sends a message to all subscribers of a topic.
// If filter is non-empty, only sends to subscribers with matching filter or empty filter.
func (ps *PubSub) Publish(topic Topic, filter string, message any) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for _, sub := range ps.subscribers[topic] {
		if sub.Filter == "" || filter == "" || sub.Filter == filter {
			send(sub, message)
		}
	}
}

// PublishAll sends a message to all subscribers of a topic regardless of filter.
func (ps *PubSub) PublishAll(topic Topic, message any) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for _, sub := range ps.subscribers[topic] {
		send(sub, message)
	}
}

// send never blocks; a full subscriber misses the message.
func send(sub *Subscriber, message any) {
	select {
	case sub.Channel <- message:
	default:
	}
}

// SubscriberCount returns the number of subscribers for a topic.
func (ps *PubSub) SubscriberCount(topic Topic) int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.subscribers[topic])
}

// Close closes every subscriber channel. Later publishes are dropped.
func (ps *PubSub) Close() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.closed {
		return
	}
	ps.closed = true
	for topic, subs := range ps.subscribers {
		for _, s := range subs {
			close(s.Channel)
		}
		delete(ps.subscribers, topic)
	}
}
