package pubsub

import (
	"sync"
	"testing"
	"time"
)

func TestSubscribe(t *testing.T) {
	ps := New()

	sub := ps.Subscribe(TopicLightFrame, "", 10)
	if sub == nil {
		t.Fatal("Subscribe() returned nil")
	}
	if sub.Topic != TopicLightFrame {
		t.Errorf("Expected topic %s, got %s", TopicLightFrame, sub.Topic)
	}
	if sub.ID == "" {
		t.Error("Expected a subscriber ID")
	}
	if cap(sub.Channel) != 10 {
		t.Errorf("Expected channel buffer size 10, got %d", cap(sub.Channel))
	}
	if count := ps.SubscriberCount(TopicLightFrame); count != 1 {
		t.Errorf("Expected 1 subscriber, got %d", count)
	}

	other := ps.Subscribe(TopicLightFrame, "", 10)
	if other.ID == sub.ID {
		t.Error("Subscriber IDs should be unique")
	}
}

func TestUnsubscribe(t *testing.T) {
	ps := New()

	sub := ps.Subscribe(TopicStats, "", 10)
	keep := ps.Subscribe(TopicStats, "", 10)
	ps.Unsubscribe(sub)

	if count := ps.SubscriberCount(TopicStats); count != 1 {
		t.Errorf("Expected 1 subscriber after unsubscribe, got %d", count)
	}

	select {
	case _, ok := <-sub.Channel:
		if ok {
			t.Error("Channel should be closed after unsubscribe")
		}
	default:
		t.Error("Channel should be closed and readable")
	}

	ps.PublishAll(TopicStats, "still here")
	if msg := <-keep.Channel; msg != "still here" {
		t.Errorf("Remaining subscriber got %v", msg)
	}
}

func TestUnsubscribe_NonExistent(t *testing.T) {
	ps := New()

	fakeSub := &Subscriber{
		ID:      "fake-id",
		Topic:   TopicFlash,
		Channel: make(chan any, 1),
	}

	// Should not panic
	ps.Unsubscribe(fakeSub)
}

func TestPublish_WithFilter(t *testing.T) {
	ps := New()

	subWithFilter := ps.Subscribe(TopicFlash, "light-1", 10)
	subOtherFilter := ps.Subscribe(TopicFlash, "light-2", 10)
	subNoFilter := ps.Subscribe(TopicFlash, "", 10)

	ps.Publish(TopicFlash, "light-1", "flash light-1")

	select {
	case msg := <-subWithFilter.Channel:
		if msg != "flash light-1" {
			t.Errorf("Expected 'flash light-1', got '%v'", msg)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("subWithFilter should have received the message")
	}

	select {
	case <-subOtherFilter.Channel:
		t.Error("subOtherFilter should not have received the message")
	default:
	}

	select {
	case msg := <-subNoFilter.Channel:
		if msg != "flash light-1" {
			t.Errorf("Expected 'flash light-1', got '%v'", msg)
		}
	default:
		t.Error("subNoFilter should have received the message")
	}

	// An empty publish filter reaches every subscriber.
	ps.Publish(TopicFlash, "", "area flash")
	if msg := <-subOtherFilter.Channel; msg != "area flash" {
		t.Errorf("Expected 'area flash', got '%v'", msg)
	}
}

func TestPublish_ChannelFull(t *testing.T) {
	ps := New()
	sub := ps.Subscribe(TopicLightFrame, "", 1)

	ps.Publish(TopicLightFrame, "", "frame1")

	done := make(chan bool, 1)
	go func() {
		ps.Publish(TopicLightFrame, "", "frame2") // Dropped
		ps.PublishAll(TopicLightFrame, "frame3")  // Dropped
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Error("Publish blocked on full channel")
	}

	if msg := <-sub.Channel; msg != "frame1" {
		t.Errorf("Expected 'frame1', got '%v'", msg)
	}
}

func TestPublishAll_IgnoresFilters(t *testing.T) {
	ps := New()

	sub1 := ps.Subscribe(TopicGlobalState, "a", 10)
	sub2 := ps.Subscribe(TopicGlobalState, "b", 10)
	sub3 := ps.Subscribe(TopicGlobalState, "", 10)

	ps.PublishAll(TopicGlobalState, "paused")

	for i, sub := range []*Subscriber{sub1, sub2, sub3} {
		select {
		case msg := <-sub.Channel:
			if msg != "paused" {
				t.Errorf("Subscriber %d: Expected 'paused', got '%v'", i, msg)
			}
		default:
			t.Errorf("Subscriber %d missed the message", i)
		}
	}
}

func TestClose(t *testing.T) {
	ps := New()
	sub := ps.Subscribe(TopicLightFrame, "", 1)

	ps.Close()
	ps.Close()

	if _, ok := <-sub.Channel; ok {
		t.Error("Close should close subscriber channels")
	}
	if count := ps.SubscriberCount(TopicLightFrame); count != 0 {
		t.Errorf("Expected 0 subscribers after close, got %d", count)
	}

	late := ps.Subscribe(TopicLightFrame, "", 1)
	if _, ok := <-late.Channel; ok {
		t.Error("Subscribing after close should yield a closed channel")
	}

	// Publishing after close is a no-op.
	ps.PublishAll(TopicLightFrame, "ignored")
}

func TestConcurrentOperations(t *testing.T) {
	ps := New()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := ps.Subscribe(TopicLightFrame, "", 10)
			select {
			case <-sub.Channel:
			case <-time.After(200 * time.Millisecond):
			}
			ps.Unsubscribe(sub)
		}()
	}

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ps.Publish(TopicLightFrame, "", i)
		}(i)
	}

	wg.Wait()
}

func TestTopicConstants(t *testing.T) {
	topics := []Topic{TopicLightFrame, TopicStats, TopicFlash, TopicGlobalState}

	seen := make(map[Topic]bool)
	for _, topic := range topics {
		if seen[topic] {
			t.Errorf("Duplicate topic: %s", topic)
		}
		seen[topic] = true
	}
}
