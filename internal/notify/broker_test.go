package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func receive(t *testing.T, ch <-chan []byte) Message {
	t.Helper()
	select {
	case data, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed")
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for message")
	}
	return Message{}
}

func TestLocalBrokerDeliversToSessionSubscribers(t *testing.T) {
	b := NewLocalBroker(nil)
	ctx := context.Background()

	a, cancelA, err := b.Subscribe(ctx, "s1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancelA()
	other, cancelOther, _ := b.Subscribe(ctx, "s2")
	defer cancelOther()

	if err := b.Publish(ctx, Message{Type: TypeDocument, Status: StatusUpdated, SessionID: "s1", Revision: 3}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	msg := receive(t, a)
	if msg.Revision != 3 || msg.Type != TypeDocument {
		t.Fatalf("unexpected message %+v", msg)
	}
	select {
	case data := <-other:
		t.Fatalf("unexpected cross-session message %s", data)
	default:
	}
}

func TestLocalBrokerCancelClosesChannel(t *testing.T) {
	b := NewLocalBroker(nil)
	ch, cancel, _ := b.Subscribe(context.Background(), "s1")
	if b.Subscribers("s1") != 1 {
		t.Fatalf("expected 1 subscriber")
	}
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	if b.Subscribers("s1") != 0 {
		t.Fatalf("expected subscriber to be removed")
	}
	if err := b.Publish(context.Background(), Message{SessionID: "s1"}); err != nil {
		t.Fatalf("publish after cancel: %v", err)
	}
}

func TestLocalBrokerContextCancel(t *testing.T) {
	b := NewLocalBroker(nil)
	ctx, cancel := context.WithCancel(context.Background())
	ch, _, _ := b.Subscribe(ctx, "s1")
	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatalf("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatalf("subscription not cancelled with context")
	}
}

func TestLocalBrokerDropsWhenSubscriberIsFull(t *testing.T) {
	b := NewLocalBroker(nil)
	ch, cancel, _ := b.Subscribe(context.Background(), "s1")
	defer cancel()
	for i := 0; i < subscriberBuffer+5; i++ {
		if err := b.Publish(context.Background(), Message{SessionID: "s1", Revision: uint64(i)}); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	if len(ch) != subscriberBuffer {
		t.Fatalf("expected %d buffered got %d", subscriberBuffer, len(ch))
	}
}

func TestChannel(t *testing.T) {
	if got := Channel("abc"); got != "cv_session:abc" {
		t.Fatalf("unexpected channel %q", got)
	}
}
