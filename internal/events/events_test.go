package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestDispatcherRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.Subscribe(EventTicketCreated, func(ctx context.Context, e Event) error {
		calls = append(calls, "first")
		return errors.New("first failed")
	})
	d.Subscribe(EventTicketCreated, func(ctx context.Context, e Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventTicketUpdated, func(ctx context.Context, e Event) error {
		calls = append(calls, "other")
		return nil
	})

	d.SubscribeAll(func(ctx context.Context, e Event) error {
		calls = append(calls, "all:"+string(e.Type))
		panic("boom")
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketCreated})
	if err == nil {
		t.Fatal("expected joined handler error")
	}
	if !strings.Contains(err.Error(), "first failed") || !strings.Contains(err.Error(), "panic: boom") {
		t.Fatalf("err = %v", err)
	}
	want := "[first second all:ticket_created]"
	if fmt.Sprint(calls) != want {
		t.Fatalf("calls = %v, want %s", calls, want)
	}

	calls = nil
	_ = d.Publish(context.Background(), Event{Type: EventContactCreated})
	if fmt.Sprint(calls) != "[all:contact_created]" {
		t.Fatalf("catch-all calls = %v", calls)
	}
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisherDisabledWithoutBrokers(t *testing.T) {
	p := NewKafkaPublisher(nil, "crm.events")
	if p.Enabled() {
		t.Fatal("publisher without brokers should be disabled")
	}
	if err := p.Publish(context.Background(), Event{Type: EventTicketCreated}); err != nil {
		t.Fatalf("disabled publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("disabled close: %v", err)
	}
}

func TestKafkaPublisherWritesKeyedMessage(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}

	event := Event{ID: "e1", Type: EventTicketStatusChanged, EntityID: "t1", Payload: TicketStatusChangedPayload{NewStatus: "resolved"}}
	if err := p.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "t1" {
		t.Fatalf("key = %q", msg.Key)
	}
	var decoded map[string]any
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["type"] != string(EventTicketStatusChanged) {
		t.Fatalf("type = %v", decoded["type"])
	}

	w.err = errors.New("broker down")
	if err := p.Publish(context.Background(), event); err == nil {
		t.Fatal("expected write error")
	}
	_ = p.Close()
	if !w.closed {
		t.Fatal("writer not closed")
	}
}

func TestActorFromContext(t *testing.T) {
	if ActorFromContext(context.Background()).ProfileID != nil {
		t.Fatal("expected system actor")
	}
	ctx := WithActor(context.Background(), "p1")
	actor := ActorFromContext(ctx)
	if actor.ProfileID == nil || *actor.ProfileID != "p1" {
		t.Fatalf("actor = %+v", actor)
	}
	if ActorFromContext(WithActor(context.Background(), "")).ProfileID != nil {
		t.Fatal("empty profile id should stay the system actor")
	}
}
