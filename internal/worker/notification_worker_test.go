package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/spec-kit/merchant-crm/internal/events"
)

type recordingSink struct {
	mu     sync.Mutex
	events []events.Event
	err    error
	closed bool
}

func (r *recordingSink) Publish(ctx context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingSink) Close() error {
	r.closed = true
	return nil
}

func TestPublishWorkerFlushesOnClose(t *testing.T) {
	sink := &recordingSink{err: errors.New("ignored")}
	w := NewPublishWorker(sink, 8, nil)
	w.Start()

	for _, id := range []string{"e1", "e2", "e3"} {
		if err := w.Publish(context.Background(), events.Event{ID: id}); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(sink.events) != 3 || sink.events[2].ID != "e3" {
		t.Fatalf("events = %+v", sink.events)
	}
	if !sink.closed {
		t.Fatal("sink not closed")
	}
}

func TestPublishWorkerDropsWhenFull(t *testing.T) {
	sink := &recordingSink{}
	w := NewPublishWorker(sink, 1, nil)

	_ = w.Publish(context.Background(), events.Event{ID: "kept"})
	_ = w.Publish(context.Background(), events.Event{ID: "dropped"})

	w.Start()
	_ = w.Close()
	if len(sink.events) != 1 || sink.events[0].ID != "kept" {
		t.Fatalf("events = %+v", sink.events)
	}
}
