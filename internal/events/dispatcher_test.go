package events

import (
	"context"
	"errors"
	"testing"
)

func TestPublishRunsAllHandlersAndJoinsErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")

	calls := 0
	d.Subscribe(EventUserRegistered, func(context.Context, Event) error {
		calls++
		return boom
	})
	d.Subscribe(EventUserRegistered, func(context.Context, Event) error {
		calls++
		return nil
	})
	d.Subscribe(EventPasswordChanged, func(context.Context, Event) error {
		t.Fatal("unrelated handler invoked")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventUserRegistered})
	if calls != 2 {
		t.Fatalf("expected 2 handler calls, got %d", calls)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined handler error, got %v", err)
	}
}

func TestPublishWithoutListeners(t *testing.T) {
	d := NewInMemoryDispatcher()
	if err := d.Publish(context.Background(), Event{Type: EventPasswordChanged}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPublishStopsWhenContextDone(t *testing.T) {
	d := NewInMemoryDispatcher()
	d.Subscribe(EventUserRegistered, func(context.Context, Event) error {
		t.Fatal("handler invoked after cancellation")
		return nil
	})
	d.Subscribe(EventUserRegistered, nil)
	if n := d.HandlerCount(EventUserRegistered); n != 1 {
		t.Fatalf("expected nil handler to be ignored, got %d", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Publish(ctx, Event{Type: EventUserRegistered}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
