package events

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDispatcher_DeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())
	ctx := context.Background()

	var got []EventType
	d.Subscribe(EventSessionCreated, func(_ context.Context, e Event) error {
		got = append(got, e.Type)
		return nil
	})
	d.Subscribe(EventSessionCreated, func(_ context.Context, e Event) error {
		return errors.New("webhook down")
	})
	d.Subscribe(EventSessionCreated, func(_ context.Context, e Event) error {
		got = append(got, e.Type)
		return nil
	})

	err := d.Publish(ctx, NewEvent(EventSessionCreated, "acc-1", SessionPayload{AccountID: "acc-1"}))
	if err != nil {
		t.Fatalf("Publish() error = %v, want nil", err)
	}
	if len(got) != 2 {
		t.Errorf("handlers invoked = %d, want 2 (failure must not stop delivery)", len(got))
	}
}

func TestDispatcher_ContainsHandlerPanics(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	d := NewInMemoryDispatcher(zap.New(core))

	delivered := false
	d.Subscribe(EventCatalogDegraded, func(context.Context, Event) error {
		panic("template missing")
	})
	d.Subscribe(EventCatalogDegraded, func(context.Context, Event) error {
		delivered = true
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventCatalogDegraded, "products_50_", CatalogDegradedPayload{Key: "products_50_"}))
	if err != nil {
		t.Fatalf("Publish() error = %v, want nil", err)
	}
	if !delivered {
		t.Error("handler after the panicking one was not invoked")
	}
	entries := logs.FilterMessage("event handler failed").All()
	if len(entries) != 1 || entries[0].ContextMap()["subject"] != "products_50_" {
		t.Errorf("warn entries = %+v, want one for subject products_50_", entries)
	}
}

func TestDispatcher_IgnoresOtherTypes(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	called := false
	d.Subscribe(EventCatalogRefreshed, func(context.Context, Event) error {
		called = true
		return nil
	})
	_ = d.Publish(context.Background(), NewEvent(EventAccountCreated, "acc-1", nil))

	if called {
		t.Error("handler for another event type was invoked")
	}
}

func TestNewEvent_StampsIDAndTime(t *testing.T) {
	a := NewEvent(EventProductCreated, "p-1", nil)
	b := NewEvent(EventProductCreated, "p-1", nil)

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("NewEvent() ids = %q, %q, want unique non-empty", a.ID, b.ID)
	}
	if a.Timestamp.IsZero() {
		t.Error("NewEvent() Timestamp is zero")
	}
}
