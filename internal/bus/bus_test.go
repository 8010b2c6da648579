package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("undo.", 10)
	defer unsub()

	b.Emit(UndoArmed, "token")

	select {
	case evt := <-ch:
		if evt.Kind != UndoArmed {
			t.Errorf("got kind %q, want %s", evt.Kind, UndoArmed)
		}
		if evt.Timestamp.IsZero() {
			t.Error("Emit did not stamp the event")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("action.", 10)
	defer unsub()

	b.Publish(Event{Kind: DialogsChanged})
	b.Publish(Event{Kind: ActionCommitted})

	select {
	case evt := <-ch:
		if evt.Kind != ActionCommitted {
			t.Errorf("got kind %q, want %s", evt.Kind, ActionCommitted)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("list.", 10)
	unsub()

	b.Publish(Event{Kind: PhaseChanged})

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("remote.", 1)
	defer unsub()

	b.Publish(Event{Kind: RemoteUpsert})
	b.Publish(Event{Kind: RemoteRemove})

	evt := <-ch
	if evt.Kind != RemoteUpsert {
		t.Errorf("got %q, want %s", evt.Kind, RemoteUpsert)
	}
	if b.Dropped() != 1 {
		t.Errorf("dropped = %d, want 1", b.Dropped())
	}
}

func TestEmitOnNilBus(t *testing.T) {
	var b *Bus
	b.Emit(StatusChanged, nil)
}
