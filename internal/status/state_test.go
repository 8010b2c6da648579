package status

import (
	"testing"
	"time"

	"github.com/matheus3301/dialogs/internal/bus"
)

func TestInitialState(t *testing.T) {
	m := NewMachine(nil)
	if m.Current() != Booting {
		t.Errorf("initial state = %s, want BOOTING", m.Current())
	}
}

func TestValidTransitions(t *testing.T) {
	tests := []struct {
		from State
		to   State
	}{
		{Booting, Migrating},
		{Booting, Error},
		{Migrating, Loading},
		{Loading, Ready},
		{Loading, Degraded},
		{Ready, Degraded},
		{Degraded, Ready},
		{Ready, Stopping},
		{Error, Booting},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			m := NewMachine(nil)
			walkTo(t, m, tt.from)
			if err := m.Transition(tt.to); err != nil {
				t.Errorf("Transition(%s -> %s) error = %v", tt.from, tt.to, err)
			}
			if m.Current() != tt.to {
				t.Errorf("state = %s, want %s", m.Current(), tt.to)
			}
		})
	}
}

func TestInvalidTransition(t *testing.T) {
	m := NewMachine(nil)
	if err := m.Transition(Ready); err == nil {
		t.Error("Transition(BOOTING -> READY) should fail")
	}

	walkTo(t, m, Stopping)
	if err := m.Transition(Ready); err == nil {
		t.Error("STOPPING must be final")
	}
}

func TestSameStateIsNoop(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("daemon.", 10)
	defer unsub()

	m := NewMachine(b)
	walkTo(t, m, Ready)
	for len(ch) > 0 {
		<-ch
	}
	if err := m.Transition(Ready); err != nil {
		t.Fatal(err)
	}
	select {
	case evt := <-ch:
		t.Errorf("unexpected event %+v", evt)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestTransitionEmitsEvent(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("daemon.", 10)
	defer unsub()

	m := NewMachine(b)
	if err := m.Transition(Migrating); err != nil {
		t.Fatal(err)
	}

	evt := <-ch
	if evt.Kind != bus.StatusChanged {
		t.Errorf("event kind = %q, want %s", evt.Kind, bus.StatusChanged)
	}
	change, ok := evt.Payload.(StatusChange)
	if !ok {
		t.Fatalf("payload type = %T, want StatusChange", evt.Payload)
	}
	if change.From != Booting || change.To != Migrating {
		t.Errorf("change = %v -> %v, want BOOTING -> MIGRATING", change.From, change.To)
	}
}

// TestCommitFailureCycle walks the path taken when the source rejects
// commits for a while and then recovers.
func TestCommitFailureCycle(t *testing.T) {
	m := NewMachine(nil)
	walkTo(t, m, Ready)

	for _, s := range []State{Degraded, Ready, Degraded, Stopping} {
		if err := m.Transition(s); err != nil {
			t.Fatalf("Transition to %s: %v (current: %s)", s, err, m.Current())
		}
		if !s.Serving() && s != Stopping {
			t.Errorf("%s should be serving", s)
		}
	}
}

func TestServing(t *testing.T) {
	for s, want := range map[State]bool{
		Booting: false, Migrating: false, Loading: false,
		Ready: true, Degraded: true, Stopping: false, Error: false,
	} {
		if got := s.Serving(); got != want {
			t.Errorf("%s.Serving() = %v, want %v", s, got, want)
		}
	}
}

// walkTo is a helper that transitions the machine to a target state.
func walkTo(t *testing.T, m *Machine, target State) {
	t.Helper()
	paths := map[State][]State{
		Booting:   {},
		Migrating: {Migrating},
		Loading:   {Migrating, Loading},
		Ready:     {Migrating, Loading, Ready},
		Degraded:  {Migrating, Loading, Degraded},
		Stopping:  {Migrating, Loading, Ready, Stopping},
		Error:     {Error},
	}
	for _, s := range paths[target] {
		if err := m.Transition(s); err != nil {
			t.Fatalf("walkTo(%s): %v", target, err)
		}
	}
}
