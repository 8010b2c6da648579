package reconcile

import "fmt"

// MutationKind is the kind of single-row mutation a renderer animates.
type MutationKind uint8

const (
	Insert MutationKind = iota
	Remove
	Change
)

func (k MutationKind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Remove:
		return "remove"
	case Change:
		return "change"
	}
	return fmt.Sprintf("mutation(%d)", uint8(k))
}

// BarrierState is the completion state of one mutation kind.
type BarrierState uint8

const (
	Idle BarrierState = iota
	Pending
	Acknowledged
)

func (s BarrierState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Acknowledged:
		return "acknowledged"
	}
	return fmt.Sprintf("barrier(%d)", uint8(s))
}

// Barrier gates the end of a freeze cycle on the renderer finishing every
// animation it was asked to play.
type Barrier struct {
	states map[MutationKind]BarrierState
}

// NewBarrier returns a barrier with every kind Idle.
func NewBarrier() *Barrier {
	return &Barrier{states: make(map[MutationKind]BarrierState)}
}

// State returns the state of kind. Kinds never marked are Idle.
func (b *Barrier) State(kind MutationKind) BarrierState {
	return b.states[kind]
}

// Mark records that an animation of kind was started.
func (b *Barrier) Mark(kind MutationKind) {
	b.states[kind] = Pending
}

// Ack moves kind from Pending to Acknowledged. It reports whether the
// transition happened.
func (b *Barrier) Ack(kind MutationKind) bool {
	if b.states[kind] != Pending {
		return false
	}
	b.states[kind] = Acknowledged
	return true
}

// Any reports whether some kind is in state s.
func (b *Barrier) Any(s BarrierState) bool {
	for _, st := range b.states {
		if st == s {
			return true
		}
	}
	return false
}

// Reset returns every kind to Idle.
func (b *Barrier) Reset() {
	clear(b.states)
}
