package reconcile

import (
	"fmt"
	"slices"

	"github.com/matheus3301/dialogs/internal/dialog"
)

// Phase is the freeze-cycle state of one list.
type Phase string

const (
	PhaseIdle      Phase = "IDLE"
	PhaseMutating  Phase = "MUTATING"
	PhaseAnimating Phase = "ANIMATING"
)

// A freeze request while animating folds into the running cycle, hence
// Animating -> Mutating.
var validTransitions = map[Phase][]Phase{
	PhaseIdle:      {PhaseMutating},
	PhaseMutating:  {PhaseAnimating, PhaseIdle},
	PhaseAnimating: {PhaseMutating, PhaseIdle},
}

func checkTransition(from, to Phase) error {
	if !slices.Contains(validTransitions[from], to) {
		return fmt.Errorf("invalid transition from %s to %s", from, to)
	}
	return nil
}

// PhaseChange is the payload of bus.PhaseChanged events.
type PhaseChange struct {
	List dialog.Key
	From Phase
	To   Phase
}
