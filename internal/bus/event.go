package bus

import (
	"time"

	"github.com/matheus3301/dialogs/internal/action"
	"github.com/matheus3301/dialogs/internal/dialog"
)

// Event kinds. Subscribers filter by prefix, so related kinds share a namespace.
const (
	// DialogsChanged reports a structural change in the authoritative source.
	// Payload: ListsChanged.
	DialogsChanged = "dialogs.changed"

	// PhaseChanged reports a freeze-cycle transition of one list.
	PhaseChanged = "list.phase_changed"

	UndoArmed     = "undo.armed"
	UndoCancelled = "undo.cancelled"
	UndoCommitted = "undo.committed"

	ActionQueued = "action.queued"
	// ActionCommitted and ActionCommitFailed carry an ActionResult.
	ActionCommitted    = "action.committed"
	ActionCommitFailed = "action.commit_failed"

	// Remote pushes, consumed by the ingestion engine.
	RemoteUpsert = "remote.dialog_upsert"
	RemoteRemove = "remote.dialog_removed"

	StatusChanged = "daemon.status_changed"
)

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// ListsChanged is the payload of DialogsChanged. No keys means every list.
type ListsChanged struct {
	Keys []dialog.Key
}

// Affects reports whether the change touches key.
func (c ListsChanged) Affects(key dialog.Key) bool {
	if len(c.Keys) == 0 {
		return true
	}
	for _, k := range c.Keys {
		if k == key {
			return true
		}
	}
	return false
}

// ActionResult is the payload of ActionCommitted and ActionCommitFailed.
type ActionResult struct {
	Action action.Pending
	Err    string
}
