package store

import (
	"errors"

	"github.com/matheus3301/dialogs/internal/action"
)

// ErrNotFound is returned when an action targets a dialog the store does not have.
var ErrNotFound = errors.New("dialog not found")

// Filter is a user-defined dialog filter tab.
type Filter struct {
	ID    int
	Title string
}

// Outbox statuses.
const (
	StatusQueued   = "queued"
	StatusApplying = "applying"
	StatusDone     = "done"
	StatusFailed   = "failed"
)

// OutboxEntry is a user action waiting to be applied to the source.
type OutboxEntry struct {
	Seq          int64
	Action       action.Pending
	Status       string // queued, applying, done, failed
	ErrorMessage string
}
