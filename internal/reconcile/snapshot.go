package reconcile

import "github.com/matheus3301/dialogs/internal/dialog"

// Snapshot is the copy of a list taken when the list is frozen. Reads of a
// frozen list are served from it until it is discarded. Only the
// Controller that took it changes it.
type Snapshot struct {
	list    *dialog.List
	takenAt uint64
}

func newSnapshot(l *dialog.List, clock uint64) *Snapshot {
	return &Snapshot{list: l.Clone(), takenAt: clock}
}

// Source returns the key of the list the snapshot was taken from.
func (s *Snapshot) Source() dialog.Key { return s.list.Key() }

// TakenAt returns the logical time of the freeze.
func (s *Snapshot) TakenAt() uint64 { return s.takenAt }

// Len returns the number of rows.
func (s *Snapshot) Len() int { return s.list.Len() }

// At returns the row at index i.
func (s *Snapshot) At(i int) (dialog.Dialog, bool) { return s.list.At(i) }

// IndexOf returns the index of id, or -1.
func (s *Snapshot) IndexOf(id int64) int { return s.list.IndexOf(id) }

// Items returns a copy of the rows.
func (s *Snapshot) Items() []dialog.Dialog { return s.list.Items() }

// IDs returns the ids in list order.
func (s *Snapshot) IDs() []int64 { return s.list.IDs() }

// PinnedPrefix returns the half-open range of the pinned rows.
func (s *Snapshot) PinnedPrefix() (start, end int) { return s.list.PinnedPrefix() }

// List returns an independent copy of the rows as a list.
func (s *Snapshot) List() *dialog.List { return s.list.Clone() }
