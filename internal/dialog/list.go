package dialog

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrDuplicateID is returned when an insert would repeat an id already in the list.
	ErrDuplicateID = errors.New("duplicate dialog id")
	// ErrIndexOutOfRange is returned for indices outside the list.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrIDMismatch is returned when a change targets a row holding another id.
	ErrIDMismatch = errors.New("dialog id mismatch")
	// ErrOutsidePinnedPrefix is returned when a move leaves the pinned prefix.
	ErrOutsidePinnedPrefix = errors.New("index outside pinned prefix")
)

// List is an ordered sequence of dialogs without duplicate ids.
type List struct {
	key   Key
	items []Dialog
}

// NewList copies items into a new list, rejecting duplicate ids.
func NewList(key Key, items []Dialog) (*List, error) {
	seen := make(map[int64]struct{}, len(items))
	for _, d := range items {
		if _, ok := seen[d.ID]; ok {
			return nil, fmt.Errorf("new list %s: %w: %d", key, ErrDuplicateID, d.ID)
		}
		seen[d.ID] = struct{}{}
	}
	return &List{key: key, items: slices.Clone(items)}, nil
}

// Key returns the key the list was built for.
func (l *List) Key() Key { return l.key }

// Len returns the number of rows.
func (l *List) Len() int { return len(l.items) }

// At returns the row at index i.
func (l *List) At(i int) (Dialog, bool) {
	if i < 0 || i >= len(l.items) {
		return Dialog{}, false
	}
	return l.items[i], true
}

// IndexOf returns the index of id, or -1.
func (l *List) IndexOf(id int64) int {
	return slices.IndexFunc(l.items, func(d Dialog) bool { return d.ID == id })
}

// Items returns a copy of the rows.
func (l *List) Items() []Dialog { return slices.Clone(l.items) }

// IDs returns the ids in list order.
func (l *List) IDs() []int64 {
	ids := make([]int64, len(l.items))
	for i, d := range l.items {
		ids[i] = d.ID
	}
	return ids
}

// Clone returns an independent copy of the list.
func (l *List) Clone() *List {
	return &List{key: l.key, items: slices.Clone(l.items)}
}

// InsertAt inserts d before index i. i may equal Len().
func (l *List) InsertAt(i int, d Dialog) error {
	if i < 0 || i > len(l.items) {
		return fmt.Errorf("insert %d at %d/%d: %w", d.ID, i, len(l.items), ErrIndexOutOfRange)
	}
	if l.IndexOf(d.ID) >= 0 {
		return fmt.Errorf("insert %d: %w", d.ID, ErrDuplicateID)
	}
	l.items = slices.Insert(l.items, i, d)
	return nil
}

// RemoveAt removes and returns the row at index i.
func (l *List) RemoveAt(i int) (Dialog, error) {
	if i < 0 || i >= len(l.items) {
		return Dialog{}, fmt.Errorf("remove at %d/%d: %w", i, len(l.items), ErrIndexOutOfRange)
	}
	d := l.items[i]
	l.items = slices.Delete(l.items, i, i+1)
	return d, nil
}

// ChangeAt replaces the row at index i with d. The id must not change.
func (l *List) ChangeAt(i int, d Dialog) error {
	if i < 0 || i >= len(l.items) {
		return fmt.Errorf("change at %d/%d: %w", i, len(l.items), ErrIndexOutOfRange)
	}
	if l.items[i].ID != d.ID {
		return fmt.Errorf("change at %d: have %d, got %d: %w", i, l.items[i].ID, d.ID, ErrIDMismatch)
	}
	l.items[i] = d
	return nil
}

// PinnedPrefix returns the half-open range [start, end) of the pinned rows.
// A leading synthetic row is excluded from the prefix.
func (l *List) PinnedPrefix() (start, end int) {
	if len(l.items) > 0 && l.items[0].Synthetic() {
		start = 1
	}
	end = start
	for end < len(l.items) && l.items[end].Pinned() && !l.items[end].Synthetic() {
		end++
	}
	return start, end
}

// PinnedIDs returns the ids of the pinned prefix in order.
func (l *List) PinnedIDs() []int64 {
	start, end := l.PinnedPrefix()
	ids := make([]int64, 0, end-start)
	for _, d := range l.items[start:end] {
		ids = append(ids, d.ID)
	}
	return ids
}

// MoveWithinPinnedPrefix moves the row at from to index to. Both indices
// must lie inside the pinned prefix.
func (l *List) MoveWithinPinnedPrefix(from, to int) error {
	start, end := l.PinnedPrefix()
	if from < start || from >= end || to < start || to >= end {
		return fmt.Errorf("move %d -> %d, prefix [%d,%d): %w", from, to, start, end, ErrOutsidePinnedPrefix)
	}
	if from == to {
		return nil
	}
	d := l.items[from]
	l.items = slices.Delete(l.items, from, from+1)
	l.items = slices.Insert(l.items, to, d)
	return nil
}

// RenumberPinned rewrites the pinned order of the prefix to 1..n.
func (l *List) RenumberPinned() {
	start, end := l.PinnedPrefix()
	for i := start; i < end; i++ {
		l.items[i].PinnedOrder = i - start + 1
	}
}

// ReorderPinned rearranges the pinned prefix to follow order. It is a no-op
// unless order holds exactly the ids currently in the prefix.
func (l *List) ReorderPinned(order []int64) bool {
	start, end := l.PinnedPrefix()
	if end-start != len(order) {
		return false
	}
	byID := make(map[int64]Dialog, len(order))
	for _, d := range l.items[start:end] {
		byID[d.ID] = d
	}
	next := make([]Dialog, 0, len(order))
	for _, id := range order {
		d, ok := byID[id]
		if !ok {
			return false
		}
		next = append(next, d)
	}
	copy(l.items[start:end], next)
	l.RenumberPinned()
	return true
}
