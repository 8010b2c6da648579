package action

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/matheus3301/dialogs/internal/dialog"
)

// Kind is the kind of user action applied to one or more dialogs.
type Kind uint8

const (
	None Kind = iota
	Pin
	Unpin
	Read
	Unread
	Archive
	Unarchive
	Mute
	Unmute
	Delete
	Clear
	Block
	// Reorder rewrites the pinned order of a list. Targets hold the new
	// order. It is produced by an edit session, never by a swipe.
	Reorder
)

var kindNames = map[Kind]string{
	None:      "none",
	Pin:       "pin",
	Unpin:     "unpin",
	Read:      "read",
	Unread:    "unread",
	Archive:   "archive",
	Unarchive: "unarchive",
	Mute:      "mute",
	Unmute:    "unmute",
	Delete:    "delete",
	Clear:     "clear",
	Block:     "block",
	Reorder:   "reorder",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind parses a kind name as used in config files. The empty string
// parses as None.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return None, nil
	}
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return None, fmt.Errorf("unknown action %q", s)
}

// RemovesRow reports whether applying the action takes the row out of the
// list it was issued from.
func (k Kind) RemovesRow() bool {
	switch k {
	case Archive, Unarchive, Delete, Block:
		return true
	}
	return false
}

// Undoable reports whether the action goes through the undo window before
// it is committed.
func (k Kind) Undoable() bool {
	return k.RemovesRow() || k == Clear
}

// Pending is an action waiting to be dispatched.
type Pending struct {
	ID       string
	Kind     Kind
	List     dialog.Key
	Targets  []int64
	FilterID int // 0 when the action was not issued from a filter tab
}

// New builds a pending action with a fresh id.
func New(kind Kind, list dialog.Key, targets ...int64) Pending {
	return Pending{
		ID:       uuid.NewString(),
		Kind:     kind,
		List:     list,
		Targets:  slices.Clone(targets),
		FilterID: list.FilterID,
	}
}

// Touches reports whether the action targets id.
func (p Pending) Touches(id int64) bool {
	return slices.Contains(p.Targets, id)
}

func (p Pending) String() string {
	return fmt.Sprintf("%s %v on %s", p.Kind, p.Targets, p.List)
}
