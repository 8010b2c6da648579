// Package eligibility decides whether an action may be applied to a dialog
// in a given context. It knows nothing about gestures or rendering.
package eligibility

import (
	"errors"
	"fmt"

	"github.com/matheus3301/dialogs/internal/action"
	"github.com/matheus3301/dialogs/internal/dialog"
)

// ErrIneligible is wrapped by every rejection returned from this package.
var ErrIneligible = errors.New("action not allowed")

var (
	ErrPinLimit      = fmt.Errorf("%w: pinned capacity reached", ErrIneligible)
	ErrSelfArchive   = fmt.Errorf("%w: saved messages cannot be archived", ErrIneligible)
	ErrPromotedRow   = fmt.Errorf("%w: promoted row", ErrIneligible)
	ErrBusy          = fmt.Errorf("%w: dialog is being updated", ErrIneligible)
	ErrNotApplicable = fmt.Errorf("%w: not applicable to this dialog", ErrIneligible)
)

// Context is everything a rule may look at.
type Context struct {
	Dialog      dialog.Dialog
	SelfID      int64
	PinnedCount int  // pinned rows already present in the list
	PinLimit    int  // pinned capacity of the list
	Busy        bool // the dialog belongs to an active freeze
}

// Limits holds the configured pin capacities.
type Limits struct {
	MaxPinned       int
	MaxFolderPinned int
	FilterCapacity  int
}

// PinLimit returns the pinned capacity for key. filterEntries is the number
// of dialogs a filter includes explicitly without pinning them; it is
// ignored for folder lists.
func (l Limits) PinLimit(key dialog.Key, filterEntries int) int {
	switch {
	case key.Type == dialog.ListFilter:
		return max(l.FilterCapacity-filterEntries, 0)
	case key.FolderID == dialog.FolderArchive:
		return l.MaxFolderPinned
	default:
		return l.MaxPinned
	}
}

type rule func(c Context) error

var table = map[action.Kind]rule{
	action.Read: func(c Context) error {
		return applicable(c.Dialog.HasUnread())
	},
	action.Unread: func(c Context) error {
		return applicable(!c.Dialog.HasUnread())
	},
	action.Mute: func(c Context) error {
		return applicable(!c.Dialog.Muted)
	},
	action.Unmute: func(c Context) error {
		return applicable(c.Dialog.Muted)
	},
	action.Pin: func(c Context) error {
		if c.Dialog.Pinned() {
			return ErrNotApplicable
		}
		if c.PinnedCount+1 > c.PinLimit {
			return ErrPinLimit
		}
		return nil
	},
	action.Unpin: func(c Context) error {
		return applicable(c.Dialog.Pinned())
	},
	action.Archive: func(c Context) error {
		if c.Dialog.ID == c.SelfID {
			return ErrSelfArchive
		}
		return applicable(c.Dialog.FolderID != dialog.FolderArchive)
	},
	action.Unarchive: func(c Context) error {
		return applicable(c.Dialog.FolderID == dialog.FolderArchive)
	},
	action.Delete: allow,
	action.Clear:  allow,
	action.Block: func(c Context) error {
		return applicable(c.Dialog.Peer() == dialog.PeerUser && c.Dialog.ID != c.SelfID)
	},
}

func allow(Context) error { return nil }

func applicable(ok bool) error {
	if !ok {
		return ErrNotApplicable
	}
	return nil
}

// Check applies the rule for kind exactly as given.
func Check(kind action.Kind, c Context) error {
	switch c.Dialog.Variant {
	case dialog.Promoted:
		return ErrPromotedRow
	case dialog.FolderMarker:
		return ErrNotApplicable
	}
	r, ok := table[kind]
	if !ok {
		return ErrNotApplicable
	}
	if c.Busy && kind.Undoable() {
		return ErrBusy
	}
	return r(c)
}

// Resolve turns a swipe intent into the concrete kind for this dialog and
// checks it. Paired intents behave as toggles: a read intent on a dialog
// without unread state resolves to Unread, and likewise for mute, pin and
// archive.
func Resolve(intent action.Kind, c Context) (action.Kind, error) {
	kind := toggle(intent, c.Dialog)
	if err := Check(kind, c); err != nil {
		return action.None, err
	}
	return kind, nil
}

func toggle(intent action.Kind, d dialog.Dialog) action.Kind {
	switch intent {
	case action.Read, action.Unread:
		if d.HasUnread() {
			return action.Read
		}
		return action.Unread
	case action.Mute, action.Unmute:
		if d.Muted {
			return action.Unmute
		}
		return action.Mute
	case action.Pin, action.Unpin:
		if d.Pinned() {
			return action.Unpin
		}
		return action.Pin
	case action.Archive, action.Unarchive:
		if d.FolderID == dialog.FolderArchive {
			return action.Unarchive
		}
		return action.Archive
	}
	return intent
}
