package engine

import (
	"fmt"

	"github.com/matheus3301/dialogs/internal/action"
	"github.com/matheus3301/dialogs/internal/bus"
	"github.com/matheus3301/dialogs/internal/dialog"
	"github.com/matheus3301/dialogs/internal/reconcile"
	"go.uber.org/zap"
)

// rows is what plan reads: a live list or a frozen snapshot.
type rows interface {
	Len() int
	At(i int) (dialog.Dialog, bool)
	IndexOf(id int64) int
	PinnedPrefix() (start, end int)
}

// edit is one single-row change showing an action before the source has
// applied it.
type edit struct {
	kind  reconcile.MutationKind
	index int
	row   dialog.Dialog
}

// plan returns the edits that show kind applied to id in l, in the order
// they must be applied. Pin and Unpin move the row: pinned rows go to the
// top of the prefix, unpinned rows back to their place by activity.
func plan(l rows, kind action.Kind, id int64) []edit {
	i := l.IndexOf(id)
	if i < 0 {
		return nil
	}
	d, _ := l.At(i)
	switch kind {
	case action.Read, action.Clear:
		d.UnreadCount, d.HasUnreadMark = 0, false
	case action.Unread:
		d.HasUnreadMark = true
	case action.Mute:
		d.Muted = true
	case action.Unmute:
		d.Muted = false
	case action.Pin, action.Unpin:
		moved := d
		moved.PinnedOrder = 0
		if kind == action.Pin {
			moved.PinnedOrder = 1
		}
		return []edit{
			{kind: reconcile.Remove, index: i, row: d},
			{kind: reconcile.Insert, index: pinTarget(l, i, moved), row: moved},
		}
	default:
		return nil
	}
	return []edit{{kind: reconcile.Change, index: i, row: d}}
}

// pinTarget returns where d lands once the row at from is taken out of l.
func pinTarget(l rows, from int, d dialog.Dialog) int {
	start, end := l.PinnedPrefix()
	if d.Pinned() {
		return start
	}
	if from >= start && from < end {
		end--
	}
	at := func(j int) dialog.Dialog {
		if j >= from {
			j++
		}
		r, _ := l.At(j)
		return r
	}
	to := end
	for to < l.Len()-1 && at(to).LastActivity >= d.LastActivity {
		to++
	}
	return to
}

// moves reports whether kind changes the position of a row. Such actions
// only apply to the list they were issued from, since every list keeps
// its own pinned order.
func moves(kind action.Kind) bool {
	return kind == action.Pin || kind == action.Unpin
}

// applyEdits replays edits on a live list.
func applyEdits(l *dialog.List, edits []edit) error {
	for _, ed := range edits {
		var err error
		switch ed.kind {
		case reconcile.Insert:
			err = l.InsertAt(ed.index, ed.row)
		case reconcile.Remove:
			_, err = l.RemoveAt(ed.index)
		case reconcile.Change:
			err = l.ChangeAt(ed.index, ed.row)
		}
		if err != nil {
			return fmt.Errorf("%s at %d: %w", ed.kind, ed.index, err)
		}
	}
	l.RenumberPinned()
	return nil
}

// overlay shows a on the live list of key if it touches that list.
func (e *Engine) overlay(key dialog.Key, l *dialog.List, a action.Pending) {
	if moves(a.Kind) && a.List != key {
		return
	}
	for _, id := range a.Targets {
		if err := applyEdits(l, plan(l, a.Kind, id)); err != nil {
			e.logger.Error("failed to show pending action", zap.Stringer("list", key),
				zap.Stringer("action", a), zap.Error(err))
		}
	}
}

// confirm forgets the optimistic edits of an action the source has
// answered for. A failed action is not rolled back; the next reload of
// the list shows what the source holds.
func (e *Engine) confirm(res bus.ActionResult) {
	for i, a := range e.optimistic {
		if a.ID == res.Action.ID {
			e.optimistic = append(e.optimistic[:i], e.optimistic[i+1:]...)
			return
		}
	}
}
