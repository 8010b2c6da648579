package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/matheus3301/dialogs/internal/action"
	"github.com/matheus3301/dialogs/internal/dialog"
	"github.com/matheus3301/dialogs/internal/eligibility"
	"github.com/matheus3301/dialogs/internal/reconcile"
	"github.com/matheus3301/dialogs/internal/swipe"
	"github.com/matheus3301/dialogs/internal/undo"
	"go.uber.org/zap"
)

// ErrUnsupported is returned for actions that cannot be dispatched directly.
var ErrUnsupported = errors.New("action cannot be dispatched")

// BeginSwipe starts a swipe on the row shown at index of key.
func (e *Engine) BeginSwipe(ctx context.Context, key dialog.Key, index int) error {
	var err error
	if derr := e.Do(ctx, func() {
		var d dialog.Dialog
		if d, err = e.row(key, index); err != nil {
			return
		}
		err = e.swipe.OnGestureStart(swipe.Row{
			List:        key,
			Index:       index,
			Dialog:      d,
			Reorderable: e.pins.CanDrag(d),
		})
	}); derr != nil {
		return derr
	}
	return err
}

// UpdateSwipe reports how to draw the swiped row at displacement dx.
func (e *Engine) UpdateSwipe(ctx context.Context, dx, rowWidth float64) (swipe.Progress, error) {
	var p swipe.Progress
	err := e.Do(ctx, func() { p = e.swipe.OnGestureUpdate(dx, rowWidth) })
	return p, err
}

// CancelSwipe abandons the current swipe.
func (e *Engine) CancelSwipe(ctx context.Context) error {
	return e.Do(ctx, e.swipe.Cancel)
}

// EndSwipe releases the current swipe. A committed and eligible swipe is
// dispatched before EndSwipe returns; the outcome carries the action or
// the eligibility error.
func (e *Engine) EndSwipe(ctx context.Context, dx, velocity, rowWidth float64) (swipe.Outcome, error) {
	var (
		out swipe.Outcome
		err error
	)
	if derr := e.Do(ctx, func() {
		row := e.swipe.Row()
		ec := e.eligibility(row.List, row.Dialog)
		if out, err = e.swipe.OnGestureEnd(dx, velocity, rowWidth, ec); err != nil {
			return
		}
		if out.Err != nil {
			e.logger.Info("swipe rejected", zap.Stringer("intent", out.Intent),
				zap.Int64("dialog_id", row.Dialog.ID), zap.Error(out.Err))
			return
		}
		if out.Dispatch() {
			if derr := e.dispatch(out.Action); derr != nil {
				out.Err = derr
			}
		}
	}); derr != nil {
		return swipe.Outcome{}, derr
	}
	return out, err
}

// SetMultiSelect toggles multi-select mode.
func (e *Engine) SetMultiSelect(ctx context.Context, on bool) error {
	return e.Do(ctx, func() { e.swipe.SetMultiSelect(on) })
}

// SetTabSwitching reports whether a tab-switch gesture is in progress.
func (e *Engine) SetTabSwitching(ctx context.Context, on bool) error {
	return e.Do(ctx, func() { e.swipe.SetTabSwitching(on) })
}

// Dispatch applies an explicit action, e.g. from a multi-selection. Every
// target is checked as it is shown in a.List; one ineligible target
// rejects the whole action.
func (e *Engine) Dispatch(ctx context.Context, a action.Pending) error {
	var err error
	if derr := e.Do(ctx, func() {
		shown := e.lists.Dialogs(a.List)
		for k, id := range a.Targets {
			i := slices.IndexFunc(shown, func(d dialog.Dialog) bool { return d.ID == id })
			if i < 0 {
				err = fmt.Errorf("dialog %d not in %s: %w", id, a.List, eligibility.ErrNotApplicable)
				return
			}
			ec := e.eligibility(a.List, shown[i])
			if a.Kind == action.Pin {
				ec.PinnedCount += k // earlier targets of the same action
			}
			if err = eligibility.Check(a.Kind, ec); err != nil {
				err = fmt.Errorf("dialog %d: %w", id, err)
				return
			}
		}
		err = e.dispatch(a)
	}); derr != nil {
		return derr
	}
	return err
}

// dispatch runs the freeze cycle for an eligible action: the rows change
// in the snapshot at once, and the source is written either now or when
// the undo window closes. Only destructive actions hold their rows
// exclusively for the cycle.
func (e *Engine) dispatch(a action.Pending) error {
	if a.Kind == action.Reorder || a.Kind == action.None {
		return fmt.Errorf("dispatch %s: %w", a.Kind, ErrUnsupported)
	}
	key := a.List
	e.lists.Freeze(key)

	if a.Kind.Undoable() {
		if err := e.lists.Reserve(key, a.Targets...); err != nil {
			e.lists.EndMutation(key)
			return err
		}
		e.undo.Schedule(undo.NewToken(a, nil))
		e.lists.EndMutation(key)
		// Hidden rows must not come back when the freeze ends.
		e.load(key)
		return nil
	}

	if err := e.lists.Track(key, a.Targets...); err != nil {
		e.lists.EndMutation(key)
		return err
	}
	for _, id := range a.Targets {
		for _, ed := range plan(e.lists.Freeze(key), a.Kind, id) {
			e.mutate(key, ed.kind, ed.index, ed.row)
		}
	}
	// The live lists must match the snapshot once it is discarded.
	for k, l := range e.live {
		e.overlay(k, l, a)
	}
	e.lists.EndMutation(key)

	if err := e.committer.CommitAction(context.Background(), a); err != nil {
		e.logger.Error("failed to hand over action", zap.Stringer("action", a), zap.Error(err))
		return nil
	}
	e.optimistic = append(e.optimistic, a)
	return nil
}

func (e *Engine) mutate(key dialog.Key, kind reconcile.MutationKind, index int, d dialog.Dialog) {
	if _, err := e.lists.ApplyIndexedMutation(key, kind, index, d); err != nil {
		e.logger.Error("mutation failed", zap.Stringer("list", key), zap.Stringer("mutation", kind), zap.Error(err))
	}
}

// Undo cancels the armed action of key.
func (e *Engine) Undo(ctx context.Context, key dialog.Key) error {
	var err error
	if derr := e.Do(ctx, func() {
		if err = e.undo.Cancel(key); err == nil {
			e.load(key)
		}
	}); derr != nil {
		return derr
	}
	return err
}

// Armed returns a copy of the armed undo token of key.
func (e *Engine) Armed(ctx context.Context, key dialog.Key) (undo.Token, bool, error) {
	var (
		tok undo.Token
		ok  bool
	)
	err := e.Do(ctx, func() {
		if t := e.undo.Armed(key); t != nil {
			tok, ok = *t, true
		}
	})
	return tok, ok, err
}
