package engine

import (
	"context"
	"fmt"

	"github.com/matheus3301/dialogs/internal/dialog"
	"github.com/matheus3301/dialogs/internal/eligibility"
)

// SetEditMode turns pinned-order editing on or off. Turning it off commits
// each reordered list once and returns the number of commits.
func (e *Engine) SetEditMode(ctx context.Context, on bool) (int, error) {
	var n int
	err := e.Do(ctx, func() { n = e.pins.SetEditMode(context.Background(), on) })
	return n, err
}

// Editing reports whether edit mode is on.
func (e *Engine) Editing(ctx context.Context) (bool, error) {
	var on bool
	err := e.Do(ctx, func() { on = e.pins.Editing() })
	return on, err
}

// Drop moves the pinned row at from to index to in key. Drops are refused
// while the list is frozen, since view and live indices may differ.
func (e *Engine) Drop(ctx context.Context, key dialog.Key, from, to int) error {
	var err error
	if derr := e.Do(ctx, func() {
		if e.lists.Frozen(key) {
			err = fmt.Errorf("drop on %s: %w", key, eligibility.ErrBusy)
			return
		}
		if err = e.pins.OnDrop(e.Live(key), from, to); err != nil {
			return
		}
		e.lists.OnLocalMove(key, from, to)
	}); derr != nil {
		return derr
	}
	return err
}
