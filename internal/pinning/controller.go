// Package pinning reorders the pinned prefix of a list by drag and drop
// while the list is in edit mode. Reorders are collected per list and
// committed once when edit mode ends.
package pinning

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/matheus3301/dialogs/internal/dialog"
	"go.uber.org/zap"
)

var (
	ErrNotEditing    = errors.New("list is not in edit mode")
	ErrNotDraggable  = errors.New("row is not draggable")
	ErrOutsidePrefix = errors.New("drop target outside the pinned prefix")
)

// OrderCommitter persists the pinned order of a list.
type OrderCommitter interface {
	CommitPinnedOrder(ctx context.Context, key dialog.Key, order []int64) error
}

// Controller tracks one edit session.
type Controller struct {
	committer OrderCommitter
	logger    *zap.Logger

	editing bool
	dirty   map[dialog.Key][]int64
}

// New creates a controller committing through c.
func New(c OrderCommitter, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		committer: c,
		logger:    logger,
		dirty:     make(map[dialog.Key][]int64),
	}
}

// Editing reports whether edit mode is on.
func (c *Controller) Editing() bool { return c.editing }

// SetEditMode turns edit mode on or off. Leaving edit mode commits every
// list reordered during the session, once each, and returns how many
// commits were issued.
func (c *Controller) SetEditMode(ctx context.Context, on bool) int {
	if on == c.editing {
		return 0
	}
	c.editing = on
	if on {
		return 0
	}

	keys := slices.SortedFunc(maps.Keys(c.dirty), compareKeys)
	for _, key := range keys {
		order := c.dirty[key]
		if err := c.committer.CommitPinnedOrder(ctx, key, order); err != nil {
			c.logger.Error("failed to commit pinned order", zap.Stringer("list", key), zap.Error(err))
			continue
		}
		c.logger.Info("pinned order committed", zap.Stringer("list", key), zap.Int("pinned", len(order)))
	}
	clear(c.dirty)
	return len(keys)
}

func compareKeys(a, b dialog.Key) int {
	return cmp.Or(
		cmp.Compare(a.Type, b.Type),
		cmp.Compare(a.FolderID, b.FolderID),
		cmp.Compare(a.FilterID, b.FilterID),
	)
}

// CanDrag reports whether row may be picked up.
func (c *Controller) CanDrag(row dialog.Dialog) bool {
	return c.editing && row.Pinned() && !row.Synthetic()
}

// OnDrop moves the row at from to index to inside the pinned prefix of l
// and renumbers the prefix.
func (c *Controller) OnDrop(l *dialog.List, from, to int) error {
	if !c.editing {
		return ErrNotEditing
	}
	row, ok := l.At(from)
	if !ok || !c.CanDrag(row) {
		return fmt.Errorf("drag from %d: %w", from, ErrNotDraggable)
	}
	start, end := l.PinnedPrefix()
	if to < start || to >= end {
		return fmt.Errorf("drop at %d, prefix [%d,%d): %w", to, start, end, ErrOutsidePrefix)
	}
	if err := l.MoveWithinPinnedPrefix(from, to); err != nil {
		return err
	}
	l.RenumberPinned()
	c.dirty[l.Key()] = l.PinnedIDs()
	return nil
}

// Dirty returns the lists with an uncommitted pinned order.
func (c *Controller) Dirty() []dialog.Key {
	return slices.SortedFunc(maps.Keys(c.dirty), compareKeys)
}

// Overlay re-applies the uncommitted pinned order of l after l was
// reloaded from the source. If the source no longer pins the same rows the
// local order is dropped.
func (c *Controller) Overlay(l *dialog.List) {
	order, ok := c.dirty[l.Key()]
	if !ok {
		return
	}
	if !l.ReorderPinned(order) {
		c.logger.Info("pinned set changed during edit, dropping local order", zap.Stringer("list", l.Key()))
		delete(c.dirty, l.Key())
	}
}
