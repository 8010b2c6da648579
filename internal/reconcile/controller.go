// Package reconcile keeps a list view, its running animations and the live
// data source consistent. While a list is frozen every read is served from a
// snapshot, single-row mutations are applied to that snapshot by index, and
// structural changes from the source are held back until the renderer has
// finished animating.
//
// A Controller is not safe for concurrent use. It must be driven from the
// single goroutine that owns the lists.
package reconcile

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/matheus3301/dialogs/internal/bus"
	"github.com/matheus3301/dialogs/internal/dialog"
	"github.com/matheus3301/dialogs/internal/eligibility"
	"go.uber.org/zap"
)

// ErrNotFrozen is returned by operations that need a frozen list.
var ErrNotFrozen = errors.New("list is not frozen")

// LiveSource serves the current contents of a list.
type LiveSource interface {
	Live(key dialog.Key) *dialog.List
}

type listState struct {
	snapshot  *Snapshot
	phase     Phase
	barrier   *Barrier
	coalesced bool // a full reload is owed when the freeze ends
	busy      map[int64]struct{}
}

// Controller runs the freeze -> mutate -> animate -> unfreeze cycle for
// every list it is asked about.
type Controller struct {
	live     LiveSource
	renderer Renderer
	bus      *bus.Bus
	logger   *zap.Logger

	lists map[dialog.Key]*listState
	clock uint64
}

// New creates a controller reading live lists from live and drawing through r.
func New(live LiveSource, r Renderer, b *bus.Bus, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		live:     live,
		renderer: r,
		bus:      b,
		logger:   logger,
		lists:    make(map[dialog.Key]*listState),
	}
}

func (c *Controller) state(key dialog.Key) *listState {
	st, ok := c.lists[key]
	if !ok {
		st = &listState{phase: PhaseIdle, barrier: NewBarrier()}
		c.lists[key] = st
	}
	return st
}

func (c *Controller) setPhase(key dialog.Key, st *listState, to Phase) {
	if st.phase == to {
		return
	}
	if err := checkTransition(st.phase, to); err != nil {
		// Unreachable through the public methods.
		panic(fmt.Sprintf("reconcile %s: %v", key, err))
	}
	from := st.phase
	st.phase = to
	c.bus.Emit(bus.PhaseChanged, PhaseChange{List: key, From: from, To: to})
}

// Phase returns the freeze-cycle phase of key.
func (c *Controller) Phase(key dialog.Key) Phase {
	if st, ok := c.lists[key]; ok {
		return st.phase
	}
	return PhaseIdle
}

// Frozen reports whether key is currently served from a snapshot.
func (c *Controller) Frozen(key dialog.Key) bool {
	st, ok := c.lists[key]
	return ok && st.snapshot != nil
}

// BarrierState returns the barrier state of kind for key.
func (c *Controller) BarrierState(key dialog.Key, kind MutationKind) BarrierState {
	if st, ok := c.lists[key]; ok {
		return st.barrier.State(kind)
	}
	return Idle
}

// Dialogs returns what the list view must show for key: the snapshot while
// frozen, the live source otherwise.
func (c *Controller) Dialogs(key dialog.Key) []dialog.Dialog {
	if st, ok := c.lists[key]; ok && st.snapshot != nil {
		return st.snapshot.Items()
	}
	if l := c.live.Live(key); l != nil {
		return l.Items()
	}
	return nil
}

// Freeze snapshots key. Freezing a frozen list returns the existing
// snapshot and folds the request into the running cycle.
func (c *Controller) Freeze(key dialog.Key) *Snapshot {
	st := c.state(key)
	if st.snapshot == nil {
		src := c.live.Live(key)
		if src == nil {
			src, _ = dialog.NewList(key, nil)
		}
		c.clock++
		st.snapshot = newSnapshot(src, c.clock)
		st.busy = make(map[int64]struct{})
		c.logger.Debug("list frozen", zap.Stringer("list", key), zap.Uint64("clock", c.clock), zap.Int("rows", src.Len()))
	}
	c.setPhase(key, st, PhaseMutating)
	return st.snapshot
}

// Unfreeze discards the snapshot of key. When notify is set the renderer
// reloads the list from the live source.
func (c *Controller) Unfreeze(key dialog.Key, notify bool) {
	st, ok := c.lists[key]
	if !ok || st.snapshot == nil {
		return
	}
	st.snapshot = nil
	st.busy = nil
	st.coalesced = false
	st.barrier.Reset()
	c.setPhase(key, st, PhaseIdle)
	c.logger.Debug("list unfrozen", zap.Stringer("list", key), zap.Bool("reload", notify))
	if notify {
		Instruction{Op: OpReload, List: key}.Apply(c.renderer)
	}
}

// Reserve marks ids as taking part in the current freeze of key. It fails
// with eligibility.ErrBusy if any id already belongs to an active freeze.
func (c *Controller) Reserve(key dialog.Key, ids ...int64) error {
	st, ok := c.lists[key]
	if !ok || st.snapshot == nil {
		return fmt.Errorf("reserve on %s: %w", key, ErrNotFrozen)
	}
	for _, id := range ids {
		if c.Busy(id) {
			return fmt.Errorf("dialog %d: %w", id, eligibility.ErrBusy)
		}
	}
	for _, id := range ids {
		st.busy[id] = struct{}{}
	}
	return nil
}

// Track marks ids as taking part in the current freeze of key without
// checking for overlap. Non-destructive actions use it: they may share a
// row with another freeze, but a destructive action may not join them.
func (c *Controller) Track(key dialog.Key, ids ...int64) error {
	st, ok := c.lists[key]
	if !ok || st.snapshot == nil {
		return fmt.Errorf("track on %s: %w", key, ErrNotFrozen)
	}
	for _, id := range ids {
		st.busy[id] = struct{}{}
	}
	return nil
}

// Busy reports whether id takes part in any active freeze.
func (c *Controller) Busy(id int64) bool {
	for _, st := range c.lists {
		if _, ok := st.busy[id]; ok {
			return true
		}
	}
	return false
}

// ApplyIndexedMutation applies one mutation to the snapshot of key and
// renders it. For Remove and Change, d must be the row currently at index.
// If the row cannot be matched exactly the mutation is not applied; the
// returned instruction is OpDeferred and the list reloads on unfreeze.
func (c *Controller) ApplyIndexedMutation(key dialog.Key, kind MutationKind, index int, d dialog.Dialog) (Instruction, error) {
	st, ok := c.lists[key]
	if !ok || st.snapshot == nil {
		return Instruction{}, fmt.Errorf("apply %s on %s: %w", kind, key, ErrNotFrozen)
	}
	c.setPhase(key, st, PhaseMutating)

	snap := st.snapshot.list
	var err error
	switch kind {
	case Insert:
		err = snap.InsertAt(index, d)
	case Remove:
		if cur, ok := snap.At(index); ok && cur.ID == d.ID {
			_, err = snap.RemoveAt(index)
		} else {
			err = dialog.ErrIDMismatch
		}
	case Change:
		err = snap.ChangeAt(index, d)
	default:
		return Instruction{}, fmt.Errorf("apply on %s: unknown mutation %s", key, kind)
	}
	if err == nil && kind != Change {
		// Rows entering or leaving the prefix keep the pinned order dense.
		snap.RenumberPinned()
	}
	if err != nil {
		st.coalesced = true
		c.logger.Info("fast path aborted, list will reload",
			zap.Stringer("list", key), zap.Stringer("mutation", kind),
			zap.Int("index", index), zap.Int64("dialog_id", d.ID), zap.Error(err))
		return Instruction{Op: OpDeferred, List: key, Index: index, Dialog: d}, nil
	}

	st.barrier.Mark(kind)
	ins := Instruction{Op: opFor(kind), List: key, Index: index, Dialog: d}
	ins.Apply(c.renderer)
	return ins, nil
}

// EndMutation closes the mutation step of the cycle. If no animation is
// still pending the list unfreezes immediately.
func (c *Controller) EndMutation(key dialog.Key) {
	st, ok := c.lists[key]
	if !ok || st.snapshot == nil {
		return
	}
	c.setPhase(key, st, PhaseAnimating)
	if !st.barrier.Any(Pending) {
		c.Unfreeze(key, st.coalesced)
	}
}

// OnExternalListChanged reports a structural change in the source. Frozen
// lists hold the change back until they unfreeze.
func (c *Controller) OnExternalListChanged(key dialog.Key) Instruction {
	if st, ok := c.lists[key]; ok && st.snapshot != nil {
		st.coalesced = true
		return Instruction{Op: OpDeferred, List: key}
	}
	ins := Instruction{Op: OpReload, List: key}
	ins.Apply(c.renderer)
	return ins
}

// OnLocalMove renders a row moved in the live list from one index to
// another. A frozen list reloads on unfreeze instead.
func (c *Controller) OnLocalMove(key dialog.Key, from, to int) {
	if st, ok := c.lists[key]; ok && st.snapshot != nil {
		st.coalesced = true
		return
	}
	l := c.live.Live(key)
	if l == nil {
		return
	}
	d, ok := l.At(to)
	if !ok {
		return
	}
	Instruction{Op: OpRemove, List: key, Index: from}.Apply(c.renderer)
	Instruction{Op: OpInsert, List: key, Index: to, Dialog: d}.Apply(c.renderer)
}

// OnAnimationFinished is called by the renderer when an animation of kind
// completes on key.
func (c *Controller) OnAnimationFinished(key dialog.Key, kind MutationKind) {
	if st, ok := c.lists[key]; ok {
		st.barrier.Ack(kind)
	}
}

// OnGloballyIdle is called by the renderer when no animation of any kind is
// running. Lists whose barrier holds an acknowledged kind unfreeze.
func (c *Controller) OnGloballyIdle() {
	for _, key := range slices.Collect(maps.Keys(c.lists)) {
		st := c.lists[key]
		if st.snapshot == nil || st.phase != PhaseAnimating || !st.barrier.Any(Acknowledged) {
			continue
		}
		c.Unfreeze(key, st.coalesced)
	}
}
