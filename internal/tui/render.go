package tui

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/matheus3301/dialogs/internal/action"
	"github.com/matheus3301/dialogs/internal/dialog"
	"github.com/matheus3301/dialogs/internal/reconcile"
	"github.com/matheus3301/dialogs/internal/swipe"
	"github.com/matheus3301/dialogs/internal/undo"
	"go.uber.org/zap"
)

// Engine is the part of the list engine the terminal view drives.
type Engine interface {
	Do(ctx context.Context, fn func()) error
	Shown(key dialog.Key) []dialog.Dialog
	AnimationFinished(key dialog.Key, kind reconcile.MutationKind)
	GloballyIdle()
	Phase(ctx context.Context, key dialog.Key) (reconcile.Phase, error)

	BeginSwipe(ctx context.Context, key dialog.Key, index int) error
	UpdateSwipe(ctx context.Context, dx, rowWidth float64) (swipe.Progress, error)
	EndSwipe(ctx context.Context, dx, velocity, rowWidth float64) (swipe.Outcome, error)
	SetMultiSelect(ctx context.Context, on bool) error
	SetTabSwitching(ctx context.Context, on bool) error
	Dispatch(ctx context.Context, a action.Pending) error
	Undo(ctx context.Context, key dialog.Key) error
	Armed(ctx context.Context, key dialog.Key) (undo.Token, bool, error)
	SetEditMode(ctx context.Context, on bool) (int, error)
	Drop(ctx context.Context, key dialog.Key, from, to int) error
}

type opKind uint8

const (
	opInsert opKind = iota
	opRemove
	opChange
	opReload
)

// op is one renderer call, recorded on the engine goroutine.
type op struct {
	kind   opKind
	key    dialog.Key
	index  int
	dialog dialog.Dialog
	rows   []dialog.Dialog
}

func (o op) mutation() reconcile.MutationKind {
	switch o.kind {
	case opInsert:
		return reconcile.Insert
	case opRemove:
		return reconcile.Remove
	}
	return reconcile.Change
}

// renderQueue hands renderer calls from the engine goroutine to the UI
// goroutine. Pushing never blocks.
type renderQueue struct {
	mu   sync.Mutex
	ops  []op
	kick chan struct{}
}

func newRenderQueue() *renderQueue {
	return &renderQueue{kick: make(chan struct{}, 1)}
}

func (q *renderQueue) push(o op) {
	q.mu.Lock()
	q.ops = append(q.ops, o)
	q.mu.Unlock()
	select {
	case q.kick <- struct{}{}:
	default:
	}
}

func (q *renderQueue) take() []op {
	q.mu.Lock()
	defer q.mu.Unlock()
	ops := q.ops
	q.ops = nil
	return ops
}

// InsertAt implements reconcile.Renderer.
func (a *App) InsertAt(key dialog.Key, index int, d dialog.Dialog) {
	a.queue.push(op{kind: opInsert, key: key, index: index, dialog: d})
}

// RemoveAt implements reconcile.Renderer.
func (a *App) RemoveAt(key dialog.Key, index int) {
	a.queue.push(op{kind: opRemove, key: key, index: index})
}

// ChangeAt implements reconcile.Renderer.
func (a *App) ChangeAt(key dialog.Key, index int, d dialog.Dialog) {
	a.queue.push(op{kind: opChange, key: key, index: index, dialog: d})
}

// ReloadAll implements reconcile.Renderer. It runs on the engine
// goroutine, so the rows captured here are exactly the ones shown now.
func (a *App) ReloadAll(key dialog.Key) {
	var rows []dialog.Dialog
	if e := a.eng(); e != nil {
		rows = e.Shown(key)
	}
	a.queue.push(op{kind: opReload, key: key, rows: rows})
}

// drain moves queued renderer calls to the UI goroutine until ctx ends.
func (a *App) drain(ctx context.Context) {
	for {
		select {
		case <-a.queue.kick:
			if ops := a.queue.take(); len(ops) > 0 {
				a.queueDraw(func() { a.apply(ops) })
			}
		case <-ctx.Done():
			return
		}
	}
}

// apply runs on the UI goroutine.
func (a *App) apply(ops []op) {
	for _, o := range ops {
		rows := a.rows[o.key]
		switch o.kind {
		case opReload:
			a.rows[o.key] = slices.Clone(o.rows)
			continue
		case opInsert:
			if o.index >= 0 && o.index <= len(rows) {
				a.rows[o.key] = slices.Insert(rows, o.index, o.dialog)
			} else {
				a.resync(o.key)
			}
		case opRemove:
			if o.index >= 0 && o.index < len(rows) {
				a.rows[o.key] = slices.Delete(rows, o.index, o.index+1)
			} else {
				a.resync(o.key)
			}
		case opChange:
			if o.index >= 0 && o.index < len(rows) {
				rows[o.index] = o.dialog
			} else {
				a.resync(o.key)
			}
		}
		if o.kind != opRemove {
			a.highlight(o.key, o.index)
		}
		a.animate(o.key, o.mutation())
	}
	a.redraw()
}

func (a *App) highlight(key dialog.Key, index int) {
	if a.highlights[key] == nil {
		a.highlights[key] = make(map[int]bool)
	}
	a.highlights[key][index] = true
}

// animate plays a row animation and reports it finished. When the last
// running animation ends the engine is told the view is idle.
func (a *App) animate(key dialog.Key, kind reconcile.MutationKind) {
	a.running++
	a.after(a.anim, func() {
		a.queueDraw(func() {
			if e := a.eng(); e != nil {
				e.AnimationFinished(key, kind)
			}
			a.running--
			if a.running > 0 {
				return
			}
			clear(a.highlights)
			a.redraw()
			if e := a.eng(); e != nil {
				e.GloballyIdle()
			}
		})
	})
}

// resync reloads key from the engine. Used when the view lost track of
// a list, e.g. the first time a tab is shown.
func (a *App) resync(key dialog.Key) {
	e := a.eng()
	if e == nil {
		return
	}
	go func() {
		if err := e.Do(a.ctx, func() { a.ReloadAll(key) }); err != nil {
			a.logger.Debug("resync skipped", zap.Stringer("list", key), zap.Error(err))
		}
	}()
}

func defaultAfter(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}
