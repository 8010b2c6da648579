// Package engine owns the dialog lists. A single goroutine holds every
// controller and the live cache; callers reach it through Do and the
// methods built on it, so list state never needs a lock.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matheus3301/dialogs/internal/action"
	"github.com/matheus3301/dialogs/internal/bus"
	"github.com/matheus3301/dialogs/internal/dialog"
	"github.com/matheus3301/dialogs/internal/eligibility"
	"github.com/matheus3301/dialogs/internal/pinning"
	"github.com/matheus3301/dialogs/internal/reconcile"
	"github.com/matheus3301/dialogs/internal/swipe"
	"github.com/matheus3301/dialogs/internal/undo"
	"go.uber.org/zap"
)

// ErrStopped is returned by calls made after the engine stopped.
var ErrStopped = errors.New("engine stopped")

// Source serves the authoritative contents of a list.
type Source interface {
	ListDialogs(key dialog.Key) ([]dialog.Dialog, error)
	FilterEntries(filterID int) (int, error)
}

// Committer hands actions to the data source without waiting for them.
type Committer interface {
	undo.Committer
	pinning.OrderCommitter
}

// Config holds the engine's tunables.
type Config struct {
	SelfID     int64
	UndoWindow time.Duration
	Swipe      swipe.Config
	Limits     eligibility.Limits
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	undo []undo.Option
}

// WithUndoOptions passes options to the undo scheduler.
func WithUndoOptions(opts ...undo.Option) Option {
	return func(o *options) { o.undo = append(o.undo, opts...) }
}

// Engine is the single writer of all list state.
type Engine struct {
	cfg       Config
	source    Source
	committer Committer
	bus       *bus.Bus
	logger    *zap.Logger

	mailbox chan func()
	stopped chan struct{}
	cancel  context.CancelFunc
	done    chan struct{}

	// Owned by the loop goroutine.
	live       map[dialog.Key]*dialog.List
	optimistic []action.Pending // handed over, not yet answered by the source
	lists      *reconcile.Controller
	swipe      *swipe.Controller
	pins       *pinning.Controller
	undo       *undo.Scheduler
}

// New creates an engine drawing through r.
func New(cfg Config, src Source, c Committer, r reconcile.Renderer, b *bus.Bus, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	e := &Engine{
		cfg:       cfg,
		source:    src,
		committer: c,
		bus:       b,
		logger:    logger,
		mailbox:   make(chan func(), 64),
		stopped:   make(chan struct{}),
		live:      make(map[dialog.Key]*dialog.List),
	}
	e.lists = reconcile.New(e, r, b, logger.Named("reconcile"))
	e.swipe = swipe.New(cfg.Swipe)
	e.pins = pinning.New(c, logger.Named("pinning"))
	e.undo = undo.New(e.lists, c, e.post, cfg.UndoWindow, b, logger.Named("undo"), o.undo...)
	return e
}

// Start runs the owner loop until ctx is cancelled or Stop is called.
func (e *Engine) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)
	e.done = make(chan struct{})
	ch, unsub := e.bus.Subscribe("dialogs.", 256)
	results, unsubResults := e.bus.Subscribe("action.commit", 256)

	go func() {
		defer close(e.done)
		defer close(e.stopped)
		defer unsub()
		defer unsubResults()
		for {
			select {
			case fn := <-e.mailbox:
				fn()
			case evt := <-ch:
				if change, ok := evt.Payload.(bus.ListsChanged); ok {
					e.onDialogsChanged(change)
				}
			case evt := <-results:
				if res, ok := evt.Payload.(bus.ActionResult); ok {
					e.confirm(res)
				}
			case <-ctx.Done():
				// Armed actions are still handed over; the outbox keeps
				// them across restarts.
				e.undo.CommitAll()
				return
			}
		}
	}()
}

// Stop stops the owner loop and waits for it to exit.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
		<-e.done
	}
}

// Do runs fn on the owner goroutine and waits for it to return.
func (e *Engine) Do(ctx context.Context, fn func()) error {
	ran := make(chan struct{})
	select {
	case e.mailbox <- func() { fn(); close(ran) }:
	case <-e.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ran:
		return nil
	case <-e.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post queues fn for the owner goroutine without waiting. It is safe to
// call from any goroutine, including the owner's.
func (e *Engine) post(fn func()) {
	select {
	case e.mailbox <- fn:
		return
	default:
	}
	go func() {
		select {
		case e.mailbox <- fn:
		case <-e.stopped:
		}
	}()
}

// Live implements reconcile.LiveSource. Lists are loaded on first use.
func (e *Engine) Live(key dialog.Key) *dialog.List {
	if l, ok := e.live[key]; ok {
		return l
	}
	return e.load(key)
}

// load refreshes the cached live view of key from the source. Rows held by
// an undo token stay hidden, an unsaved pinned order is re-applied and
// actions the source has not answered for yet are shown as done.
func (e *Engine) load(key dialog.Key) *dialog.List {
	ds, err := e.source.ListDialogs(key)
	if err != nil {
		e.logger.Error("failed to load list", zap.Stringer("list", key), zap.Error(err))
		if l, ok := e.live[key]; ok {
			return l
		}
		ds = nil
	}

	present := make(map[int64]struct{}, len(ds))
	for _, d := range ds {
		present[d.ID] = struct{}{}
	}
	e.undo.Settle(key, func(id int64) bool {
		_, ok := present[id]
		return ok
	})

	visible := ds[:0:0]
	for _, d := range ds {
		if !e.undo.Hidden(key, d.ID) {
			visible = append(visible, d)
		}
	}
	l, err := dialog.NewList(key, visible)
	if err != nil {
		e.logger.Error("source returned an invalid list", zap.Stringer("list", key), zap.Error(err))
		l, _ = dialog.NewList(key, nil)
	}
	e.pins.Overlay(l)
	for _, a := range e.optimistic {
		e.overlay(key, l, a)
	}
	e.live[key] = l
	return l
}

func (e *Engine) onDialogsChanged(change bus.ListsChanged) {
	for key := range e.live {
		if !change.Affects(key) {
			continue
		}
		e.load(key)
		e.lists.OnExternalListChanged(key)
	}
}

// Dialogs returns the rows the view of key must show.
func (e *Engine) Dialogs(ctx context.Context, key dialog.Key) ([]dialog.Dialog, error) {
	var out []dialog.Dialog
	err := e.Do(ctx, func() { out = e.lists.Dialogs(key) })
	return out, err
}

// Shown is Dialogs for callers already on the owner goroutine, such as a
// renderer capturing rows for ReloadAll.
func (e *Engine) Shown(key dialog.Key) []dialog.Dialog {
	return e.lists.Dialogs(key)
}

// Phase returns the freeze-cycle phase of key.
func (e *Engine) Phase(ctx context.Context, key dialog.Key) (reconcile.Phase, error) {
	var p reconcile.Phase
	err := e.Do(ctx, func() { p = e.lists.Phase(key) })
	return p, err
}

// AnimationFinished is called by the renderer from any goroutine.
func (e *Engine) AnimationFinished(key dialog.Key, kind reconcile.MutationKind) {
	e.post(func() { e.lists.OnAnimationFinished(key, kind) })
}

// GloballyIdle is called by the renderer from any goroutine.
func (e *Engine) GloballyIdle() {
	e.post(e.lists.OnGloballyIdle)
}

func (e *Engine) row(key dialog.Key, index int) (dialog.Dialog, error) {
	ds := e.lists.Dialogs(key)
	if index < 0 || index >= len(ds) {
		return dialog.Dialog{}, fmt.Errorf("row %d of %s: %w", index, key, dialog.ErrIndexOutOfRange)
	}
	return ds[index], nil
}

// eligibility builds the rule context for d as currently shown in key.
func (e *Engine) eligibility(key dialog.Key, d dialog.Dialog) eligibility.Context {
	pinned := 0
	for _, row := range e.lists.Dialogs(key) {
		if row.Pinned() && !row.Synthetic() {
			pinned++
		}
	}
	entries := 0
	if key.Type == dialog.ListFilter {
		n, err := e.source.FilterEntries(key.FilterID)
		if err != nil {
			e.logger.Error("failed to count filter entries", zap.Int("filter_id", key.FilterID), zap.Error(err))
		}
		entries = n
	}
	return eligibility.Context{
		Dialog:      d,
		SelfID:      e.cfg.SelfID,
		PinnedCount: pinned,
		PinLimit:    e.cfg.Limits.PinLimit(key, entries),
		Busy:        e.lists.Busy(d.ID),
	}
}
