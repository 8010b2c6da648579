// Package undo holds destructive actions in a short undo window before they
// are committed to the source. Rows an action removes disappear from the
// list at once and come back at their old positions if the action is undone.
package undo

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/dialogs/internal/action"
	"github.com/matheus3301/dialogs/internal/bus"
	"github.com/matheus3301/dialogs/internal/dialog"
	"github.com/matheus3301/dialogs/internal/reconcile"
	"go.uber.org/zap"
)

// ErrNotArmed is returned when there is no armed token to cancel or commit.
var ErrNotArmed = errors.New("no armed undo token")

// State is the lifecycle state of a token.
type State uint8

const (
	Armed State = iota + 1
	Committed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Armed:
		return "armed"
	case Committed:
		return "committed"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Removed is a row taken out of the list by a token, with the index it had.
type Removed struct {
	Index  int
	Dialog dialog.Dialog
}

// Token is one reversible action.
type Token struct {
	ID       string
	Action   action.Pending
	Payload  any
	Removed  []Removed // ascending by Index
	Deadline time.Time
	State    State

	stop func() bool
}

// NewToken wraps a for scheduling.
func NewToken(a action.Pending, payload any) *Token {
	return &Token{ID: uuid.NewString(), Action: a, Payload: payload}
}

// Lists is the part of the reconciliation controller the scheduler drives.
type Lists interface {
	Freeze(key dialog.Key) *reconcile.Snapshot
	ApplyIndexedMutation(key dialog.Key, kind reconcile.MutationKind, index int, d dialog.Dialog) (reconcile.Instruction, error)
	EndMutation(key dialog.Key)
}

// Committer writes an action to the source. The write is fire-and-forget:
// a nil error only means the action was accepted.
type Committer interface {
	CommitAction(ctx context.Context, a action.Pending) error
}

// AfterFunc runs f once after d and returns a function that stops it.
type AfterFunc func(d time.Duration, f func()) (stop func() bool)

func wallClock(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithAfterFunc replaces the wall-clock timer.
func WithAfterFunc(fn AfterFunc) Option { return func(s *Scheduler) { s.after = fn } }

// WithNow replaces the clock used for deadlines.
func WithNow(fn func() time.Time) Option { return func(s *Scheduler) { s.now = fn } }

// Scheduler keeps at most one armed token per list.
//
// Like the reconciliation controller it must only be used from the owner
// goroutine. Deadlines fire on a timer goroutine and are handed back
// through post.
type Scheduler struct {
	lists     Lists
	committer Committer
	post      func(func())
	window    time.Duration
	after     AfterFunc
	now       func() time.Time
	bus       *bus.Bus
	logger    *zap.Logger

	armed  map[dialog.Key]*Token
	hidden map[dialog.Key]map[int64]bool // id -> committed
}

// New creates a scheduler with the given undo window. post must run its
// argument on the owner goroutine; nil runs it in place.
func New(lists Lists, c Committer, post func(func()), window time.Duration, b *bus.Bus, logger *zap.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if post == nil {
		post = func(f func()) { f() }
	}
	s := &Scheduler{
		lists:     lists,
		committer: c,
		post:      post,
		window:    window,
		after:     wallClock,
		now:       time.Now,
		bus:       b,
		logger:    logger,
		armed:     make(map[dialog.Key]*Token),
		hidden:    make(map[dialog.Key]map[int64]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Armed returns the armed token of key, or nil.
func (s *Scheduler) Armed(key dialog.Key) *Token {
	return s.armed[key]
}

// Hidden reports whether id must be left out of the live view of key.
func (s *Scheduler) Hidden(key dialog.Key, id int64) bool {
	_, ok := s.hidden[key][id]
	return ok
}

// Settle forgets committed rows of key that the source no longer lists.
func (s *Scheduler) Settle(key dialog.Key, present func(id int64) bool) {
	for id, committed := range s.hidden[key] {
		if committed && !present(id) {
			delete(s.hidden[key], id)
		}
	}
}

// Schedule arms tok. An armed token of the same list is committed first.
// Rows removed by the action leave the list immediately.
func (s *Scheduler) Schedule(tok *Token) {
	key := tok.Action.List
	if prev := s.armed[key]; prev != nil {
		s.logger.Info("undo window cut short", zap.String("token", prev.ID))
		s.commit(prev)
	}

	if tok.Action.Kind.RemovesRow() {
		tok.Removed = s.remove(key, tok.Action.Targets)
		hidden := s.hidden[key]
		if hidden == nil {
			hidden = make(map[int64]bool)
			s.hidden[key] = hidden
		}
		for _, r := range tok.Removed {
			hidden[r.Dialog.ID] = false
		}
	}

	tok.State = Armed
	tok.Deadline = s.now().Add(s.window)
	tok.stop = s.after(s.window, func() {
		s.post(func() { s.expire(tok) })
	})
	s.armed[key] = tok

	s.logger.Info("undo armed",
		zap.String("token", tok.ID), zap.Stringer("action", tok.Action.Kind),
		zap.Int("rows", len(tok.Removed)), zap.Time("deadline", tok.Deadline))
	s.bus.Emit(bus.UndoArmed, tok.ID)
}

// remove takes targets out of the snapshot of key, last index first so
// that recorded indices stay valid, and returns them in ascending order.
func (s *Scheduler) remove(key dialog.Key, targets []int64) []Removed {
	snap := s.lists.Freeze(key)
	var removed []Removed
	for _, id := range targets {
		if i := snap.IndexOf(id); i >= 0 {
			d, _ := snap.At(i)
			removed = append(removed, Removed{Index: i, Dialog: d})
		}
	}
	slices.SortFunc(removed, func(a, b Removed) int { return cmp.Compare(b.Index, a.Index) })
	for _, r := range removed {
		if _, err := s.lists.ApplyIndexedMutation(key, reconcile.Remove, r.Index, r.Dialog); err != nil {
			s.logger.Error("optimistic remove failed", zap.Int64("dialog_id", r.Dialog.ID), zap.Error(err))
		}
	}
	s.lists.EndMutation(key)
	slices.Reverse(removed)
	return removed
}

// Cancel undoes the armed token of key. Removed rows return to their
// recorded indices and nothing is written to the source.
func (s *Scheduler) Cancel(key dialog.Key) error {
	tok := s.armed[key]
	if tok == nil {
		return fmt.Errorf("cancel on %s: %w", key, ErrNotArmed)
	}
	tok.stop()
	tok.State = Cancelled
	delete(s.armed, key)

	if len(tok.Removed) > 0 {
		for _, r := range tok.Removed {
			delete(s.hidden[key], r.Dialog.ID)
		}
		snap := s.lists.Freeze(key)
		for _, r := range tok.Removed {
			idx := min(r.Index, snap.Len())
			if _, err := s.lists.ApplyIndexedMutation(key, reconcile.Insert, idx, r.Dialog); err != nil {
				s.logger.Error("restore failed", zap.Int64("dialog_id", r.Dialog.ID), zap.Error(err))
			}
		}
		s.lists.EndMutation(key)
	}

	s.logger.Info("undo cancelled", zap.String("token", tok.ID), zap.Stringer("action", tok.Action.Kind))
	s.bus.Emit(bus.UndoCancelled, tok.ID)
	return nil
}

// Commit ends the undo window of key early.
func (s *Scheduler) Commit(key dialog.Key) error {
	tok := s.armed[key]
	if tok == nil {
		return fmt.Errorf("commit on %s: %w", key, ErrNotArmed)
	}
	s.commit(tok)
	return nil
}

// CommitAll commits every armed token, e.g. on shutdown.
func (s *Scheduler) CommitAll() {
	for _, tok := range s.armed {
		s.commit(tok)
	}
}

func (s *Scheduler) expire(tok *Token) {
	if tok.State != Armed || s.armed[tok.Action.List] != tok {
		return
	}
	s.commit(tok)
}

func (s *Scheduler) commit(tok *Token) {
	key := tok.Action.List
	tok.stop()
	tok.State = Committed
	delete(s.armed, key)
	for _, r := range tok.Removed {
		if _, ok := s.hidden[key][r.Dialog.ID]; ok {
			s.hidden[key][r.Dialog.ID] = true
		}
	}

	// A failed write is not rolled back; the rows stay hidden until the
	// source says otherwise.
	if err := s.committer.CommitAction(context.Background(), tok.Action); err != nil {
		s.logger.Error("failed to commit action", zap.String("token", tok.ID), zap.Stringer("action", tok.Action), zap.Error(err))
	}
	s.logger.Info("undo committed", zap.String("token", tok.ID), zap.Stringer("action", tok.Action.Kind))
	s.bus.Emit(bus.UndoCommitted, tok.ID)
}
