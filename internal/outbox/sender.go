// Package outbox applies queued user actions to the data source in the
// background. The list core hands actions over and never waits for them.
package outbox

import (
	"context"
	"time"

	"github.com/matheus3301/dialogs/internal/action"
	"github.com/matheus3301/dialogs/internal/bus"
	"github.com/matheus3301/dialogs/internal/dialog"
	"github.com/matheus3301/dialogs/internal/store"
	"go.uber.org/zap"
)

// Applier writes one action to the data source.
type Applier interface {
	ApplyAction(ctx context.Context, a action.Pending) error
}

// Sender drains the action outbox through an Applier.
type Sender struct {
	db       *store.DB
	applier  Applier
	bus      *bus.Bus
	logger   *zap.Logger
	interval time.Duration
	wake     chan struct{}
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewSender creates a new outbox sender polling every interval.
func NewSender(db *store.DB, applier Applier, b *bus.Bus, logger *zap.Logger, interval time.Duration) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Sender{
		db:       db,
		applier:  applier,
		bus:      b,
		logger:   logger,
		interval: interval,
		wake:     make(chan struct{}, 1),
	}
}

// CommitAction queues a for applying. It returns once the action is stored.
func (s *Sender) CommitAction(_ context.Context, a action.Pending) error {
	if err := s.db.QueueAction(a); err != nil {
		return err
	}
	s.bus.Emit(bus.ActionQueued, a)
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

// CommitPinnedOrder queues a reorder of the pinned prefix of key.
func (s *Sender) CommitPinnedOrder(ctx context.Context, key dialog.Key, order []int64) error {
	return s.CommitAction(ctx, action.New(action.Reorder, key, order...))
}

// Start begins polling the outbox for pending actions.
func (s *Sender) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.loop(ctx)
}

// Stop stops the sender loop and waits for it to exit.
func (s *Sender) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}

func (s *Sender) loop(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.processPending(ctx)
		case <-s.wake:
			s.processPending(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Sender) processPending(ctx context.Context) {
	pending, err := s.db.PendingActions()
	if err != nil {
		s.logger.Error("failed to read outbox", zap.Error(err))
		return
	}

	applied := 0
	for _, entry := range pending {
		a := entry.Action
		if err := s.db.MarkActionApplying(a.ID); err != nil {
			s.logger.Error("failed to mark applying", zap.Error(err), zap.String("action_id", a.ID))
			continue
		}

		if err := s.applier.ApplyAction(ctx, a); err != nil {
			s.logger.Error("failed to commit action", zap.Error(err), zap.String("action_id", a.ID), zap.Stringer("action", a))
			_ = s.db.MarkActionFailed(a.ID, err.Error())
			s.bus.Emit(bus.ActionCommitFailed, bus.ActionResult{Action: a, Err: err.Error()})
			continue
		}

		if err := s.db.MarkActionDone(a.ID); err != nil {
			s.logger.Error("failed to mark done", zap.Error(err), zap.String("action_id", a.ID))
		}
		s.logger.Info("action committed", zap.String("action_id", a.ID), zap.Stringer("action", a))
		s.bus.Emit(bus.ActionCommitted, bus.ActionResult{Action: a})
		applied++
	}

	// Archive, delete and block touch more than the list they came from,
	// so every open list reloads.
	if applied > 0 {
		s.bus.Emit(bus.DialogsChanged, bus.ListsChanged{})
	}
}
