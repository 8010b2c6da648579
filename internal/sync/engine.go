// Package sync ingests pushes from the remote source into the store and
// tells the list core which lists changed.
package sync

import (
	"context"
	"fmt"
	"slices"

	"github.com/matheus3301/dialogs/internal/bus"
	"github.com/matheus3301/dialogs/internal/dialog"
	"github.com/matheus3301/dialogs/internal/store"
	"go.uber.org/zap"
)

// Upsert is the payload of a remote.dialog_upsert event.
type Upsert struct {
	Seq     uint64
	Dialog  dialog.Dialog
	Filters []int // filters that include the dialog
}

// Removal is the payload of a remote.dialog_removed event.
type Removal struct {
	Seq uint64
	ID  int64
}

// Engine handles idempotent ingestion of remote dialog updates.
// It subscribes to "remote.*" events on the bus and processes them.
type Engine struct {
	db         *store.DB
	bus        *bus.Bus
	checkpoint *Checkpoint
	logger     *zap.Logger
	cancel     context.CancelFunc
}

// NewEngine creates a new sync engine.
func NewEngine(db *store.DB, b *bus.Bus, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		db:         db,
		bus:        b,
		checkpoint: NewCheckpoint(db),
		logger:     logger,
	}
}

// Start subscribes to remote events on the bus.
func (e *Engine) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)
	ch, unsub := e.bus.Subscribe("remote.", 256)

	go func() {
		defer unsub()
		for {
			select {
			case evt := <-ch:
				e.handleEvent(evt)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the engine.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
}

func (e *Engine) handleEvent(evt bus.Event) {
	switch evt.Kind {
	case bus.RemoteUpsert:
		u, ok := evt.Payload.(Upsert)
		if !ok {
			return
		}
		if err := e.IngestUpsert(u); err != nil {
			e.logger.Error("failed to ingest dialog", zap.Error(err), zap.Int64("dialog_id", u.Dialog.ID))
		}
	case bus.RemoteRemove:
		r, ok := evt.Payload.(Removal)
		if !ok {
			return
		}
		if err := e.IngestRemoval(r); err != nil {
			e.logger.Error("failed to remove dialog", zap.Error(err), zap.Int64("dialog_id", r.ID))
		}
	}
}

// IngestUpsert stores one remote dialog (idempotent).
func (e *Engine) IngestUpsert(u Upsert) error {
	if stale, err := e.checkpoint.Stale(u.Seq); err != nil || stale {
		return err
	}
	old, err := e.db.GetDialog(u.Dialog.ID)
	if err != nil {
		return fmt.Errorf("get dialog: %w", err)
	}
	if err := e.db.UpsertDialog(u.Dialog); err != nil {
		return fmt.Errorf("upsert dialog: %w", err)
	}
	for _, f := range u.Filters {
		if err := e.db.AddToFilter(f, u.Dialog.ID); err != nil {
			return fmt.Errorf("add to filter %d: %w", f, err)
		}
	}
	keys, err := e.affected(u.Dialog, old)
	if err != nil {
		return err
	}
	if err := e.checkpoint.Advance(u.Seq); err != nil {
		return fmt.Errorf("advance checkpoint: %w", err)
	}
	e.bus.Emit(bus.DialogsChanged, bus.ListsChanged{Keys: keys})
	return nil
}

// IngestRemoval deletes one remote dialog. Removing an unknown dialog only
// advances the checkpoint.
func (e *Engine) IngestRemoval(r Removal) error {
	if stale, err := e.checkpoint.Stale(r.Seq); err != nil || stale {
		return err
	}
	old, err := e.db.GetDialog(r.ID)
	if err != nil {
		return fmt.Errorf("get dialog: %w", err)
	}
	var keys []dialog.Key
	if old != nil {
		// Filter membership is gone once the row is deleted.
		if keys, err = e.affected(*old, nil); err != nil {
			return err
		}
		if err := e.db.RemoveDialog(r.ID); err != nil {
			return fmt.Errorf("remove dialog: %w", err)
		}
	}
	if err := e.checkpoint.Advance(r.Seq); err != nil {
		return fmt.Errorf("advance checkpoint: %w", err)
	}
	if old != nil {
		e.bus.Emit(bus.DialogsChanged, bus.ListsChanged{Keys: keys})
	}
	return nil
}

// IngestBatch stores a batch of dialogs in one transaction and reloads
// every list.
func (e *Engine) IngestBatch(ds []dialog.Dialog) error {
	if err := e.db.UpsertDialogs(ds); err != nil {
		return err
	}
	e.logger.Info("dialog batch ingested", zap.Int("dialogs", len(ds)))
	e.bus.Emit(bus.DialogsChanged, bus.ListsChanged{})
	return nil
}

// affected returns the lists showing d now or, through old, before.
func (e *Engine) affected(d dialog.Dialog, old *dialog.Dialog) ([]dialog.Key, error) {
	keys := []dialog.Key{dialog.FolderKey(d.FolderID)}
	if old != nil && old.FolderID != d.FolderID {
		keys = append(keys, dialog.FolderKey(old.FolderID))
	}
	filters, err := e.db.FiltersOf(d.ID)
	if err != nil {
		return nil, fmt.Errorf("filters of %d: %w", d.ID, err)
	}
	for _, f := range filters {
		if k := dialog.FilterKey(f); !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
