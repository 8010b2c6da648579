package sync

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/matheus3301/dialogs/internal/bus"
	"github.com/matheus3301/dialogs/internal/dialog"
	"github.com/matheus3301/dialogs/internal/store"
	"go.uber.org/zap"
)

// DemoFilterID is the filter created by the demo feed.
const DemoFilterID = 1

// DemoDialogs returns the dialogs the demo feed starts with. selfID is the
// account's own saved-messages dialog.
func DemoDialogs(selfID int64, now time.Time) []dialog.Dialog {
	at := func(minutesAgo int) int64 { return now.Add(-time.Duration(minutesAgo) * time.Minute).UnixMilli() }
	return []dialog.Dialog{
		{ID: dialog.FolderDialogID(dialog.FolderArchive), Variant: dialog.FolderMarker, Title: "Archived chats", LastActivity: at(0)},
		{ID: selfID, Title: "Saved Messages", PinnedOrder: 1, LastActivity: at(300)},
		{ID: 1001, Title: "Alice", PinnedOrder: 2, UnreadCount: 2, LastActivity: at(3)},
		{ID: -2001, Title: "Platform team", PinnedOrder: 3, Muted: true, UnreadCount: 14, LastActivity: at(1)},
		{ID: 1002, Title: "Bob", UnreadCount: 1, LastActivity: at(5)},
		{ID: 1003, Title: "Carol", LastActivity: at(12)},
		{ID: -2002, Title: "Release notes", Muted: true, LastActivity: at(30)},
		{ID: dialog.EncryptedDialogID(7), Title: "Dave (secret)", LastActivity: at(45)},
		{ID: 1004, Title: "Erin", HasUnreadMark: true, LastActivity: at(60)},
		{ID: 1005, Title: "Frank", LastActivity: at(90)},
		{ID: -2003, Title: "Weekend hikes", LastActivity: at(240)},
		{ID: 1006, Title: "Grace", LastActivity: at(600)},
		{ID: 1007, Title: "Old colleague", FolderID: dialog.FolderArchive, LastActivity: at(5000)},
		{ID: -2004, Title: "Spam-ish group", FolderID: dialog.FolderArchive, Muted: true, LastActivity: at(9000)},
	}
}

// DemoFeed stands in for a remote source. It seeds the store once and then
// keeps pushing activity through the bus.
type DemoFeed struct {
	engine   *Engine
	db       *store.DB
	bus      *bus.Bus
	logger   *zap.Logger
	selfID   int64
	interval time.Duration
	rng      *rand.Rand
	seq      uint64
	cancel   context.CancelFunc
}

// NewDemoFeed creates a feed pushing one update every interval.
func NewDemoFeed(e *Engine, selfID int64, interval time.Duration) *DemoFeed {
	return &DemoFeed{
		engine:   e,
		db:       e.db,
		bus:      e.bus,
		logger:   e.logger.Named("demo"),
		selfID:   selfID,
		interval: interval,
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
	}
}

// Seed fills an empty store with the demo dialogs and a "Work" filter.
func (f *DemoFeed) Seed() error {
	n, err := f.db.DialogCount()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	ds := DemoDialogs(f.selfID, time.Now())
	if err := f.engine.IngestBatch(ds); err != nil {
		return err
	}
	if err := f.db.UpsertFilter(store.Filter{ID: DemoFilterID, Title: "Work"}); err != nil {
		return err
	}
	for _, id := range []int64{1001, -2001, 1003, -2002} {
		if err := f.db.AddToFilter(DemoFilterID, id); err != nil {
			return err
		}
	}
	f.logger.Info("demo data seeded", zap.Int("dialogs", len(ds)))
	return nil
}

// Start begins pushing updates.
func (f *DemoFeed) Start(ctx context.Context) error {
	seq, err := f.engine.checkpoint.Seq()
	if err != nil {
		return err
	}
	f.seq = seq
	ctx, f.cancel = context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				f.tick()
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Stop stops the feed.
func (f *DemoFeed) Stop() {
	if f.cancel != nil {
		f.cancel()
	}
}

func (f *DemoFeed) tick() {
	ds, err := f.db.ListDialogs(dialog.FolderKey(dialog.FolderPrimary))
	if err != nil {
		f.logger.Error("failed to list dialogs", zap.Error(err))
		return
	}
	var candidates []dialog.Dialog
	for _, d := range ds {
		if !d.Synthetic() && d.ID != f.selfID {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		return
	}
	d := candidates[f.rng.IntN(len(candidates))]
	d.LastActivity = time.Now().UnixMilli()
	d.UnreadCount++
	f.seq++
	f.bus.Emit(bus.RemoteUpsert, Upsert{Seq: f.seq, Dialog: d})
}
