package daemon

import (
	"sync/atomic"

	"github.com/matheus3301/dialogs/internal/dialog"
	"github.com/matheus3301/dialogs/internal/engine"
	"github.com/matheus3301/dialogs/internal/reconcile"
	"go.uber.org/zap"
)

// View draws the lists. Attach is called once the engine is running; the
// view reports finished animations back to it.
type View interface {
	reconcile.Renderer
	Attach(e *engine.Engine)
}

// headless is the view used without a terminal. Nothing is animated, so
// every instruction is acknowledged as soon as it arrives.
type headless struct {
	logger *zap.Logger
	engine atomic.Pointer[engine.Engine]
}

func newHeadless(logger *zap.Logger) *headless {
	return &headless{logger: logger}
}

func (h *headless) Attach(e *engine.Engine) { h.engine.Store(e) }

func (h *headless) InsertAt(key dialog.Key, index int, d dialog.Dialog) {
	h.logger.Debug("insert", zap.Stringer("list", key), zap.Int("index", index), zap.Int64("dialog_id", d.ID))
	h.finished(key, reconcile.Insert)
}

func (h *headless) RemoveAt(key dialog.Key, index int) {
	h.logger.Debug("remove", zap.Stringer("list", key), zap.Int("index", index))
	h.finished(key, reconcile.Remove)
}

func (h *headless) ChangeAt(key dialog.Key, index int, d dialog.Dialog) {
	h.logger.Debug("change", zap.Stringer("list", key), zap.Int("index", index), zap.Int64("dialog_id", d.ID))
	h.finished(key, reconcile.Change)
}

func (h *headless) ReloadAll(key dialog.Key) {
	h.logger.Debug("reload", zap.Stringer("list", key))
}

func (h *headless) finished(key dialog.Key, kind reconcile.MutationKind) {
	e := h.engine.Load()
	if e == nil {
		return
	}
	e.AnimationFinished(key, kind)
	e.GloballyIdle()
}
