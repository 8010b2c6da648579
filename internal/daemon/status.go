package daemon

import (
	"context"

	"github.com/matheus3301/dialogs/internal/bus"
	"github.com/matheus3301/dialogs/internal/status"
	"go.uber.org/zap"
)

// statusWatcher mirrors the daemon state into the health service and moves
// between Ready and Degraded as commits fail and recover.
type statusWatcher struct {
	machine *status.Machine
	server  *Server
	bus     *bus.Bus
	logger  *zap.Logger
	cancel  context.CancelFunc
	done    chan struct{}
}

func newStatusWatcher(m *status.Machine, srv *Server, b *bus.Bus, logger *zap.Logger) *statusWatcher {
	return &statusWatcher{machine: m, server: srv, bus: b, logger: logger}
}

// Start subscribes to action and status events.
func (w *statusWatcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	actions, unsubActions := w.bus.Subscribe("action.", 64)
	changes, unsubChanges := w.bus.Subscribe("daemon.", 16)
	w.server.SetServing(w.machine.Current().Serving())

	go func() {
		defer close(w.done)
		defer unsubActions()
		defer unsubChanges()
		for {
			select {
			case evt := <-actions:
				w.onAction(evt)
			case evt := <-changes:
				if c, ok := evt.Payload.(status.StatusChange); ok {
					w.logger.Info("status changed", zap.String("from", string(c.From)), zap.String("to", string(c.To)))
					w.server.SetServing(c.To.Serving())
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the watcher and waits for it to exit.
func (w *statusWatcher) Stop() {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
}

func (w *statusWatcher) onAction(evt bus.Event) {
	cur := w.machine.Current()
	switch {
	case evt.Kind == bus.ActionCommitFailed && cur == status.Ready:
		_ = w.machine.Transition(status.Degraded)
	case evt.Kind == bus.ActionCommitted && cur == status.Degraded:
		_ = w.machine.Transition(status.Ready)
	}
}
