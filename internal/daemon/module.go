package daemon

import (
	"context"
	"fmt"

	"github.com/matheus3301/dialogs/internal/account"
	"github.com/matheus3301/dialogs/internal/action"
	"github.com/matheus3301/dialogs/internal/bus"
	"github.com/matheus3301/dialogs/internal/config"
	"github.com/matheus3301/dialogs/internal/eligibility"
	"github.com/matheus3301/dialogs/internal/engine"
	"github.com/matheus3301/dialogs/internal/lock"
	"github.com/matheus3301/dialogs/internal/logging"
	"github.com/matheus3301/dialogs/internal/outbox"
	"github.com/matheus3301/dialogs/internal/status"
	"github.com/matheus3301/dialogs/internal/store"
	"github.com/matheus3301/dialogs/internal/swipe"
	intsync "github.com/matheus3301/dialogs/internal/sync"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Params holds the resolved account configuration passed to the fx module.
type Params struct {
	Account    string
	Paths      account.Paths  // zero value = account.For(Account)
	Config     *config.Config // nil = load account.ConfigPath()
	SocketPath string         // optional override for testing; empty = Paths.Socket()
	Demo       bool           // seed and feed demo dialogs
	Stderr     bool           // log to stderr as well as the log file
	// NewView builds the view drawing the lists; nil = headless.
	NewView func(b *bus.Bus, logger *zap.Logger) View
}

func (p Params) paths() account.Paths {
	if p.Paths.Base == "" {
		return account.For(p.Account)
	}
	return p.Paths
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx")}
		}),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideStateMachine,
			provideLock,
			provideStore,
			provideSyncEngine,
			provideSender,
			provideView,
			provideEngine,
			provideDemoFeed,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(p Params) (*config.Config, error) {
	cfg := p.Config
	if cfg == nil {
		var err error
		if cfg, err = config.LoadOrDefault(account.ConfigPath()); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func provideLogger(p Params, cfg *config.Config) (*zap.Logger, error) {
	return logging.New(p.paths().Log(), p.Account, logging.Options{Level: cfg.Log.Level, Stderr: p.Stderr})
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	paths := p.paths()
	if err := paths.Ensure(); err != nil {
		return nil, err
	}
	logger.Info("acquiring account lock", zap.String("account", p.Account))
	l, err := lock.Acquire(paths.Dir(), p.Account)
	if err != nil {
		return nil, err
	}
	logger.Info("account lock acquired", zap.Int("pid", l.Owner().PID))
	return l, nil
}

// provideStore depends on the lock so that no two daemons migrate the same file.
func provideStore(p Params, _ *lock.Lock, m *status.Machine, logger *zap.Logger) (*store.DB, error) {
	_ = m.Transition(status.Migrating)
	dbPath := p.paths().DB()
	db, err := store.Open(dbPath)
	if err != nil {
		_ = m.Transition(status.Error)
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		_ = m.Transition(status.Error)
		return nil, err
	}
	if result.Changed() {
		logger.Info("migrations applied", zap.Uint("from", result.From), zap.Uint("version", result.Version))
	} else {
		logger.Info("schema up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	_ = m.Transition(status.Loading)
	return db, nil
}

func provideSyncEngine(db *store.DB, b *bus.Bus, logger *zap.Logger) *intsync.Engine {
	return intsync.NewEngine(db, b, logger)
}

func provideSender(db *store.DB, b *bus.Bus, cfg *config.Config, logger *zap.Logger) *outbox.Sender {
	return outbox.NewSender(db, db, b, logger, cfg.Outbox.PollInterval.Duration)
}

func provideView(p Params, b *bus.Bus, logger *zap.Logger) View {
	if p.NewView != nil {
		return p.NewView(b, logger.Named("tui"))
	}
	return newHeadless(logger.Named("view"))
}

func provideEngine(cfg *config.Config, db *store.DB, sender *outbox.Sender, v View, b *bus.Bus, logger *zap.Logger) (*engine.Engine, error) {
	ec, err := engineConfig(cfg)
	if err != nil {
		return nil, err
	}
	return engine.New(ec, db, sender, v, b, logger.Named("engine")), nil
}

// provideDemoFeed returns nil unless the demo was requested.
func provideDemoFeed(p Params, e *intsync.Engine, cfg *config.Config) *intsync.DemoFeed {
	if !p.Demo {
		return nil
	}
	return intsync.NewDemoFeed(e, cfg.SelfID, cfg.Demo.Interval.Duration)
}

func engineConfig(cfg *config.Config) (engine.Config, error) {
	left, err := action.ParseKind(cfg.Swipe.LeftAction)
	if err != nil {
		return engine.Config{}, err
	}
	right, err := action.ParseKind(cfg.Swipe.RightAction)
	if err != nil {
		return engine.Config{}, err
	}
	return engine.Config{
		SelfID:     cfg.SelfID,
		UndoWindow: cfg.Undo.Window.Duration,
		Swipe: swipe.Config{
			CommitFraction: cfg.Swipe.CommitFraction,
			EscapeVelocity: cfg.Swipe.EscapeVelocity,
			LeftAction:     left,
			RightAction:    right,
		},
		Limits: eligibility.Limits{
			MaxPinned:       cfg.Pins.MaxPinned,
			MaxFolderPinned: cfg.Pins.MaxFolderPinned,
			FilterCapacity:  cfg.Pins.FilterCapacity,
		},
	}, nil
}

type lifecycleParams struct {
	fx.In

	Server  *Server
	Lock    *lock.Lock
	DB      *store.DB
	Sync    *intsync.Engine
	Demo    *intsync.DemoFeed
	Sender  *outbox.Sender
	Engine  *engine.Engine
	View    View
	Machine *status.Machine
	Bus     *bus.Bus
	Logger  *zap.Logger
}

func registerLifecycle(lc fx.Lifecycle, lp lifecycleParams) {
	watcher := newStatusWatcher(lp.Machine, lp.Server, lp.Bus, lp.Logger.Named("status"))
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			watcher.Start(context.Background())

			// Start ingestion (subscribes to remote.* bus events).
			lp.Sync.Start(context.Background())
			if lp.Demo != nil {
				if err := lp.Demo.Seed(); err != nil {
					_ = lp.Machine.Transition(status.Error)
					return fmt.Errorf("seed demo: %w", err)
				}
			}

			lp.Engine.Start(context.Background())
			lp.View.Attach(lp.Engine)
			lp.Sender.Start(context.Background())

			// Start gRPC server in background.
			go func() {
				if err := lp.Server.Start(); err != nil {
					lp.Logger.Error("gRPC server error", zap.Error(err))
				}
			}()

			if lp.Demo != nil {
				if err := lp.Demo.Start(context.Background()); err != nil {
					lp.Logger.Warn("demo feed not started", zap.Error(err))
				}
			}

			pending, err := lp.DB.PendingActions()
			switch {
			case err != nil:
				lp.Logger.Error("failed to read outbox", zap.Error(err))
				_ = lp.Machine.Transition(status.Degraded)
			default:
				if len(pending) > 0 {
					lp.Logger.Info("resuming queued actions", zap.Int("count", len(pending)))
				}
				_ = lp.Machine.Transition(status.Ready)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			_ = lp.Machine.Transition(status.Stopping)
			if lp.Demo != nil {
				lp.Demo.Stop()
			}
			// The engine hands armed undo tokens to the sender on its way out.
			lp.Engine.Stop()
			lp.Sender.Stop()
			lp.Sync.Stop()
			lp.Server.Stop(ctx)
			watcher.Stop()
			if err := lp.DB.Close(); err != nil {
				lp.Logger.Warn("error closing store", zap.Error(err))
			}
			if err := lp.Lock.Release(); err != nil {
				lp.Logger.Warn("error releasing lock", zap.Error(err))
			}
			lp.Logger.Info("daemon stopped", zap.Uint64("bus_dropped", lp.Bus.Dropped()))
			return nil
		},
	})
}
