package daemon

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/matheus3301/dialogs/internal/account"
	"github.com/matheus3301/dialogs/internal/action"
	"github.com/matheus3301/dialogs/internal/bus"
	"github.com/matheus3301/dialogs/internal/config"
	"github.com/matheus3301/dialogs/internal/dialog"
	"github.com/matheus3301/dialogs/internal/engine"
	"github.com/matheus3301/dialogs/internal/lock"
	"github.com/matheus3301/dialogs/internal/status"
	"github.com/matheus3301/dialogs/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// testParams uses a short /tmp base to stay under the 104-char Unix socket limit on macOS.
func testParams(t *testing.T) Params {
	t.Helper()
	tmpDir, err := os.MkdirTemp("/tmp", "dlg-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	cfg := config.Default()
	cfg.Undo.Window = config.Duration{Duration: time.Hour}
	cfg.Outbox.PollInterval = config.Duration{Duration: 10 * time.Millisecond}
	cfg.Demo.Interval = config.Duration{Duration: time.Hour}
	return Params{
		Account: "test",
		Paths:   account.Paths{Base: tmpDir, Name: "test"},
		Config:  cfg,
		Demo:    true,
	}
}

func healthStatus(t *testing.T, socketPath string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	conn, err := grpc.NewClient(
		"unix://"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	return resp.Status
}

func TestFxModuleWiring(t *testing.T) {
	require.NoError(t, fx.ValidateApp(Module(testParams(t))))
}

func TestDaemonLifecycle(t *testing.T) {
	p := testParams(t)
	var (
		eng     *engine.Engine
		machine *status.Machine
		db      *store.DB
	)
	app := fxtest.New(t, Module(p), fx.Populate(&eng, &machine, &db))
	app.RequireStart()

	assert.Equal(t, status.Ready, machine.Current())
	require.Eventually(t, func() bool {
		return healthStatus(t, p.paths().Socket()) == healthpb.HealthCheckResponse_SERVING
	}, 2*time.Second, 10*time.Millisecond)

	ctx := context.Background()
	key := dialog.FolderKey(dialog.FolderPrimary)
	ds, err := eng.Dialogs(ctx, key)
	require.NoError(t, err)
	require.NotEmpty(t, ds, "demo data should be seeded")

	// Read commits straight through the outbox.
	require.NoError(t, eng.Dispatch(ctx, action.New(action.Read, key, 1002)))
	require.Eventually(t, func() bool {
		d, err := db.GetDialog(1002)
		return err == nil && d != nil && d.UnreadCount == 0
	}, 2*time.Second, 10*time.Millisecond)

	app.RequireStop()

	_, err = os.Stat(p.paths().Socket())
	assert.True(t, os.IsNotExist(err), "socket should be removed on stop")

	lk, err := lock.Acquire(p.paths().Dir(), p.Account)
	require.NoError(t, err, "lock should be released on stop")
	_ = lk.Release()
}

func TestArmedUndoSurvivesShutdown(t *testing.T) {
	p := testParams(t)
	var eng *engine.Engine
	app := fxtest.New(t, Module(p), fx.Populate(&eng))
	app.RequireStart()

	ctx := context.Background()
	key := dialog.FolderKey(dialog.FolderPrimary)
	require.NoError(t, eng.Dispatch(ctx, action.New(action.Archive, key, 1003)))
	_, armed, err := eng.Armed(ctx, key)
	require.NoError(t, err)
	require.True(t, armed)

	app.RequireStop()

	db, err := store.Open(p.paths().DB())
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	recent, err := db.RecentActions(10)
	require.NoError(t, err)
	var found bool
	for _, e := range recent {
		if e.Action.Kind == action.Archive && e.Action.Touches(1003) {
			found = true
		}
	}
	assert.True(t, found, "armed archive should reach the outbox")
}

func TestSecondDaemonRefused(t *testing.T) {
	p := testParams(t)
	first := fxtest.New(t, Module(p))
	first.RequireStart()
	defer first.RequireStop()

	second := fx.New(Module(p), fx.NopLogger)
	err := second.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account lock held")
}

func TestStatusWatcher(t *testing.T) {
	p := testParams(t)
	p.SocketPath = p.paths().Base + "/d.sock"

	b := bus.New()
	machine := status.NewMachine(b)
	srv, err := NewServer(p, nil, zap.NewNop())
	require.NoError(t, err)
	go func() { _ = srv.Start() }()
	defer srv.Stop(context.Background())

	w := newStatusWatcher(machine, srv, b, zap.NewNop())
	w.Start(context.Background())
	defer w.Stop()

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, healthStatus(t, p.SocketPath))

	for _, s := range []status.State{status.Migrating, status.Loading, status.Ready} {
		require.NoError(t, machine.Transition(s))
	}
	require.Eventually(t, func() bool {
		return healthStatus(t, p.SocketPath) == healthpb.HealthCheckResponse_SERVING
	}, 2*time.Second, 10*time.Millisecond)

	b.Emit(bus.ActionCommitFailed, nil)
	require.Eventually(t, func() bool { return machine.Current() == status.Degraded }, time.Second, 5*time.Millisecond)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, healthStatus(t, p.SocketPath), "degraded still serves")

	b.Emit(bus.ActionCommitted, nil)
	require.Eventually(t, func() bool { return machine.Current() == status.Ready }, time.Second, 5*time.Millisecond)

	require.NoError(t, machine.Transition(status.Stopping))
	require.Eventually(t, func() bool {
		return healthStatus(t, p.SocketPath) == healthpb.HealthCheckResponse_NOT_SERVING
	}, 2*time.Second, 10*time.Millisecond)

	// Commit events no longer move the state once stopping.
	b.Emit(bus.ActionCommitFailed, nil)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, status.Stopping, machine.Current())
}

func TestEngineConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Swipe.LeftAction = "pin"
	cfg.Swipe.RightAction = ""

	ec, err := engineConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, action.Pin, ec.Swipe.LeftAction)
	assert.Equal(t, action.None, ec.Swipe.RightAction)
	assert.Equal(t, cfg.Undo.Window.Duration, ec.UndoWindow)
	assert.Equal(t, cfg.Pins.MaxPinned, ec.Limits.MaxPinned)

	cfg.Swipe.LeftAction = "explode"
	_, err = engineConfig(cfg)
	assert.Error(t, err)
}
