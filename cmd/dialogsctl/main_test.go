package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/matheus3301/dialogs/internal/account"
	"github.com/matheus3301/dialogs/internal/action"
	"github.com/matheus3301/dialogs/internal/config"
	"github.com/matheus3301/dialogs/internal/dialog"
	"github.com/matheus3301/dialogs/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestDialogTable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ds := []dialog.Dialog{
		{ID: 1, Title: "Alice", PinnedOrder: 1, UnreadCount: 3, LastActivity: now.Add(-5 * time.Minute).UnixMilli()},
		{ID: 2, Title: "Bob", HasUnreadMark: true, LastActivity: now.Add(-3 * time.Hour).UnixMilli()},
		{ID: 3, Title: "Archive", Variant: dialog.FolderMarker},
	}
	lines := strings.Split(dialogTable(ds, now).String(), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "TITLE")
	assert.Contains(t, lines[1], "Alice")
	assert.Contains(t, lines[1], "5m")
	assert.Contains(t, lines[2], "•")
	assert.Contains(t, lines[2], "3h")
	assert.Contains(t, lines[3], "Archive [folder]")
}

func TestAgo(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "", ago(now, 0))
	assert.Equal(t, "now", ago(now, now.Add(-10*time.Second).UnixMilli()))
	assert.Equal(t, "42m", ago(now, now.Add(-42*time.Minute).UnixMilli()))
	assert.Equal(t, "30h", ago(now, now.Add(-30*time.Hour).UnixMilli()))
	assert.Equal(t, "3d", ago(now, now.Add(-72*time.Hour).UnixMilli()))
}

func TestOutboxTable(t *testing.T) {
	entries := []store.OutboxEntry{
		{Seq: 2, Action: action.New(action.Archive, dialog.FolderKey(0), 10, 11), Status: store.StatusFailed, ErrorMessage: "boom"},
		{Seq: 1, Action: action.New(action.Read, dialog.FilterKey(4), 12), Status: store.StatusDone},
	}
	out := outboxTable(entries).String()
	assert.Contains(t, out, "archive")
	assert.Contains(t, out, "10,11")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "filter:4")
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, initConfig(path, false))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	err = initConfig(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	require.NoError(t, initConfig(path, true))
}

func TestOpenStoreRequiresDatabase(t *testing.T) {
	t.Setenv(account.HomeEnv, t.TempDir())
	g := &globalOptions{account: "work"}
	_, err := g.openStore()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `account "work"`)
}

func TestOpenStoreReadsAccountDatabase(t *testing.T) {
	t.Setenv(account.HomeEnv, t.TempDir())
	p := account.For("work")
	require.NoError(t, p.Ensure())

	db, err := store.Open(p.DB())
	require.NoError(t, err)
	_, err = db.Migrate()
	require.NoError(t, err)
	require.NoError(t, db.UpsertDialog(dialog.Dialog{ID: 5, Title: "Carol"}))
	require.NoError(t, db.Close())

	g := &globalOptions{account: "work"}
	ro, err := g.openStore()
	require.NoError(t, err)
	defer func() { _ = ro.Close() }()
	ds, err := ro.ListDialogs(dialog.FolderKey(dialog.FolderPrimary))
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, "Carol", ds[0].Title)
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"health", "list", "filters", "outbox", "config"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	cmd, _, err := root.Find([]string{"config", "init"})
	require.NoError(t, err)
	assert.Equal(t, "init", cmd.Name())
}
