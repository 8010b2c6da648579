package views

import (
	"strings"
	"testing"
	"time"

	"github.com/matheus3301/dialogs/internal/action"
	"github.com/matheus3301/dialogs/internal/dialog"
	"github.com/matheus3301/dialogs/internal/swipe"
	"github.com/matheus3301/dialogs/internal/tui/ui"
)

func TestDialogListUpdate(t *testing.T) {
	dl := NewDialogList(ui.DefaultTheme())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)
	dl.now = func() time.Time { return now }

	rows := []dialog.Dialog{
		{ID: 1, Title: "Alice", PinnedOrder: 1, UnreadCount: 3, LastActivity: now.Add(-time.Hour).UnixMilli()},
		{ID: 2, Title: "Bob", Muted: true, LastActivity: now.AddDate(0, 0, -3).UnixMilli()},
	}
	dl.Update("Chats", rows, Marks{})

	if dl.GetRowCount() != 2 {
		t.Fatalf("rows = %d, want 2", dl.GetRowCount())
	}
	if got := dl.GetCell(0, 1).Text; got != "Alice" {
		t.Errorf("title = %q", got)
	}
	if got := dl.GetCell(0, 2).Text; got != "(3)" {
		t.Errorf("badge = %q", got)
	}
	if got := dl.GetCell(0, 3).Text; got != "11:00" {
		t.Errorf("time = %q", got)
	}
	if got := dl.GetCell(1, 2).Text; got != "muted" {
		t.Errorf("muted badge = %q", got)
	}
	if got := dl.GetCell(1, 3).Text; got != "02/26" {
		t.Errorf("date = %q", got)
	}
	if !strings.Contains(dl.GetTitle(), "Chats (2)") {
		t.Errorf("title = %q", dl.GetTitle())
	}
}

func TestDialogListCursorClamped(t *testing.T) {
	dl := NewDialogList(ui.DefaultTheme())
	rows := []dialog.Dialog{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}, {ID: 3, Title: "c"}}
	dl.Update("Chats", rows, Marks{})
	dl.Select(2, 0)

	dl.Update("Chats", rows[:1], Marks{})
	if got := dl.Cursor(); got != 0 {
		t.Errorf("Cursor() = %d, want 0", got)
	}

	dl.Update("Chats", nil, Marks{})
	if got := dl.Cursor(); got != -1 {
		t.Errorf("Cursor() on empty list = %d, want -1", got)
	}
}

func TestDialogListSwipeLabel(t *testing.T) {
	dl := NewDialogList(ui.DefaultTheme())
	rows := []dialog.Dialog{{ID: 1, Title: "Alice"}}
	dl.Update("Chats", rows, Marks{Swipe: &SwipeMark{
		Index:    0,
		Progress: swipe.Progress{Direction: swipe.Left, Intent: action.Archive, Fraction: 0.5, Armed: true},
	}})

	got := dl.GetCell(0, 1).Text
	if !strings.Contains(got, "« archive 50%") || !strings.HasSuffix(got, "Alice") {
		t.Errorf("swiped title = %q", got)
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"thumbs \U0001F44D\U0001F3FB", "thumbs \U0001F44D"},
		{"a\u200db", "ab"},
		{"tab\there", "tabhere"},
	}
	for _, tt := range tests {
		if got := cleanTitle(tt.in); got != tt.want {
			t.Errorf("cleanTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStatusBar(t *testing.T) {
	sb := NewStatusBar()
	sb.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.Local) }
	sb.SetAccount("main")
	sb.SetStatus("READY")
	sb.SetPhase("IDLE")
	sb.SetSelected(2)

	got := sb.GetText(true)
	for _, want := range []string{"main", "READY", "IDLE", "2 selected", "09:30"} {
		if !strings.Contains(got, want) {
			t.Errorf("status bar %q missing %q", got, want)
		}
	}
}
