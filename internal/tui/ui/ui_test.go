package ui

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestFlashExpiry(t *testing.T) {
	now := time.Unix(1000, 0)
	f := NewFlashModel()
	f.now = func() time.Time { return now }

	f.Info("hello")
	if m := f.GetMessage(); m == nil || m.Text != "hello" || m.Level != FlashInfo {
		t.Fatalf("GetMessage() = %+v", m)
	}
	now = now.Add(6 * time.Second)
	if m := f.GetMessage(); m != nil {
		t.Errorf("expected expired message, got %+v", m)
	}
}

func TestFlashUndo(t *testing.T) {
	now := time.Unix(1000, 0)
	f := NewFlashModel()
	f.now = func() time.Time { return now }

	f.Undo("Archived 1 chat", now.Add(5*time.Second))
	if m := f.GetMessage(); m == nil || m.Level != FlashUndo {
		t.Fatalf("GetMessage() = %+v", m)
	}

	f.ClearUndo()
	if m := f.GetMessage(); m != nil {
		t.Errorf("undo offer should be cleared, got %+v", m)
	}

	f.Err(errors.New("boom"))
	f.ClearUndo()
	if m := f.GetMessage(); m == nil || m.Text != "boom" {
		t.Errorf("ClearUndo should keep other levels, got %+v", m)
	}
}

func TestFlashBarCountdown(t *testing.T) {
	fb := NewFlashBar(DefaultTheme())
	now := time.Unix(1000, 0)
	fb.Update(&FlashMessage{Text: "Archived 2 chats", Level: FlashUndo, Expires: now.Add(3 * time.Second)}, now)

	got := fb.GetText(true)
	if !strings.Contains(got, "Archived 2 chats") || !strings.Contains(got, "undo (3s)") {
		t.Errorf("flash bar = %q", got)
	}
}

func TestTabs(t *testing.T) {
	tabs := NewTabs(DefaultTheme())
	tabs.Update([]string{"Chats", "Archive", "Work"}, 1)

	got := tabs.GetText(true)
	for _, want := range []string{"1 Chats", "2 Archive", "3 Work"} {
		if !strings.Contains(got, want) {
			t.Errorf("tabs = %q, missing %q", got, want)
		}
	}
}

func TestTag(t *testing.T) {
	if got := Tag(DefaultTheme().PinnedColor); !strings.HasPrefix(got, "[") || !strings.HasSuffix(got, "]") {
		t.Errorf("Tag() = %q", got)
	}
}
