package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/rivo/tview"
)

// FlashLevel represents the severity of a flash message.
type FlashLevel int

const (
	FlashInfo FlashLevel = iota
	FlashWarn
	FlashErr
	// FlashUndo offers to undo an armed action until it expires.
	FlashUndo
)

// FlashMessage is a flash notification with a level and expiry.
type FlashMessage struct {
	Text    string
	Level   FlashLevel
	Expires time.Time
}

// FlashModel holds the current transient notification.
type FlashModel struct {
	mu      sync.RWMutex
	current FlashMessage
	now     func() time.Time
}

// NewFlashModel creates a new flash model.
func NewFlashModel() *FlashModel {
	return &FlashModel{now: time.Now}
}

// Info sets an info-level flash message.
func (f *FlashModel) Info(msg string) {
	f.set(msg, FlashInfo, f.now().Add(5*time.Second))
}

// Warn sets a warn-level flash message.
func (f *FlashModel) Warn(msg string) {
	f.set(msg, FlashWarn, f.now().Add(8*time.Second))
}

// Err sets an error-level flash message.
func (f *FlashModel) Err(err error) {
	f.set(err.Error(), FlashErr, f.now().Add(10*time.Second))
}

// Undo offers to undo msg until deadline.
func (f *FlashModel) Undo(msg string, deadline time.Time) {
	f.set(msg, FlashUndo, deadline)
}

// ClearUndo drops the current message if it is an undo offer.
func (f *FlashModel) ClearUndo() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current.Level == FlashUndo {
		f.current = FlashMessage{}
	}
}

func (f *FlashModel) set(msg string, level FlashLevel, expires time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = FlashMessage{Text: msg, Level: level, Expires: expires}
}

// GetMessage returns the current flash message, or nil if expired.
func (f *FlashModel) GetMessage() *FlashMessage {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.now().Before(f.current.Expires) {
		return nil
	}
	m := f.current
	return &m
}

// FlashBar is the UI component that displays flash notifications.
type FlashBar struct {
	*tview.TextView
	theme *Theme
}

// NewFlashBar creates a new flash notification bar.
func NewFlashBar(theme *Theme) *FlashBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)

	return &FlashBar{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders a flash message on the bar. Undo offers show the seconds
// left before now reaches their expiry.
func (fb *FlashBar) Update(msg *FlashMessage, now time.Time) {
	fb.Clear()
	if msg == nil {
		return
	}

	var color string
	switch msg.Level {
	case FlashInfo, FlashUndo:
		color = colorName(fb.theme.FlashInfoColor)
	case FlashWarn:
		color = colorName(fb.theme.FlashWarnColor)
	case FlashErr:
		color = colorName(fb.theme.FlashErrColor)
	}
	_, _ = fmt.Fprintf(fb, " [%s]%s[-]", color, tview.Escape(msg.Text))
	if msg.Level == FlashUndo {
		left := msg.Expires.Sub(now).Round(time.Second)
		_, _ = fmt.Fprintf(fb, "  [%s::b]<u>[-:-:-] undo (%s)", colorName(fb.theme.MenuKeyColor), left)
	}
}
