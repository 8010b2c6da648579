package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"
)

// StatusBar displays the account, daemon state and the state of the shown list.
type StatusBar struct {
	*tview.TextView
	account  string
	status   string
	phase    string
	editing  bool
	selected int
	now      func() time.Time
}

// NewStatusBar creates a new status bar.
func NewStatusBar() *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv, now: time.Now}
}

// SetAccount updates the account name display.
func (sb *StatusBar) SetAccount(name string) {
	sb.account = name
	sb.render()
}

// SetStatus updates the daemon status display.
func (sb *StatusBar) SetStatus(status string) {
	sb.status = status
	sb.render()
}

// SetPhase updates the freeze phase of the shown list.
func (sb *StatusBar) SetPhase(phase string) {
	sb.phase = phase
	sb.render()
}

// SetEditing updates the edit mode indicator.
func (sb *StatusBar) SetEditing(on bool) {
	sb.editing = on
	sb.render()
}

// SetSelected updates the multi-select count. Zero hides it.
func (sb *StatusBar) SetSelected(n int) {
	sb.selected = n
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	line := fmt.Sprintf(" [::b]%s[-:-:-] | %s | %s", sb.account, sb.status, sb.phase)
	if sb.editing {
		line += " | [orange]EDIT PINS[-]"
	}
	if sb.selected > 0 {
		line += fmt.Sprintf(" | [lime]%d selected[-]", sb.selected)
	}
	line += " | " + sb.now().Format("15:04")

	_, _ = fmt.Fprint(sb, line)
}
