package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// Tabs is the bar naming the lists the view can switch between.
type Tabs struct {
	*tview.TextView
	theme *Theme
}

// NewTabs creates a new tab bar.
func NewTabs(theme *Theme) *Tabs {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)

	return &Tabs{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders titles with the one at active highlighted. Each tab is
// prefixed with its number key.
func (t *Tabs) Update(titles []string, active int) {
	t.Clear()
	parts := make([]string, 0, len(titles))
	for i, title := range titles {
		fg, bg := t.theme.TabInactiveFg, t.theme.TabInactiveBg
		attr := ""
		if i == active {
			fg, bg, attr = t.theme.TabActiveFg, t.theme.TabActiveBg, "b"
		}
		parts = append(parts, fmt.Sprintf("[%s:%s:%s] %d %s [-:-:-]",
			colorName(fg), colorName(bg), attr, i+1, tview.Escape(title)))
	}
	_, _ = fmt.Fprint(t, strings.Join(parts, " "))
}
