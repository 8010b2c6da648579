package views

import (
	"fmt"
	"strings"

	"github.com/matheus3301/dialogs/internal/tui/ui"
	"github.com/rivo/tview"
)

// HelpView displays key binding reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{
		TextView: tv,
		theme:    theme,
	}
	hv.render()
	return hv
}

var helpSections = []struct {
	title string
	keys  [][2]string
}{
	{"Dialog List", [][2]string{
		{"j/k", "Move down / up"},
		{"h / l", "Swipe left / right (past the commit threshold)"},
		{"H / L", "Flick left / right (short and fast)"},
		{"y", "Start a short swipe that is released and cancelled"},
		{"u", "Undo the last archive or delete"},
		{"Tab / 1-9", "Next tab / jump to tab"},
	}},
	{"Selection", [][2]string{
		{"Space", "Toggle selection of the row"},
		{":", "Run a command on the selection"},
		{"Esc", "Clear selection"},
	}},
	{"Pinned Order", [][2]string{
		{"e", "Toggle edit mode; leaving commits the new order"},
		{"J / K", "Move a pinned row down / up"},
	}},
	{"Commands", [][2]string{
		{":pin :unpin", "Pin or unpin"},
		{":read :unread", "Mark read or unread"},
		{":mute :unmute", "Mute or unmute"},
		{":archive :unarchive", "Move between folders"},
		{":delete :clear :block", "Destructive actions"},
		{":quit", "Quit"},
	}},
}

func (hv *HelpView) render() {
	kc := fmt.Sprintf("#%06x", hv.theme.MenuKeyColor.Hex())

	var b strings.Builder
	for _, s := range helpSections {
		fmt.Fprintf(&b, "\n  [::b]%s[-:-:-]\n\n", s.title)
		for _, k := range s.keys {
			fmt.Fprintf(&b, "  [%s]%-24s[-:-:-] %s\n", kc, tview.Escape(k[0]), k[1])
		}
	}
	_, _ = fmt.Fprint(hv, b.String())
}
