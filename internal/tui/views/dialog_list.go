package views

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/dialogs/internal/dialog"
	"github.com/matheus3301/dialogs/internal/swipe"
	"github.com/matheus3301/dialogs/internal/tui/ui"
	"github.com/rivo/tview"
)

// Marks decorates rows beyond their dialog data.
type Marks struct {
	Selected  map[int64]bool
	Highlight map[int]bool // rows being animated
	Swipe     *SwipeMark
}

// SwipeMark is a swipe in flight on the row at Index.
type SwipeMark struct {
	Index    int
	Progress swipe.Progress
}

// DialogList is the table showing one dialog list.
type DialogList struct {
	*tview.Table
	theme *ui.Theme
	now   func() time.Time
}

// NewDialogList creates a new dialog list table.
func NewDialogList(theme *ui.Theme) *DialogList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitleColor(theme.TitleColor)

	return &DialogList{Table: table, theme: theme, now: time.Now}
}

// SetEditing switches the border to show pinned-order editing.
func (dl *DialogList) SetEditing(on bool) {
	if on {
		dl.SetBorderColor(dl.theme.BorderEditColor)
	} else {
		dl.SetBorderColor(dl.theme.BorderColor)
	}
}

// Update redraws rows. The cursor is kept in range.
func (dl *DialogList) Update(title string, rows []dialog.Dialog, m Marks) {
	cursor, _ := dl.GetSelection()
	dl.Clear()

	for i, d := range rows {
		fg := dl.theme.FgColor
		switch {
		case d.Synthetic():
			fg = dl.theme.SyntheticColor
		case d.Muted:
			fg = dl.theme.MutedColor
		case d.HasUnread():
			fg = dl.theme.UnreadColor
		}

		mark := " "
		switch {
		case m.Selected[d.ID]:
			mark = "[" + colorTag(dl.theme.SelectedColor) + "]●[-]"
		case d.Pinned():
			mark = "[" + colorTag(dl.theme.PinnedColor) + "]▲[-]"
		}

		name := tview.Escape(cleanTitle(d.Title))
		if m.Swipe != nil && m.Swipe.Index == i {
			name = swipeLabel(m.Swipe.Progress) + name
		}

		bg := dl.theme.BgColor
		if m.Highlight[i] {
			bg = dl.theme.HighlightBg
		}
		dl.SetCell(i, 0, tview.NewTableCell(mark).SetBackgroundColor(bg))
		dl.SetCell(i, 1, tview.NewTableCell(name).SetExpansion(1).SetTextColor(fg).SetBackgroundColor(bg))
		dl.SetCell(i, 2, tview.NewTableCell(badge(d)).SetTextColor(fg).SetBackgroundColor(bg).SetAlign(tview.AlignRight))
		dl.SetCell(i, 3, tview.NewTableCell(formatTimestamp(d.LastActivity, dl.now())).SetTextColor(fg).SetBackgroundColor(bg).SetAlign(tview.AlignRight))
	}

	dl.SetTitle(fmt.Sprintf(" %s (%d) ", title, len(rows)))
	if len(rows) > 0 {
		dl.Select(min(max(cursor, 0), len(rows)-1), 0)
	}
}

// Cursor returns the index of the selected row, or -1 for an empty list.
func (dl *DialogList) Cursor() int {
	if dl.GetRowCount() == 0 {
		return -1
	}
	row, _ := dl.GetSelection()
	return row
}

func swipeLabel(p swipe.Progress) string {
	if p.Direction == swipe.NoDirection {
		return ""
	}
	arrow := "«"
	if p.Direction == swipe.Right {
		arrow = "»"
	}
	label := fmt.Sprintf("%s %s %d%% ", arrow, p.Intent, int(p.Fraction*100))
	if p.Armed {
		return "[::r]" + label + "[-:-:-]"
	}
	return label
}

func badge(d dialog.Dialog) string {
	var parts []string
	if d.Muted {
		parts = append(parts, "muted")
	}
	switch {
	case d.UnreadCount > 0:
		parts = append(parts, fmt.Sprintf("(%d)", d.UnreadCount))
	case d.HasUnreadMark:
		parts = append(parts, "(•)")
	}
	return strings.Join(parts, " ")
}

func formatTimestamp(ms int64, now time.Time) string {
	if ms == 0 {
		return ""
	}
	t := time.UnixMilli(ms)
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("01/02")
}

// cleanTitle drops codepoints tcell renders badly: skin tone modifiers,
// zero width joiners and variation selectors. Other control characters go too.
func cleanTitle(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 0x1F3FB && r <= 0x1F3FF,
			r == 0x200D,
			r >= 0xFE00 && r <= 0xFE0F,
			r >= 0xE0100 && r <= 0xE01EF,
			unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}

func colorTag(c tcell.Color) string {
	return strings.Trim(ui.Tag(c), "[]")
}
