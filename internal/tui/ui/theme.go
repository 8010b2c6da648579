package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Theme holds color constants for the TUI.
type Theme struct {
	BgColor           tcell.Color
	FgColor           tcell.Color
	BorderColor       tcell.Color
	BorderEditColor   tcell.Color
	TableCursorFg     tcell.Color
	TableCursorBg     tcell.Color
	TabActiveFg       tcell.Color
	TabActiveBg       tcell.Color
	TabInactiveFg     tcell.Color
	TabInactiveBg     tcell.Color
	MenuKeyColor      tcell.Color
	TitleColor        tcell.Color
	PinnedColor       tcell.Color
	UnreadColor       tcell.Color
	MutedColor        tcell.Color
	SyntheticColor    tcell.Color
	SelectedColor     tcell.Color
	HighlightBg       tcell.Color
	FlashInfoColor    tcell.Color
	FlashWarnColor    tcell.Color
	FlashErrColor     tcell.Color
	PromptBorderColor tcell.Color
}

// DefaultTheme returns a k9s-inspired dark theme.
func DefaultTheme() *Theme {
	return &Theme{
		BgColor:           tcell.ColorBlack,
		FgColor:           tcell.ColorCadetBlue,
		BorderColor:       tcell.ColorDodgerBlue,
		BorderEditColor:   tcell.ColorOrange,
		TableCursorFg:     tcell.ColorBlack,
		TableCursorBg:     tcell.ColorAqua,
		TabActiveFg:       tcell.ColorBlack,
		TabActiveBg:       tcell.ColorOrange,
		TabInactiveFg:     tcell.ColorBlack,
		TabInactiveBg:     tcell.ColorAqua,
		MenuKeyColor:      tcell.ColorDodgerBlue,
		TitleColor:        tcell.ColorFuchsia,
		PinnedColor:       tcell.ColorGold,
		UnreadColor:       tcell.ColorWhite,
		MutedColor:        tcell.ColorGray,
		SyntheticColor:    tcell.ColorMediumPurple,
		SelectedColor:     tcell.ColorLime,
		HighlightBg:       tcell.ColorDarkSlateGray,
		FlashInfoColor:    tcell.ColorNavajoWhite,
		FlashWarnColor:    tcell.ColorOrange,
		FlashErrColor:     tcell.ColorOrangeRed,
		PromptBorderColor: tcell.ColorDodgerBlue,
	}
}

// colorName returns a tview-compatible color name string.
func colorName(c tcell.Color) string {
	for name, val := range tcell.ColorNames {
		if val == c {
			return name
		}
	}
	return fmt.Sprintf("#%06x", c.Hex())
}

// Tag returns the tview color tag for c, e.g. "[gold]".
func Tag(c tcell.Color) string {
	return "[" + colorName(c) + "]"
}
