package ui

import (
	"github.com/gdamore/tcell/v2"

	"termemu/config"
	"termemu/vterm"
)

// ansiPalette maps the 16 standard colors onto tcell's named colors, the
// dimmer half first, bright variants above.
var ansiPalette = [16]tcell.Color{
	tcell.ColorBlack, tcell.ColorMaroon, tcell.ColorGreen, tcell.ColorOlive,
	tcell.ColorNavy, tcell.ColorPurple, tcell.ColorTeal, tcell.ColorSilver,
	tcell.ColorGray, tcell.ColorRed, tcell.ColorLime, tcell.ColorYellow,
	tcell.ColorBlue, tcell.ColorFuchsia, tcell.ColorAqua, tcell.ColorWhite,
}

// toTcellColor resolves a core color to a tcell one, substituting def for the
// terminal-default color so the theme decides what "default" looks like.
func toTcellColor(c vterm.Color, def tcell.Color) tcell.Color {
	switch c.Mode {
	case vterm.ColorPalette:
		return ansiPalette[c.Value&0x0f]
	case vterm.ColorRGB:
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	}
	return def
}

// cellStyle builds the tcell style for one core cell under a theme.
func cellStyle(c vterm.Cell, theme *config.ColorScheme) tcell.Style {
	st := tcell.StyleDefault.
		Foreground(toTcellColor(c.FG, theme.Foreground)).
		Background(toTcellColor(c.BG, theme.Background))
	if c.Attr&vterm.AttrBold != 0 {
		st = st.Bold(true)
	}
	if c.Attr&vterm.AttrDim != 0 {
		st = st.Dim(true)
	}
	if c.Attr&vterm.AttrItalic != 0 {
		st = st.Italic(true)
	}
	if c.Attr&vterm.AttrUnderline != 0 {
		st = st.Underline(true)
	}
	if c.Attr&vterm.AttrReverse != 0 {
		st = st.Reverse(true)
	}
	if c.Attr&vterm.AttrStrike != 0 {
		st = st.StrikeThrough(true)
	}
	return st
}
