// Package vterm implements the terminal emulation core: an escape-sequence
// parser, a styled cell grid with scrollback, and an alternate screen, driven
// by raw child-process output. It performs no I/O and knows nothing about how
// cells are drawn; hosts feed it bytes via Write and read Snapshots back.
package vterm

import "fmt"

// ColorMode discriminates the three kinds of resolved color.
type ColorMode uint8

const (
	ColorDefault ColorMode = iota // terminal default fg/bg
	ColorPalette                  // Value is an index in [0,16)
	ColorRGB                      // R, G, B hold a 24-bit color
)

// Color is a resolved color value. The zero value is the terminal default.
type Color struct {
	Mode    ColorMode
	Value   uint8
	R, G, B uint8
}

func PaletteColor(n uint8) Color {
	return Color{Mode: ColorPalette, Value: n & 0x0f}
}

func RGBColor(r, g, b uint8) Color {
	return Color{Mode: ColorRGB, R: r, G: g, B: b}
}

// Color256 resolves an xterm 256-color index: 0-15 are the standard palette,
// 16-231 the 6x6x6 cube, 232-255 a 24-step grayscale ramp.
func Color256(n uint8) Color {
	switch {
	case n < 16:
		return PaletteColor(n)
	case n < 232:
		n -= 16
		return RGBColor(cubeLevel(n/36), cubeLevel(n/6%6), cubeLevel(n%6))
	default:
		v := 8 + 10*(n-232)
		return RGBColor(v, v, v)
	}
}

func cubeLevel(c uint8) uint8 {
	if c == 0 {
		return 0
	}
	return 55 + 40*c
}

// paletteRGB holds the 16 standard colors in xterm's default scheme, used
// when a palette color has to be flattened to RGB (e.g. for Hex).
var paletteRGB = [16][3]uint8{
	{0, 0, 0}, {205, 0, 0}, {0, 205, 0}, {205, 205, 0},
	{0, 0, 238}, {205, 0, 205}, {0, 205, 205}, {229, 229, 229},
	{127, 127, 127}, {255, 0, 0}, {0, 255, 0}, {255, 255, 0},
	{92, 92, 255}, {255, 0, 255}, {0, 255, 255}, {255, 255, 255},
}

// Hex renders the color as "#rrggbb". Default colors render as the empty
// string since their value is the renderer's to choose.
func (c Color) Hex() string {
	switch c.Mode {
	case ColorRGB:
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	case ColorPalette:
		p := paletteRGB[c.Value&0x0f]
		return fmt.Sprintf("#%02x%02x%02x", p[0], p[1], p[2])
	}
	return ""
}

// AttrMask is a bitmask of boolean text attributes.
type AttrMask uint8

const (
	AttrBold AttrMask = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrReverse
	AttrStrike
)

// Cell is one character position: a display rune plus its resolved style.
// Ch 0 marks the continuation half of a wide glyph; the rune itself lives in
// the cell to its left.
type Cell struct {
	Ch   rune
	FG   Color
	BG   Color
	Attr AttrMask
}

// Continuation reports whether this cell is the right half of a wide glyph.
func (c Cell) Continuation() bool { return c.Ch == 0 }

// blankCell is a space in the given pen's colors. Attributes are not carried
// over: erased cells paint the active background but render no decoration.
func blankCell(pen Style) Cell {
	return Cell{Ch: ' ', FG: pen.FG, BG: pen.BG}
}

// blankLine returns a fresh line of cols default-style space cells.
func blankLine(cols int) []Cell {
	line := make([]Cell, cols)
	for i := range line {
		line[i] = Cell{Ch: ' '}
	}
	return line
}
