package vterm

// Style is the pen: the fg/bg/attribute state copied into every cell as it is
// written. Each Terminal owns exactly one; SGR sequences mutate it in place.
// The zero value is the terminal default.
type Style struct {
	FG   Color
	BG   Color
	Attr AttrMask
}

// applySGR walks one CSI m parameter list left to right. Extended color specs
// (38/48) consume lookahead entries; that consumption has to stay correct even
// for specs we end up ignoring, or later parameters in the same sequence would
// be misread.
func (s *Style) applySGR(params []int) {
	if len(params) == 0 {
		// A bare ESC[m is a full reset.
		params = []int{0}
	}
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			*s = Style{}
		case p == 1:
			s.Attr |= AttrBold
		case p == 2:
			s.Attr |= AttrDim
		case p == 3:
			s.Attr |= AttrItalic
		case p == 4:
			s.Attr |= AttrUnderline
		case p == 7:
			s.Attr |= AttrReverse
		case p == 9:
			s.Attr |= AttrStrike
		case p == 22:
			s.Attr &^= AttrBold | AttrDim
		case p == 23:
			s.Attr &^= AttrItalic
		case p == 24:
			s.Attr &^= AttrUnderline
		case p == 27:
			s.Attr &^= AttrReverse
		case p == 29:
			s.Attr &^= AttrStrike
		case p >= 30 && p <= 37:
			s.FG = PaletteColor(uint8(p - 30))
		case p == 38:
			c, next, ok := extendedColor(params, i)
			if ok {
				s.FG = c
			}
			i = next
		case p == 39:
			s.FG = Color{}
		case p >= 40 && p <= 47:
			s.BG = PaletteColor(uint8(p - 40))
		case p == 48:
			c, next, ok := extendedColor(params, i)
			if ok {
				s.BG = c
			}
			i = next
		case p == 49:
			s.BG = Color{}
		case p >= 90 && p <= 97:
			s.FG = PaletteColor(uint8(p - 90 + 8))
		case p >= 100 && p <= 107:
			s.BG = PaletteColor(uint8(p - 100 + 8))
		}
	}
}

// extendedColor decodes the sub-parameters of SGR 38/48 at params[i] and
// returns the resolved color plus the index of the last parameter consumed.
// Malformed or truncated specs return ok=false with everything recognizable
// consumed, keeping the caller's walk aligned.
func extendedColor(params []int, i int) (c Color, last int, ok bool) {
	if i+1 >= len(params) {
		return Color{}, i, false
	}
	switch params[i+1] {
	case 5:
		if i+2 < len(params) {
			return Color256(clampByte(params[i+2])), i + 2, true
		}
		return Color{}, i + 1, false
	case 2:
		if i+4 < len(params) {
			c = RGBColor(clampByte(params[i+2]), clampByte(params[i+3]), clampByte(params[i+4]))
			return c, i + 4, true
		}
		return Color{}, len(params) - 1, false
	}
	return Color{}, i + 1, false
}

func clampByte(n int) uint8 {
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}
