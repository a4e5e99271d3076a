package vterm

import "testing"

func TestSGRTruecolorRoundTrip(t *testing.T) {
	var pen Style
	pen.applySGR([]int{38, 2, 10, 20, 30})
	if pen.FG != RGBColor(10, 20, 30) {
		t.Fatalf("fg = %+v, want rgb(10,20,30)", pen.FG)
	}
	if pen.FG.Hex() != "#0a141e" {
		t.Fatalf("hex = %q, want #0a141e", pen.FG.Hex())
	}
	pen.applySGR([]int{0})
	if pen.FG != (Color{}) {
		t.Fatalf("fg after reset = %+v, want default", pen.FG)
	}
}

func TestSGRStandardAndBrightPalette(t *testing.T) {
	var pen Style
	pen.applySGR([]int{31, 42})
	if pen.FG != PaletteColor(1) || pen.BG != PaletteColor(2) {
		t.Fatalf("pen = %+v", pen)
	}
	pen.applySGR([]int{95, 104})
	if pen.FG != PaletteColor(13) || pen.BG != PaletteColor(12) {
		t.Fatalf("bright pen = %+v", pen)
	}
	pen.applySGR([]int{39, 49})
	if pen.FG != (Color{}) || pen.BG != (Color{}) {
		t.Fatalf("defaults not restored: %+v", pen)
	}
}

func TestSGRAttributes(t *testing.T) {
	var pen Style
	pen.applySGR([]int{1, 2, 3, 4, 7, 9})
	want := AttrBold | AttrDim | AttrItalic | AttrUnderline | AttrReverse | AttrStrike
	if pen.Attr != want {
		t.Fatalf("attr = %b, want %b", pen.Attr, want)
	}
	pen.applySGR([]int{22, 23, 24, 27, 29})
	if pen.Attr != 0 {
		t.Fatalf("attr after off codes = %b", pen.Attr)
	}
}

func TestSGREmptyParamsResetEverything(t *testing.T) {
	pen := Style{FG: PaletteColor(3), BG: RGBColor(1, 2, 3), Attr: AttrBold}
	pen.applySGR(nil)
	if pen != (Style{}) {
		t.Fatalf("pen = %+v, want zero", pen)
	}
}

func TestSGR256ColorForeground(t *testing.T) {
	var pen Style
	pen.applySGR([]int{48, 5, 196})
	if pen.BG != RGBColor(255, 0, 0) {
		t.Fatalf("cube color = %+v, want rgb(255,0,0)", pen.BG)
	}
	pen.applySGR([]int{38, 5, 10})
	if pen.FG != PaletteColor(10) {
		t.Fatalf("low index = %+v, want palette 10", pen.FG)
	}
}

func TestSGRLookaheadKeepsLaterParamsAligned(t *testing.T) {
	var pen Style
	// The unrecognized trailing 4 must still be seen as underline, not be
	// swallowed by the color spec.
	pen.applySGR([]int{38, 2, 1, 2, 3, 4})
	if pen.FG != RGBColor(1, 2, 3) {
		t.Fatalf("fg = %+v", pen.FG)
	}
	if pen.Attr&AttrUnderline == 0 {
		t.Fatalf("underline lost to color lookahead")
	}

	// 256-color followed by bold.
	pen = Style{}
	pen.applySGR([]int{38, 5, 100, 1})
	if pen.Attr&AttrBold == 0 {
		t.Fatalf("bold lost to color lookahead")
	}
}

func TestSGRMalformedExtendedColorIsIgnored(t *testing.T) {
	var pen Style
	pen.applySGR([]int{38, 5})
	if pen.FG != (Color{}) {
		t.Fatalf("truncated 256 spec set fg: %+v", pen.FG)
	}
	pen.applySGR([]int{38, 2, 1, 2})
	if pen.FG != (Color{}) {
		t.Fatalf("truncated rgb spec set fg: %+v", pen.FG)
	}
}

func TestSGRUnknownCodesIgnored(t *testing.T) {
	pen := Style{FG: PaletteColor(4)}
	pen.applySGR([]int{58, 73, 999})
	if pen.FG != PaletteColor(4) {
		t.Fatalf("unknown codes changed pen: %+v", pen)
	}
}

func TestColor256Mapping(t *testing.T) {
	if got := Color256(3); got != PaletteColor(3) {
		t.Fatalf("index 3 = %+v", got)
	}
	if got := Color256(15); got != PaletteColor(15) {
		t.Fatalf("index 15 = %+v", got)
	}
	// Cube: 16 + 36r + 6g + b, component 0 maps to 0, else 55+40c.
	if got := Color256(16); got != RGBColor(0, 0, 0) {
		t.Fatalf("cube origin = %+v", got)
	}
	if got := Color256(231); got != RGBColor(255, 255, 255) {
		t.Fatalf("cube max = %+v", got)
	}
	if got := Color256(110); got != RGBColor(135, 175, 215) {
		t.Fatalf("cube mid = %+v", got)
	}
	// Grayscale ramp: intensity 8 + 10*step.
	if got := Color256(232); got != RGBColor(8, 8, 8) {
		t.Fatalf("gray low = %+v", got)
	}
	if got := Color256(255); got != RGBColor(238, 238, 238) {
		t.Fatalf("gray high = %+v", got)
	}
}

func TestColorHex(t *testing.T) {
	if got := RGBColor(255, 128, 0).Hex(); got != "#ff8000" {
		t.Fatalf("hex = %q", got)
	}
	if got := (Color{}).Hex(); got != "" {
		t.Fatalf("default hex = %q, want empty", got)
	}
	if got := PaletteColor(9).Hex(); got != "#ff0000" {
		t.Fatalf("palette hex = %q", got)
	}
}
