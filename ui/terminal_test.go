package ui

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"termemu/config"
	"termemu/vterm"
)

func TestKeyBytesArrowModes(t *testing.T) {
	up := tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone)
	if got := string(keyBytes(up, false)); got != "\x1b[A" {
		t.Fatalf("normal up = %q", got)
	}
	if got := string(keyBytes(up, true)); got != "\x1bOA" {
		t.Fatalf("application up = %q", got)
	}
}

func TestKeyBytesRunesAndControls(t *testing.T) {
	r := tcell.NewEventKey(tcell.KeyRune, 'é', tcell.ModNone)
	if got := string(keyBytes(r, false)); got != "é" {
		t.Fatalf("rune = %q", got)
	}
	enter := tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)
	if got := keyBytes(enter, false); len(got) != 1 || got[0] != '\r' {
		t.Fatalf("enter = %v", got)
	}
	ctrlC := tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)
	if got := keyBytes(ctrlC, false); len(got) != 1 || got[0] != 0x03 {
		t.Fatalf("ctrl-c = %v", got)
	}
}

func TestToTcellColor(t *testing.T) {
	if got := toTcellColor(vterm.PaletteColor(1), tcell.ColorDefault); got != tcell.ColorMaroon {
		t.Fatalf("palette 1 = %v", got)
	}
	if got := toTcellColor(vterm.PaletteColor(9), tcell.ColorDefault); got != tcell.ColorRed {
		t.Fatalf("palette 9 = %v", got)
	}
	rgb := toTcellColor(vterm.RGBColor(1, 2, 3), tcell.ColorDefault)
	if rgb != tcell.NewRGBColor(1, 2, 3) {
		t.Fatalf("rgb = %v", rgb)
	}
	def := toTcellColor(vterm.Color{}, tcell.ColorYellow)
	if def != tcell.ColorYellow {
		t.Fatalf("default substituted = %v", def)
	}
}

func TestCellStyleAttributes(t *testing.T) {
	theme := config.Themes["dark"]
	cell := vterm.Cell{Ch: 'x', FG: vterm.PaletteColor(2), Attr: vterm.AttrBold | vterm.AttrUnderline}
	fg, _, attr := cellStyle(cell, theme).Decompose()
	if fg != tcell.ColorGreen {
		t.Fatalf("fg = %v", fg)
	}
	if attr&tcell.AttrBold == 0 || attr&tcell.AttrUnderline == 0 {
		t.Fatalf("attrs = %v", attr)
	}
}

func newTestWidget(t *testing.T, cols, rows int) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	if err := sim.Init(); err != nil {
		t.Fatalf("sim init: %v", err)
	}
	sim.SetSize(cols, rows+1)
	t.Cleanup(sim.Fini)
	// An empty shell cannot be spawned; the widget stays usable without a
	// child, which is exactly what these tests want.
	w := NewTerminal(sim, "", rows, cols, 100)
	w.Theme = config.Themes["dark"]
	return w, sim
}

func TestWidgetRendersEmulatedOutput(t *testing.T) {
	w, sim := newTestWidget(t, 20, 5)
	w.ProcessOutput([]byte("hi\x1b[31m!"))
	w.Render(sim, 0, 0, 20, 6)
	sim.Show()

	cells, width, _ := sim.GetContents()
	rowStart := width // widget row 0 renders at screen row 1, below the separator
	if got := cells[rowStart].Runes[0]; got != 'h' {
		t.Fatalf("cell(0,1) = %q, want h", got)
	}
	if got := cells[rowStart+1].Runes[0]; got != 'i' {
		t.Fatalf("cell(1,1) = %q, want i", got)
	}
	fg, _, _ := cells[rowStart+2].Style.Decompose()
	if fg != tcell.ColorMaroon {
		t.Fatalf("styled cell fg = %v, want maroon", fg)
	}
}

func TestWidgetScrollClampsToHistory(t *testing.T) {
	w, _ := newTestWidget(t, 10, 3)
	w.ProcessOutput([]byte("a\nb\nc\nd\ne"))
	w.ScrollBy(1000)
	if w.viewOffset != w.term.HistoryLen() {
		t.Fatalf("offset = %d, history = %d", w.viewOffset, w.term.HistoryLen())
	}
	w.ScrollBy(-1000)
	if w.viewOffset != 0 {
		t.Fatalf("offset after scroll down = %d", w.viewOffset)
	}
}

func TestWidgetTitleFollowsOSC(t *testing.T) {
	w, _ := newTestWidget(t, 10, 3)
	w.ProcessOutput([]byte("\x1b]2;build ok\x07"))
	if got := w.Title(); got != "build ok" {
		t.Fatalf("title = %q", got)
	}
}
