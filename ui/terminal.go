package ui

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/creack/pty"
	"github.com/gdamore/tcell/v2"

	"termemu/config"
	"termemu/vterm"
)

// TermOutputEvent carries PTY output to the main event loop.
type TermOutputEvent struct {
	tcell.EventTime
	Data []byte
}

// TermTitleEvent reports an OSC title change to the main event loop.
type TermTitleEvent struct {
	tcell.EventTime
	Title string
}

// TermClosedEvent fires once the child process hangs up its side of the PTY.
type TermClosedEvent struct {
	tcell.EventTime
}

var terminalClipboard string

// Terminal hosts one emulated session: it owns the child process and its
// PTY, feeds output into a vterm.Terminal, and renders snapshots to a tcell
// screen. All emulation state lives in the core; this widget only keeps view
// state (scroll position, selection, geometry).
type Terminal struct {
	ptyFile *os.File
	cmd     *exec.Cmd
	term    *vterm.Terminal
	screen  tcell.Screen
	Theme   *config.ColorScheme

	rows, cols int
	focused    bool
	x, y, w, h int

	viewOffset int // 0 = live, >0 = scrolled up into scrollback

	// Mouse selection, in absolute content rows (scrollback included).
	selecting   bool
	selStartRow int
	selStartCol int
	selEndRow   int
	selEndCol   int

	mu sync.Mutex
}

// NewTerminal spawns shell on a PTY and starts pumping its output to the
// event loop. A spawn failure still returns a usable (if inert) widget, so
// the caller's layout code never has to special-case it.
func NewTerminal(screen tcell.Screen, shell string, rows, cols, scrollback int) *Terminal {
	t := &Terminal{
		rows:   rows,
		cols:   cols,
		screen: screen,
	}
	t.term = vterm.New(cols, rows,
		vterm.WithScrollback(scrollback),
		vterm.WithTitleHandler(func(title string) {
			ev := &TermTitleEvent{Title: title}
			ev.SetEventNow()
			screen.PostEvent(ev)
		}),
		vterm.WithResponder(func(reply string) {
			if t.ptyFile != nil {
				t.ptyFile.Write([]byte(reply))
			}
		}),
	)

	cmd := exec.Command(shell)
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
	)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return t
	}

	t.cmd = cmd
	t.ptyFile = ptmx

	// Read PTY output and post events
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := ptmx.Read(buf)
			if err != nil {
				ev := &TermClosedEvent{}
				ev.SetEventNow()
				screen.PostEvent(ev)
				return
			}
			data := make([]byte, n)
			copy(data, buf[:n])
			ev := &TermOutputEvent{Data: data}
			ev.SetEventNow()
			// Use PostEventWait to guarantee no data is lost when the
			// event queue is full (e.g. during heavy output from long commands)
			screen.PostEventWait(ev)
		}
	}()

	return t
}

// ProcessOutput feeds one chunk of child output through the emulator. The
// core tolerates chunks split mid-sequence, so the raw PTY read goes in
// untouched.
func (t *Terminal) ProcessOutput(data []byte) {
	t.term.Write(string(data))
}

// Title returns the child's most recent OSC window title.
func (t *Terminal) Title() string { return t.term.Title() }

func (t *Terminal) Resize(rows, cols int) {
	t.mu.Lock()
	t.rows = rows
	t.cols = cols
	t.mu.Unlock()

	t.term.Resize(cols, rows)

	if t.ptyFile != nil {
		pty.Setsize(t.ptyFile, &pty.Winsize{
			Rows: uint16(rows),
			Cols: uint16(cols),
		})
	}
}

func (t *Terminal) Render(screen tcell.Screen, x, y, width, height int) {
	t.mu.Lock()
	t.x = x
	t.y = y
	t.w = width
	t.h = height
	offset := t.viewOffset
	t.mu.Unlock()

	theme := t.Theme
	if theme == nil {
		theme = config.Themes["monokai"]
	}

	if t.term.IsAlt() {
		offset = 0
	}
	snap := t.term.Snapshot(offset)

	// Separator line at top
	sepStyle := tcell.StyleDefault.Background(theme.Background).Foreground(theme.Border)
	for cx := x; cx < x+width; cx++ {
		screen.SetContent(cx, y, '─', nil, sepStyle)
	}

	renderRows := snap.Rows
	if renderRows > height-1 {
		renderRows = height - 1
	}

	bgStyle := tcell.StyleDefault.Background(theme.Background)
	base := snap.Scrollback - snap.ViewOffset
	for row := 0; row < renderRows; row++ {
		cells := snap.Cells[row]
		for col := 0; col < width; col++ {
			if col >= len(cells) {
				screen.SetContent(x+col, y+1+row, ' ', nil, bgStyle)
				continue
			}
			cell := cells[col]
			if cell.Continuation() {
				// The wide rune to the left spills into this cell.
				continue
			}
			st := cellStyle(cell, theme)
			st = t.selectionStyle(base+row, col, st)
			screen.SetContent(x+col, y+1+row, cell.Ch, nil, st)
		}
	}

	// Blank any widget rows below the emulated viewport.
	for row := renderRows; row < height-1; row++ {
		for col := 0; col < width; col++ {
			screen.SetContent(x+col, y+1+row, ' ', nil, bgStyle)
		}
	}

	if snap.ViewOffset > 0 {
		indicator := fmt.Sprintf(" ↑ %d lines ", snap.ViewOffset)
		indStyle := tcell.StyleDefault.Background(theme.IndicatorBg).Foreground(tcell.ColorWhite).Bold(true)
		indX := x + width - len(indicator)
		for i, ch := range indicator {
			if indX+i >= x && indX+i < x+width {
				screen.SetContent(indX+i, y, ch, nil, indStyle)
			}
		}
	}

	if t.focused && !snap.CursorHidden && snap.CursorY < renderRows && snap.CursorX < width {
		screen.ShowCursor(x+snap.CursorX, y+1+snap.CursorY)
	} else {
		screen.HideCursor()
	}
}

// Write sends bytes to the child process.
func (t *Terminal) Write(data []byte) {
	if t.ptyFile != nil {
		t.ptyFile.Write(data)
	}
}

// ScrollBy moves the scrollback view by delta lines (positive = further into
// history), clamped to the available history.
func (t *Terminal) ScrollBy(delta int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.viewOffset += delta
	if max := t.term.HistoryLen(); t.viewOffset > max {
		t.viewOffset = max
	}
	if t.viewOffset < 0 {
		t.viewOffset = 0
	}
}

func (t *Terminal) HandleKey(ev *tcell.EventKey) bool {
	if !t.focused {
		return false
	}

	// Shift+PgUp/PgDn for scrollback navigation
	if ev.Modifiers()&tcell.ModShift != 0 {
		switch ev.Key() {
		case tcell.KeyPgUp:
			t.ScrollBy(t.rows)
			return true
		case tcell.KeyPgDn:
			t.ScrollBy(-t.rows)
			return true
		}
	}

	data := keyBytes(ev, t.term.ApplicationCursorKeys())
	if data != nil {
		t.Write(data)
	}
	return true
}

// keyBytes translates a tcell key event into the byte sequence a terminal
// sends for it. Arrow keys honor the application cursor key mode requested
// by the child.
func keyBytes(ev *tcell.EventKey, appCursor bool) []byte {
	arrow := func(final byte) []byte {
		if appCursor {
			return []byte{0x1b, 'O', final}
		}
		return []byte{0x1b, '[', final}
	}

	switch ev.Key() {
	case tcell.KeyEnter:
		return []byte{'\r'}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return []byte{0x7f}
	case tcell.KeyTab:
		return []byte{'\t'}
	case tcell.KeyEscape:
		return []byte{0x1b}
	case tcell.KeyUp:
		return arrow('A')
	case tcell.KeyDown:
		return arrow('B')
	case tcell.KeyRight:
		return arrow('C')
	case tcell.KeyLeft:
		return arrow('D')
	case tcell.KeyHome:
		return []byte{0x1b, '[', 'H'}
	case tcell.KeyEnd:
		return []byte{0x1b, '[', 'F'}
	case tcell.KeyPgUp:
		return []byte("\x1b[5~")
	case tcell.KeyPgDn:
		return []byte("\x1b[6~")
	case tcell.KeyDelete:
		return []byte("\x1b[3~")
	case tcell.KeyInsert:
		return []byte("\x1b[2~")
	case tcell.KeyF1:
		return []byte{0x1b, 'O', 'P'}
	case tcell.KeyF2:
		return []byte{0x1b, 'O', 'Q'}
	case tcell.KeyF3:
		return []byte{0x1b, 'O', 'R'}
	case tcell.KeyF4:
		return []byte{0x1b, 'O', 'S'}
	case tcell.KeyF5:
		return []byte("\x1b[15~")
	case tcell.KeyF6:
		return []byte("\x1b[17~")
	case tcell.KeyF7:
		return []byte("\x1b[18~")
	case tcell.KeyF8:
		return []byte("\x1b[19~")
	case tcell.KeyF9:
		return []byte("\x1b[20~")
	case tcell.KeyF10:
		return []byte("\x1b[21~")
	case tcell.KeyF11:
		return []byte("\x1b[23~")
	case tcell.KeyF12:
		return []byte("\x1b[24~")
	case tcell.KeyRune:
		return []byte(string(ev.Rune()))
	}
	// Ctrl-letter combos arrive as the control byte itself.
	if k := ev.Key(); k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		return []byte{byte(k)}
	}
	return nil
}

// PasteClipboard sends the system clipboard contents to the child, falling
// back to the in-process buffer when no system clipboard is reachable.
func (t *Terminal) PasteClipboard() {
	text, err := clipboard.ReadAll()
	if err != nil || text == "" {
		text = terminalClipboard
	}
	if text == "" {
		return
	}
	t.WritePaste(text)
}

// WritePaste wraps text in bracketed paste guards when the child asked for
// them.
func (t *Terminal) WritePaste(text string) {
	if t.term.BracketedPaste() {
		t.Write([]byte("\x1b[200~"))
		t.Write([]byte(text))
		t.Write([]byte("\x1b[201~"))
	} else {
		t.Write([]byte(text))
	}
}

func (t *Terminal) hasSelection() bool {
	return t.selStartRow != t.selEndRow || t.selStartCol != t.selEndCol
}

func (t *Terminal) normalizedSelection() (int, int, int, int, bool) {
	if !t.hasSelection() {
		return 0, 0, 0, 0, false
	}
	sr, sc := t.selStartRow, t.selStartCol
	er, ec := t.selEndRow, t.selEndCol
	if er < sr || (er == sr && ec < sc) {
		sr, sc, er, ec = er, ec, sr, sc
	}
	return sr, sc, er, ec, true
}

func (t *Terminal) selectionStyle(row, col int, base tcell.Style) tcell.Style {
	sr, sc, er, ec, ok := t.normalizedSelection()
	if !ok {
		return base
	}
	if row < sr || row > er {
		return base
	}
	if row == sr && col < sc {
		return base
	}
	if row == er && col > ec {
		return base
	}
	return base.Reverse(true)
}

func (t *Terminal) mouseToContent(mx, my int) (int, int, bool) {
	if t.cols <= 0 {
		return 0, 0, false
	}
	renderRows := t.rows
	if renderRows > t.h-1 {
		renderRows = t.h - 1
	}
	row := my - (t.y + 1)
	if row < 0 || row >= renderRows {
		return 0, 0, false
	}

	col := mx - t.x
	if col < 0 {
		col = 0
	}
	if col >= t.cols {
		col = t.cols - 1
	}

	base := t.term.HistoryLen()
	if t.viewOffset > 0 && !t.term.IsAlt() {
		base -= t.viewOffset
	}
	contentRow := base + row
	if contentRow < 0 {
		return 0, 0, false
	}
	return contentRow, col, true
}

// CopySelection copies the selected content rows to the system clipboard.
func (t *Terminal) CopySelection() bool {
	t.mu.Lock()
	sr, sc, er, ec, ok := t.normalizedSelection()
	t.mu.Unlock()
	if !ok {
		return false
	}

	var out strings.Builder
	for row := sr; row <= er; row++ {
		cells, ok := t.term.ContentLine(row)
		if !ok {
			continue
		}
		start := 0
		end := len(cells)
		if row == sr {
			start = sc
		}
		if row == er {
			end = ec + 1
		}
		if start < 0 {
			start = 0
		}
		if end > len(cells) {
			end = len(cells)
		}
		if start > end {
			start = end
		}

		line := make([]rune, 0, end-start)
		for _, cell := range cells[start:end] {
			if cell.Continuation() {
				continue
			}
			line = append(line, cell.Ch)
		}
		out.WriteString(strings.TrimRight(string(line), " "))
		if row < er {
			out.WriteByte('\n')
		}
	}

	text := out.String()
	if text == "" {
		return false
	}
	terminalClipboard = text
	clipboard.WriteAll(text)
	return true
}

func (t *Terminal) HandleMouse(ev *tcell.EventMouse) bool {
	mx, my := ev.Position()
	t.mu.Lock()
	inside := my >= t.y && my < t.y+t.h
	t.mu.Unlock()
	if !inside {
		return false
	}

	btn := ev.Buttons()
	switch {
	case btn == tcell.WheelUp:
		if !t.term.IsAlt() {
			t.ScrollBy(3)
		}
		return true
	case btn == tcell.WheelDown:
		t.ScrollBy(-3)
		return true
	case btn == tcell.Button1:
		t.mu.Lock()
		row, col, ok := t.mouseToContent(mx, my)
		if ok {
			if !t.selecting {
				t.selStartRow, t.selStartCol = row, col
				t.selEndRow, t.selEndCol = row, col
				t.selecting = true
			} else {
				t.selEndRow, t.selEndCol = row, col
			}
		}
		t.mu.Unlock()
		return true
	case btn == tcell.ButtonNone:
		t.mu.Lock()
		t.selecting = false
		t.mu.Unlock()
		return true
	}
	return true
}

func (t *Terminal) Close() {
	if t.ptyFile != nil {
		t.ptyFile.Close()
	}
	if t.cmd != nil && t.cmd.Process != nil {
		t.cmd.Process.Kill()
		t.cmd.Wait()
	}
}

func (t *Terminal) IsFocused() bool   { return t.focused }
func (t *Terminal) SetFocused(f bool) { t.focused = f }
