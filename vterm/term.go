package vterm

import (
	"fmt"
	"strings"
	"sync"
)

// activeScreen selects which grid receives writes.
type activeScreen uint8

const (
	primaryScreen activeScreen = iota
	alternateScreen
)

// DefaultScrollback is the history limit used when none is configured.
const DefaultScrollback = 10000

// maxPending bounds how much of an unterminated escape sequence we will carry
// between Write calls before declaring it garbage and dropping it.
const maxPending = 8192

// Terminal is one emulated terminal session. Write drains raw child-process
// output synchronously; Snapshot exposes the resulting grid. A single mutex
// serializes the two, so a PTY reader goroutine and a render loop can share
// one Terminal without coordination beyond calling its methods.
type Terminal struct {
	mu sync.Mutex

	cols, rows int
	primary    *screen
	alt        *screen
	active     activeScreen
	pen        Style

	savedX, savedY int
	savedPen       Style

	title   string
	pending string // unconsumed tail of a split escape sequence

	maxScrollback int

	cursorHidden   bool
	appCursorKeys  bool
	bracketedPaste bool

	onTitle func(string)
	respond func(string)
}

// Option configures a Terminal at construction.
type Option func(*Terminal)

// WithScrollback caps the primary screen's history at n lines.
func WithScrollback(n int) Option {
	return func(t *Terminal) {
		if n >= 0 {
			t.maxScrollback = n
		}
	}
}

// WithTitleHandler registers a callback invoked whenever an OSC title
// sequence is processed. It runs with the terminal lock held; hand the value
// off rather than calling back in.
func WithTitleHandler(fn func(string)) Option {
	return func(t *Terminal) { t.onTitle = fn }
}

// WithResponder registers the write-back path for report requests such as the
// cursor position report. Without it, reports are dropped.
func WithResponder(fn func(string)) Option {
	return func(t *Terminal) { t.respond = fn }
}

// New creates a Terminal with a cols x rows viewport. Dimensions are forced
// to at least 1x1.
func New(cols, rows int, opts ...Option) *Terminal {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	t := &Terminal{
		cols:          cols,
		rows:          rows,
		maxScrollback: DefaultScrollback,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.primary = newScreen(cols, rows, true, t.maxScrollback)
	return t
}

func (t *Terminal) scr() *screen {
	if t.active == alternateScreen {
		return t.alt
	}
	return t.primary
}

// Write feeds a chunk of raw output through the emulator. Chunks may split
// anywhere, including mid-sequence: an incomplete tail is carried and
// re-presented with the next chunk, so fragmentation never changes meaning.
func (t *Terminal) Write(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending != "" {
		data = t.pending + data
		t.pending = ""
	}
	i := 0
	for i < len(data) {
		tok := nextToken(data, i)
		if tok.kind == tokIncomplete {
			if len(data)-i > maxPending {
				// An unterminated sequence this long is garbage, not a
				// fragment; drop it so memory stays bounded.
				return
			}
			t.pending = data[i:]
			return
		}
		t.dispatch(tok)
		i += tok.size
	}
}

func (t *Terminal) dispatch(tok token) {
	switch tok.kind {
	case tokLiteral:
		t.scr().writeRune(tok.ch, t.pen)
	case tokControl:
		t.control(tok.ctrl)
	case tokEsc:
		t.escape(tok.final)
	case tokCSI:
		if tok.private {
			t.privateMode(tok.final, tok.params)
		} else {
			t.csi(tok.final, tok.params)
		}
	case tokOSC:
		t.osc(tok.payload)
	}
}

func (t *Terminal) control(b byte) {
	s := t.scr()
	switch b {
	case '\n', 0x0b, 0x0c:
		s.cursorX = 0
		s.lineFeed()
	case '\r':
		s.cursorX = 0
	case '\b':
		s.backspace()
	case '\t':
		s.tab()
	}
	// BEL, NUL, SO, SI and the rest are ignored.
}

func (t *Terminal) escape(final byte) {
	switch final {
	case 'c':
		t.reset()
	case '7':
		t.saveCursor()
	case '8':
		t.restoreCursor()
	case 'M':
		t.scr().reverseIndex()
	case 'D':
		t.scr().lineFeed()
	case 'E':
		s := t.scr()
		s.cursorX = 0
		s.lineFeed()
	}
	// '=', '>' and any other bare escape are no-ops.
}

func (t *Terminal) csi(final byte, params []int) {
	s := t.scr()
	switch final {
	case 'm':
		t.pen.applySGR(params)
	case 'A':
		s.cursorUp(param(params, 0, 1))
	case 'B':
		s.cursorDown(param(params, 0, 1))
	case 'C':
		s.cursorForward(param(params, 0, 1))
	case 'D':
		s.cursorBack(param(params, 0, 1))
	case 'E':
		s.cursorDown(param(params, 0, 1))
		s.cursorX = 0
	case 'F':
		s.cursorUp(param(params, 0, 1))
		s.cursorX = 0
	case 'G':
		s.setColumn(param(params, 0, 1))
	case 'd':
		s.setRow(param(params, 0, 1))
	case 'H', 'f':
		s.moveTo(param(params, 0, 1), param(params, 1, 1))
	case 'J':
		s.eraseDisplay(param(params, 0, 0), t.pen)
	case 'K':
		s.eraseLine(param(params, 0, 0), t.pen)
	case 'L':
		s.insertLines(param(params, 0, 1))
	case 'M':
		s.deleteLines(param(params, 0, 1))
	case 'P':
		s.deleteChars(param(params, 0, 1), t.pen)
	case '@':
		s.insertChars(param(params, 0, 1), t.pen)
	case 'X':
		s.eraseChars(param(params, 0, 1), t.pen)
	case 'S':
		for n := param(params, 0, 1); n > 0; n-- {
			s.scrollUp()
		}
	case 'T':
		for n := param(params, 0, 1); n > 0; n-- {
			s.scrollDown()
		}
	case 'r':
		s.setRegion(param(params, 0, 1), param(params, 1, s.rows))
	case 's':
		t.saveCursor()
	case 'u':
		t.restoreCursor()
	case 'n':
		if param(params, 0, 0) == 6 && t.respond != nil {
			s.clampCursor()
			t.respond(fmt.Sprintf("\x1b[%d;%dR", s.cursorY+1, s.lastCol()+1))
		}
	}
	// Unknown finals were parsed to skip the sequence and mutate nothing.
}

func (t *Terminal) privateMode(final byte, params []int) {
	var set bool
	switch final {
	case 'h':
		set = true
	case 'l':
		set = false
	default:
		return
	}
	for _, mode := range params {
		switch mode {
		case 1: // DECCKM
			t.appCursorKeys = set
		case 25: // DECTCEM
			t.cursorHidden = !set
		case 47, 1047:
			if set {
				t.enterAlt()
			} else {
				t.exitAlt()
			}
		case 1049:
			if set {
				t.saveCursor()
				t.enterAlt()
			} else {
				t.exitAlt()
				t.restoreCursor()
			}
		case 2004:
			t.bracketedPaste = set
		}
	}
}

// enterAlt parks the primary screen untouched and switches writes to a fresh
// fixed-size screen with the cursor homed. Idempotent.
func (t *Terminal) enterAlt() {
	if t.active == alternateScreen {
		return
	}
	t.alt = newScreen(t.cols, t.rows, false, 0)
	t.active = alternateScreen
}

// exitAlt discards the alternate screen and resumes the primary exactly where
// it was left; nothing written while alternate leaks back. Idempotent.
func (t *Terminal) exitAlt() {
	if t.active != alternateScreen {
		return
	}
	t.alt = nil
	t.active = primaryScreen
}

func (t *Terminal) saveCursor() {
	s := t.scr()
	t.savedX, t.savedY = s.cursorX, s.cursorY
	t.savedPen = t.pen
}

func (t *Terminal) restoreCursor() {
	s := t.scr()
	s.cursorX, s.cursorY = t.savedX, t.savedY
	s.clampCursor()
	t.pen = t.savedPen
}

func (t *Terminal) osc(payload string) {
	code, text, ok := strings.Cut(payload, ";")
	if !ok {
		return
	}
	switch code {
	case "0", "1", "2":
		t.title = text
		if t.onTitle != nil {
			t.onTitle(text)
		}
	}
	// Other OSC codes are consumed and ignored.
}

// reset reconstructs the terminal at its current size: blank primary screen,
// no alternate, default pen, cleared title and modes. Equivalent to a fresh
// New, and idempotent.
func (t *Terminal) reset() {
	t.primary = newScreen(t.cols, t.rows, true, t.maxScrollback)
	t.alt = nil
	t.active = primaryScreen
	t.pen = Style{}
	t.savedX, t.savedY = 0, 0
	t.savedPen = Style{}
	t.title = ""
	t.cursorHidden = false
	t.appCursorKeys = false
	t.bracketedPaste = false
}

// Resize reconciles both screens with a new viewport size. Invalid dimensions
// are ignored. The cursor is deliberately not remapped.
func (t *Terminal) Resize(cols, rows int) {
	if cols < 1 || rows < 1 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cols, t.rows = cols, rows
	t.primary.resize(cols, rows)
	if t.alt != nil {
		t.alt.resize(cols, rows)
	}
}

// Size returns the current viewport dimensions.
func (t *Terminal) Size() (cols, rows int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cols, t.rows
}

// Title returns the most recent OSC window title.
func (t *Terminal) Title() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.title
}

// IsAlt reports whether the alternate screen is active.
func (t *Terminal) IsAlt() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active == alternateScreen
}

// ApplicationCursorKeys reports DECCKM state, for hosts translating arrow
// keys into bytes to send.
func (t *Terminal) ApplicationCursorKeys() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.appCursorKeys
}

// BracketedPaste reports whether pasted text should be wrapped in paste
// guards before being written to the child.
func (t *Terminal) BracketedPaste() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bracketedPaste
}

// HistoryLen returns the number of scrollback lines above the active
// viewport. Always zero while the alternate screen is active.
func (t *Terminal) HistoryLen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scr().scrollbackLen()
}

// ContentLine returns a copy of an absolute content row, where row 0 is the
// oldest scrollback line and history precedes the viewport.
func (t *Terminal) ContentLine(row int) ([]Cell, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.scr()
	if row < 0 || row >= s.lines.len() {
		return nil, false
	}
	line := s.lines.at(row)
	out := make([]Cell, len(line))
	copy(out, line)
	return out, true
}

// Snapshot is a render-ready copy of the visible grid.
type Snapshot struct {
	Cols, Rows   int
	Cells        [][]Cell // Rows x Cols, clipped and padded to exactly Cols
	CursorX      int      // clamped into [0, Cols-1]
	CursorY      int
	CursorHidden bool
	Alt          bool
	Title        string
	Scrollback   int // history lines available above the viewport
	ViewOffset   int // how far into history this snapshot is scrolled
}

// Snapshot captures the viewport scrolled up by offset history lines
// (0 = live). The returned cells are copies; mutating them is harmless.
func (t *Terminal) Snapshot(offset int) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.scr()
	sb := s.scrollbackLen()
	offset = clamp(offset, 0, sb)

	snap := Snapshot{
		Cols:         s.cols,
		Rows:         s.rows,
		Cells:        make([][]Cell, s.rows),
		CursorHidden: t.cursorHidden || offset > 0,
		Alt:          t.active == alternateScreen,
		Title:        t.title,
		Scrollback:   sb,
		ViewOffset:   offset,
	}
	start := sb - offset
	for r := 0; r < s.rows; r++ {
		row := make([]Cell, s.cols)
		src := s.lines.at(start + r)
		n := copy(row, src)
		for x := n; x < s.cols; x++ {
			row[x] = Cell{Ch: ' '}
		}
		snap.Cells[r] = row
	}
	snap.CursorY = clamp(s.cursorY, 0, s.rows-1)
	snap.CursorX = clamp(s.cursorX, 0, s.cols-1)
	return snap
}
