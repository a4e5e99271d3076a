package vterm

import "github.com/mattn/go-runewidth"

// lineDeque stores lines in a circular slice: appending at the back and
// evicting scrollback at the front are both O(1), so heavy output never pays
// for history trimming.
type lineDeque struct {
	buf  [][]Cell
	head int
	n    int
}

func (d *lineDeque) len() int { return d.n }

func (d *lineDeque) at(i int) []Cell {
	return d.buf[(d.head+i)%len(d.buf)]
}

func (d *lineDeque) set(i int, line []Cell) {
	d.buf[(d.head+i)%len(d.buf)] = line
}

func (d *lineDeque) pushBack(line []Cell) {
	if d.n == len(d.buf) {
		d.grow()
	}
	d.buf[(d.head+d.n)%len(d.buf)] = line
	d.n++
}

func (d *lineDeque) popFront() []Cell {
	line := d.buf[d.head]
	d.buf[d.head] = nil
	d.head = (d.head + 1) % len(d.buf)
	d.n--
	return line
}

func (d *lineDeque) grow() {
	size := len(d.buf) * 2
	if size < 8 {
		size = 8
	}
	buf := make([][]Cell, size)
	for i := 0; i < d.n; i++ {
		buf[i] = d.at(i)
	}
	d.buf = buf
	d.head = 0
}

// screen owns one grid: scrollback plus viewport as a single line sequence,
// the cursor, and the scroll region. The primary and alternate screens are
// two independent instances; switching between them swaps whole screens, so
// there is no save/restore field juggling to get out of sync.
type screen struct {
	cols, rows    int
	lines         lineDeque
	cursorX       int // may rest at cols after writing the last column
	cursorY       int
	scrollTop     int
	scrollBot     int
	history       bool // lineFeed at the bottom grows scrollback
	maxScrollback int
}

func newScreen(cols, rows int, history bool, maxScrollback int) *screen {
	s := &screen{
		cols:          cols,
		rows:          rows,
		scrollBot:     rows - 1,
		history:       history,
		maxScrollback: maxScrollback,
	}
	for i := 0; i < rows; i++ {
		s.lines.pushBack(blankLine(cols))
	}
	return s
}

// scrollbackLen is the number of history lines above the viewport.
func (s *screen) scrollbackLen() int { return s.lines.len() - s.rows }

// row returns viewport row r, padded out to at least x+1 cells when a partial
// resize left it short.
func (s *screen) row(r int) []Cell {
	return s.lines.at(s.scrollbackLen() + r)
}

func (s *screen) padRow(r, x int) []Cell {
	line := s.row(r)
	for len(line) <= x {
		line = append(line, Cell{Ch: ' '})
	}
	s.lines.set(s.scrollbackLen()+r, line)
	return line
}

// clampCursor pulls the cursor back into the viewport before grid access.
// Resize deliberately leaves the cursor where it was, so every path that
// indexes by cursor position re-clamps first.
func (s *screen) clampCursor() {
	if s.cursorY < 0 {
		s.cursorY = 0
	}
	if s.cursorY >= s.rows {
		s.cursorY = s.rows - 1
	}
	if s.cursorX < 0 {
		s.cursorX = 0
	}
	if s.cursorX > s.cols {
		s.cursorX = s.cols
	}
}

// lastCol is the cursor column clamped onto the grid, for operations that act
// on the cell under the cursor while it rests past the right edge.
func (s *screen) lastCol() int {
	if s.cursorX >= s.cols {
		return s.cols - 1
	}
	return s.cursorX
}

// writeRune places one printable rune at the cursor with the given pen,
// wrapping first if the previous write filled the last column. Wide glyphs
// occupy two cells; the right half is a continuation cell.
func (s *screen) writeRune(r rune, pen Style) {
	w := runewidth.RuneWidth(r)
	if w <= 0 {
		return
	}
	s.clampCursor()
	if s.cursorX+w > s.cols {
		s.cursorX = 0
		s.lineFeed()
	}
	line := s.padRow(s.cursorY, s.cursorX+w-1)
	line[s.cursorX] = Cell{Ch: r, FG: pen.FG, BG: pen.BG, Attr: pen.Attr}
	if w == 2 {
		line[s.cursorX+1] = Cell{FG: pen.FG, BG: pen.BG, Attr: pen.Attr}
	}
	s.cursorX += w
}

// lineFeed moves the cursor down, scrolling when it sits on the region
// bottom. The column is left alone; the caller resets it for a real newline.
func (s *screen) lineFeed() {
	s.clampCursorY()
	if s.cursorY == s.scrollBot {
		s.scrollUp()
	} else if s.cursorY < s.rows-1 {
		s.cursorY++
	}
}

func (s *screen) clampCursorY() {
	if s.cursorY < 0 {
		s.cursorY = 0
	}
	if s.cursorY >= s.rows {
		s.cursorY = s.rows - 1
	}
}

// scrollUp scrolls the region up one line. With history enabled and the
// region spanning the whole viewport this is a plain append: the top line
// slides into scrollback and the oldest history line is evicted once the
// limit is hit. A partial region rotates in place and retains nothing.
func (s *screen) scrollUp() {
	if s.history && s.scrollTop == 0 && s.scrollBot == s.rows-1 {
		s.lines.pushBack(blankLine(s.cols))
		for s.lines.len() > s.maxScrollback+s.rows {
			s.lines.popFront()
		}
		return
	}
	sb := s.scrollbackLen()
	for i := s.scrollTop; i < s.scrollBot; i++ {
		s.lines.set(sb+i, s.lines.at(sb+i+1))
	}
	s.lines.set(sb+s.scrollBot, blankLine(s.cols))
}

// scrollDown scrolls the region down one line (reverse index at the top).
func (s *screen) scrollDown() {
	sb := s.scrollbackLen()
	for i := s.scrollBot; i > s.scrollTop; i-- {
		s.lines.set(sb+i, s.lines.at(sb+i-1))
	}
	s.lines.set(sb+s.scrollTop, blankLine(s.cols))
}

func (s *screen) reverseIndex() {
	s.clampCursorY()
	if s.cursorY == s.scrollTop {
		s.scrollDown()
	} else if s.cursorY > 0 {
		s.cursorY--
	}
}

// Cursor motion: clamped, never wrapping, never scrolling.

func (s *screen) cursorUp(n int) {
	s.cursorY -= n
	if s.cursorY < 0 {
		s.cursorY = 0
	}
}

func (s *screen) cursorDown(n int) {
	s.cursorY += n
	if s.cursorY >= s.rows {
		s.cursorY = s.rows - 1
	}
}

func (s *screen) cursorForward(n int) {
	s.cursorX += n
	if s.cursorX >= s.cols {
		s.cursorX = s.cols - 1
	}
}

func (s *screen) cursorBack(n int) {
	if s.cursorX > s.cols {
		s.cursorX = s.cols
	}
	s.cursorX -= n
	if s.cursorX < 0 {
		s.cursorX = 0
	}
}

// moveTo positions the cursor from 1-based CSI coordinates, clamped.
func (s *screen) moveTo(row, col int) {
	s.cursorY = clamp(row-1, 0, s.rows-1)
	s.cursorX = clamp(col-1, 0, s.cols-1)
}

func (s *screen) setColumn(col int) {
	s.cursorX = clamp(col-1, 0, s.cols-1)
}

func (s *screen) setRow(row int) {
	s.cursorY = clamp(row-1, 0, s.rows-1)
}

func (s *screen) backspace() {
	if s.cursorX > s.cols {
		s.cursorX = s.cols
	}
	if s.cursorX > 0 {
		s.cursorX--
	}
}

// tab advances to the next multiple-of-8 column, clamped to the last column.
func (s *screen) tab() {
	next := (s.cursorX/8 + 1) * 8
	if next >= s.cols {
		next = s.cols - 1
	}
	s.cursorX = next
}

// setRegion installs a 1-based scroll region and homes the cursor.
func (s *screen) setRegion(top, bot int) {
	top = clamp(top-1, 0, s.rows-1)
	bot = clamp(bot-1, 0, s.rows-1)
	if top >= bot {
		return
	}
	s.scrollTop = top
	s.scrollBot = bot
	s.cursorX, s.cursorY = 0, 0
}

func (s *screen) resetRegion() {
	s.scrollTop = 0
	s.scrollBot = s.rows - 1
}

// eraseLine erases within the cursor row: mode 0 cursor to end, mode 1 start
// through cursor, mode 2 the whole line. Erasure paints spaces in the current
// pen's colors, the usual "erase with active background" convention.
func (s *screen) eraseLine(mode int, pen Style) {
	s.clampCursorY()
	line := s.padRow(s.cursorY, s.cols-1)
	switch mode {
	case 0:
		for x := s.lastCol(); x < len(line); x++ {
			line[x] = blankCell(pen)
		}
	case 1:
		for x := 0; x <= s.lastCol(); x++ {
			line[x] = blankCell(pen)
		}
	case 2:
		for x := range line {
			line[x] = blankCell(pen)
		}
	}
}

func (s *screen) blankRow(r int, pen Style) {
	line := s.padRow(r, s.cols-1)
	for x := range line {
		line[x] = blankCell(pen)
	}
}

// eraseDisplay erases within the viewport: mode 0 cursor to end of screen,
// mode 1 start of screen through cursor, mode 2/3 everything. Scrollback is
// untouched.
func (s *screen) eraseDisplay(mode int, pen Style) {
	s.clampCursorY()
	switch mode {
	case 0:
		s.eraseLine(0, pen)
		for r := s.cursorY + 1; r < s.rows; r++ {
			s.blankRow(r, pen)
		}
	case 1:
		for r := 0; r < s.cursorY; r++ {
			s.blankRow(r, pen)
		}
		s.eraseLine(1, pen)
	case 2, 3:
		for r := 0; r < s.rows; r++ {
			s.blankRow(r, pen)
		}
	}
}

// eraseChars blanks n cells from the cursor without shifting.
func (s *screen) eraseChars(n int, pen Style) {
	s.clampCursor()
	line := s.padRow(s.cursorY, s.cols-1)
	for x := s.lastCol(); x < s.lastCol()+n && x < len(line); x++ {
		line[x] = blankCell(pen)
	}
}

// deleteChars removes n cells at the cursor, shifting the rest of the line
// left and back-filling with blanks.
func (s *screen) deleteChars(n int, pen Style) {
	s.clampCursor()
	line := s.padRow(s.cursorY, s.cols-1)
	x := s.lastCol()
	if n > len(line)-x {
		n = len(line) - x
	}
	copy(line[x:], line[x+n:])
	for i := len(line) - n; i < len(line); i++ {
		line[i] = blankCell(pen)
	}
}

// insertChars opens n blank cells at the cursor, shifting the tail right and
// dropping whatever falls off the end.
func (s *screen) insertChars(n int, pen Style) {
	s.clampCursor()
	line := s.padRow(s.cursorY, s.cols-1)
	x := s.lastCol()
	if n > len(line)-x {
		n = len(line) - x
	}
	copy(line[x+n:], line[x:])
	for i := x; i < x+n; i++ {
		line[i] = blankCell(pen)
	}
}

// insertLines opens n blank lines at the cursor row, pushing lines below it
// toward the region bottom. No-op outside the scroll region.
func (s *screen) insertLines(n int) {
	s.clampCursorY()
	if s.cursorY < s.scrollTop || s.cursorY > s.scrollBot {
		return
	}
	sb := s.scrollbackLen()
	for ; n > 0; n-- {
		for i := s.scrollBot; i > s.cursorY; i-- {
			s.lines.set(sb+i, s.lines.at(sb+i-1))
		}
		s.lines.set(sb+s.cursorY, blankLine(s.cols))
	}
}

// deleteLines removes n lines at the cursor row, pulling lines up from the
// region bottom. Deleted lines are discarded, never pushed into history.
func (s *screen) deleteLines(n int) {
	s.clampCursorY()
	if s.cursorY < s.scrollTop || s.cursorY > s.scrollBot {
		return
	}
	sb := s.scrollbackLen()
	for ; n > 0; n-- {
		for i := s.cursorY; i < s.scrollBot; i++ {
			s.lines.set(sb+i, s.lines.at(sb+i+1))
		}
		s.lines.set(sb+s.scrollBot, blankLine(s.cols))
	}
}

// resize reconciles the grid with a new viewport size. Growth pads: wider
// lines gain default-style spaces on the right, taller viewports gain blank
// lines at the tail. Shrinking destroys nothing: stored lines keep their
// cells (rendering clips) and surplus rows slide into scrollback. The cursor
// is not remapped; later writes clamp it back into bounds.
func (s *screen) resize(cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}
	if cols > s.cols {
		for i := 0; i < s.lines.len(); i++ {
			line := s.lines.at(i)
			for len(line) < cols {
				line = append(line, Cell{Ch: ' '})
			}
			s.lines.set(i, line)
		}
	}
	s.cols = cols
	if rows > s.rows {
		for i := s.rows; i < rows; i++ {
			s.lines.pushBack(blankLine(cols))
		}
	}
	s.rows = rows
	if s.history {
		for s.lines.len() > s.maxScrollback+rows {
			s.lines.popFront()
		}
	} else {
		// No scrollback to absorb surplus rows; a shrink discards the
		// topmost lines outright.
		for s.lines.len() > rows {
			s.lines.popFront()
		}
	}
	// Top up so viewport indexing stays valid after an aggressive
	// shrink-then-grow.
	for s.lines.len() < rows {
		s.lines.pushBack(blankLine(cols))
	}
	s.resetRegion()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
