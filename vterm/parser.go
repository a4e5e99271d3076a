package vterm

import (
	"strings"
	"unicode/utf8"
)

// The tokenizer classifies one unit of child-process output at a time. It
// never interprets semantics; the Terminal's dispatch does that. It never
// fails either: anything unrecognizable comes back as a literal, a skip, or
// an incomplete marker asking the caller to retry with more data.

type tokenKind uint8

const (
	tokLiteral tokenKind = iota // printable rune
	tokControl                  // C0 control byte
	tokEsc                      // bare ESC x (x in final)
	tokCSI                      // ESC [ ... final
	tokOSC                      // ESC ] payload BEL/ST
	tokSkip                     // consumed, no effect
	tokIncomplete               // sequence split at end of chunk
)

type token struct {
	kind    tokenKind
	size    int    // bytes consumed from the input
	ch      rune   // tokLiteral
	ctrl    byte   // tokControl
	final   byte   // tokEsc / tokCSI
	params  []int  // tokCSI
	private bool   // tokCSI: '?'-prefixed
	payload string // tokOSC
}

// nextToken scans the unit starting at data[i]. i must be < len(data).
func nextToken(data string, i int) token {
	b := data[i]
	switch {
	case b == 0x1b:
		return scanEscape(data, i)
	case b < 0x20 || b == 0x7f:
		return token{kind: tokControl, ctrl: b, size: 1}
	}
	r, size := utf8.DecodeRuneInString(data[i:])
	if r == utf8.RuneError && size == 1 {
		if !utf8.FullRuneInString(data[i:]) && len(data)-i < utf8.UTFMax {
			// A multi-byte rune split across chunks.
			return token{kind: tokIncomplete}
		}
		return token{kind: tokSkip, size: 1}
	}
	return token{kind: tokLiteral, ch: r, size: size}
}

func scanEscape(data string, i int) token {
	if i+1 >= len(data) {
		return token{kind: tokIncomplete}
	}
	switch data[i+1] {
	case '[':
		return scanCSI(data, i)
	case ']':
		return scanOSC(data, i)
	case '(', ')':
		// Charset designation: the designator byte rides along.
		if i+2 >= len(data) {
			return token{kind: tokIncomplete}
		}
		return token{kind: tokSkip, size: 3}
	}
	// ESC c, ESC 7/8, ESC M and friends; unknown finals dispatch to nothing.
	return token{kind: tokEsc, final: data[i+1], size: 2}
}

// scanCSI consumes ESC [ ?? params final. The final byte may be anything in
// [0x40,0x7e]; sequences with unknown finals are still consumed in full so
// their bytes never leak into the grid as text.
func scanCSI(data string, i int) token {
	j := i + 2
	private := false
	if j < len(data) && data[j] == '?' {
		private = true
		j++
	}
	start := j
	for j < len(data) {
		b := data[j]
		if b >= 0x40 && b <= 0x7e {
			return token{
				kind:    tokCSI,
				size:    j + 1 - i,
				final:   b,
				params:  parseParams(data[start:j]),
				private: private,
			}
		}
		j++
	}
	return token{kind: tokIncomplete}
}

// scanOSC consumes ESC ] payload up to BEL or ST (ESC \). A lone ESC also
// ends the payload but is left in the stream for the next scan, so a
// misbehaving program cannot swallow the sequence that follows.
func scanOSC(data string, i int) token {
	j := i + 2
	for j < len(data) {
		switch data[j] {
		case 0x07:
			return token{kind: tokOSC, payload: data[i+2 : j], size: j + 1 - i}
		case 0x1b:
			if j+1 >= len(data) {
				// Cannot tell ST from a fresh escape yet.
				return token{kind: tokIncomplete}
			}
			size := j - i
			if data[j+1] == '\\' {
				size += 2
			}
			return token{kind: tokOSC, payload: data[i+2 : j], size: size}
		}
		j++
	}
	return token{kind: tokIncomplete}
}

// parseParams decodes the numeric parameter list of a CSI sequence. Empty or
// non-numeric entries decode as 0; per-command defaults are applied at
// dispatch time. Anything wildly long is truncated rather than trusted.
func parseParams(s string) []int {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	if len(parts) > 32 {
		parts = parts[:32]
	}
	params := make([]int, len(parts))
	for i, p := range parts {
		n := 0
		for _, ch := range p {
			if ch < '0' || ch > '9' {
				continue
			}
			n = n*10 + int(ch-'0')
			if n > 1<<24 {
				n = 1 << 24
				break
			}
		}
		params[i] = n
	}
	return params
}

// param returns params[i], or def when the entry is missing or zero. Zero
// doubles as "omitted" for every command we dispatch; SGR, where zero is
// meaningful, reads the raw slice instead.
func param(params []int, i, def int) int {
	if i < len(params) && params[i] != 0 {
		return params[i]
	}
	return def
}
