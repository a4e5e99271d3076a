package vterm

import (
	"reflect"
	"testing"
)

func TestNextTokenLiteralAndControl(t *testing.T) {
	tok := nextToken("abc", 0)
	if tok.kind != tokLiteral || tok.ch != 'a' || tok.size != 1 {
		t.Fatalf("literal token = %+v", tok)
	}

	tok = nextToken("é", 0)
	if tok.kind != tokLiteral || tok.ch != 'é' || tok.size != 2 {
		t.Fatalf("multibyte literal token = %+v", tok)
	}

	tok = nextToken("\n", 0)
	if tok.kind != tokControl || tok.ctrl != '\n' || tok.size != 1 {
		t.Fatalf("control token = %+v", tok)
	}
}

func TestNextTokenCSI(t *testing.T) {
	tok := nextToken("x\x1b[1;22;333mrest", 1)
	if tok.kind != tokCSI || tok.final != 'm' {
		t.Fatalf("csi token = %+v", tok)
	}
	if !reflect.DeepEqual(tok.params, []int{1, 22, 333}) {
		t.Fatalf("params = %v", tok.params)
	}
	if tok.size != len("\x1b[1;22;333m") {
		t.Fatalf("size = %d", tok.size)
	}
	if tok.private {
		t.Fatalf("unexpected private marker")
	}

	tok = nextToken("\x1b[?1049h", 0)
	if tok.kind != tokCSI || !tok.private || tok.final != 'h' || tok.params[0] != 1049 {
		t.Fatalf("private csi token = %+v", tok)
	}

	tok = nextToken("\x1b[H", 0)
	if tok.kind != tokCSI || tok.final != 'H' || len(tok.params) != 0 {
		t.Fatalf("bare csi token = %+v", tok)
	}
}

func TestNextTokenCSIEmptyParamsDecodeAsZero(t *testing.T) {
	tok := nextToken("\x1b[;5;m", 0)
	if !reflect.DeepEqual(tok.params, []int{0, 5, 0}) {
		t.Fatalf("params = %v, want [0 5 0]", tok.params)
	}
}

func TestNextTokenOSC(t *testing.T) {
	tok := nextToken("\x1b]0;hello\x07x", 0)
	if tok.kind != tokOSC || tok.payload != "0;hello" {
		t.Fatalf("osc token = %+v", tok)
	}
	if tok.size != len("\x1b]0;hello\x07") {
		t.Fatalf("size = %d", tok.size)
	}

	tok = nextToken("\x1b]2;t\x1b\\x", 0)
	if tok.kind != tokOSC || tok.payload != "2;t" || tok.size != len("\x1b]2;t\x1b\\") {
		t.Fatalf("st-terminated osc = %+v", tok)
	}
}

func TestNextTokenOSCLoneEscapeTerminatesWithoutConsuming(t *testing.T) {
	data := "\x1b]0;t\x1b[31m"
	tok := nextToken(data, 0)
	if tok.kind != tokOSC || tok.payload != "0;t" {
		t.Fatalf("osc token = %+v", tok)
	}
	// The ESC that cut the payload short must be rescanned as its own
	// sequence, not swallowed.
	next := nextToken(data, tok.size)
	if next.kind != tokCSI || next.final != 'm' {
		t.Fatalf("following token = %+v, want the SGR", next)
	}
}

func TestNextTokenIncomplete(t *testing.T) {
	for _, in := range []string{"\x1b", "\x1b[", "\x1b[31", "\x1b]0;abc", "\x1b]0;abc\x1b", "\x1b(", "\xe4\xbd"} {
		if tok := nextToken(in, 0); tok.kind != tokIncomplete {
			t.Fatalf("nextToken(%q) = %+v, want incomplete", in, tok)
		}
	}
}

func TestNextTokenBareEscapes(t *testing.T) {
	tok := nextToken("\x1bc", 0)
	if tok.kind != tokEsc || tok.final != 'c' || tok.size != 2 {
		t.Fatalf("reset token = %+v", tok)
	}
	tok = nextToken("\x1bQ", 0)
	if tok.kind != tokEsc || tok.final != 'Q' || tok.size != 2 {
		t.Fatalf("unknown escape must consume exactly two bytes: %+v", tok)
	}
	tok = nextToken("\x1b(B", 0)
	if tok.kind != tokSkip || tok.size != 3 {
		t.Fatalf("charset designation = %+v, want 3-byte skip", tok)
	}
}

func TestParamDefaults(t *testing.T) {
	if got := param(nil, 0, 1); got != 1 {
		t.Fatalf("missing param = %d, want default", got)
	}
	if got := param([]int{0}, 0, 1); got != 1 {
		t.Fatalf("zero param = %d, want default", got)
	}
	if got := param([]int{7}, 0, 1); got != 7 {
		t.Fatalf("explicit param = %d", got)
	}
}
