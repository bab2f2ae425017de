// Tests the lexer by verifying that a small Ash snippet tokenizes as
// expected, in the same "expected item slice, compare in order" style as
// the teacher's lexer_test.go.
package frontend

import "testing"

func TestLexerBasic(t *testing.T) {
	src := "function int add(int a, int b) {\n\treturn a + b;\n}\n"

	exp := []struct {
		typ tokenType
		val string
	}{
		{tokFunction, "function"},
		{tokType, "int"},
		{tokIdent, "add"},
		{tokLParen, "("},
		{tokType, "int"},
		{tokIdent, "a"},
		{tokComma, ","},
		{tokType, "int"},
		{tokIdent, "b"},
		{tokRParen, ")"},
		{tokLBrace, "{"},
		{tokReturn, "return"},
		{tokIdent, "a"},
		{tokOperator, "+"},
		{tokIdent, "b"},
		{tokSemicolon, ";"},
		{tokRBrace, "}"},
		{tokEOF, ""},
	}

	l := newLexer(src)
	go l.run()

	for i, want := range exp {
		got := <-l.items
		if got.typ != want.typ {
			t.Fatalf("token %d: expected type %s, got %s (%q)", i, want.typ, got.typ, got.val)
		}
		if want.typ != tokEOF && got.val != want.val {
			t.Errorf("token %d: expected %q, got %q", i, want.val, got.val)
		}
	}
}

func TestLexerTwoCharOperators(t *testing.T) {
	src := "a <= b && c >= d;"
	var ops []string
	l := newLexer(src)
	go l.run()
	for {
		tok := <-l.items
		if tok.typ == tokEOF {
			break
		}
		if tok.typ == tokOperator {
			ops = append(ops, tok.val)
		}
	}
	want := []string{"<=", "&&", ">="}
	if len(ops) != len(want) {
		t.Fatalf("expected operators %v, got %v", want, ops)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("operator %d: expected %q, got %q", i, want[i], ops[i])
		}
	}
}

func TestLexerComment(t *testing.T) {
	src := "# a trailing comment\nint x;"
	l := newLexer(src)
	go l.run()
	first := <-l.items
	if first.typ != tokComment {
		t.Fatalf("expected comment token, got %s", first.typ)
	}
	if first.val != "# a trailing comment" {
		t.Errorf("unexpected comment text %q", first.val)
	}
}

func TestLexerUnterminatedChar(t *testing.T) {
	src := "'a"
	l := newLexer(src)
	go l.run()
	tok := <-l.items
	if tok.typ != tokError {
		t.Fatalf("expected lex error for unterminated char literal, got %s", tok.typ)
	}
}

func TestIsSizedTypeToken(t *testing.T) {
	cases := map[string]bool{
		"i8": true, "u8": true, "i16": true, "u16": true,
		"i32": true, "u32": true, "f32": true, "f64": true,
		"f8": false, "f16": false, "i128": false, "x32": false,
	}
	for tok, want := range cases {
		if got := isSizedTypeToken(tok); got != want {
			t.Errorf("isSizedTypeToken(%q) = %v, want %v", tok, got, want)
		}
	}
}
