// This lexer is grounded on the teacher's frontend/lexer.go, itself based on
// Rob Pike's lexer talk (state functions scanning a rune stream, emitting
// items on a channel while a consumer goroutine parses). Ash keeps this
// concurrency idiom for a single file's lex/parse pair; it is a classic
// producer/consumer pattern within one file, not the parallel multi-file
// compilation spec §5 and §9 explicitly exclude.
package frontend

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// stateFunc defines the lexer's current state.
type stateFunc func(*lexer) stateFunc

// item is a lexeme scanned by the lexer together with its source position.
type item struct {
	typ     tokenType
	val     string
	line    int
	col     int // start column on the current line, 1-indexed.
	rawLine string
}

func (i item) String() string {
	if i.typ == tokEOF {
		return "EOF"
	}
	if i.typ == tokError {
		return fmt.Sprintf("%s [ERROR]", i.val)
	}
	return fmt.Sprintf("%q (%s) at line %d:%d", i.val, i.typ, i.line, i.col)
}

// lexer scans a source string rune by rune, emitting item tokens on a
// channel consumed by the parser goroutine.
type lexer struct {
	input string
	lines []string // input split on '\n', used to recover raw source lines for diagnostics.

	start       int
	pos         int
	width       int
	line        int // current line, 1-indexed.
	startOnLine int // start column of the current token on its line, 1-indexed.

	state stateFunc
	items chan item
}

const eof = 0

func newLexer(src string) *lexer {
	return &lexer{
		input:       src,
		lines:       strings.Split(src, "\n"),
		start:       0,
		pos:         0,
		line:        1,
		startOnLine: 1,
		state:       lexGlobal,
		items:       make(chan item, 2),
	}
}

// run drives the state machine until it terminates, closing the items
// channel on exit.
func (l *lexer) run() {
	defer close(l.items)
	for state := l.state; state != nil; {
		state = state(l)
	}
}

func (l *lexer) currentRawLine() string {
	idx := l.line - 1
	if idx < 0 || idx >= len(l.lines) {
		return ""
	}
	return l.lines[idx]
}

// emit sends an item of type typ, and advances the token start position.
func (l *lexer) emit(typ tokenType) {
	l.items <- item{
		typ:     typ,
		val:     l.input[l.start:l.pos],
		line:    l.line,
		col:     l.startOnLine,
		rawLine: l.currentRawLine(),
	}
	l.startOnLine += utf8.RuneCountInString(l.input[l.start:l.pos])
	l.start = l.pos
}

// next returns the next rune in the input, advancing pos. Tabs are not
// translated here; callers wanting column-accurate tab handling should
// account for it when computing startOnLine (Ash's lexer counts a tab as a
// single column advance like the teacher, since diagnostics only need an
// approximate caret position).
func (l *lexer) next() (r rune) {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, l.width = utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += l.width
	return r
}

// ignore skips the pending input before this point without emitting it.
func (l *lexer) ignore() {
	l.startOnLine += utf8.RuneCountInString(l.input[l.start:l.pos])
	l.start = l.pos
}

// backup steps back one rune. Must only be called once per call to next.
func (l *lexer) backup() {
	if l.pos > l.start {
		l.pos -= l.width
	}
}

// peek returns, without consuming, the next rune in the input.
func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

// newline accounts for a consumed '\n': reset column tracking and advance
// the line counter. CR bytes are ignored entirely by the caller.
func (l *lexer) newline() {
	l.line++
	l.startOnLine = 1
}

// errorf emits an error item and terminates the state machine.
func (l *lexer) errorf(format string, args ...interface{}) stateFunc {
	l.items <- item{
		typ:     tokError,
		val:     fmt.Sprintf(format, args...),
		line:    l.line,
		col:     l.startOnLine,
		rawLine: l.currentRawLine(),
	}
	return nil
}
