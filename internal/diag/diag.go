// Package diag formats the single-line, human readable diagnostics required
// by spec §7: a headline, then file/line/column info, the verbatim source
// line, and a caret underline. Grounded on the teacher's
// lexer.errorf and the goyacc parser error printer in frontend/tree.go,
// generalized to every compiler phase and colorized the way
// sunholo-data-ailang colors its CLI/REPL diagnostics.
package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Kind classifies which phase raised the diagnostic (spec §7).
type Kind int

const (
	LexError Kind = iota
	ParseError
	ModuleError
	ScopeError
	TypeError
	ManglingError
	IRError
)

func (k Kind) String() string {
	switch k {
	case LexError:
		return "lex error"
	case ParseError:
		return "parse error"
	case ModuleError:
		return "module error"
	case ScopeError:
		return "scope error"
	case TypeError:
		return "type error"
	case ManglingError:
		return "mangling error"
	case IRError:
		return "IR error"
	default:
		return "error"
	}
}

// Diagnostic is a single compiler diagnostic.
type Diagnostic struct {
	Kind    Kind
	Message string
	File    string
	Line    int
	Col     int
	RawLine string
}

func (d Diagnostic) Error() string {
	return d.String()
}

var (
	headline = color.New(color.FgRed, color.Bold)
	location = color.New(color.FgCyan)
	caret    = color.New(color.FgYellow, color.Bold)
)

// String renders the diagnostic as the multi-line, caret-annotated message
// spec §7 requires: one headline, then position/line-text/caret lines.
func (d Diagnostic) String() string {
	sb := strings.Builder{}
	sb.WriteString(headline.Sprintf("%s: %s", d.Kind, d.Message))
	if d.Line > 0 {
		sb.WriteString("\n")
		loc := d.File
		if loc == "" {
			loc = "<input>"
		}
		sb.WriteString(location.Sprintf("  --> %s:%d:%d", loc, d.Line, d.Col))
	}
	if d.RawLine != "" {
		sb.WriteString(fmt.Sprintf("\n  %s", d.RawLine))
		col := d.Col
		if col < 1 {
			col = 1
		}
		sb.WriteString("\n  ")
		sb.WriteString(caret.Sprint(strings.Repeat(" ", col-1) + "^"))
	}
	return sb.String()
}

// New constructs a Diagnostic.
func New(kind Kind, file string, line, col int, rawLine string, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		File:    file,
		Line:    line,
		Col:     col,
		RawLine: rawLine,
	}
}

// Print writes d to standard output, matching spec §7's "printed to
// standard output, no partial results" propagation policy.
func (d Diagnostic) Print() {
	fmt.Println(d.String())
}
