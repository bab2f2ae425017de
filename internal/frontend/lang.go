package frontend

// reservedItem pairs a reserved word with the token it lexes to. Grounded on
// the teacher's frontend/lang.go length-bucketed reserved word table.
type reservedItem struct {
	val string
	typ tokenType
}

// rw contains the set of all reserved Ash keywords, indexed by word length
// (first dimension) for a fast miss path during identifier scanning.
var rw = [...][]reservedItem{
	// One-grams
	{},
	// Two-grams
	{
		{val: "if", typ: tokIf},
	},
	// Three-grams
	{
		{val: "for", typ: tokFor},
		{val: "int", typ: tokType},
	},
	// Four-grams
	{
		{val: "else", typ: tokElse},
		{val: "void", typ: tokType},
		{val: "char", typ: tokType},
		{val: "true", typ: tokLiteral},
		{val: "bool", typ: tokType},
		{val: "case", typ: tokCase},
	},
	// Five-grams
	{
		{val: "while", typ: tokWhile},
		{val: "using", typ: tokUsing},
		{val: "break", typ: tokBreak},
		{val: "false", typ: tokLiteral},
		{val: "float", typ: tokType},
	},
	// Six-grams
	{
		{val: "return", typ: tokReturn},
		{val: "module", typ: tokModule},
		{val: "switch", typ: tokSwitch},
		{val: "extern", typ: tokExtern},
	},
	// Seven-grams
	{
		{val: "default", typ: tokDefault},
	},
	// Eight-grams
	{
		{val: "continue", typ: tokContinue},
		{val: "function", typ: tokFunction},
	},
}

// isKeyword returns true if s is a reserved Ash keyword or a sized-type
// token ([iu](8|16|32|64), f(32|64)). On false the caller should treat s as
// an identifier.
func isKeyword(s string) (bool, tokenType) {
	if len(s) == 0 {
		return false, tokError
	}
	if len(s) <= len(rw) {
		for _, e := range rw[len(s)-1] {
			if e.val == s {
				return true, e.typ
			}
		}
	}
	if isSizedTypeToken(s) {
		return true, tokType
	}
	return false, tokIdent
}

// isSizedTypeToken reports whether s matches [iu](8|16|32|64) or f(32|64).
func isSizedTypeToken(s string) bool {
	if len(s) < 2 {
		return false
	}
	switch s[0] {
	case 'i', 'u', 'f':
	default:
		return false
	}
	switch s[1:] {
	case "8", "16":
		return s[0] != 'f'
	case "32", "64":
		return true
	default:
		return false
	}
}
