package frontend

import "fmt"

// tokenType is the closed set of token kinds the lexer emits (spec §4.4).
// Unlike the teacher's goyacc-generated token constants, these are defined
// directly since Ash's parser is hand-written.
type tokenType int

const (
	tokNone tokenType = iota
	tokEOF
	tokSemicolon // ';'
	tokType      // declared-type keyword: int, float, bool, char, void, [iu](8|16|32|64), f(32|64)
	tokIdent     // identifier / variable reference
	tokLiteral   // integer, float, bool, or char literal
	tokOperator  // any binary/unary operator spelling; parser position decides which
	tokScope     // '::'
	tokFunction  // "function"
	tokExtern    // "extern"
	tokIf
	tokElse
	tokFor
	tokWhile
	tokReturn
	tokContinue
	tokBreak
	tokSwitch
	tokCase
	tokDefault
	tokModule
	tokUsing
	tokLBrace // '{'
	tokRBrace // '}'
	tokLParen // '('
	tokRParen // ')'
	tokComma
	tokComment // '#' to end of line
	tokError
)

var tokenNames = map[tokenType]string{
	tokNone: "None", tokEOF: "EndOfFile", tokSemicolon: "EndOfExpression",
	tokType: "VariableDeclaration", tokIdent: "VariableReference", tokLiteral: "LiteralValue",
	tokOperator: "BinaryOperator", tokScope: "ModuleScopeOperator",
	tokFunction: "FunctionDefinition", tokExtern: "ExternFunction",
	tokIf: "IfStatement", tokElse: "ElseStatement", tokFor: "ForStatement",
	tokWhile: "WhileStatement", tokReturn: "ReturnStatement", tokContinue: "ContinueStatement",
	tokBreak: "BreakStatement", tokSwitch: "SwitchStatement", tokCase: "CaseStatement",
	tokDefault: "DefaultStatement", tokModule: "ModuleStatement", tokUsing: "UsingStatement",
	tokLBrace: "BodyStart", tokRBrace: "BodyEnd", tokLParen: "ParenStart", tokRParen: "ParenEnd",
	tokComma: "Comma", tokComment: "Comment", tokError: "Error",
}

func (t tokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("tokenType(%d)", int(t))
}
