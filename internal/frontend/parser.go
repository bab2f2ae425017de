// parser.go implements Ash's hand-written recursive-descent / Pratt
// operator-precedence parser (spec §4.4). It replaces the teacher's goyacc
// grammar with a hand-rolled climb, while keeping the teacher's concurrent
// lexer goroutine feeding tokens over a channel.
package frontend

import (
	"fmt"

	"ashc/internal/ast"
	"ashc/internal/diag"
	"ashc/internal/intern"
	"ashc/internal/operator"
	"ashc/internal/types"
)

// ParseResult is what Parse returns for a single file: its top-level Global
// body, the file's declared module (NoModule if absent), and its `using`
// imports.
type ParseResult struct {
	Body    *ast.Expr
	Module  intern.ID
	Imports []intern.ID
}

// parser consumes a single lexer's item channel and builds an AST.
type parser struct {
	l       *lexer
	cur     item
	reg     *intern.Registry
	file    string
	curBody *ast.Expr // innermost Body currently being parsed; nil at file scope.
}

// Parse lexes and parses one file's source into a ParseResult, or returns
// the first diagnostic encountered. Per spec §4.4/§7, parsing is
// all-or-nothing: on error a single diagnostic is produced and the AST is
// discarded.
func Parse(reg *intern.Registry, file, src string) (ParseResult, error) {
	l := newLexer(src)
	go l.run()
	p := &parser{l: l, reg: reg, file: file}
	p.advance()

	defer func() {
		// Drain the lexer goroutine if we return early on error so it does
		// not leak blocked on a full channel send.
		for range l.items {
		}
	}()

	res, err := p.parseFile()
	if err == nil {
		ast.LinkParents(res.Body)
	}
	return res, err
}

func (p *parser) advance() {
	p.cur = <-p.l.items
}

func (p *parser) errHere(kind diag.Kind, format string, args ...interface{}) error {
	return diag.New(kind, p.file, p.cur.line, p.cur.col, p.cur.rawLine, format, args...)
}

func (p *parser) expect(t tokenType) (item, error) {
	if p.cur.typ == tokError {
		return item{}, p.errHere(diag.ParseError, "%s", p.cur.val)
	}
	if p.cur.typ != t {
		return item{}, p.errHere(diag.ParseError, "expected %s, got %s %q", t, p.cur.typ, p.cur.val)
	}
	tok := p.cur
	p.advance()
	return tok, nil
}

func (p *parser) lineInfoFrom(start item) ast.LineInfo {
	return ast.LineInfo{
		StartLine: start.line, StartCol: start.col,
		EndLine: p.cur.line, EndCol: p.cur.col,
		RawLine: start.rawLine,
	}
}

// --------------------------
// ----- Top-level file -----
// --------------------------

func (p *parser) parseFile() (ParseResult, error) {
	res := ParseResult{Module: intern.NoModule}
	global := ast.NewBody(ast.Global, nil, nil)
	res.Body = global
	p.curBody = global

	if p.cur.typ == tokModule {
		p.advance()
		modID, err := p.parseModulePath()
		if err != nil {
			return res, err
		}
		if _, err := p.expect(tokSemicolon); err != nil {
			return res, err
		}
		res.Module = modID
		global.ModuleID = modID
	}

	for p.cur.typ == tokUsing {
		p.advance()
		modID, err := p.parseModulePath()
		if err != nil {
			return res, err
		}
		if _, err := p.expect(tokSemicolon); err != nil {
			return res, err
		}
		res.Imports = append(res.Imports, modID)
	}
	global.Imports = res.Imports

	for p.cur.typ != tokEOF {
		switch p.cur.typ {
		case tokFunction:
			def, err := p.parseFunctionDef(global)
			if err != nil {
				return res, err
			}
			global.Functions = append(global.Functions, def)
		case tokExtern:
			proto, err := p.parseExternDecl()
			if err != nil {
				return res, err
			}
			if !global.DeclarePrototype(proto) {
				return res, p.errHere(diag.ScopeError, "extern %q is already defined with this parameter signature", p.reg.MustGetString(proto.NameID))
			}
		case tokComment:
			global.Children = append(global.Children, p.parseComment())
		case tokIf:
			n, err := p.parseIfStatement()
			if err != nil {
				return res, err
			}
			global.Children = append(global.Children, n)
		case tokError:
			return res, p.errHere(diag.LexError, "%s", p.cur.val)
		default:
			return res, p.errHere(diag.ParseError, "expected function, extern, if, or comment at global scope, got %s %q", p.cur.typ, p.cur.val)
		}
	}
	return res, nil
}

// parseModulePath parses ident ("::" ident)* and interns it as a single
// "a::b" path string, which the Mangler's module segment encoding expects
// to then split back into segments.
func (p *parser) parseModulePath() (intern.ID, error) {
	tok, err := p.expect(tokIdent)
	if err != nil {
		return 0, err
	}
	path := tok.val
	for p.cur.typ == tokScope {
		p.advance()
		tok, err := p.expect(tokIdent)
		if err != nil {
			return 0, err
		}
		path += "::" + tok.val
	}
	id, err := p.reg.GetID(path)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// -------------------------------
// ----- Functions/prototypes -----
// -------------------------------

func (p *parser) parseType() (types.Type, error) {
	tok, err := p.expect(tokType)
	if err != nil {
		return types.NoneType, err
	}
	t, terr := types.FromToken(tok.val)
	if terr != nil {
		return types.NoneType, p.errHere(diag.TypeError, "%s", terr)
	}
	return t, nil
}

func (p *parser) parseParams() ([]types.Type, []intern.ID, error) {
	var ptypes []types.Type
	var pnames []intern.ID
	if _, err := p.expect(tokLParen); err != nil {
		return nil, nil, err
	}
	for p.cur.typ != tokRParen {
		if len(ptypes) > 0 {
			if _, err := p.expect(tokComma); err != nil {
				return nil, nil, err
			}
		}
		t, err := p.parseType()
		if err != nil {
			return nil, nil, err
		}
		name, err := p.expect(tokIdent)
		if err != nil {
			return nil, nil, err
		}
		nameID, _ := p.reg.GetID(name.val)
		ptypes = append(ptypes, t)
		pnames = append(pnames, nameID)
	}
	if _, err := p.expect(tokRParen); err != nil {
		return nil, nil, err
	}
	return ptypes, pnames, nil
}

func (p *parser) parseExternDecl() (*ast.FunctionPrototype, error) {
	start := p.cur
	if _, err := p.expect(tokExtern); err != nil {
		return nil, err
	}
	retType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	nameID, _ := p.reg.GetID(name.val)
	ptypes, pnames, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokSemicolon); err != nil {
		return nil, err
	}
	return &ast.FunctionPrototype{
		NameID: nameID, ReturnType: retType, ParamTypes: ptypes, ParamNameIDs: pnames,
		IsExtern: true, Line: p.lineInfoFrom(start),
	}, nil
}

func (p *parser) parseFunctionDef(enclosing *ast.Expr) (*ast.FunctionDefinition, error) {
	start := p.cur
	if _, err := p.expect(tokFunction); err != nil {
		return nil, err
	}
	retType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	nameID, _ := p.reg.GetID(name.val)
	ptypes, pnames, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	proto := &ast.FunctionPrototype{
		NameID: nameID, ReturnType: retType, ParamTypes: ptypes, ParamNameIDs: pnames,
		IsExtern: false, Line: p.lineInfoFrom(start),
	}
	if !enclosing.DeclarePrototype(proto) {
		return nil, p.errHere(diag.ScopeError, "function %q is already defined with this parameter signature", name.val)
	}

	body, err := p.parseBlock(ast.Function, enclosing, proto)
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDefinition{Prototype: proto, Body: body}, nil
}

// -------------------------
// ----- Blocks/statements -----
// -------------------------

func (p *parser) parseBlock(bt ast.BodyType, parent *ast.Expr, fn *ast.FunctionPrototype) (*ast.Expr, error) {
	if _, err := p.expect(tokLBrace); err != nil {
		return nil, err
	}
	body := ast.NewBody(bt, parent, fn)
	prevBody := p.curBody
	p.curBody = body
	defer func() { p.curBody = prevBody }()
	for p.cur.typ != tokRBrace {
		if p.cur.typ == tokError {
			return nil, p.errHere(diag.LexError, "%s", p.cur.val)
		}
		if p.cur.typ == tokEOF {
			return nil, p.errHere(diag.ParseError, "unexpected end of file inside block")
		}
		if p.cur.typ == tokFunction {
			def, err := p.parseFunctionDef(body)
			if err != nil {
				return nil, err
			}
			body.Functions = append(body.Functions, def)
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body.Children = append(body.Children, stmt)
	}
	if _, err := p.expect(tokRBrace); err != nil {
		return nil, err
	}
	return body, nil
}

func (p *parser) parseComment() *ast.Expr {
	tok := p.cur
	p.advance()
	return &ast.Expr{Kind: ast.KComment, Status: ast.Constant, Line: ast.LineInfo{StartLine: tok.line, StartCol: tok.col, RawLine: tok.rawLine}}
}

func (p *parser) parseStatement() (*ast.Expr, error) {
	switch p.cur.typ {
	case tokType:
		n, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokSemicolon); err != nil {
			return nil, err
		}
		return n, nil
	case tokReturn:
		n, err := p.parseReturn()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokSemicolon); err != nil {
			return nil, err
		}
		return n, nil
	case tokContinue:
		tok := p.cur
		p.advance()
		if _, err := p.expect(tokSemicolon); err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.KContinue, Status: ast.Constant, Line: ast.LineInfo{StartLine: tok.line, StartCol: tok.col, RawLine: tok.rawLine}}, nil
	case tokBreak:
		tok := p.cur
		p.advance()
		if _, err := p.expect(tokSemicolon); err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.KBreak, Status: ast.Constant, Line: ast.LineInfo{StartLine: tok.line, StartCol: tok.col, RawLine: tok.rawLine}}, nil
	case tokComment:
		return p.parseComment(), nil
	case tokIf:
		return p.parseIfStatement()
	case tokFor:
		return p.parseFor()
	case tokWhile:
		return p.parseWhile()
	case tokSwitch:
		return p.parseSwitch()
	default:
		n, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokSemicolon); err != nil {
			return nil, err
		}
		return n, nil
	}
}

func (p *parser) parseVarDecl() (*ast.Expr, error) {
	start := p.cur
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	nameID, _ := p.reg.GetID(name.val)
	n := &ast.Expr{Kind: ast.KVariableDeclaration, DeclType: t, NameID: nameID}
	if p.cur.typ == tokOperator && p.cur.val == "=" {
		p.advance()
		init, err := p.parseExpr(operator.PrecAssignment + 1)
		if err != nil {
			return nil, err
		}
		n.Init = init
	}
	n.Line = p.lineInfoFrom(start)
	return n, nil
}

func (p *parser) parseReturn() (*ast.Expr, error) {
	start := p.cur
	if _, err := p.expect(tokReturn); err != nil {
		return nil, err
	}
	n := &ast.Expr{Kind: ast.KReturn}
	if p.cur.typ != tokSemicolon {
		e, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		n.RetExpr = e
	}
	n.Line = p.lineInfoFrom(start)
	return n, nil
}

// -----------------------------------
// ----- If / For / While / Switch -----
// -----------------------------------

func (p *parser) parseIfCommon(shouldReturnValue bool) (*ast.Expr, error) {
	start := p.cur
	if _, err := p.expect(tokIf); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock(ast.Conditional, p.curBody, enclosingFunc(p.curBody))
	if err != nil {
		return nil, err
	}
	n := &ast.Expr{Kind: ast.KIf, Cond: cond, Then: then, ShouldReturnValue: shouldReturnValue}
	if p.cur.typ == tokElse {
		p.advance()
		if p.cur.typ == tokIf {
			nested, err := p.parseIfCommon(shouldReturnValue)
			if err != nil {
				return nil, err
			}
			wrap := ast.NewBody(ast.Conditional, p.curBody, enclosingFunc(p.curBody))
			wrap.Children = []*ast.Expr{nested}
			n.Else = wrap
		} else {
			elseBody, err := p.parseBlock(ast.Conditional, p.curBody, enclosingFunc(p.curBody))
			if err != nil {
				return nil, err
			}
			n.Else = elseBody
		}
	}
	n.Line = p.lineInfoFrom(start)
	return n, nil
}

func (p *parser) parseIfStatement() (*ast.Expr, error) {
	return p.parseIfCommon(false)
}

func (p *parser) parseIfExpr() (*ast.Expr, error) {
	return p.parseIfCommon(true)
}

func (p *parser) parseFor() (*ast.Expr, error) {
	start := p.cur
	if _, err := p.expect(tokFor); err != nil {
		return nil, err
	}
	varType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	nameID, _ := p.reg.GetID(name.val)
	if tok := p.cur; tok.typ != tokOperator || tok.val != "=" {
		return nil, p.errHere(diag.ParseError, "expected '=' in for-loop initializer, got %s %q", p.cur.typ, p.cur.val)
	}
	p.advance()
	startExpr, err := p.parseExpr(operator.PrecAssignment + 1)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokSemicolon); err != nil {
		return nil, err
	}
	endExpr, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	var step *ast.Expr
	if p.cur.typ == tokSemicolon {
		p.advance()
		step, err = p.parseExpr(0)
		if err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock(ast.Loop, p.curBody, enclosingFunc(p.curBody))
	if err != nil {
		return nil, err
	}
	n := &ast.Expr{
		Kind: ast.KFor, ForVarType: varType, ForNameID: nameID,
		ForStart: startExpr, ForEnd: endExpr, ForStep: step, ForBody: body,
	}
	n.Line = p.lineInfoFrom(start)
	return n, nil
}

func (p *parser) parseWhile() (*ast.Expr, error) {
	start := p.cur
	if _, err := p.expect(tokWhile); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock(ast.Loop, p.curBody, enclosingFunc(p.curBody))
	if err != nil {
		return nil, err
	}
	n := &ast.Expr{Kind: ast.KWhile, WhileCond: cond, WhileBody: body}
	n.Line = p.lineInfoFrom(start)
	return n, nil
}

func (p *parser) parseSwitch() (*ast.Expr, error) {
	start := p.cur
	if _, err := p.expect(tokSwitch); err != nil {
		return nil, err
	}
	val, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLBrace); err != nil {
		return nil, err
	}
	n := &ast.Expr{Kind: ast.KSwitch, SwitchValue: val}
	for p.cur.typ == tokCase || p.cur.typ == tokDefault {
		c, err := p.parseCase()
		if err != nil {
			return nil, err
		}
		n.Cases = append(n.Cases, c)
	}
	if _, err := p.expect(tokRBrace); err != nil {
		return nil, err
	}
	n.Line = p.lineInfoFrom(start)
	return n, nil
}

func (p *parser) parseCase() (*ast.Expr, error) {
	start := p.cur
	isDefault := p.cur.typ == tokDefault
	var val *ast.Expr
	if isDefault {
		p.advance()
	} else {
		if _, err := p.expect(tokCase); err != nil {
			return nil, err
		}
		v, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		val = v
	}
	body, err := p.parseBlock(ast.Conditional, p.curBody, enclosingFunc(p.curBody))
	if err != nil {
		return nil, err
	}
	n := &ast.Expr{Kind: ast.KCase, CaseValue: val, CaseBody: body, IsDefault: isDefault}
	n.Line = p.lineInfoFrom(start)
	return n, nil
}

func enclosingFunc(body *ast.Expr) *ast.FunctionPrototype {
	if body == nil {
		return nil
	}
	return body.ParentFunction
}

// -------------------------------
// ----- Expressions (Pratt) -----
// -------------------------------

// peekBinaryOp reports whether the current token is a binary operator and,
// if so, which one. Only tokens lexed as tokOperator are considered;
// ModuleScope ('::') is handled structurally in parsePrimary, not via this
// climb, per spec §4.3/§4.4.
func (p *parser) peekBinaryOp() (operator.Binary, bool) {
	if p.cur.typ != tokOperator {
		return 0, false
	}
	op, ok := binaryOpFromText(p.cur.val)
	return op, ok
}

var binaryOpText = map[string]operator.Binary{
	"=": operator.Assign, "+=": operator.AddAssign, "-=": operator.SubAssign,
	"*=": operator.MulAssign, "/=": operator.DivAssign, "%=": operator.RemAssign,
	"&=": operator.AndAssign, "|=": operator.OrAssign, "^=": operator.XorAssign,
	"+": operator.Add, "-": operator.Sub, "*": operator.Mul, "/": operator.Div, "%": operator.Rem,
	"<": operator.Less, "<=": operator.LessEq, ">": operator.Greater, ">=": operator.GreaterEq,
	"==": operator.Equal, "!=": operator.NotEqual,
	"&&": operator.LogicalAnd, "||": operator.LogicalOr,
	"&": operator.BitAnd, "|": operator.BitOr, "^": operator.BitXor, "<<": operator.Shl, ">>": operator.Shr,
}

func binaryOpFromText(s string) (operator.Binary, bool) {
	op, ok := binaryOpText[s]
	return op, ok
}

var unaryOpText = map[string]operator.Unary{
	"+": operator.UnaryPlus, "-": operator.UnaryMinus, "!": operator.LogicalNot, "~": operator.BitwiseNot,
}

// parseExpr parses a full expression using precedence climbing (Wikipedia's
// canonical algorithm), requiring operators of precedence >= minPrec.
func (p *parser) parseExpr(minPrec int) (*ast.Expr, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return p.parseBinopRhs(minPrec, lhs)
}

func (p *parser) parseBinopRhs(minPrec int, lhs *ast.Expr) (*ast.Expr, error) {
	for {
		op, ok := p.peekBinaryOp()
		if !ok {
			return lhs, nil
		}
		prec := operator.Precedence(op)
		if prec < minPrec {
			return lhs, nil
		}
		opTok := p.cur
		p.advance()

		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		for {
			nextOp, ok := p.peekBinaryOp()
			if !ok {
				break
			}
			nextPrec := operator.Precedence(nextOp)
			if nextPrec > prec || (nextPrec == prec && operator.RightAssociative(op)) {
				rhs, err = p.parseBinopRhs(nextPrec, rhs)
				if err != nil {
					return nil, err
				}
				continue
			}
			break
		}

		if op.IsAssignment() && lhs.Kind != ast.KVariableReference {
			return nil, diag.New(diag.TypeError, p.file, opTok.line, opTok.col, opTok.rawLine,
				"left-hand side of assignment must be a variable reference")
		}

		lhs = &ast.Expr{
			Kind: ast.KBinary, Op: op, Lhs: lhs, Rhs: rhs,
			Line: ast.LineInfo{StartLine: opTok.line, StartCol: opTok.col, RawLine: opTok.rawLine},
		}
	}
}

func (p *parser) parseUnary() (*ast.Expr, error) {
	if p.cur.typ == tokOperator {
		if uop, ok := unaryOpText[p.cur.val]; ok {
			tok := p.cur
			p.advance()
			operand, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return &ast.Expr{
				Kind: ast.KUnary, UOp: uop, Operand: operand,
				Line: ast.LineInfo{StartLine: tok.line, StartCol: tok.col, RawLine: tok.rawLine},
			}, nil
		}
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (*ast.Expr, error) {
	switch p.cur.typ {
	case tokType:
		return p.parseVarDecl()
	case tokLiteral:
		return p.parseLiteral()
	case tokIdent:
		return p.parseIdentOrCall()
	case tokLParen:
		return p.parseParenOrCast()
	case tokIf:
		return p.parseIfExpr()
	case tokFor:
		return p.parseFor()
	case tokWhile:
		return p.parseWhile()
	case tokSwitch:
		return p.parseSwitch()
	case tokComment:
		return p.parseComment(), nil
	case tokError:
		return nil, p.errHere(diag.LexError, "%s", p.cur.val)
	default:
		return nil, p.errHere(diag.ParseError, "unexpected token %s %q", p.cur.typ, p.cur.val)
	}
}

func (p *parser) parseLiteral() (*ast.Expr, error) {
	tok := p.cur
	p.advance()
	kind := types.ClassifyLiteral(tok.val)
	n := &ast.Expr{Kind: ast.KLiteral, Status: ast.Constant}
	n.Line = ast.LineInfo{StartLine: tok.line, StartCol: tok.col, RawLine: tok.rawLine}
	switch kind {
	case types.Int:
		t, err := types.SuffixOf(tok.val, types.Int)
		if err != nil {
			return nil, diag.New(diag.LexError, p.file, tok.line, tok.col, tok.rawLine, "%s", err)
		}
		digits := stripIntSuffix(tok.val)
		if err := types.CheckIntRange(digits, t); err != nil {
			return nil, diag.New(diag.TypeError, p.file, tok.line, tok.col, tok.rawLine, "%s", err)
		}
		var v uint64
		fmt.Sscanf(digits, "%d", &v)
		n.LitType = t
		n.IntVal = v
	case types.Float:
		t, err := types.SuffixOf(tok.val, types.Float)
		if err != nil {
			return nil, diag.New(diag.LexError, p.file, tok.line, tok.col, tok.rawLine, "%s", err)
		}
		digits := stripFloatSuffix(tok.val)
		var v float64
		fmt.Sscanf(digits, "%g", &v)
		n.LitType = t
		n.FloatVal = v
	case types.Bool:
		n.LitType = types.DefaultBool
		n.BoolVal = tok.val == "true"
	case types.Char:
		c, err := decodeCharLiteral(tok.val)
		if err != nil {
			return nil, diag.New(diag.LexError, p.file, tok.line, tok.col, tok.rawLine, "%s", err)
		}
		n.LitType = types.DefaultChar
		n.CharVal = c
	default:
		return nil, diag.New(diag.LexError, p.file, tok.line, tok.col, tok.rawLine, "malformed literal %q", tok.val)
	}
	return n, nil
}

func stripIntSuffix(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}

func stripFloatSuffix(s string) string {
	for i := len(s) - 1; i > 0; i-- {
		if s[i] == 'f' {
			return s[:i]
		}
	}
	return s
}

var charEscapes = map[byte]byte{
	'\'': '\'', '"': '"', '\\': '\\', 'a': '\a', 'b': '\b', 'f': '\f',
	'n': '\n', 'r': '\r', 't': '\t', 'v': '\v', '0': 0,
}

func decodeCharLiteral(tok string) (byte, error) {
	inner := tok[1 : len(tok)-1]
	if len(inner) == 1 {
		return inner[0], nil
	}
	if len(inner) == 2 && inner[0] == '\\' {
		if c, ok := charEscapes[inner[1]]; ok {
			return c, nil
		}
	}
	return 0, fmt.Errorf("invalid char literal %q", tok)
}

func (p *parser) parseIdentOrCall() (*ast.Expr, error) {
	tok := p.cur
	p.advance()
	nameID, _ := p.reg.GetID(tok.val)

	if p.cur.typ == tokLParen {
		return p.parseCallArgs(nameID, tok)
	}

	if p.cur.typ == tokScope {
		p.advance()
		rhs, err := p.parseIdentOrCall()
		if err != nil {
			return nil, err
		}
		lhs := &ast.Expr{Kind: ast.KVariableReference, RefNameID: nameID, Status: ast.Variable}
		lhs.Line = ast.LineInfo{StartLine: tok.line, StartCol: tok.col, RawLine: tok.rawLine}
		return &ast.Expr{
			Kind: ast.KBinary, Op: operator.ModuleScope, Lhs: lhs, Rhs: rhs,
			Line: lhs.Line,
		}, nil
	}

	n := &ast.Expr{Kind: ast.KVariableReference, RefNameID: nameID}
	n.Line = ast.LineInfo{StartLine: tok.line, StartCol: tok.col, RawLine: tok.rawLine}
	return n, nil
}

func (p *parser) parseCallArgs(calleeID intern.ID, nameTok item) (*ast.Expr, error) {
	if _, err := p.expect(tokLParen); err != nil {
		return nil, err
	}
	var args []*ast.Expr
	for p.cur.typ != tokRParen {
		if len(args) > 0 {
			if _, err := p.expect(tokComma); err != nil {
				return nil, err
			}
		}
		a, err := p.parseExpr(operator.PrecAssignment + 1)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	if _, err := p.expect(tokRParen); err != nil {
		return nil, err
	}
	n := &ast.Expr{Kind: ast.KCall, CalleeID: calleeID, Args: args}
	n.Line = ast.LineInfo{StartLine: nameTok.line, StartCol: nameTok.col, RawLine: nameTok.rawLine}
	return n, nil
}

// parseParenOrCast handles both a parenthesized sub-expression and a
// C-style cast "(" type ")" expr, per the example in spec §8 scenario 6.
func (p *parser) parseParenOrCast() (*ast.Expr, error) {
	start := p.cur
	if _, err := p.expect(tokLParen); err != nil {
		return nil, err
	}
	if p.cur.typ == tokType {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		n := &ast.Expr{Kind: ast.KCast, TargetType: t, CastExpr: operand}
		n.Line = p.lineInfoFrom(start)
		return n, nil
	}
	inner, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRParen); err != nil {
		return nil, err
	}
	return inner, nil
}
