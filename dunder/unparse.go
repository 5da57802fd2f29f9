// Copyright 2023 The Dunderhell Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dunder

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/go-python/gpython/ast"
	"github.com/go-python/gpython/py"
)

// Unparse renders a module back to Python source: one statement per
// line, four-space indents, and parentheses only where precedence
// demands them. Rendering a node with no rule fails with
// UnsupportedError rather than guessing, so a successful Unparse is a
// complete program.
func Unparse(m *ast.Module) (string, error) {
	u := &unparser{}
	u.renderBody(m.Body)
	if u.err != nil {
		return "", u.err
	}
	return u.buf.String(), nil
}

// Expression precedence, loosest first. Used both for "does this child
// need parentheses" and for associativity fixups.
const (
	precLowest = iota // lambda, conditional expressions, yield
	precOr
	precAnd
	precNot
	precCmp
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precAdd
	precMul
	precUnary
	precPow
	precPostfix // calls, attributes, subscripts
	precAtom
)

var binOpStrs = map[ast.OperatorNumber]string{
	ast.Add:      "+",
	ast.Sub:      "-",
	ast.Mult:     "*",
	ast.Div:      "/",
	ast.Modulo:   "%",
	ast.Pow:      "**",
	ast.LShift:   "<<",
	ast.RShift:   ">>",
	ast.BitOr:    "|",
	ast.BitXor:   "^",
	ast.BitAnd:   "&",
	ast.FloorDiv: "//",
}

var binOpPrecs = map[ast.OperatorNumber]int{
	ast.Add:      precAdd,
	ast.Sub:      precAdd,
	ast.Mult:     precMul,
	ast.Div:      precMul,
	ast.Modulo:   precMul,
	ast.Pow:      precPow,
	ast.LShift:   precShift,
	ast.RShift:   precShift,
	ast.BitOr:    precBitOr,
	ast.BitXor:   precBitXor,
	ast.BitAnd:   precBitAnd,
	ast.FloorDiv: precMul,
}

var cmpOpStrs = map[ast.CmpOp]string{
	ast.Eq:    "==",
	ast.NotEq: "!=",
	ast.Lt:    "<",
	ast.LtE:   "<=",
	ast.Gt:    ">",
	ast.GtE:   ">=",
	ast.Is:    "is",
	ast.IsNot: "is not",
	ast.In:    "in",
	ast.NotIn: "not in",
}

type unparser struct {
	buf    strings.Builder
	indent int
	err    error
}

func (u *unparser) fail(node interface{}) {
	if u.err == nil {
		u.err = newUnsupportedError(node)
	}
}

func (u *unparser) write(s string) {
	u.buf.WriteString(s)
}

func (u *unparser) writef(format string, args ...interface{}) {
	fmt.Fprintf(&u.buf, format, args...)
}

func (u *unparser) line(s string) {
	u.write(strings.Repeat("    ", u.indent))
	u.write(s)
	u.write("\n")
}

// startLine writes the indent only; the caller finishes the line.
func (u *unparser) startLine() {
	u.write(strings.Repeat("    ", u.indent))
}

func (u *unparser) endLine() {
	u.write("\n")
}

func isScopeStmt(stmt ast.Stmt) bool {
	switch stmt.(type) {
	case *ast.FunctionDef, *ast.ClassDef:
		return true
	}
	return false
}

func (u *unparser) renderBody(body []ast.Stmt) {
	for i, stmt := range body {
		if u.err != nil {
			return
		}
		if i > 0 && isScopeStmt(stmt) {
			u.write("\n")
		}
		u.renderStmt(stmt)
	}
}

func (u *unparser) renderBlock(body []ast.Stmt) {
	u.write(":")
	u.endLine()
	u.indent++
	if len(body) == 0 {
		u.line("pass")
	} else {
		u.renderBody(body)
	}
	u.indent--
}

func (u *unparser) renderStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		u.startLine()
		u.renderExpr(s.Value, precLowest)
		u.endLine()

	case *ast.Assign:
		u.startLine()
		for _, t := range s.Targets {
			u.renderExpr(t, precLowest)
			u.write(" = ")
		}
		u.renderExpr(s.Value, precLowest)
		u.endLine()

	case *ast.AugAssign:
		u.startLine()
		u.renderExpr(s.Target, precLowest)
		op, ok := binOpStrs[s.Op]
		if !ok {
			u.fail(s)
			return
		}
		u.write(" " + op + "= ")
		u.renderExpr(s.Value, precLowest)
		u.endLine()

	case *ast.Return:
		if s.Value == nil {
			u.line("return")
		} else {
			u.startLine()
			u.write("return ")
			u.renderExpr(s.Value, precLowest)
			u.endLine()
		}

	case *ast.Pass:
		u.line("pass")
	case *ast.Break:
		u.line("break")
	case *ast.Continue:
		u.line("continue")

	case *ast.Delete:
		u.startLine()
		u.write("del ")
		u.renderExprList(s.Targets)
		u.endLine()

	case *ast.Assert:
		u.startLine()
		u.write("assert ")
		u.renderExpr(s.Test, precLowest)
		if s.Msg != nil {
			u.write(", ")
			u.renderExpr(s.Msg, precLowest)
		}
		u.endLine()

	case *ast.Raise:
		u.startLine()
		u.write("raise")
		if s.Exc != nil {
			u.write(" ")
			u.renderExpr(s.Exc, precLowest)
			if s.Cause != nil {
				u.write(" from ")
				u.renderExpr(s.Cause, precLowest)
			}
		}
		u.endLine()

	case *ast.Global:
		u.line("global " + joinIdentifiers(s.Names))
	case *ast.Nonlocal:
		u.line("nonlocal " + joinIdentifiers(s.Names))

	case *ast.Import:
		u.startLine()
		u.write("import ")
		u.renderAliases(s.Names)
		u.endLine()

	case *ast.ImportFrom:
		u.startLine()
		u.writef("from %s%s import ", strings.Repeat(".", s.Level), s.Module)
		u.renderAliases(s.Names)
		u.endLine()

	case *ast.If:
		u.renderIf(s, "if")

	case *ast.While:
		u.startLine()
		u.write("while ")
		u.renderExpr(s.Test, precLowest)
		u.renderBlock(s.Body)
		u.renderElse(s.Orelse)

	case *ast.For:
		u.startLine()
		u.write("for ")
		u.renderExpr(s.Target, precLowest)
		u.write(" in ")
		u.renderExpr(s.Iter, precLowest)
		u.renderBlock(s.Body)
		u.renderElse(s.Orelse)

	case *ast.With:
		u.startLine()
		u.write("with ")
		for i, item := range s.Items {
			if i > 0 {
				u.write(", ")
			}
			u.renderExpr(item.ContextExpr, precLowest)
			if item.OptionalVars != nil {
				u.write(" as ")
				u.renderExpr(item.OptionalVars, precLowest)
			}
		}
		u.renderBlock(s.Body)

	case *ast.Try:
		u.startLine()
		u.write("try")
		u.renderBlock(s.Body)
		for _, h := range s.Handlers {
			u.startLine()
			u.write("except")
			if h.ExprType != nil {
				u.write(" ")
				u.renderExpr(h.ExprType, precLowest)
				if h.Name != "" {
					u.writef(" as %s", h.Name)
				}
			}
			u.renderBlock(h.Body)
		}
		u.renderElse(s.Orelse)
		if len(s.Finalbody) > 0 {
			u.startLine()
			u.write("finally")
			u.renderBlock(s.Finalbody)
		}

	case *ast.FunctionDef:
		u.renderDecorators(s.DecoratorList)
		u.startLine()
		u.writef("def %s(", s.Name)
		u.renderArguments(s.Args)
		u.write(")")
		if s.Returns != nil {
			u.write(" -> ")
			u.renderExpr(s.Returns, precLowest)
		}
		u.renderBlock(s.Body)

	case *ast.ClassDef:
		u.renderDecorators(s.DecoratorList)
		u.startLine()
		u.writef("class %s", s.Name)
		if len(s.Bases) > 0 || len(s.Keywords) > 0 || s.Starargs != nil || s.Kwargs != nil {
			u.write("(")
			n := 0
			comma := func() {
				if n > 0 {
					u.write(", ")
				}
				n++
			}
			for _, b := range s.Bases {
				comma()
				u.renderExpr(b, precLowest)
			}
			for _, kw := range s.Keywords {
				comma()
				u.writef("%s=", kw.Arg)
				u.renderExpr(kw.Value, precLowest)
			}
			if s.Starargs != nil {
				comma()
				u.write("*")
				u.renderExpr(s.Starargs, precPostfix)
			}
			if s.Kwargs != nil {
				comma()
				u.write("**")
				u.renderExpr(s.Kwargs, precPostfix)
			}
			u.write(")")
		}
		u.renderBlock(s.Body)

	default:
		u.fail(stmt)
	}
}

// renderIf prints an if statement, folding a lone nested if in the else
// branch into elif.
func (u *unparser) renderIf(s *ast.If, keyword string) {
	u.startLine()
	u.write(keyword + " ")
	u.renderExpr(s.Test, precLowest)
	u.renderBlock(s.Body)

	if len(s.Orelse) == 1 {
		if elif, ok := s.Orelse[0].(*ast.If); ok {
			u.renderIf(elif, "elif")
			return
		}
	}
	u.renderElse(s.Orelse)
}

func (u *unparser) renderElse(orelse []ast.Stmt) {
	if len(orelse) == 0 {
		return
	}
	u.startLine()
	u.write("else")
	u.renderBlock(orelse)
}

func (u *unparser) renderDecorators(decorators []ast.Expr) {
	for _, d := range decorators {
		u.startLine()
		u.write("@")
		u.renderExpr(d, precLowest)
		u.endLine()
	}
}

func (u *unparser) renderAliases(names []*ast.Alias) {
	for i, alias := range names {
		if i > 0 {
			u.write(", ")
		}
		u.write(string(alias.Name))
		if alias.AsName != "" {
			u.writef(" as %s", alias.AsName)
		}
	}
}

func joinIdentifiers(ids []ast.Identifier) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}

func (u *unparser) renderArguments(args *ast.Arguments) {
	if args == nil {
		return
	}
	n := 0
	comma := func() {
		if n > 0 {
			u.write(", ")
		}
		n++
	}

	// Defaults align with the trailing positional parameters.
	firstDefault := len(args.Args) - len(args.Defaults)
	for i, arg := range args.Args {
		comma()
		u.renderArg(arg)
		if i >= firstDefault {
			u.write("=")
			u.renderExpr(args.Defaults[i-firstDefault], precLowest)
		}
	}

	if args.Vararg != nil {
		comma()
		u.write("*")
		u.renderArg(args.Vararg)
	} else if len(args.Kwonlyargs) > 0 {
		comma()
		u.write("*")
	}

	for i, arg := range args.Kwonlyargs {
		comma()
		u.renderArg(arg)
		if i < len(args.KwDefaults) && args.KwDefaults[i] != nil {
			u.write("=")
			u.renderExpr(args.KwDefaults[i], precLowest)
		}
	}

	if args.Kwarg != nil {
		comma()
		u.write("**")
		u.renderArg(args.Kwarg)
	}
}

func (u *unparser) renderArg(arg *ast.Arg) {
	u.write(string(arg.Arg))
	if arg.Annotation != nil {
		u.write(": ")
		u.renderExpr(arg.Annotation, precLowest)
	}
}

func (u *unparser) renderExprList(exprs []ast.Expr) {
	for i, e := range exprs {
		if i > 0 {
			u.write(", ")
		}
		u.renderExpr(e, precLowest)
	}
}

func exprPrec(e ast.Expr) int {
	switch v := e.(type) {
	case *ast.Lambda, *ast.IfExp, *ast.Yield, *ast.YieldFrom:
		return precLowest
	case *ast.BoolOp:
		if v.Op == ast.Or {
			return precOr
		}
		return precAnd
	case *ast.UnaryOp:
		if v.Op == ast.Not {
			return precNot
		}
		return precUnary
	case *ast.Compare:
		return precCmp
	case *ast.BinOp:
		if p, ok := binOpPrecs[v.Op]; ok {
			return p
		}
		return precLowest
	case *ast.Call, *ast.Attribute, *ast.Subscript:
		return precPostfix
	default:
		return precAtom
	}
}

// renderExpr writes e, parenthesized if its precedence is looser than
// what the context requires.
func (u *unparser) renderExpr(e ast.Expr, minPrec int) {
	if e == nil {
		u.fail(e)
		return
	}
	if exprPrec(e) < minPrec {
		u.write("(")
		u.renderExprInner(e)
		u.write(")")
		return
	}
	u.renderExprInner(e)
}

func (u *unparser) renderExprInner(e ast.Expr) {
	switch v := e.(type) {
	case *ast.Name:
		u.write(string(v.Id))

	case *ast.Num:
		u.write(formatNumber(v.N))

	case *ast.Str:
		u.write(quoteString(string(v.S)))

	case *ast.Bytes:
		u.write(quoteBytes(v.S))

	case *ast.NameConstant:
		switch v.Value {
		case py.None:
			u.write("None")
		case py.True:
			u.write("True")
		case py.False:
			u.write("False")
		default:
			u.fail(v)
		}

	case *ast.Ellipsis:
		u.write("...")

	case *ast.BoolOp:
		word := " or "
		prec := precOr
		if v.Op == ast.And {
			word = " and "
			prec = precAnd
		}
		for i, val := range v.Values {
			if i > 0 {
				u.write(word)
			}
			u.renderExpr(val, prec+1)
		}

	case *ast.BinOp:
		op, ok := binOpStrs[v.Op]
		if !ok {
			u.fail(v)
			return
		}
		prec := binOpPrecs[v.Op]
		leftPrec, rightPrec := prec, prec+1
		if v.Op == ast.Pow {
			// ** associates to the right.
			leftPrec, rightPrec = prec+1, prec
		}
		u.renderExpr(v.Left, leftPrec)
		u.write(" " + op + " ")
		u.renderExpr(v.Right, rightPrec)

	case *ast.UnaryOp:
		if v.Op == ast.Not {
			u.write("not ")
			u.renderExpr(v.Operand, precNot)
			return
		}
		switch v.Op {
		case ast.Invert:
			u.write("~")
		case ast.UAdd:
			u.write("+")
		case ast.USub:
			u.write("-")
		default:
			u.fail(v)
			return
		}
		u.renderExpr(v.Operand, precUnary)

	case *ast.Compare:
		u.renderExpr(v.Left, precCmp+1)
		for i, op := range v.Ops {
			s, ok := cmpOpStrs[op]
			if !ok {
				u.fail(v)
				return
			}
			u.write(" " + s + " ")
			u.renderExpr(v.Comparators[i], precCmp+1)
		}

	case *ast.Call:
		u.renderExpr(v.Func, precPostfix)
		u.write("(")
		n := 0
		comma := func() {
			if n > 0 {
				u.write(", ")
			}
			n++
		}
		for _, arg := range v.Args {
			comma()
			u.renderExpr(arg, precLowest)
		}
		for _, kw := range v.Keywords {
			comma()
			u.writef("%s=", kw.Arg)
			u.renderExpr(kw.Value, precLowest)
		}
		if v.Starargs != nil {
			comma()
			u.write("*")
			u.renderExpr(v.Starargs, precPostfix)
		}
		if v.Kwargs != nil {
			comma()
			u.write("**")
			u.renderExpr(v.Kwargs, precPostfix)
		}
		u.write(")")

	case *ast.Attribute:
		// `1 .__neg__` is how the tokenizer wants it; parens read better.
		if _, ok := v.Value.(*ast.Num); ok {
			u.write("(")
			u.renderExprInner(v.Value)
			u.write(")")
		} else {
			u.renderExpr(v.Value, precPostfix)
		}
		u.writef(".%s", v.Attr)

	case *ast.Subscript:
		u.renderExpr(v.Value, precPostfix)
		u.write("[")
		u.renderSlicer(v.Slice)
		u.write("]")

	case *ast.Starred:
		u.write("*")
		u.renderExpr(v.Value, precPostfix)

	case *ast.Tuple:
		u.write("(")
		u.renderExprList(v.Elts)
		if len(v.Elts) == 1 {
			u.write(",")
		}
		u.write(")")

	case *ast.List:
		u.write("[")
		u.renderExprList(v.Elts)
		u.write("]")

	case *ast.Set:
		u.write("{")
		u.renderExprList(v.Elts)
		u.write("}")

	case *ast.Dict:
		u.write("{")
		for i := range v.Keys {
			if i > 0 {
				u.write(", ")
			}
			u.renderExpr(v.Keys[i], precLowest)
			u.write(": ")
			u.renderExpr(v.Values[i], precLowest)
		}
		u.write("}")

	case *ast.Lambda:
		u.write("lambda")
		if v.Args != nil && (len(v.Args.Args) > 0 || v.Args.Vararg != nil ||
			len(v.Args.Kwonlyargs) > 0 || v.Args.Kwarg != nil) {
			u.write(" ")
			u.renderArguments(v.Args)
		}
		u.write(": ")
		u.renderExpr(v.Body, precLowest)

	case *ast.IfExp:
		u.renderExpr(v.Body, precOr)
		u.write(" if ")
		u.renderExpr(v.Test, precOr)
		u.write(" else ")
		u.renderExpr(v.Orelse, precLowest)

	case *ast.ListComp:
		u.write("[")
		u.renderExpr(v.Elt, precLowest)
		u.renderComprehensions(v.Generators)
		u.write("]")

	case *ast.SetComp:
		u.write("{")
		u.renderExpr(v.Elt, precLowest)
		u.renderComprehensions(v.Generators)
		u.write("}")

	case *ast.DictComp:
		u.write("{")
		u.renderExpr(v.Key, precLowest)
		u.write(": ")
		u.renderExpr(v.Value, precLowest)
		u.renderComprehensions(v.Generators)
		u.write("}")

	case *ast.GeneratorExp:
		u.write("(")
		u.renderExpr(v.Elt, precLowest)
		u.renderComprehensions(v.Generators)
		u.write(")")

	case *ast.Yield:
		u.write("yield")
		if v.Value != nil {
			u.write(" ")
			u.renderExpr(v.Value, precLowest)
		}

	case *ast.YieldFrom:
		u.write("yield from ")
		u.renderExpr(v.Value, precLowest)

	default:
		u.fail(e)
	}
}

func (u *unparser) renderComprehensions(gens []ast.Comprehension) {
	for _, gen := range gens {
		u.write(" for ")
		u.renderExpr(gen.Target, precLowest)
		u.write(" in ")
		u.renderExpr(gen.Iter, precOr)
		for _, cond := range gen.Ifs {
			u.write(" if ")
			u.renderExpr(cond, precOr)
		}
	}
}

func (u *unparser) renderSlicer(s ast.Slicer) {
	switch v := s.(type) {
	case *ast.Index:
		u.renderExpr(v.Value, precLowest)

	case *ast.Slice:
		if v.Lower != nil {
			u.renderExpr(v.Lower, precLowest)
		}
		u.write(":")
		if v.Upper != nil {
			u.renderExpr(v.Upper, precLowest)
		}
		if v.Step != nil {
			u.write(":")
			u.renderExpr(v.Step, precLowest)
		}

	case *ast.ExtSlice:
		for i, dim := range v.Dims {
			if i > 0 {
				u.write(", ")
			}
			u.renderSlicer(dim)
		}

	default:
		u.fail(s)
	}
}

func formatNumber(n py.Object) string {
	switch num := n.(type) {
	case py.Int:
		return strconv.FormatInt(int64(num), 10)
	case *py.BigInt:
		return (*big.Int)(num).String()
	case py.Float:
		return formatPyFloat(float64(num))
	case py.Complex:
		c := complex128(num)
		if real(c) == 0 {
			return formatPyFloat(imag(c)) + "j"
		}
		return fmt.Sprintf("(%s+%sj)", formatPyFloat(real(c)), formatPyFloat(imag(c)))
	default:
		return fmt.Sprint(n)
	}
}

// formatPyFloat keeps a float spelled as a float: Go's %g prints 250.0
// as "250", which would re-parse as an int.
func formatPyFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".einf") {
		s += ".0"
	}
	return s
}

// quoteBytes renders a Python bytes literal. Bytes are written one at
// a time, never decoded: anything outside printable ASCII gets a \x
// escape, so values past 0x7f survive instead of collapsing to the
// replacement character.
func quoteBytes(s []byte) string {
	var b strings.Builder
	b.WriteString("b'")
	for _, c := range s {
		switch c {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 || c >= 0x7f {
				fmt.Fprintf(&b, `\x%02x`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// quoteString renders a Python single-quoted string literal.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\x%02x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('\'')
	return b.String()
}
