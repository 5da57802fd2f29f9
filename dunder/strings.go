// Copyright 2023 The Dunderhell Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dunder

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-python/gpython/ast"
	"github.com/go-python/gpython/parser"
	"github.com/go-python/gpython/py"
)

// The rewritten program calls __chr__ to build every character, so a
// single definition is prepended whenever some string was encoded. The
// name "chr" itself is spelled out of attribute introspection:
//
//	__name__.__reduce__.__name__[6]            'c' (from "__reduce__")
//	__name__.__add__.__class__.__name__[3]     'h' (from "method-wrapper")
//	__name__.__class__.__name__[-1]            'r' (from "str")
//
// The integer subscripts here are plain literals on purpose: the number
// pass runs after the string pass and dunderifies them along with
// everything else.
const chrPreambleSrc = `__chr__ = __builtins__.__getattribute__(__name__.__reduce__.__name__[6] + __name__.__add__.__class__.__name__[3] + __name__.__class__.__name__[-1])`

// chrPreamble parses the __chr__ assignment into a fresh statement.
// Fresh per call: the returned tree is mutated by later passes.
func chrPreamble() (ast.Stmt, error) {
	tree, err := parser.Parse(strings.NewReader(chrPreambleSrc), "<dunder>", "exec")
	if err != nil {
		return nil, err
	}
	return tree.(*ast.Module).Body[0], nil
}

// Rune encodes a single character as `__chr__(<code point>)`, with the
// code point left as a literal for the number pass to pick up.
func (e *Encoder) Rune(r rune) (ast.Expr, error) {
	if r < 0 || r > unicode.MaxRune {
		return nil, newEncodeError(r, "code point out of range")
	}
	return callExpr(loadName("__chr__"), intNode(int64(r))), nil
}

// String encodes a string as `__chr__(c1) + __chr__(c2) + ...` in
// character order. The empty string becomes `__name__.__class__()`,
// which calls str() without naming it.
func (e *Encoder) String(s string) (ast.Expr, error) {
	if s == "" {
		return methodCall(loadName("__name__"), "__class__"), nil
	}

	var chars []ast.Expr
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return nil, newEncodeError(s, "invalid UTF-8 at byte %d", i)
		}
		c, err := e.Rune(r)
		if err != nil {
			return nil, err
		}
		chars = append(chars, c)
		i += size
	}
	return joinBinOp(ast.Add, chars...), nil
}

// literalPass rewrites string, float, and bytes literals. Strings
// become __chr__ chains; floats and bytes are rebuilt through their
// dynamically resolved constructors, with the constructor argument left
// for the string and number passes that follow:
//
//	3.25   ->  float('3.25')        (string then encoded)
//	b'hi'  ->  bytes([104, 105])    (numbers then encoded)
//
// found records whether any __chr__ call was emitted, which decides
// whether the preamble is needed.
type literalPass struct {
	enc   *Encoder
	found bool
	err   error
}

func (p *literalPass) rewriteFloatsAndBytes(expr ast.Expr) ast.Expr {
	switch v := expr.(type) {
	case *ast.Num:
		f, ok := v.N.(py.Float)
		if !ok {
			return expr
		}
		repr := strconv.FormatFloat(float64(f), 'g', -1, 64)
		return callExpr(p.enc.BuiltinLookup("float"), strNode(repr))

	case *ast.Bytes:
		codes := make([]ast.Expr, len(v.S))
		for i, b := range v.S {
			codes[i] = intNode(int64(b))
		}
		list := &ast.List{Elts: codes, Ctx: ast.Load}
		return callExpr(p.enc.BuiltinLookup("bytes"), list)
	}
	return expr
}

func (p *literalPass) rewriteStrings(expr ast.Expr) ast.Expr {
	if p.err != nil {
		return expr
	}
	str, ok := expr.(*ast.Str)
	if !ok {
		return expr
	}
	encoded, err := p.enc.String(string(str.S))
	if err != nil {
		p.err = err
		return expr
	}
	if string(str.S) != "" {
		p.found = true
	}
	return encoded
}
