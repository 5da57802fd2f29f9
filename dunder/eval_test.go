// Copyright 2023 The Dunderhell Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dunder

import (
	"math/big"
	"testing"

	"github.com/go-python/gpython/ast"
	"github.com/go-python/gpython/py"
)

// A tiny evaluator for the expression shapes the encoders emit, so
// tests can check what an encoding evaluates to without a Python
// interpreter. anchorLen stands in for len(__name__) at run time.

func evalInt(t *testing.T, e ast.Expr, anchorLen int64) int64 {
	t.Helper()
	switch v := e.(type) {
	case *ast.Num:
		n, ok := v.N.(py.Int)
		if !ok {
			t.Fatalf("eval: non-int number %#v", v.N)
		}
		return int64(n)

	case *ast.BinOp:
		left := evalInt(t, v.Left, anchorLen)
		right := evalInt(t, v.Right, anchorLen)
		switch v.Op {
		case ast.Add:
			return left + right
		case ast.Sub:
			return left - right
		case ast.Mult:
			return left * right
		case ast.FloorDiv:
			return left / right
		}
		t.Fatalf("eval: unexpected operator %v", v.Op)

	case *ast.UnaryOp:
		if v.Op == ast.USub {
			return -evalInt(t, v.Operand, anchorLen)
		}
		t.Fatalf("eval: unexpected unary operator %v", v.Op)

	case *ast.Call:
		if isAnchorCall(v) {
			return anchorLen
		}
		t.Fatalf("eval: unexpected call %#v", v.Func)
	}
	t.Fatalf("eval: unexpected node %T", e)
	return 0
}

// evalBig is evalInt without the int64 ceiling, for encodings of
// integers that a machine word cannot hold.
func evalBig(t *testing.T, e ast.Expr, anchorLen int64) *big.Int {
	t.Helper()
	switch v := e.(type) {
	case *ast.Num:
		n, ok := v.N.(py.Int)
		if !ok {
			t.Fatalf("eval: non-int number %#v", v.N)
		}
		return big.NewInt(int64(n))

	case *ast.BinOp:
		left := evalBig(t, v.Left, anchorLen)
		right := evalBig(t, v.Right, anchorLen)
		out := new(big.Int)
		switch v.Op {
		case ast.Add:
			return out.Add(left, right)
		case ast.Sub:
			return out.Sub(left, right)
		case ast.Mult:
			return out.Mul(left, right)
		case ast.FloorDiv:
			return out.Quo(left, right)
		}
		t.Fatalf("eval: unexpected operator %v", v.Op)

	case *ast.UnaryOp:
		if v.Op == ast.USub {
			return new(big.Int).Neg(evalBig(t, v.Operand, anchorLen))
		}
		t.Fatalf("eval: unexpected unary operator %v", v.Op)

	case *ast.Call:
		if isAnchorCall(v) {
			return big.NewInt(anchorLen)
		}
		t.Fatalf("eval: unexpected call %#v", v.Func)
	}
	t.Fatalf("eval: unexpected node %T", e)
	return nil
}

func evalString(t *testing.T, e ast.Expr, anchorLen int64) string {
	t.Helper()
	switch v := e.(type) {
	case *ast.BinOp:
		if v.Op != ast.Add {
			t.Fatalf("eval: unexpected string operator %v", v.Op)
		}
		return evalString(t, v.Left, anchorLen) + evalString(t, v.Right, anchorLen)

	case *ast.Call:
		if name, ok := v.Func.(*ast.Name); ok && name.Id == "__chr__" {
			if len(v.Args) != 1 {
				t.Fatalf("eval: __chr__ wants one argument, got %d", len(v.Args))
			}
			return string(rune(evalInt(t, v.Args[0], anchorLen)))
		}
		if attr, ok := v.Func.(*ast.Attribute); ok && attr.Attr == "__class__" {
			if name, ok := attr.Value.(*ast.Name); ok && name.Id == "__name__" {
				return "" // str() on the module name's type
			}
		}
	}
	t.Fatalf("eval: unexpected string node %T", e)
	return ""
}

// isAnchorCall reports whether e is `__name__.__len__()`.
func isAnchorCall(e *ast.Call) bool {
	attr, ok := e.Func.(*ast.Attribute)
	if !ok || attr.Attr != "__len__" {
		return false
	}
	name, ok := attr.Value.(*ast.Name)
	return ok && name.Id == "__name__" && len(e.Args) == 0
}

// exprSource renders a lone expression to Python text.
func exprSource(t *testing.T, e ast.Expr) string {
	t.Helper()
	m := &ast.Module{Body: []ast.Stmt{&ast.ExprStmt{Value: e}}}
	src, err := Unparse(m)
	if err != nil {
		t.Fatal(err)
	}
	return src
}
