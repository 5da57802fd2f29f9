// Copyright 2023 The Dunderhell Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dunder

import (
	"github.com/go-python/gpython/ast"
	"github.com/go-python/gpython/py"
)

// Constructors for the handful of node shapes the encoders emit.
// Positions are left zero: the serializer never reads them.

func loadName(id string) *ast.Name {
	return &ast.Name{Id: ast.Identifier(id), Ctx: ast.Load}
}

func loadAttr(value ast.Expr, attr string) *ast.Attribute {
	return &ast.Attribute{Value: value, Attr: ast.Identifier(attr), Ctx: ast.Load}
}

func callExpr(fn ast.Expr, args ...ast.Expr) *ast.Call {
	return &ast.Call{Func: fn, Args: args}
}

// methodCall wraps an expression in a method call:
// methodCall(x, "__add__", y) is `x.__add__(y)`.
func methodCall(recv ast.Expr, method string, args ...ast.Expr) *ast.Call {
	return callExpr(loadAttr(recv, method), args...)
}

func strNode(s string) *ast.Str {
	return &ast.Str{S: py.String(s)}
}

func intNode(n int64) *ast.Num {
	return &ast.Num{N: py.Int(n)}
}

// joinBinOp builds a left-leaning BinOp tree combining exprs with op:
// joinBinOp(ast.Add, a, b, c) is `a + b + c`. A single expression is
// returned as-is.
func joinBinOp(op ast.OperatorNumber, exprs ...ast.Expr) ast.Expr {
	tree := exprs[0]
	for _, e := range exprs[1:] {
		tree = &ast.BinOp{Left: tree, Op: op, Right: e}
	}
	return tree
}
