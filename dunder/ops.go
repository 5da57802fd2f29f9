// Copyright 2023 The Dunderhell Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dunder

import (
	"github.com/go-python/gpython/ast"
)

// binOpDunders maps binary operators to their protocol methods. Note
// `/` is __truediv__: Python 3 dropped __div__.
var binOpDunders = map[ast.OperatorNumber]string{
	ast.Add:      "__add__",
	ast.Sub:      "__sub__",
	ast.Mult:     "__mul__",
	ast.Div:      "__truediv__",
	ast.Modulo:   "__mod__",
	ast.Pow:      "__pow__",
	ast.LShift:   "__lshift__",
	ast.RShift:   "__rshift__",
	ast.BitOr:    "__or__",
	ast.BitXor:   "__xor__",
	ast.BitAnd:   "__and__",
	ast.FloorDiv: "__floordiv__",
}

// `not` stays: it has no dunder spelling.
var unaryOpDunders = map[ast.UnaryOpNumber]string{
	ast.Invert: "__invert__",
	ast.UAdd:   "__pos__",
	ast.USub:   "__neg__",
}

// `is` and `is not` compare identities, not values; no method on the
// operands expresses them, so comparisons containing either pass
// through whole.
var cmpOpDunders = map[ast.CmpOp]string{
	ast.Eq:    "__eq__",
	ast.NotEq: "__ne__",
	ast.Lt:    "__lt__",
	ast.LtE:   "__le__",
	ast.Gt:    "__gt__",
	ast.GtE:   "__ge__",
	ast.In:    "__contains__",
	ast.NotIn: "__contains__", // wrapped in `not` below
}

// opsPass turns operators into explicit dunder method calls:
//
//	-3 + 5*9   ->   (3).__neg__().__add__((5).__mul__(9))
//	x < y < z  ->   x.__lt__(y) and y.__lt__(z)
//	a in b     ->   b.__contains__(a)
//
// Augmented assignments are left alone: `x += y` lowers to __iadd__
// with in-place semantics that `x = x.__add__(y)` would not preserve
// for mutable objects. Their operand expressions are still rewritten by
// the transformer's recursion.
func opsPass() exprRewrite {
	return func(expr ast.Expr) ast.Expr {
		switch v := expr.(type) {
		case *ast.BinOp:
			dunder, ok := binOpDunders[v.Op]
			if !ok {
				return expr
			}
			return methodCall(v.Left, dunder, v.Right)

		case *ast.UnaryOp:
			dunder, ok := unaryOpDunders[v.Op]
			if !ok {
				return expr
			}
			return methodCall(v.Operand, dunder)

		case *ast.Compare:
			return rewriteCompare(v)
		}
		return expr
	}
}

// rewriteCompare expands a (possibly chained) comparison into dunder
// calls joined with `and`. Chained middles are reused on both sides of
// their two comparisons, mirroring how the chain reads after
// desugaring.
func rewriteCompare(cmp *ast.Compare) ast.Expr {
	for _, op := range cmp.Ops {
		if op == ast.Is || op == ast.IsNot {
			return cmp
		}
	}

	parts := make([]ast.Expr, 0, len(cmp.Ops))
	left := cmp.Left
	for i, op := range cmp.Ops {
		right := cmp.Comparators[i]

		var part ast.Expr
		if op == ast.In || op == ast.NotIn {
			// Membership has reversed operands: `a in b` asks b.
			part = methodCall(right, cmpOpDunders[op], left)
			if op == ast.NotIn {
				part = &ast.UnaryOp{Op: ast.Not, Operand: part}
			}
		} else {
			part = methodCall(left, cmpOpDunders[op], right)
		}

		parts = append(parts, part)
		left = right
	}

	if len(parts) == 1 {
		return parts[0]
	}
	return &ast.BoolOp{Op: ast.And, Values: parts}
}
