// Copyright 2023 The Dunderhell Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dunder

import (
	"math/big"

	"github.com/go-python/gpython/ast"
	"github.com/go-python/gpython/py"
)

// DefaultAnchorLen is the length of "__main__", the name of the module
// the rewritten program is expected to run as. Every number in the
// output is arithmetic over __name__.__len__(), so this is the only
// numeric seed the encoding needs.
const DefaultAnchorLen = len("__main__")

// An Encoder turns Go values into dunder-only Python expression trees.
// The zero value is not usable; NewEncoder fills in the anchor length.
//
// Encoders are pure: the same input always yields a structurally
// identical tree, and every call returns freshly allocated nodes so the
// caller may mutate the result freely.
type Encoder struct {
	anchorLen int64
}

func NewEncoder(anchorLen int) *Encoder {
	if anchorLen < 2 {
		// A length-1 anchor makes L and L//L indistinguishable, and a
		// module can't have an empty name.
		panic("dunder: anchor length must be at least 2")
	}
	return &Encoder{anchorLen: int64(anchorLen)}
}

// anchor returns `__name__.__len__()`, the atom every numeral is
// derived from. Evaluates to anchorLen in the target program.
func (e *Encoder) anchor() ast.Expr {
	return methodCall(loadName("__name__"), "__len__")
}

// one returns `__name__.__len__() // __name__.__len__()`.
func (e *Encoder) one() ast.Expr {
	return &ast.BinOp{Left: e.anchor(), Op: ast.FloorDiv, Right: e.anchor()}
}

// zero returns `__name__.__len__() - __name__.__len__()`.
func (e *Encoder) zero() ast.Expr {
	return &ast.BinOp{Left: e.anchor(), Op: ast.Sub, Right: e.anchor()}
}

// smallInt encodes 0 <= n < anchorLen as a chain of added ones.
func (e *Encoder) smallInt(n int64) ast.Expr {
	if n == 0 {
		return e.zero()
	}
	ones := make([]ast.Expr, n)
	for i := range ones {
		ones[i] = e.one()
	}
	return joinBinOp(ast.Add, ones...)
}

// Int encodes an integer as arithmetic over the anchor. Values at or
// above the anchor length are decomposed greedily into powers of the
// anchor length (L*L*..., largest first) plus a small additive tail,
// keeping the tree size logarithmic rather than unary.
//
// The returned tree still uses ordinary BinOp/UnaryOp nodes; the
// operator pass downstream turns those into __add__/__mul__/
// __floordiv__/__sub__/__neg__ calls, the same cascade the rest of the
// rewrite relies on.
func (e *Encoder) Int(n int64) ast.Expr {
	return e.BigInt(big.NewInt(n))
}

// BigInt encodes an arbitrary-precision integer. Python integers are
// unbounded, so literals wider than int64 arrive here too. The argument
// is not modified.
func (e *Encoder) BigInt(n *big.Int) ast.Expr {
	if n.Sign() < 0 {
		return &ast.UnaryOp{Op: ast.USub, Operand: e.BigInt(new(big.Int).Neg(n))}
	}
	anchor := big.NewInt(e.anchorLen)
	if n.Cmp(anchor) < 0 {
		return e.smallInt(n.Int64())
	}

	var parts []ast.Expr
	remainder := new(big.Int).Set(n)
	power := new(big.Int)
	limit := new(big.Int)
	for remainder.Cmp(anchor) >= 0 {
		// Largest power anchorLen**k not exceeding the remainder.
		power.Set(anchor)
		k := 1
		limit.Quo(remainder, anchor)
		for power.Cmp(limit) <= 0 {
			power.Mul(power, anchor)
			k++
		}

		factors := make([]ast.Expr, k)
		for i := range factors {
			factors[i] = e.anchor()
		}
		parts = append(parts, joinBinOp(ast.Mult, factors...))
		remainder.Sub(remainder, power)
	}
	if remainder.Sign() > 0 {
		parts = append(parts, e.smallInt(remainder.Int64()))
	}

	return joinBinOp(ast.Add, parts...)
}

// numberPass rewrites every integer literal, however wide the parser
// boxed it. Booleans, floats and complex numbers are not handled here:
// bools are NameConstant nodes, floats are rewritten by the literal
// pass, and imaginary literals pass through.
func (e *Encoder) numberPass() exprRewrite {
	return func(expr ast.Expr) ast.Expr {
		num, ok := expr.(*ast.Num)
		if !ok {
			return expr
		}
		switch n := num.N.(type) {
		case py.Int:
			return e.Int(int64(n))
		case *py.BigInt:
			return e.BigInt((*big.Int)(n))
		default:
			return expr
		}
	}
}
