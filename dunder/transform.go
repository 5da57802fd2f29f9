// Copyright 2023 The Dunderhell Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dunder

import (
	"github.com/go-python/gpython/ast"
)

// An exprRewrite is applied to every expression in a tree, innermost
// first, and may return a replacement node. gpython's ast package only
// ships a read-only Walk, so the mutation plumbing lives here.
type exprRewrite func(ast.Expr) ast.Expr

// transformBody rewrites every expression reachable from the given
// statements, bottom-up. Statement structure is never altered: only
// expression slots are written, which is what keeps evaluation order
// and side effects of the input program intact.
func transformBody(body []ast.Stmt, fn exprRewrite) {
	for _, stmt := range body {
		transformStmt(stmt, fn)
	}
}

func transformStmt(stmt ast.Stmt, fn exprRewrite) {
	switch s := stmt.(type) {
	case *ast.FunctionDef:
		transformArguments(s.Args, fn)
		transformBody(s.Body, fn)
		transformExprs(s.DecoratorList, fn)
		s.Returns = transformExpr(s.Returns, fn)

	case *ast.ClassDef:
		transformExprs(s.Bases, fn)
		for _, kw := range s.Keywords {
			kw.Value = transformExpr(kw.Value, fn)
		}
		s.Starargs = transformExpr(s.Starargs, fn)
		s.Kwargs = transformExpr(s.Kwargs, fn)
		transformBody(s.Body, fn)
		transformExprs(s.DecoratorList, fn)

	case *ast.Return:
		s.Value = transformExpr(s.Value, fn)

	case *ast.Delete:
		transformExprs(s.Targets, fn)

	case *ast.Assign:
		transformExprs(s.Targets, fn)
		s.Value = transformExpr(s.Value, fn)

	case *ast.AugAssign:
		s.Target = transformExpr(s.Target, fn)
		s.Value = transformExpr(s.Value, fn)

	case *ast.For:
		s.Target = transformExpr(s.Target, fn)
		s.Iter = transformExpr(s.Iter, fn)
		transformBody(s.Body, fn)
		transformBody(s.Orelse, fn)

	case *ast.While:
		s.Test = transformExpr(s.Test, fn)
		transformBody(s.Body, fn)
		transformBody(s.Orelse, fn)

	case *ast.If:
		s.Test = transformExpr(s.Test, fn)
		transformBody(s.Body, fn)
		transformBody(s.Orelse, fn)

	case *ast.With:
		for _, item := range s.Items {
			item.ContextExpr = transformExpr(item.ContextExpr, fn)
			item.OptionalVars = transformExpr(item.OptionalVars, fn)
		}
		transformBody(s.Body, fn)

	case *ast.Raise:
		s.Exc = transformExpr(s.Exc, fn)
		s.Cause = transformExpr(s.Cause, fn)

	case *ast.Try:
		transformBody(s.Body, fn)
		for _, h := range s.Handlers {
			h.ExprType = transformExpr(h.ExprType, fn)
			transformBody(h.Body, fn)
		}
		transformBody(s.Orelse, fn)
		transformBody(s.Finalbody, fn)

	case *ast.Assert:
		s.Test = transformExpr(s.Test, fn)
		s.Msg = transformExpr(s.Msg, fn)

	case *ast.ExprStmt:
		s.Value = transformExpr(s.Value, fn)

		// Import, ImportFrom, Global, Nonlocal, Pass, Break, Continue
		// carry no expressions. Anything unknown passes through.
	}
}

func transformExprs(exprs []ast.Expr, fn exprRewrite) {
	for i, e := range exprs {
		exprs[i] = transformExpr(e, fn)
	}
}

// transformExpr rewrites the children of e, then e itself.
// A nil expression (an absent optional slot) stays nil.
func transformExpr(e ast.Expr, fn exprRewrite) ast.Expr {
	if e == nil {
		return nil
	}

	switch v := e.(type) {
	case *ast.BoolOp:
		transformExprs(v.Values, fn)

	case *ast.BinOp:
		v.Left = transformExpr(v.Left, fn)
		v.Right = transformExpr(v.Right, fn)

	case *ast.UnaryOp:
		v.Operand = transformExpr(v.Operand, fn)

	case *ast.Lambda:
		transformArguments(v.Args, fn)
		v.Body = transformExpr(v.Body, fn)

	case *ast.IfExp:
		v.Test = transformExpr(v.Test, fn)
		v.Body = transformExpr(v.Body, fn)
		v.Orelse = transformExpr(v.Orelse, fn)

	case *ast.Dict:
		transformExprs(v.Keys, fn)
		transformExprs(v.Values, fn)

	case *ast.Set:
		transformExprs(v.Elts, fn)

	case *ast.ListComp:
		v.Elt = transformExpr(v.Elt, fn)
		transformComprehensions(v.Generators, fn)

	case *ast.SetComp:
		v.Elt = transformExpr(v.Elt, fn)
		transformComprehensions(v.Generators, fn)

	case *ast.DictComp:
		v.Key = transformExpr(v.Key, fn)
		v.Value = transformExpr(v.Value, fn)
		transformComprehensions(v.Generators, fn)

	case *ast.GeneratorExp:
		v.Elt = transformExpr(v.Elt, fn)
		transformComprehensions(v.Generators, fn)

	case *ast.Yield:
		v.Value = transformExpr(v.Value, fn)

	case *ast.YieldFrom:
		v.Value = transformExpr(v.Value, fn)

	case *ast.Compare:
		v.Left = transformExpr(v.Left, fn)
		transformExprs(v.Comparators, fn)

	case *ast.Call:
		v.Func = transformExpr(v.Func, fn)
		transformExprs(v.Args, fn)
		for _, kw := range v.Keywords {
			kw.Value = transformExpr(kw.Value, fn)
		}
		v.Starargs = transformExpr(v.Starargs, fn)
		v.Kwargs = transformExpr(v.Kwargs, fn)

	case *ast.Attribute:
		v.Value = transformExpr(v.Value, fn)

	case *ast.Subscript:
		v.Value = transformExpr(v.Value, fn)
		transformSlicer(v.Slice, fn)

	case *ast.Starred:
		v.Value = transformExpr(v.Value, fn)

	case *ast.List:
		transformExprs(v.Elts, fn)

	case *ast.Tuple:
		transformExprs(v.Elts, fn)

		// Num, Str, Bytes, NameConstant, Ellipsis, Name are leaves.
	}

	return fn(e)
}

func transformSlicer(s ast.Slicer, fn exprRewrite) {
	switch v := s.(type) {
	case *ast.Slice:
		v.Lower = transformExpr(v.Lower, fn)
		v.Upper = transformExpr(v.Upper, fn)
		v.Step = transformExpr(v.Step, fn)

	case *ast.ExtSlice:
		for _, dim := range v.Dims {
			transformSlicer(dim, fn)
		}

	case *ast.Index:
		v.Value = transformExpr(v.Value, fn)
	}
}

func transformComprehensions(gens []ast.Comprehension, fn exprRewrite) {
	for i := range gens {
		gens[i].Target = transformExpr(gens[i].Target, fn)
		gens[i].Iter = transformExpr(gens[i].Iter, fn)
		transformExprs(gens[i].Ifs, fn)
	}
}

func transformArguments(args *ast.Arguments, fn exprRewrite) {
	if args == nil {
		return
	}
	for _, arg := range args.Args {
		arg.Annotation = transformExpr(arg.Annotation, fn)
	}
	if args.Vararg != nil {
		args.Vararg.Annotation = transformExpr(args.Vararg.Annotation, fn)
	}
	for _, arg := range args.Kwonlyargs {
		arg.Annotation = transformExpr(arg.Annotation, fn)
	}
	for i, d := range args.KwDefaults {
		args.KwDefaults[i] = transformExpr(d, fn)
	}
	if args.Kwarg != nil {
		args.Kwarg.Annotation = transformExpr(args.Kwarg.Annotation, fn)
	}
	for i, d := range args.Defaults {
		args.Defaults[i] = transformExpr(d, fn)
	}
}
