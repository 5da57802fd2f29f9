// Copyright 2023 The Dunderhell Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dunder

import (
	"strings"

	"github.com/go-python/gpython/ast"
)

// The rename pass turns every variable defined in a scope into a
// dunder: `total` becomes `__total__`. A name counts as local when it
// is a parameter or is stored before being loaded or deleted, and is
// not declared global or nonlocal. Renaming is applied to the whole
// subtree of the scope, nested scopes included, so closures keep
// referring to the renamed variable.
//
// Scopes are processed innermost-first; by the time an outer scope
// renames `x` everywhere below it, an inner scope that had its own `x`
// has already turned it into `__x__`, which the outer rename skips.

// renameLocals runs the pass over a whole module.
func renameLocals(m *ast.Module) {
	renameNestedScopes(m.Body)
	renameScope(m, m.Body, nil)
}

// renameNestedScopes finds def and class statements at any depth within
// the current scope's body and renames their scopes, innermost first.
func renameNestedScopes(body []ast.Stmt) {
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *ast.FunctionDef:
			renameNestedScopes(s.Body)
			renameScope(s, s.Body, paramNames(s.Args))
		case *ast.ClassDef:
			renameNestedScopes(s.Body)
			renameScope(s, s.Body, nil)
		case *ast.If:
			renameNestedScopes(s.Body)
			renameNestedScopes(s.Orelse)
		case *ast.While:
			renameNestedScopes(s.Body)
			renameNestedScopes(s.Orelse)
		case *ast.For:
			renameNestedScopes(s.Body)
			renameNestedScopes(s.Orelse)
		case *ast.With:
			renameNestedScopes(s.Body)
		case *ast.Try:
			renameNestedScopes(s.Body)
			for _, h := range s.Handlers {
				renameNestedScopes(h.Body)
			}
			renameNestedScopes(s.Orelse)
			renameNestedScopes(s.Finalbody)
		}
	}
}

// renameScope gathers the locals of one scope and renames them
// throughout the subtree rooted at that scope's node.
func renameScope(root ast.Ast, body []ast.Stmt, params []ast.Identifier) {
	g := newGatherer(body)
	for _, p := range params {
		g.locals[string(p)] = true
	}
	for _, stmt := range body {
		g.stmt(stmt)
	}

	rename := map[string]bool{}
	for name := range g.locals {
		if !isDunder(name) && !reservedDunders[name] {
			rename[name] = true
		}
	}
	if len(rename) == 0 {
		return
	}

	ast.Walk(root, func(node ast.Ast) bool {
		switch v := node.(type) {
		case *ast.Name:
			if rename[string(v.Id)] {
				v.Id = dunderize(v.Id)
			}
		case *ast.Arg:
			if rename[string(v.Arg)] {
				v.Arg = dunderize(v.Arg)
			}
		// global and nonlocal declarations in nested scopes must follow
		// the rename, or the declaration detaches from the variable and
		// the nested store silently becomes a local.
		case *ast.Global:
			renameIdentifiers(v.Names, rename)
		case *ast.Nonlocal:
			renameIdentifiers(v.Names, rename)
		}
		return true
	})
}

// reservedDunders lists plain names whose dundered form is one the
// rewritten program itself depends on. Renaming a local `name` to
// `__name__` would shadow the length anchor inside that scope.
var reservedDunders = map[string]bool{
	"name":     true,
	"builtins": true,
	"chr":      true,
}

func renameIdentifiers(ids []ast.Identifier, rename map[string]bool) {
	for i, id := range ids {
		if rename[string(id)] {
			ids[i] = dunderize(id)
		}
	}
}

func isDunder(name string) bool {
	return strings.HasPrefix(name, "__") || strings.HasSuffix(name, "__")
}

func dunderize(id ast.Identifier) ast.Identifier {
	return "__" + id + "__"
}

func paramNames(args *ast.Arguments) []ast.Identifier {
	if args == nil {
		return nil
	}
	var names []ast.Identifier
	for _, arg := range args.Args {
		names = append(names, arg.Arg)
	}
	if args.Vararg != nil {
		names = append(names, args.Vararg.Arg)
	}
	for _, arg := range args.Kwonlyargs {
		names = append(names, arg.Arg)
	}
	if args.Kwarg != nil {
		names = append(names, args.Kwarg.Arg)
	}
	return names
}

// A gatherer collects the local names of a single scope. It never
// descends into nested def or class statements: those are their own
// scopes. Lambdas are not treated as boundaries; their loads only make
// the gatherer more conservative.
type gatherer struct {
	locals   map[string]bool
	loaded   map[string]bool // loaded or deleted before any store
	declared map[string]bool // global or nonlocal anywhere in the scope
}

func newGatherer(body []ast.Stmt) *gatherer {
	g := &gatherer{
		locals:   map[string]bool{},
		loaded:   map[string]bool{},
		declared: map[string]bool{},
	}
	// global/nonlocal apply to the entire scope regardless of where the
	// declaration sits, so collect them before the in-order scan.
	g.declarations(body)
	return g
}

func (g *gatherer) declarations(body []ast.Stmt) {
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *ast.Global:
			for _, name := range s.Names {
				g.declared[string(name)] = true
			}
		case *ast.Nonlocal:
			for _, name := range s.Names {
				g.declared[string(name)] = true
			}
		case *ast.If:
			g.declarations(s.Body)
			g.declarations(s.Orelse)
		case *ast.While:
			g.declarations(s.Body)
			g.declarations(s.Orelse)
		case *ast.For:
			g.declarations(s.Body)
			g.declarations(s.Orelse)
		case *ast.With:
			g.declarations(s.Body)
		case *ast.Try:
			g.declarations(s.Body)
			for _, h := range s.Handlers {
				g.declarations(h.Body)
			}
			g.declarations(s.Orelse)
			g.declarations(s.Finalbody)
		}
	}
}

func (g *gatherer) stmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.FunctionDef, *ast.ClassDef:
		// Separate scope; handled by its own renameScope.

	case *ast.If:
		g.exprs(s.Test)
		g.body(s.Body)
		g.body(s.Orelse)
	case *ast.While:
		g.exprs(s.Test)
		g.body(s.Body)
		g.body(s.Orelse)
	case *ast.For:
		g.exprs(s.Iter)
		g.exprs(s.Target)
		g.body(s.Body)
		g.body(s.Orelse)
	case *ast.With:
		for _, item := range s.Items {
			g.exprs(item.ContextExpr)
			g.exprs(item.OptionalVars)
		}
		g.body(s.Body)
	case *ast.Try:
		g.body(s.Body)
		for _, h := range s.Handlers {
			g.exprs(h.ExprType)
			g.body(h.Body)
		}
		g.body(s.Orelse)
		g.body(s.Finalbody)

	case *ast.Assign:
		// Value evaluates before the targets bind.
		g.exprs(s.Value)
		for _, t := range s.Targets {
			g.exprs(t)
		}
	case *ast.AugAssign:
		g.exprs(s.Value)
		g.exprs(s.Target)

	default:
		// Simple statements: scan every reachable name. A nested scope
		// statement can't hide in here.
		ast.Walk(stmt, g.visit)
	}
}

func (g *gatherer) body(body []ast.Stmt) {
	for _, stmt := range body {
		g.stmt(stmt)
	}
}

func (g *gatherer) exprs(e ast.Expr) {
	if e == nil {
		return
	}
	ast.Walk(e, g.visit)
}

func (g *gatherer) visit(node ast.Ast) bool {
	name, ok := node.(*ast.Name)
	if !ok {
		return true
	}
	id := string(name.Id)
	switch name.Ctx {
	case ast.Store, ast.AugStore:
		if !g.loaded[id] && !g.declared[id] {
			g.locals[id] = true
		}
	case ast.Load, ast.Del, ast.AugLoad:
		if !g.locals[id] {
			g.loaded[id] = true
		}
	}
	return true
}
