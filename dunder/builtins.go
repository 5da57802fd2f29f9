// Copyright 2023 The Dunderhell Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dunder

import (
	"github.com/go-python/gpython/ast"
)

// BuiltinLookup returns an expression that fetches a built-in by name
// at run time of the rewritten program:
//
//	__builtins__.__getattribute__('print')
//
// The name is emitted as a plain string literal here; the string pass
// runs afterwards and turns it into __chr__ arithmetic. Resolution is
// late-bound, so the lookup works no matter what the rewrite shadowed,
// as long as the builtins module itself is intact.
func (e *Encoder) BuiltinLookup(name string) ast.Expr {
	return methodCall(loadName("__builtins__"), "__getattribute__", strNode(name))
}

// builtinNames are the bare names the resolver pass is willing to
// rewrite. Dunder-shaped builtins (like __import__) are excluded: they
// already satisfy the output alphabet.
var builtinNames = map[string]bool{}

func init() {
	for _, name := range []string{
		"abs", "aiter", "all", "anext", "any", "ascii", "bin", "bool",
		"breakpoint", "bytearray", "bytes", "callable", "chr",
		"classmethod", "compile", "complex", "delattr", "dict", "dir",
		"divmod", "enumerate", "eval", "exec", "filter", "float",
		"format", "frozenset", "getattr", "globals", "hasattr", "hash",
		"help", "hex", "id", "input", "int", "isinstance", "issubclass",
		"iter", "len", "list", "locals", "map", "max", "memoryview",
		"min", "next", "object", "oct", "open", "ord", "pow", "print",
		"property", "range", "repr", "reversed", "round", "set",
		"setattr", "slice", "sorted", "staticmethod", "str", "sum",
		"super", "tuple", "type", "vars", "zip",

		"ArithmeticError", "AssertionError", "AttributeError",
		"BaseException", "Exception", "IndexError", "KeyError",
		"KeyboardInterrupt", "LookupError", "NameError",
		"NotImplementedError", "OSError", "OverflowError",
		"RecursionError", "RuntimeError", "StopIteration", "TypeError",
		"ValueError", "ZeroDivisionError",
	} {
		builtinNames[name] = true
	}
}

// boundNames scans the whole file for names that are bound anywhere:
// assignment and deletion targets, parameters, def/class names, import
// aliases, loop and with targets, except clause names, and anything
// declared global or nonlocal. The resolver refuses to touch a name on
// this list: if `print` is assigned somewhere, every `print` in the
// file keeps referring to whatever the program made it mean.
//
// The scan is deliberately file-wide rather than per-scope: the only
// cost of over-collecting is leaving a name unresolved, which changes
// nothing about the program.
func boundNames(tree *ast.Module) map[string]bool {
	bound := map[string]bool{}
	add := func(id ast.Identifier) {
		if id != "" {
			bound[string(id)] = true
		}
	}

	ast.Walk(tree, func(node ast.Ast) bool {
		switch v := node.(type) {
		case *ast.Name:
			if v.Ctx != ast.Load {
				add(v.Id)
			}
		case *ast.Arg:
			add(v.Arg)
		case *ast.FunctionDef:
			add(v.Name)
		case *ast.ClassDef:
			add(v.Name)
		case *ast.ExceptHandler:
			add(v.Name)
		case *ast.Alias:
			if v.AsName != "" {
				add(v.AsName)
			} else {
				add(v.Name)
			}
		case *ast.Global:
			for _, name := range v.Names {
				add(name)
			}
		case *ast.Nonlocal:
			for _, name := range v.Names {
				add(name)
			}
		}
		return true
	})
	return bound
}

// builtinsPass replaces bare references to unshadowed built-ins with
// late-bound lookups through __builtins__.
func (e *Encoder) builtinsPass(bound map[string]bool) exprRewrite {
	return func(expr ast.Expr) ast.Expr {
		name, ok := expr.(*ast.Name)
		if !ok || name.Ctx != ast.Load {
			return expr
		}
		id := string(name.Id)
		if !builtinNames[id] || bound[id] {
			return expr
		}
		return e.BuiltinLookup(id)
	}
}
