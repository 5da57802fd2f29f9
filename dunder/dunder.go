// Copyright 2023 The Dunderhell Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dunder rewrites Python source so that every literal,
// operator, and resolvable built-in name is expressed through
// double-underscore attribute access alone.
//
// The encoding bootstraps from a single anchor: the rewritten program's
// own module name. Its length (8, for "__main__") seeds every number as
// arithmetic over __name__.__len__(); characters come from a __chr__
// alias resolved out of __builtins__ at run time; strings are chains of
// added characters. The rewrite keeps the statement structure of the
// input untouched, so the output program behaves exactly like the
// original.
package dunder

import (
	"strings"

	"github.com/go-python/gpython/ast"
	"github.com/go-python/gpython/parser"
)

// A Translator holds the encoder for one anchor length. Translators are
// stateless across calls: each Translate builds a fresh tree from its
// input and nothing else.
type Translator struct {
	enc *Encoder
}

// New returns a Translator for programs that run as __main__.
func New() *Translator {
	return NewWithAnchor(DefaultAnchorLen)
}

// NewWithAnchor returns a Translator whose numeric encoding assumes the
// rewritten program sees a module name of the given length. Only tests
// have a reason to pick anything but the default.
func NewWithAnchor(anchorLen int) *Translator {
	return &Translator{enc: NewEncoder(anchorLen)}
}

// Translate parses Python source, dunderifies it, and renders it back.
// On any failure the input is reported unusable and no output text is
// returned: there are no partial results.
func (t *Translator) Translate(src string) (string, error) {
	tree, err := parser.Parse(strings.NewReader(src), "<input>", "exec")
	if err != nil {
		return "", &ParseError{Err: err}
	}
	module, ok := tree.(*ast.Module)
	if !ok {
		return "", newUnsupportedError(tree)
	}
	if err := t.Dunderify(module); err != nil {
		return "", err
	}
	return Unparse(module)
}

// Dunderify rewrites a parsed module in place. Pass order is
// load-bearing:
//
//  1. builtins: bare built-in names become __builtins__ lookups whose
//     argument is a plain string, ready for the string pass;
//  2. floats and bytes: rebuilt through resolved constructors, leaving
//     behind a string (float repr) and integers (byte values);
//  3. strings: every remaining string literal becomes __chr__
//     arithmetic, and the __chr__ preamble is prepended if needed;
//     its subscripts are still plain integers at this point;
//  4. numbers: every integer literal, incoming or produced by the
//     passes above, becomes anchor arithmetic;
//  5. operators: BinOp/UnaryOp/Compare collapse into dunder calls,
//     sweeping up the +, * and // trees the encoders emitted;
//  6. locals: variables defined in each scope are renamed to dunders.
func (t *Translator) Dunderify(module *ast.Module) error {
	transformBody(module.Body, t.enc.builtinsPass(boundNames(module)))

	lits := &literalPass{enc: t.enc}
	transformBody(module.Body, lits.rewriteFloatsAndBytes)
	transformBody(module.Body, lits.rewriteStrings)
	if lits.err != nil {
		return lits.err
	}
	if lits.found {
		preamble, err := chrPreamble()
		if err != nil {
			return err
		}
		module.Body = append([]ast.Stmt{preamble}, module.Body...)
	}

	transformBody(module.Body, t.enc.numberPass())
	transformBody(module.Body, opsPass())
	renameLocals(module)
	return nil
}

// Translate rewrites src with the default anchor ("__main__").
func Translate(src string) (string, error) {
	return New().Translate(src)
}
