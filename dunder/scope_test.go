// Copyright 2023 The Dunderhell Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dunder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRename(t *testing.T, src string) string {
	t.Helper()
	m := parseModule(t, src)
	renameLocals(m)
	out, err := Unparse(m)
	require.NoError(t, err)
	return out
}

func TestRenameModuleLocals(t *testing.T) {
	assert.Equal(t,
		"__x__ = 1\nprint(__x__)\n",
		runRename(t, "x = 1\nprint(x)\n"))
}

func TestRenameFunctionScope(t *testing.T) {
	assert.Equal(t,
		"def f(__a__, __b__=2):\n    __total__ = __a__ + __b__\n    return __total__\n",
		runRename(t, "def f(a, b=2):\n    total = a + b\n    return total\n"))
}

func TestRenameLoadedBeforeStored(t *testing.T) {
	// x is read before being assigned, so it is not treated as a local
	// of f. y is a plain local.
	assert.Equal(t,
		"def f():\n    __y__ = x\n    x = 1\n    return __y__\n",
		runRename(t, "def f():\n    y = x\n    x = 1\n    return y\n"))
}

func TestRenameHonorsGlobal(t *testing.T) {
	assert.Equal(t,
		"def f():\n    global counter\n    counter = 1\n",
		runRename(t, "def f():\n    global counter\n    counter = 1\n"))
}

func TestRenameSkipsReservedNames(t *testing.T) {
	// Renaming `name` would produce `__name__` and shadow the length
	// anchor, so it stays put.
	assert.Equal(t,
		"name = 1\nprint(name)\n",
		runRename(t, "name = 1\nprint(name)\n"))
}

func TestRenameGlobalDeclarationFollows(t *testing.T) {
	// A nested `global x` must track the module-level rename of x, or
	// the nested store would quietly become a function local.
	assert.Equal(t,
		"__x__ = 1\n\ndef f():\n    global __x__\n    __x__ = 2\nf()\nprint(__x__)\n",
		runRename(t, "x = 1\n\ndef f():\n    global x\n    x = 2\nf()\nprint(x)\n"))
}

func TestRenameNonlocalDeclarationFollows(t *testing.T) {
	assert.Equal(t,
		"def outer():\n    __v__ = 1\n\n    def bump():\n        nonlocal __v__\n        __v__ = __v__ + 1\n    bump()\n    return __v__\n",
		runRename(t, "def outer():\n    v = 1\n\n    def bump():\n        nonlocal v\n        v = v + 1\n    bump()\n    return v\n"))
}

func TestRenameClosure(t *testing.T) {
	// The outer rename reaches into the closure so inner loads keep
	// pointing at the same variable.
	assert.Equal(t,
		"def outer():\n    __v__ = 1\n\n    def inner():\n        return __v__\n    return inner\n",
		runRename(t, "def outer():\n    v = 1\n\n    def inner():\n        return v\n    return inner\n"))
}

func TestRenameClassScope(t *testing.T) {
	assert.Equal(t,
		"class C:\n    __attr__ = 1\n",
		runRename(t, "class C:\n    attr = 1\n"))
}

func TestRenameSkipsExistingDunders(t *testing.T) {
	assert.Equal(t,
		"__x__ = 1\nprint(__x__)\n",
		runRename(t, "__x__ = 1\nprint(__x__)\n"))
}

func TestRenameForTarget(t *testing.T) {
	assert.Equal(t,
		"for __i__ in r:\n    __x__ = __i__\n",
		runRename(t, "for i in r:\n    x = i\n"))
}

func TestRenameShadowedParam(t *testing.T) {
	// Inner scopes rename first; the outer rename then skips names that
	// are already dunders.
	assert.Equal(t,
		"def f(__x__):\n    def g(__x__):\n        return __x__\n    return g(__x__)\n",
		runRename(t, "def f(x):\n    def g(x):\n        return x\n    return g(x)\n"))
}
