// Copyright 2023 The Dunderhell Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dunder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runOpsPass(t *testing.T, src string) string {
	t.Helper()
	m := parseModule(t, src)
	transformBody(m.Body, opsPass())
	out, err := Unparse(m)
	require.NoError(t, err)
	return out
}

func TestOpsPassBinary(t *testing.T) {
	cases := []struct{ in, want string }{
		{"a + b\n", "a.__add__(b)\n"},
		{"a - b\n", "a.__sub__(b)\n"},
		{"a * b\n", "a.__mul__(b)\n"},
		{"a / b\n", "a.__truediv__(b)\n"},
		{"a // b\n", "a.__floordiv__(b)\n"},
		{"a % b\n", "a.__mod__(b)\n"},
		{"a ** b\n", "a.__pow__(b)\n"},
		{"a << b\n", "a.__lshift__(b)\n"},
		{"a >> b\n", "a.__rshift__(b)\n"},
		{"a | b\n", "a.__or__(b)\n"},
		{"a ^ b\n", "a.__xor__(b)\n"},
		{"a & b\n", "a.__and__(b)\n"},
		{"a + b * c\n", "a.__add__(b.__mul__(c))\n"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, runOpsPass(t, c.in), "input %q", c.in)
	}
}

func TestOpsPassUnary(t *testing.T) {
	cases := []struct{ in, want string }{
		{"-a\n", "a.__neg__()\n"},
		{"+a\n", "a.__pos__()\n"},
		{"~a\n", "a.__invert__()\n"},
		// `not` has no usable dunder and stays a keyword.
		{"not a\n", "not a\n"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, runOpsPass(t, c.in), "input %q", c.in)
	}
}

func TestOpsPassCompare(t *testing.T) {
	cases := []struct{ in, want string }{
		{"a == b\n", "a.__eq__(b)\n"},
		{"a != b\n", "a.__ne__(b)\n"},
		{"a < b\n", "a.__lt__(b)\n"},
		{"a <= b\n", "a.__le__(b)\n"},
		{"a > b\n", "a.__gt__(b)\n"},
		{"a >= b\n", "a.__ge__(b)\n"},

		// Membership runs through the container, with the operands
		// reversed to match `in` semantics.
		{"a in b\n", "b.__contains__(a)\n"},
		{"a not in b\n", "not b.__contains__(a)\n"},

		// Chains become a conjunction of pairwise comparisons.
		{"a < b < c\n", "a.__lt__(b) and b.__lt__(c)\n"},
		{"a < b in c\n", "a.__lt__(b) and c.__contains__(b)\n"},

		// Identity has no dunder; the whole comparison passes through.
		{"a is b\n", "a is b\n"},
		{"a is not b\n", "a is not b\n"},
		{"a is b < c\n", "a is b < c\n"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, runOpsPass(t, c.in), "input %q", c.in)
	}
}
