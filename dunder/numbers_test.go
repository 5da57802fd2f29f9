// Copyright 2023 The Dunderhell Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dunder

import (
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoderInt(t *testing.T) {
	values := []int64{
		0, 1, 2, 3, 7, 8, 9, 15, 16, 63, 64, 65, 100, 255, 511, 512,
		4095, 4096, 123456,
		-1, -5, -8, -100, -4096,
	}
	for _, anchorLen := range []int{3, 8} {
		enc := NewEncoder(anchorLen)
		for _, n := range values {
			t.Run(fmt.Sprintf("L%d/%d", anchorLen, n), func(t *testing.T) {
				got := evalInt(t, enc.Int(n), int64(anchorLen))
				assert.Equal(t, n, got)
			})
		}
	}
}

func TestEncoderBigInt(t *testing.T) {
	enc := NewEncoder(DefaultAnchorLen)

	for _, s := range []string{
		"12345678901234567890123",
		"-98765432109876543210987654321",
		"18446744073709551616", // 2**64
	} {
		n, ok := new(big.Int).SetString(s, 10)
		require.True(t, ok)
		got := evalBig(t, enc.BigInt(n), int64(DefaultAnchorLen))
		assert.Zero(t, n.Cmp(got), "BigInt(%s) evaluated to %s", s, got)
	}
}

func TestEncoderIntMinInt64(t *testing.T) {
	// Negating math.MinInt64 overflows in int64 arithmetic; the encoder
	// works in big words, so the extreme value round-trips too.
	enc := NewEncoder(DefaultAnchorLen)
	got := evalBig(t, enc.Int(math.MinInt64), int64(DefaultAnchorLen))
	assert.Zero(t, big.NewInt(math.MinInt64).Cmp(got))
}

func TestEncoderIntDeterministic(t *testing.T) {
	enc := NewEncoder(DefaultAnchorLen)
	for _, n := range []int64{0, 7, 100, -42, 4096} {
		first := exprSource(t, enc.Int(n))
		second := exprSource(t, enc.Int(n))
		require.Equal(t, first, second, "encoding %d twice differed", n)
	}
}

func TestEncoderIntShape(t *testing.T) {
	enc := NewEncoder(DefaultAnchorLen)

	// Zero is L - L, one is L // L.
	assert.Equal(t, "__name__.__len__() - __name__.__len__()\n", exprSource(t, enc.Int(0)))
	assert.Equal(t, "__name__.__len__() // __name__.__len__()\n", exprSource(t, enc.Int(1)))

	// The anchor length itself is a single multiplication-free term.
	assert.Equal(t, "__name__.__len__()\n", exprSource(t, enc.Int(int64(DefaultAnchorLen))))

	// L*L for the square keeps the size logarithmic.
	assert.Equal(t, "__name__.__len__() * __name__.__len__()\n",
		exprSource(t, enc.Int(int64(DefaultAnchorLen*DefaultAnchorLen))))

	// Negative values wrap the positive encoding in unary minus.
	assert.Equal(t, "-(__name__.__len__() // __name__.__len__())\n", exprSource(t, enc.Int(-1)))
}

func TestNewEncoderRejectsTinyAnchor(t *testing.T) {
	assert.Panics(t, func() { NewEncoder(1) })
	assert.Panics(t, func() { NewEncoder(0) })
	assert.NotPanics(t, func() { NewEncoder(2) })
}
