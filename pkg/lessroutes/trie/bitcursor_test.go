package trie

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitCursorOrdering(t *testing.T) {
	// 0b10110000, 0b00000001 -> bits: 1,0,1,1,0,0,0,0, 0,...,0,1
	addr := []byte{0b1011_0000, 0b0000_0001}

	c := NewBitCursor(addr, 16)
	require.Equal(t, 16, c.Remaining())

	got := c.Bits()
	want := []bool{
		true, false, true, true, false, false, false, false,
		false, false, false, false, false, false, false, true,
	}
	require.Equal(t, want, got)
	require.Equal(t, 0, c.Remaining())
}

func TestBitCursorTruncatesAtN(t *testing.T) {
	addr := []byte{0xFF, 0xFF}
	c := NewBitCursor(addr, 3)

	got := c.Bits()
	require.Equal(t, []bool{true, true, true}, got)

	_, ok := c.Next()
	require.False(t, ok)
}

func TestBitCursorZeroLength(t *testing.T) {
	c := NewBitCursor([]byte{0xFF}, 0)
	_, ok := c.Next()
	require.False(t, ok)
	require.Equal(t, []bool{}, c.Bits())
}
