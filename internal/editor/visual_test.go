package editor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVisualOfWrapsAtWidth(t *testing.T) {
	data := []byte("abcdefghij") // width 4: rows "abcd","efgh","ij"
	row, col := visualOf(data, 9, 4)
	require.Equal(t, 2, row)
	require.Equal(t, 1, col)
}

func TestVisualOfStopsAtNewline(t *testing.T) {
	data := []byte("ab\ncd")
	row, col := visualOf(data, 4, 80)
	require.Equal(t, 1, row)
	require.Equal(t, 1, col)
}

func TestIndexOfNewlineTieBreak(t *testing.T) {
	data := []byte("abc\ndef")
	// Row 0 ends at the newline itself, not one past it.
	idx := indexOf(data, 0, 3, 80)
	require.Equal(t, 3, idx)
}

func TestIndexOfForcedWrapTieBreak(t *testing.T) {
	data := []byte("abcdefgh") // width 4: wraps after "abcd"
	idx := indexOf(data, 1, 0, 4)
	require.Equal(t, 4, idx)
}

func TestIndexOfUnreachableRowClampsToLength(t *testing.T) {
	data := []byte("short")
	idx := indexOf(data, 99, 0, 80)
	require.Equal(t, len(data), idx)
}

func TestVisualIndexRoundTrip(t *testing.T) {
	data := []byte("the quick brown fox\njumps over\nthe lazy dog")
	width := 10

	for i := 0; i <= len(data); i++ {
		row, col := visualOf(data, i, width)
		back := indexOf(data, row, col, width)
		require.Equal(t, i, back, "round trip mismatch at index %d (row=%d col=%d)", i, row, col)
	}
}
