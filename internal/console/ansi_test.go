package console_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fat16os/fat16os/internal/console"
)

func TestANSIClearEmitsResetSequence(t *testing.T) {
	var buf bytes.Buffer
	a := console.NewANSI(&buf, 80, 24)
	a.Clear()

	require.Equal(t, "\x1b[2J\x1b[H", buf.String())
	row, col := a.Cursor()
	require.Equal(t, 0, row)
	require.Equal(t, 0, col)
}

func TestANSIPutcAtPositionsCursorFirst(t *testing.T) {
	var buf bytes.Buffer
	a := console.NewANSI(&buf, 80, 24)
	a.PutcAt(3, 5, 'x')

	require.Equal(t, "\x1b[4;6Hx", buf.String())
}

func TestANSIWriteAdvancesAndWrapsColumn(t *testing.T) {
	var buf bytes.Buffer
	a := console.NewANSI(&buf, 3, 24)
	a.Write("abcd")

	row, col := a.Cursor()
	require.Equal(t, 1, row)
	require.Equal(t, 1, col)
}

func TestANSIWriteAtEmitsLiteralString(t *testing.T) {
	var buf bytes.Buffer
	a := console.NewANSI(&buf, 80, 24)
	a.WriteAt(2, 0, "status")

	require.True(t, strings.HasSuffix(buf.String(), "status"))
}

func TestGridWriteAtAndRow(t *testing.T) {
	g := console.NewGrid(10, 3)
	g.WriteAt(1, 2, "hi")

	require.Equal(t, "  hi      ", g.Row(1))
}

func TestGridClearResetsCells(t *testing.T) {
	g := console.NewGrid(4, 2)
	g.Write("abcd")
	g.Clear()

	require.Equal(t, "    ", g.Row(0))
	row, col := g.Cursor()
	require.Equal(t, 0, row)
	require.Equal(t, 0, col)
}
