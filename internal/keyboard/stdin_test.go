package keyboard_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fat16os/fat16os/internal/keyboard"
)

func TestStdinReadsPlainBytes(t *testing.T) {
	s := keyboard.NewStdin(strings.NewReader("hi"))

	require.True(t, s.HasData())
	require.Equal(t, int('h'), s.ReadKey())
	require.Equal(t, int('i'), s.ReadKey())
	require.False(t, s.HasData())
}

func TestStdinTranslatesArrowEscapes(t *testing.T) {
	s := keyboard.NewStdin(strings.NewReader("\x1b[A\x1b[B\x1b[C\x1b[D"))

	require.Equal(t, keyboard.KeyUp, s.ReadKey())
	require.Equal(t, keyboard.KeyDown, s.ReadKey())
	require.Equal(t, keyboard.KeyRight, s.ReadKey())
	require.Equal(t, keyboard.KeyLeft, s.ReadKey())
}

func TestStdinUnknownEscapeReturnsKeyNone(t *testing.T) {
	s := keyboard.NewStdin(strings.NewReader("\x1b[Z"))
	require.Equal(t, keyboard.KeyNone, s.ReadKey())
}

func TestFakeKeyboardDrainsQueueInOrder(t *testing.T) {
	f := keyboard.NewFake('a', 'b')
	require.True(t, f.HasData())
	require.Equal(t, int('a'), f.ReadKey())

	f.Push('c')
	require.Equal(t, int('b'), f.ReadKey())
	require.Equal(t, int('c'), f.ReadKey())
	require.False(t, f.HasData())
	require.Equal(t, keyboard.KeyNone, f.ReadKey())
}
