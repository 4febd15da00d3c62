package fat_test

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// make83/formatName are unexported, so these round-trip through the public
// surface that exercises them: Touch + Ls. See ops_test.go for the volume
// fixture helpers shared across this package's tests.

func TestNameRoundTrip(t *testing.T) {
	cases := []string{
		"README",
		"README.TXT",
		"A",
		"A.B",
		"NOTES.C",
		"X.Y",
	}

	for _, name := range cases {
		vol := newTestVolume(t)
		require.NoError(t, vol.Touch(name))

		entries, err := vol.Ls()
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, name, entries[0].Name)
	}
}

func TestNameRejectsOverlongBase(t *testing.T) {
	vol := newTestVolume(t)
	err := vol.Touch("TOOLONGNAME.TXT")
	require.Error(t, err)
}

func TestNameRejectsOverlongExtension(t *testing.T) {
	vol := newTestVolume(t)
	err := vol.Touch("FILE.TOOLONG")
	require.Error(t, err)
}

func TestNameLowercaseIsFolded(t *testing.T) {
	vol := newTestVolume(t)
	require.NoError(t, vol.Touch("lower.txt"))

	entries, err := vol.Ls()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "LOWER.TXT", entries[0].Name)
}
