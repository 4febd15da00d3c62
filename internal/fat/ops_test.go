package fat_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fat16os/fat16os/internal/blockdev"
	"github.com/fat16os/fat16os/internal/fat"
)

// newTestVolume formats and mounts a small in-memory disk image, giving
// every test in this package a fresh, known-good volume to work against.
func newTestVolume(t *testing.T) *fat.Volume {
	t.Helper()

	// 10000 sectors keeps the cluster count comfortably inside the FAT16
	// range (geometry.go rejects anything below 4085 clusters as FAT12).
	const totalSectors = 10000
	storage := make([]byte, totalSectors*blockdev.SectorSize)
	dev := blockdev.NewMemATASim(storage)

	opts := fat.FormatOptions{SectorsPerCluster: 1, RootEntries: 16}
	require.NoError(t, fat.Format(dev, totalSectors, opts))

	vol, err := fat.Mount(dev)
	require.NoError(t, err)
	return vol
}

func TestLsEmptyVolume(t *testing.T) {
	vol := newTestVolume(t)

	entries, err := vol.Ls()
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestTouchThenLs(t *testing.T) {
	vol := newTestVolume(t)

	require.NoError(t, vol.Touch("HELLO.TXT"))

	entries, err := vol.Ls()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "HELLO.TXT", entries[0].Name)
	require.False(t, entries[0].IsDir)
	require.Zero(t, entries[0].Size)
}

func TestWriteThenCatRoundTrip(t *testing.T) {
	vol := newTestVolume(t)

	payload := []byte("the quick brown fox jumps over the lazy dog")
	require.NoError(t, vol.Write("FOX.TXT", payload))

	var buf bytes.Buffer
	require.NoError(t, vol.Cat("FOX.TXT", &buf))
	require.Equal(t, payload, buf.Bytes())
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	vol := newTestVolume(t)

	payload := bytes.Repeat([]byte{0x5A}, 3000) // spans multiple clusters
	require.NoError(t, vol.Write("BLOB.BIN", payload))

	got, err := vol.Read("BLOB.BIN", uint32(len(payload)))
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestReadFailsClosedWhenBufferTooSmall(t *testing.T) {
	vol := newTestVolume(t)
	require.NoError(t, vol.Write("BIG.TXT", bytes.Repeat([]byte{'x'}, 100)))

	_, err := vol.Read("BIG.TXT", 10)
	require.Error(t, err)
}

func TestWriteOverwritesExistingContent(t *testing.T) {
	vol := newTestVolume(t)

	require.NoError(t, vol.Write("NOTE.TXT", bytes.Repeat([]byte{'a'}, 2000)))
	require.NoError(t, vol.Write("NOTE.TXT", []byte("short")))

	var buf bytes.Buffer
	require.NoError(t, vol.Cat("NOTE.TXT", &buf))
	require.Equal(t, []byte("short"), buf.Bytes())
}

func TestMkdirCdPwd(t *testing.T) {
	vol := newTestVolume(t)

	require.NoError(t, vol.Mkdir("SUBDIR"))
	require.Equal(t, "/", vol.Pwd())

	require.NoError(t, vol.Cd("SUBDIR"))
	require.Equal(t, "/SUBDIR", vol.Pwd())

	require.NoError(t, vol.Touch("INNER.TXT"))
	entries, err := vol.Ls()
	require.NoError(t, err)
	// A subdirectory's own "." and ".." entries are live directory slots
	// like any other, so Ls surfaces them alongside INNER.TXT.
	require.Len(t, entries, 3)
	names := []string{entries[0].Name, entries[1].Name, entries[2].Name}
	require.Contains(t, names, "INNER.TXT")
	require.Contains(t, names, ".")
	require.Contains(t, names, "..")

	require.NoError(t, vol.Cd(".."))
	require.Equal(t, "/", vol.Pwd())
}

func TestCdRejectsFile(t *testing.T) {
	vol := newTestVolume(t)
	require.NoError(t, vol.Touch("PLAIN.TXT"))
	require.Error(t, vol.Cd("PLAIN.TXT"))
}

func TestRmRemovesEntry(t *testing.T) {
	vol := newTestVolume(t)
	require.NoError(t, vol.Touch("GONE.TXT"))
	require.NoError(t, vol.Rm("GONE.TXT"))

	entries, err := vol.Ls()
	require.NoError(t, err)
	require.Empty(t, entries)

	_, err = vol.Read("GONE.TXT", 512)
	require.Error(t, err)
}

func TestRmdirRejectsNonEmptyDir(t *testing.T) {
	vol := newTestVolume(t)
	require.NoError(t, vol.Mkdir("FULL"))
	require.NoError(t, vol.Cd("FULL"))
	require.NoError(t, vol.Touch("FILE.TXT"))
	require.NoError(t, vol.Cd(".."))

	require.Error(t, vol.Rmdir("FULL"))
}

func TestRmdirRemovesEmptyDir(t *testing.T) {
	vol := newTestVolume(t)
	require.NoError(t, vol.Mkdir("EMPTY"))
	require.NoError(t, vol.Rmdir("EMPTY"))

	entries, err := vol.Ls()
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestDfAccountsForWrittenData(t *testing.T) {
	// newTestVolume's 1-sector clusters are 512 bytes, and Df truncates
	// cluster_size_kb to 0 for any cluster under 1 KB (ops.go, matching
	// original_source/fs/fat.c:fat_df), which would make every KB field
	// in this test 0 regardless of usage. Use 2 sectors/cluster here so
	// clusters are a full 1 KB and Df's KB totals actually move; 10000
	// sectors still yields ~4959 clusters, safely inside [4085, 65525).
	const totalSectors = 10000
	storage := make([]byte, totalSectors*blockdev.SectorSize)
	dev := blockdev.NewMemATASim(storage)

	opts := fat.FormatOptions{SectorsPerCluster: 2, RootEntries: 16}
	require.NoError(t, fat.Format(dev, totalSectors, opts))

	vol, err := fat.Mount(dev)
	require.NoError(t, err)

	before, err := vol.Df()
	require.NoError(t, err)

	require.NoError(t, vol.Write("SPACE.BIN", bytes.Repeat([]byte{0}, 5000)))

	after, err := vol.Df()
	require.NoError(t, err)
	require.Less(t, after.FreeKB, before.FreeKB)
	require.Greater(t, after.UsedKB, before.UsedKB)
}

func TestDirectoryGrowsPastOneCluster(t *testing.T) {
	vol := newTestVolume(t)
	require.NoError(t, vol.Mkdir("BIG"))
	require.NoError(t, vol.Cd("BIG"))

	// One 512-byte cluster holds 16 directory entries; push well past that
	// to force the chained-directory growth path in findFreeSlot.
	for i := 0; i < 40; i++ {
		name := fileNameForIndex(i)
		require.NoError(t, vol.Touch(name))
	}

	entries, err := vol.Ls()
	require.NoError(t, err)
	// Plus the directory's own "." and ".." entries.
	require.Len(t, entries, 42)
}

func fileNameForIndex(i int) string {
	digits := [3]byte{'0' + byte(i/100), '0' + byte((i/10)%10), '0' + byte(i%10)}
	return "F" + string(digits[:]) + ".TXT"
}
