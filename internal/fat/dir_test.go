package fat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fat16os/fat16os/internal/blockdev"
)

func TestFindFreeSlotReportsRootDirFull(t *testing.T) {
	vol := mountTestVolume(t)

	// RootEntries: 16 in the fixture gives exactly 16 root slots; fill
	// every one so the next Touch hits the fixed root's "Root directory
	// full" path rather than growing a chain (the root has none to grow).
	for i := 0; i < 16; i++ {
		name := string(rune('A'+i)) + ".TXT"
		require.NoError(t, vol.Touch(name))
	}

	err := vol.Touch("OVERFLOW.TXT")
	require.Error(t, err)
	require.ErrorIs(t, err, SentinelRootDirFull)
}

func TestRmdirLeavesDeletedMarkerAndFreesChain(t *testing.T) {
	vol := mountTestVolume(t)
	require.NoError(t, vol.Mkdir("EMPTY"))

	d, found, err := vol.findEntry(vol.currentDirCluster, "EMPTY")
	require.NoError(t, err)
	require.True(t, found)
	cluster := d.Cluster

	require.NoError(t, vol.Rmdir("EMPTY"))

	// The directory slot now reads as deleted (0xE5) rather than live.
	var sector [blockdev.SectorSize]byte
	require.NoError(t, vol.readSector(d.loc.lba, &sector))
	require.Equal(t, byte(0xE5), sector[d.loc.offset])

	// Its chain's FAT entry is back to free.
	next, err := vol.readFATEntry(cluster)
	require.NoError(t, err)
	require.Equal(t, clusterFree, next)

	// scanDir (and therefore Ls) no longer surfaces it.
	entries, err := vol.Ls()
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestMkdirGrowsChainedDirectoryPastOneCluster(t *testing.T) {
	vol := mountTestVolume(t)
	require.NoError(t, vol.Mkdir("PARENT"))
	require.NoError(t, vol.Cd("PARENT"))

	// One 512-byte cluster holds 16 slots; push past that so
	// findFreeSlot's chain-growth branch runs.
	for i := 0; i < 20; i++ {
		name := string(rune('A'+i%26)) + string(rune('0'+i/26)) + ".TXT"
		require.NoError(t, vol.Touch(name))
	}

	entries, err := vol.Ls()
	require.NoError(t, err)
	// Plus the directory's own "." and ".." entries.
	require.Len(t, entries, 22)
}
