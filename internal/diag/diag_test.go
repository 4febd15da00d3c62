package diag_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fat16os/fat16os/internal/blockdev"
	"github.com/fat16os/fat16os/internal/diag"
	"github.com/fat16os/fat16os/internal/fat"
)

// newTestVolume formats and mounts a disk image backed by storage, handing
// the caller both so a test can corrupt the on-disk layout directly.
func newTestVolume(t *testing.T) (*fat.Volume, []byte) {
	t.Helper()

	const totalSectors = 10000
	storage := make([]byte, totalSectors*blockdev.SectorSize)
	dev := blockdev.NewMemATASim(storage)

	opts := fat.FormatOptions{SectorsPerCluster: 1, RootEntries: 16}
	require.NoError(t, fat.Format(dev, totalSectors, opts))

	vol, err := fat.Mount(dev)
	require.NoError(t, err)
	return vol, storage
}

func TestCheckCleanVolumeReportsNoCrossLinks(t *testing.T) {
	vol, _ := newTestVolume(t)
	require.NoError(t, vol.Write("A.TXT", []byte("first file")))
	require.NoError(t, vol.Write("B.TXT", []byte("second file")))

	report, err := diag.Check(vol)
	require.NoError(t, err)
	require.Empty(t, report.CrossLinked)

	// CountFATUsage scans the FAT's full addressable range (sectorsPerFAT *
	// entries-per-sector), the same bound Df uses, which runs a little past
	// the volume's real ClusterCount; cross-check against that bound rather
	// than ClusterCount itself.
	const sectorsPerFAT = 40
	const entriesPerSector = blockdev.SectorSize / 2
	wantTotal := uint32(sectorsPerFAT*entriesPerSector - 2)
	require.Equal(t, wantTotal, report.FreeClusters+report.UsedClusters)
}

// rootDirEntryClusterOffset computes the absolute byte offset of the
// cluster field of the i-th root directory slot, matching the fixed layout
// newTestVolume's FormatOptions produce (one reserved sector, two 40-sector
// FAT copies, a one-sector root directory).
func rootDirEntryClusterOffset(i int) int64 {
	const (
		reservedSectors = 1
		numFATs         = 2
		sectorsPerFAT   = 40
		direntSize      = 32
		clusterFieldOff = 26
	)
	rootDirLBA := int64(reservedSectors + numFATs*sectorsPerFAT)
	return rootDirLBA*blockdev.SectorSize + int64(i*direntSize) + clusterFieldOff
}

func TestCheckDetectsCrossLinkedCluster(t *testing.T) {
	vol, storage := newTestVolume(t)
	require.NoError(t, vol.Write("A.TXT", []byte("first file")))
	require.NoError(t, vol.Write("B.TXT", []byte("second file")))

	// A.TXT is the root directory's first live entry (cluster 2), B.TXT
	// the second (cluster 3). Point B.TXT at A.TXT's cluster to simulate a
	// cross-linked chain without going through the driver's own API.
	aClusterOff := rootDirEntryClusterOffset(0)
	bClusterOff := rootDirEntryClusterOffset(1)

	aCluster := binary.LittleEndian.Uint16(storage[aClusterOff : aClusterOff+2])
	binary.LittleEndian.PutUint16(storage[bClusterOff:bClusterOff+2], aCluster)

	report, err := diag.Check(vol)
	require.NoError(t, err)
	require.Len(t, report.CrossLinked, 1)
	require.Equal(t, "B.TXT", report.CrossLinked[0].Name)
	require.Equal(t, aCluster, report.CrossLinked[0].Cluster)
	require.Equal(t, "/A.TXT", report.CrossLinked[0].Original)
}
