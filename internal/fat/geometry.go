package fat

import (
	"encoding/binary"

	"github.com/fat16os/fat16os/internal/blockdev"
)

// Geometry holds the constant-after-mount fields derived from the BPB, per
// §3 of the specification. Every field here is read-only once Mount
// returns.
type Geometry struct {
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	RootEntries       uint16
	SectorsPerFAT     uint16
	TotalSectors      uint32
	BaseLBA           blockdev.LBA // 0 for a raw volume, or the MBR partition's start LBA

	RootDirLBA     blockdev.LBA
	RootDirSectors uint32
	DataLBA        blockdev.LBA
	ClusterCount   uint32
}

// ClusterSize is the allocation unit size in bytes.
func (g *Geometry) ClusterSize() uint32 {
	return uint32(g.BytesPerSector) * uint32(g.SectorsPerCluster)
}

// ClusterToLBA converts a cluster number to the LBA (relative to BaseLBA)
// of its first sector, per §3: "Cluster k begins at LBA data_lba +
// (k-2)*sectors_per_cluster".
func (g *Geometry) ClusterToLBA(cluster ClusterID) blockdev.LBA {
	return g.DataLBA + blockdev.LBA((uint32(cluster)-2)*uint32(g.SectorsPerCluster))
}

// entriesPerFAT mirrors the original kernel's fat_find_free_cluster /
// fat_df scan bound: sectors_per_fat * (bytes_per_sector/2), i.e. the
// full addressable range of the FAT rather than cluster_count+2. Entries
// beyond cluster_count+2 are never pointed at by a chain, but the original
// scans them anyway, so this driver preserves that exactly.
func (g *Geometry) entriesPerFAT() uint32 {
	entriesPerSector := uint32(g.BytesPerSector) / 2
	return uint32(g.SectorsPerFAT) * entriesPerSector
}

func le16(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }
func le32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }

// bpbValid implements the validity check of §4.2.1: bytes/sector must be
// 512, sectors/cluster and sectors/FAT must be nonzero, there must be 1 or
// 2 FATs, and root_entries must be nonzero.
func bpbValid(sector []byte) bool {
	bytesPerSector := le16(sector[11:13])
	sectorsPerCluster := sector[13]
	numFATs := sector[16]
	rootEntries := le16(sector[17:19])
	sectorsPerFAT := le16(sector[22:24])

	if bytesPerSector != 512 || sectorsPerCluster == 0 || sectorsPerFAT == 0 {
		return false
	}
	if numFATs == 0 || numFATs > 2 || rootEntries == 0 {
		return false
	}
	return true
}

// geometryFromBPB decodes the BIOS Parameter Block fields the driver cares
// about and computes the derived layout from §3. baseLBA is the volume's
// own base offset (0, or an MBR partition's starting LBA).
func geometryFromBPB(sector []byte, baseLBA blockdev.LBA) (Geometry, *Error) {
	var g Geometry
	g.BaseLBA = baseLBA
	g.BytesPerSector = le16(sector[11:13])
	g.SectorsPerCluster = sector[13]
	g.ReservedSectors = le16(sector[14:16])
	g.NumFATs = sector[16]
	g.RootEntries = le16(sector[17:19])
	total16 := le16(sector[19:21])
	g.SectorsPerFAT = le16(sector[22:24])
	total32 := le32(sector[32:36])
	if total16 != 0 {
		g.TotalSectors = uint32(total16)
	} else {
		g.TotalSectors = total32
	}

	if g.BytesPerSector != 512 || g.SectorsPerFAT == 0 {
		return Geometry{}, newErr(ErrUnsupportedFormat)
	}

	g.RootDirSectors = (uint32(g.RootEntries)*32 + uint32(g.BytesPerSector) - 1) / uint32(g.BytesPerSector)
	g.RootDirLBA = blockdev.LBA(uint32(g.ReservedSectors) + uint32(g.NumFATs)*uint32(g.SectorsPerFAT))
	g.DataLBA = g.RootDirLBA + blockdev.LBA(g.RootDirSectors)

	dataSectors := g.TotalSectors - (uint32(g.ReservedSectors) + uint32(g.NumFATs)*uint32(g.SectorsPerFAT) + g.RootDirSectors)
	g.ClusterCount = dataSectors / uint32(g.SectorsPerCluster)

	if g.ClusterCount < 4085 {
		return Geometry{}, newErr(ErrFAT12Unsupported)
	}
	if g.ClusterCount >= 65525 {
		return Geometry{}, newErr(ErrFAT32Unsupported)
	}
	return g, nil
}

// mbrPartitionOffset scans the four 16-byte MBR partition table entries at
// offset 446 and returns the starting LBA of the first entry with a
// nonzero type, per §4.2.1 and §6.1.
func mbrPartitionOffset(sector []byte) (blockdev.LBA, bool) {
	for i := 0; i < 4; i++ {
		entry := 446 + i*16
		partType := sector[entry+4]
		if partType == 0 {
			continue
		}
		return blockdev.LBA(le32(sector[entry+8 : entry+12])), true
	}
	return 0, false
}
