package fat

import (
	"encoding/binary"

	"github.com/fat16os/fat16os/internal/blockdev"
	"github.com/hashicorp/go-multierror"
)

// fatEntryLocation computes which sector of a given FAT copy holds a
// cluster's 16-bit entry, and the byte offset within that sector, per
// §4.2.4.
func (v *Volume) fatEntryLocation(copyIdx uint8, cluster ClusterID) (blockdev.LBA, int) {
	fatOffset := uint32(cluster) * 2
	sectorIdx := fatOffset / uint32(v.geometry.BytesPerSector)
	byteOffset := fatOffset % uint32(v.geometry.BytesPerSector)
	lba := blockdev.LBA(uint32(v.geometry.ReservedSectors) + uint32(copyIdx)*uint32(v.geometry.SectorsPerFAT) + sectorIdx)
	return lba, int(byteOffset)
}

// readFATEntry reads a cluster's next-pointer from the first FAT copy.
// There is no sector cache (§3), so every call re-reads from the device.
func (v *Volume) readFATEntry(cluster ClusterID) (ClusterID, error) {
	lba, off := v.fatEntryLocation(0, cluster)
	var sector [blockdev.SectorSize]byte
	if err := v.readSector(lba, &sector); err != nil {
		return 0, err
	}
	return ClusterID(binary.LittleEndian.Uint16(sector[off : off+2])), nil
}

// writeFATEntry updates cluster's entry in every FAT copy identically, per
// the specification's Testable Property 1. Each copy is an independent
// read-modify-write since sectors are never cached.
func (v *Volume) writeFATEntry(cluster ClusterID, value ClusterID) error {
	for copyIdx := uint8(0); copyIdx < v.geometry.NumFATs; copyIdx++ {
		lba, off := v.fatEntryLocation(copyIdx, cluster)
		var sector [blockdev.SectorSize]byte
		if err := v.readSector(lba, &sector); err != nil {
			return err
		}
		binary.LittleEndian.PutUint16(sector[off:off+2], uint16(value))
		if err := v.writeSector(lba, &sector); err != nil {
			return err
		}
	}
	return nil
}

// findFreeCluster linearly scans FAT entries [2, entriesPerFAT) for the
// first 0x0000 value, per §4.2.4.
func (v *Volume) findFreeCluster() (ClusterID, error) {
	total := v.geometry.entriesPerFAT()
	for entry := uint32(clusterFirst); entry < total; entry++ {
		val, err := v.readFATEntry(ClusterID(entry))
		if err != nil {
			return 0, err
		}
		if val == clusterFree {
			return ClusterID(entry), nil
		}
	}
	return 0, v.fail(newErr(ErrNoFreeClusters))
}

// freeChain walks the chain starting at start, zeroing each FAT entry as
// it goes, per §4.2.4. A start value below cluster 2 is a no-op (an empty
// file has no chain to free).
func (v *Volume) freeChain(start ClusterID) error {
	if start < clusterFirst {
		return nil
	}

	var errs *multierror.Error
	cluster := start
	for cluster >= clusterFirst {
		next, err := v.readFATEntry(cluster)
		if err != nil {
			errs = multierror.Append(errs, err)
			return errs.ErrorOrNil()
		}
		if err := v.writeFATEntry(cluster, clusterFree); err != nil {
			errs = multierror.Append(errs, err)
			return errs.ErrorOrNil()
		}
		if next.isEOC() {
			break
		}
		cluster = next
	}
	return errs.ErrorOrNil()
}

// allocateChain pre-allocates count clusters, linking them forward and
// terminating with an EOC marker, per the write() ordering rationale in
// §4.2.5: the chain is built in the FAT before any data is written and
// before the directory entry is updated. On any allocation failure the
// partially built chain is freed and the allocation error is returned,
// combined with any error hit while freeing it.
func (v *Volume) allocateChain(count uint32) (ClusterID, error) {
	if count == 0 {
		return 0, nil
	}

	var first, prev ClusterID
	for i := uint32(0); i < count; i++ {
		next, err := v.findFreeCluster()
		if err != nil {
			return 0, v.rollbackChain(first, err)
		}
		// Mark it used immediately so a later findFreeCluster call in
		// this same allocation doesn't pick it again.
		if err := v.writeFATEntry(next, eocWrite); err != nil {
			return 0, v.rollbackChain(first, err)
		}
		if prev != 0 {
			if err := v.writeFATEntry(prev, next); err != nil {
				return 0, v.rollbackChain(first, err)
			}
		}
		if first == 0 {
			first = next
		}
		prev = next
	}
	return first, nil
}

// rollbackChain frees a partially built chain after an allocation failure,
// aggregating the original cause with any cleanup failure via
// hashicorp/go-multierror rather than silently discarding one of them.
func (v *Volume) rollbackChain(first ClusterID, cause error) error {
	var errs *multierror.Error
	errs = multierror.Append(errs, cause)
	if first != 0 {
		if err := v.freeChain(first); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// zeroCluster writes zero-filled sectors across an entire cluster, used
// when growing a directory chain and when initializing a new directory's
// first cluster.
func (v *Volume) zeroCluster(cluster ClusterID) error {
	base := v.geometry.ClusterToLBA(cluster)
	var zero [blockdev.SectorSize]byte
	for s := uint8(0); s < v.geometry.SectorsPerCluster; s++ {
		if err := v.writeSector(base+blockdev.LBA(s), &zero); err != nil {
			return err
		}
	}
	return nil
}
