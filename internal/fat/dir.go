package fat

import (
	"encoding/binary"

	"github.com/fat16os/fat16os/internal/blockdev"
)

// forEachDirSector calls fn once per sector LBA belonging to dirCluster
// (the fixed root extent if dirCluster == 0, otherwise the directory's
// cluster chain), stopping early if fn returns stop == true. When a chain
// is walked to its end it returns the end-of-chain value read for the
// last cluster; it returns 0 for the root (which has no chain) and when fn
// stops the walk early. findFreeSlot ignores this value and locates the
// chain's tail through lastClusterOf.
func (v *Volume) forEachDirSector(dirCluster ClusterID, fn func(lba blockdev.LBA) (stop bool, err error)) (lastNext ClusterID, err error) {
	if dirCluster == 0 {
		for s := uint32(0); s < v.geometry.RootDirSectors; s++ {
			stop, err := fn(v.geometry.RootDirLBA + blockdev.LBA(s))
			if err != nil {
				return 0, err
			}
			if stop {
				return 0, nil
			}
		}
		return 0, nil
	}

	cluster := dirCluster
	for cluster >= clusterFirst && !cluster.isEOC() {
		base := v.geometry.ClusterToLBA(cluster)
		for s := uint8(0); s < v.geometry.SectorsPerCluster; s++ {
			stop, err := fn(base + blockdev.LBA(s))
			if err != nil {
				return 0, err
			}
			if stop {
				return 0, nil
			}
		}

		next, err := v.readFATEntry(cluster)
		if err != nil {
			return 0, err
		}
		if next.isEOC() {
			return next, nil
		}
		cluster = next
	}
	return eocWrite, nil
}

// scanDir delivers every live directory entry in dirCluster to visit, per
// §4.2.3: a 0x00 first byte terminates the scan immediately, 0xE5 marks a
// deleted slot to skip, and LFN/volume-label attributes are skipped too.
// visit returns true to stop the scan early.
func (v *Volume) scanDir(dirCluster ClusterID, visit func(d Dirent) (stop bool)) error {
	_, err := v.forEachDirSector(dirCluster, func(lba blockdev.LBA) (bool, error) {
		var sector [blockdev.SectorSize]byte
		if err := v.readSector(lba, &sector); err != nil {
			return false, err
		}
		for i := 0; i*direntSize < blockdev.SectorSize; i++ {
			slot := slotAt(sector[:], i)
			switch slot[0] {
			case 0x00:
				return true, nil
			case 0xE5:
				continue
			}
			if slot[11] == attrLFN || slot[11] == attrVolumeID {
				continue
			}
			d := decodeDirent(slot, lba, i*direntSize)
			if visit(d) {
				return true, nil
			}
		}
		return false, nil
	})
	return err
}

// findEntry looks up name in dirCluster by comparing raw 8.3 bytes, per
// §4.2.3.
func (v *Volume) findEntry(dirCluster ClusterID, name string) (Dirent, bool, error) {
	target, ferr := make83(name)
	if ferr != nil {
		return Dirent{}, false, v.fail(ferr)
	}

	var found Dirent
	hasFound := false
	err := v.scanDir(dirCluster, func(d Dirent) bool {
		if d.RawName == target {
			found = d
			hasFound = true
			return true
		}
		return false
	})
	if err != nil {
		return Dirent{}, false, err
	}
	return found, hasFound, nil
}

// findFreeSlot returns the location of the first 0x00 or 0xE5 slot in
// dirCluster, per §4.2.3. For a chained directory whose chain ends
// without a free slot, a new cluster is allocated, linked in, zero-filled,
// and offset 0 of its first sector is returned. The fixed root reports
// "Root directory full" when exhausted.
func (v *Volume) findFreeSlot(dirCluster ClusterID) (location, error) {
	var found location
	hasFound := false

	_, err := v.forEachDirSector(dirCluster, func(lba blockdev.LBA) (bool, error) {
		var sector [blockdev.SectorSize]byte
		if err := v.readSector(lba, &sector); err != nil {
			return false, err
		}
		for i := 0; i*direntSize < blockdev.SectorSize; i++ {
			slot := slotAt(sector[:], i)
			if slot[0] == 0x00 || slot[0] == 0xE5 {
				found = location{lba: lba, offset: i * direntSize}
				hasFound = true
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		return location{}, err
	}
	if hasFound {
		return found, nil
	}

	if dirCluster == 0 {
		return location{}, v.fail(newErr(ErrRootDirFull))
	}

	// The chain ran out without a free slot; grow it by one cluster.
	lastCluster, err := v.lastClusterOf(dirCluster)
	if err != nil {
		return location{}, err
	}

	newCluster, err := v.findFreeCluster()
	if err != nil {
		return location{}, err
	}
	if err := v.writeFATEntry(lastCluster, newCluster); err != nil {
		return location{}, err
	}
	if err := v.writeFATEntry(newCluster, eocWrite); err != nil {
		return location{}, err
	}
	if err := v.zeroCluster(newCluster); err != nil {
		return location{}, err
	}

	return location{lba: v.geometry.ClusterToLBA(newCluster), offset: 0}, nil
}

// lastClusterOf walks dirCluster's chain to its final (EOC-pointing)
// cluster.
func (v *Volume) lastClusterOf(dirCluster ClusterID) (ClusterID, error) {
	cluster := dirCluster
	for {
		next, err := v.readFATEntry(cluster)
		if err != nil {
			return 0, err
		}
		if next.isEOC() {
			return cluster, nil
		}
		cluster = next
	}
}

// writeDirentAt writes a freshly built entry into the slot named by loc.
func (v *Volume) writeDirentAt(loc location, name [11]byte, attr byte, cluster ClusterID, size uint32) error {
	var sector [blockdev.SectorSize]byte
	if err := v.readSector(loc.lba, &sector); err != nil {
		return err
	}
	encodeDirent(slotAt(sector[:], loc.offset/direntSize), name, attr, cluster, size)
	return v.writeSector(loc.lba, &sector)
}

// markDeleted overwrites the entry's first name byte with 0xE5, per
// §4.2.5's rm/rmdir contract.
func (v *Volume) markDeleted(loc location) error {
	var sector [blockdev.SectorSize]byte
	if err := v.readSector(loc.lba, &sector); err != nil {
		return err
	}
	slot := slotAt(sector[:], loc.offset/direntSize)
	slot[0] = 0xE5
	return v.writeSector(loc.lba, &sector)
}

// updateDirentFields rewrites only the cluster and size fields of an
// existing entry in place, per write()'s overwrite-existing-file path.
func (v *Volume) updateDirentFields(loc location, cluster ClusterID, size uint32) error {
	var sector [blockdev.SectorSize]byte
	if err := v.readSector(loc.lba, &sector); err != nil {
		return err
	}
	slot := slotAt(sector[:], loc.offset/direntSize)
	binary.LittleEndian.PutUint16(slot[26:28], uint16(cluster))
	binary.LittleEndian.PutUint32(slot[28:32], size)
	return v.writeSector(loc.lba, &sector)
}
