package fat

import "github.com/fat16os/fat16os/internal/blockdev"

// DiagEntry is a read-only projection of a directory entry for callers that
// walk directories by arbitrary cluster rather than only the Volume's
// current directory: internal/diag's consistency walk and internal/fuse's
// host filesystem view both address directories this way.
type DiagEntry struct {
	name    string
	isDir   bool
	cluster uint16
	size    uint32
}

func (e DiagEntry) Name() string    { return e.name }
func (e DiagEntry) IsDir() bool     { return e.isDir }
func (e DiagEntry) Cluster() uint16 { return e.cluster }
func (e DiagEntry) Size() uint32    { return e.size }

// ScanDirRaw lists dirCluster's live entries without changing the
// Volume's current-directory state, for diagnostics and for FUSE's
// directory listing.
func (v *Volume) ScanDirRaw(dirCluster uint16) ([]DiagEntry, error) {
	var out []DiagEntry
	err := v.scanDir(ClusterID(dirCluster), func(d Dirent) bool {
		out = append(out, DiagEntry{name: d.Name(), isDir: d.IsDir(), cluster: uint16(d.Cluster), size: d.Size})
		return false
	})
	return out, err
}

// ReadFileData streams a file's full contents given its first cluster and
// size directly, bypassing current-directory lookup. This is the same
// cluster-walk Cat and Read perform, exposed separately for callers like
// internal/fuse that resolve a path to a cluster themselves.
func (v *Volume) ReadFileData(cluster uint16, size uint32) ([]byte, error) {
	if size == 0 || cluster == 0 {
		return []byte{}, nil
	}

	out := make([]byte, 0, size)
	remaining := size
	c := ClusterID(cluster)
	for c >= clusterFirst && !c.isEOC() && remaining > 0 {
		base := v.geometry.ClusterToLBA(c)
		for s := uint8(0); s < v.geometry.SectorsPerCluster && remaining > 0; s++ {
			var sector [blockdev.SectorSize]byte
			if err := v.readSector(base+blockdev.LBA(s), &sector); err != nil {
				return nil, err
			}
			n := uint32(blockdev.SectorSize)
			if n > remaining {
				n = remaining
			}
			out = append(out, sector[:n]...)
			remaining -= n
		}

		next, err := v.readFATEntry(c)
		if err != nil {
			return nil, err
		}
		c = next
	}
	return out, nil
}

// ChainClusters walks the cluster chain starting at start and returns
// every cluster number visited, for diagnostics' ownership bitmap. An
// unlinked start (below cluster 2) yields no clusters.
func (v *Volume) ChainClusters(start uint16) []uint16 {
	var out []uint16
	cluster := ClusterID(start)
	for cluster >= clusterFirst && !cluster.isEOC() {
		out = append(out, uint16(cluster))
		next, err := v.readFATEntry(cluster)
		if err != nil {
			return out
		}
		cluster = next
	}
	return out
}

// CountFATUsage scans every FAT entry and totals free vs. used clusters,
// the same scan Df performs, exposed separately so diagnostics can
// cross-check its ownership walk against the table's own accounting.
func (v *Volume) CountFATUsage() (free, used uint32, err error) {
	total := v.geometry.entriesPerFAT()
	for entry := uint32(clusterFirst); entry < total; entry++ {
		val, rerr := v.readFATEntry(ClusterID(entry))
		if rerr != nil {
			return 0, 0, rerr
		}
		if val == clusterFree {
			free++
		} else {
			used++
		}
	}
	return free, used, nil
}
