package fat

import (
	"fmt"
	"io"

	"github.com/fat16os/fat16os/internal/blockdev"
)

// Entry is the listing shape returned by Ls: a display name plus the
// directory-attribute bit callers need to render "<DIR>" vs a plain file.
type Entry struct {
	Name  string
	IsDir bool
	Size  uint32
}

// Ls lists the live entries of the current directory, per §4.2.5.
func (v *Volume) Ls() ([]Entry, error) {
	var out []Entry
	err := v.scanDir(v.currentDirCluster, func(d Dirent) bool {
		out = append(out, Entry{Name: d.Name(), IsDir: d.IsDir(), Size: d.Size})
		return false
	})
	if err != nil {
		return nil, err
	}
	v.ok()
	return out, nil
}

// Pwd returns the shell-visible current path, maintained incrementally by
// Cd per §4.2.5.
func (v *Volume) Pwd() string {
	return v.currentPath
}

// Cd changes the current directory, per §4.2.5's special-cased "", "/",
// ".", and ".." names, and maintains currentPath alongside
// currentDirCluster exactly the way the original kernel walks g_cwd.
func (v *Volume) Cd(name string) error {
	if name == "" {
		v.ok()
		return nil
	}
	if name == "/" {
		v.currentDirCluster = 0
		v.currentPath = "/"
		v.ok()
		return nil
	}
	if name == "." {
		v.ok()
		return nil
	}
	if name == ".." && v.currentDirCluster == 0 {
		v.ok()
		return nil
	}

	d, found, err := v.findEntry(v.currentDirCluster, name)
	if err != nil {
		return err
	}
	if !found {
		return v.fail(newErr(ErrNotFound))
	}
	if !d.IsDir() {
		return v.fail(newErr(ErrNotDirectory))
	}

	if name == ".." {
		v.currentDirCluster = d.Cluster
		v.currentPath = popPathComponent(v.currentPath)
		v.ok()
		return nil
	}

	v.currentDirCluster = d.Cluster
	v.currentPath = pushPathComponent(v.currentPath, name)
	v.ok()
	return nil
}

func pushPathComponent(path, name string) string {
	if path == "/" {
		return "/" + name
	}
	return path + "/" + name
}

func popPathComponent(path string) string {
	if len(path) <= 1 {
		return path
	}
	i := len(path) - 1
	for i > 0 && path[i] != '/' {
		i--
	}
	if i == 0 {
		return "/"
	}
	return path[:i]
}

// isDotOrDotDot rejects "." and ".." as target names for mkdir/touch/write,
// per §4.2.5.
func isDotOrDotDot(name string) bool {
	return name == "." || name == ".."
}

// Mkdir creates a subdirectory with "." and ".." entries seeded in its
// first cluster, per §4.2.5: the new directory's first cluster is
// allocated, its "." entry points at itself and its ".." entry points at
// the parent, and every sector of the cluster beyond the first is
// zero-filled.
func (v *Volume) Mkdir(name string) error {
	if isDotOrDotDot(name) {
		return v.fail(newErr(ErrInvalidName))
	}
	if _, found, err := v.findEntry(v.currentDirCluster, name); err != nil {
		return err
	} else if found {
		return v.fail(newErr(ErrAlreadyExists))
	}

	slot, err := v.findFreeSlot(v.currentDirCluster)
	if err != nil {
		return err
	}

	newCluster, err := v.findFreeCluster()
	if err != nil {
		return err
	}
	if err := v.writeFATEntry(newCluster, eocWrite); err != nil {
		return err
	}

	rawName, ferr := make83(name)
	if ferr != nil {
		return v.fail(ferr)
	}

	if err := v.writeDirentAt(slot, rawName, attrDirectory, newCluster, 0); err != nil {
		return err
	}

	var dirSector [blockdev.SectorSize]byte
	dot, _ := make83(".")
	dotdot, _ := make83("..")
	encodeDirent(slotAt(dirSector[:], 0), dot, attrDirectory, newCluster, 0)
	encodeDirent(slotAt(dirSector[:], 1), dotdot, attrDirectory, v.currentDirCluster, 0)

	base := v.geometry.ClusterToLBA(newCluster)
	if err := v.writeSector(base, &dirSector); err != nil {
		return err
	}

	var zero [blockdev.SectorSize]byte
	for s := uint8(1); s < v.geometry.SectorsPerCluster; s++ {
		if err := v.writeSector(base+blockdev.LBA(s), &zero); err != nil {
			return err
		}
	}

	v.ok()
	return nil
}

// Touch creates an empty file entry, per §4.2.5.
func (v *Volume) Touch(name string) error {
	if isDotOrDotDot(name) {
		return v.fail(newErr(ErrInvalidName))
	}
	if _, found, err := v.findEntry(v.currentDirCluster, name); err != nil {
		return err
	} else if found {
		return v.fail(newErr(ErrAlreadyExists))
	}

	slot, err := v.findFreeSlot(v.currentDirCluster)
	if err != nil {
		return err
	}

	rawName, ferr := make83(name)
	if ferr != nil {
		return v.fail(ferr)
	}
	if err := v.writeDirentAt(slot, rawName, attrArchive, 0, 0); err != nil {
		return err
	}

	v.ok()
	return nil
}

// Cat streams a file's full contents to w, per §4.2.5. A zero-length file
// (or an entry with no cluster) writes nothing.
func (v *Volume) Cat(name string, w io.Writer) error {
	d, found, err := v.findEntry(v.currentDirCluster, name)
	if err != nil {
		return err
	}
	if !found {
		return v.fail(newErr(ErrNotFound))
	}
	if d.IsDir() {
		return v.fail(newErr(ErrIsDirectory))
	}

	if d.Size == 0 || d.Cluster == 0 {
		v.ok()
		return nil
	}

	remaining := d.Size
	cluster := d.Cluster
	for cluster >= clusterFirst && !cluster.isEOC() && remaining > 0 {
		base := v.geometry.ClusterToLBA(cluster)
		for s := uint8(0); s < v.geometry.SectorsPerCluster && remaining > 0; s++ {
			var sector [blockdev.SectorSize]byte
			if err := v.readSector(base+blockdev.LBA(s), &sector); err != nil {
				return err
			}
			n := uint32(blockdev.SectorSize)
			if n > remaining {
				n = remaining
			}
			if _, werr := w.Write(sector[:n]); werr != nil {
				return werr
			}
			remaining -= n
		}

		next, err := v.readFATEntry(cluster)
		if err != nil {
			return err
		}
		cluster = next
	}

	v.ok()
	return nil
}

// Read returns a file's full contents as a byte slice, per §4.2.5 and the
// specification's Open Question 3: a file too large for max fails closed
// with "Buffer too small" rather than truncating silently.
func (v *Volume) Read(name string, max uint32) ([]byte, error) {
	d, found, err := v.findEntry(v.currentDirCluster, name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, v.fail(newErr(ErrNotFound))
	}
	if d.IsDir() {
		return nil, v.fail(newErr(ErrIsDirectory))
	}

	if d.Size == 0 || d.Cluster == 0 {
		v.ok()
		return []byte{}, nil
	}

	if d.Size > max {
		return nil, v.fail(newErr(ErrBufferTooSmall))
	}

	out := make([]byte, 0, d.Size)
	remaining := d.Size
	cluster := d.Cluster
	for cluster >= clusterFirst && !cluster.isEOC() && remaining > 0 {
		base := v.geometry.ClusterToLBA(cluster)
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

		next, err := v.readFATEntry(cluster)
		if err != nil {
			return nil, err
		}
		cluster = next
	}

	v.ok()
	return out, nil
}

// DiskUsage holds the totals reported by Df.
type DiskUsage struct {
	TotalKB uint32
	UsedKB  uint32
	FreeKB  uint32
}

// Df scans every FAT entry and totals cluster usage in kilobytes, per
// §4.2.5.
func (v *Volume) Df() (DiskUsage, error) {
	free, used, err := v.CountFATUsage()
	if err != nil {
		return DiskUsage{}, err
	}

	clusterSizeKB := v.geometry.ClusterSize() / 1024
	v.ok()
	return DiskUsage{
		TotalKB: (free + used) * clusterSizeKB,
		UsedKB:  used * clusterSizeKB,
		FreeKB:  free * clusterSizeKB,
	}, nil
}

// String renders a DiskUsage the way the shell's df command prints it.
func (u DiskUsage) String() string {
	return fmt.Sprintf("Disk usage:\nTotal: %d KB\nUsed:  %d KB\nFree:  %d KB\n", u.TotalKB, u.UsedKB, u.FreeKB)
}

// Write creates or overwrites a file with data, per §4.2.5's ordering: any
// existing chain is freed first, a fresh chain is pre-allocated and
// terminated before the directory entry is touched, then data streams
// into the new chain with the tail sector zero-padded. Per the
// specification's Open Question 1, a failure partway through intentionally
// leaves the old chain already freed — it is not restored.
func (v *Volume) Write(name string, data []byte) error {
	if name == "" || isDotOrDotDot(name) {
		return v.fail(newErr(ErrInvalidName))
	}

	existing, exists, err := v.findEntry(v.currentDirCluster, name)
	if err != nil {
		return err
	}
	if exists && existing.IsDir() {
		return v.fail(newErr(ErrIsDirectory))
	}

	if exists && existing.Cluster != 0 {
		if err := v.freeChain(existing.Cluster); err != nil {
			return err
		}
	}

	clusterSize := v.geometry.ClusterSize()
	clustersNeeded := uint32(0)
	if len(data) > 0 {
		clustersNeeded = (uint32(len(data)) + clusterSize - 1) / clusterSize
	}

	cluster, err := v.allocateChain(clustersNeeded)
	if err != nil {
		return err
	}

	if !exists {
		slot, err := v.findFreeSlot(v.currentDirCluster)
		if err != nil {
			return err
		}
		rawName, ferr := make83(name)
		if ferr != nil {
			return v.fail(ferr)
		}
		if err := v.writeDirentAt(slot, rawName, attrArchive, cluster, uint32(len(data))); err != nil {
			return err
		}
	} else {
		if err := v.updateDirentFields(existing.loc, cluster, uint32(len(data))); err != nil {
			return err
		}
	}

	if len(data) == 0 {
		v.ok()
		return nil
	}

	written := uint32(0)
	total := uint32(len(data))
	for c := cluster; c >= clusterFirst && !c.isEOC() && written < total; {
		base := v.geometry.ClusterToLBA(c)
		for s := uint8(0); s < v.geometry.SectorsPerCluster; s++ {
			var sector [blockdev.SectorSize]byte
			n := blockdev.SectorSize
			if uint32(n) > total-written {
				n = int(total - written)
			}
			copy(sector[:n], data[written:written+uint32(n)])
			written += uint32(n)
			if err := v.writeSector(base+blockdev.LBA(s), &sector); err != nil {
				return err
			}
		}

		if written >= total {
			break
		}
		next, err := v.readFATEntry(c)
		if err != nil {
			return err
		}
		c = next
	}

	v.ok()
	return nil
}

// Rm removes a file entry, per §4.2.5: its cluster chain is freed, then
// its first name byte is overwritten with 0xE5.
func (v *Volume) Rm(name string) error {
	d, found, err := v.findEntry(v.currentDirCluster, name)
	if err != nil {
		return err
	}
	if !found {
		return v.fail(newErr(ErrNotFound))
	}
	if d.IsDir() {
		return v.fail(newErr(ErrIsDirectory))
	}

	if d.Cluster != 0 {
		if err := v.freeChain(d.Cluster); err != nil {
			return err
		}
	}
	if err := v.markDeleted(d.loc); err != nil {
		return err
	}

	v.ok()
	return nil
}

// Rmdir removes an empty subdirectory, per §4.2.5: it verifies the
// directory holds nothing beyond "." and "..", then frees its chain and
// marks its entry deleted.
func (v *Volume) Rmdir(name string) error {
	d, found, err := v.findEntry(v.currentDirCluster, name)
	if err != nil {
		return err
	}
	if !found {
		return v.fail(newErr(ErrNotFound))
	}
	if !d.IsDir() {
		return v.fail(newErr(ErrNotDirectory))
	}

	empty, err := v.dirIsEmpty(d.Cluster)
	if err != nil {
		return err
	}
	if !empty {
		return v.fail(newErr(ErrDirNotEmpty))
	}

	if d.Cluster != 0 {
		if err := v.freeChain(d.Cluster); err != nil {
			return err
		}
	}
	if err := v.markDeleted(d.loc); err != nil {
		return err
	}

	v.ok()
	return nil
}

// dirIsEmpty reports whether dirCluster holds only "." and ".." entries.
func (v *Volume) dirIsEmpty(dirCluster ClusterID) (bool, error) {
	empty := true
	err := v.scanDir(dirCluster, func(d Dirent) bool {
		name := d.Name()
		if name != "." && name != ".." {
			empty = false
			return true
		}
		return false
	})
	if err != nil {
		return false, err
	}
	return empty, nil
}
