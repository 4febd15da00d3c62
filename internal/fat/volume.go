// Package fat implements a FAT16 filesystem driver over a polled block
// device, exposing a path-free current-directory API: listing, navigation,
// creation, deletion, whole-file read and overwrite.
package fat

import (
	"errors"

	"github.com/fat16os/fat16os/internal/blockdev"
)

// Volume is the mounted filesystem state: geometry (read-only after
// mount), the current directory, the display path, and the last error —
// all process-wide singletons in the original kernel, held here as fields
// on one owning struct per the specification's Design Notes.
type Volume struct {
	dev      blockdev.Device
	geometry Geometry

	currentDirCluster ClusterID
	currentPath       string

	lastErr error
}

// Mount reads the boot sector (and, if needed, the MBR partition table)
// from dev and brings up a FAT16 volume, per §4.2.1.
func Mount(dev blockdev.Device) (*Volume, error) {
	v := &Volume{dev: dev}

	var sector [blockdev.SectorSize]byte
	if err := v.readRawSector(0, &sector); err != nil {
		return nil, err
	}

	baseLBA := blockdev.LBA(0)
	if !bpbValid(sector[:]) {
		if sector[510] != 0x55 || sector[511] != 0xAA {
			return nil, v.fail(newErr(ErrNoBootSector))
		}

		partLBA, found := mbrPartitionOffset(sector[:])
		if !found {
			return nil, v.fail(newErr(ErrNoFATPartition))
		}
		baseLBA = partLBA

		if err := v.readAtBase(baseLBA, 0, &sector); err != nil {
			return nil, err
		}
		if !bpbValid(sector[:]) {
			return nil, v.fail(newErr(ErrUnsupportedFormat))
		}
	}

	g, ferr := geometryFromBPB(sector[:], baseLBA)
	if ferr != nil {
		return nil, v.fail(ferr)
	}

	v.geometry = g
	v.currentDirCluster = 0
	v.currentPath = "/"
	v.lastErr = nil
	return v, nil
}

// fail records err as the volume's last error and returns it, mirroring
// the kernel's set_error()-then-return-(-1) pattern at every failure site.
func (v *Volume) fail(err error) error {
	v.lastErr = err
	return err
}

// ok clears the last-error side channel on success, per §7.
func (v *Volume) ok() {
	v.lastErr = nil
}

// LastError returns the message of the most recent failure, for callers
// (the shell, the editor) that still want the C-style "last_error" string
// instead of an error value.
func (v *Volume) LastError() string {
	if v.lastErr == nil {
		return ""
	}
	return v.lastErr.Error()
}

// Geometry exposes the mounted volume's read-only geometry.
func (v *Volume) Geometry() Geometry { return v.geometry }

// readAtBase reads a filesystem-relative sector, honoring base. Used
// during mount before v.geometry is populated.
func (v *Volume) readAtBase(base, lba blockdev.LBA, out *[blockdev.SectorSize]byte) error {
	return v.readRawSector(base+lba, out)
}

// readRawSector issues a single absolute-LBA read and classifies the
// resulting blockdev error per §4.1's failure surface.
func (v *Volume) readRawSector(lba blockdev.LBA, out *[blockdev.SectorSize]byte) error {
	if err := v.dev.ReadSector(lba, out); err != nil {
		return v.fail(classifyIOError(err, true))
	}
	return nil
}

// writeRawSector issues a single absolute-LBA write and classifies the
// resulting blockdev error per §4.1's failure surface.
func (v *Volume) writeRawSector(lba blockdev.LBA, in *[blockdev.SectorSize]byte) error {
	if err := v.dev.WriteSector(lba, in); err != nil {
		return v.fail(classifyIOError(err, false))
	}
	return nil
}

// classifyIOError maps the block device's typed errors onto the driver's
// own error codes, preserving the distinct "No ATA device" case per §4.1.
func classifyIOError(err error, reading bool) *Error {
	var noDevice blockdev.ErrNoDevice
	if errors.As(err, &noDevice) {
		return wrapErr(ErrNoATADevice, err)
	}
	if reading {
		return wrapErr(ErrDiskReadFailed, err)
	}
	return wrapErr(ErrDiskWriteFailed, err)
}

// readSector reads filesystem-relative LBA lba (i.e. relative to
// geometry.BaseLBA), per §4.2.1: "All subsequent sector I/O uses the
// filesystem-relative LBA plus base_lba."
func (v *Volume) readSector(lba blockdev.LBA, out *[blockdev.SectorSize]byte) error {
	return v.readRawSector(v.geometry.BaseLBA+lba, out)
}

// writeSector writes filesystem-relative LBA lba.
func (v *Volume) writeSector(lba blockdev.LBA, in *[blockdev.SectorSize]byte) error {
	return v.writeRawSector(v.geometry.BaseLBA+lba, in)
}
