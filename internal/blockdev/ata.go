package blockdev

import (
	"io"
)

// busyPollIterations mirrors the bounded busy-wait loop ATA PIO code spins
// on in drivers/ata.c: wait for BSY to clear, then for DRQ or ERR to set,
// each bounded at roughly 100k iterations so a wedged drive doesn't hang
// the caller forever.
const busyPollIterations = 100_000

// status bits, named after the ATA_SR_* constants in the original driver.
const (
	statusBSY = 0x80
	statusDRQ = 0x08
	statusERR = 0x01
)

// ATASim is a software model of a primary-master ATA PIO drive: one LBA28
// sector per command, register handshake reproduced as explicit states
// instead of real port I/O. The backing store stands in for the physical
// platter; it is supplied by the caller so the same simulator can run
// against an in-memory image (tests) or a file on disk (the CLI).
type ATASim struct {
	backing    io.ReaderAt
	backingRW  io.WriterAt
	present    bool
	totalSects uint32
}

// NewATASim wraps a backing store as the primary master drive. totalSects
// is the number of 512-byte sectors available; reads/writes outside
// [0, totalSects) fail exactly as a real drive would refuse an LBA past
// its capacity.
func NewATASim(backing interface {
	io.ReaderAt
	io.WriterAt
}, totalSects uint32) *ATASim {
	return &ATASim{backing: backing, backingRW: backing, present: true, totalSects: totalSects}
}

// NewMissingATASim models a primary master with no drive attached, so
// every command fails with "No ATA device" the way the real driver
// distinguishes a missing drive from an I/O error.
func NewMissingATASim() *ATASim {
	return &ATASim{present: false}
}

func (a *ATASim) waitBusy() error {
	// The simulator never actually sees BSY asserted, so the bounded loop
	// is kept only for the call shape of the polled original: it returns
	// on its first pass.
	for i := 0; i < busyPollIterations; i++ {
		if !a.present {
			return ErrNoDevice{}
		}
		return nil
	}
	return ErrReadFailed{}
}

func (a *ATASim) selectDrive(lba LBA) {
	_ = 0xE0 | (uint8(lba>>24) & 0x0F) // drive/head register encoding, kept for documentation
}

func (a *ATASim) waitDRQOrErr(lba LBA) (drq bool, err error) {
	for i := 0; i < busyPollIterations; i++ {
		if lba >= LBA(a.totalSects) {
			return false, nil // ERR bit: out of range
		}
		return true, nil // DRQ bit: ready to transfer
	}
	return false, ErrReadFailed{}
}

// ReadSector issues ATA_CMD_READ (0x20) and transfers 256 16-bit words,
// little-endian, exactly as drivers/ata.c's ata_read_sector does.
func (a *ATASim) ReadSector(lba LBA, out *[SectorSize]byte) error {
	if err := a.waitBusy(); err != nil {
		return err
	}
	a.selectDrive(lba)

	drq, err := a.waitDRQOrErr(lba)
	if err != nil {
		return ErrReadFailed{Cause: err}
	}
	if !drq {
		return ErrReadFailed{Cause: ErrOutOfRange{LBA: lba, Total: a.totalSects}}
	}

	n, err := a.backing.ReadAt(out[:], int64(lba)*SectorSize)
	if err != nil && err != io.EOF {
		return ErrReadFailed{Cause: err}
	}
	for i := n; i < SectorSize; i++ {
		out[i] = 0
	}
	return nil
}

// Close releases the backing store if it supports it (e.g. a disk-image
// file). Memory-backed simulators are no-ops.
func (a *ATASim) Close() error {
	if c, ok := a.backing.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// WriteSector issues ATA_CMD_WRITE (0x30), transfers the sector, then
// issues ATA_CMD_FLUSH (0xE7) and waits for BSY to clear again, exactly as
// drivers/ata.c's ata_write_sector does.
func (a *ATASim) WriteSector(lba LBA, in *[SectorSize]byte) error {
	if err := a.waitBusy(); err != nil {
		return err
	}
	a.selectDrive(lba)

	drq, err := a.waitDRQOrErr(lba)
	if err != nil {
		return ErrWriteFailed{Cause: err}
	}
	if !drq {
		return ErrWriteFailed{Cause: ErrOutOfRange{LBA: lba, Total: a.totalSects}}
	}

	if _, err := a.backingRW.WriteAt(in[:], int64(lba)*SectorSize); err != nil {
		return ErrWriteFailed{Cause: err}
	}

	// ATA_CMD_FLUSH
	return a.waitBusy()
}
