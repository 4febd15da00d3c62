package fat

import (
	"encoding/binary"

	"github.com/noxer/bytewriter"

	"github.com/fat16os/fat16os/internal/blockdev"
)

// FormatOptions controls the handful of geometry choices Format makes for
// the caller; everything else (reserved sectors, number of FAT copies) is
// fixed, matching what a minimal FAT16 formatter needs to decide versus
// what the on-disk layout dictates.
type FormatOptions struct {
	SectorsPerCluster uint8
	RootEntries       uint16
}

// DefaultFormatOptions mirrors the geometry used by the specification's
// concrete scenario 1: one sector per cluster, 512 root entries.
func DefaultFormatOptions() FormatOptions {
	return FormatOptions{SectorsPerCluster: 1, RootEntries: 512}
}

const (
	formatReservedSectors = 1
	formatNumFATs         = 2
)

// Format writes a fresh BPB, zeroed FAT copies (with the reserved media
// descriptor and EOC entries for clusters 0 and 1), and a zeroed root
// directory extent to dev, per §6.1's on-disk layout. It does not mount
// the resulting volume — call Mount afterward.
func Format(dev blockdev.Device, totalSectors uint32, opts FormatOptions) error {
	sectorsPerFAT := computeSectorsPerFAT(totalSectors, opts)

	var bpb [blockdev.SectorSize]byte
	bpb[11], bpb[12] = byte(blockdev.SectorSize), byte(blockdev.SectorSize>>8)
	bpb[13] = opts.SectorsPerCluster
	binary.LittleEndian.PutUint16(bpb[14:16], formatReservedSectors)
	bpb[16] = formatNumFATs
	binary.LittleEndian.PutUint16(bpb[17:19], opts.RootEntries)
	if totalSectors <= 0xFFFF {
		binary.LittleEndian.PutUint16(bpb[19:21], uint16(totalSectors))
	}
	bpb[21] = 0xF8 // media descriptor, fixed disk
	binary.LittleEndian.PutUint16(bpb[22:24], sectorsPerFAT)
	binary.LittleEndian.PutUint32(bpb[32:36], totalSectors)
	bpb[510], bpb[511] = 0x55, 0xAA

	if err := dev.WriteSector(0, &bpb); err != nil {
		return classifyIOError(err, false)
	}

	rootDirSectors := uint32((opts.RootEntries*32 + blockdev.SectorSize - 1) / blockdev.SectorSize)
	rootDirLBA := blockdev.LBA(formatReservedSectors + uint32(formatNumFATs)*uint32(sectorsPerFAT))

	// The first two FAT entries are reserved (media descriptor byte plus
	// an end-of-chain marker); write them with the same sequential-writer
	// idiom the rest of the on-disk layout uses for fixed-size records.
	var fatSector [blockdev.SectorSize]byte
	fw := bytewriter.New(fatSector[:])
	binary.Write(fw, binary.LittleEndian, uint16(0xFFF8))
	binary.Write(fw, binary.LittleEndian, uint16(0xFFFF))

	for fatIdx := uint8(0); fatIdx < formatNumFATs; fatIdx++ {
		base := blockdev.LBA(formatReservedSectors) + blockdev.LBA(fatIdx)*blockdev.LBA(sectorsPerFAT)
		if err := dev.WriteSector(base, &fatSector); err != nil {
			return classifyIOError(err, false)
		}
		var zero [blockdev.SectorSize]byte
		for s := uint16(1); s < sectorsPerFAT; s++ {
			if err := dev.WriteSector(base+blockdev.LBA(s), &zero); err != nil {
				return classifyIOError(err, false)
			}
		}
	}

	var zero [blockdev.SectorSize]byte
	for s := uint32(0); s < rootDirSectors; s++ {
		if err := dev.WriteSector(rootDirLBA+blockdev.LBA(s), &zero); err != nil {
			return classifyIOError(err, false)
		}
	}

	return nil
}

// computeSectorsPerFAT iterates the same circular dependency a real
// formatter resolves: the FAT's own size eats into the data region, which
// determines the cluster count, which determines how big the FAT needs to
// be to address every cluster.
func computeSectorsPerFAT(totalSectors uint32, opts FormatOptions) uint16 {
	rootDirSectors := uint32((opts.RootEntries*32 + blockdev.SectorSize - 1) / blockdev.SectorSize)

	sectorsPerFAT := uint32(1)
	for {
		dataLBA := uint32(formatReservedSectors) + uint32(formatNumFATs)*sectorsPerFAT + rootDirSectors
		if dataLBA >= totalSectors {
			break
		}
		dataSectors := totalSectors - dataLBA
		clusterCount := dataSectors / uint32(opts.SectorsPerCluster)
		neededBytes := (clusterCount + 2) * 2
		needed := (neededBytes + blockdev.SectorSize - 1) / blockdev.SectorSize
		if needed <= sectorsPerFAT {
			break
		}
		sectorsPerFAT = needed
	}
	return uint16(sectorsPerFAT)
}
