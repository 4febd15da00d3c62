package blockdev_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fat16os/fat16os/internal/blockdev"
)

func TestReadWriteSectorRoundTrip(t *testing.T) {
	storage := make([]byte, 4*blockdev.SectorSize)
	dev := blockdev.NewMemATASim(storage)

	var in [blockdev.SectorSize]byte
	for i := range in {
		in[i] = byte(i)
	}
	require.NoError(t, dev.WriteSector(2, &in))

	var out [blockdev.SectorSize]byte
	require.NoError(t, dev.ReadSector(2, &out))
	require.Equal(t, in, out)
}

func TestReadSectorOutOfRangeFails(t *testing.T) {
	storage := make([]byte, 2*blockdev.SectorSize)
	dev := blockdev.NewMemATASim(storage)

	var out [blockdev.SectorSize]byte
	err := dev.ReadSector(5, &out)
	require.Error(t, err)
}

func TestMissingDeviceReportsNoDevice(t *testing.T) {
	dev := blockdev.NewMissingATASim()

	var out [blockdev.SectorSize]byte
	err := dev.ReadSector(0, &out)
	require.Error(t, err)

	var noDevice blockdev.ErrNoDevice
	require.ErrorAs(t, err, &noDevice)
}

func TestUnwrittenSectorReadsAsZero(t *testing.T) {
	storage := make([]byte, 2*blockdev.SectorSize)
	dev := blockdev.NewMemATASim(storage)

	var out [blockdev.SectorSize]byte
	for i := range out {
		out[i] = 0xFF
	}
	require.NoError(t, dev.ReadSector(0, &out))

	var zero [blockdev.SectorSize]byte
	require.Equal(t, zero, out)
}
