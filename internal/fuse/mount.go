//go:build !linux
// +build !linux

package fuse

import (
	"fmt"

	"github.com/fat16os/fat16os/internal/fat"
)

func Mount(mountpoint string, vol *fat.Volume) error {
	return fmt.Errorf("FUSE mount is only supported on Linux")
}
