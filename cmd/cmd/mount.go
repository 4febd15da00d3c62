// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fat16os/fat16os/internal/blockdev"
	"github.com/fat16os/fat16os/internal/fat"
	"github.com/fat16os/fat16os/internal/fuse"
	"github.com/fat16os/fat16os/internal/logger"
)

// DefineMountCommand builds the mount subcommand, per SPEC_FULL.md §6.6: a
// host-visible, read-only FUSE view of a mounted volume, for browsing and
// reading files with ordinary tools instead of the shell or editor.
func DefineMountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "mount <image_path> [mountpoint]",
		Short:        "Mount a FAT16 disk image read-only at a host path via FUSE",
		Args:         cobra.RangeArgs(1, 2),
		SilenceUsage: true,
		RunE:         RunMount,
	}
	return cmd
}

func RunMount(cmd *cobra.Command, args []string) error {
	dev, err := blockdev.NewFileATASim(args[0], 0, false)
	if err != nil {
		return err
	}
	defer dev.Close()

	vol, err := fat.Mount(dev)
	if err != nil {
		return err
	}

	mountpoint := ""
	if len(args) > 1 {
		mountpoint = args[1]
	} else {
		mountpoint = defaultMountpoint(args[0])
	}

	log := logger.New(os.Stderr, logger.InfoLevel)
	log.Infof("mounting %s at %s (read-only)", args[0], mountpoint)
	err = fuse.Mount(mountpoint, vol)
	if err != nil {
		log.Errorf("fuse mount failed: %v", err)
	}
	return err
}

// defaultMountpoint derives a mountpoint directory name from the image
// path's base name by stripping its extension; a base name with no
// extension gets a "_mnt" suffix instead.
func defaultMountpoint(imagePath string) string {
	baseName := filepath.Base(imagePath)
	ext := filepath.Ext(baseName)
	baseName = strings.TrimSuffix(baseName, ext)
	if ext == "" {
		return baseName + "_mnt"
	}
	return baseName
}
