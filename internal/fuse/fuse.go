//go:build linux
// +build linux

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
package fuse

import (
	"context"
	"os"
	"sort"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"

	"github.com/fat16os/fat16os/internal/fat"
)

// VolumeFS exposes a mounted FAT16 volume as a read-only FUSE filesystem,
// so host tools can browse and read files on a disk image without going
// through the shell or editor commands.
type VolumeFS struct {
	vol *fat.Volume
}

// NewVolumeFS wraps vol for serving over FUSE.
func NewVolumeFS(vol *fat.Volume) *VolumeFS {
	return &VolumeFS{vol: vol}
}

func (v *VolumeFS) Root() (fs.Node, error) {
	return &Dir{vol: v.vol, cluster: 0}, nil
}

// Dir is a FUSE node backed by one FAT16 directory cluster (0 for the
// fixed root). It implements fs.Node, fs.HandleReadDirAller and
// fs.NodeStringLookuper.
type Dir struct {
	vol     *fat.Volume
	cluster uint16
}

func (d *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0555
	return nil
}

func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	entries, err := d.vol.ScanDirRaw(d.cluster)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Name() != name {
			continue
		}
		if e.IsDir() {
			return &Dir{vol: d.vol, cluster: e.Cluster()}, nil
		}
		return &File{vol: d.vol, cluster: e.Cluster(), size: e.Size()}, nil
	}
	return nil, fuse.ENOENT
}

func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	entries, err := d.vol.ScanDirRaw(d.cluster)
	if err != nil {
		return nil, err
	}

	var out []fuse.Dirent
	for _, e := range entries {
		if e.Name() == "." || e.Name() == ".." {
			continue
		}
		typ := fuse.DT_File
		if e.IsDir() {
			typ = fuse.DT_Dir
		}
		out = append(out, fuse.Dirent{Name: e.Name(), Type: typ})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	for i := range out {
		out[i].Inode = uint64(i + 1)
	}
	return out, nil
}

// File is a FUSE node backed by one file's first cluster and size.
type File struct {
	vol     *fat.Volume
	cluster uint16
	size    uint32
}

func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = 0444
	a.Size = uint64(f.size)
	a.Mtime = time.Now()
	return nil
}

func (f *File) ReadAll(ctx context.Context) ([]byte, error) {
	return f.vol.ReadFileData(f.cluster, f.size)
}
