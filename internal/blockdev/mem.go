package blockdev

import (
	"io"
	"os"
	"sync"

	"github.com/xaionaro-go/bytesextra"
)

// seekerReaderWriterAt adapts an io.ReadWriteSeeker to io.ReaderAt/io.WriterAt
// by serializing seek+read / seek+write pairs behind a mutex. The FAT driver
// never issues overlapping I/O (§5: single-threaded, cooperative), but the
// mutex keeps this adapter honest if it's ever reused from a test that
// forgets that rule.
type seekerReaderWriterAt struct {
	mu sync.Mutex
	rw io.ReadWriteSeeker
}

func (s *seekerReaderWriterAt) ReadAt(p []byte, off int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.rw.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	return io.ReadFull(s.rw, p)
}

func (s *seekerReaderWriterAt) WriteAt(p []byte, off int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.rw.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	return s.rw.Write(p)
}

// NewMemATASim builds an ATA simulator backed entirely in memory: storage
// is a flat byte slice wrapped as a seekable stream via
// github.com/xaionaro-go/bytesextra, the same adapter the teacher pack uses
// to give an in-memory block cache a stream-shaped backing store.
func NewMemATASim(storage []byte) *ATASim {
	rw := bytesextra.NewReadWriteSeeker(storage)
	adapted := &seekerReaderWriterAt{rw: rw}
	totalSects := uint32(len(storage) / SectorSize)
	return NewATASim(adapted, totalSects)
}

// NewFileATASim opens (or creates, truncated to sizeSectors*512 bytes) a
// disk-image file on the host filesystem and wraps it as the primary
// master drive. This is how the CLI's "mkdisk"/"shell"/"edit" commands get
// a persistent backing store without any real hardware.
func NewFileATASim(path string, sizeSectors uint32, create bool) (*ATASim, error) {
	flags := os.O_RDWR
	if create {
		flags |= os.O_CREATE
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, err
	}
	if create {
		if err := f.Truncate(int64(sizeSectors) * SectorSize); err != nil {
			f.Close()
			return nil, err
		}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	total := uint32(info.Size() / SectorSize)
	return NewATASim(f, total), nil
}
