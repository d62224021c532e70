package writer

import (
	"io"
	"os"

	"github.com/dmagyar-0/mf4-go/endian"
	"github.com/dmagyar-0/mf4-go/errs"
	"github.com/dmagyar-0/mf4-go/internal/mmap"
)

var le = endian.GetLittleEndianEngine()

// backing abstracts the write target: positioned writes for both forward
// streaming and back-patching, plus final flush-and-close.
type backing interface {
	writeAt(p []byte, off int64) error
	finalize(finalSize int64) error
}

// fileBacking writes directly to an os.File.
type fileBacking struct {
	f *os.File
}

func (b *fileBacking) writeAt(p []byte, off int64) error {
	_, err := b.f.WriteAt(p, off)

	return err
}

func (b *fileBacking) finalize(int64) error {
	if err := b.f.Sync(); err != nil {
		b.f.Close()
		return err
	}

	return b.f.Close()
}

// seekerBacking adapts any io.WriteSeeker (e.g. an in-memory buffer).
type seekerBacking struct {
	ws io.WriteSeeker
}

func (b *seekerBacking) writeAt(p []byte, off int64) error {
	if _, err := b.ws.Seek(off, io.SeekStart); err != nil {
		return err
	}
	_, err := b.ws.Write(p)

	return err
}

func (b *seekerBacking) finalize(int64) error { return nil }

// mmapBacking writes into a pre-sized writable memory map; Finalize
// truncates the file to the bytes actually produced.
type mmapBacking struct {
	m *mmap.Writable
}

func newMmapBacking(path string, size int64) (*mmapBacking, error) {
	m, err := mmap.Create(path, size)
	if err != nil {
		return nil, err
	}

	return &mmapBacking{m: m}, nil
}

func (b *mmapBacking) writeAt(p []byte, off int64) error {
	data := b.m.Data()
	if off+int64(len(p)) > int64(len(data)) {
		return errs.Serialization("mmap backing overflow: need %d bytes, mapped %d", off+int64(len(p)), len(data))
	}
	copy(data[off:], p)

	return nil
}

func (b *mmapBacking) finalize(finalSize int64) error {
	return b.m.Finalize(finalSize)
}
