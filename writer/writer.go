// Package writer implements the append-only MDF 4.1 file writer.
//
// Blocks are streamed forward on 8-byte boundaries; every emitted block is
// registered in a symbolic position table so parent links can be patched
// the moment the child's address is known. Record data streams into DT
// blocks that roll over automatically at 4 MiB, with a DL block emitted
// when more than one fragment was needed.
package writer

import (
	"fmt"
	"io"
	"os"

	"github.com/dmagyar-0/mf4-go/blocks"
	"github.com/dmagyar-0/mf4-go/errs"
	"github.com/dmagyar-0/mf4-go/internal/options"
)

// Writer emits MDF blocks to a single destination. It is not safe for
// concurrent use; each Writer owns its file handle exclusively.
type Writer struct {
	dst    backing
	offset uint64

	positions  map[string]uint64
	counters   map[string]int
	openDTs    map[string]*openDataBlock
	lastDG     string
	cgToDG     map[string]string
	cgChannels map[string][]blocks.ChannelBlock
	channelCG  map[string]channelRef

	batchCapacity int
}

// Option configures a Writer.
type Option = options.Option[*config]

type config struct {
	batchCapacity int
	mmapSize      int64
}

// WithBufferCapacity sets the size of the batch buffer used by the bulk
// record operations.
func WithBufferCapacity(n int) Option {
	return options.New(func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("buffer capacity must be positive, got %d", n)
		}
		c.batchCapacity = n

		return nil
	})
}

// WithMmapBacking backs the output file with a pre-sized writable memory
// map instead of buffered writes. size must cover the final file size.
func WithMmapBacking(size int64) Option {
	return options.New(func(c *config) error {
		if size <= 0 {
			return fmt.Errorf("mmap backing size must be positive, got %d", size)
		}
		c.mmapSize = size

		return nil
	})
}

const defaultBatchCapacity = 4 * 1024 * 1024

// New creates a Writer for the given file path, overwriting any existing
// file.
func New(path string, opts ...Option) (*Writer, error) {
	cfg := &config{batchCapacity: defaultBatchCapacity}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	var dst backing
	if cfg.mmapSize > 0 {
		m, err := newMmapBacking(path, cfg.mmapSize)
		if err != nil {
			return nil, err
		}
		dst = m
	} else {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		dst = &fileBacking{f: f}
	}

	return newWriter(dst, cfg), nil
}

// NewTo creates a Writer emitting into an arbitrary write-seeker, e.g. an
// in-memory buffer.
func NewTo(ws io.WriteSeeker, opts ...Option) (*Writer, error) {
	cfg := &config{batchCapacity: defaultBatchCapacity}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return newWriter(&seekerBacking{ws: ws}, cfg), nil
}

func newWriter(dst backing, cfg *config) *Writer {
	return &Writer{
		dst:           dst,
		positions:     make(map[string]uint64),
		counters:      make(map[string]int),
		openDTs:       make(map[string]*openDataBlock),
		cgToDG:        make(map[string]string),
		cgChannels:    make(map[string][]blocks.ChannelBlock),
		channelCG:     make(map[string]channelRef),
		batchCapacity: cfg.batchCapacity,
	}
}

// nextID generates the next symbolic block name for a prefix ("dg", "cg", …).
func (w *Writer) nextID(prefix string) string {
	n := w.counters[prefix]
	w.counters[prefix]++

	return fmt.Sprintf("%s_%d", prefix, n)
}

// WriteBlock writes a block on the next 8-byte boundary, zero-padding as
// needed, and returns its starting offset.
func (w *Writer) WriteBlock(blockBytes []byte) (uint64, error) {
	if align := (8 - w.offset%8) % 8; align != 0 {
		if err := w.writeAll(make([]byte, align)); err != nil {
			return 0, err
		}
	}

	start := w.offset
	if err := w.writeAll(blockBytes); err != nil {
		return 0, err
	}

	return start, nil
}

// WriteBlockWithID writes a block and registers its position under the
// given symbolic name for later link patching.
func (w *Writer) WriteBlockWithID(blockBytes []byte, id string) (uint64, error) {
	start, err := w.WriteBlock(blockBytes)
	if err != nil {
		return 0, err
	}
	w.positions[id] = start

	return start, nil
}

// BlockPosition returns the registered position of a block.
func (w *Writer) BlockPosition(id string) (uint64, bool) {
	pos, ok := w.positions[id]

	return pos, ok
}

// Offset returns the current write position.
func (w *Writer) Offset() uint64 { return w.offset }

func (w *Writer) writeAll(p []byte) error {
	if err := w.dst.writeAt(p, int64(w.offset)); err != nil {
		return err
	}
	w.offset += uint64(len(p))

	return nil
}

// UpdateLink overwrites the 8-byte link at a file offset with a block
// address. Patches are only valid inside already-written blocks.
func (w *Writer) UpdateLink(offset, address uint64) error {
	buf := make([]byte, 8)
	le.PutUint64(buf, address)

	return w.dst.writeAt(buf, int64(offset))
}

// UpdateBlockLink writes the target block's address into the source block
// at the given link offset.
func (w *Writer) UpdateBlockLink(sourceID string, linkOffset uint64, targetID string) error {
	sourcePos, ok := w.positions[sourceID]
	if !ok {
		return &errs.BlockLinkError{Name: sourceID, Direction: "source"}
	}
	targetPos, ok := w.positions[targetID]
	if !ok {
		return &errs.BlockLinkError{Name: targetID, Direction: "target"}
	}

	return w.UpdateLink(sourcePos+linkOffset, targetPos)
}

func (w *Writer) updateBlockU8(id string, fieldOffset uint64, value uint8) error {
	pos, ok := w.positions[id]
	if !ok {
		return &errs.BlockLinkError{Name: id, Direction: "source"}
	}

	return w.dst.writeAt([]byte{value}, int64(pos+fieldOffset))
}

func (w *Writer) updateBlockU32(id string, fieldOffset uint64, value uint32) error {
	pos, ok := w.positions[id]
	if !ok {
		return &errs.BlockLinkError{Name: id, Direction: "source"}
	}
	buf := make([]byte, 4)
	le.PutUint32(buf, value)

	return w.dst.writeAt(buf, int64(pos+fieldOffset))
}

func (w *Writer) updateBlockU64(id string, fieldOffset uint64, value uint64) error {
	pos, ok := w.positions[id]
	if !ok {
		return &errs.BlockLinkError{Name: id, Direction: "source"}
	}
	buf := make([]byte, 8)
	le.PutUint64(buf, value)

	return w.dst.writeAt(buf, int64(pos+fieldOffset))
}

// Finalize flushes buffered data and closes the destination. The Writer
// must not be used afterwards.
func (w *Writer) Finalize() error {
	return w.dst.finalize(int64(w.offset))
}
