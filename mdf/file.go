// Package mdf implements the memory-mapped MDF 4.1 graph reader and the
// high-level read API.
//
// Open maps a file read-only, parses the identification and header blocks
// and walks the data group → channel group → channel chains, resolving
// each channel's conversion tree eagerly. All returned views borrow from
// the memory map and stay valid until Close.
package mdf

import (
	"fmt"

	"github.com/dmagyar-0/mf4-go/blocks"
	"github.com/dmagyar-0/mf4-go/conversion"
	"github.com/dmagyar-0/mf4-go/errs"
	"github.com/dmagyar-0/mf4-go/internal/mmap"
)

// File is a parsed MDF file bound to its memory map.
type File struct {
	Identification blocks.IdentificationBlock
	Header         blocks.HeaderBlock
	DataGroups     []*RawDataGroup

	mapping *mmap.Mapping
	data    []byte
}

// Open parses the MDF file at path. It fails fast on a wrong file magic
// or an unsupported version. The returned File must be closed to release
// the memory map.
func Open(path string) (*File, error) {
	mapping, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	f := &File{mapping: mapping, data: mapping.Data()}
	if err := f.parse(); err != nil {
		mapping.Close()
		return nil, err
	}

	return f, nil
}

// Close releases the memory map. Views derived from the file become
// invalid.
func (f *File) Close() error {
	f.data = nil

	return f.mapping.Close()
}

// Data exposes the raw mapped bytes for collaborating packages (index
// construction). The slice must not be mutated or retained past Close.
func (f *File) Data() []byte { return f.data }

func (f *File) parse() error {
	if err := f.Identification.Parse(f.data); err != nil {
		return err
	}
	if len(f.data) < blocks.IdentificationSize+blocks.HeaderBlockSize {
		return errs.TooShort(len(f.data), blocks.IdentificationSize+blocks.HeaderBlockSize)
	}
	if err := f.Header.Parse(f.data[blocks.IdentificationSize:]); err != nil {
		return err
	}

	for dgAddr := f.Header.FirstDGAddr; dgAddr != 0; {
		dg, err := f.parseDataGroup(dgAddr)
		if err != nil {
			return err
		}
		f.DataGroups = append(f.DataGroups, dg)
		dgAddr = dg.Block.NextDGAddr
	}

	return nil
}

func (f *File) parseDataGroup(addr uint64) (*RawDataGroup, error) {
	if int(addr) >= len(f.data) {
		return nil, errs.TooShort(len(f.data), int(addr))
	}

	block := &blocks.DataGroupBlock{}
	if err := block.Parse(f.data[addr:]); err != nil {
		return nil, err
	}
	dg := &RawDataGroup{Block: block}

	for cgAddr := block.FirstCGAddr; cgAddr != 0; {
		cg, err := f.parseChannelGroup(cgAddr)
		if err != nil {
			return nil, err
		}
		dg.ChannelGroups = append(dg.ChannelGroups, cg)
		cgAddr = cg.Block.NextCGAddr
	}

	return dg, nil
}

func (f *File) parseChannelGroup(addr uint64) (*RawChannelGroup, error) {
	if int(addr) >= len(f.data) {
		return nil, errs.TooShort(len(f.data), int(addr))
	}

	block := &blocks.ChannelGroupBlock{}
	if err := block.Parse(f.data[addr:]); err != nil {
		return nil, err
	}
	cg := &RawChannelGroup{Block: block}

	for cnAddr := block.FirstCNAddr; cnAddr != 0; {
		if int(cnAddr) >= len(f.data) {
			return nil, errs.TooShort(len(f.data), int(cnAddr))
		}
		cnBlock := &blocks.ChannelBlock{}
		if err := cnBlock.Parse(f.data[cnAddr:]); err != nil {
			return nil, err
		}

		conv, err := conversion.Resolve(f.data, cnBlock.ConversionAddr)
		if err != nil {
			return nil, err
		}

		cg.Channels = append(cg.Channels, &RawChannel{Block: cnBlock, Conversion: conv})
		cnAddr = cnBlock.NextCNAddr
	}

	return cg, nil
}

// ChannelGroups returns one high-level wrapper per channel group across
// all data groups, in file order.
func (f *File) ChannelGroups() []ChannelGroup {
	var groups []ChannelGroup
	for _, dg := range f.DataGroups {
		for _, cg := range dg.ChannelGroups {
			groups = append(groups, ChannelGroup{dg: dg, cg: cg, file: f.data})
		}
	}

	return groups
}
