// Package index derives lightweight, serializable catalogs from parsed
// MDF files.
//
// A catalog captures just enough block-graph metadata (channel layouts,
// resolved conversion trees, data fragment locations) to read any
// channel later through nothing but a ByteRangeReader. Catalogs are
// fully detached from the file they were derived from and serialize as a
// human-readable key/value document.
package index

import (
	"github.com/dmagyar-0/mf4-go/blocks"
	"github.com/dmagyar-0/mf4-go/conversion"
	"github.com/dmagyar-0/mf4-go/errs"
	"github.com/dmagyar-0/mf4-go/mdf"
)

// DataBlockInfo locates one data fragment in the file.
type DataBlockInfo struct {
	FileOffset   uint64 `yaml:"file_offset"`
	Size         uint64 `yaml:"size"` // on-disk size including the 24-byte header
	IsCompressed bool   `yaml:"is_compressed"`
}

// Channel is the catalog entry for one channel: the layout needed to
// decode values plus the resolved conversion tree.
type Channel struct {
	Name               string                 `yaml:"name,omitempty"`
	Unit               string                 `yaml:"unit,omitempty"`
	DataType           blocks.DataType        `yaml:"data_type"`
	ByteOffset         uint32                 `yaml:"byte_offset"`
	BitOffset          uint8                  `yaml:"bit_offset"`
	BitCount           uint32                 `yaml:"bit_count"`
	ChannelType        uint8                  `yaml:"channel_type"`
	Flags              uint32                 `yaml:"flags,omitempty"`
	PosInvalidationBit uint32                 `yaml:"pos_invalidation_bit,omitempty"`
	Conversion         *conversion.Conversion `yaml:"conversion,omitempty"`
	VLSDDataAddress    uint64                 `yaml:"vlsd_data_address,omitempty"`
}

// ChannelGroup is the catalog entry for one channel group.
type ChannelGroup struct {
	Name        string          `yaml:"name,omitempty"`
	Comment     string          `yaml:"comment,omitempty"`
	RecordIDLen uint8           `yaml:"record_id_len"`
	RecordSize  uint32          `yaml:"record_size"` // on-disk record bytes excluding the ID prefix
	RecordCount uint64          `yaml:"record_count"`
	Channels    []Channel       `yaml:"channels"`
	DataBlocks  []DataBlockInfo `yaml:"data_blocks"`
}

// Index is a complete catalog of one MDF file.
type Index struct {
	FileSize      uint64         `yaml:"file_size"`
	ChannelGroups []ChannelGroup `yaml:"channel_groups"`
}

// New derives a catalog from a parsed file. The catalog owns all its
// data; the file may be closed afterwards.
func New(f *mdf.File) (*Index, error) {
	idx := &Index{FileSize: uint64(len(f.Data()))}

	for _, group := range f.ChannelGroups() {
		cg, err := indexGroup(f.Data(), group)
		if err != nil {
			return nil, err
		}
		idx.ChannelGroups = append(idx.ChannelGroups, cg)
	}

	return idx, nil
}

func indexGroup(file []byte, group mdf.ChannelGroup) (ChannelGroup, error) {
	name, err := group.Name()
	if err != nil {
		return ChannelGroup{}, err
	}
	comment, err := group.Comment()
	if err != nil {
		return ChannelGroup{}, err
	}

	rdg := group.RawDataGroup()
	rcg := group.RawChannelGroup()

	cg := ChannelGroup{
		Name:        name,
		Comment:     comment,
		RecordIDLen: rdg.Block.RecordIDLen,
		RecordSize:  rcg.Block.SamplesByteNr + rcg.Block.InvalidationBytesNr,
		RecordCount: rcg.Block.CycleCount,
	}

	for _, ch := range group.Channels() {
		chName, err := ch.Name()
		if err != nil {
			return ChannelGroup{}, err
		}
		unit, err := ch.Unit()
		if err != nil {
			return ChannelGroup{}, err
		}

		block := ch.Block()
		entry := Channel{
			Name:               chName,
			Unit:               unit,
			DataType:           block.DataType,
			ByteOffset:         block.ByteOffset,
			BitOffset:          block.BitOffset,
			BitCount:           block.BitCount,
			ChannelType:        block.ChannelType,
			Flags:              block.Flags,
			PosInvalidationBit: block.PosInvalidationBit,
		}
		if block.ChannelType == blocks.ChannelTypeVLSD && block.DataAddr != 0 {
			entry.VLSDDataAddress = block.DataAddr
		}
		if conv, err := conversion.Resolve(file, block.ConversionAddr); err == nil {
			entry.Conversion = conv
		} else {
			return ChannelGroup{}, err
		}

		cg.Channels = append(cg.Channels, entry)
	}

	dataBlocks, err := extractDataBlocks(file, rdg.Block.DataBlockAddr)
	if err != nil {
		return ChannelGroup{}, err
	}
	cg.DataBlocks = dataBlocks

	return cg, nil
}

// extractDataBlocks walks the DT/DV/DZ/DL chain from addr and records
// every fragment's location. Compressed fragments are recorded but marked
// unreadable.
func extractDataBlocks(file []byte, addr uint64) ([]DataBlockInfo, error) {
	var out []DataBlockInfo

	for addr != 0 {
		if int(addr)+blocks.HeaderSize > len(file) {
			return nil, errs.TooShort(len(file), int(addr)+blocks.HeaderSize)
		}
		header, err := blocks.ParseBlockHeader(file[addr:])
		if err != nil {
			return nil, err
		}

		switch header.ID {
		case blocks.IDData, blocks.IDDataValues:
			out = append(out, DataBlockInfo{FileOffset: addr, Size: header.BlockLen})
			addr = 0
		case blocks.IDDataZipped:
			out = append(out, DataBlockInfo{FileOffset: addr, Size: header.BlockLen, IsCompressed: true})
			addr = 0
		case blocks.IDDataList:
			dl := &blocks.DataListBlock{}
			if err := dl.Parse(file[addr:]); err != nil {
				return nil, err
			}
			for _, link := range dl.DataLinks {
				if int(link)+blocks.HeaderSize > len(file) {
					return nil, errs.TooShort(len(file), int(link)+blocks.HeaderSize)
				}
				fragHeader, err := blocks.ParseBlockHeader(file[link:])
				if err != nil {
					return nil, err
				}
				out = append(out, DataBlockInfo{
					FileOffset:   link,
					Size:         fragHeader.BlockLen,
					IsCompressed: fragHeader.ID == blocks.IDDataZipped,
				})
			}
			addr = dl.Next
		default:
			return nil, &errs.BlockIDError{Actual: header.ID, Expected: "##DT / ##DV / ##DL / ##DZ"}
		}
	}

	return out, nil
}

// FromFile parses the MDF file at path and derives its catalog.
func FromFile(path string) (*Index, error) {
	f, err := mdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return New(f)
}

// ListChannelGroups returns (index, name, channel count) for every group.
func (idx *Index) ListChannelGroups() []GroupSummary {
	out := make([]GroupSummary, 0, len(idx.ChannelGroups))
	for i, group := range idx.ChannelGroups {
		out = append(out, GroupSummary{Index: i, Name: group.Name, ChannelCount: len(group.Channels)})
	}

	return out
}

// GroupSummary is one row of ListChannelGroups.
type GroupSummary struct {
	Index        int
	Name         string
	ChannelCount int
}

// FindChannelGroupByName returns the index of the first group with the
// given name.
func (idx *Index) FindChannelGroupByName(name string) (int, bool) {
	for i, group := range idx.ChannelGroups {
		if group.Name == name {
			return i, true
		}
	}

	return 0, false
}

// FindChannelByName returns the (group, channel) indices of the first
// channel with the given name.
func (idx *Index) FindChannelByName(name string) (int, int, bool) {
	for g, group := range idx.ChannelGroups {
		for c, ch := range group.Channels {
			if ch.Name == name {
				return g, c, true
			}
		}
	}

	return 0, 0, false
}

// Channel returns the catalog entry at (group, channel), or nil when out
// of range.
func (idx *Index) Channel(groupIndex, channelIndex int) *Channel {
	if groupIndex < 0 || groupIndex >= len(idx.ChannelGroups) {
		return nil
	}
	group := &idx.ChannelGroups[groupIndex]
	if channelIndex < 0 || channelIndex >= len(group.Channels) {
		return nil
	}

	return &group.Channels[channelIndex]
}
