package index

import (
	"fmt"

	"github.com/dmagyar-0/mf4-go/blocks"
	"github.com/dmagyar-0/mf4-go/errs"
	"github.com/dmagyar-0/mf4-go/record"
)

// ByteRange is one contiguous [offset, length) interval to fetch.
type ByteRange struct {
	Offset uint64
	Length uint64
}

// ReadChannelValues reads every value of one channel through the byte
// range reader, decoding and converting exactly like the direct reader.
// Compressed fragments and VLSD channels surface feature errors.
func (idx *Index) ReadChannelValues(groupIndex, channelIndex int, reader ByteRangeReader) ([]record.Value, error) {
	group, channel, err := idx.lookup(groupIndex, channelIndex)
	if err != nil {
		return nil, err
	}
	if channel.ChannelType == blocks.ChannelTypeVLSD {
		return nil, fmt.Errorf("VLSD channel reads through an index: %w", errs.ErrUnsupportedBlock)
	}

	recordSize := int(group.RecordIDLen) + int(group.RecordSize)
	channelBlock := channel.asBlock()

	var values []record.Value
	for _, db := range group.DataBlocks {
		if db.IsCompressed {
			return nil, fmt.Errorf("compressed data block at %#x: %w", db.FileOffset, errs.ErrUnsupportedBlock)
		}
		if db.Size < blocks.HeaderSize {
			return nil, errs.TooShort(int(db.Size), blocks.HeaderSize)
		}

		payload, err := reader.ReadRange(db.FileOffset+blocks.HeaderSize, db.Size-blocks.HeaderSize)
		if err != nil {
			return nil, err
		}

		for off := 0; off+recordSize <= len(payload); off += recordSize {
			// Same record order and cycle cap as the direct reader;
			// fragment tail padding never decodes as records.
			if group.RecordCount > 0 && uint64(len(values)) >= group.RecordCount {
				return values, nil
			}
			rec := payload[off : off+recordSize]
			v, ok := record.Decode(rec, int(group.RecordIDLen), channelBlock)
			if !ok {
				v = record.Unknown
			}
			values = append(values, channel.Conversion.Apply(v))
		}
	}

	return values, nil
}

// lookup validates catalog indices.
func (idx *Index) lookup(groupIndex, channelIndex int) (*ChannelGroup, *Channel, error) {
	if groupIndex < 0 || groupIndex >= len(idx.ChannelGroups) {
		return nil, nil, errs.Serialization("invalid group index %d (have %d groups)", groupIndex, len(idx.ChannelGroups))
	}
	group := &idx.ChannelGroups[groupIndex]
	if channelIndex < 0 || channelIndex >= len(group.Channels) {
		return nil, nil, errs.Serialization("invalid channel index %d (group has %d channels)", channelIndex, len(group.Channels))
	}

	return group, &group.Channels[channelIndex], nil
}

// asBlock rebuilds the channel block view the record decoder expects.
func (c *Channel) asBlock() *blocks.ChannelBlock {
	block := blocks.NewChannelBlock()
	block.ChannelType = c.ChannelType
	block.DataType = c.DataType
	block.BitOffset = c.BitOffset
	block.ByteOffset = c.ByteOffset
	block.BitCount = c.BitCount
	block.Flags = c.Flags
	block.PosInvalidationBit = c.PosInvalidationBit

	return block
}

// channelWindowBytes is the number of bytes the channel occupies per
// record.
func (c *Channel) channelWindowBytes() uint64 {
	if c.DataType.IsStringLike() || c.DataType.IsByteLike() {
		return uint64(c.BitCount / 8)
	}

	n := (uint64(c.BitOffset) + uint64(c.BitCount) + 7) / 8
	if n < 1 {
		n = 1
	}

	return n
}

// ChannelByteRanges derives the exact byte ranges covering every record
// of one channel, without reading anything.
func (idx *Index) ChannelByteRanges(groupIndex, channelIndex int) ([]ByteRange, error) {
	group, _, err := idx.lookup(groupIndex, channelIndex)
	if err != nil {
		return nil, err
	}

	return idx.ChannelByteRangesForRecords(groupIndex, channelIndex, 0, group.RecordCount)
}

// ChannelByteRangesForRecords derives the byte ranges covering a record
// sub-range [startRecord, startRecord+recordCount) of one channel.
func (idx *Index) ChannelByteRangesForRecords(groupIndex, channelIndex int, startRecord, recordCount uint64) ([]ByteRange, error) {
	group, channel, err := idx.lookup(groupIndex, channelIndex)
	if err != nil {
		return nil, err
	}
	if channel.ChannelType == blocks.ChannelTypeVLSD {
		return nil, fmt.Errorf("VLSD channel byte ranges: %w", errs.ErrUnsupportedBlock)
	}
	if startRecord+recordCount > group.RecordCount {
		return nil, errs.Serialization("record range %d..%d exceeds total records %d",
			startRecord, startRecord+recordCount, group.RecordCount)
	}

	recordSize := uint64(group.RecordIDLen) + uint64(group.RecordSize)
	channelOffset := uint64(group.RecordIDLen) + uint64(channel.ByteOffset)
	windowBytes := channel.channelWindowBytes()

	var ranges []ByteRange
	processed := uint64(0)
	for _, db := range group.DataBlocks {
		if db.IsCompressed {
			return nil, fmt.Errorf("compressed data block at %#x: %w", db.FileOffset, errs.ErrUnsupportedBlock)
		}

		dataStart := db.FileOffset + blocks.HeaderSize
		recordsInBlock := (db.Size - blocks.HeaderSize) / recordSize

		blockStart := processed
		blockEnd := processed + recordsInBlock

		needStart := max(startRecord, blockStart)
		needEnd := min(startRecord+recordCount, blockEnd)

		if needStart < needEnd {
			first := needStart - blockStart
			last := needEnd - blockStart - 1

			firstByte := dataStart + first*recordSize + channelOffset
			lastByte := dataStart + last*recordSize + channelOffset + windowBytes - 1
			ranges = append(ranges, ByteRange{Offset: firstByte, Length: lastByte - firstByte + 1})
		}

		processed = blockEnd
		if processed >= startRecord+recordCount {
			break
		}
	}

	return ranges, nil
}

// ChannelByteSummary reports the total bytes and the number of separate
// ranges a full channel read would fetch.
func (idx *Index) ChannelByteSummary(groupIndex, channelIndex int) (totalBytes uint64, rangeCount int, err error) {
	ranges, err := idx.ChannelByteRanges(groupIndex, channelIndex)
	if err != nil {
		return 0, 0, err
	}
	for _, r := range ranges {
		totalBytes += r.Length
	}

	return totalBytes, len(ranges), nil
}

// ReadChannelRanges fetches the given ranges and decodes the channel's
// values out of the concatenated windows. The ranges must have been
// produced by ChannelByteRanges for the same channel.
func (idx *Index) ReadChannelRanges(groupIndex, channelIndex int, ranges []ByteRange, reader ByteRangeReader) ([]record.Value, error) {
	group, channel, err := idx.lookup(groupIndex, channelIndex)
	if err != nil {
		return nil, err
	}

	recordSize := int(group.RecordIDLen) + int(group.RecordSize)
	windowBytes := int(channel.channelWindowBytes())
	channelBlock := channel.asBlock()
	// Decode each window as a record of its own: the fetched bytes start
	// at the channel's offset, so the synthetic record has the channel at
	// byte zero.
	channelBlock.ByteOffset = 0

	var values []record.Value
	for _, r := range ranges {
		buf, err := reader.ReadRange(r.Offset, r.Length)
		if err != nil {
			return nil, err
		}
		for off := 0; off+windowBytes <= len(buf); off += recordSize {
			window := buf[off : off+windowBytes]
			v, ok := record.Decode(window, 0, channelBlock)
			if !ok {
				v = record.Unknown
			}
			values = append(values, channel.Conversion.Apply(v))
		}
	}

	return values, nil
}
