package mdf

import (
	"fmt"
	"iter"

	"github.com/dmagyar-0/mf4-go/blocks"
	"github.com/dmagyar-0/mf4-go/conversion"
	"github.com/dmagyar-0/mf4-go/errs"
)

// RawDataGroup is a parsed DGBLOCK with its channel groups.
type RawDataGroup struct {
	Block         *blocks.DataGroupBlock
	ChannelGroups []*RawChannelGroup
}

// RawChannelGroup is a parsed CGBLOCK with its channels.
type RawChannelGroup struct {
	Block    *blocks.ChannelGroupBlock
	Channels []*RawChannel
}

// RecordSize is the total on-disk size of one record: the record ID
// prefix, the record data bytes and any invalidation bytes.
func (g *RawChannelGroup) RecordSize(dg *RawDataGroup) int {
	return int(dg.Block.RecordIDLen) + int(g.Block.SamplesByteNr) + int(g.Block.InvalidationBytesNr)
}

// RawChannel is a parsed CNBLOCK with its eagerly resolved conversion.
type RawChannel struct {
	Block      *blocks.ChannelBlock
	Conversion *conversion.Conversion
}

// DataBlocks collects the DT/DV fragments reachable from the group's data
// link, following DL chains. Compressed ##DZ fragments surface a
// feature-not-supported error.
func (dg *RawDataGroup) DataBlocks(file []byte) ([]*blocks.DataBlock, error) {
	var out []*blocks.DataBlock

	addr := dg.Block.DataBlockAddr
	for addr != 0 {
		if int(addr)+blocks.HeaderSize > len(file) {
			return nil, errs.TooShort(len(file), int(addr)+blocks.HeaderSize)
		}

		switch id := blocks.PeekID(file, addr); id {
		case blocks.IDData, blocks.IDDataValues:
			db, err := blocks.ParseDataBlock(file[addr:])
			if err != nil {
				return nil, err
			}
			out = append(out, db)
			addr = 0
		case blocks.IDDataZipped:
			return nil, fmt.Errorf("compressed data block at %#x: %w", addr, errs.ErrUnsupportedBlock)
		case blocks.IDDataList:
			dl := &blocks.DataListBlock{}
			if err := dl.Parse(file[addr:]); err != nil {
				return nil, err
			}
			for _, link := range dl.DataLinks {
				if int(link)+blocks.HeaderSize > len(file) {
					return nil, errs.TooShort(len(file), int(link)+blocks.HeaderSize)
				}
				if blocks.PeekID(file, link) == blocks.IDDataZipped {
					return nil, fmt.Errorf("compressed data block at %#x: %w", link, errs.ErrUnsupportedBlock)
				}
				db, err := blocks.ParseDataBlock(file[link:])
				if err != nil {
					return nil, err
				}
				out = append(out, db)
			}
			addr = dl.Next
		default:
			return nil, &errs.BlockIDError{Actual: id, Expected: "##DT / ##DV / ##DL / ##DZ"}
		}
	}

	return out, nil
}

// Records yields the raw record slices for the channel in file order.
//
// Fixed-layout channels yield one record-sized slice per cycle across all
// data fragments, trimming a trailing partial record. VLSD channels walk
// the channel's SD/DL chain and yield each variable-length payload; a
// malformed length prefix yields a too-short-buffer error and ends the
// sequence.
func (c *RawChannel) Records(dg *RawDataGroup, cg *RawChannelGroup, file []byte) iter.Seq2[[]byte, error] {
	if c.Block.ChannelType == blocks.ChannelTypeVLSD {
		return c.vlsdRecords(file)
	}

	return func(yield func([]byte, error) bool) {
		dataBlocks, err := dg.DataBlocks(file)
		if err != nil {
			yield(nil, err)
			return
		}

		// Fragment tails may carry alignment padding; the cycle count caps
		// the walk so padding never decodes as spurious records.
		limit := cg.Block.CycleCount
		yielded := uint64(0)

		recordSize := cg.RecordSize(dg)
		for _, db := range dataBlocks {
			for rec := range db.Records(recordSize) {
				if limit > 0 && yielded >= limit {
					return
				}
				if !yield(rec, nil) {
					return
				}
				yielded++
			}
		}
	}
}

func (c *RawChannel) vlsdRecords(file []byte) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		yieldSD := func(addr uint64) bool {
			sd, err := blocks.ParseSignalDataBlock(file[addr:])
			if err != nil {
				yield(nil, err)
				return false
			}
			for v, err := range sd.Values() {
				if !yield(v, err) || err != nil {
					return false
				}
			}

			return true
		}

		next := c.Block.DataAddr
		for next != 0 {
			if int(next)+blocks.HeaderSize > len(file) {
				yield(nil, errs.TooShort(len(file), int(next)+blocks.HeaderSize))
				return
			}

			switch id := blocks.PeekID(file, next); id {
			case blocks.IDDataList:
				dl := &blocks.DataListBlock{}
				if err := dl.Parse(file[next:]); err != nil {
					yield(nil, err)
					return
				}
				for _, link := range dl.DataLinks {
					if int(link)+blocks.HeaderSize > len(file) {
						yield(nil, errs.TooShort(len(file), int(link)+blocks.HeaderSize))
						return
					}
					if !yieldSD(link) {
						return
					}
				}
				next = dl.Next
			case blocks.IDSignalData:
				if !yieldSD(next) {
					return
				}
				next = 0
			default:
				yield(nil, &errs.BlockIDError{Actual: id, Expected: "##DL / ##SD"})
				return
			}
		}
	}
}
