package mdf

import (
	"github.com/dmagyar-0/mf4-go/blocks"
	"github.com/dmagyar-0/mf4-go/record"
)

// Channel is a read-only wrapper over one channel, borrowing from the
// file's memory map.
type Channel struct {
	raw  *RawChannel
	dg   *RawDataGroup
	cg   *RawChannelGroup
	file []byte
}

// Name returns the channel name, or "" when unset.
func (c Channel) Name() (string, error) {
	name, _, err := blocks.ReadString(c.file, c.raw.Block.NameAddr)

	return name, err
}

// Unit returns the physical unit, or "" when unset.
func (c Channel) Unit() (string, error) {
	unit, _, err := blocks.ReadString(c.file, c.raw.Block.UnitAddr)

	return unit, err
}

// Comment returns the channel comment, or "" when unset.
func (c Channel) Comment() (string, error) {
	comment, _, err := blocks.ReadString(c.file, c.raw.Block.CommentAddr)

	return comment, err
}

// Source returns the signal source information, or nil when unset.
func (c Channel) Source() (*SourceInfo, error) {
	return ReadSourceInfo(c.file, c.raw.Block.SourceAddr)
}

// DataType returns the channel's storage type.
func (c Channel) DataType() blocks.DataType { return c.raw.Block.DataType }

// BitCount returns the channel's bit width.
func (c Channel) BitCount() uint32 { return c.raw.Block.BitCount }

// Block exposes the parsed channel block for collaborating packages.
func (c Channel) Block() *blocks.ChannelBlock { return c.raw.Block }

// Values decodes and converts every sample of the channel, one element
// per record in file order. The first iterator error stops the read and
// is returned.
func (c Channel) Values() ([]record.Value, error) {
	recordIDLen := int(c.dg.Block.RecordIDLen)

	var out []record.Value
	for rec, err := range c.raw.Records(c.dg, c.cg, c.file) {
		if err != nil {
			return out, err
		}
		v, ok := record.Decode(rec, recordIDLen, c.raw.Block)
		if !ok {
			v = record.Unknown
		}
		out = append(out, c.raw.Conversion.Apply(v))
	}

	return out, nil
}

// RawValues decodes every sample without applying the conversion.
func (c Channel) RawValues() ([]record.Value, error) {
	recordIDLen := int(c.dg.Block.RecordIDLen)

	var out []record.Value
	for rec, err := range c.raw.Records(c.dg, c.cg, c.file) {
		if err != nil {
			return out, err
		}
		v, ok := record.Decode(rec, recordIDLen, c.raw.Block)
		if !ok {
			v = record.Unknown
		}
		out = append(out, v)
	}

	return out, nil
}

// Validity computes the per-record validity of the channel from its
// invalidation flags, one element per record.
func (c Channel) Validity() ([]bool, error) {
	recordIDLen := int(c.dg.Block.RecordIDLen)

	var out []bool
	for rec, err := range c.raw.Records(c.dg, c.cg, c.file) {
		if err != nil {
			return out, err
		}
		out = append(out, record.Valid(rec, recordIDLen, c.cg.Block, c.raw.Block))
	}

	return out, nil
}
