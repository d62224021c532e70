package blocks

import "github.com/dmagyar-0/mf4-go/errs"

// ConversionType is the conversion family tag of a CCBLOCK (cc_type).
type ConversionType uint8

const (
	ConversionIdentity            ConversionType = 0
	ConversionLinear              ConversionType = 1
	ConversionRational            ConversionType = 2
	ConversionAlgebraic           ConversionType = 3
	ConversionTableLookupInterp   ConversionType = 4
	ConversionTableLookupNoInterp ConversionType = 5
	ConversionRangeLookup         ConversionType = 6
	ConversionValueToText         ConversionType = 7
	ConversionRangeToText         ConversionType = 8
	ConversionTextToValue         ConversionType = 9
	ConversionTextToText          ConversionType = 10
	ConversionBitfieldText        ConversionType = 11
)

// CCFlagPhysRange marks that the block carries a physical min/max pair.
const CCFlagPhysRange uint16 = 1 << 1

// ConversionBlock is the on-disk form of a CCBLOCK: four fixed links, a
// variable list of reference links (text blocks or nested conversions), a
// parallel list of f64 parameters and an optional physical range.
type ConversionBlock struct {
	Header BlockHeader

	NameAddr    uint64
	UnitAddr    uint64
	CommentAddr uint64
	InverseAddr uint64
	CCRef       []uint64

	Type        ConversionType
	Precision   uint8
	Flags       uint16
	RefCount    uint16
	ValCount    uint16
	PhyRangeMin float64
	PhyRangeMax float64
	CCVal       []float64
}

// NewConversionBlock returns a conversion block of the given family with a
// header sized for the given reference and value counts.
func NewConversionBlock(typ ConversionType, refs int, vals int) *ConversionBlock {
	b := &ConversionBlock{
		Type:     typ,
		RefCount: uint16(refs),
		ValCount: uint16(vals),
		CCRef:    make([]uint64, refs),
		CCVal:    make([]float64, vals),
	}
	b.Header = BlockHeader{
		ID:       IDConversion,
		BlockLen: uint64(b.size()),
		LinksNr:  uint64(4 + refs),
	}

	return b
}

// size computes the on-disk block length from the current field values.
func (b *ConversionBlock) size() int {
	size := HeaderSize + (4+len(b.CCRef))*8 + 8
	if b.Flags&CCFlagPhysRange != 0 {
		size += 16
	}

	return size + len(b.CCVal)*8
}

// Parse reads a ConversionBlock beginning at buf. The number of reference
// links is derived from the header link count.
func (b *ConversionBlock) Parse(buf []byte) error {
	h, err := ParseBlockHeader(buf, IDConversion)
	if err != nil {
		return err
	}

	refs := 0
	if h.LinksNr > 4 {
		refs = int(h.LinksNr - 4)
	}
	need := HeaderSize + (4+refs)*8 + 8
	if len(buf) < need {
		return errs.TooShort(len(buf), need)
	}

	b.Header = h
	off := HeaderSize
	b.NameAddr = le.Uint64(buf[off : off+8])
	b.UnitAddr = le.Uint64(buf[off+8 : off+16])
	b.CommentAddr = le.Uint64(buf[off+16 : off+24])
	b.InverseAddr = le.Uint64(buf[off+24 : off+32])
	off += 32

	b.CCRef = make([]uint64, refs)
	for i := range b.CCRef {
		b.CCRef[i] = le.Uint64(buf[off : off+8])
		off += 8
	}

	b.Type = ConversionType(buf[off])
	b.Precision = buf[off+1]
	b.Flags = le.Uint16(buf[off+2 : off+4])
	b.RefCount = le.Uint16(buf[off+4 : off+6])
	b.ValCount = le.Uint16(buf[off+6 : off+8])
	off += 8

	if b.Flags&CCFlagPhysRange != 0 {
		if len(buf) < off+16 {
			return errs.TooShort(len(buf), off+16)
		}
		b.PhyRangeMin = float64FromBits(le.Uint64(buf[off : off+8]))
		b.PhyRangeMax = float64FromBits(le.Uint64(buf[off+8 : off+16]))
		off += 16
	}

	vals := int(b.ValCount)
	if len(buf) < off+vals*8 {
		return errs.TooShort(len(buf), off+vals*8)
	}
	b.CCVal = make([]float64, vals)
	for i := range b.CCVal {
		b.CCVal[i] = float64FromBits(le.Uint64(buf[off : off+8]))
		off += 8
	}

	return nil
}

// Bytes serializes the ConversionBlock, enforcing agreement between the
// declared header and the recomputed length and link count.
func (b *ConversionBlock) Bytes() ([]byte, error) {
	size := b.size()
	links := uint64(4 + len(b.CCRef))
	if b.Header.ID != IDConversion || b.Header.BlockLen != uint64(size) || b.Header.LinksNr != links {
		return nil, errs.Serialization("conversion block expected len=%d links=%d, got id=%s len=%d links=%d",
			size, links, b.Header.ID, b.Header.BlockLen, b.Header.LinksNr)
	}
	if int(b.ValCount) != len(b.CCVal) {
		return nil, errs.Serialization("conversion block declares %d values, has %d", b.ValCount, len(b.CCVal))
	}

	buf, err := b.Header.Bytes()
	if err != nil {
		return nil, err
	}
	buf = le.AppendUint64(buf, b.NameAddr)
	buf = le.AppendUint64(buf, b.UnitAddr)
	buf = le.AppendUint64(buf, b.CommentAddr)
	buf = le.AppendUint64(buf, b.InverseAddr)
	for _, ref := range b.CCRef {
		buf = le.AppendUint64(buf, ref)
	}
	buf = append(buf, uint8(b.Type), b.Precision)
	buf = le.AppendUint16(buf, b.Flags)
	buf = le.AppendUint16(buf, b.RefCount)
	buf = le.AppendUint16(buf, b.ValCount)
	if b.Flags&CCFlagPhysRange != 0 {
		buf = le.AppendUint64(buf, float64Bits(b.PhyRangeMin))
		buf = le.AppendUint64(buf, float64Bits(b.PhyRangeMax))
	}
	for _, v := range b.CCVal {
		buf = le.AppendUint64(buf, float64Bits(v))
	}

	if len(buf) != size {
		return nil, errs.Serialization("conversion block expected %d bytes, wrote %d", size, len(buf))
	}

	return buf, nil
}
