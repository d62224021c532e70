package blocks

import "github.com/dmagyar-0/mf4-go/errs"

// DLFlagEqualLength marks a data list whose fragments all share one size.
const DLFlagEqualLength uint8 = 1 << 0

// DataListBlock is a ##DL block: an ordered list of data block offsets
// belonging to one channel group, chained through Next when one list is
// not enough.
type DataListBlock struct {
	Header BlockHeader

	Next      uint64
	DataLinks []uint64

	Flags       uint8
	EqualLength uint64   // valid when Flags has DLFlagEqualLength
	Offsets     []uint64 // per-fragment byte offsets otherwise
}

// NewEqualLengthDataList builds a data list over the given fragment
// positions with a common fragment size.
func NewEqualLengthDataList(links []uint64, equalLength uint64) *DataListBlock {
	b := &DataListBlock{
		Next:        0,
		DataLinks:   links,
		Flags:       DLFlagEqualLength,
		EqualLength: equalLength,
	}
	b.Header = BlockHeader{ID: IDDataList, BlockLen: uint64(b.size()), LinksNr: uint64(1 + len(links))}

	return b
}

// NewOffsetDataList builds a data list with an explicit per-fragment
// offset vector. offsets[i] is the byte distance of fragment i's first
// record from the start of the stream.
func NewOffsetDataList(links []uint64, offsets []uint64) *DataListBlock {
	b := &DataListBlock{
		Next:      0,
		DataLinks: links,
		Offsets:   offsets,
	}
	b.Header = BlockHeader{ID: IDDataList, BlockLen: uint64(b.size()), LinksNr: uint64(1 + len(links))}

	return b
}

func (b *DataListBlock) size() int {
	size := HeaderSize + (1+len(b.DataLinks))*8 + 8 // flags+reserved+count
	if b.Flags&DLFlagEqualLength != 0 {
		size += 8
	} else {
		size += len(b.DataLinks) * 8
	}

	return size
}

// Parse reads a DataListBlock beginning at buf. The first link is the
// chain to the next list; the remaining links point at data fragments.
func (b *DataListBlock) Parse(buf []byte) error {
	h, err := ParseBlockHeader(buf, IDDataList)
	if err != nil {
		return err
	}

	need := HeaderSize + int(h.LinksNr)*8
	if len(buf) < need {
		return errs.TooShort(len(buf), need)
	}

	b.Header = h
	off := HeaderSize
	b.Next = le.Uint64(buf[off : off+8])
	off += 8

	links := 0
	if h.LinksNr > 1 {
		links = int(h.LinksNr - 1)
	}
	b.DataLinks = make([]uint64, links)
	for i := range b.DataLinks {
		b.DataLinks[i] = le.Uint64(buf[off : off+8])
		off += 8
	}

	// Data section: flags, reserved, count, then equal length or offsets.
	if len(buf) >= off+8 {
		b.Flags = buf[off]
		count := int(le.Uint32(buf[off+4 : off+8]))
		off += 8
		if b.Flags&DLFlagEqualLength != 0 {
			if len(buf) >= off+8 {
				b.EqualLength = le.Uint64(buf[off : off+8])
			}
		} else if count == links && len(buf) >= off+count*8 {
			b.Offsets = make([]uint64, count)
			for i := range b.Offsets {
				b.Offsets[i] = le.Uint64(buf[off : off+8])
				off += 8
			}
		}
	}

	return nil
}

// Bytes serializes the DataListBlock, enforcing agreement between the
// declared header and the recomputed length and link count.
func (b *DataListBlock) Bytes() ([]byte, error) {
	size := b.size()
	links := uint64(1 + len(b.DataLinks))
	if b.Header.ID != IDDataList || b.Header.BlockLen != uint64(size) || b.Header.LinksNr != links {
		return nil, errs.Serialization("data list block expected len=%d links=%d, got id=%s len=%d links=%d",
			size, links, b.Header.ID, b.Header.BlockLen, b.Header.LinksNr)
	}
	if b.Flags&DLFlagEqualLength == 0 && len(b.Offsets) != len(b.DataLinks) {
		return nil, errs.Serialization("data list block has %d offsets for %d links", len(b.Offsets), len(b.DataLinks))
	}

	buf, err := b.Header.Bytes()
	if err != nil {
		return nil, err
	}
	buf = le.AppendUint64(buf, b.Next)
	for _, l := range b.DataLinks {
		buf = le.AppendUint64(buf, l)
	}
	buf = append(buf, b.Flags, 0, 0, 0)
	buf = le.AppendUint32(buf, uint32(len(b.DataLinks)))
	if b.Flags&DLFlagEqualLength != 0 {
		buf = le.AppendUint64(buf, b.EqualLength)
	} else {
		for _, o := range b.Offsets {
			buf = le.AppendUint64(buf, o)
		}
	}

	if len(buf) != size {
		return nil, errs.Serialization("data list block expected %d bytes, wrote %d", size, len(buf))
	}

	return buf, nil
}
