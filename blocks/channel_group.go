package blocks

import "github.com/dmagyar-0/mf4-go/errs"

// ChannelGroupBlockSize is the fixed size of the CGBLOCK.
const ChannelGroupBlockSize = 104

// ChannelGroupBlock describes one fixed record layout within a data group:
// the channel chain, the record identification and the per-record sizes.
type ChannelGroupBlock struct {
	Header BlockHeader

	NextCGAddr    uint64
	FirstCNAddr   uint64
	AcqNameAddr   uint64
	AcqSourceAddr uint64
	FirstSRAddr   uint64
	CommentAddr   uint64

	RecordID            uint64
	CycleCount          uint64
	Flags               uint16
	PathSeparator       uint16
	SamplesByteNr       uint32 // record data bytes, excluding the record ID
	InvalidationBytesNr uint32
}

// NewChannelGroupBlock returns a channel group block with an initialized
// common header and all links unset.
func NewChannelGroupBlock() *ChannelGroupBlock {
	return &ChannelGroupBlock{
		Header: BlockHeader{ID: IDChannelGroup, BlockLen: ChannelGroupBlockSize, LinksNr: 6},
	}
}

// Parse reads a ChannelGroupBlock from a 104-byte slice.
func (b *ChannelGroupBlock) Parse(buf []byte) error {
	h, err := ParseBlockHeader(buf, IDChannelGroup)
	if err != nil {
		return err
	}
	if len(buf) < ChannelGroupBlockSize {
		return errs.TooShort(len(buf), ChannelGroupBlockSize)
	}

	b.Header = h
	b.NextCGAddr = le.Uint64(buf[24:32])
	b.FirstCNAddr = le.Uint64(buf[32:40])
	b.AcqNameAddr = le.Uint64(buf[40:48])
	b.AcqSourceAddr = le.Uint64(buf[48:56])
	b.FirstSRAddr = le.Uint64(buf[56:64])
	b.CommentAddr = le.Uint64(buf[64:72])
	b.RecordID = le.Uint64(buf[72:80])
	b.CycleCount = le.Uint64(buf[80:88])
	b.Flags = le.Uint16(buf[88:90])
	b.PathSeparator = le.Uint16(buf[90:92])
	b.SamplesByteNr = le.Uint32(buf[96:100])
	b.InvalidationBytesNr = le.Uint32(buf[100:104])

	return nil
}

// Bytes serializes the ChannelGroupBlock to its 104-byte on-disk form.
func (b *ChannelGroupBlock) Bytes() ([]byte, error) {
	if b.Header.ID != IDChannelGroup || b.Header.BlockLen != ChannelGroupBlockSize || b.Header.LinksNr != 6 {
		return nil, errs.Serialization("channel group block must have id=%s len=%d links=6, got id=%s len=%d links=%d",
			IDChannelGroup, ChannelGroupBlockSize, b.Header.ID, b.Header.BlockLen, b.Header.LinksNr)
	}

	buf, err := b.Header.Bytes()
	if err != nil {
		return nil, err
	}
	buf = le.AppendUint64(buf, b.NextCGAddr)
	buf = le.AppendUint64(buf, b.FirstCNAddr)
	buf = le.AppendUint64(buf, b.AcqNameAddr)
	buf = le.AppendUint64(buf, b.AcqSourceAddr)
	buf = le.AppendUint64(buf, b.FirstSRAddr)
	buf = le.AppendUint64(buf, b.CommentAddr)
	buf = le.AppendUint64(buf, b.RecordID)
	buf = le.AppendUint64(buf, b.CycleCount)
	buf = le.AppendUint16(buf, b.Flags)
	buf = le.AppendUint16(buf, b.PathSeparator)
	buf = le.AppendUint32(buf, 0)
	buf = le.AppendUint32(buf, b.SamplesByteNr)
	buf = le.AppendUint32(buf, b.InvalidationBytesNr)

	if len(buf) != ChannelGroupBlockSize {
		return nil, errs.Serialization("channel group block expected %d bytes, wrote %d", ChannelGroupBlockSize, len(buf))
	}

	return buf, nil
}
