package blocks

import "github.com/dmagyar-0/mf4-go/errs"

// SourceBlockSize is the fixed size of the SIBLOCK.
const SourceBlockSize = 56

// SourceBlock describes the acquisition source of a channel or channel
// group (##SI).
type SourceBlock struct {
	Header BlockHeader

	NameAddr    uint64
	PathAddr    uint64
	CommentAddr uint64

	SourceType uint8
	BusType    uint8
	Flags      uint8
}

// Parse reads a SourceBlock from a 56-byte slice.
func (b *SourceBlock) Parse(buf []byte) error {
	h, err := ParseBlockHeader(buf, IDSource)
	if err != nil {
		return err
	}
	if len(buf) < SourceBlockSize {
		return errs.TooShort(len(buf), SourceBlockSize)
	}

	b.Header = h
	b.NameAddr = le.Uint64(buf[24:32])
	b.PathAddr = le.Uint64(buf[32:40])
	b.CommentAddr = le.Uint64(buf[40:48])
	b.SourceType = buf[48]
	b.BusType = buf[49]
	b.Flags = buf[50]

	return nil
}

// Bytes serializes the SourceBlock to its 56-byte on-disk form.
func (b *SourceBlock) Bytes() ([]byte, error) {
	if b.Header.ID != IDSource || b.Header.BlockLen != SourceBlockSize || b.Header.LinksNr != 3 {
		return nil, errs.Serialization("source block must have id=%s len=%d links=3, got id=%s len=%d links=%d",
			IDSource, SourceBlockSize, b.Header.ID, b.Header.BlockLen, b.Header.LinksNr)
	}

	buf, err := b.Header.Bytes()
	if err != nil {
		return nil, err
	}
	buf = le.AppendUint64(buf, b.NameAddr)
	buf = le.AppendUint64(buf, b.PathAddr)
	buf = le.AppendUint64(buf, b.CommentAddr)
	buf = append(buf, b.SourceType, b.BusType, b.Flags, 0, 0, 0, 0, 0)

	if len(buf) != SourceBlockSize {
		return nil, errs.Serialization("source block expected %d bytes, wrote %d", SourceBlockSize, len(buf))
	}

	return buf, nil
}
